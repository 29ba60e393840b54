package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/learnqueue-backend/internal/http/response"
	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
	"github.com/yungbote/learnqueue-backend/internal/services"
)

type LearningQueueHandlerDeps struct {
	Log   *logger.Logger
	Queue services.QueueService
	Now   func() time.Time
}

type LearningQueueHandler struct {
	log   *logger.Logger
	queue services.QueueService
	now   func() time.Time
}

func NewLearningQueueHandlerWithDeps(deps LearningQueueHandlerDeps) *LearningQueueHandler {
	h := &LearningQueueHandler{log: deps.Log, queue: deps.Queue, now: deps.Now}
	if h.log != nil {
		h.log = h.log.With("handler", "LearningQueueHandler")
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

type recordAttemptRequest struct {
	TaskID      uuid.UUID  `json:"task_id"`
	CourseID    uuid.UUID  `json:"course_id"`
	TimeSpentMs int64      `json:"time_spent_ms"`
	IsCorrect   *bool      `json:"is_correct"`
	EventTime   *time.Time `json:"event_time"`
}

// POST /api/learners/:user_id/themes/:theme_id/enter
func (h *LearningQueueHandler) EnterTheme(c *gin.Context) {
	userID, themeID, ok := learnerThemeParams(c)
	if !ok {
		return
	}
	res, err := h.queue.EnterTheme(c.Request.Context(), userID, themeID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"result": res})
}

// GET /api/learners/:user_id/themes/:theme_id/next
func (h *LearningQueueHandler) NextTask(c *gin.Context) {
	userID, themeID, ok := learnerThemeParams(c)
	if !ok {
		return
	}
	next, err := h.queue.NextTask(c.Request.Context(), userID, themeID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"task_id": next, "exhausted": next == nil})
}

// POST /api/learners/:user_id/themes/:theme_id/attempts
func (h *LearningQueueHandler) RecordAttempt(c *gin.Context) {
	userID, themeID, ok := learnerThemeParams(c)
	if !ok {
		return
	}
	var req recordAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.TaskID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_task_id", errMissing("task_id"))
		return
	}
	if req.IsCorrect == nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errMissing("is_correct"))
		return
	}
	in := services.RecordAttemptInput{
		UserID:      userID,
		TaskID:      req.TaskID,
		ThemeID:     themeID,
		CourseID:    req.CourseID,
		TimeSpentMs: req.TimeSpentMs,
		IsCorrect:   *req.IsCorrect,
	}
	if req.EventTime != nil {
		in.EventTime = *req.EventTime
	}
	res, err := h.queue.RecordAttempt(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"result": res})
}

// POST /api/learners/:user_id/themes/:theme_id/sync
func (h *LearningQueueHandler) SyncTheme(c *gin.Context) {
	userID, themeID, ok := learnerThemeParams(c)
	if !ok {
		return
	}
	added, err := h.queue.SyncThemeTasks(c.Request.Context(), userID, themeID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"added": added})
}

// GET /api/learners/:user_id/themes/:theme_id/overview
func (h *LearningQueueHandler) Overview(c *gin.Context) {
	userID, themeID, ok := learnerThemeParams(c)
	if !ok {
		return
	}
	ov, err := h.queue.LearnerOverview(c.Request.Context(), userID, themeID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"overview": ov})
}

// GET /api/learners/:user_id/streak?date=YYYY-MM-DD
func (h *LearningQueueHandler) Streak(c *gin.Context) {
	userID, ok := learnerParam(c)
	if !ok {
		return
	}
	today := h.now().UTC()
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_date", err)
			return
		}
		today = d
	}
	n, err := h.queue.CurrentDailyStreak(c.Request.Context(), userID, today)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"daily_streak": n, "date": today.Format(time.DateOnly)})
}

// GET /api/learners/:user_id/badges
func (h *LearningQueueHandler) Badges(c *gin.Context) {
	userID, ok := learnerParam(c)
	if !ok {
		return
	}
	badges, err := h.queue.ListUserBadges(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"badges": badges})
}

func learnerParam(c *gin.Context) (uuid.UUID, bool) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil || userID == uuid.Nil {
		if err == nil {
			err = errMissing("user_id")
		}
		response.RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return uuid.Nil, false
	}
	return userID, true
}

func learnerThemeParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := learnerParam(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	themeID, err := uuid.Parse(c.Param("theme_id"))
	if err != nil || themeID == uuid.Nil {
		if err == nil {
			err = errMissing("theme_id")
		}
		response.RespondError(c, http.StatusBadRequest, "invalid_theme_id", err)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, themeID, true
}

type missingFieldError string

func (e missingFieldError) Error() string { return string(e) + " is required" }

func errMissing(field string) error { return missingFieldError(field) }
