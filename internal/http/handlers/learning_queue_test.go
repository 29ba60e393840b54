package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/learnqueue-backend/internal/domain"
	domainagg "github.com/yungbote/learnqueue-backend/internal/domain/aggregates"
	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
	"github.com/yungbote/learnqueue-backend/internal/services"
)

type fakeQueueService struct {
	lastAttempt services.RecordAttemptInput
	lastToday   time.Time
	next        *uuid.UUID
	err         error
}

func (f *fakeQueueService) EnterTheme(_ context.Context, _, _ uuid.UUID) (*services.EnterThemeResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.EnterThemeResult{StateCreated: true, Added: 2, QueueSize: 2, State: services.ThemeActive, NextTaskID: f.next}, nil
}

func (f *fakeQueueService) NextTask(_ context.Context, _, _ uuid.UUID) (*uuid.UUID, error) {
	return f.next, f.err
}

func (f *fakeQueueService) RecordAttempt(_ context.Context, in services.RecordAttemptInput) (*services.AttemptResult, error) {
	f.lastAttempt = in
	if f.err != nil {
		return nil, f.err
	}
	return &services.AttemptResult{Credited: in.IsCorrect, Removed: in.IsCorrect, QueueSize: 1}, nil
}

func (f *fakeQueueService) SyncThemeTasks(_ context.Context, _, _ uuid.UUID) (int, error) {
	return 3, f.err
}

func (f *fakeQueueService) CurrentDailyStreak(_ context.Context, _ uuid.UUID, today time.Time) (int, error) {
	f.lastToday = today
	return 4, f.err
}

func (f *fakeQueueService) ListUserBadges(_ context.Context, userID uuid.UUID) ([]*types.UserBadge, error) {
	return []*types.UserBadge{{ID: uuid.New(), UserID: userID, BadgeID: uuid.New()}}, f.err
}

func (f *fakeQueueService) LearnerOverview(_ context.Context, userID, themeID uuid.UUID) (*services.LearnerOverview, error) {
	return &services.LearnerOverview{UserID: userID, ThemeID: themeID, State: services.ThemeNotStarted}, f.err
}

func newQueueRouter(t *testing.T, svc services.QueueService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	h := NewLearningQueueHandlerWithDeps(LearningQueueHandlerDeps{
		Log:   log,
		Queue: svc,
		Now:   func() time.Time { return time.Date(2026, 3, 9, 22, 0, 0, 0, time.UTC) },
	})
	r := gin.New()
	g := r.Group("/api/learners/:user_id")
	g.POST("/themes/:theme_id/enter", h.EnterTheme)
	g.GET("/themes/:theme_id/next", h.NextTask)
	g.POST("/themes/:theme_id/attempts", h.RecordAttempt)
	g.POST("/themes/:theme_id/sync", h.SyncTheme)
	g.GET("/themes/:theme_id/overview", h.Overview)
	g.GET("/streak", h.Streak)
	g.GET("/badges", h.Badges)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, rec.Body.String())
	}
	return env.Error.Code
}

func TestRecordAttemptBindsBody(t *testing.T) {
	svc := &fakeQueueService{}
	r := newQueueRouter(t, svc)
	user, theme, task, course := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	body := `{"task_id":"` + task.String() + `","course_id":"` + course.String() +
		`","time_spent_ms":1200,"is_correct":true,"event_time":"2026-03-09T10:00:00Z"}`
	rec := do(r, http.MethodPost, "/api/learners/"+user.String()+"/themes/"+theme.String()+"/attempts", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d body=%s", http.StatusOK, rec.Code, rec.Body.String())
	}
	in := svc.lastAttempt
	if in.UserID != user || in.ThemeID != theme || in.TaskID != task || in.CourseID != course {
		t.Fatalf("ids not forwarded: %+v", in)
	}
	if !in.IsCorrect || in.TimeSpentMs != 1200 {
		t.Fatalf("attempt fields: %+v", in)
	}
	if !in.EventTime.Equal(time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("event time: got=%v", in.EventTime)
	}
	if !strings.Contains(rec.Body.String(), `"credited":true`) {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestRecordAttemptRejectsMissingFields(t *testing.T) {
	r := newQueueRouter(t, &fakeQueueService{})
	base := "/api/learners/" + uuid.NewString() + "/themes/" + uuid.NewString() + "/attempts"

	rec := do(r, http.MethodPost, base, `{"is_correct":true}`)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_task_id" {
		t.Fatalf("missing task: status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = do(r, http.MethodPost, base, `{"task_id":"`+uuid.NewString()+`"}`)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_request" {
		t.Fatalf("missing is_correct: status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = do(r, http.MethodPost, base, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json: want=%d got=%d", http.StatusBadRequest, rec.Code)
	}
}

func TestInvalidPathIDs(t *testing.T) {
	r := newQueueRouter(t, &fakeQueueService{})
	rec := do(r, http.MethodGet, "/api/learners/nope/themes/"+uuid.NewString()+"/next", "")
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_user_id" {
		t.Fatalf("bad user: status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = do(r, http.MethodGet, "/api/learners/"+uuid.NewString()+"/themes/"+uuid.Nil.String()+"/next", "")
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_theme_id" {
		t.Fatalf("nil theme: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domainagg.QueueStateMissing("Learning.Queue.MoveToEnd"), http.StatusConflict, "queue_state_missing"},
		{domainagg.NewError(domainagg.CodeValidation, "op", "unknown task", nil), http.StatusBadRequest, "validation_failed"},
		{domainagg.CatalogUnavailable("op", context.DeadlineExceeded), http.StatusServiceUnavailable, "task_catalog_unavailable"},
	}
	for _, tc := range cases {
		r := newQueueRouter(t, &fakeQueueService{err: tc.err})
		path := "/api/learners/" + uuid.NewString() + "/themes/" + uuid.NewString() + "/attempts"
		rec := do(r, http.MethodPost, path, `{"task_id":"`+uuid.NewString()+`","is_correct":false}`)
		if rec.Code != tc.status || errorCode(t, rec) != tc.code {
			t.Fatalf("%v: want=%d/%s got=%d body=%s", tc.err, tc.status, tc.code, rec.Code, rec.Body.String())
		}
	}
}

func TestNextTaskReportsExhausted(t *testing.T) {
	svc := &fakeQueueService{}
	r := newQueueRouter(t, svc)
	path := "/api/learners/" + uuid.NewString() + "/themes/" + uuid.NewString() + "/next"

	rec := do(r, http.MethodGet, path, "")
	if !strings.Contains(rec.Body.String(), `"exhausted":true`) || !strings.Contains(rec.Body.String(), `"task_id":null`) {
		t.Fatalf("empty queue body: %s", rec.Body.String())
	}

	next := uuid.New()
	svc.next = &next
	rec = do(r, http.MethodGet, path, "")
	if !strings.Contains(rec.Body.String(), next.String()) || !strings.Contains(rec.Body.String(), `"exhausted":false`) {
		t.Fatalf("queued body: %s", rec.Body.String())
	}
}

func TestStreakUsesQueryDateOrToday(t *testing.T) {
	svc := &fakeQueueService{}
	r := newQueueRouter(t, svc)
	base := "/api/learners/" + uuid.NewString() + "/streak"

	rec := do(r, http.MethodGet, base, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"date":"2026-03-09"`) {
		t.Fatalf("default date: status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = do(r, http.MethodGet, base+"?date=2026-01-31", "")
	if !svc.lastToday.Equal(time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("query date: got=%v", svc.lastToday)
	}
	if !strings.Contains(rec.Body.String(), `"daily_streak":4`) {
		t.Fatalf("body: %s", rec.Body.String())
	}
	rec = do(r, http.MethodGet, base+"?date=31/01/2026", "")
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_date" {
		t.Fatalf("bad date: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestEnterSyncOverviewAndBadges(t *testing.T) {
	r := newQueueRouter(t, &fakeQueueService{})
	user, theme := uuid.NewString(), uuid.NewString()

	rec := do(r, http.MethodPost, "/api/learners/"+user+"/themes/"+theme+"/enter", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"state":"active"`) {
		t.Fatalf("enter: status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = do(r, http.MethodPost, "/api/learners/"+user+"/themes/"+theme+"/sync", "")
	if !strings.Contains(rec.Body.String(), `"added":3`) {
		t.Fatalf("sync: %s", rec.Body.String())
	}
	rec = do(r, http.MethodGet, "/api/learners/"+user+"/themes/"+theme+"/overview", "")
	if !strings.Contains(rec.Body.String(), `"state":"not_started"`) {
		t.Fatalf("overview: %s", rec.Body.String())
	}
	rec = do(r, http.MethodGet, "/api/learners/"+user+"/badges", "")
	if !strings.Contains(rec.Body.String(), user) {
		t.Fatalf("badges: %s", rec.Body.String())
	}
}
