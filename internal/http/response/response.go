package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnqueue-backend/internal/platform/apierr"
	"github.com/yungbote/learnqueue-backend/internal/platform/ctxutil"
)

type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	body := ErrorEnvelope{Error: APIError{Message: msg, Code: code}}
	if c.Request != nil {
		body.Error.RequestID = ctxutil.RequestID(c.Request.Context())
	}
	c.JSON(status, body)
}

// RespondServiceError picks status and code from the error's aggregate code.
func RespondServiceError(c *gin.Context, err error) {
	ae := apierr.FromError(err)
	if ae == nil {
		ae = apierr.New(http.StatusInternalServerError, "internal_error", err)
	}
	_ = c.Error(err)
	RespondError(c, ae.Status, ae.Code, ae.Err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
