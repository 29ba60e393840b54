package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/learnqueue-backend/internal/domain/aggregates"
	"github.com/yungbote/learnqueue-backend/internal/platform/ctxutil"
)

func TestRespondServiceErrorCarriesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	c.Request = req.WithContext(ctxutil.WithRequestScope(req.Context(), ctxutil.RequestScope{RequestID: "req-9"}))

	RespondServiceError(c, domainagg.NewError(domainagg.CodeNotFound, "op", "task missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: want=%d got=%d", http.StatusNotFound, rec.Code)
	}
	var body ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.RequestID != "req-9" {
		t.Fatalf("request id: want=req-9 got=%q", body.Error.RequestID)
	}
	if len(c.Errors) != 1 {
		t.Fatalf("gin errors: want=1 got=%d", len(c.Errors))
	}
}

func TestRespondErrorWithoutRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondError(c, http.StatusBadRequest, "invalid_request", nil)

	var body ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Message != "unknown error" || body.Error.RequestID != "" {
		t.Fatalf("envelope: got=%+v", body.Error)
	}
}
