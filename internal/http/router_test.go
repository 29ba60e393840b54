package http

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/learnqueue-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/learnqueue-backend/internal/http/handlers"
)

func TestRouterRegistersLearnerRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterConfig{
		Log:                  testutil.Logger(t),
		HealthHandler:        httpH.NewHealthHandler(),
		LearningQueueHandler: httpH.NewLearningQueueHandlerWithDeps(httpH.LearningQueueHandlerDeps{}),
	})

	want := map[string]bool{
		"GET /healthcheck": true,

		"POST /api/learners/:user_id/themes/:theme_id/enter":    true,
		"GET /api/learners/:user_id/themes/:theme_id/next":      true,
		"POST /api/learners/:user_id/themes/:theme_id/attempts": true,
		"POST /api/learners/:user_id/themes/:theme_id/sync":     true,
		"GET /api/learners/:user_id/themes/:theme_id/overview":  true,
		"GET /api/learners/:user_id/streak":                     true,
		"GET /api/learners/:user_id/badges":                     true,
	}
	for _, ri := range r.Routes() {
		delete(want, ri.Method+" "+ri.Path)
	}
	if len(want) != 0 {
		t.Fatalf("missing routes: %v", want)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/learners/"+uuid.NewString()+"/themes/bad/next", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid theme id: want=%d got=%d", http.StatusBadRequest, rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("request id header should be set")
	}
}

func TestServerRunStopsOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := NewServer(RouterConfig{HealthHandler: httpH.NewHealthHandler()})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop")
	}
}

func TestServerServesUntilCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := NewServer(RouterConfig{HealthHandler: httpH.NewHealthHandler()})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthcheck")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthcheck: want=200 got=%d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop")
	}
}
