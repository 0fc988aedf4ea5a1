package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"ultramacro/backend/config"
	"ultramacro/backend/internal/api/handler"
	"ultramacro/backend/internal/repository"
	"ultramacro/backend/internal/service"
	"ultramacro/backend/pkg/jwt"
)

func setupTestRouter(t *testing.T) (http.Handler, *jwt.Manager) {
	t.Helper()
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL: 15 * time.Minute,
			Issuer:         "ultramacro",
		},
		Upload: config.UploadConfig{
			MaxFileSize:     1 << 20,
			CoursesSheet:    "ساعات معتمدة",
			RateLimit:       10,
			RateLimitWindow: time.Minute,
		},
		Progress: config.DefaultProgress(),
	}
	cfg.Server.CORS.AllowOrigins = []string{"http://localhost:5173"}

	svc := service.NewService(cfg, repository.NewRepository(nil), zap.NewNop())
	h := handler.NewHandler(svc, cfg.Upload.MaxFileSize)
	jwtMgr := jwt.NewManager(&cfg.Auth)

	return Setup(cfg, h, jwtMgr, nil, zap.NewNop()), jwtMgr
}

func TestRouter_Health(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("响应应带 X-Request-ID")
	}
}

func TestRouter_RequiresToken(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/students", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestRouter_UploadRequiresAdmin(t *testing.T) {
	r, jwtMgr := setupTestRouter(t)
	token, _ := jwtMgr.GenerateAccessToken("user-2", "viewer")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/courses", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestRouter_DivisionsRequiresRegulation(t *testing.T) {
	r, jwtMgr := setupTestRouter(t)
	token, _ := jwtMgr.GenerateAccessToken("user-2", "viewer")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/divisions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
