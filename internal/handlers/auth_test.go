package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/biou/admin-console/internal/middleware"
	"github.com/biou/admin-console/internal/models"
	"github.com/biou/admin-console/internal/services"
	"github.com/biou/admin-console/internal/store"
	"github.com/biou/admin-console/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("handler-test-secret")
	utils.SetJWTExpiry(3600, 7200)
}

type stubDingTalk struct {
	info *services.DingTalkUserInfo
}

func (s *stubDingTalk) LoginURL(state string) string {
	return "https://login.example.com/auth?state=" + state
}

func (s *stubDingTalk) UserInfoByCode(code string) (*services.DingTalkUserInfo, error) {
	return s.info, nil
}

type authFixture struct {
	router   *gin.Engine
	db       *gorm.DB
	ttlStore store.TTLStore
}

func newAuthRouter(t *testing.T) *authFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.LoginLog{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	ttl := store.NewMemoryStore()
	t.Cleanup(func() { ttl.Close() })

	userService := services.NewUserService(db, nil)
	logService := services.NewLogService(db)
	authService := services.NewAuthService(db, userService, logService,
		&stubDingTalk{info: &services.DingTalkUserInfo{UnionID: "u1", Nick: "Test"}}, ttl)
	handler := NewAuthHandler(authService, userService)

	r := gin.New()
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", handler.Login)
		auth.GET("/dingtalk/login-url", handler.DingTalkLoginURL)
		auth.POST("/dingtalk/callback", handler.DingTalkCallback)
		auth.POST("/refresh", handler.Refresh)
	}
	protected := r.Group("/api", middleware.AuthRequired(ttl))
	{
		protected.POST("/auth/logout", handler.Logout)
		protected.GET("/auth/validate", handler.Validate)
		protected.GET("/auth/me", handler.Me)
	}

	return &authFixture{router: r, db: db, ttlStore: ttl}
}

func (f *authFixture) seedUser(t *testing.T, username, password string) *models.User {
	t.Helper()
	hashed, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{Username: username, Password: hashed, Status: models.UserEnabled}
	if err := f.db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req, _ := http.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func loginResult(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return resp.Data
}

func TestLoginEndpoint(t *testing.T) {
	f := newAuthRouter(t)
	f.seedUser(t, "alice", "secret123")

	w := postJSON(t, f.router, "/api/auth/login",
		map[string]string{"username": "alice", "password": "secret123"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	data := loginResult(t, w)
	if access, _ := data["access_token"].(string); access == "" {
		t.Error("expected an access token in the response")
	}
	if refresh, _ := data["refresh_token"].(string); refresh == "" {
		t.Error("expected a refresh token in the response")
	}
}

func TestLoginEndpoint_BadCredentials(t *testing.T) {
	f := newAuthRouter(t)
	f.seedUser(t, "alice", "secret123")

	w := postJSON(t, f.router, "/api/auth/login",
		map[string]string{"username": "alice", "password": "wrong"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, expected 401", w.Code)
	}
}

func TestLoginEndpoint_MissingFields(t *testing.T) {
	f := newAuthRouter(t)

	w := postJSON(t, f.router, "/api/auth/login", map[string]string{"username": "alice"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", w.Code)
	}
}

func TestDingTalkFlow(t *testing.T) {
	f := newAuthRouter(t)

	req, _ := http.NewRequest("GET", "/api/auth/dingtalk/login-url", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login-url status = %d", w.Code)
	}
	data := loginResult(t, w)
	state, _ := data["state"].(string)
	if state == "" {
		t.Fatal("expected a state in the login-url response")
	}

	w = postJSON(t, f.router, "/api/auth/dingtalk/callback",
		map[string]string{"code": "any", "state": state}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("callback status = %d, body %s", w.Code, w.Body.String())
	}

	// Replaying the same state must fail.
	w = postJSON(t, f.router, "/api/auth/dingtalk/callback",
		map[string]string{"code": "any", "state": state}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("replayed callback status = %d, expected 401", w.Code)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	f := newAuthRouter(t)
	user := f.seedUser(t, "alice", "secret123")
	refreshToken, _ := utils.GenerateRefreshToken(user.ID, user.Username)

	w := postJSON(t, f.router, "/api/auth/refresh",
		map[string]string{"refresh_token": refreshToken}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	data := loginResult(t, w)
	if data["refresh_token"] != refreshToken {
		t.Error("refresh token must be echoed unchanged")
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	f := newAuthRouter(t)
	user := f.seedUser(t, "alice", "secret123")
	accessToken, _ := utils.GenerateAccessToken(user.ID, user.Username)
	authHeader := map[string]string{"Authorization": "Bearer " + accessToken}

	w := postJSON(t, f.router, "/api/auth/logout", nil, authHeader)
	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w.Code)
	}

	// The blacklisted token is rejected by the auth middleware.
	req, _ := http.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w2 := httptest.NewRecorder()
	f.router.ServeHTTP(w2, req)
	if w2.Code != http.StatusUnauthorized {
		t.Errorf("me after logout status = %d, expected 401", w2.Code)
	}
}

func TestMeEndpoint(t *testing.T) {
	f := newAuthRouter(t)
	user := f.seedUser(t, "alice", "secret123")
	accessToken, _ := utils.GenerateAccessToken(user.ID, user.Username)

	req, _ := http.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Data models.User `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Data.Username != "alice" {
		t.Errorf("Username = %q, expected alice", resp.Data.Username)
	}
	if resp.Data.Password != "" {
		t.Error("password hash must not appear in the response")
	}
}
