package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubVerifier struct{}

func (stubVerifier) VerifyUser(token string) (string, error) {
	if token == "user-token" {
		return "ann@example.com", nil
	}
	return "", errors.New("bad token")
}

func (stubVerifier) VerifyAdmin(token string) (string, error) {
	if token == "admin-token" {
		return "root@example.com", nil
	}
	return "", errors.New("bad token")
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))

	auth := NewAuthMiddleware(stubVerifier{})
	echo := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": Subject(c), "role": c.GetString(RoleKey)})
	}
	r.GET("/me", auth.RequireUser(), echo)
	r.GET("/admin/me", auth.RequireAdmin(), echo)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := setupRouter()

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "user token on user route", path: "/me", header: "Bearer user-token", wantStatus: http.StatusOK, wantBody: "ann@example.com"},
		{name: "lowercase scheme", path: "/me", header: "bearer user-token", wantStatus: http.StatusOK, wantBody: "ann@example.com"},
		{name: "admin token on admin route", path: "/admin/me", header: "Bearer admin-token", wantStatus: http.StatusOK, wantBody: "root@example.com"},
		{name: "user token on admin route", path: "/admin/me", header: "Bearer user-token", wantStatus: http.StatusUnauthorized},
		{name: "admin token on user route", path: "/me", header: "Bearer admin-token", wantStatus: http.StatusUnauthorized},
		{name: "missing header", path: "/me", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", path: "/me", header: "Basic user-token", wantStatus: http.StatusUnauthorized},
		{name: "empty token", path: "/me", header: "Bearer ", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), "Could not validate credentials")
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestCORS(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodOptions, "/me", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/me", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
