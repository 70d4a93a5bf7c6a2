package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/lms-admin-mock/internal/config"
	"github.com/stemsi/lms-admin-mock/internal/model"
	"github.com/stemsi/lms-admin-mock/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter_Allow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 2, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	steps := []struct {
		advance time.Duration
		key     string
		want    bool
	}{
		{0, "a", true},
		{0, "a", true},
		{0, "a", false},
		{0, "b", true},
		{30 * time.Second, "a", false},
		{31 * time.Second, "a", true},
		{0, "a", true},
		{0, "a", false},
	}

	for i, s := range steps {
		now = now.Add(s.advance)
		if got := rl.Allow(s.key); got != s.want {
			t.Errorf("step %d: Allow(%s) = %v, want %v", i, s.key, got, s.want)
		}
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 1, time.Minute)
	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.Allow("stale")

	now = now.Add(4 * time.Minute)
	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.visitors["stale"]; ok {
		t.Error("stale visitor not removed")
	}
}

func TestRequireRole(t *testing.T) {
	auth := service.NewAuthService(&config.Config{JWTSecret: "mw-secret", JWTExpiry: time.Hour, BcryptCost: 4})

	r := gin.New()
	r.GET("/staff", RequireJWT(auth), RequireStaff(), func(c *gin.Context) {
		c.String(http.StatusOK, string(GetClaims(c).Role))
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"malformed header", "Token abc", http.StatusUnauthorized},
		{"bad token", "Bearer abc", http.StatusUnauthorized},
		{"instructor", "instructor", http.StatusOK},
		{"sub admin", "sub_admin", http.StatusOK},
		{"parent", "parent", http.StatusForbidden},
		{"student", "student", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := tt.header
			if role, ok := model.ParseRole(tt.header); ok {
				token, err := auth.GenerateToken(&model.User{ID: "u1", Role: role})
				if err != nil {
					t.Fatalf("GenerateToken() error = %v", err)
				}
				header = "Bearer " + token
			}

			req := httptest.NewRequest(http.MethodGet, "/staff", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestBrotli(t *testing.T) {
	large := strings.Repeat("exam record ", 500)

	r := gin.New()
	r.Use(Brotli())
	r.GET("/large", func(c *gin.Context) { c.String(http.StatusOK, large) })
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/exams/export", func(c *gin.Context) { c.String(http.StatusOK, large) })

	tests := []struct {
		path           string
		acceptEncoding string
		wantBrotli     bool
		wantBody       string
	}{
		{"/large", "gzip, br", true, large},
		{"/large", "br;q=1.0", true, large},
		{"/large", "gzip", false, large},
		{"/small", "br", false, "ok"},
		{"/exams/export", "br", false, large},
	}

	for _, tt := range tests {
		t.Run(tt.path+" "+tt.acceptEncoding, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			gotBrotli := rec.Header().Get("Content-Encoding") == "br"
			if gotBrotli != tt.wantBrotli {
				t.Fatalf("Content-Encoding br = %v, want %v", gotBrotli, tt.wantBrotli)
			}

			var body []byte
			if gotBrotli {
				var err error
				body, err = io.ReadAll(brotli.NewReader(bytes.NewReader(rec.Body.Bytes())))
				if err != nil {
					t.Fatalf("decompress: %v", err)
				}
			} else {
				body = rec.Body.Bytes()
			}
			if string(body) != tt.wantBody {
				t.Errorf("body length = %d, want %d", len(body), len(tt.wantBody))
			}
		})
	}
}

type fakeUsers map[string]*model.User

func (f fakeUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	if id == "broken" {
		return nil, errors.New("storage offline")
	}
	return nil, service.ErrRecordNotFound
}

func TestRequireActiveUser(t *testing.T) {
	auth := service.NewAuthService(&config.Config{JWTSecret: "mw-secret", JWTExpiry: time.Hour, BcryptCost: 4})
	users := fakeUsers{
		"promoted": {ID: "promoted", Role: model.RoleSubAdmin, Status: model.StatusActive},
		"demoted":  {ID: "demoted", Role: model.RoleStudent, Status: model.StatusActive},
		"inactive": {ID: "inactive", Role: model.RoleInstructor, Status: model.StatusInactive},
	}

	r := gin.New()
	r.GET("/me", RequireJWT(auth), RequireActiveUser(users), RequireStaff(), func(c *gin.Context) {
		c.String(http.StatusOK, string(GetClaims(c).Role))
	})

	tests := []struct {
		name      string
		id        string
		tokenRole model.Role
		wantCode  int
		wantBody  string
	}{
		{"stored role wins over token", "promoted", model.RoleStudent, http.StatusOK, "sub_admin"},
		{"demoted loses staff access", "demoted", model.RoleInstructor, http.StatusForbidden, ""},
		{"inactive account", "inactive", model.RoleInstructor, http.StatusUnauthorized, "SESSION_INVALIDATED"},
		{"deleted account", "gone", model.RoleAdmin, http.StatusUnauthorized, "SESSION_INVALIDATED"},
		{"lookup failure", "broken", model.RoleAdmin, http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := auth.GenerateToken(&model.User{ID: tt.id, Role: tt.tokenRole})
			if err != nil {
				t.Fatalf("GenerateToken() error = %v", err)
			}
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want it to contain %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestBodyLimit(t *testing.T) {
	echo := func(c *gin.Context) {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		c.String(http.StatusOK, "%d", len(data))
	}

	tests := []struct {
		name     string
		limit    int64
		body     string
		chunked  bool
		wantCode int
		wantBody string
	}{
		{"under limit", 16, "small", false, http.StatusOK, "5"},
		{"declared over limit", 16, strings.Repeat("x", 17), false, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
		{"undeclared over limit", 16, strings.Repeat("x", 17), true, http.StatusRequestEntityTooLarge, "too large"},
		{"disabled", 0, strings.Repeat("x", 1024), false, http.StatusOK, "1024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/", BodyLimit(tt.limit), echo)

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.chunked {
				req.ContentLength = -1
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want it to contain %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}
