package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { Success(c, http.StatusOK, gin.H{}) })

	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"generated when absent", "", false},
		{"client id kept", "req-123", true},
		{"too long replaced", strings.Repeat("a", 65), false},
		{"control chars replaced", "bad\tid", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(HeaderRequestID, tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			got := rec.Header().Get(HeaderRequestID)
			if got == "" {
				t.Fatal("response has no request id")
			}
			if tt.keep && got != tt.header {
				t.Errorf("request id = %q, want %q", got, tt.header)
			}
			if !tt.keep && got == tt.header {
				t.Errorf("request id %q should have been replaced", got)
			}

			var body Response
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Metadata.RequestID != got {
				t.Errorf("metadata request_id = %q, want %q", body.Metadata.RequestID, got)
			}
		})
	}
}

func TestFailEnvelope(t *testing.T) {
	r := gin.New()
	r.GET("/fail", func(c *gin.Context) { Fail(c, http.StatusNotFound, ErrNotFound) })
	r.GET("/list", func(c *gin.Context) { SuccessList(c, http.StatusOK, []int{}, 0) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

	var body Response
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error == nil || body.Error.Code != ErrNotFound {
		t.Fatalf("error = %+v, want code %s", body.Error, ErrNotFound)
	}
	if body.Error.Message != GetMessage(ErrNotFound) {
		t.Errorf("message = %q", body.Error.Message)
	}
	if body.Metadata.RequestID == "" {
		t.Error("metadata request_id empty without middleware")
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/list", nil))
	if !strings.Contains(rec.Body.String(), `"count":0`) {
		t.Errorf("empty list should report count 0, got %s", rec.Body.String())
	}
}
