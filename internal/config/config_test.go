package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("STORAGE_QUOTA_BYTES", "")
	t.Setenv("JWT_EXPIRY_HOURS", "")

	cfg := Load()
	if cfg.StorageBackend != StorageMemory {
		t.Errorf("StorageBackend = %q, want %q", cfg.StorageBackend, StorageMemory)
	}
	if cfg.StorageQuotaBytes != 5*1024*1024 {
		t.Errorf("StorageQuotaBytes = %d", cfg.StorageQuotaBytes)
	}
	if cfg.JWTExpiry != 24*time.Hour {
		t.Errorf("JWTExpiry = %v", cfg.JWTExpiry)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "Redis")
	t.Setenv("STORAGE_QUOTA_BYTES", "1024")
	t.Setenv("MAX_DB_CONNS", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")

	cfg := Load()
	if cfg.StorageBackend != StorageRedis {
		t.Errorf("StorageBackend = %q, want %q", cfg.StorageBackend, StorageRedis)
	}
	if cfg.StorageQuotaBytes != 1024 {
		t.Errorf("StorageQuotaBytes = %d, want 1024", cfg.StorageQuotaBytes)
	}
	if cfg.MaxDBConns != 8 {
		t.Errorf("MaxDBConns = %d, want fallback 8", cfg.MaxDBConns)
	}
	want := []string{"http://a.test", "http://b.test"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
}

func TestStoreKey(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		got       func(k *StoreKeyStruct) string
		want      string
	}{
		{name: "exams", namespace: "lms", got: (*StoreKeyStruct).Exams, want: "lms:exams"},
		{name: "exam schedules", namespace: "lms", got: (*StoreKeyStruct).ExamSchedules, want: "lms:exam_schedules"},
		{name: "users", namespace: "demo", got: (*StoreKeyStruct).Users, want: "demo:users"},
		{name: "no namespace", namespace: "", got: (*StoreKeyStruct).Webinars, want: "webinars"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.got(NewStoreKeyStruct(tt.namespace)); got != tt.want {
				t.Errorf("key = %q, want %q", got, tt.want)
			}
		})
	}
}
