package store

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/lms-admin-mock/internal/model"
)

type failingStorage struct {
	*MemoryStorage
	getErr error
	putErr error
}

func (s *failingStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.MemoryStorage.Get(ctx, key)
}

func (s *failingStorage) Put(ctx context.Context, key string, value []byte) error {
	if s.putErr != nil {
		return s.putErr
	}
	return s.MemoryStorage.Put(ctx, key, value)
}

func sampleRecord(id, title string) model.Record {
	return model.Record{
		ID:          id,
		DateCreated: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Status:      model.StatusUpcoming,
		Fields:      model.Payload{"title": title},
	}
}

func prependFn(r model.Record) MutateFunc {
	return func(cur []model.Record) ([]model.Record, bool, error) {
		return Prepend(cur, r), true, nil
	}
}

func TestCollection_LoadSoftFailures(t *testing.T) {
	ctx := context.Background()
	log := zerolog.Nop()

	tests := []struct {
		name    string
		storage Storage
		seed    []byte
	}{
		{name: "missing key", storage: NewMemoryStorage()},
		{name: "corrupt json", storage: NewMemoryStorage(), seed: []byte("{not json")},
		{name: "wrong shape", storage: NewMemoryStorage(), seed: []byte(`{"id":"x"}`)},
		{name: "null element", storage: NewMemoryStorage(), seed: []byte(`[null]`)},
		{name: "bad timestamp", storage: NewMemoryStorage(), seed: []byte(`[{"id":"x","dateCreated":"yesterday"}]`)},
		{
			name:    "storage read error",
			storage: &failingStorage{MemoryStorage: NewMemoryStorage(), getErr: errors.New("disk gone")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.seed != nil {
				if err := tt.storage.Put(ctx, "exams", tt.seed); err != nil {
					t.Fatalf("seed: %v", err)
				}
			}
			c := NewCollection(tt.storage, "exams", 0, log)
			got := c.Load(ctx)
			if got == nil || len(got) != 0 {
				t.Errorf("Load() = %#v, want empty non-nil slice", got)
			}
		})
	}
}

func TestCollection_MutateRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	c := NewCollection(storage, "exams", 0, zerolog.Nop())

	if _, err := c.Mutate(ctx, prependFn(sampleRecord("a", "Midterm"))); err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}
	got, err := c.Mutate(ctx, prependFn(sampleRecord("b", "Final")))
	if err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}

	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("Mutate() = %+v, want newest first [b a]", got)
	}

	raw, err := storage.Get(ctx, "exams")
	if err != nil {
		t.Fatalf("storage.Get() error = %v", err)
	}
	reparsed, err := decode(raw)
	if err != nil {
		t.Fatalf("decode() error = %v", err)
	}
	if !reflect.DeepEqual(got, reparsed) {
		t.Errorf("returned state drifted from persisted state\n got: %#v\nwant: %#v", got, reparsed)
	}
	if loaded := c.Load(ctx); !reflect.DeepEqual(loaded, got) {
		t.Errorf("Load() = %#v, want %#v", loaded, got)
	}
}

func TestCollection_MutateNoChangeSkipsWrite(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	c := NewCollection(storage, "exams", 0, zerolog.Nop())

	got, err := c.Mutate(ctx, func(cur []model.Record) ([]model.Record, bool, error) {
		return cur, false, nil
	})
	if err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Mutate() = %v, want empty", got)
	}
	if _, err := storage.Get(ctx, "exams"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("key written on unchanged mutation, Get() error = %v", err)
	}
}

func TestCollection_MutateErrorSkipsWrite(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	c := NewCollection(storage, "exams", 0, zerolog.Nop())
	if _, err := c.Mutate(ctx, prependFn(sampleRecord("a", "Midterm"))); err != nil {
		t.Fatalf("seed: %v", err)
	}
	before, _ := storage.Get(ctx, "exams")

	errDenied := errors.New("denied")
	_, err := c.Mutate(ctx, func(cur []model.Record) ([]model.Record, bool, error) {
		return nil, true, errDenied
	})
	if !errors.Is(err, errDenied) {
		t.Fatalf("Mutate() error = %v, want %v", err, errDenied)
	}

	after, _ := storage.Get(ctx, "exams")
	if string(before) != string(after) {
		t.Errorf("store changed after failed mutation:\nbefore %s\nafter  %s", before, after)
	}
}

func TestCollection_WriteFailuresPropagate(t *testing.T) {
	ctx := context.Background()
	errFull := errors.New("disk full")

	t.Run("storage error", func(t *testing.T) {
		storage := &failingStorage{MemoryStorage: NewMemoryStorage(), putErr: errFull}
		c := NewCollection(storage, "exams", 0, zerolog.Nop())
		if _, err := c.Mutate(ctx, prependFn(sampleRecord("a", "Midterm"))); !errors.Is(err, errFull) {
			t.Errorf("Mutate() error = %v, want %v", err, errFull)
		}
	})

	t.Run("quota exceeded", func(t *testing.T) {
		storage := NewMemoryStorage()
		c := NewCollection(storage, "exams", 64, zerolog.Nop())
		big := sampleRecord("a", "a title long enough to push the encoded array over sixty-four bytes")
		if _, err := c.Mutate(ctx, prependFn(big)); !errors.Is(err, ErrQuotaExceeded) {
			t.Errorf("Mutate() error = %v, want ErrQuotaExceeded", err)
		}
		if _, err := storage.Get(ctx, "exams"); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("value written despite quota, Get() error = %v", err)
		}
	})
}

func TestCollection_CorruptStoreIsReplacedOnWrite(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	_ = storage.Put(ctx, "exams", []byte("garbage"))
	c := NewCollection(storage, "exams", 0, zerolog.Nop())

	got, err := c.Mutate(ctx, prependFn(sampleRecord("a", "Midterm")))
	if err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("Mutate() = %+v, want single record a", got)
	}
}
