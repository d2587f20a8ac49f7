package toystore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRedisStore_LoadMissingKeyIsZero(t *testing.T) {
	s, _, cleanup := newRedisStoreForTest(t, "missing")
	defer cleanup()

	r, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !r.IsZero() {
		t.Fatalf("Load() = %+v, want zero", r)
	}
}

func TestRedisStore_SaveLoad(t *testing.T) {
	s, _, cleanup := newRedisStoreForTest(t, "vax1")
	defer cleanup()

	want := RecordAt(time.Date(2024, 1, 1, 0, 0, 0, 250_000_000, time.UTC))
	if err := s.Save(context.Background(), want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Fatalf("Load() = %+v, want %+v", got, want)
	}
	if s.Name() != "redis:tempo:toy:vax1" {
		t.Errorf("Name() = %q", s.Name())
	}
}

func TestRedisStore_SharedAcrossClients(t *testing.T) {
	s, cfg, cleanup := newRedisStoreForTest(t, "shared")
	defer cleanup()

	want := RecordAt(time.Date(2023, 6, 1, 8, 0, 0, 0, time.UTC))
	if err := s.Save(context.Background(), want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	other, err := NewRedisStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer other.Close()

	got, err := other.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Fatalf("second client Load() = %+v, want %+v", got, want)
	}
}

func TestRedisStore_CorruptValue(t *testing.T) {
	s, _, cleanup := newRedisStoreForTest(t, "corrupt")
	defer cleanup()

	if err := s.client.Set(context.Background(), s.key, "xyz", 0).Err(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(context.Background()); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Load() error = %v, want ErrCorrupt", err)
	}
}

func TestRedisStore_CloseIdempotent(t *testing.T) {
	s, _, cleanup := newRedisStoreForTest(t, "close")
	defer cleanup()

	if err := s.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}
