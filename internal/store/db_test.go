package store

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCacheRoundTrip(t *testing.T) {
	db := newTestDB(t)

	if err := db.SetCache("k", []byte(`{"year":"1994"}`), time.Hour); err != nil {
		t.Fatalf("SetCache failed: %v", err)
	}

	data, err := db.GetCache("k")
	if err != nil {
		t.Fatalf("GetCache failed: %v", err)
	}
	if string(data) != `{"year":"1994"}` {
		t.Errorf("data = %s", data)
	}
}

func TestCacheMissReturnsNil(t *testing.T) {
	db := newTestDB(t)

	data, err := db.GetCache("missing")
	if err != nil {
		t.Fatalf("GetCache failed: %v", err)
	}
	if data != nil {
		t.Errorf("expected nil on miss, got %s", data)
	}
}

func TestCacheOverwrite(t *testing.T) {
	db := newTestDB(t)

	if err := db.SetCache("k", []byte("one"), time.Hour); err != nil {
		t.Fatalf("SetCache failed: %v", err)
	}
	if err := db.SetCache("k", []byte("two"), time.Hour); err != nil {
		t.Fatalf("SetCache overwrite failed: %v", err)
	}

	data, err := db.GetCache("k")
	if err != nil {
		t.Fatalf("GetCache failed: %v", err)
	}
	if string(data) != "two" {
		t.Errorf("data = %s, want two", data)
	}
}

func TestCacheExpiry(t *testing.T) {
	db := newTestDB(t)

	if err := db.SetCache("k", []byte("v"), -time.Second); err != nil {
		t.Fatalf("SetCache failed: %v", err)
	}

	data, err := db.GetCache("k")
	if err != nil {
		t.Fatalf("GetCache failed: %v", err)
	}
	if data != nil {
		t.Errorf("expected expired entry to be dropped, got %s", data)
	}
}

func TestCacheZeroTTLNeverExpires(t *testing.T) {
	db := newTestDB(t)

	if err := db.SetCache("k", []byte("v"), 0); err != nil {
		t.Fatalf("SetCache failed: %v", err)
	}

	data, err := db.GetCache("k")
	if err != nil {
		t.Fatalf("GetCache failed: %v", err)
	}
	if string(data) != "v" {
		t.Errorf("data = %s, want v", data)
	}
}

func TestClearCache(t *testing.T) {
	db := newTestDB(t)

	_ = db.SetCache("a", []byte("1"), time.Hour)
	_ = db.SetCache("b", []byte("2"), time.Hour)

	if err := db.ClearCache(); err != nil {
		t.Fatalf("ClearCache failed: %v", err)
	}

	data, _ := db.GetCache("a")
	if data != nil {
		t.Errorf("expected cache cleared, got %s", data)
	}
}
