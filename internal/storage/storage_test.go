package storage

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestSQLiteSlot(t *testing.T) *SQLiteSlot {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	slot, err := NewSQLiteSlot(db)
	if err != nil {
		t.Fatalf("new slot: %v", err)
	}
	t.Cleanup(func() { _ = slot.Close() })
	return slot
}

func exerciseSlot(t *testing.T, slot Slot) {
	ctx := context.Background()

	if _, found, err := slot.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("missing key: found=%v err=%v", found, err)
	}

	if err := slot.Set(ctx, "saved_documents", "[]"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := slot.Set(ctx, "saved_documents", `[{"id":"1"}]`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := slot.Set(ctx, "business_profile", `{}`); err != nil {
		t.Fatalf("set second key: %v", err)
	}

	got, found, err := slot.Get(ctx, "saved_documents")
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if got != `[{"id":"1"}]` {
		t.Fatalf("value = %q", got)
	}

	got, _, _ = slot.Get(ctx, "business_profile")
	if got != "{}" {
		t.Fatalf("second key = %q", got)
	}
}

func TestMemorySlot(t *testing.T) {
	exerciseSlot(t, NewMemorySlot())
}

func TestSQLiteSlot(t *testing.T) {
	exerciseSlot(t, newTestSQLiteSlot(t))
}

func TestSQLiteSlotEmptyValue(t *testing.T) {
	slot := newTestSQLiteSlot(t)
	ctx := context.Background()

	if err := slot.Set(ctx, "k", ""); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, found, err := slot.Get(ctx, "k")
	if err != nil || !found || got != "" {
		t.Fatalf("got %q found=%v err=%v", got, found, err)
	}
}
