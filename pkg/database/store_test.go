package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arnavshah/meeting-rotation-api/pkg/config"
	"github.com/arnavshah/meeting-rotation-api/pkg/models"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(config.DatabaseConfig{Path: ":memory:"}, zap.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return NewStore(db)
}

func TestStore_Lists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.PutList(ctx, "ws", "chairmen", models.RoleList{Name: "Chairmen", Participants: []string{"A", "B"}}); err != nil {
		t.Fatalf("PutList: %v", err)
	}
	if err := s.PutList(ctx, "ws", "chairmen", models.RoleList{Name: "Chairmen", Participants: []string{"C"}}); err != nil {
		t.Fatalf("PutList upsert: %v", err)
	}
	if err := s.PutList(ctx, "other", "chairmen", models.RoleList{Participants: []string{"Z"}}); err != nil {
		t.Fatalf("PutList other: %v", err)
	}

	lists, err := s.Lists(ctx, "ws")
	if err != nil {
		t.Fatalf("Lists: %v", err)
	}
	if got := lists["chairmen"].Participants; len(got) != 1 || got[0] != "C" {
		t.Errorf("Expected upserted list [C], got %v", got)
	}

	if err := s.ReplaceLists(ctx, "ws", map[string]models.RoleList{"prayers": {Participants: []string{"P"}}}); err != nil {
		t.Fatalf("ReplaceLists: %v", err)
	}
	lists, _ = s.Lists(ctx, "ws")
	if _, ok := lists["chairmen"]; ok || len(lists) != 1 {
		t.Errorf("Expected only prayers after replace, got %v", lists)
	}

	if err := s.DeleteList(ctx, "ws", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	other, _ := s.Lists(ctx, "other")
	if len(other["chairmen"].Participants) != 1 {
		t.Errorf("Workspaces must not leak into each other")
	}
}

func TestStore_CursorsAndDraft(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cursors, err := s.Cursors(ctx, "ws")
	if err != nil || len(cursors) != 0 {
		t.Fatalf("Expected empty cursors, got %v %v", cursors, err)
	}
	if err := s.SaveCursors(ctx, "ws", map[string]int{"chairmen": 2}); err != nil {
		t.Fatalf("SaveCursors: %v", err)
	}
	if err := s.SaveCursors(ctx, "ws", map[string]int{"chairmen": 1}); err != nil {
		t.Fatalf("SaveCursors upsert: %v", err)
	}
	cursors, _ = s.Cursors(ctx, "ws")
	if cursors["chairmen"] != 1 {
		t.Errorf("Expected cursor 1, got %v", cursors)
	}

	weeks := []models.Week{{ID: "1", Title: "NGECHE 1", Chairman: "A"}}
	if err := s.SaveDraft(ctx, "ws", weeks); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	got, err := s.DraftWeeks(ctx, "ws")
	if err != nil || len(got) != 1 || got[0].Chairman != "A" {
		t.Errorf("Unexpected draft %v %v", got, err)
	}
	if err := s.DeleteDraft(ctx, "ws"); err != nil {
		t.Fatalf("DeleteDraft: %v", err)
	}
	if got, _ := s.DraftWeeks(ctx, "ws"); len(got) != 0 {
		t.Errorf("Expected empty draft after delete, got %v", got)
	}
}

func TestStore_History(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	newer := &models.HistoryRecord{Title: "Feb", SavedAt: t0.Add(24 * time.Hour), Weeks: []models.Week{{Chairman: "B"}}}
	older := &models.HistoryRecord{Title: "Jan", SavedAt: t0, Weeks: []models.Week{{Chairman: "A"}, {Chairman: "C"}}}
	for _, r := range []*models.HistoryRecord{newer, older} {
		if err := s.CreateHistory(ctx, "ws", r); err != nil {
			t.Fatalf("CreateHistory: %v", err)
		}
	}
	if newer.ID == "" || older.WeekCount != 2 {
		t.Errorf("Expected id and week count filled in, got %+v", older)
	}

	all, err := s.History(ctx, "ws")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(all) != 2 || all[0].Title != "Jan" {
		t.Errorf("Expected oldest first, got %+v", all)
	}

	older.Title = "January"
	if err := s.UpdateHistory(ctx, "ws", older); err != nil {
		t.Fatalf("UpdateHistory: %v", err)
	}
	got, err := s.HistoryRecord(ctx, "ws", older.ID)
	if err != nil || got.Title != "January" || got.Weeks[1].Chairman != "C" {
		t.Errorf("Unexpected record %+v %v", got, err)
	}

	if _, err := s.HistoryRecord(ctx, "other", older.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound across workspaces, got %v", err)
	}
	if err := s.DeleteHistory(ctx, "ws", newer.ID); err != nil {
		t.Fatalf("DeleteHistory: %v", err)
	}
	if err := s.DeleteHistory(ctx, "ws", newer.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestStore_Snapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.PutList(ctx, "ws", "chairmen", models.RoleList{Participants: []string{"A"}})
	_ = s.SaveCursors(ctx, "ws", map[string]int{"chairmen": 0})
	_ = s.SaveDraft(ctx, "ws", []models.Week{{Title: "NGECHE 1"}})
	_ = s.CreateHistory(ctx, "ws", &models.HistoryRecord{Title: "Jan", Weeks: []models.Week{{Chairman: "A"}}})

	snap, err := s.Snapshot(ctx, "ws")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.Draft) != 1 || len(snap.Lists) != 1 || len(snap.History) != 1 || len(snap.Cursors) != 1 {
		t.Errorf("Unexpected snapshot %+v", snap)
	}

	empty, err := s.Snapshot(ctx, "nobody")
	if err != nil {
		t.Fatalf("Snapshot of empty workspace: %v", err)
	}
	if len(empty.Draft) != 0 || empty.Cursors == nil {
		t.Errorf("Expected empty but usable snapshot, got %+v", empty)
	}
}

func TestStore_KeysAndUsage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	k, err := s.FindOrCreateKey(ctx, "ws.abcdef0123", "ws")
	if err != nil {
		t.Fatalf("FindOrCreateKey: %v", err)
	}
	again, _ := s.FindOrCreateKey(ctx, "ws.abcdef0123", "ws")
	if again.ID != k.ID || k.RateLimit != DefaultRateLimit || k.KeyPreview != "ws....0123" {
		t.Errorf("Unexpected key records %+v %+v", k, again)
	}

	for i := 0; i < 2; i++ {
		if err := s.RecordUsage(ctx, k.ID, 4, 40); err != nil {
			t.Fatalf("RecordUsage: %v", err)
		}
	}
	usage, err := s.Usage(ctx, k.ID, 30)
	if err != nil || len(usage) != 1 {
		t.Fatalf("Expected one usage row, got %v %v", usage, err)
	}
	if usage[0].RequestCount != 2 || usage[0].TotalWeeks != 8 || usage[0].TotalSlots != 80 {
		t.Errorf("Unexpected usage row %+v", usage[0])
	}

	if err := s.UpdateKeyLimit(ctx, k.ID, 5); err != nil {
		t.Fatalf("UpdateKeyLimit: %v", err)
	}
	if err := s.DeleteKey(ctx, k.ID); err != nil {
		t.Fatalf("DeleteKey: %v", err)
	}
	if err := s.DeleteKey(ctx, k.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
