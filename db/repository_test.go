package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// setupTestRepo opens a migrated database in a temp directory.
func setupTestRepo(t *testing.T) (*Database, *Repository) {
	t.Helper()
	database, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database, NewRepository(database)
}

func sampleRecord(requestID string, created time.Time) GenerationRecord {
	return GenerationRecord{
		RequestID:    requestID,
		Command:      "create",
		Prompt:       "a cute baby otter",
		Model:        "gpt-image-1",
		N:            2,
		Size:         "1024x1024",
		Quality:      "low",
		OutputFormat: "png",
		Outputs:      []string{"a.1.1.png", "a.1.2.png"},
		InputTokens:  20,
		OutputTokens: 544,
		TotalTokens:  564,
		CostUSD:      0.02196,
		DurationMS:   12345,
		Status:       StatusSuccess,
		CreatedAt:    created,
	}
}

func TestRepository_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	_, repo := setupTestRepo(t)

	created := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	want := sampleRecord("req-1", created)

	id, err := repo.InsertGeneration(ctx, want)
	if err != nil {
		t.Fatalf("InsertGeneration() error = %v", err)
	}
	if id <= 0 {
		t.Errorf("InsertGeneration() id = %d, want > 0", id)
	}

	got, err := repo.FindByRequestID(ctx, "req-1")
	if err != nil {
		t.Fatalf("FindByRequestID() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("FindByRequestID() returned %d records, want 1", len(got))
	}

	rec := got[0]
	if rec.ID != id || rec.Prompt != want.Prompt || rec.N != 2 || rec.Quality != "low" {
		t.Errorf("record = %+v", rec)
	}
	if len(rec.Outputs) != 2 || rec.Outputs[1] != "a.1.2.png" {
		t.Errorf("Outputs = %v", rec.Outputs)
	}
	if rec.TotalTokens != 564 || rec.CostUSD != want.CostUSD || rec.DurationMS != 12345 {
		t.Errorf("usage = %d %v %d", rec.TotalTokens, rec.CostUSD, rec.DurationMS)
	}
	if !rec.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", rec.CreatedAt, created)
	}

	none, err := repo.FindByRequestID(ctx, "missing")
	if err != nil {
		t.Fatalf("FindByRequestID(missing) error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("FindByRequestID(missing) = %d records, want 0", len(none))
	}
}

func TestRepository_FindByRequestIDPrefix(t *testing.T) {
	ctx := context.Background()
	_, repo := setupTestRepo(t)

	now := time.Now()
	for _, id := range []string{"3f2a9c10-aaaa", "3f2a9c10-bbbb", "77e1d0aa-cccc"} {
		if _, err := repo.InsertGeneration(ctx, sampleRecord(id, now)); err != nil {
			t.Fatalf("InsertGeneration(%s) error = %v", id, err)
		}
	}

	tests := []struct {
		prefix string
		want   int
	}{
		{"3f2a9c10", 2},
		{"3f2a9c10-bbbb", 1},
		{"77e1", 1},
		{"%", 0},
		{"", 0},
	}
	for _, tt := range tests {
		got, err := repo.FindByRequestID(ctx, tt.prefix)
		if err != nil {
			t.Fatalf("FindByRequestID(%q) error = %v", tt.prefix, err)
		}
		if len(got) != tt.want {
			t.Errorf("FindByRequestID(%q) = %d records, want %d", tt.prefix, len(got), tt.want)
		}
	}

	count, err := repo.CountGenerations(ctx)
	if err != nil || count != 3 {
		t.Errorf("CountGenerations() = %d, %v; want 3", count, err)
	}
}

func TestRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	_, repo := setupTestRepo(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "middle", "new"} {
		if _, err := repo.InsertGeneration(ctx, sampleRecord(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("InsertGeneration(%s) error = %v", id, err)
		}
	}

	got, err := repo.ListGenerations(ctx, 0)
	if err != nil {
		t.Fatalf("ListGenerations() error = %v", err)
	}
	order := []string{"new", "middle", "old"}
	if len(got) != len(order) {
		t.Fatalf("ListGenerations() returned %d records, want %d", len(got), len(order))
	}
	for i, want := range order {
		if got[i].RequestID != want {
			t.Errorf("record %d = %s, want %s", i, got[i].RequestID, want)
		}
	}

	limited, err := repo.ListGenerations(ctx, 2)
	if err != nil {
		t.Fatalf("ListGenerations(2) error = %v", err)
	}
	if len(limited) != 2 || limited[0].RequestID != "new" {
		t.Errorf("ListGenerations(2) = %+v", limited)
	}
}

func TestRepository_ErrorRecordAndTotals(t *testing.T) {
	ctx := context.Background()
	_, repo := setupTestRepo(t)

	ok := sampleRecord("ok", time.Time{})
	failed := GenerationRecord{
		RequestID:    "failed",
		Command:      "edit",
		Prompt:       "add a hat",
		Model:        "gpt-image-1",
		N:            1,
		InputImages:  2,
		CostUSD:      5,
		Status:       StatusError,
		ErrorMessage: "Invalid size",
	}
	for _, rec := range []GenerationRecord{ok, failed} {
		if _, err := repo.InsertGeneration(ctx, rec); err != nil {
			t.Fatalf("InsertGeneration(%s) error = %v", rec.RequestID, err)
		}
	}

	count, err := repo.CountGenerations(ctx)
	if err != nil {
		t.Fatalf("CountGenerations() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountGenerations() = %d, want 2", count)
	}

	total, err := repo.TotalCost(ctx)
	if err != nil {
		t.Fatalf("TotalCost() error = %v", err)
	}
	if total != ok.CostUSD {
		t.Errorf("TotalCost() = %v, want %v (errors excluded)", total, ok.CostUSD)
	}

	got, err := repo.FindByRequestID(ctx, "failed")
	if err != nil || len(got) != 1 {
		t.Fatalf("FindByRequestID(failed) = %v, %v", got, err)
	}
	if got[0].ErrorMessage != "Invalid size" || got[0].Size != "" || got[0].Outputs != nil {
		t.Errorf("error record = %+v", got[0])
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should default to now")
	}
}

func TestRepository_NilDatabase(t *testing.T) {
	repo := NewRepository(nil)
	if _, err := repo.InsertGeneration(context.Background(), GenerationRecord{}); err == nil {
		t.Error("expected error for nil database")
	}
	if _, err := repo.ListGenerations(context.Background(), 5); err == nil {
		t.Error("expected error for nil database")
	}
}

func TestDatabase_Cleanup(t *testing.T) {
	ctx := context.Background()
	database, repo := setupTestRepo(t)

	now := time.Now()
	for i, age := range []time.Duration{-72 * time.Hour, -48 * time.Hour, -time.Hour} {
		rec := sampleRecord(string(rune('a'+i)), now.Add(age))
		if _, err := repo.InsertGeneration(ctx, rec); err != nil {
			t.Fatalf("InsertGeneration() error = %v", err)
		}
	}

	result, err := database.Cleanup(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if result.Deleted != 2 {
		t.Errorf("Cleanup() deleted %d, want 2", result.Deleted)
	}

	remaining, err := repo.ListGenerations(ctx, 10)
	if err != nil {
		t.Fatalf("ListGenerations() error = %v", err)
	}
	if len(remaining) != 1 || remaining[0].RequestID != "c" {
		t.Errorf("remaining = %+v", remaining)
	}
}

func TestDatabase_CloseTwice(t *testing.T) {
	database, _ := setupTestRepo(t)
	if err := database.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := database.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := database.Cleanup(context.Background(), time.Now()); err == nil {
		t.Error("Cleanup() on closed database should fail")
	}
}
