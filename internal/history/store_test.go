package history

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAddAndList(t *testing.T) {
	store := openTestStore(t)

	first := Run{
		SessionID: "s-1",
		CreatedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		Provider:  "openai",
		Model:     "gpt-5.2",
		Status:    "completed",
		Content:   "rough draft",
		Result:    "polished draft",
	}
	if _, err := store.Add(first); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := store.Add(Run{SessionID: "s-2", Provider: "deepseek", Model: "deepseek-chat", Status: "completed"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	runs, err := store.List(10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	// Newest first.
	if runs[0].SessionID != "s-2" || runs[1].SessionID != "s-1" {
		t.Fatalf("order = %s, %s; want s-2, s-1", runs[0].SessionID, runs[1].SessionID)
	}

	got := runs[1]
	if got.Provider != "openai" || got.Model != "gpt-5.2" || got.Status != "completed" {
		t.Fatalf("run = %+v", got)
	}
	if got.Content != "rough draft" || got.Result != "polished draft" {
		t.Fatalf("run text = %q / %q", got.Content, got.Result)
	}
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, first.CreatedAt)
	}
}

func TestListLimit(t *testing.T) {
	store := openTestStore(t)
	for i := 0; i < 5; i++ {
		if _, err := store.Add(Run{SessionID: "s", Provider: "openai", Model: "m", Status: "completed"}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	runs, err := store.List(3)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("len(runs) = %d, want 3", len(runs))
	}
}

func TestClear(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Add(Run{SessionID: "s", Provider: "openai", Model: "m", Status: "completed"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	runs, err := store.List(10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("len(runs) = %d, want 0", len(runs))
	}
}
