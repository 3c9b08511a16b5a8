// ABOUTME: Tests for id prefix resolution
// ABOUTME: Covers full ids, short prefixes, user scoping and ambiguity

package storage

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/harper/stride/internal/models"
)

func TestFindTodo(t *testing.T) {
	db := testDB(t)
	mine := models.NewTodo("user-1", "mine", "", day, day)
	theirs := models.NewTodo("user-2", "theirs", "", day, day)
	mustNoError(t, db.CreateTodo(mine))
	mustNoError(t, db.CreateTodo(theirs))

	got, err := FindTodo(db, "user-1", mine.ID.String())
	if err != nil || got.ID != mine.ID {
		t.Fatalf("full id lookup failed: %v", err)
	}

	got, err = FindTodo(db, "user-1", mine.ID.String()[:8])
	if err != nil || got.ID != mine.ID {
		t.Fatalf("prefix lookup failed: %v", err)
	}

	if _, err := FindTodo(db, "user-1", theirs.ID.String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected other user's todo to be hidden, got %v", err)
	}
	if _, err := FindTodo(db, "user-1", "ab"); err == nil {
		t.Error("expected error for short prefix")
	}
	if _, err := FindTodo(db, "user-1", uuid.New().String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFindActivity(t *testing.T) {
	db := testDB(t)
	entry := models.NewActivityEntryAt("user-1", models.ActivityRunning, 10, 10, nil, day)
	mustNoError(t, db.CreateActivity(entry))

	got, err := FindActivity(db, "user-1", entry.ID.String()[:6])
	if err != nil || got.ID != entry.ID {
		t.Fatalf("prefix lookup failed: %v", err)
	}
	if _, err := FindActivity(db, "user-2", entry.ID.String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected scoping to user, got %v", err)
	}
}

func TestMatchPrefix_Ambiguous(t *testing.T) {
	a := uuid.MustParse("aaaa1111-0000-0000-0000-000000000000")
	b := uuid.MustParse("aaaa2222-0000-0000-0000-000000000000")

	if _, err := matchPrefix([]uuid.UUID{a, b}, "aaaa"); err == nil {
		t.Error("expected ambiguity error")
	}
	idx, err := matchPrefix([]uuid.UUID{a, b}, "AAAA2")
	if err != nil || idx != 1 {
		t.Errorf("expected case-insensitive match at 1, got %d, %v", idx, err)
	}
	if _, err := matchPrefix([]uuid.UUID{a}, "bbbb"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
