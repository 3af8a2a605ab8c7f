package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/binder/internal/errors"
)

func TestListNotes(t *testing.T) {
	database, cfg := newTestStore(t)
	ctx := context.Background()

	tomatoes, err := CreateEntry(ctx, database, cfg, CreateEntryInput{Title: "Tomatoes"})
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	peppers, err := CreateEntry(ctx, database, cfg, CreateEntryInput{Title: "Peppers"})
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	for _, in := range []CreateNoteInput{
		{EntryID: &tomatoes.Entry.ID, Content: "first"},
		{EntryID: &tomatoes.Entry.ID, Content: "second"},
		{EntryID: &peppers.Entry.ID, Content: "other"},
	} {
		if _, err := CreateNote(ctx, database, cfg, in); err != nil {
			t.Fatalf("CreateNote failed: %v", err)
		}
	}

	// All notes in creation order
	out, err := ListNotes(ctx, database, ListNotesInput{})
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if out.Count != 3 {
		t.Errorf("Count = %d, want 3", out.Count)
	}
	if out.Notes[0].Content != "first" {
		t.Errorf("first note = %q, want first", out.Notes[0].Content)
	}

	// By entry id
	out, err = ListNotes(ctx, database, ListNotesInput{EntryID: &tomatoes.Entry.ID})
	if err != nil {
		t.Fatalf("ListNotes by id failed: %v", err)
	}
	if out.Count != 2 {
		t.Errorf("Count = %d, want 2", out.Count)
	}

	// By entry title
	out, err = ListNotes(ctx, database, ListNotesInput{EntryTitle: "Peppers"})
	if err != nil {
		t.Fatalf("ListNotes by title failed: %v", err)
	}
	if out.Count != 1 || out.Notes[0].Content != "other" {
		t.Errorf("by-title result = %v, want just the Peppers note", out.Notes)
	}
}

func TestListNotes_Validation(t *testing.T) {
	database, _ := newTestStore(t)
	ctx := context.Background()

	_, err := ListNotes(ctx, database, ListNotesInput{EntryID: int64Ptr(1), EntryTitle: "X"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("error = %v, want INVALID_REQUEST", err)
	}

	_, err = ListNotes(ctx, database, ListNotesInput{Notebook: stringPtr("Garden")})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("notebook without title error = %v, want INVALID_REQUEST", err)
	}
}

func TestListNotes_MissingEntry(t *testing.T) {
	database, _ := newTestStore(t)

	_, err := ListNotes(context.Background(), database, ListNotesInput{EntryID: int64Ptr(42)})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}
