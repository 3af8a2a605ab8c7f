package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/binder/internal/errors"
)

func TestListEntries_Filters(t *testing.T) {
	database, cfg := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Garden", "Kitchen"} {
		if _, err := CreateNotebook(ctx, database, CreateNotebookInput{Name: name}); err != nil {
			t.Fatalf("CreateNotebook(%s) failed: %v", name, err)
		}
	}
	seed := []CreateEntryInput{
		{Title: "Tomatoes", Notebook: stringPtr("Garden"), Tags: []string{"veg"}},
		{Title: "Peppers", Notebook: stringPtr("Garden")},
		{Title: "Sourdough", Notebook: stringPtr("Kitchen"), Tags: []string{"baking"}},
		{Title: "Loose thought"},
	}
	for _, in := range seed {
		if _, err := CreateEntry(ctx, database, cfg, in); err != nil {
			t.Fatalf("CreateEntry(%s) failed: %v", in.Title, err)
		}
	}

	// No filter: everything in creation order
	out, err := ListEntries(ctx, database, ListEntriesInput{})
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if out.Count != 4 {
		t.Errorf("Count = %d, want 4", out.Count)
	}
	if out.Entries[0].Title != "Tomatoes" || out.Entries[3].Title != "Loose thought" {
		t.Errorf("unexpected order: first %q last %q", out.Entries[0].Title, out.Entries[3].Title)
	}

	// Notebook filter
	out, err = ListEntries(ctx, database, ListEntriesInput{Notebook: stringPtr("Garden")})
	if err != nil {
		t.Fatalf("ListEntries by notebook failed: %v", err)
	}
	if out.Count != 2 {
		t.Errorf("Garden count = %d, want 2", out.Count)
	}

	// Tag filter
	out, err = ListEntries(ctx, database, ListEntriesInput{Tag: stringPtr("veg")})
	if err != nil {
		t.Fatalf("ListEntries by tag failed: %v", err)
	}
	if out.Count != 1 || out.Entries[0].Title != "Tomatoes" {
		t.Errorf("veg filter = %d results, want just Tomatoes", out.Count)
	}
	if len(out.Entries[0].Tags) != 1 || out.Entries[0].Tags[0] != "veg" {
		t.Errorf("entry tags = %v, want [veg]", out.Entries[0].Tags)
	}

	// Combined filters
	out, err = ListEntries(ctx, database, ListEntriesInput{Notebook: stringPtr("Kitchen"), Tag: stringPtr("baking")})
	if err != nil {
		t.Fatalf("combined filter failed: %v", err)
	}
	if out.Count != 1 || out.Entries[0].Title != "Sourdough" {
		t.Errorf("combined filter = %d results, want just Sourdough", out.Count)
	}
}

func TestListEntries_UnknownFilters(t *testing.T) {
	database, _ := newTestStore(t)
	ctx := context.Background()

	_, err := ListEntries(ctx, database, ListEntriesInput{Notebook: stringPtr("Nope")})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("unknown notebook error = %v, want NOT_FOUND", err)
	}

	_, err = ListEntries(ctx, database, ListEntriesInput{Tag: stringPtr("nope")})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("unknown tag error = %v, want NOT_FOUND", err)
	}
}

func TestListEntries_Empty(t *testing.T) {
	database, _ := newTestStore(t)

	out, err := ListEntries(context.Background(), database, ListEntriesInput{})
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if out.Entries == nil {
		t.Error("Entries should be an empty slice, not nil")
	}
}
