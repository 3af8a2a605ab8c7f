package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/binder/internal/errors"
)

func TestMergeTags(t *testing.T) {
	database, cfg := newTestStore(t)
	ctx := context.Background()

	// Two entries with overlapping tags: one has both sources, one has one
	first, err := CreateEntry(ctx, database, cfg, CreateEntryInput{Title: "First", Tags: []string{"test", "validation"}})
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	second, err := CreateEntry(ctx, database, cfg, CreateEntryInput{Title: "Second", Tags: []string{"validation"}})
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	out, err := MergeTags(ctx, database, MergeTagsInput{
		Sources: []string{"test", "validation"},
		NewTag:  "verification",
	})
	if err != nil {
		t.Fatalf("MergeTags failed: %v", err)
	}
	if out.Tag.Name != "verification" {
		t.Errorf("Tag = %q, want verification", out.Tag.Name)
	}
	if len(out.MergedTags) != 2 {
		t.Errorf("MergedTags = %v, want both sources", out.MergedTags)
	}

	// Sources are gone, destination carries every use
	tags, err := ListTags(ctx, database, ListTagsInput{})
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if tags.Count != 1 {
		t.Fatalf("tag count = %d, want 1 (sources deleted)", tags.Count)
	}
	if tags.Tags[0].Name != "verification" || tags.Tags[0].UsageCount != 2 {
		t.Errorf("merged tag = %q uses %d, want verification with 2", tags.Tags[0].Name, tags.Tags[0].UsageCount)
	}

	// The overlapping entry ends up with a single association
	got, err := SearchTag(ctx, database, SearchTagInput{Tag: "verification"})
	if err != nil {
		t.Fatalf("SearchTag failed: %v", err)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("entries with merged tag = %d, want 2", len(got.Entries))
	}
	if got.Entries[0].ID != first.Entry.ID || got.Entries[1].ID != second.Entry.ID {
		t.Errorf("unexpected entry ids: %d, %d", got.Entries[0].ID, got.Entries[1].ID)
	}
}

func TestMergeTags_MissingSourceAborts(t *testing.T) {
	database, cfg := newTestStore(t)
	ctx := context.Background()

	if _, err := CreateEntry(ctx, database, cfg, CreateEntryInput{Title: "X", Tags: []string{"real"}}); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	_, err := MergeTags(ctx, database, MergeTagsInput{Sources: []string{"real", "ghost"}, NewTag: "merged"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("error = %v, want NOT_FOUND", err)
	}

	// Nothing changed: the real source is untouched and no destination exists
	tags, err := ListTags(ctx, database, ListTagsInput{})
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if tags.Count != 1 || tags.Tags[0].Name != "real" {
		t.Errorf("tags after aborted merge = %v, want just real", tags.Tags)
	}
}

func TestMergeTags_DestinationIsSource(t *testing.T) {
	database, cfg := newTestStore(t)
	ctx := context.Background()

	if _, err := CreateEntry(ctx, database, cfg, CreateEntryInput{Title: "X", Tags: []string{"keep", "fold-in"}}); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	out, err := MergeTags(ctx, database, MergeTagsInput{Sources: []string{"keep", "fold-in"}, NewTag: "KEEP"})
	if err != nil {
		t.Fatalf("MergeTags failed: %v", err)
	}
	// The destination source survives; only the other source is merged away
	if len(out.MergedTags) != 1 || out.MergedTags[0] != "fold-in" {
		t.Errorf("MergedTags = %v, want [fold-in]", out.MergedTags)
	}

	tags, err := ListTags(ctx, database, ListTagsInput{})
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if tags.Count != 1 || tags.Tags[0].Name != "keep" {
		t.Errorf("tags = %v, want just keep", tags.Tags)
	}
}

func TestMergeTags_Validation(t *testing.T) {
	database, _ := newTestStore(t)
	ctx := context.Background()

	_, err := MergeTags(ctx, database, MergeTagsInput{Sources: []string{"a"}, NewTag: "  "})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("blank new_tag error = %v, want INVALID_REQUEST", err)
	}

	_, err = MergeTags(ctx, database, MergeTagsInput{Sources: []string{"  ", ""}, NewTag: "x"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("no sources error = %v, want INVALID_REQUEST", err)
	}
}
