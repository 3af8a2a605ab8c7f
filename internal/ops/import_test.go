package ops

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/binder/internal/errors"
	"github.com/hpungsan/binder/internal/record"
)

// testExportDocument builds a self-consistent document: one notebook with a
// tagged entry, a note on that entry, and an unattached entry.
func testExportDocument() *record.ExportDocument {
	return &record.ExportDocument{
		SchemaVersion: 1,
		ExportedAt:    1700000000,
		Notebooks: []record.ExportNotebook{
			{ID: 10, Name: "Garden", Description: stringPtr("Backyard beds"), Status: record.StatusActive, CreatedAt: 1690000000},
		},
		Entries: []record.ExportEntry{
			{ID: 20, NotebookID: int64Ptr(10), Title: "Tomatoes", Content: "Planted six seedlings.", CreatedAt: 1690000100},
			{ID: 21, Title: "Loose thought", Content: "Try drip irrigation.", CreatedAt: 1690000200},
		},
		Notes: []record.ExportNote{
			{ID: 30, EntryID: 20, Content: "Watered.", CreatedAt: 1690000300},
		},
		Tags: []record.ExportTag{
			{ID: 40, Name: "Outdoors", NameNorm: "outdoors", CreatedAt: 1690000000},
		},
		Associations: []record.TagAssociation{
			{EntityKind: record.KindEntry, EntityID: 20, TagID: 40},
		},
		Attachments: []record.ExportAttachment{},
	}
}

// writeExportFile marshals a document to a .json file under dir.
func writeExportFile(t *testing.T, dir string, doc *record.ExportDocument) string {
	t.Helper()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	path := filepath.Join(dir, "export.json")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	return path
}

func TestImport_FreshStore(t *testing.T) {
	database, _ := newTestStore(t)
	ctx := context.Background()

	path := writeExportFile(t, t.TempDir(), testExportDocument())
	out, err := Import(ctx, database, ImportInput{Path: path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if out.Mode != ImportModeSkip {
		t.Errorf("Mode = %q, want skip by default", out.Mode)
	}
	if out.NotebooksImported != 1 || out.EntriesImported != 2 || out.NotesImported != 1 || out.TagsImported != 1 {
		t.Errorf("counts = %d/%d/%d/%d, want 1/2/1/1", out.NotebooksImported, out.EntriesImported, out.NotesImported, out.TagsImported)
	}
	if out.Skipped != 0 || len(out.Errors) != 0 {
		t.Errorf("Skipped = %d, Errors = %v, want none", out.Skipped, out.Errors)
	}

	// Imported rows are fully wired: the entry landed in Garden with its tag
	entries, err := ListEntries(ctx, database, ListEntriesInput{Notebook: stringPtr("Garden")})
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(entries.Entries) != 1 || entries.Entries[0].Title != "Tomatoes" {
		t.Fatalf("Garden entries = %v, want Tomatoes", entries.Entries)
	}
	if len(entries.Entries[0].Tags) != 1 || entries.Entries[0].Tags[0] != "Outdoors" {
		t.Errorf("entry tags = %v, want [Outdoors]", entries.Entries[0].Tags)
	}

	notes, err := ListNotes(ctx, database, ListNotesInput{EntryID: int64Ptr(entries.Entries[0].ID)})
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(notes.Notes) != 1 || notes.Notes[0].Content != "Watered." {
		t.Errorf("notes = %v, want the watering note", notes.Notes)
	}
}

func TestImport_Idempotent(t *testing.T) {
	database, _ := newTestStore(t)
	ctx := context.Background()

	path := writeExportFile(t, t.TempDir(), testExportDocument())
	if _, err := Import(ctx, database, ImportInput{Path: path}); err != nil {
		t.Fatalf("first Import failed: %v", err)
	}

	// Importing the same document again changes nothing
	out, err := Import(ctx, database, ImportInput{Path: path})
	if err != nil {
		t.Fatalf("second Import failed: %v", err)
	}
	if out.NotebooksImported != 0 || out.EntriesImported != 0 || out.NotesImported != 0 || out.TagsImported != 0 {
		t.Errorf("second import counts = %d/%d/%d/%d, want all zero", out.NotebooksImported, out.EntriesImported, out.NotesImported, out.TagsImported)
	}
	if out.Skipped != 5 {
		t.Errorf("Skipped = %d, want 5 (every record collided)", out.Skipped)
	}

	entries, err := ListEntries(ctx, database, ListEntriesInput{})
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(entries.Entries) != 2 {
		t.Errorf("entries after re-import = %d, want 2 (no duplicates)", len(entries.Entries))
	}
}

func TestImport_SkipMergesIntoExisting(t *testing.T) {
	database, cfg := newTestStore(t)
	ctx := context.Background()

	// The notebook and one entry already exist locally
	if _, err := CreateNotebook(ctx, database, CreateNotebookInput{Name: "Garden"}); err != nil {
		t.Fatalf("CreateNotebook failed: %v", err)
	}
	if _, err := CreateEntry(ctx, database, cfg, CreateEntryInput{Title: "Tomatoes", Content: "Local copy.", Notebook: stringPtr("Garden")}); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	path := writeExportFile(t, t.TempDir(), testExportDocument())
	out, err := Import(ctx, database, ImportInput{Path: path, Mode: ImportModeSkip})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if out.NotebooksImported != 0 || out.EntriesImported != 1 {
		t.Errorf("imported = %d notebooks, %d entries, want 0 and 1", out.NotebooksImported, out.EntriesImported)
	}
	if out.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2 (notebook and entry collisions)", out.Skipped)
	}

	// The existing entry kept its content, and the incoming note followed
	// the collision onto it
	entries, err := ListEntries(ctx, database, ListEntriesInput{Notebook: stringPtr("Garden")})
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(entries.Entries) != 1 || entries.Entries[0].Content != "Local copy." {
		t.Fatalf("Garden entries = %v, want the untouched local one", entries.Entries)
	}

	notes, err := ListNotes(ctx, database, ListNotesInput{EntryID: int64Ptr(entries.Entries[0].ID)})
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(notes.Notes) != 1 || notes.Notes[0].Content != "Watered." {
		t.Errorf("notes = %v, want the imported note on the existing entry", notes.Notes)
	}
	if len(entries.Entries[0].Tags) != 1 || entries.Entries[0].Tags[0] != "Outdoors" {
		t.Errorf("entry tags = %v, want the imported association on the existing entry", entries.Entries[0].Tags)
	}
}

func TestImport_ErrorModeAborts(t *testing.T) {
	database, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := CreateNotebook(ctx, database, CreateNotebookInput{Name: "Garden"}); err != nil {
		t.Fatalf("CreateNotebook failed: %v", err)
	}

	path := writeExportFile(t, t.TempDir(), testExportDocument())
	out, err := Import(ctx, database, ImportInput{Path: path, Mode: ImportModeError})
	if err != nil {
		t.Fatalf("Import returned error: %v (aborts report through Errors)", err)
	}
	if len(out.Errors) != 1 {
		t.Fatalf("Errors = %v, want the notebook collision", out.Errors)
	}
	if out.Errors[0].Code != "NAME_COLLISION" || out.Errors[0].Kind != "notebook" {
		t.Errorf("Errors[0] = %+v, want notebook NAME_COLLISION", out.Errors[0])
	}
	if out.NotebooksImported != 0 || out.EntriesImported != 0 {
		t.Errorf("counts = %d/%d, want nothing imported", out.NotebooksImported, out.EntriesImported)
	}

	// Nothing landed: the store still has just the one empty notebook
	entries, err := ListEntries(ctx, database, ListEntriesInput{})
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(entries.Entries) != 0 {
		t.Errorf("entries after aborted import = %d, want 0", len(entries.Entries))
	}
	tags, err := ListTags(ctx, database, ListTagsInput{})
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if tags.Count != 0 {
		t.Errorf("tags after aborted import = %d, want 0", tags.Count)
	}
}

func TestImport_RoundTrip(t *testing.T) {
	source, sourceCfg := newTestStore(t)
	ctx := context.Background()

	if _, err := CreateNotebook(ctx, source, CreateNotebookInput{Name: "Garden"}); err != nil {
		t.Fatalf("CreateNotebook failed: %v", err)
	}
	entry, err := CreateEntry(ctx, source, sourceCfg, CreateEntryInput{Title: "Tomatoes", Notebook: stringPtr("Garden"), Tags: []string{"veg"}})
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	if _, err := CreateNote(ctx, source, sourceCfg, CreateNoteInput{EntryID: int64Ptr(entry.Entry.ID), Content: "Looking good."}); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	exported, err := Export(ctx, source, sourceCfg, ExportInput{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	dest, _ := newTestStore(t)
	out, err := Import(ctx, dest, ImportInput{Path: exported.Path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if out.NotebooksImported != 1 || out.EntriesImported != 1 || out.NotesImported != 1 || out.TagsImported != 1 {
		t.Errorf("counts = %d/%d/%d/%d, want the full export", out.NotebooksImported, out.EntriesImported, out.NotesImported, out.TagsImported)
	}

	got, err := SearchTag(ctx, dest, SearchTagInput{Tag: "veg"})
	if err != nil {
		t.Fatalf("SearchTag failed: %v", err)
	}
	if len(got.Entries) != 1 || got.Entries[0].Title != "Tomatoes" {
		t.Errorf("round-tripped tag search = %v, want Tomatoes", got.Entries)
	}
}

func TestImport_BadInput(t *testing.T) {
	database, _ := newTestStore(t)
	ctx := context.Background()
	dir := t.TempDir()

	// Not JSON at all
	garbage := filepath.Join(dir, "garbage.json")
	if err := os.WriteFile(garbage, []byte("not json"), 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := Import(ctx, database, ImportInput{Path: garbage}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("garbage file error = %v, want INVALID_REQUEST", err)
	}

	// Valid JSON but not an export document
	plain := filepath.Join(dir, "plain.json")
	if err := os.WriteFile(plain, []byte(`{"hello": "world"}`), 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := Import(ctx, database, ImportInput{Path: plain}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("non-export error = %v, want INVALID_REQUEST", err)
	}

	// Document from a future schema
	future := testExportDocument()
	future.SchemaVersion = 99
	futurePath := writeExportFile(t, filepath.Join(dir), future)
	if _, err := Import(ctx, database, ImportInput{Path: futurePath}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("future schema error = %v, want INVALID_REQUEST", err)
	}

	// Wrong extension
	if _, err := Import(ctx, database, ImportInput{Path: filepath.Join(dir, "export.txt")}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("wrong extension error = %v, want INVALID_REQUEST", err)
	}

	// Missing file
	if _, err := Import(ctx, database, ImportInput{Path: filepath.Join(dir, "missing.json")}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("missing file error = %v, want NOT_FOUND", err)
	}

	// Traversal
	if _, err := Import(ctx, database, ImportInput{Path: "../escape.json"}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("traversal error = %v, want INVALID_REQUEST", err)
	}

	// Bad mode
	if _, err := Import(ctx, database, ImportInput{Path: garbage, Mode: "merge"}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("bad mode error = %v, want INVALID_REQUEST", err)
	}
}
