package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/binder/internal/errors"
	"github.com/hpungsan/binder/internal/record"
)

func TestAttachTag_ToAllKinds(t *testing.T) {
	database, cfg := newTestStore(t)
	ctx := context.Background()

	if _, err := CreateNotebook(ctx, database, CreateNotebookInput{Name: "Garden"}); err != nil {
		t.Fatalf("CreateNotebook failed: %v", err)
	}
	entry, err := CreateEntry(ctx, database, cfg, CreateEntryInput{Title: "Tomatoes", Notebook: stringPtr("Garden")})
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	note, err := CreateNote(ctx, database, cfg, CreateNoteInput{EntryID: &entry.Entry.ID, Content: "sprouted"})
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	nb, err := AttachTag(ctx, database, AttachTagInput{Tag: "outdoors", Notebook: "Garden"})
	if err != nil {
		t.Fatalf("attach to notebook failed: %v", err)
	}
	if nb.TargetKind != record.KindNotebook || !nb.Attached {
		t.Errorf("notebook attach = kind %q attached %v", nb.TargetKind, nb.Attached)
	}
	if nb.TargetLabel != "Garden" {
		t.Errorf("TargetLabel = %q, want Garden", nb.TargetLabel)
	}

	en, err := AttachTag(ctx, database, AttachTagInput{Tag: "outdoors", EntryID: &entry.Entry.ID})
	if err != nil {
		t.Fatalf("attach to entry failed: %v", err)
	}
	if en.TargetKind != record.KindEntry || !en.Attached {
		t.Errorf("entry attach = kind %q attached %v", en.TargetKind, en.Attached)
	}

	no, err := AttachTag(ctx, database, AttachTagInput{Tag: "outdoors", NoteID: &note.Note.ID})
	if err != nil {
		t.Fatalf("attach to note failed: %v", err)
	}
	if no.TargetKind != record.KindNote || !no.Attached {
		t.Errorf("note attach = kind %q attached %v", no.TargetKind, no.Attached)
	}

	// One tag row serves all three associations
	if en.Tag.ID != nb.Tag.ID || no.Tag.ID != nb.Tag.ID {
		t.Errorf("tag ids differ: %d %d %d", nb.Tag.ID, en.Tag.ID, no.Tag.ID)
	}
}

func TestAttachTag_CreatesMissingTag(t *testing.T) {
	database, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := CreateNotebook(ctx, database, CreateNotebookInput{Name: "Garden"}); err != nil {
		t.Fatalf("CreateNotebook failed: %v", err)
	}

	out, err := AttachTag(ctx, database, AttachTagInput{Tag: "brand-new", Notebook: "Garden"})
	if err != nil {
		t.Fatalf("AttachTag failed: %v", err)
	}
	if out.Tag.ID == 0 {
		t.Error("tag should have been created on first use")
	}
}

func TestAttachTag_ReattachIsNoOp(t *testing.T) {
	database, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := CreateNotebook(ctx, database, CreateNotebookInput{Name: "Garden"}); err != nil {
		t.Fatalf("CreateNotebook failed: %v", err)
	}
	if _, err := AttachTag(ctx, database, AttachTagInput{Tag: "outdoors", Notebook: "Garden"}); err != nil {
		t.Fatalf("first attach failed: %v", err)
	}

	out, err := AttachTag(ctx, database, AttachTagInput{Tag: "OUTDOORS", Notebook: "Garden"})
	if err != nil {
		t.Fatalf("re-attach failed: %v", err)
	}
	if out.Attached {
		t.Error("Attached = true on re-attach, want false")
	}
}

func TestAttachTag_MissingTarget(t *testing.T) {
	database, _ := newTestStore(t)
	ctx := context.Background()

	_, err := AttachTag(ctx, database, AttachTagInput{Tag: "x", Notebook: "Nope"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}

	_, err = AttachTag(ctx, database, AttachTagInput{Tag: "x", EntryID: int64Ptr(99)})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestAttachTag_Validation(t *testing.T) {
	database, _ := newTestStore(t)
	ctx := context.Background()

	_, err := AttachTag(ctx, database, AttachTagInput{Tag: "  ", Notebook: "Garden"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("blank tag error = %v, want INVALID_REQUEST", err)
	}

	_, err = AttachTag(ctx, database, AttachTagInput{Tag: "x"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("no target error = %v, want INVALID_REQUEST", err)
	}

	_, err = AttachTag(ctx, database, AttachTagInput{Tag: "x", Notebook: "G", EntryID: int64Ptr(1)})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("two targets error = %v, want INVALID_REQUEST", err)
	}
}
