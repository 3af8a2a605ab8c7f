// Package ops implements binder's business logic operations.
// Each operation validates its input, talks to the database, and returns
// a typed output. Both the CLI and the MCP server call into this package,
// so behavior stays identical across surfaces.
package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/binder/internal/attach"
	"github.com/hpungsan/binder/internal/db"
	"github.com/hpungsan/binder/internal/errors"
	"github.com/hpungsan/binder/internal/record"
)

// Scope selects which record kinds a search covers.
type Scope string

const (
	ScopeEntries Scope = "entries"
	ScopeNotes   Scope = "notes"
	ScopeBoth    Scope = "both"
)

// normalizeScope applies the default scope and validates the value.
func normalizeScope(scope Scope) (Scope, error) {
	if scope == "" {
		return ScopeBoth, nil
	}
	if scope != ScopeEntries && scope != ScopeNotes && scope != ScopeBoth {
		return "", errors.NewInvalidRequest("scope must be one of: entries, notes, both")
	}
	return scope, nil
}

// Target is a validated tag-operation target: one notebook, entry, or note.
type Target struct {
	Kind     record.EntityKind
	Notebook string // notebook name when Kind is KindNotebook
	EntryID  int64  // entry id when Kind is KindEntry
	NoteID   int64  // note id when Kind is KindNote
}

// ValidateTarget validates targeting parameters.
// Rules: exactly one of notebook name, entry id, or note id must be given.
func ValidateTarget(notebook string, entryID, noteID *int64) (*Target, error) {
	notebook = strings.TrimSpace(notebook)

	modes := 0
	if notebook != "" {
		modes++
	}
	if entryID != nil {
		modes++
	}
	if noteID != nil {
		modes++
	}
	if modes == 0 {
		return nil, errors.NewInvalidRequest("must specify one of notebook, entry_id, or note_id")
	}
	if modes > 1 {
		return nil, errors.NewInvalidRequest("cannot combine notebook, entry_id, and note_id; use exactly one")
	}

	switch {
	case notebook != "":
		return &Target{Kind: record.KindNotebook, Notebook: notebook}, nil
	case entryID != nil:
		if *entryID <= 0 {
			return nil, errors.NewInvalidRequest("entry_id must be positive")
		}
		return &Target{Kind: record.KindEntry, EntryID: *entryID}, nil
	default:
		if *noteID <= 0 {
			return nil, errors.NewInvalidRequest("note_id must be positive")
		}
		return &Target{Kind: record.KindNote, NoteID: *noteID}, nil
	}
}

// resolveTarget confirms the target row exists and returns its id plus a
// human-readable label for messages.
func resolveTarget(ctx context.Context, q db.Querier, target *Target) (int64, string, error) {
	switch target.Kind {
	case record.KindNotebook:
		nb, err := db.GetNotebookByName(ctx, q, target.Notebook)
		if err != nil {
			return 0, "", err
		}
		return nb.ID, nb.Name, nil
	case record.KindEntry:
		entry, err := db.GetEntryByID(ctx, q, target.EntryID)
		if err != nil {
			return 0, "", err
		}
		return entry.ID, entry.Title, nil
	default:
		note, err := db.GetNoteByID(ctx, q, target.NoteID)
		if err != nil {
			return 0, "", err
		}
		return note.ID, note.EntryTitle, nil
	}
}

// resolveEntryRef resolves an entry by exact title, optionally scoped to a
// notebook. Zero matches is NotFound. Several matches without a notebook
// scope is AmbiguousReference; the caller must disambiguate, we never pick
// silently.
func resolveEntryRef(ctx context.Context, q db.Querier, title string, notebook *string) (*record.Entry, error) {
	var notebookID *int64
	if notebook != nil {
		nb, err := db.GetNotebookByName(ctx, q, *notebook)
		if err != nil {
			return nil, err
		}
		notebookID = &nb.ID
	}

	matches, err := db.FindEntriesByTitle(ctx, q, title, notebookID)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, errors.NewNotFound("entry", title)
	}
	if len(matches) > 1 {
		return nil, errors.NewAmbiguousReference(title, len(matches))
	}
	return &matches[0], nil
}

// resolveTag looks up a tag by its case-folded name, reporting NotFound with
// the caller's original spelling rather than the folded form.
func resolveTag(ctx context.Context, q db.Querier, name string) (*record.Tag, error) {
	name = strings.TrimSpace(name)
	norm := record.Fold(name)
	if norm == "" {
		return nil, errors.NewInvalidRequest("tag name is required")
	}
	tag, err := db.GetTagByNorm(ctx, q, norm)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.NewNotFound("tag", name)
		}
		return nil, err
	}
	return tag, nil
}

// cleanOptionalString trims an optional string, dropping it entirely when the
// result is empty.
func cleanOptionalString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// applyTags ensures each named tag exists and links it to the entity, inside
// the caller's transaction. Empty names are skipped. Returns the stored tag
// names (original casing) in input order, without duplicates.
func applyTags(ctx context.Context, q db.Querier, kind record.EntityKind, entityID int64, tags []string, now int64) ([]string, error) {
	var applied []string
	seen := make(map[string]bool)
	for _, raw := range tags {
		name := strings.TrimSpace(raw)
		norm := record.Fold(name)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true

		tag, _, err := db.EnsureTag(ctx, q, name, norm, nil, now)
		if err != nil {
			return nil, err
		}
		if _, err := db.AddTagAssociation(ctx, q, kind, entityID, tag.ID); err != nil {
			return nil, err
		}
		applied = append(applied, tag.Name)
	}
	return applied, nil
}

// registerAttachments copies each source file into the registry and records
// it against the owner, inside the caller's transaction. On error every file
// copied so far has been removed again. On success the caller owns the copies
// and must remove them if its transaction fails to commit.
func registerAttachments(ctx context.Context, q db.Querier, registry *attach.Registry, kind record.EntityKind, ownerID int64, sources []string, now int64) ([]record.Attachment, error) {
	var attachments []record.Attachment
	cleanup := func() {
		removeAttachmentFiles(registry, attachments)
	}

	for _, src := range sources {
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}

		a, err := registry.CopyIn(src)
		if err != nil {
			cleanup()
			return nil, err
		}
		switch kind {
		case record.KindEntry:
			a.EntryID = &ownerID
		case record.KindNote:
			a.NoteID = &ownerID
		}
		a.CreatedAt = now

		if err := db.InsertAttachment(ctx, q, a); err != nil {
			_ = registry.Remove(a.StoragePath)
			cleanup()
			return nil, err
		}
		attachments = append(attachments, *a)
	}
	return attachments, nil
}

// removeAttachmentFiles deletes copied attachment files, typically to undo a
// transaction that failed after the copies were made.
func removeAttachmentFiles(registry *attach.Registry, attachments []record.Attachment) {
	for _, a := range attachments {
		_ = registry.Remove(a.StoragePath)
	}
}
