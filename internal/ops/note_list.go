package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/binder/internal/db"
	"github.com/hpungsan/binder/internal/errors"
	"github.com/hpungsan/binder/internal/record"
)

// ListNotesInput contains parameters for the ListNotes operation.
type ListNotesInput struct {
	EntryID    *int64  // optional filter by exact entry id
	EntryTitle string  // or by entry title, optionally scoped by Notebook
	Notebook   *string // notebook scope for EntryTitle
}

// ListNotesOutput contains the result of the ListNotes operation.
type ListNotesOutput struct {
	Notes []record.Note `json:"notes"`
	Count int           `json:"count"`
}

// ListNotes lists notes in creation order, optionally restricted to one
// entry. Each note carries its tag names and attachments.
func ListNotes(ctx context.Context, database *sql.DB, input ListNotesInput) (*ListNotesOutput, error) {
	title := strings.TrimSpace(input.EntryTitle)
	if input.EntryID != nil && title != "" {
		return nil, errors.NewInvalidRequest("cannot combine entry_id and entry title; use one")
	}
	if input.EntryID == nil && cleanOptionalString(input.Notebook) != nil && title == "" {
		return nil, errors.NewInvalidRequest("notebook scope requires an entry title")
	}

	var entryID *int64
	switch {
	case input.EntryID != nil:
		entry, err := db.GetEntryByID(ctx, database, *input.EntryID)
		if err != nil {
			return nil, err
		}
		entryID = &entry.ID
	case title != "":
		entry, err := resolveEntryRef(ctx, database, title, cleanOptionalString(input.Notebook))
		if err != nil {
			return nil, err
		}
		entryID = &entry.ID
	}

	notes, err := db.ListNotes(ctx, database, entryID)
	if err != nil {
		return nil, err
	}

	for i := range notes {
		tags, err := db.GetTagNamesFor(ctx, database, record.KindNote, notes[i].ID)
		if err != nil {
			return nil, err
		}
		notes[i].Tags = tags

		attachments, err := db.ListAttachmentsForNote(ctx, database, notes[i].ID)
		if err != nil {
			return nil, err
		}
		notes[i].Attachments = attachments
	}

	// Ensure we return an empty array rather than nil
	if notes == nil {
		notes = []record.Note{}
	}

	return &ListNotesOutput{
		Notes: notes,
		Count: len(notes),
	}, nil
}
