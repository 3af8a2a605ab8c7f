package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/binder/internal/db"
	"github.com/hpungsan/binder/internal/record"
)

// SearchTagInput contains parameters for the SearchTag operation.
type SearchTagInput struct {
	Tag string // required tag name
}

// SearchTagOutput contains the result of the SearchTag operation.
type SearchTagOutput struct {
	Tag       record.Tag        `json:"tag"`
	Notebooks []record.Notebook `json:"notebooks"`
	Entries   []record.Entry    `json:"entries"`
	Notes     []record.Note     `json:"notes"`
	Count     int               `json:"count"`
}

// SearchTag returns everything carrying the tag: notebooks, entries, and
// notes, each group in creation order. The tag must exist.
func SearchTag(ctx context.Context, database *sql.DB, input SearchTagInput) (*SearchTagOutput, error) {
	tag, err := resolveTag(ctx, database, input.Tag)
	if err != nil {
		return nil, err
	}

	notebooks, err := db.ListNotebooksByTag(ctx, database, tag.ID)
	if err != nil {
		return nil, err
	}
	entries, err := db.ListEntries(ctx, database, nil, &tag.ID)
	if err != nil {
		return nil, err
	}
	notes, err := db.ListNotesByTag(ctx, database, tag.ID)
	if err != nil {
		return nil, err
	}

	// Ensure we return empty arrays rather than nil
	if notebooks == nil {
		notebooks = []record.Notebook{}
	}
	if entries == nil {
		entries = []record.Entry{}
	}
	if notes == nil {
		notes = []record.Note{}
	}

	return &SearchTagOutput{
		Tag:       *tag,
		Notebooks: notebooks,
		Entries:   entries,
		Notes:     notes,
		Count:     len(notebooks) + len(entries) + len(notes),
	}, nil
}
