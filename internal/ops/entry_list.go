package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/binder/internal/db"
	"github.com/hpungsan/binder/internal/record"
)

// ListEntriesInput contains parameters for the ListEntries operation.
type ListEntriesInput struct {
	Notebook *string // optional filter by notebook name
	Tag      *string // optional filter by tag name
}

// ListEntriesOutput contains the result of the ListEntries operation.
type ListEntriesOutput struct {
	Entries []record.Entry `json:"entries"`
	Count   int            `json:"count"`
}

// ListEntries lists entries in creation order, optionally filtered by
// notebook and/or tag. Each entry carries its tag names and attachments.
// An unknown notebook or tag filter is NotFound, not an empty result.
func ListEntries(ctx context.Context, database *sql.DB, input ListEntriesInput) (*ListEntriesOutput, error) {
	var notebookID *int64
	if name := cleanOptionalString(input.Notebook); name != nil {
		nb, err := db.GetNotebookByName(ctx, database, *name)
		if err != nil {
			return nil, err
		}
		notebookID = &nb.ID
	}

	var tagID *int64
	if name := cleanOptionalString(input.Tag); name != nil {
		tag, err := resolveTag(ctx, database, *name)
		if err != nil {
			return nil, err
		}
		tagID = &tag.ID
	}

	entries, err := db.ListEntries(ctx, database, notebookID, tagID)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		tags, err := db.GetTagNamesFor(ctx, database, record.KindEntry, entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].Tags = tags

		attachments, err := db.ListAttachmentsForEntry(ctx, database, entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].Attachments = attachments
	}

	// Ensure we return an empty array rather than nil
	if entries == nil {
		entries = []record.Entry{}
	}

	return &ListEntriesOutput{
		Entries: entries,
		Count:   len(entries),
	}, nil
}
