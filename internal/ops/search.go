package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/binder/internal/db"
	"github.com/hpungsan/binder/internal/record"
)

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Keyword string  // substring to look for, matched case-insensitively
	Scope   Scope   // entries, notes, or both (default both)
	Tag     *string // optional filter by tag name
}

// SearchOutput contains the result of the Search operation.
type SearchOutput struct {
	Keyword string         `json:"keyword"`
	Scope   Scope          `json:"scope"`
	Entries []record.Entry `json:"entries"`
	Notes   []record.Note  `json:"notes"`
	Count   int            `json:"count"`
}

// Search finds entries and notes containing the keyword. Entries match on
// title, content, or attachment filename; notes on content or attachment
// filename. LIKE metacharacters in the keyword are matched literally, so a
// keyword of "100%" only finds the text "100%". An empty keyword returns an
// empty result, not an error. Results keep creation order.
func Search(ctx context.Context, database *sql.DB, input SearchInput) (*SearchOutput, error) {
	scope, err := normalizeScope(input.Scope)
	if err != nil {
		return nil, err
	}

	out := &SearchOutput{
		Keyword: strings.TrimSpace(input.Keyword),
		Scope:   scope,
		Entries: []record.Entry{},
		Notes:   []record.Note{},
	}
	if out.Keyword == "" {
		return out, nil
	}

	var tagID *int64
	if name := cleanOptionalString(input.Tag); name != nil {
		tag, err := resolveTag(ctx, database, *name)
		if err != nil {
			return nil, err
		}
		tagID = &tag.ID
	}

	if scope == ScopeEntries || scope == ScopeBoth {
		entries, err := db.SearchEntries(ctx, database, out.Keyword, tagID)
		if err != nil {
			return nil, err
		}
		for i := range entries {
			tags, err := db.GetTagNamesFor(ctx, database, record.KindEntry, entries[i].ID)
			if err != nil {
				return nil, err
			}
			entries[i].Tags = tags
		}
		if entries != nil {
			out.Entries = entries
		}
	}

	if scope == ScopeNotes || scope == ScopeBoth {
		notes, err := db.SearchNotes(ctx, database, out.Keyword, tagID)
		if err != nil {
			return nil, err
		}
		for i := range notes {
			tags, err := db.GetTagNamesFor(ctx, database, record.KindNote, notes[i].ID)
			if err != nil {
				return nil, err
			}
			notes[i].Tags = tags
		}
		if notes != nil {
			out.Notes = notes
		}
	}

	out.Count = len(out.Entries) + len(out.Notes)
	return out, nil
}
