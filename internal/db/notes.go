package db

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/hpungsan/binder/internal/errors"
	"github.com/hpungsan/binder/internal/record"
)

const noteSelect = `
	SELECT no.id, no.entry_id, e.title, no.content, no.created_at
	FROM notes no
	JOIN entries e ON e.id = no.entry_id
`

// InsertNote stores a new note and fills in its assigned id.
func InsertNote(ctx context.Context, q Querier, n *record.Note) error {
	query := `
		INSERT INTO notes (entry_id, content, created_at)
		VALUES (?, ?, ?)
	`
	result, err := q.ExecContext(ctx, query, n.EntryID, n.Content, n.CreatedAt)
	if err != nil {
		return mapExecError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.NewInternal(err)
	}
	n.ID = id

	return nil
}

// GetNoteByID retrieves a note with its entry title resolved.
func GetNoteByID(ctx context.Context, q Querier, id int64) (*record.Note, error) {
	n, err := scanNote(q.QueryRowContext(ctx, noteSelect+` WHERE no.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("note", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return n, nil
}

// GetNoteMatch finds a note on the entry whose content and creation time
// both match. Returns nil without error when there is none. Import uses
// this to keep re-imports from duplicating notes.
func GetNoteMatch(ctx context.Context, q Querier, entryID int64, content string, createdAt int64) (*record.Note, error) {
	query := noteSelect + `
		WHERE no.entry_id = ? AND no.content = ? AND no.created_at = ?
		ORDER BY no.id ASC
		LIMIT 1`
	n, err := scanNote(q.QueryRowContext(ctx, query, entryID, content, createdAt))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return n, nil
}

// ListNotes returns notes ordered by creation time, optionally filtered
// to one entry.
func ListNotes(ctx context.Context, q Querier, entryID *int64) ([]record.Note, error) {
	query := noteSelect
	var args []any
	if entryID != nil {
		query += ` WHERE no.entry_id = ?`
		args = append(args, *entryID)
	}
	query += ` ORDER BY no.created_at ASC, no.id ASC`

	return queryNotes(ctx, q, query, args...)
}

// ListNotesByTag returns notes carrying the tag, ordered by creation time.
func ListNotesByTag(ctx context.Context, q Querier, tagID int64) ([]record.Note, error) {
	query := noteSelect + `
		WHERE EXISTS (
			SELECT 1 FROM entity_tags et
			WHERE et.entity_kind = 'note' AND et.entity_id = no.id AND et.tag_id = ?
		)
		ORDER BY no.created_at ASC, no.id ASC`

	return queryNotes(ctx, q, query, tagID)
}

func queryNotes(ctx context.Context, q Querier, query string, args ...any) ([]record.Note, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var notes []record.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		notes = append(notes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return notes, nil
}

// scanNote scans a single row into a Note struct.
func scanNote(row rowScanner) (*record.Note, error) {
	var n record.Note
	err := row.Scan(&n.ID, &n.EntryID, &n.EntryTitle, &n.Content, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
