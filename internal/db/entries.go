package db

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/hpungsan/binder/internal/errors"
	"github.com/hpungsan/binder/internal/record"
)

const entrySelect = `
	SELECT e.id, e.notebook_id, n.name, e.title, e.content, e.created_at
	FROM entries e
	LEFT JOIN notebooks n ON n.id = e.notebook_id
`

// InsertEntry stores a new entry and fills in its assigned id.
func InsertEntry(ctx context.Context, q Querier, e *record.Entry) error {
	query := `
		INSERT INTO entries (notebook_id, title, content, created_at)
		VALUES (?, ?, ?, ?)
	`
	result, err := q.ExecContext(ctx, query,
		toNullInt64(e.NotebookID), e.Title, e.Content, e.CreatedAt,
	)
	if err != nil {
		return mapExecError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.NewInternal(err)
	}
	e.ID = id

	return nil
}

// GetEntryByID retrieves an entry with its notebook name resolved.
func GetEntryByID(ctx context.Context, q Querier, id int64) (*record.Entry, error) {
	e, err := scanEntry(q.QueryRowContext(ctx, entrySelect+` WHERE e.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("entry", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return e, nil
}

// FindEntriesByTitle returns entries with the exact title, optionally
// restricted to one notebook, ordered by creation time. Callers decide
// what zero or multiple matches mean.
func FindEntriesByTitle(ctx context.Context, q Querier, title string, notebookID *int64) ([]record.Entry, error) {
	query := entrySelect + ` WHERE e.title = ?`
	args := []any{title}
	if notebookID != nil {
		query += ` AND e.notebook_id = ?`
		args = append(args, *notebookID)
	}
	query += ` ORDER BY e.created_at ASC, e.id ASC`

	return queryEntries(ctx, q, query, args...)
}

// GetUnattachedEntryMatch finds an entry with no notebook whose title,
// content, and creation time all match. Returns nil without error when
// there is none. Import uses this to keep re-imports from duplicating
// unattached entries, which have no uniqueness constraint of their own.
func GetUnattachedEntryMatch(ctx context.Context, q Querier, title, content string, createdAt int64) (*record.Entry, error) {
	query := entrySelect + `
		WHERE e.notebook_id IS NULL AND e.title = ? AND e.content = ? AND e.created_at = ?
		ORDER BY e.id ASC
		LIMIT 1`
	e, err := scanEntry(q.QueryRowContext(ctx, query, title, content, createdAt))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return e, nil
}

// CheckEntryTitleExists checks for an entry with the title inside one notebook.
func CheckEntryTitleExists(ctx context.Context, q Querier, notebookID int64, title string) (bool, error) {
	query := `SELECT 1 FROM entries WHERE notebook_id = ? AND title = ? LIMIT 1`

	var exists int
	err := q.QueryRowContext(ctx, query, notebookID, title).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return true, nil
}

// ListEntries returns entries ordered by creation time, optionally
// filtered by owning notebook and/or carried tag.
func ListEntries(ctx context.Context, q Querier, notebookID, tagID *int64) ([]record.Entry, error) {
	query := entrySelect
	var conditions []string
	var args []any

	if notebookID != nil {
		conditions = append(conditions, "e.notebook_id = ?")
		args = append(args, *notebookID)
	}
	if tagID != nil {
		conditions = append(conditions, `EXISTS (
			SELECT 1 FROM entity_tags et
			WHERE et.entity_kind = 'entry' AND et.entity_id = e.id AND et.tag_id = ?
		)`)
		args = append(args, *tagID)
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += ` ORDER BY e.created_at ASC, e.id ASC`

	return queryEntries(ctx, q, query, args...)
}

func queryEntries(ctx context.Context, q Querier, query string, args ...any) ([]record.Entry, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var entries []record.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return entries, nil
}

// scanEntry scans a single row into an Entry struct.
func scanEntry(row rowScanner) (*record.Entry, error) {
	var (
		e          record.Entry
		notebookID sql.NullInt64
		notebook   sql.NullString
	)
	err := row.Scan(&e.ID, &notebookID, &notebook, &e.Title, &e.Content, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.NotebookID = fromNullInt64(notebookID)
	e.Notebook = fromNullString(notebook)
	return &e, nil
}
