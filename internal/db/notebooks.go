package db

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/hpungsan/binder/internal/errors"
	"github.com/hpungsan/binder/internal/record"
)

// InsertNotebook stores a new notebook and fills in its assigned id.
func InsertNotebook(ctx context.Context, q Querier, nb *record.Notebook) error {
	query := `
		INSERT INTO notebooks (name, description, status, created_at)
		VALUES (?, ?, ?, ?)
	`
	result, err := q.ExecContext(ctx, query,
		nb.Name, toNullString(nb.Description), nb.Status, nb.CreatedAt,
	)
	if err != nil {
		return mapExecError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.NewInternal(err)
	}
	nb.ID = id

	return nil
}

// GetNotebookByName retrieves a notebook by its exact, case-sensitive name.
func GetNotebookByName(ctx context.Context, q Querier, name string) (*record.Notebook, error) {
	query := `
		SELECT id, name, description, status, created_at
		FROM notebooks
		WHERE name = ?
	`
	nb, err := scanNotebook(q.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("notebook", name)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return nb, nil
}

// UpdateNotebookName renames a notebook in place.
func UpdateNotebookName(ctx context.Context, q Querier, id int64, name string) error {
	result, err := q.ExecContext(ctx, `UPDATE notebooks SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return mapExecError(err)
	}
	return requireRow(result, "notebook", strconv.FormatInt(id, 10))
}

// UpdateNotebookStatus sets a notebook's lifecycle status.
func UpdateNotebookStatus(ctx context.Context, q Querier, id int64, status record.NotebookStatus) error {
	result, err := q.ExecContext(ctx, `UPDATE notebooks SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireRow(result, "notebook", strconv.FormatInt(id, 10))
}

// ListNotebooks returns notebooks ordered by creation time. Archived
// notebooks are excluded unless includeArchived is set.
func ListNotebooks(ctx context.Context, q Querier, includeArchived bool) ([]record.Notebook, error) {
	query := `
		SELECT id, name, description, status, created_at
		FROM notebooks
	`
	if !includeArchived {
		query += ` WHERE status = 'active'`
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var notebooks []record.Notebook
	for rows.Next() {
		nb, err := scanNotebook(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		notebooks = append(notebooks, *nb)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return notebooks, nil
}

// ListNotebooksByTag returns notebooks carrying the tag, ordered by
// creation time. Archived notebooks are included; a tag lookup should
// surface everything it touches.
func ListNotebooksByTag(ctx context.Context, q Querier, tagID int64) ([]record.Notebook, error) {
	query := `
		SELECT id, name, description, status, created_at
		FROM notebooks
		WHERE EXISTS (
			SELECT 1 FROM entity_tags et
			WHERE et.entity_kind = 'notebook' AND et.entity_id = notebooks.id AND et.tag_id = ?
		)
		ORDER BY created_at ASC, id ASC
	`
	rows, err := q.QueryContext(ctx, query, tagID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var notebooks []record.Notebook
	for rows.Next() {
		nb, err := scanNotebook(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		notebooks = append(notebooks, *nb)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return notebooks, nil
}

// requireRow converts a zero-row update into a NotFound error.
func requireRow(result sql.Result, kind, identifier string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(kind, identifier)
	}
	return nil
}

// scanNotebook scans a single row into a Notebook struct.
func scanNotebook(row rowScanner) (*record.Notebook, error) {
	var (
		nb          record.Notebook
		description sql.NullString
	)
	err := row.Scan(&nb.ID, &nb.Name, &description, &nb.Status, &nb.CreatedAt)
	if err != nil {
		return nil, err
	}
	nb.Description = fromNullString(description)
	return &nb, nil
}
