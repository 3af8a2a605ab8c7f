package db

import (
	"context"
	"database/sql"

	"github.com/hpungsan/binder/internal/errors"
	"github.com/hpungsan/binder/internal/record"
)

// GetTagByNorm retrieves a tag by its folded name.
func GetTagByNorm(ctx context.Context, q Querier, norm string) (*record.Tag, error) {
	query := `
		SELECT id, name, name_norm, description, created_at
		FROM tags
		WHERE name_norm = ?
	`
	t, err := scanTag(q.QueryRowContext(ctx, query, norm))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("tag", norm)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return t, nil
}

// EnsureTag creates the tag if its folded name is new and returns the
// stored row either way. Safe to call inside a transaction.
func EnsureTag(ctx context.Context, q Querier, name, norm string, description *string, now int64) (*record.Tag, bool, error) {
	query := `
		INSERT OR IGNORE INTO tags (name, name_norm, description, created_at)
		VALUES (?, ?, ?, ?)
	`
	result, err := q.ExecContext(ctx, query, name, norm, toNullString(description), now)
	if err != nil {
		return nil, false, mapExecError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, false, errors.NewInternal(err)
	}

	t, err := GetTagByNorm(ctx, q, norm)
	if err != nil {
		return nil, false, err
	}
	return t, rowsAffected > 0, nil
}

// UpdateTagName rewrites a tag's raw and folded names.
func UpdateTagName(ctx context.Context, q Querier, id int64, name, norm string) error {
	result, err := q.ExecContext(ctx,
		`UPDATE tags SET name = ?, name_norm = ? WHERE id = ?`, name, norm, id,
	)
	if err != nil {
		return mapExecError(err)
	}
	return requireRow(result, "tag", name)
}

// DeleteTagRow removes a tag row. Associations are the caller's concern.
func DeleteTagRow(ctx context.Context, q Querier, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return mapExecError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("tag", "")
	}
	return nil
}

// ListTags returns all tags with usage counts, ordered by folded name.
func ListTags(ctx context.Context, q Querier) ([]record.TagUsage, error) {
	query := `
		SELECT t.id, t.name, t.name_norm, t.description, t.created_at,
			COUNT(et.tag_id)
		FROM tags t
		LEFT JOIN entity_tags et ON et.tag_id = t.id
		GROUP BY t.id
		ORDER BY t.name_norm ASC
	`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var tags []record.TagUsage
	for rows.Next() {
		var (
			tu          record.TagUsage
			description sql.NullString
		)
		err := rows.Scan(&tu.ID, &tu.Name, &tu.NameNorm, &description, &tu.CreatedAt, &tu.UsageCount)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		tu.Description = fromNullString(description)
		tags = append(tags, tu)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return tags, nil
}

// AddTagAssociation links a tag to an entity. Reports whether a new
// association row was written (re-adding an existing link is a no-op).
func AddTagAssociation(ctx context.Context, q Querier, kind record.EntityKind, entityID, tagID int64) (bool, error) {
	query := `
		INSERT OR IGNORE INTO entity_tags (entity_kind, entity_id, tag_id)
		VALUES (?, ?, ?)
	`
	result, err := q.ExecContext(ctx, query, kind, entityID, tagID)
	if err != nil {
		return false, mapExecError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return rowsAffected > 0, nil
}

// RemoveTagAssociation unlinks a tag from an entity. Reports whether an
// association row existed.
func RemoveTagAssociation(ctx context.Context, q Querier, kind record.EntityKind, entityID, tagID int64) (bool, error) {
	query := `
		DELETE FROM entity_tags
		WHERE entity_kind = ? AND entity_id = ? AND tag_id = ?
	`
	result, err := q.ExecContext(ctx, query, kind, entityID, tagID)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return rowsAffected > 0, nil
}

// DeleteTagAssociations removes every association referencing a tag and
// returns how many rows were dropped.
func DeleteTagAssociations(ctx context.Context, q Querier, tagID int64) (int64, error) {
	result, err := q.ExecContext(ctx, `DELETE FROM entity_tags WHERE tag_id = ?`, tagID)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return rowsAffected, nil
}

// MoveTagAssociations re-points every association from one tag to another.
// Links the destination already has are left alone, so an entity tagged with
// both tags ends up with a single association. Returns how many rows were
// written for the destination.
func MoveTagAssociations(ctx context.Context, q Querier, fromTagID, toTagID int64) (int64, error) {
	query := `
		INSERT OR IGNORE INTO entity_tags (entity_kind, entity_id, tag_id)
		SELECT entity_kind, entity_id, ?
		FROM entity_tags
		WHERE tag_id = ?
	`
	result, err := q.ExecContext(ctx, query, toTagID, fromTagID)
	if err != nil {
		return 0, mapExecError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return rowsAffected, nil
}

// GetTagNamesFor returns the names of every tag on one entity, ordered
// by folded name.
func GetTagNamesFor(ctx context.Context, q Querier, kind record.EntityKind, entityID int64) ([]string, error) {
	query := `
		SELECT t.name
		FROM tags t
		JOIN entity_tags et ON et.tag_id = t.id
		WHERE et.entity_kind = ? AND et.entity_id = ?
		ORDER BY t.name_norm ASC
	`
	rows, err := q.QueryContext(ctx, query, kind, entityID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.NewInternal(err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return names, nil
}

// ListAssociations returns every entity_tags row, ordered for stable export.
func ListAssociations(ctx context.Context, q Querier) ([]record.TagAssociation, error) {
	query := `
		SELECT entity_kind, entity_id, tag_id
		FROM entity_tags
		ORDER BY entity_kind ASC, entity_id ASC, tag_id ASC
	`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var assocs []record.TagAssociation
	for rows.Next() {
		var a record.TagAssociation
		if err := rows.Scan(&a.EntityKind, &a.EntityID, &a.TagID); err != nil {
			return nil, errors.NewInternal(err)
		}
		assocs = append(assocs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return assocs, nil
}

// scanTag scans a single row into a Tag struct.
func scanTag(row rowScanner) (*record.Tag, error) {
	var (
		t           record.Tag
		description sql.NullString
	)
	err := row.Scan(&t.ID, &t.Name, &t.NameNorm, &description, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.Description = fromNullString(description)
	return &t, nil
}
