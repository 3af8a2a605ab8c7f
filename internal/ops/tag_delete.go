package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/binder/internal/db"
	"github.com/hpungsan/binder/internal/errors"
	"github.com/hpungsan/binder/internal/record"
)

// DeleteTagInput contains parameters for the DeleteTag operation.
type DeleteTagInput struct {
	Name string // required
}

// DeleteTagOutput contains the result of the DeleteTag operation.
type DeleteTagOutput struct {
	Tag                 record.Tag `json:"tag"`
	AssociationsRemoved int64      `json:"associations_removed"`
}

// DeleteTag removes a tag and all of its associations. The notebooks,
// entries, and notes it was attached to are untouched.
func DeleteTag(ctx context.Context, database *sql.DB, input DeleteTagInput) (*DeleteTagOutput, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer func() { _ = tx.Rollback() }()

	tag, err := resolveTag(ctx, tx, input.Name)
	if err != nil {
		return nil, err
	}

	removed, err := db.DeleteTagAssociations(ctx, tx, tag.ID)
	if err != nil {
		return nil, err
	}
	if err := db.DeleteTagRow(ctx, tx, tag.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &DeleteTagOutput{
		Tag:                 *tag,
		AssociationsRemoved: removed,
	}, nil
}
