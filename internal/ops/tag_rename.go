package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/binder/internal/db"
	"github.com/hpungsan/binder/internal/errors"
	"github.com/hpungsan/binder/internal/record"
)

// RenameTagInput contains parameters for the RenameTag operation.
type RenameTagInput struct {
	Name    string // current name, required
	NewName string // required
}

// RenameTagOutput contains the result of the RenameTag operation.
type RenameTagOutput struct {
	Tag record.Tag `json:"tag"`
}

// RenameTag changes a tag's name; every association follows the tag.
// Renaming to a name whose folded form belongs to a different tag is
// DuplicateName (use MergeTags for that). Renaming to a different casing of
// the same folded name just updates the display spelling.
func RenameTag(ctx context.Context, database *sql.DB, input RenameTagInput) (*RenameTagOutput, error) {
	newName := strings.TrimSpace(input.NewName)
	newNorm := record.Fold(newName)
	if newNorm == "" {
		return nil, errors.NewInvalidRequest("new_name is required")
	}

	tag, err := resolveTag(ctx, database, input.Name)
	if err != nil {
		return nil, err
	}

	if newName == tag.Name {
		return &RenameTagOutput{Tag: *tag}, nil
	}

	if err := db.UpdateTagName(ctx, database, tag.ID, newName, newNorm); err != nil {
		if err == db.ErrUniqueConstraint {
			return nil, errors.NewDuplicateName("tag", newName)
		}
		return nil, err
	}

	tag.Name = newName
	tag.NameNorm = newNorm
	return &RenameTagOutput{Tag: *tag}, nil
}
