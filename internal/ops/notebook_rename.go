package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/binder/internal/db"
	"github.com/hpungsan/binder/internal/errors"
	"github.com/hpungsan/binder/internal/record"
)

// RenameNotebookInput contains parameters for the RenameNotebook operation.
type RenameNotebookInput struct {
	Name    string // current name, required
	NewName string // required
}

// RenameNotebookOutput contains the result of the RenameNotebook operation.
type RenameNotebookOutput struct {
	Notebook record.Notebook `json:"notebook"`
}

// RenameNotebook changes a notebook's name. Entries, tags, and status stay
// attached; only the name changes. Renaming to the current name is a no-op
// success.
func RenameNotebook(ctx context.Context, database *sql.DB, input RenameNotebookInput) (*RenameNotebookOutput, error) {
	name := strings.TrimSpace(input.Name)
	newName := strings.TrimSpace(input.NewName)
	if name == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}
	if newName == "" {
		return nil, errors.NewInvalidRequest("new_name is required")
	}

	nb, err := db.GetNotebookByName(ctx, database, name)
	if err != nil {
		return nil, err
	}

	if newName == name {
		return &RenameNotebookOutput{Notebook: *nb}, nil
	}

	if err := db.UpdateNotebookName(ctx, database, nb.ID, newName); err != nil {
		if err == db.ErrUniqueConstraint {
			return nil, errors.NewDuplicateName("notebook", newName)
		}
		return nil, err
	}

	nb.Name = newName
	return &RenameNotebookOutput{Notebook: *nb}, nil
}
