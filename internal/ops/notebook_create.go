package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/binder/internal/db"
	"github.com/hpungsan/binder/internal/errors"
	"github.com/hpungsan/binder/internal/record"
)

// CreateNotebookInput contains parameters for the CreateNotebook operation.
type CreateNotebookInput struct {
	Name        string  // required, unique, case-sensitive
	Description *string // optional
}

// CreateNotebookOutput contains the result of the CreateNotebook operation.
type CreateNotebookOutput struct {
	Notebook record.Notebook `json:"notebook"`
}

// CreateNotebook creates a new notebook in active status.
func CreateNotebook(ctx context.Context, database *sql.DB, input CreateNotebookInput) (*CreateNotebookOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}

	nb := &record.Notebook{
		Name:        name,
		Description: cleanOptionalString(input.Description),
		Status:      record.StatusActive,
		CreatedAt:   time.Now().Unix(),
	}

	if err := db.InsertNotebook(ctx, database, nb); err != nil {
		if err == db.ErrUniqueConstraint {
			return nil, errors.NewDuplicateName("notebook", name)
		}
		return nil, err
	}

	return &CreateNotebookOutput{Notebook: *nb}, nil
}
