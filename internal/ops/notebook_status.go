package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/binder/internal/db"
	"github.com/hpungsan/binder/internal/errors"
	"github.com/hpungsan/binder/internal/record"
)

// SetNotebookStatusInput contains parameters for the SetNotebookStatus operation.
type SetNotebookStatusInput struct {
	Name   string                // required
	Status record.NotebookStatus // required: active or archived
}

// SetNotebookStatusOutput contains the result of the SetNotebookStatus operation.
type SetNotebookStatusOutput struct {
	Notebook record.Notebook `json:"notebook"`
	Changed  bool            `json:"changed"`
}

// SetNotebookStatus archives or reactivates a notebook. An archived notebook
// rejects new entries but keeps existing content readable; reactivating lifts
// the restriction. Setting the status it already has is a no-op success.
func SetNotebookStatus(ctx context.Context, database *sql.DB, input SetNotebookStatusInput) (*SetNotebookStatusOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}
	if input.Status != record.StatusActive && input.Status != record.StatusArchived {
		return nil, errors.NewInvalidRequest("status must be one of: active, archived")
	}

	nb, err := db.GetNotebookByName(ctx, database, name)
	if err != nil {
		return nil, err
	}

	if nb.Status == input.Status {
		return &SetNotebookStatusOutput{Notebook: *nb, Changed: false}, nil
	}

	if err := db.UpdateNotebookStatus(ctx, database, nb.ID, input.Status); err != nil {
		return nil, err
	}

	nb.Status = input.Status
	return &SetNotebookStatusOutput{Notebook: *nb, Changed: true}, nil
}
