package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/binder/internal/db"
	"github.com/hpungsan/binder/internal/record"
)

// ListNotebooksInput contains parameters for the ListNotebooks operation.
type ListNotebooksInput struct {
	IncludeArchived bool
}

// ListNotebooksOutput contains the result of the ListNotebooks operation.
type ListNotebooksOutput struct {
	Notebooks []record.Notebook `json:"notebooks"`
	Count     int               `json:"count"`
}

// ListNotebooks lists notebooks in creation order. Archived notebooks are
// hidden unless IncludeArchived is set.
func ListNotebooks(ctx context.Context, database *sql.DB, input ListNotebooksInput) (*ListNotebooksOutput, error) {
	notebooks, err := db.ListNotebooks(ctx, database, input.IncludeArchived)
	if err != nil {
		return nil, err
	}

	// Ensure we return an empty array rather than nil
	if notebooks == nil {
		notebooks = []record.Notebook{}
	}

	return &ListNotebooksOutput{
		Notebooks: notebooks,
		Count:     len(notebooks),
	}, nil
}
