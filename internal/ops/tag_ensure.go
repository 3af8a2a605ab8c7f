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

// EnsureTagInput contains parameters for the EnsureTag operation.
type EnsureTagInput struct {
	Name        string  // required; identity is the case-folded form
	Description *string // optional; kept only when the tag is new
}

// EnsureTagOutput contains the result of the EnsureTag operation.
type EnsureTagOutput struct {
	Tag     record.Tag `json:"tag"`
	Created bool       `json:"created"`
}

// EnsureTag creates a tag, or returns the existing one when a tag with the
// same folded name already exists. The first spelling seen is the one kept
// for display.
func EnsureTag(ctx context.Context, database *sql.DB, input EnsureTagInput) (*EnsureTagOutput, error) {
	name := strings.TrimSpace(input.Name)
	norm := record.Fold(name)
	if norm == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}

	tag, created, err := db.EnsureTag(ctx, database, name, norm, cleanOptionalString(input.Description), time.Now().Unix())
	if err != nil {
		return nil, err
	}

	return &EnsureTagOutput{Tag: *tag, Created: created}, nil
}
