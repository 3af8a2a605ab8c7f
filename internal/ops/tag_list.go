package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/binder/internal/db"
	"github.com/hpungsan/binder/internal/record"
)

// ListTagsInput contains parameters for the ListTags operation.
type ListTagsInput struct{}

// ListTagsOutput contains the result of the ListTags operation.
type ListTagsOutput struct {
	Tags  []record.TagUsage `json:"tags"`
	Count int               `json:"count"`
}

// ListTags lists every tag with its usage count, ordered by folded name.
// Unused tags appear with a count of zero.
func ListTags(ctx context.Context, database *sql.DB, _ ListTagsInput) (*ListTagsOutput, error) {
	tags, err := db.ListTags(ctx, database)
	if err != nil {
		return nil, err
	}

	// Ensure we return an empty array rather than nil
	if tags == nil {
		tags = []record.TagUsage{}
	}

	return &ListTagsOutput{
		Tags:  tags,
		Count: len(tags),
	}, nil
}
