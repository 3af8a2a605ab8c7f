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

// MergeTagsInput contains parameters for the MergeTags operation.
type MergeTagsInput struct {
	Sources []string // required; every source must exist
	NewTag  string   // required; created if missing
}

// MergeTagsOutput contains the result of the MergeTags operation.
type MergeTagsOutput struct {
	Tag               record.Tag `json:"tag"`
	MergedTags        []string   `json:"merged_tags"`
	AssociationsMoved int64      `json:"associations_moved"`
}

// MergeTags re-points every association from the source tags onto the
// destination tag and deletes the sources, all in one transaction. The
// destination is created if it does not exist; it may also be one of the
// sources, which then simply survives the merge. A missing source aborts
// the whole merge with NotFound, nothing is changed.
//
// An entity tagged with several of the merged tags ends up with a single
// association to the destination.
func MergeTags(ctx context.Context, database *sql.DB, input MergeTagsInput) (*MergeTagsOutput, error) {
	newName := strings.TrimSpace(input.NewTag)
	newNorm := record.Fold(newName)
	if newNorm == "" {
		return nil, errors.NewInvalidRequest("new_tag is required")
	}

	var sourceNames []string
	seen := make(map[string]bool)
	for _, raw := range input.Sources {
		name := strings.TrimSpace(raw)
		norm := record.Fold(name)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		sourceNames = append(sourceNames, name)
	}
	if len(sourceNames) == 0 {
		return nil, errors.NewInvalidRequest("at least one source tag is required")
	}

	now := time.Now().Unix()

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer func() { _ = tx.Rollback() }()

	// Resolve every source before touching anything so a typo cannot
	// half-apply the merge.
	sources := make([]*record.Tag, 0, len(sourceNames))
	for _, name := range sourceNames {
		tag, err := resolveTag(ctx, tx, name)
		if err != nil {
			return nil, err
		}
		sources = append(sources, tag)
	}

	dest, _, err := db.EnsureTag(ctx, tx, newName, newNorm, nil, now)
	if err != nil {
		return nil, err
	}

	var (
		merged []string
		moved  int64
	)
	for _, src := range sources {
		if src.ID == dest.ID {
			continue
		}

		n, err := db.MoveTagAssociations(ctx, tx, src.ID, dest.ID)
		if err != nil {
			return nil, err
		}
		moved += n

		if _, err := db.DeleteTagAssociations(ctx, tx, src.ID); err != nil {
			return nil, err
		}
		if err := db.DeleteTagRow(ctx, tx, src.ID); err != nil {
			return nil, err
		}
		merged = append(merged, src.Name)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}

	if merged == nil {
		merged = []string{}
	}

	return &MergeTagsOutput{
		Tag:               *dest,
		MergedTags:        merged,
		AssociationsMoved: moved,
	}, nil
}
