package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/binder/internal/db"
	"github.com/hpungsan/binder/internal/record"
)

// DetachTagInput contains parameters for the DetachTag operation.
type DetachTagInput struct {
	Tag      string // required tag name; must exist
	Notebook string // target: exactly one of Notebook, EntryID, NoteID
	EntryID  *int64
	NoteID   *int64
}

// DetachTagOutput contains the result of the DetachTag operation.
type DetachTagOutput struct {
	Tag         record.Tag        `json:"tag"`
	TargetKind  record.EntityKind `json:"target_kind"`
	TargetID    int64             `json:"target_id"`
	TargetLabel string            `json:"target_label"`
	Detached    bool              `json:"detached"`
}

// DetachTag removes a tag from a notebook, entry, or note. The tag and the
// target must both exist; detaching a tag that was not attached is a no-op
// success with Detached false. The tag itself survives even when this was
// its last association.
func DetachTag(ctx context.Context, database *sql.DB, input DetachTagInput) (*DetachTagOutput, error) {
	target, err := ValidateTarget(input.Notebook, input.EntryID, input.NoteID)
	if err != nil {
		return nil, err
	}

	tag, err := resolveTag(ctx, database, input.Tag)
	if err != nil {
		return nil, err
	}

	entityID, label, err := resolveTarget(ctx, database, target)
	if err != nil {
		return nil, err
	}

	detached, err := db.RemoveTagAssociation(ctx, database, target.Kind, entityID, tag.ID)
	if err != nil {
		return nil, err
	}

	return &DetachTagOutput{
		Tag:         *tag,
		TargetKind:  target.Kind,
		TargetID:    entityID,
		TargetLabel: label,
		Detached:    detached,
	}, nil
}
