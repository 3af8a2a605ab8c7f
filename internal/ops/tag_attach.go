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

// AttachTagInput contains parameters for the AttachTag operation.
type AttachTagInput struct {
	Tag      string // required tag name; created on first use
	Notebook string // target: exactly one of Notebook, EntryID, NoteID
	EntryID  *int64
	NoteID   *int64
}

// AttachTagOutput contains the result of the AttachTag operation.
type AttachTagOutput struct {
	Tag         record.Tag        `json:"tag"`
	TargetKind  record.EntityKind `json:"target_kind"`
	TargetID    int64             `json:"target_id"`
	TargetLabel string            `json:"target_label"`
	Attached    bool              `json:"attached"`
}

// AttachTag links a tag to a notebook, entry, or note, creating the tag if
// it does not exist yet. Attaching a tag that is already on the target is a
// no-op success with Attached false.
func AttachTag(ctx context.Context, database *sql.DB, input AttachTagInput) (*AttachTagOutput, error) {
	name := strings.TrimSpace(input.Tag)
	norm := record.Fold(name)
	if norm == "" {
		return nil, errors.NewInvalidRequest("tag is required")
	}

	target, err := ValidateTarget(input.Notebook, input.EntryID, input.NoteID)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer func() { _ = tx.Rollback() }()

	entityID, label, err := resolveTarget(ctx, tx, target)
	if err != nil {
		return nil, err
	}

	tag, _, err := db.EnsureTag(ctx, tx, name, norm, nil, now)
	if err != nil {
		return nil, err
	}

	attached, err := db.AddTagAssociation(ctx, tx, target.Kind, entityID, tag.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &AttachTagOutput{
		Tag:         *tag,
		TargetKind:  target.Kind,
		TargetID:    entityID,
		TargetLabel: label,
		Attached:    attached,
	}, nil
}
