package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/binder/internal/attach"
	"github.com/hpungsan/binder/internal/config"
	"github.com/hpungsan/binder/internal/db"
	"github.com/hpungsan/binder/internal/errors"
	"github.com/hpungsan/binder/internal/record"
)

// CreateNoteInput contains parameters for the CreateNote operation.
type CreateNoteInput struct {
	EntryID     *int64   // exact entry id
	EntryTitle  string   // or entry title, optionally scoped by Notebook
	Notebook    *string  // notebook scope for EntryTitle
	Content     string   // required
	Tags        []string // optional tag names to attach
	Attachments []string // optional source file paths to copy in
}

// CreateNoteOutput contains the result of the CreateNote operation.
type CreateNoteOutput struct {
	Note record.Note `json:"note"`
}

// CreateNote adds a note under an existing entry, with tags and attachments
// applied in the same transaction. The entry is referenced by id or by exact
// title; a title matching several entries across notebooks must be scoped
// with a notebook name or the call fails with AmbiguousReference.
func CreateNote(ctx context.Context, database *sql.DB, cfg *config.Config, input CreateNoteInput) (*CreateNoteOutput, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, errors.NewInvalidRequest("content is required")
	}

	title := strings.TrimSpace(input.EntryTitle)
	if input.EntryID != nil && title != "" {
		return nil, errors.NewInvalidRequest("cannot combine entry_id and entry title; use one")
	}
	if input.EntryID == nil && title == "" {
		return nil, errors.NewInvalidRequest("must specify entry_id or entry title")
	}
	if input.EntryID != nil && cleanOptionalString(input.Notebook) != nil {
		return nil, errors.NewInvalidRequest("notebook scope applies to entry titles; drop it when using entry_id")
	}

	now := time.Now().Unix()
	registry := attach.NewRegistry(cfg.AttachmentsDir)

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer func() { _ = tx.Rollback() }()

	var entry *record.Entry
	if input.EntryID != nil {
		entry, err = db.GetEntryByID(ctx, tx, *input.EntryID)
	} else {
		entry, err = resolveEntryRef(ctx, tx, title, cleanOptionalString(input.Notebook))
	}
	if err != nil {
		return nil, err
	}

	note := &record.Note{
		EntryID:    entry.ID,
		EntryTitle: entry.Title,
		Content:    input.Content,
		CreatedAt:  now,
	}
	if err := db.InsertNote(ctx, tx, note); err != nil {
		return nil, err
	}

	tags, err := applyTags(ctx, tx, record.KindNote, note.ID, input.Tags, now)
	if err != nil {
		return nil, err
	}
	note.Tags = tags

	var copied []record.Attachment
	if len(input.Attachments) > 0 {
		copied, err = registerAttachments(ctx, tx, registry, record.KindNote, note.ID, input.Attachments, now)
		if err != nil {
			return nil, err
		}
		note.Attachments = copied
	}

	if err := tx.Commit(); err != nil {
		removeAttachmentFiles(registry, copied)
		return nil, errors.NewInternal(err)
	}

	return &CreateNoteOutput{Note: *note}, nil
}
