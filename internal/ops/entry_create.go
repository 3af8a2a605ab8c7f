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

// CreateEntryInput contains parameters for the CreateEntry operation.
type CreateEntryInput struct {
	Title       string   // required
	Content     string   // optional body text
	Notebook    *string  // optional notebook name to file the entry under
	Tags        []string // optional tag names to attach
	Attachments []string // optional source file paths to copy in
}

// CreateEntryOutput contains the result of the CreateEntry operation.
type CreateEntryOutput struct {
	Entry record.Entry `json:"entry"`
}

// CreateEntry creates an entry, optionally filed under a notebook, with its
// tags and attachments applied in the same transaction. Either everything is
// recorded or nothing is: a failed attachment copy aborts the entry and
// removes any files already copied.
//
// Titles must be unique within a notebook. Entries with no notebook may
// repeat titles freely. Archived notebooks reject new entries.
func CreateEntry(ctx context.Context, database *sql.DB, cfg *config.Config, input CreateEntryInput) (*CreateEntryOutput, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.NewInvalidRequest("title is required")
	}
	notebook := cleanOptionalString(input.Notebook)

	now := time.Now().Unix()
	registry := attach.NewRegistry(cfg.AttachmentsDir)

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer func() { _ = tx.Rollback() }()

	entry := &record.Entry{
		Title:     title,
		Content:   input.Content,
		CreatedAt: now,
	}

	if notebook != nil {
		nb, err := db.GetNotebookByName(ctx, tx, *notebook)
		if err != nil {
			return nil, err
		}
		if nb.Status == record.StatusArchived {
			return nil, errors.NewNotebookArchived(nb.Name)
		}
		exists, err := db.CheckEntryTitleExists(ctx, tx, nb.ID, title)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, errors.NewDuplicateTitle(nb.Name, title)
		}
		entry.NotebookID = &nb.ID
		entry.Notebook = &nb.Name
	}

	if err := db.InsertEntry(ctx, tx, entry); err != nil {
		if err == db.ErrUniqueConstraint && notebook != nil {
			// Lost a race with a concurrent insert of the same title.
			return nil, errors.NewDuplicateTitle(*notebook, title)
		}
		return nil, err
	}

	tags, err := applyTags(ctx, tx, record.KindEntry, entry.ID, input.Tags, now)
	if err != nil {
		return nil, err
	}
	entry.Tags = tags

	var copied []record.Attachment
	if len(input.Attachments) > 0 {
		copied, err = registerAttachments(ctx, tx, registry, record.KindEntry, entry.ID, input.Attachments, now)
		if err != nil {
			return nil, err
		}
		entry.Attachments = copied
	}

	if err := tx.Commit(); err != nil {
		removeAttachmentFiles(registry, copied)
		return nil, errors.NewInternal(err)
	}

	return &CreateEntryOutput{Entry: *entry}, nil
}
