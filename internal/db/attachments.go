package db

import (
	"context"
	"database/sql"

	"github.com/hpungsan/binder/internal/errors"
	"github.com/hpungsan/binder/internal/record"
)

// InsertAttachment stores an attachment row under its generated id.
func InsertAttachment(ctx context.Context, q Querier, a *record.Attachment) error {
	query := `
		INSERT INTO attachments (id, entry_id, note_id, original_filename, storage_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		a.ID, toNullInt64(a.EntryID), toNullInt64(a.NoteID),
		a.OriginalFilename, a.StoragePath, a.CreatedAt,
	)
	if err != nil {
		return mapExecError(err)
	}
	return nil
}

// ListAttachmentsForEntry returns an entry's attachments in creation order.
func ListAttachmentsForEntry(ctx context.Context, q Querier, entryID int64) ([]record.Attachment, error) {
	query := attachmentSelect + ` WHERE entry_id = ? ORDER BY created_at ASC, id ASC`
	return queryAttachments(ctx, q, query, entryID)
}

// ListAttachmentsForNote returns a note's attachments in creation order.
func ListAttachmentsForNote(ctx context.Context, q Querier, noteID int64) ([]record.Attachment, error) {
	query := attachmentSelect + ` WHERE note_id = ? ORDER BY created_at ASC, id ASC`
	return queryAttachments(ctx, q, query, noteID)
}

// ListAllAttachments returns every attachment row, ordered for stable export.
func ListAllAttachments(ctx context.Context, q Querier) ([]record.Attachment, error) {
	return queryAttachments(ctx, q, attachmentSelect+` ORDER BY created_at ASC, id ASC`)
}

const attachmentSelect = `
	SELECT id, entry_id, note_id, original_filename, storage_path, created_at
	FROM attachments
`

func queryAttachments(ctx context.Context, q Querier, query string, args ...any) ([]record.Attachment, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var attachments []record.Attachment
	for rows.Next() {
		var (
			a       record.Attachment
			entryID sql.NullInt64
			noteID  sql.NullInt64
		)
		err := rows.Scan(&a.ID, &entryID, &noteID, &a.OriginalFilename, &a.StoragePath, &a.CreatedAt)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		a.EntryID = fromNullInt64(entryID)
		a.NoteID = fromNullInt64(noteID)
		attachments = append(attachments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return attachments, nil
}
