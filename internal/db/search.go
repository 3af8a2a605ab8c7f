package db

import (
	"context"
	"strings"

	"github.com/hpungsan/binder/internal/record"
)

// escapeLike escapes LIKE metacharacters so user keywords match literally.
// A keyword of "100%" must match the text "100%", not everything starting
// with "100".
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// likePattern builds a case-insensitive substring pattern for a keyword.
// Both sides of the comparison are lowered in SQL, so the pattern is
// lowered here.
func likePattern(keyword string) string {
	return "%" + escapeLike(strings.ToLower(keyword)) + "%"
}

// SearchEntries finds entries whose title, content, or attachment filename
// contains the keyword as a case-insensitive substring, ordered by creation
// time. An optional tag id narrows results to entries carrying that tag.
func SearchEntries(ctx context.Context, q Querier, keyword string, tagID *int64) ([]record.Entry, error) {
	pattern := likePattern(keyword)
	query := entrySelect + `
		WHERE (
			lower(e.title) LIKE ? ESCAPE '\'
			OR lower(e.content) LIKE ? ESCAPE '\'
			OR EXISTS (
				SELECT 1 FROM attachments a
				WHERE a.entry_id = e.id AND lower(a.original_filename) LIKE ? ESCAPE '\'
			)
		)`
	args := []any{pattern, pattern, pattern}

	if tagID != nil {
		query += `
		AND EXISTS (
			SELECT 1 FROM entity_tags et
			WHERE et.entity_kind = 'entry' AND et.entity_id = e.id AND et.tag_id = ?
		)`
		args = append(args, *tagID)
	}
	query += ` ORDER BY e.created_at ASC, e.id ASC`

	return queryEntries(ctx, q, query, args...)
}

// SearchNotes finds notes whose content or attachment filename contains the
// keyword as a case-insensitive substring, ordered by creation time. An
// optional tag id narrows results to notes carrying that tag.
func SearchNotes(ctx context.Context, q Querier, keyword string, tagID *int64) ([]record.Note, error) {
	pattern := likePattern(keyword)
	query := noteSelect + `
		WHERE (
			lower(no.content) LIKE ? ESCAPE '\'
			OR EXISTS (
				SELECT 1 FROM attachments a
				WHERE a.note_id = no.id AND lower(a.original_filename) LIKE ? ESCAPE '\'
			)
		)`
	args := []any{pattern, pattern}

	if tagID != nil {
		query += `
		AND EXISTS (
			SELECT 1 FROM entity_tags et
			WHERE et.entity_kind = 'note' AND et.entity_id = no.id AND et.tag_id = ?
		)`
		args = append(args, *tagID)
	}
	query += ` ORDER BY no.created_at ASC, no.id ASC`

	return queryNotes(ctx, q, query, args...)
}
