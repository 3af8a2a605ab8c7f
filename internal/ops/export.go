package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hpungsan/binder/internal/attach"
	"github.com/hpungsan/binder/internal/config"
	"github.com/hpungsan/binder/internal/db"
	"github.com/hpungsan/binder/internal/errors"
	"github.com/hpungsan/binder/internal/record"
	"github.com/hpungsan/binder/internal/render"
)

// Export formats
const (
	FormatJSON = "json"
	FormatHTML = "html"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Format    string  // json (default) or html
	OutputDir *string // optional, default: configured export directory
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path            string `json:"path"`
	Format          string `json:"format"`
	ExportedAt      int64  `json:"exported_at"`
	NotebookCount   int    `json:"notebook_count"`
	EntryCount      int    `json:"entry_count"`
	NoteCount       int    `json:"note_count"`
	TagCount        int    `json:"tag_count"`
	AttachmentCount int    `json:"attachment_count"`
}

// Export writes the whole store to a timestamped file in the export
// directory. JSON exports round-trip through Import; HTML exports are a
// rendered snapshot for reading. Attachment files stay where they are,
// only their metadata is exported; use Backup to carry the files.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	format := strings.ToLower(strings.TrimSpace(input.Format))
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatHTML {
		return nil, errors.NewInvalidRequest("format must be one of: json, html")
	}

	outputDir := cfg.ExportDir
	if dir := cleanOptionalString(input.OutputDir); dir != nil {
		outputDir = *dir
	}
	if err := os.MkdirAll(outputDir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}
	if err := ensureWritableDir(outputDir); err != nil {
		return nil, err
	}

	now := time.Now()
	doc, err := buildExportDocument(ctx, database, now.Unix())
	if err != nil {
		return nil, err
	}

	var data []byte
	var ext string
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		ext = ".json"
	case FormatHTML:
		data, err = render.ExportHTML(doc)
		if err != nil {
			return nil, err
		}
		ext = ".html"
	}

	path := filepath.Join(outputDir, "export_"+now.Format("20060102_150405")+ext)
	if err := writeFileAtomic(path, data); err != nil {
		return nil, err
	}

	return &ExportOutput{
		Path:            path,
		Format:          format,
		ExportedAt:      doc.ExportedAt,
		NotebookCount:   len(doc.Notebooks),
		EntryCount:      len(doc.Entries),
		NoteCount:       len(doc.Notes),
		TagCount:        len(doc.Tags),
		AttachmentCount: len(doc.Attachments),
	}, nil
}

// buildExportDocument reads every table inside one transaction so the
// document is a consistent snapshot even while other commands run.
func buildExportDocument(ctx context.Context, database *sql.DB, exportedAt int64) (*record.ExportDocument, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer func() { _ = tx.Rollback() }()

	notebooks, err := db.ListNotebooks(ctx, tx, true)
	if err != nil {
		return nil, err
	}
	entries, err := db.ListEntries(ctx, tx, nil, nil)
	if err != nil {
		return nil, err
	}
	notes, err := db.ListNotes(ctx, tx, nil)
	if err != nil {
		return nil, err
	}
	tags, err := db.ListTags(ctx, tx)
	if err != nil {
		return nil, err
	}
	associations, err := db.ListAssociations(ctx, tx)
	if err != nil {
		return nil, err
	}
	attachments, err := db.ListAllAttachments(ctx, tx)
	if err != nil {
		return nil, err
	}

	doc := &record.ExportDocument{
		SchemaVersion: db.CurrentSchemaVersion,
		ExportedAt:    exportedAt,
		Notebooks:     make([]record.ExportNotebook, 0, len(notebooks)),
		Entries:       make([]record.ExportEntry, 0, len(entries)),
		Notes:         make([]record.ExportNote, 0, len(notes)),
		Tags:          make([]record.ExportTag, 0, len(tags)),
		Associations:  associations,
		Attachments:   make([]record.ExportAttachment, 0, len(attachments)),
	}
	if doc.Associations == nil {
		doc.Associations = []record.TagAssociation{}
	}

	for _, nb := range notebooks {
		doc.Notebooks = append(doc.Notebooks, record.ExportNotebook{
			ID:          nb.ID,
			Name:        nb.Name,
			Description: nb.Description,
			Status:      nb.Status,
			CreatedAt:   nb.CreatedAt,
		})
	}
	for _, e := range entries {
		doc.Entries = append(doc.Entries, record.ExportEntry{
			ID:         e.ID,
			NotebookID: e.NotebookID,
			Title:      e.Title,
			Content:    e.Content,
			CreatedAt:  e.CreatedAt,
		})
	}
	for _, n := range notes {
		doc.Notes = append(doc.Notes, record.ExportNote{
			ID:        n.ID,
			EntryID:   n.EntryID,
			Content:   n.Content,
			CreatedAt: n.CreatedAt,
		})
	}
	for _, t := range tags {
		doc.Tags = append(doc.Tags, record.ExportTag{
			ID:          t.ID,
			Name:        t.Name,
			NameNorm:    t.NameNorm,
			Description: t.Description,
			CreatedAt:   t.CreatedAt,
		})
	}
	for _, a := range attachments {
		doc.Attachments = append(doc.Attachments, record.ExportAttachment{
			ID:               a.ID,
			EntryID:          a.EntryID,
			NoteID:           a.NoteID,
			OriginalFilename: a.OriginalFilename,
			StoragePath:      a.StoragePath,
			CreatedAt:        a.CreatedAt,
		})
	}

	return doc, nil
}

// writeFileAtomic writes data to a temp file in the destination directory
// and renames it into place, so a failed write never leaves a partial file
// under the final name.
func writeFileAtomic(path string, data []byte) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"

	file, err := attach.OpenFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create file: %w", err))
	}

	// Clean up temp file on failure (any existing file is preserved)
	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}

	// Close before atomic replace (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close file: %w", err))
	}
	file = nil

	if err := finalizeTempFile(tempPath, path); err != nil {
		return err
	}
	success = true
	return nil
}

// finalizeTempFile renames a finished temp file into place.
func finalizeTempFile(tempPath, path string) error {
	// Check if destination is a symlink (os.Rename would follow it)
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInternal(fmt.Errorf("destination path is a symlink"))
	}

	// Note: On Windows, os.Rename fails if the destination exists. We
	// intentionally fail safely (preserving the existing file) instead of
	// doing a non-atomic delete+rename that could lose the original if
	// rename fails.
	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("destination already exists; overwriting is not supported on Windows yet (delete the existing file first)")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize file: %w", err))
	}
	return nil
}
