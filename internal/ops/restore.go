package ops

import (
	"archive/zip"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/binder/internal/attach"
	"github.com/hpungsan/binder/internal/config"
	"github.com/hpungsan/binder/internal/errors"
)

// RestoreInput contains parameters for the Restore operation.
type RestoreInput struct {
	Path string // required, path to a backup zip
}

// RestoreOutput contains the result of the Restore operation.
type RestoreOutput struct {
	Path                string `json:"path"`
	DatabaseRestored    string `json:"database_restored"`
	AttachmentsRestored int    `json:"attachments_restored"`
}

// Restore rebuilds the store from a backup archive: the database file is
// replaced and every attachment in the archive is written back. Attachment
// files already present but absent from the archive are left alone.
//
// Restore works on the files directly and must run with the database
// closed; the CLI never opens the store for this command.
func Restore(ctx context.Context, cfg *config.Config, input RestoreInput) (*RestoreOutput, error) {
	path, err := ValidateBackupPath(input.Path)
	if err != nil {
		return nil, err
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("not a valid backup archive: %v", err))
	}
	defer zr.Close()

	var dbEntry *zip.File
	var attachmentEntries []*zip.File
	for _, f := range zr.File {
		name := f.Name
		if strings.HasSuffix(name, "/") {
			continue
		}
		if containsTraversal(name) || strings.HasPrefix(name, "/") || strings.Contains(name, `\`) {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("unsafe path in archive: %s", name))
		}

		switch {
		case !strings.Contains(name, "/") && strings.HasSuffix(name, ".db"):
			if dbEntry != nil {
				return nil, errors.NewInvalidRequest("archive contains more than one database file")
			}
			dbEntry = f
		case strings.HasPrefix(name, backupAttachmentPrefix):
			rest := name[len(backupAttachmentPrefix):]
			if rest == "" || strings.Contains(rest, "/") {
				continue
			}
			attachmentEntries = append(attachmentEntries, f)
		}
	}
	if dbEntry == nil {
		return nil, errors.NewInvalidRequest("archive contains no database file")
	}

	dbPath := cfg.DatabaseFile
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create database directory: %w", err))
	}
	if err := extractZipFile(dbEntry, dbPath); err != nil {
		return nil, err
	}
	// Drop stale WAL sidecars so SQLite cannot pair them with the
	// restored file.
	os.Remove(dbPath + "-wal")
	os.Remove(dbPath + "-shm")

	restored := 0
	if len(attachmentEntries) > 0 {
		if err := os.MkdirAll(cfg.AttachmentsDir, 0700); err != nil {
			return nil, errors.NewInternal(fmt.Errorf("failed to create attachments directory: %w", err))
		}
		for _, f := range attachmentEntries {
			dest := filepath.Join(cfg.AttachmentsDir, filepath.Base(f.Name))
			if err := extractZipFile(f, dest); err != nil {
				return nil, err
			}
			restored++
		}
	}

	return &RestoreOutput{
		Path:                path,
		DatabaseRestored:    dbPath,
		AttachmentsRestored: restored,
	}, nil
}

// extractZipFile streams one archive entry to destPath through a temp file,
// replacing any existing file only once the whole entry is written.
func extractZipFile(f *zip.File, destPath string) error {
	rc, err := f.Open()
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to read archive entry %s: %w", f.Name, err))
	}
	defer rc.Close()

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := destPath + "." + hex.EncodeToString(randBytes) + ".tmp"

	file, err := attach.OpenFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := io.Copy(file, rc); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to extract %s: %w", f.Name, err))
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close file: %w", err))
	}
	file = nil

	if err := finalizeTempFile(tempPath, destPath); err != nil {
		return err
	}
	success = true
	return nil
}
