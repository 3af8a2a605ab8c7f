package ops

import (
	"archive/zip"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hpungsan/binder/internal/attach"
	"github.com/hpungsan/binder/internal/config"
	"github.com/hpungsan/binder/internal/db"
	"github.com/hpungsan/binder/internal/errors"
)

// backupAttachmentPrefix is the directory attachment files live under
// inside a backup archive.
const backupAttachmentPrefix = "attachments/"

// BackupInput contains parameters for the Backup operation.
type BackupInput struct {
	OutputDir *string // optional, default: configured backup directory
}

// BackupOutput contains the result of the Backup operation.
type BackupOutput struct {
	Path            string `json:"path"`
	CreatedAt       int64  `json:"created_at"`
	AttachmentCount int    `json:"attachment_count"`
	SizeBytes       int64  `json:"size_bytes"`
}

// Backup writes a timestamped zip archive holding a compacted snapshot of
// the database plus every attachment file. Unlike Export, the archive is a
// complete physical copy: Restore can rebuild the store from it on a fresh
// machine.
func Backup(ctx context.Context, database *sql.DB, cfg *config.Config, input BackupInput) (*BackupOutput, error) {
	backupDir := cfg.BackupDir
	if dir := cleanOptionalString(input.OutputDir); dir != nil {
		backupDir = *dir
	}
	if err := os.MkdirAll(backupDir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create backup directory: %w", err))
	}
	if err := ensureWritableDir(backupDir); err != nil {
		return nil, err
	}

	now := time.Now()
	path := filepath.Join(backupDir, "backup_"+now.Format("20060102_150405")+".zip")

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	suffix := hex.EncodeToString(randBytes)

	// Snapshot the live database first. VACUUM INTO produces a compact
	// standalone file, so the archive never carries WAL sidecars.
	snapshotPath := filepath.Join(backupDir, ".binder-snapshot-"+suffix+".db")
	if err := db.VacuumInto(ctx, database, snapshotPath); err != nil {
		return nil, errors.NewInternal(err)
	}
	defer os.Remove(snapshotPath)

	tempPath := path + "." + suffix + ".tmp"
	file, err := attach.OpenFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create backup file: %w", err))
	}

	// Clean up temp file on failure
	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	zw := zip.NewWriter(file)

	if err := addFileToZip(zw, snapshotPath, filepath.Base(cfg.DatabaseFile)); err != nil {
		return nil, err
	}

	attachmentCount, err := addAttachmentsToZip(zw, cfg.AttachmentsDir)
	if err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to finish backup archive: %w", err))
	}
	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close backup file: %w", err))
	}
	file = nil

	if err := finalizeTempFile(tempPath, path); err != nil {
		return nil, err
	}
	success = true

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return &BackupOutput{
		Path:            path,
		CreatedAt:       now.Unix(),
		AttachmentCount: attachmentCount,
		SizeBytes:       info.Size(),
	}, nil
}

// addFileToZip streams one file into the archive under the given name.
func addFileToZip(zw *zip.Writer, srcPath, name string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to open %s: %w", srcPath, err))
	}
	defer src.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	})
	if err != nil {
		return errors.NewInternal(err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to archive %s: %w", name, err))
	}
	return nil
}

// addAttachmentsToZip copies every stored attachment into the archive under
// attachments/. A missing attachments directory just means there is nothing
// to carry.
func addAttachmentsToZip(zw *zip.Writer, dir string) (int, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.NewInternal(fmt.Errorf("failed to read attachments directory: %w", err))
	}

	count := 0
	for _, de := range dirEntries {
		if de.IsDir() || strings.HasSuffix(de.Name(), ".tmp") {
			continue
		}
		if err := addFileToZip(zw, filepath.Join(dir, de.Name()), backupAttachmentPrefix+de.Name()); err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}
