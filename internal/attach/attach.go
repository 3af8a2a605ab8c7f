package attach

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/binder/internal/errors"
	"github.com/hpungsan/binder/internal/record"
)

// Registry copies attachment files into a flat directory, one file per
// generated id. It does no content processing; files are opaque blobs.
type Registry struct {
	Dir string
}

// NewRegistry returns a registry rooted at dir. The directory is expected
// to exist (config.EnsureDirs creates it at startup).
func NewRegistry(dir string) *Registry {
	return &Registry{Dir: dir}
}

// NewID generates a new ULID.
func NewID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// CopyIn copies the source file into the registry under a fresh generated
// id, preserving the file extension. The returned attachment carries the
// id, original filename, and storage path; the caller assigns the owner
// and timestamp. On failure nothing is left behind.
func (r *Registry) CopyIn(src string) (*record.Attachment, error) {
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFound("attachment", src)
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to stat attachment: %w", err))
	}
	if !info.Mode().IsRegular() {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("attachment is not a regular file: %s", src))
	}

	id, err := NewID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	storageName := id + filepath.Ext(src)
	dstPath := filepath.Join(r.Dir, storageName)

	source, err := os.Open(src)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to open attachment: %w", err))
	}
	defer source.Close()

	// Write to temp file first, then atomic rename so a failed copy never
	// leaves a partial attachment under a registered name
	tempPath := dstPath + ".tmp"
	dst, err := OpenFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create attachment file: %w", err))
	}

	success := false
	defer func() {
		if dst != nil {
			dst.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := io.Copy(dst, source); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to copy attachment: %w", err))
	}
	if err := dst.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := dst.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close attachment file: %w", err))
	}
	dst = nil

	if err := os.Rename(tempPath, dstPath); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize attachment: %w", err))
	}

	success = true
	return &record.Attachment{
		ID:               id,
		OriginalFilename: filepath.Base(src),
		StoragePath:      storageName,
	}, nil
}

// Remove deletes a stored attachment file. Used to roll back copies when
// the owning transaction fails.
func (r *Registry) Remove(storageName string) error {
	return os.Remove(filepath.Join(r.Dir, storageName))
}

// Path resolves a storage name to its absolute path.
func (r *Registry) Path(storageName string) string {
	return filepath.Join(r.Dir, storageName)
}
