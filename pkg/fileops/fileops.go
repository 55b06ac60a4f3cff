// Package fileops copies files between filesystems while preserving their
// modification time, and guards copies against sources still being written.
package fileops

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/joe/sync-onboard/pkg/filesystem"
)

// BufferSize is the size of the buffer used for file copy operations (64KB).
const BufferSize = 64 * 1024

// FileOps provides file operations with dependency injection for filesystem access.
// Source and destination may live on different filesystems (e.g. local to SFTP).
type FileOps struct {
	SourceFS filesystem.FileSystem
	DestFS   filesystem.FileSystem
}

// NewDualFileOps creates a new FileOps instance with separate source and destination filesystems.
func NewDualFileOps(sourceFS, destFS filesystem.FileSystem) *FileOps {
	return &FileOps{
		SourceFS: sourceFS,
		DestFS:   destFS,
	}
}

// CopyFile copies src to dst, overwriting dst, and sets dst's modification
// time to src's. A partially written dst is removed on failure.
func (fo *FileOps) CopyFile(src, dst string) (written int64, err error) {
	sourceFile, err := fo.SourceFS.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open source file %s: %w", src, err)
	}

	defer func() {
		_ = sourceFile.Close()
	}()

	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat source file %s: %w", src, err)
	}

	destFile, err := fo.DestFS.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination file %s: %w", dst, err)
	}

	completed := false

	defer func() {
		if !completed {
			_ = destFile.Close()
			_ = fo.DestFS.Remove(dst)
		}
	}()

	written, err = io.CopyBuffer(writerOnly{destFile}, readerOnly{sourceFile}, make([]byte, BufferSize))
	if err != nil {
		return written, fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}

	// Close before setting times; network filesystems otherwise stamp the close time.
	err = destFile.Close()
	completed = true

	if err != nil {
		_ = fo.DestFS.Remove(dst)
		return written, fmt.Errorf("failed to close destination file %s: %w", dst, err)
	}

	err = fo.DestFS.Chtimes(dst, sourceInfo.ModTime(), sourceInfo.ModTime())
	if err != nil {
		return written, fmt.Errorf("failed to preserve modification time for %s: %w", dst, err)
	}

	return written, nil
}

// IsNotExist reports whether err means a file was missing, on any filesystem.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// readerOnly and writerOnly hide ReadFrom/WriteTo so CopyBuffer uses our buffer.
type readerOnly struct{ io.Reader }

type writerOnly struct{ io.Writer }
