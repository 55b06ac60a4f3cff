package filesystem

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/pkg/sftp"
)

// SFTPFileSystem implements FileSystem over an SFTP session. It is used when
// the destination card is exposed by an appliance over SSH rather than mounted.
type SFTPFileSystem struct {
	client *sftp.Client
}

// NewSFTPFileSystem creates a new SFTP filesystem using an established connection.
func NewSFTPFileSystem(conn *SFTPConnection) *SFTPFileSystem {
	return &SFTPFileSystem{client: conn.Client()}
}

// Chtimes changes the access and modification times of a remote file.
func (fs *SFTPFileSystem) Chtimes(name string, atime, mtime time.Time) error {
	err := fs.client.Chtimes(name, atime, mtime)
	if err != nil {
		return fmt.Errorf("failed to change times for remote file %s: %w", name, err)
	}

	return nil
}

// Create creates or truncates a remote file for writing.
func (fs *SFTPFileSystem) Create(name string) (File, error) {
	file, err := fs.client.Create(name)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote file %s: %w", name, err)
	}

	return file, nil
}

// Join joins remote path elements with forward slashes.
func (fs *SFTPFileSystem) Join(elem ...string) string {
	return path.Join(elem...)
}

// Open opens a remote file for reading.
func (fs *SFTPFileSystem) Open(name string) (File, error) {
	file, err := fs.client.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote file %s: %w", name, err)
	}

	return file, nil
}

// ReadDir lists a remote directory.
func (fs *SFTPFileSystem) ReadDir(name string) ([]os.FileInfo, error) {
	infos, err := fs.client.ReadDir(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read remote directory %s: %w", name, err)
	}

	return infos, nil
}

// Remove removes a remote file or empty directory.
func (fs *SFTPFileSystem) Remove(name string) error {
	err := fs.client.Remove(name)
	if err != nil {
		return fmt.Errorf("failed to remove remote file %s: %w", name, err)
	}

	return nil
}

// Stat returns file information for a remote file.
func (fs *SFTPFileSystem) Stat(name string) (os.FileInfo, error) {
	info, err := fs.client.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("failed to stat remote file %s: %w", name, err)
	}

	return info, nil
}
