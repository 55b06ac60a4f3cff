package filesystem

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockFileSystem is an in-memory filesystem implementation for testing.
// Paths are cleaned with filepath.Clean before use.
type MockFileSystem struct {
	mu       sync.RWMutex
	files    map[string]*mockFile
	readOnly bool
	creates  int
}

// mockFile represents a file in the mock filesystem.
type mockFile struct {
	data    []byte
	modTime time.Time
	isDir   bool
	perm    os.FileMode
}

// mockFileInfo implements os.FileInfo for mock files.
type mockFileInfo struct {
	name    string
	size    int64
	modTime time.Time
	isDir   bool
	perm    os.FileMode
}

func (fi *mockFileInfo) Name() string       { return fi.name }
func (fi *mockFileInfo) Size() int64        { return fi.size }
func (fi *mockFileInfo) Mode() os.FileMode  { return fi.perm }
func (fi *mockFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *mockFileInfo) IsDir() bool        { return fi.isDir }
func (fi *mockFileInfo) Sys() any           { return nil }

// mockFileHandle implements the File interface for reading/writing.
type mockFileHandle struct {
	fs     *MockFileSystem
	path   string
	reader *bytes.Reader
	writer *bytes.Buffer
	closed bool
}

func (f *mockFileHandle) Read(p []byte) (int, error) {
	if f.closed {
		return 0, os.ErrClosed
	}
	if f.reader == nil {
		return 0, io.EOF
	}
	return f.reader.Read(p)
}

func (f *mockFileHandle) Write(p []byte) (int, error) {
	if f.closed {
		return 0, os.ErrClosed
	}
	if f.writer == nil {
		return 0, fmt.Errorf("write %s: file opened read-only", f.path)
	}
	return f.writer.Write(p)
}

// Close flushes written data into the filesystem.
func (f *mockFileHandle) Close() error {
	if f.closed {
		return os.ErrClosed
	}
	f.closed = true

	if f.writer == nil {
		return nil
	}

	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()

	if file, exists := f.fs.files[f.path]; exists {
		file.data = append([]byte(nil), f.writer.Bytes()...)
		file.modTime = time.Now()
	}

	return nil
}

func (f *mockFileHandle) Stat() (os.FileInfo, error) {
	if f.closed {
		return nil, os.ErrClosed
	}

	return f.fs.Stat(f.path)
}

// NewMockFileSystem creates a new in-memory filesystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files: make(map[string]*mockFile),
	}
}

// Chtimes changes the access and modification times of a file.
func (fs *MockFileSystem) Chtimes(path string, _, mtime time.Time) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	file, exists := fs.files[filepath.Clean(path)]
	if !exists {
		return fmt.Errorf("chtimes %s: %w", path, os.ErrNotExist)
	}

	file.modTime = mtime
	return nil
}

// Create creates or truncates a file for writing. The parent directory must exist.
func (fs *MockFileSystem) Create(path string) (File, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path = filepath.Clean(path)

	if fs.readOnly {
		return nil, fmt.Errorf("create %s: %w", path, os.ErrPermission)
	}

	parent, exists := fs.files[filepath.Dir(path)]
	if !exists || !parent.isDir {
		return nil, fmt.Errorf("create %s: %w", path, os.ErrNotExist)
	}

	if existing, ok := fs.files[path]; ok && existing.isDir {
		return nil, fmt.Errorf("create %s: is a directory", path)
	}

	fs.creates++
	fs.files[path] = &mockFile{
		data:    []byte{},
		modTime: time.Now(),
		perm:    0o644,
	}

	return &mockFileHandle{
		fs:     fs,
		path:   path,
		writer: &bytes.Buffer{},
	}, nil
}

// Join joins path elements with the host separator.
func (fs *MockFileSystem) Join(elem ...string) string {
	return filepath.Join(elem...)
}

// Open opens a file for reading.
func (fs *MockFileSystem) Open(path string) (File, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	path = filepath.Clean(path)

	file, exists := fs.files[path]
	if !exists {
		return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
	}

	if file.isDir {
		return nil, fmt.Errorf("open %s: is a directory", path)
	}

	return &mockFileHandle{
		fs:     fs,
		path:   path,
		reader: bytes.NewReader(file.data),
	}, nil
}

// ReadDir lists the direct children of a directory, sorted by name.
func (fs *MockFileSystem) ReadDir(path string) ([]os.FileInfo, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	path = filepath.Clean(path)

	dir, exists := fs.files[path]
	if !exists {
		return nil, fmt.Errorf("readdir %s: %w", path, os.ErrNotExist)
	}

	if !dir.isDir {
		return nil, fmt.Errorf("readdir %s: not a directory", path)
	}

	var infos []os.FileInfo

	for p, file := range fs.files {
		if p == path || filepath.Dir(p) != path {
			continue
		}

		infos = append(infos, fs.infoLocked(p, file))
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	return infos, nil
}

// Remove removes a file or empty directory.
func (fs *MockFileSystem) Remove(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path = filepath.Clean(path)

	file, exists := fs.files[path]
	if !exists {
		return fmt.Errorf("remove %s: %w", path, os.ErrNotExist)
	}

	if file.isDir {
		for p := range fs.files {
			if strings.HasPrefix(p, path+string(filepath.Separator)) {
				return fmt.Errorf("remove %s: directory not empty", path)
			}
		}
	}

	delete(fs.files, path)
	return nil
}

// Stat returns file information.
func (fs *MockFileSystem) Stat(path string) (os.FileInfo, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	path = filepath.Clean(path)

	file, exists := fs.files[path]
	if !exists {
		return nil, fmt.Errorf("stat %s: %w", path, os.ErrNotExist)
	}

	return fs.infoLocked(path, file), nil
}

func (fs *MockFileSystem) infoLocked(path string, file *mockFile) os.FileInfo {
	return &mockFileInfo{
		name:    filepath.Base(path),
		size:    int64(len(file.data)),
		modTime: file.modTime,
		isDir:   file.isDir,
		perm:    file.perm,
	}
}

// mkdirAllLocked creates path and its parents; the lock must be held.
func (fs *MockFileSystem) mkdirAllLocked(path string, modTime time.Time) {
	path = filepath.Clean(path)

	for {
		if _, exists := fs.files[path]; !exists {
			fs.files[path] = &mockFile{modTime: modTime, isDir: true, perm: 0o755}
		}

		parent := filepath.Dir(path)
		if parent == path {
			return
		}
		path = parent
	}
}

// Helper methods for testing

// AddFile adds a file with the given content and modtime, creating parent directories.
func (fs *MockFileSystem) AddFile(path string, content []byte, modTime time.Time) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path = filepath.Clean(path)
	fs.mkdirAllLocked(filepath.Dir(path), modTime)

	fs.files[path] = &mockFile{
		data:    append([]byte(nil), content...),
		modTime: modTime,
		perm:    0o644,
	}
}

// AddDir adds a directory and its parents.
func (fs *MockFileSystem) AddDir(path string, modTime time.Time) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.mkdirAllLocked(path, modTime)
}

// CreateCount returns how many times Create succeeded.
func (fs *MockFileSystem) CreateCount() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	return fs.creates
}

// Exists checks if a path exists in the mock filesystem.
func (fs *MockFileSystem) Exists(path string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	_, exists := fs.files[filepath.Clean(path)]
	return exists
}

// GetFile retrieves a file's content and modtime.
func (fs *MockFileSystem) GetFile(path string) ([]byte, time.Time, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	file, exists := fs.files[filepath.Clean(path)]
	if !exists {
		return nil, time.Time{}, os.ErrNotExist
	}

	if file.isDir {
		return nil, time.Time{}, fmt.Errorf("%s is a directory", path)
	}

	return append([]byte(nil), file.data...), file.modTime, nil
}

// ListFiles returns all paths in the mock filesystem, sorted.
func (fs *MockFileSystem) ListFiles() []string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	paths := make([]string, 0, len(fs.files))
	for p := range fs.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// SetReadOnly makes every subsequent Create fail with a permission error.
func (fs *MockFileSystem) SetReadOnly(readOnly bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.readOnly = readOnly
}
