//nolint:varnamelen // Test files use idiomatic short variable names (t, g, etc.)
package fileops_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/sync-onboard/pkg/clock"
	"github.com/joe/sync-onboard/pkg/fileops"
	"github.com/joe/sync-onboard/pkg/filesystem"
)

var errDiskFull = errors.New("disk full")

// failingWriteFS creates files whose writes always fail.
type failingWriteFS struct {
	*filesystem.MockFileSystem
}

func (f failingWriteFS) Create(path string) (filesystem.File, error) {
	file, err := f.MockFileSystem.Create(path)
	if err != nil {
		return nil, err
	}

	return failingFile{file}, nil
}

type failingFile struct {
	filesystem.File
}

func (failingFile) Write([]byte) (int, error) {
	return 0, errDiskFull
}

func TestCopyFile_PreservesContentAndModTime(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	src := filesystem.NewMockFileSystem()
	dst := filesystem.NewMockFileSystem()
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	src.AddFile("/src/part.gcode", []byte("G28\nG1 X10\n"), mtime)
	dst.AddDir("/card", mtime)

	ops := fileops.NewDualFileOps(src, dst)

	written, err := ops.CopyFile("/src/part.gcode", "/card/part.gcode")
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(written).Should(Equal(int64(11)))

	data, modTime, err := dst.GetFile("/card/part.gcode")
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(string(data)).Should(Equal("G28\nG1 X10\n"))
	g.Expect(modTime).Should(BeTemporally("==", mtime))
}

func TestCopyFile_OverwritesExisting(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	src := filesystem.NewMockFileSystem()
	dst := filesystem.NewMockFileSystem()
	newer := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	src.AddFile("/src/part.gcode", []byte("new"), newer)
	dst.AddFile("/card/part.gcode", []byte("old contents"), newer.Add(-time.Hour))

	_, err := fileops.NewDualFileOps(src, dst).CopyFile("/src/part.gcode", "/card/part.gcode")
	g.Expect(err).ShouldNot(HaveOccurred())

	data, modTime, err := dst.GetFile("/card/part.gcode")
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(string(data)).Should(Equal("new"))
	g.Expect(modTime).Should(BeTemporally("==", newer))
}

func TestCopyFile_MissingSource(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	src := filesystem.NewMockFileSystem()
	dst := filesystem.NewMockFileSystem()
	dst.AddDir("/card", time.Now())

	_, err := fileops.NewDualFileOps(src, dst).CopyFile("/src/gone.gcode", "/card/gone.gcode")
	g.Expect(err).Should(HaveOccurred())
	g.Expect(fileops.IsNotExist(err)).Should(BeTrue())
	g.Expect(dst.Exists("/card/gone.gcode")).Should(BeFalse())
}

func TestCopyFile_RemovesPartialDestinationOnFailure(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	src := filesystem.NewMockFileSystem()
	mock := filesystem.NewMockFileSystem()

	src.AddFile("/src/part.gcode", []byte("G28"), time.Now())
	mock.AddDir("/card", time.Now())

	_, err := fileops.NewDualFileOps(src, failingWriteFS{mock}).CopyFile("/src/part.gcode", "/card/part.gcode")
	g.Expect(errors.Is(err, errDiskFull)).Should(BeTrue())
	g.Expect(mock.Exists("/card/part.gcode")).Should(BeFalse())
}

func TestSafeCopier_WaitsWhileLocked(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	src := filesystem.NewMockFileSystem()
	dst := filesystem.NewMockFileSystem()
	src.AddFile("/src/part.gcode", []byte("G28"), time.Now())
	dst.AddDir("/card", time.Now())

	checks := 0
	fake := clock.NewFake(time.Now())

	copier := &fileops.SafeCopier{
		Ops: fileops.NewDualFileOps(src, dst),
		Locks: fileops.LockCheckerFunc(func(string) bool {
			checks++
			// Nothing may be written while the writer still holds the file.
			g.Expect(dst.Exists("/card/part.gcode")).Should(BeFalse())

			return checks <= 3
		}),
		Clock:        fake,
		PollInterval: fileops.LockPollInterval,
	}

	_, err := copier.Copy(context.Background(), "/src/part.gcode", "/card/part.gcode")
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(fake.Sleeps()).Should(Equal([]time.Duration{
		250 * time.Millisecond, 250 * time.Millisecond, 250 * time.Millisecond,
	}))
	g.Expect(dst.Exists("/card/part.gcode")).Should(BeTrue())
}

func TestSafeCopier_CancelledWhileLocked(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	src := filesystem.NewMockFileSystem()
	dst := filesystem.NewMockFileSystem()
	src.AddFile("/src/part.gcode", []byte("G28"), time.Now())
	dst.AddDir("/card", time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	fake := clock.NewFake(time.Now())
	fake.OnSleep = func(time.Duration) { cancel() }

	copier := &fileops.SafeCopier{
		Ops:   fileops.NewDualFileOps(src, dst),
		Locks: fileops.LockCheckerFunc(func(string) bool { return true }),
		Clock: fake,
	}

	_, err := copier.Copy(ctx, "/src/part.gcode", "/card/part.gcode")
	g.Expect(errors.Is(err, fileops.ErrCopyCancelled)).Should(BeTrue())
	g.Expect(errors.Is(err, context.Canceled)).Should(BeTrue())
	g.Expect(dst.Exists("/card/part.gcode")).Should(BeFalse())
}

func TestSafeCopier_SourceRemovedWhileLocked(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	src := filesystem.NewMockFileSystem()
	dst := filesystem.NewMockFileSystem()
	src.AddFile("/src/part.gcode", []byte("G28"), time.Now())
	dst.AddDir("/card", time.Now())

	fake := clock.NewFake(time.Now())
	// The writer renames its output away while still holding it.
	fake.OnSleep = func(time.Duration) { _ = src.Remove("/src/part.gcode") }

	copier := &fileops.SafeCopier{
		Ops:   fileops.NewDualFileOps(src, dst),
		Locks: fileops.LockCheckerFunc(func(string) bool { return true }),
		Clock: fake,
	}

	_, err := copier.Copy(context.Background(), "/src/part.gcode", "/card/part.gcode")
	g.Expect(errors.Is(err, fileops.ErrSourceVanished)).Should(BeTrue())
	g.Expect(fileops.IsNotExist(err)).Should(BeTrue())
	g.Expect(fake.Sleeps()).Should(HaveLen(1))
	g.Expect(dst.Exists("/card/part.gcode")).Should(BeFalse())
}

func TestSafeCopier_MissingSourceDoesNotWait(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fake := clock.NewFake(time.Now())

	copier := &fileops.SafeCopier{
		Ops:   fileops.NewDualFileOps(filesystem.NewMockFileSystem(), filesystem.NewMockFileSystem()),
		Locks: fileops.ExclusiveLockChecker{},
		Clock: fake,
	}

	_, err := copier.Copy(context.Background(), "/src/never.gcode", "/card/never.gcode")
	g.Expect(errors.Is(err, fileops.ErrSourceVanished)).Should(BeTrue())
	g.Expect(fake.Sleeps()).Should(BeEmpty())
}

func TestExclusiveLockChecker_UnlockedFile(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	path := filepath.Join(t.TempDir(), "part.gcode")
	g.Expect(os.WriteFile(path, []byte("G28"), 0o600)).Should(Succeed())

	g.Expect(fileops.ExclusiveLockChecker{}.IsLocked(path)).Should(BeFalse())
}

func TestExclusiveLockChecker_MissingFileCountsAsLocked(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	path := filepath.Join(t.TempDir(), "missing.gcode")

	g.Expect(fileops.ExclusiveLockChecker{}.IsLocked(path)).Should(BeTrue())
}
