//go:build !windows

//nolint:varnamelen // Test files use idiomatic short variable names (t, g, etc.)
package fileops_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers
	"golang.org/x/sys/unix"

	"github.com/joe/sync-onboard/pkg/fileops"
)

func TestExclusiveLockChecker_HeldFlock(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	path := filepath.Join(t.TempDir(), "part.gcode")
	g.Expect(os.WriteFile(path, []byte("G28"), 0o600)).Should(Succeed())

	writer, err := os.OpenFile(path, os.O_WRONLY, 0o600)
	g.Expect(err).ShouldNot(HaveOccurred())

	defer func() { _ = writer.Close() }()

	g.Expect(unix.Flock(int(writer.Fd()), unix.LOCK_EX)).Should(Succeed())
	g.Expect(fileops.ExclusiveLockChecker{}.IsLocked(path)).Should(BeTrue())

	g.Expect(unix.Flock(int(writer.Fd()), unix.LOCK_UN)).Should(Succeed())
	g.Expect(fileops.ExclusiveLockChecker{}.IsLocked(path)).Should(BeFalse())
}
