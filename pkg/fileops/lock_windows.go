//go:build windows

package fileops

import (
	"golang.org/x/sys/windows"
)

// tryExclusiveOpen opens path for reading with no sharing allowed, which
// fails with a sharing violation while any other handle is open.
func tryExclusiveOpen(path string) bool {
	name, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false
	}

	handle, err := windows.CreateFile(
		name,
		windows.GENERIC_READ,
		0,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err != nil {
		return false
	}

	_ = windows.CloseHandle(handle)

	return true
}
