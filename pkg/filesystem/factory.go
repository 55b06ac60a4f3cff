package filesystem

import (
	"fmt"
)

// Target is an opened filesystem together with the root path to use on it.
type Target struct {
	FS   FileSystem
	Root string
	// Host is the SFTP host for remote targets, empty for local ones.
	Host string

	closer func() error
}

// Close releases any connection held by the target. Local targets hold none.
func (t *Target) Close() error {
	if t.closer == nil {
		return nil
	}

	return t.closer()
}

// IsRemote reports whether the target is reached over SFTP.
func (t *Target) IsRemote() bool {
	return t.Host != ""
}

// OpenTarget creates a FileSystem for a local path or sftp:// URL.
func OpenTarget(pathStr string) (*Target, error) {
	parsed, err := ParsePath(pathStr)
	if err != nil {
		return nil, err
	}

	if !parsed.IsRemote {
		return &Target{FS: NewRealFileSystem(), Root: parsed.LocalPath}, nil
	}

	conn, err := Connect(parsed.Host, parsed.Port, parsed.User)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s@%s:%d: %w",
			parsed.User, parsed.Host, parsed.Port, err)
	}

	return &Target{
		FS:     NewSFTPFileSystem(conn),
		Root:   parsed.Path,
		Host:   parsed.Host,
		closer: conn.Close,
	}, nil
}
