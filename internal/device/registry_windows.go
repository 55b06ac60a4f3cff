//go:build windows

package device

import (
	"golang.org/x/sys/windows/registry"
)

// RegistryResolver reads the network share a drive letter is mapped to from
// HKCU\Network\<letter>\RemotePath.
type RegistryResolver struct{}

// ResolveRemoteEndpoint maps a drive-letter root through the registry.
func (RegistryResolver) ResolveRemoteEndpoint(root string) (string, bool) {
	letter, ok := DriveLetter(root)
	if !ok {
		return "", false
	}

	key, err := registry.OpenKey(registry.CURRENT_USER, `Network\`+letter, registry.QUERY_VALUE)
	if err != nil {
		return "", false
	}

	defer func() {
		_ = key.Close()
	}()

	remotePath, _, err := key.GetStringValue("RemotePath")
	if err != nil {
		return "", false
	}

	return EndpointFromUNC(remotePath)
}
