//go:build !windows

package device

// RegistryResolver has nothing to read outside Windows.
type RegistryResolver struct{}

// ResolveRemoteEndpoint never resolves.
func (RegistryResolver) ResolveRemoteEndpoint(string) (string, bool) {
	return "", false
}
