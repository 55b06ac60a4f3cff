package device

import (
	"path/filepath"
	"strings"

	"github.com/joe/sync-onboard/pkg/filesystem"
)

// printerSDPath is where printer hosts expose their SD card over HTTP.
const printerSDPath = "/api/printer/sd"

// Resolver finds the HTTP release endpoint for a destination root, if the
// destination is a card exported by a printer host.
type Resolver interface {
	ResolveRemoteEndpoint(root string) (endpoint string, ok bool)
}

// StaticResolver maps destination keys to endpoints. A key is a drive letter
// ("H"), a mount path ("/media/sdcard"), or an SFTP host ("octopi.local").
type StaticResolver map[string]string

// ResolveRemoteEndpoint looks root up by each of its keys.
func (s StaticResolver) ResolveRemoteEndpoint(root string) (string, bool) {
	for _, key := range LookupKeys(root) {
		for candidate, endpoint := range s {
			if strings.EqualFold(candidate, key) {
				return endpoint, true
			}
		}
	}

	return "", false
}

// ChainResolver tries each resolver in order.
type ChainResolver []Resolver

// ResolveRemoteEndpoint returns the first endpoint any resolver yields.
func (c ChainResolver) ResolveRemoteEndpoint(root string) (string, bool) {
	for _, resolver := range c {
		if endpoint, ok := resolver.ResolveRemoteEndpoint(root); ok {
			return endpoint, true
		}
	}

	return "", false
}

// LookupKeys lists the names a destination root can be known by, most specific first.
func LookupKeys(root string) []string {
	parsed, err := filesystem.ParsePath(root)
	if err == nil && parsed.IsRemote {
		return []string{parsed.Host}
	}

	keys := []string{root}

	if cleaned := filepath.Clean(root); cleaned != root {
		keys = append(keys, cleaned)
	}

	if letter, ok := DriveLetter(root); ok {
		keys = append(keys, letter)
	}

	return keys
}

// DriveLetter returns "H" for roots like `H:\`, `H:` or `h:/games`.
func DriveLetter(root string) (string, bool) {
	if len(root) < 2 || root[1] != ':' {
		return "", false
	}

	letter := root[0]
	if (letter < 'A' || letter > 'Z') && (letter < 'a' || letter > 'z') {
		return "", false
	}

	if len(root) > 2 && root[2] != '\\' && root[2] != '/' {
		return "", false
	}

	return strings.ToUpper(root[:1]), true
}

// EndpointFromUNC turns the network path a drive letter is mapped to into
// the printer host's SD card endpoint: `\\octopi\usb` becomes
// `http://octopi/api/printer/sd`. Other shares keep their path.
func EndpointFromUNC(unc string) (string, bool) {
	if !strings.HasPrefix(unc, `\\`) {
		return "", false
	}

	parts := strings.FieldsFunc(unc[2:], func(r rune) bool { return r == '\\' || r == '/' })
	if len(parts) == 0 {
		return "", false
	}

	host, rest := parts[0], parts[1:]

	if len(rest) == 1 && strings.EqualFold(rest[0], "usb") {
		return "http://" + host + printerSDPath, true
	}

	return "http://" + host + "/" + strings.Join(rest, "/"), true
}
