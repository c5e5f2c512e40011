package media

import (
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest is the playlist source built offline: one entry per hero item
// with its encoded variants and derived poster set.
type Manifest struct {
	Version string      `yaml:"version"`
	Items   []MediaItem `yaml:"items"`
}

// ReadManifest loads and validates a playlist manifest from a YAML file.
func ReadManifest(p string) (*Manifest, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if len(m.Items) == 0 {
		return nil, fmt.Errorf("manifest %s contains no items", p)
	}
	for i := range m.Items {
		if err := m.Items[i].Validate(); err != nil {
			return nil, fmt.Errorf("manifest item %d (%s): %w", i, m.Items[i].ID, err)
		}
	}
	return &m, nil
}

// WriteManifest writes a manifest to a YAML file.
func WriteManifest(m *Manifest, p string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0644)
}

// ContentHash extracts the build hash embedded in an asset filename of
// the form "name.<hash>.ext". Returns "" when the name carries no hash.
func ContentHash(url string) string {
	base := path.Base(stripQuery(url))
	parts := strings.Split(base, ".")
	if len(parts) < 3 {
		return ""
	}
	h := parts[len(parts)-2]
	if !isHex(h) || len(h) < 8 || len(h) > 16 {
		return ""
	}
	return h
}

// CacheKey returns the URL with any embedded content hash removed, so a
// rebuilt asset maps to the same cache slot as its predecessor.
func CacheKey(url string) string {
	h := ContentHash(url)
	if h == "" {
		return stripQuery(url)
	}
	return strings.Replace(stripQuery(url), "."+h+".", ".", 1)
}

func stripQuery(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[:i]
	}
	return url
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
