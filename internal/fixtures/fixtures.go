// Package fixtures reads seed data files for the catalogue tables.
package fixtures

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Decode reads a list of T from r. format is "json", "yaml" or "yml".
func Decode[T any](r io.Reader, format string) ([]T, error) {
	var items []T
	switch strings.ToLower(format) {
	case "json":
		if err := json.NewDecoder(r).Decode(&items); err != nil {
			return nil, fmt.Errorf("invalid JSON fixture: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&items); err != nil && err != io.EOF {
			return nil, fmt.Errorf("invalid YAML fixture: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported fixture format %q", format)
	}
	return items, nil
}

// ReadFile decodes path from fs, picking the format from the file extension
func ReadFile[T any](fs afero.Fs, path string) ([]T, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture file: %w", err)
	}
	defer f.Close()

	return Decode[T](f, strings.TrimPrefix(filepath.Ext(path), "."))
}
