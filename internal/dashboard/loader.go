package dashboard

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"
)

// Decode parses a dashboard document in the Meerkat JSON wire format.
func Decode(data []byte) (Dashboard, error) {
	var d Dashboard
	if err := json.Unmarshal(data, &d); err != nil {
		return Dashboard{}, fmt.Errorf("decode dashboard: %w", err)
	}
	return d, nil
}

// Encode renders d in the Meerkat JSON wire format.
func Encode(d Dashboard) ([]byte, error) {
	return json.MarshalIndent(d, "", "\t")
}

// LoadFile reads a dashboard exported to disk. Files ending in .toml are
// parsed as TOML, everything else as JSON.
func LoadFile(path string) (Dashboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dashboard{}, err
	}
	if isTOML(path) {
		var d Dashboard
		if _, err := toml.Decode(string(data), &d); err != nil {
			return Dashboard{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
		}
		return d, nil
	}
	return Decode(data)
}

// SaveFile writes d to path, choosing the format from the extension.
func SaveFile(d Dashboard, path string) error {
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(d); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = Encode(d)
		if err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// ListFiles returns the base names of exported dashboards found in dir.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".json" || ext == ".toml" {
			names = append(names, strings.TrimSuffix(e.Name(), ext))
		}
	}
	return names, nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
