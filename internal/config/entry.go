package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/spachava753/jumpstart/internal/models"
)

// EntryExtensions lists the file extensions recognized as registry entries.
var EntryExtensions = []string{".yml", ".yaml", ".toml"}

// IsEntryFile reports whether name has a registry entry extension.
func IsEntryFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range EntryExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadEntry reads and decodes one registry entry file from fsys. The format
// is chosen by extension. Unknown fields are rejected so typos surface as
// errors instead of silently dropped settings.
func LoadEntry(fsys fs.FS, name string) (models.Jumpstart, error) {
	var j models.Jumpstart

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return j, fmt.Errorf("reading %s: %w", name, err)
	}

	switch strings.ToLower(path.Ext(name)) {
	case ".yml", ".yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&j); err != nil {
			if errors.Is(err, io.EOF) {
				return j, fmt.Errorf("parsing %s: file is empty", name)
			}
			return j, fmt.Errorf("parsing %s: %w", name, err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), &j)
		if err != nil {
			return j, fmt.Errorf("parsing %s: %w", name, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return j, fmt.Errorf("parsing %s: unknown fields: %s", name, strings.Join(keys, ", "))
		}
	default:
		return j, fmt.Errorf("unsupported entry format %q", path.Ext(name))
	}

	return j, nil
}
