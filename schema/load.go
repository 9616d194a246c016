package schema

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/herpritts/jobquery"
)

// Load reads and imports the schema file at p. Files ending in .yaml or .yml
// are parsed as YAML, everything else as JSON.
func Load(p string, opts Options) (*jobquery.Registry, Diag, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, &simpleDiag{}, fmt.Errorf("schema: reading %s: %w", p, err)
	}
	return parse(filepath.Ext(p), data, opts)
}

// LoadFS is Load over an fs.FS.
func LoadFS(fsys fs.FS, name string, opts Options) (*jobquery.Registry, Diag, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, &simpleDiag{}, fmt.Errorf("schema: reading %s: %w", name, err)
	}
	return parse(path.Ext(name), data, opts)
}

func parse(ext string, data []byte, opts Options) (*jobquery.Registry, Diag, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return ParseYAML(data, opts)
	default:
		return ParseJSON(data, opts)
	}
}
