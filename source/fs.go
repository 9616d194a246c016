package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
)

// FSSource reads code lists from files in an fs.FS. A name without an
// extension gets ".json" appended.
type FSSource struct {
	fsys fs.FS
}

// FS returns a source over fsys.
func FS(fsys fs.FS) *FSSource { return &FSSource{fsys: fsys} }

// Dir returns a source over the directory at path.
func Dir(dir string) *FSSource { return FS(os.DirFS(dir)) }

// Load reads and decodes the named file.
func (s *FSSource) Load(ctx context.Context, name string) ([]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file := name
	if path.Ext(file) == "" {
		file += ".json"
	}
	data, err := fs.ReadFile(s.fsys, file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch strings.ToLower(path.Ext(file)) {
	case ".yaml", ".yml":
		return DecodeYAMLEntries(data)
	default:
		return DecodeEntries(data)
	}
}

// Names lists the code-list files available in the source.
func (s *FSSource) Names() ([]string, error) {
	ents, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(path.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			out = append(out, e.Name())
		}
	}
	return out, nil
}
