package source

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/herpritts/jobquery"
)

// Memory is an in-memory source keyed by code-list name.
type Memory map[string][]map[string]any

// Load returns a copy of the named list; unknown names wrap fs.ErrNotExist.
func (m Memory) Load(ctx context.Context, name string) ([]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("code list %q: %w", name, fs.ErrNotExist)
	}
	out := make([]map[string]any, len(entries))
	copy(out, entries)
	return out, nil
}

// SkipDisabled drops entries whose IsDisabled attribute is "Yes", the way the
// USAJobs code lists mark retired codes.
func SkipDisabled(src jobquery.CodeListSource) jobquery.CodeListSource { return skipDisabled{src} }

type skipDisabled struct{ inner jobquery.CodeListSource }

func (s skipDisabled) Load(ctx context.Context, name string) ([]map[string]any, error) {
	entries, err := s.inner.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		if v, _ := e["IsDisabled"].(string); strings.EqualFold(v, "Yes") {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
