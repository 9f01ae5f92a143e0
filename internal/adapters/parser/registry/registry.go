package registry

import (
	"path/filepath"
	"sort"
	"strings"

	"tscat/internal/ports"
)

type Registry struct {
	byFormat map[string]ports.Parser
}

func New() *Registry { return &Registry{byFormat: map[string]ports.Parser{}} }

func (r *Registry) Register(p ports.Parser) { r.byFormat[p.Format()] = p }

func (r *Registry) Get(format string) (ports.Parser, bool) {
	p, ok := r.byFormat[strings.ToLower(format)]
	return p, ok
}

// ForPath picks a parser from the file extension.
func (r *Registry) ForPath(path string) (ports.Parser, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts":
		return r.Get("ts")
	case ".csv":
		return r.Get("csv")
	case ".json":
		return r.Get("paraglidejson")
	}
	return nil, false
}

func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.byFormat))
	for f := range r.byFormat {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
