package registry

import (
	"path/filepath"
	"sort"
	"strings"

	"tscat/internal/ports"
)

type Registry struct {
	byFormat map[string]ports.Exporter
}

func New() *Registry { return &Registry{byFormat: map[string]ports.Exporter{}} }

func (r *Registry) Register(e ports.Exporter) { r.byFormat[e.Format()] = e }

func (r *Registry) Get(format string) (ports.Exporter, bool) {
	e, ok := r.byFormat[strings.ToLower(format)]
	return e, ok
}

// Extension is the conventional file extension for format.
func Extension(format string) string {
	switch format {
	case "ts":
		return ".ts"
	case "csv":
		return ".csv"
	case "paraglidejson":
		return ".json"
	case "goi18n":
		return ".toml"
	case "goi18n-yaml":
		return ".yaml"
	}
	return "." + format
}

// OutputPath replaces the extension of path with the one for format.
func OutputPath(path, format string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + Extension(format)
}

func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.byFormat))
	for f := range r.byFormat {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
