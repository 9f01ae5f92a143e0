package paraglidejson

import (
	"encoding/json"
	"strings"

	"tscat/internal/catalog"
	"tscat/internal/domain"
)

type Exporter struct{}

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Format() string { return "paraglidejson" }

// Export flattens the catalog to { "Context.key": text }. Obsolete and
// vanished messages are dropped; unfinished ones fall back to source.
func (e *Exporter) Export(cat *domain.Catalog) ([]byte, error) {
	out := make(map[string]string, cat.Len())
	keys := NewKeyer()
	cat.Each(func(ctx *domain.Context, m *domain.Message) {
		if retired(m) {
			return
		}
		if k, ok := keys.Next(ctx.Name, m); ok {
			out[k] = catalog.Display(m)
		}
	})
	return json.MarshalIndent(out, "", "  ")
}

// Key joins context and message key the way flat exports address messages.
// Dots inside the context are escaped, so the first bare dot ends it.
func Key(context, key string) string {
	if context == "" {
		return key
	}
	return strings.ReplaceAll(context, ".", `\.`) + "." + key
}

// Keyer hands out flat keys in document order. A message reusing an earlier
// key under another <comment> gets "#comment" appended; exact duplicates
// get no key.
type Keyer struct {
	comments map[string]string
	used     map[string]bool
}

func NewKeyer() *Keyer {
	return &Keyer{comments: map[string]string{}, used: map[string]bool{}}
}

func (k *Keyer) Next(context string, m *domain.Message) (string, bool) {
	base := Key(context, m.Key())
	first, seen := k.comments[base]
	if !seen {
		k.comments[base] = m.Comment
		k.used[base] = true
		return base, true
	}
	if first == m.Comment {
		return "", false
	}
	id := base + "#" + m.Comment
	if k.used[id] {
		return "", false
	}
	k.used[id] = true
	return id, true
}

func retired(m *domain.Message) bool {
	return m.Type == domain.TypeObsolete || m.Type == domain.TypeVanished
}
