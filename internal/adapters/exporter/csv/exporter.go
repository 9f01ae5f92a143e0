package csv

import (
	"bytes"
	"encoding/csv"

	"tscat/internal/domain"
)

type Exporter struct {
	comma rune
}

func New() *Exporter { return &Exporter{comma: ','} }

// WithSeparator returns an exporter writing sep-separated values
// ("comma", "semicolon" or "tab").
func WithSeparator(sep string) *Exporter {
	e := New()
	switch sep {
	case "semicolon":
		e.comma = ';'
	case "tab":
		e.comma = '\t'
	}
	return e
}

func (e *Exporter) Format() string { return "csv" }

// Export writes every message including its status, so the file can be
// imported back without losing unfinished markers.
func (e *Exporter) Export(cat *domain.Catalog) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = e.comma
	if err := w.Write([]string{"context", "key", "source", "translation", "status"}); err != nil {
		return nil, err
	}
	var werr error
	cat.Each(func(ctx *domain.Context, m *domain.Message) {
		if werr != nil {
			return
		}
		werr = w.Write([]string{ctx.Name, m.Key(), m.Source, m.Translation, m.Type.String()})
	})
	if werr != nil {
		return nil, werr
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
