// Package goi18n writes catalogs as go-i18n v2 message files so Go services
// can serve the same strings through an i18n.Bundle.
package goi18n

import (
	"bytes"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"tscat/internal/adapters/exporter/paraglidejson"
	"tscat/internal/catalog"
	"tscat/internal/domain"
)

// Exporter encodes messages as TOML ("goi18n") or YAML ("goi18n-yaml").
type Exporter struct {
	yaml bool
}

func New() *Exporter { return &Exporter{} }

func NewYAML() *Exporter { return &Exporter{yaml: true} }

func (e *Exporter) Format() string {
	if e.yaml {
		return "goi18n-yaml"
	}
	return "goi18n"
}

func (e *Exporter) Export(cat *domain.Catalog) ([]byte, error) {
	msgs := Messages(cat)
	if e.yaml {
		return yaml.Marshal(msgs)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(msgs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pluralCategories maps Qt's ordered numerus forms onto CLDR categories by
// the number of forms present.
var pluralCategories = [][]string{
	1: {"other"},
	2: {"one", "other"},
	3: {"one", "few", "other"},
	4: {"one", "few", "many", "other"},
}

// Messages builds the go-i18n message map keyed by "Context.key". Message
// text uses template actions for placeholders ({{.Arg0}}, {{.PluralCount}}).
func Messages(cat *domain.Catalog) map[string]map[string]string {
	out := make(map[string]map[string]string, cat.Len())
	keys := paraglidejson.NewKeyer()
	cat.Each(func(ctx *domain.Context, m *domain.Message) {
		if m.Type == domain.TypeObsolete || m.Type == domain.TypeVanished {
			return
		}
		id, ok := keys.Next(ctx.Name, m)
		if !ok {
			return
		}
		entry := map[string]string{}
		if desc := description(m); desc != "" {
			entry["description"] = desc
		}
		forms := m.NumerusForms
		if !m.Numerus || !m.Finished() || len(forms) == 0 {
			entry["other"] = catalog.GoTemplate(catalog.Display(m))
			out[id] = entry
			return
		}
		if len(forms) >= len(pluralCategories) {
			forms = forms[:len(pluralCategories)-1]
		}
		for i, category := range pluralCategories[len(forms)] {
			text := forms[i]
			if text == "" {
				text = m.Source
			}
			entry[category] = catalog.GoTemplate(text)
		}
		out[id] = entry
	})
	return out
}

func description(m *domain.Message) string {
	switch {
	case m.Comment != "":
		return m.Comment
	case m.ExtraComment != "":
		return m.ExtraComment
	}
	return ""
}
