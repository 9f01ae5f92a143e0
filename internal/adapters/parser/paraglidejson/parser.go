package paraglidejson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"tscat/internal/domain"
)

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) Format() string { return "paraglidejson" }

// Parse reads a flat JSON object { key: value, ... } into a single unnamed
// context. Every value becomes an untranslated source string.
func (p *Parser) Parse(data []byte) (*domain.Catalog, error) {
	// Strip UTF-8 BOM if present
	data = stripBOM(data)
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		// Ignore metadata fields like $schema
		if len(k) > 0 && k[0] == '$' {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	cat := &domain.Catalog{}
	ctx := cat.Context("")
	for _, k := range keys {
		s, ok := m[k].(string)
		if !ok {
			continue
		}
		msg := &domain.Message{Source: s, Type: domain.TypeUnfinished}
		if k != s {
			msg.ID = k
		}
		ctx.Messages = append(ctx.Messages, msg)
	}
	return cat, nil
}

func stripBOM(b []byte) []byte {
	bom := []byte{0xEF, 0xBB, 0xBF}
	if len(b) >= 3 && bytes.Equal(b[:3], bom) {
		return b[3:]
	}
	return b
}
