package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"tscat/internal/domain"
)

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) Format() string { return "csv" }

// Parse reads a header-driven CSV. Only "key" and one source column are
// required; "context", "translation" and "status" are optional. The
// separator (comma, semicolon or tab) is taken from the header line.
func (p *Parser) Parse(data []byte) (*domain.Catalog, error) {
	data = stripBOM(data)
	r := csv.NewReader(bufio.NewReader(bytes.NewReader(data)))
	r.Comma = separator(data)
	r.TrimLeadingSpace = r.Comma != '\t'
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	keyIdx, ok := idx["key"]
	if !ok {
		return nil, errors.New("csv missing 'key' column")
	}
	// Support source column names
	srcIdx := -1
	for _, name := range []string{"source", "value", "text", "default"} {
		if i, ok := idx[name]; ok {
			srcIdx = i
			break
		}
	}
	if srcIdx == -1 {
		return nil, errors.New("csv missing source column (source/value/text/default)")
	}
	ctxIdx, trIdx, stIdx := column(idx, "context"), column(idx, "translation"), column(idx, "status")

	cat := &domain.Catalog{}
	line := 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		key := field(rec, keyIdx)
		if key == "" {
			continue
		}
		m := &domain.Message{Source: field(rec, srcIdx), Translation: field(rec, trIdx), Line: line}
		if key != m.Source {
			m.ID = key
		}
		switch {
		case stIdx >= 0 && field(rec, stIdx) != "":
			t, err := domain.ParseTranslationType(field(rec, stIdx))
			if err != nil {
				return nil, fmt.Errorf("csv line %d: %w", line, err)
			}
			m.Type = t
		case m.Translation == "":
			m.Type = domain.TypeUnfinished
		}
		ctx := cat.Context(field(rec, ctxIdx))
		ctx.Messages = append(ctx.Messages, m)
	}
	return cat, nil
}

// separator returns the candidate that occurs most often in the first line,
// outside quotes. Ties go to the comma.
func separator(data []byte) rune {
	counts := map[byte]int{}
	quoted := false
	for _, b := range data {
		if b == '\n' && !quoted {
			break
		}
		switch b {
		case '"':
			quoted = !quoted
		case ',', ';', '\t':
			if !quoted {
				counts[b]++
			}
		}
	}
	best := byte(',')
	for _, c := range []byte{';', '\t'} {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return rune(best)
}

func column(idx map[string]int, name string) int {
	if i, ok := idx[name]; ok {
		return i
	}
	return -1
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func stripBOM(b []byte) []byte {
	bom := []byte{0xEF, 0xBB, 0xBF}
	if len(b) >= 3 && bytes.Equal(b[:3], bom) {
		return b[3:]
	}
	return b
}
