// Package qtts reads Qt Linguist translation source (.ts) files.
package qtts

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/ianaindex"

	"tscat/internal/domain"
)

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) Format() string { return "ts" }

type xmlLocation struct {
	Filename string `xml:"filename,attr"`
	Line     string `xml:"line,attr"`
}

type xmlTranslation struct {
	Type         string   `xml:"type,attr"`
	Text         string   `xml:",chardata"`
	NumerusForms []string `xml:"numerusform"`
}

type xmlMessage struct {
	ID                string          `xml:"id,attr"`
	Numerus           string          `xml:"numerus,attr"`
	Locations         []xmlLocation   `xml:"location"`
	Source            string          `xml:"source"`
	Comment           string          `xml:"comment"`
	ExtraComment      string          `xml:"extracomment"`
	TranslatorComment string          `xml:"translatorcomment"`
	Translation       *xmlTranslation `xml:"translation"`
}

// Parse decodes a TS document. Unknown elements are skipped; translation
// types are kept verbatim so validation can report unexpected values.
func (p *Parser) Parse(data []byte) (*domain.Catalog, error) {
	data = stripBOM(data)
	d := xml.NewDecoder(bytes.NewReader(data))
	d.CharsetReader = charsetReader

	var (
		cat    *domain.Catalog
		cur    *domain.Context
		locs   = newLocationResolver()
		inRoot bool
	)
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line, _ := d.InputPos()
			return nil, fmt.Errorf("ts: line %d: %w", line, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "TS":
				if inRoot {
					return nil, errors.New("ts: nested <TS> element")
				}
				inRoot = true
				cat = &domain.Catalog{}
				for _, a := range t.Attr {
					switch a.Name.Local {
					case "version":
						cat.Version = a.Value
					case "language":
						cat.Language = a.Value
					case "sourcelanguage":
						cat.SourceLanguage = a.Value
					}
				}
			case "context":
				if cat == nil {
					return nil, errors.New("ts: <context> outside <TS>")
				}
				cur = &domain.Context{}
				cat.Contexts = append(cat.Contexts, cur)
			case "name", "comment":
				var s string
				if err := d.DecodeElement(&s, &t); err != nil {
					return nil, fmt.Errorf("ts: decode <%s>: %w", t.Name.Local, err)
				}
				if cur == nil {
					continue
				}
				if t.Name.Local == "name" {
					cur.Name = s
				} else {
					cur.Comment = s
				}
			case "message":
				if cur == nil {
					return nil, errors.New("ts: <message> outside <context>")
				}
				line, _ := d.InputPos()
				var xm xmlMessage
				if err := d.DecodeElement(&xm, &t); err != nil {
					return nil, fmt.Errorf("ts: line %d: decode <message>: %w", line, err)
				}
				cur.Messages = append(cur.Messages, toMessage(xm, line, locs))
			}
		case xml.EndElement:
			if t.Name.Local == "context" {
				cur = nil
			}
		}
	}
	if cat == nil {
		return nil, errors.New("ts: missing <TS> root element")
	}
	return cat, nil
}

func toMessage(xm xmlMessage, line int, locs *locationResolver) *domain.Message {
	m := &domain.Message{
		ID:                xm.ID,
		Source:            xm.Source,
		Comment:           xm.Comment,
		ExtraComment:      xm.ExtraComment,
		TranslatorComment: xm.TranslatorComment,
		Numerus:           xm.Numerus == "yes",
		Line:              line,
	}
	for _, l := range xm.Locations {
		m.Locations = append(m.Locations, locs.resolve(l))
	}
	if xm.Translation == nil {
		// lupdate always writes a <translation>; a missing one means nothing was translated yet.
		m.Type = domain.TypeUnfinished
		return m
	}
	m.Type = domain.TranslationType(xm.Translation.Type)
	if m.Numerus {
		m.NumerusForms = xm.Translation.NumerusForms
		if len(m.NumerusForms) > 0 {
			m.Translation = m.NumerusForms[0]
		}
	} else {
		m.Translation = xm.Translation.Text
	}
	return m
}

// locationResolver expands the relative form lupdate writes with
// -locations relative: an omitted filename repeats the previous one and a
// signed line is an offset from the previous line in that file.
type locationResolver struct {
	lastFile string
	lastLine map[string]int
}

func newLocationResolver() *locationResolver {
	return &locationResolver{lastLine: map[string]int{}}
}

func (r *locationResolver) resolve(l xmlLocation) domain.Location {
	file := l.Filename
	if file == "" {
		file = r.lastFile
	}
	raw := strings.TrimSpace(l.Line)
	n, err := strconv.Atoi(raw)
	if err != nil {
		n = 0
	}
	if strings.HasPrefix(raw, "+") || strings.HasPrefix(raw, "-") {
		n += r.lastLine[file]
	}
	r.lastFile = file
	r.lastLine[file] = n
	return domain.Location{Filename: file, Line: n}
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

func stripBOM(b []byte) []byte {
	bom := []byte{0xEF, 0xBB, 0xBF}
	if len(b) >= 3 && bytes.Equal(b[:3], bom) {
		return b[3:]
	}
	return b
}
