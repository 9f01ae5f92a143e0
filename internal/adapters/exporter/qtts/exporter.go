// Package qtts writes catalogs in the layout lupdate produces.
package qtts

import (
	"bytes"
	"strconv"
	"strings"

	"tscat/internal/domain"
)

const defaultVersion = "2.1"

type Exporter struct{}

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Format() string { return "ts" }

func (e *Exporter) Export(cat *domain.Catalog) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<!DOCTYPE TS>\n")
	version := cat.Version
	if version == "" {
		version = defaultVersion
	}
	b.WriteString(`<TS version="` + escape(version) + `"`)
	if cat.Language != "" {
		b.WriteString(` language="` + escape(cat.Language) + `"`)
	}
	if cat.SourceLanguage != "" {
		b.WriteString(` sourcelanguage="` + escape(cat.SourceLanguage) + `"`)
	}
	b.WriteString(">\n")
	for _, ctx := range cat.Contexts {
		b.WriteString("<context>\n")
		element(&b, 1, "name", ctx.Name)
		if ctx.Comment != "" {
			element(&b, 1, "comment", ctx.Comment)
		}
		for _, m := range ctx.Messages {
			writeMessage(&b, m)
		}
		b.WriteString("</context>\n")
	}
	b.WriteString("</TS>\n")
	return b.Bytes(), nil
}

func writeMessage(b *bytes.Buffer, m *domain.Message) {
	indent(b, 1)
	b.WriteString("<message")
	if m.ID != "" {
		b.WriteString(` id="` + escape(m.ID) + `"`)
	}
	if m.Numerus {
		b.WriteString(` numerus="yes"`)
	}
	b.WriteString(">\n")
	for _, l := range m.Locations {
		indent(b, 2)
		b.WriteString("<location")
		if l.Filename != "" {
			b.WriteString(` filename="` + escape(l.Filename) + `"`)
		}
		if l.Line > 0 {
			b.WriteString(` line="` + strconv.Itoa(l.Line) + `"`)
		}
		b.WriteString("/>\n")
	}
	element(b, 2, "source", m.Source)
	if m.Comment != "" {
		element(b, 2, "comment", m.Comment)
	}
	if m.ExtraComment != "" {
		element(b, 2, "extracomment", m.ExtraComment)
	}
	if m.TranslatorComment != "" {
		element(b, 2, "translatorcomment", m.TranslatorComment)
	}
	indent(b, 2)
	b.WriteString("<translation")
	if m.Type != domain.TypeFinished {
		b.WriteString(` type="` + escape(string(m.Type)) + `"`)
	}
	b.WriteString(">")
	forms := m.NumerusForms
	if len(forms) == 0 && m.Translation != "" {
		forms = []string{m.Translation}
	}
	if m.Numerus && len(forms) > 0 {
		b.WriteString("\n")
		for _, f := range forms {
			element(b, 3, "numerusform", f)
		}
		indent(b, 2)
	} else if !m.Numerus {
		b.WriteString(escape(m.Translation))
	}
	b.WriteString("</translation>\n")
	indent(b, 1)
	b.WriteString("</message>\n")
}

func element(b *bytes.Buffer, depth int, name, text string) {
	indent(b, depth)
	b.WriteString("<" + name + ">" + escape(text) + "</" + name + ">\n")
}

func indent(b *bytes.Buffer, depth int) {
	b.WriteString(strings.Repeat("    ", depth))
}

// lupdate keeps newlines literal, so encoding/xml's EscapeText (which
// turns them into &#xA;) is not used here.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
	"\r", "&#xD;",
)

func escape(s string) string { return escaper.Replace(s) }
