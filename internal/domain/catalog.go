package domain

import (
	"fmt"
	"strings"
)

// TranslationType is the status carried by a <translation type="..."> attribute.
// The zero value means the translation is finished.
type TranslationType string

const (
	TypeFinished   TranslationType = ""
	TypeUnfinished TranslationType = "unfinished"
	TypeObsolete   TranslationType = "obsolete"
	TypeVanished   TranslationType = "vanished"
)

// Valid reports whether t is one of the statuses defined by TS 2.1.
func (t TranslationType) Valid() bool {
	switch t {
	case TypeFinished, TypeUnfinished, TypeObsolete, TypeVanished:
		return true
	}
	return false
}

// String returns "finished" for the empty status so it can be stored and printed.
func (t TranslationType) String() string {
	if t == TypeFinished {
		return "finished"
	}
	return string(t)
}

// ParseTranslationType is the inverse of String.
func ParseTranslationType(s string) (TranslationType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "finished":
		return TypeFinished, nil
	case "unfinished":
		return TypeUnfinished, nil
	case "obsolete":
		return TypeObsolete, nil
	case "vanished":
		return TypeVanished, nil
	}
	return TranslationType(s), fmt.Errorf("unknown translation type %q", s)
}

// Catalog is a parsed translation source file.
type Catalog struct {
	Version        string
	Language       string
	SourceLanguage string
	Contexts       []*Context
}

// Context groups the messages of one dialog or class.
type Context struct {
	Name     string
	Comment  string
	Messages []*Message
}

// Location is provenance only; it never takes part in lookups.
type Location struct {
	Filename string `json:"filename,omitempty"`
	Line     int    `json:"line,omitempty"`
}

type Message struct {
	ID                string
	Source            string
	Comment           string
	ExtraComment      string
	TranslatorComment string
	Translation       string
	Type              TranslationType
	Numerus           bool
	NumerusForms      []string
	Locations         []Location

	// Line is the line of the <message> element in the parsed document, 0 when unknown.
	Line int
}

// Key is the stable identifier used by flat formats and storage.
func (m *Message) Key() string {
	if m.ID != "" {
		return m.ID
	}
	return m.Source
}

// Finished reports whether the message should be shown to end users.
func (m *Message) Finished() bool {
	return m.Type == TypeFinished
}

// Context returns the named context, creating it at the end when missing.
func (c *Catalog) Context(name string) *Context {
	for _, ctx := range c.Contexts {
		if ctx.Name == name {
			return ctx
		}
	}
	ctx := &Context{Name: name}
	c.Contexts = append(c.Contexts, ctx)
	return ctx
}

// Len returns the total number of messages.
func (c *Catalog) Len() int {
	n := 0
	for _, ctx := range c.Contexts {
		n += len(ctx.Messages)
	}
	return n
}

// Each calls fn for every message in document order.
func (c *Catalog) Each(fn func(ctx *Context, m *Message)) {
	for _, ctx := range c.Contexts {
		for _, m := range ctx.Messages {
			fn(ctx, m)
		}
	}
}
