package catalog

import (
	"tscat/internal/domain"
)

// Display is the text a user sees for m: the translation when it is
// finished and non-empty, the source otherwise.
func Display(m *domain.Message) string {
	if m.Finished() && m.Translation != "" {
		return m.Translation
	}
	return m.Source
}

// Translator is a read-only index over a catalog. It is safe for
// concurrent use once built.
type Translator struct {
	language string
	byCtx    map[string]map[string]*domain.Message
	// first finished message per source across contexts, for context-free lookups
	any map[string]*domain.Message
}

// NewTranslator indexes cat by (context, source). On duplicates the first
// message in document order wins.
func NewTranslator(cat *domain.Catalog) *Translator {
	t := &Translator{
		language: cat.Language,
		byCtx:    make(map[string]map[string]*domain.Message, len(cat.Contexts)),
		any:      make(map[string]*domain.Message),
	}
	cat.Each(func(ctx *domain.Context, m *domain.Message) {
		msgs, ok := t.byCtx[ctx.Name]
		if !ok {
			msgs = make(map[string]*domain.Message, len(ctx.Messages))
			t.byCtx[ctx.Name] = msgs
		}
		if _, dup := msgs[m.Source]; !dup {
			msgs[m.Source] = m
		}
		if _, seen := t.any[m.Source]; !seen && shown(m) {
			t.any[m.Source] = m
		}
	})
	return t
}

// Language is the target language of the indexed catalog.
func (t *Translator) Language() string { return t.language }

// Lookup returns the finished translation for source in context.
func (t *Translator) Lookup(context, source string) (string, bool) {
	m, ok := t.byCtx[context][source]
	if !ok || !shown(m) {
		return "", false
	}
	return m.Translation, true
}

// Translate looks source up in context, falls back to source itself, and
// substitutes positional placeholders with args.
func (t *Translator) Translate(context, source string, args ...any) string {
	text, ok := t.Lookup(context, source)
	if !ok {
		text = source
	}
	return Format(text, args...)
}

// LookupAny is Lookup across all contexts: the first context holding a
// finished translation for source wins.
func (t *Translator) LookupAny(source string) (string, bool) {
	m, ok := t.any[source]
	if !ok {
		return "", false
	}
	return m.Translation, true
}

// TranslateAny is Translate without a context.
func (t *Translator) TranslateAny(source string, args ...any) string {
	text, ok := t.LookupAny(source)
	if !ok {
		text = source
	}
	return Format(text, args...)
}

// Plural picks the numerus form for n, using the one/other split of the
// source language: form 0 for n == 1, form 1 otherwise. Forms beyond the
// available ones clamp to the last. "%n" is replaced with n.
func (t *Translator) Plural(context, source string, n int, args ...any) string {
	m, ok := t.byCtx[context][source]
	if !ok || !m.Finished() {
		m = nil
	}
	return pluralText(m, source, n, args...)
}

// PluralAny is Plural without a context, resolved like LookupAny.
func (t *Translator) PluralAny(source string, n int, args ...any) string {
	return pluralText(t.any[source], source, n, args...)
}

func pluralText(m *domain.Message, source string, n int, args ...any) string {
	text := source
	switch {
	case m == nil:
	case m.Numerus && len(m.NumerusForms) > 0:
		i := 1
		if n == 1 {
			i = 0
		}
		if i >= len(m.NumerusForms) {
			i = len(m.NumerusForms) - 1
		}
		if m.NumerusForms[i] != "" {
			text = m.NumerusForms[i]
		}
	case m.Translation != "":
		text = m.Translation
	}
	return Format(replaceCount(text, n), args...)
}

func shown(m *domain.Message) bool {
	return m.Finished() && m.Translation != ""
}
