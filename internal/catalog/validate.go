package catalog

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/language"

	"tscat/internal/domain"
)

// SchemaVersion is the TS schema version written by current lupdate releases.
const SchemaVersion = "2.1"

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rule names reported in Issue.Rule.
const (
	RuleEmptySource         = "empty-source"
	RuleDuplicateConflict   = "duplicate-conflict"
	RuleDuplicate           = "duplicate"
	RuleInvalidType         = "invalid-type"
	RuleSchemaVersion       = "schema-version"
	RuleLanguage            = "language"
	RuleEmptyContext        = "empty-context"
	RulePlaceholderMismatch = "placeholder-mismatch"
	RuleEmptyTranslation    = "empty-translation"
)

type Issue struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Context  string   `json:"context,omitempty"`
	Source   string   `json:"source,omitempty"`
	Line     int      `json:"line,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	var b strings.Builder
	if i.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", i.Line)
	}
	fmt.Fprintf(&b, "%s [%s] %s", i.Severity, i.Rule, i.Message)
	if i.Context != "" {
		fmt.Fprintf(&b, " (context %q)", i.Context)
	}
	return b.String()
}

type Report struct {
	Issues []Issue `json:"issues"`
}

// OK reports whether no error-level issue was found.
func (r Report) OK() bool { return r.Errors() == 0 }

func (r Report) Errors() int { return r.count(SeverityError) }

func (r Report) Warnings() int { return r.count(SeverityWarning) }

func (r Report) count(s Severity) int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == s {
			n++
		}
	}
	return n
}

// Validate checks the structural properties of a catalog.
func Validate(cat *domain.Catalog) Report {
	var r Report
	add := func(rule string, sev Severity, ctx string, m *domain.Message, format string, args ...any) {
		is := Issue{Rule: rule, Severity: sev, Context: ctx, Message: fmt.Sprintf(format, args...)}
		if m != nil {
			is.Source = m.Source
			is.Line = m.Line
		}
		r.Issues = append(r.Issues, is)
	}

	if cat.Version != SchemaVersion {
		add(RuleSchemaVersion, SeverityWarning, "", nil, "schema version %q, expected %q", cat.Version, SchemaVersion)
	}
	checkLanguage := func(attr, value string) {
		if value == "" {
			return
		}
		if _, err := ParseLocale(value); err != nil {
			add(RuleLanguage, SeverityWarning, "", nil, "%s %q is not a valid locale", attr, value)
		}
	}
	checkLanguage("language", cat.Language)
	checkLanguage("sourcelanguage", cat.SourceLanguage)

	for _, ctx := range cat.Contexts {
		if strings.TrimSpace(ctx.Name) == "" {
			add(RuleEmptyContext, SeverityWarning, ctx.Name, nil, "context without a name holds %d messages", len(ctx.Messages))
		}
		type key struct{ source, comment string }
		seen := make(map[key]*domain.Message, len(ctx.Messages))
		for _, m := range ctx.Messages {
			if strings.TrimSpace(m.Source) == "" {
				add(RuleEmptySource, SeverityError, ctx.Name, m, "message has an empty source")
			}
			if !m.Type.Valid() {
				add(RuleInvalidType, SeverityError, ctx.Name, m, "unknown translation type %q", string(m.Type))
			}
			k := key{m.Source, m.Comment}
			if prev, dup := seen[k]; dup {
				if sameTranslation(prev, m) {
					add(RuleDuplicate, SeverityWarning, ctx.Name, m, "duplicate of message at line %d", prev.Line)
				} else {
					add(RuleDuplicateConflict, SeverityError, ctx.Name, m,
						"source %q translated as %q here and %q at line %d", m.Source, m.Translation, prev.Translation, prev.Line)
				}
			} else {
				seen[k] = m
			}
			if !m.Finished() {
				continue
			}
			if !m.Numerus && m.Translation == "" {
				add(RuleEmptyTranslation, SeverityWarning, ctx.Name, m, "finished translation is empty")
				continue
			}
			forms := []string{m.Translation}
			if m.Numerus && len(m.NumerusForms) > 0 {
				forms = m.NumerusForms
			}
			want := Placeholders(m.Source)
			for _, f := range forms {
				if got := Placeholders(f); !slices.Equal(got, want) {
					add(RulePlaceholderMismatch, SeverityWarning, ctx.Name, m,
						"placeholders %v in source, %v in translation", want, got)
					break
				}
			}
		}
	}
	return r
}

func sameTranslation(a, b *domain.Message) bool {
	return a.Translation == b.Translation && a.Type == b.Type && slices.Equal(a.NumerusForms, b.NumerusForms)
}

// ParseLocale accepts both BCP 47 tags (en-US) and the POSIX form Qt
// writes (en_US).
func ParseLocale(s string) (language.Tag, error) {
	return language.Parse(strings.ReplaceAll(s, "_", "-"))
}
