package prompt

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"tscat/internal/ports"
)

type Renderer struct {
	Templates ports.TemplateRepository
}

func New(templates ports.TemplateRepository) *Renderer { return &Renderer{Templates: templates} }

// Render executes the stored template for (scope, refID, typ, role), or the
// builtin one when nothing is stored.
func (r *Renderer) Render(ctx context.Context, scope string, refID *int64, typ, role string, data ports.PromptData) (string, error) {
	body := builtinTemplate(typ, role)
	if r.Templates != nil {
		t, err := r.Templates.GetEffective(ctx, scope, refID, typ, role)
		if err != nil {
			return "", err
		}
		if t != nil && t.Body != "" {
			body = t.Body
		}
	}
	if body == "" {
		return "", fmt.Errorf("no prompt template for %s/%s", typ, role)
	}
	tpl, err := template.New("prompt").Parse(body)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func builtinTemplate(typ, role string) string {
	if typ == "translate_single" && role == "system" {
		return "You are a professional software localization translator. Translate user interface text from {{if .SrcLang}}{{.SrcLang}}{{else}}the source language{{end}} to {{.TgtLang}}. " +
			"{{if .Placeholders}}Keep the tokens {{range $i, $p := .Placeholders}}{{if $i}}, {{end}}{{$p}}{{end}} exactly as they are. {{end}}" +
			"Keep '&' keyboard accelerators and HTML markup, and do not change leading or trailing whitespace. " +
			"Return only JSON: {\"translation\":\"...\"}."
	}
	if typ == "translate_single" && role == "user" {
		return "file: {{.FilePath}} context: {{.Context}}{{if .Comment}} note: {{.Comment}}{{end}}\nsource: {{.Text}}"
	}
	return ""
}
