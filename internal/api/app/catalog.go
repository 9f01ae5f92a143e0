package app

import (
	"fmt"

	exreg "tscat/internal/adapters/exporter/registry"
	parreg "tscat/internal/adapters/parser/registry"
	"tscat/internal/catalog"
	"tscat/internal/domain"
	"tscat/internal/ports"
)

// CatalogAPI works on catalog files directly, without the database.
type CatalogAPI struct {
	parsers   *parreg.Registry
	exporters *exreg.Registry
}

func NewCatalogAPI(parsers *parreg.Registry, exporters *exreg.Registry) *CatalogAPI {
	return &CatalogAPI{parsers: parsers, exporters: exporters}
}

// Load parses content using format, or the extension of filename when
// format is empty.
func (a *CatalogAPI) Load(filename, format string, content []byte) (*domain.Catalog, error) {
	var (
		p  ports.Parser
		ok bool
	)
	if format != "" {
		p, ok = a.parsers.Get(format)
	} else {
		p, ok = a.parsers.ForPath(filename)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", filename, domain.ErrUnsupportedFormat)
	}
	cat, err := p.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return cat, nil
}

func (a *CatalogAPI) Validate(cat *domain.Catalog) catalog.Report { return catalog.Validate(cat) }

func (a *CatalogAPI) Stats(cat *domain.Catalog) catalog.Summary { return catalog.Summarize(cat) }

type LookupRequest struct {
	Context string   `json:"context"`
	Source  string   `json:"source"`
	Args    []string `json:"args"`
	// Count selects a numerus form when set.
	Count *int `json:"count"`
}

type LookupResponse struct {
	Text       string `json:"text"`
	Translated bool   `json:"translated"`
}

// Lookup resolves a source string the way the application would at runtime.
func (a *CatalogAPI) Lookup(cat *domain.Catalog, req LookupRequest) LookupResponse {
	t := catalog.NewTranslator(cat)
	args := make([]any, len(req.Args))
	for i, s := range req.Args {
		args[i] = s
	}
	switch {
	case req.Count != nil && req.Context == "":
		_, ok := t.LookupAny(req.Source)
		return LookupResponse{Text: t.PluralAny(req.Source, *req.Count, args...), Translated: ok}
	case req.Count != nil:
		_, ok := t.Lookup(req.Context, req.Source)
		return LookupResponse{Text: t.Plural(req.Context, req.Source, *req.Count, args...), Translated: ok}
	case req.Context == "":
		_, ok := t.LookupAny(req.Source)
		return LookupResponse{Text: t.TranslateAny(req.Source, args...), Translated: ok}
	default:
		_, ok := t.Lookup(req.Context, req.Source)
		return LookupResponse{Text: t.Translate(req.Context, req.Source, args...), Translated: ok}
	}
}

// Convert renders cat in another format and proposes an output name.
func (a *CatalogAPI) Convert(cat *domain.Catalog, filename, format string) ([]byte, string, error) {
	exp, ok := a.exporters.Get(format)
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format)
	}
	out, err := exp.Export(cat)
	if err != nil {
		return nil, "", err
	}
	return out, exreg.OutputPath(filename, format), nil
}
