package app

import (
	"context"
	"errors"

	"tscat/internal/domain"
	"tscat/internal/ports"
)

// ProviderAPI exposes the configured LLM provider and prompt overrides.
type ProviderAPI struct {
	prov      ports.Provider
	templates ports.TemplateRepository
}

func NewProviderAPI(prov ports.Provider, templates ports.TemplateRepository) *ProviderAPI {
	return &ProviderAPI{prov: prov, templates: templates}
}

var errNoProvider = errors.New("no provider configured; set TSCAT_PROVIDER_TYPE")

func (a *ProviderAPI) Test(ctx context.Context) error {
	if a.prov == nil {
		return errNoProvider
	}
	return a.prov.Test(ctx)
}

func (a *ProviderAPI) Models(ctx context.Context) ([]ports.ModelInfo, error) {
	if a.prov == nil {
		return nil, errNoProvider
	}
	return a.prov.ListModels(ctx)
}

type SetTemplateRequest struct {
	FileID int64  `json:"file_id"`
	Type   string `json:"type"`
	Role   string `json:"role"`
	Body   string `json:"body"`
}

// SetTemplate stores a prompt override, for one file when FileID is set
// and globally otherwise.
func (a *ProviderAPI) SetTemplate(ctx context.Context, req SetTemplateRequest) error {
	t := &domain.Template{Scope: "global", Type: req.Type, Role: req.Role, Body: req.Body}
	if req.FileID > 0 {
		id := req.FileID
		t.Scope = "file"
		t.RefID = &id
	}
	return a.templates.Upsert(ctx, t)
}
