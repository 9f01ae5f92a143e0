package app

import (
	"context"

	csvp "tscat/internal/adapters/parser/csv"
	paraglide "tscat/internal/adapters/parser/paraglidejson"
	qttsparser "tscat/internal/adapters/parser/qtts"
	parreg "tscat/internal/adapters/parser/registry"
	"tscat/internal/usecase/importer"
)

type ImportAPI struct {
	svc *importer.Service
}

func NewImportAPI(svc *importer.Service) *ImportAPI { return &ImportAPI{svc: svc} }

type ImportRequest struct {
	Filename string `json:"filename"`
	Format   string `json:"format"`
	Locale   string `json:"locale"`
	Content  []byte `json:"-"`
}

type ImportResponse struct {
	FileID       int64  `json:"file_id"`
	Language     string `json:"language"`
	Units        int    `json:"units"`
	Translations int    `json:"translations"`
}

func (a *ImportAPI) Import(ctx context.Context, req ImportRequest) (ImportResponse, error) {
	res, err := a.svc.Import(ctx, importer.ImportArgs{Filename: req.Filename, Format: req.Format, Locale: req.Locale, Content: req.Content})
	if err != nil {
		return ImportResponse{}, err
	}
	return ImportResponse{FileID: res.FileID, Language: res.Language, Units: res.Units, Translations: res.Translations}, nil
}

// NewDefaultParserRegistry registers every supported input format.
func NewDefaultParserRegistry() *parreg.Registry {
	reg := parreg.New()
	reg.Register(qttsparser.New())
	reg.Register(paraglide.New())
	reg.Register(csvp.New())
	return reg
}
