package app

import (
	"context"

	csvexp "tscat/internal/adapters/exporter/csv"
	goi18nexp "tscat/internal/adapters/exporter/goi18n"
	jsonexp "tscat/internal/adapters/exporter/paraglidejson"
	qttsexp "tscat/internal/adapters/exporter/qtts"
	exreg "tscat/internal/adapters/exporter/registry"
	"tscat/internal/usecase/exporter"
)

type ExportAPI struct{ svc *exporter.Service }

func NewExportAPI(s *exporter.Service) *ExportAPI { return &ExportAPI{svc: s} }

type ExportFileRequest struct {
	FileID int64  `json:"file_id"`
	Locale string `json:"locale"`
	Format string `json:"format"`
}

type ExportFileResponse struct {
	Source   string `json:"source"`
	Filename string `json:"filename"`
	Format   string `json:"format"`
	Content  []byte `json:"-"`
}

func (a *ExportAPI) ExportFile(ctx context.Context, req ExportFileRequest) (ExportFileResponse, error) {
	res, err := a.svc.ExportFile(ctx, exporter.ExportArgs{FileID: req.FileID, Locale: req.Locale, Format: req.Format})
	if err != nil {
		return ExportFileResponse{}, err
	}
	return ExportFileResponse{Source: res.Source, Filename: res.Filename, Format: res.Format, Content: res.Content}, nil
}

// NewDefaultExporterRegistry registers every supported output format.
// csvSep selects the CSV separator ("comma", "semicolon" or "tab").
func NewDefaultExporterRegistry(csvSep string) *exreg.Registry {
	reg := exreg.New()
	reg.Register(qttsexp.New())
	reg.Register(jsonexp.New())
	reg.Register(csvexp.WithSeparator(csvSep))
	reg.Register(goi18nexp.New())
	reg.Register(goi18nexp.NewYAML())
	return reg
}
