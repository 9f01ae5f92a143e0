package exporter

import (
	"context"
	"encoding/json"
	"fmt"

	exreg "tscat/internal/adapters/exporter/registry"
	"tscat/internal/domain"
	"tscat/internal/ports"
)

type Service struct {
	Files ports.FileRepository
	Units ports.UnitRepository
	Trans ports.TranslationRepository
	Reg   *exreg.Registry
}

func New(files ports.FileRepository, units ports.UnitRepository, trans ports.TranslationRepository, reg *exreg.Registry) *Service {
	return &Service{Files: files, Units: units, Trans: trans, Reg: reg}
}

type ExportArgs struct {
	FileID int64
	// Locale defaults to the language the file was imported with.
	Locale string
	// Format defaults to the file's own format.
	Format string
}

type ExportResult struct {
	// Source is the path the file was imported from.
	Source   string
	Filename string
	Format   string
	Content  []byte
}

func (s *Service) ExportFile(ctx context.Context, a ExportArgs) (ExportResult, error) {
	f, err := s.Files.Get(ctx, a.FileID)
	if err != nil {
		return ExportResult{}, err
	}
	format := f.Format
	if a.Format != "" {
		format = a.Format
	}
	exp, ok := s.Reg.Get(format)
	if !ok {
		return ExportResult{}, fmt.Errorf("%w: no exporter for %s", domain.ErrUnsupportedFormat, format)
	}
	cat, err := s.catalog(ctx, f, a.Locale)
	if err != nil {
		return ExportResult{}, err
	}
	content, err := exp.Export(cat)
	if err != nil {
		return ExportResult{}, fmt.Errorf("export %s as %s: %w", f.Path, format, err)
	}
	name := f.Path
	if format != f.Format {
		name = exreg.OutputPath(f.Path, format)
	}
	return ExportResult{Source: f.Path, Filename: name, Format: format, Content: content}, nil
}

// Catalog rebuilds the stored file as a catalog for locale.
func (s *Service) Catalog(ctx context.Context, fileID int64, locale string) (*domain.Catalog, error) {
	f, err := s.Files.Get(ctx, fileID)
	if err != nil {
		return nil, err
	}
	return s.catalog(ctx, f, locale)
}

func (s *Service) catalog(ctx context.Context, f *domain.File, locale string) (*domain.Catalog, error) {
	if locale == "" {
		locale = f.Language
	}
	units, err := s.Units.ListByFile(ctx, f.ID)
	if err != nil {
		return nil, err
	}
	trList, err := s.Trans.ListByFileLocale(ctx, f.ID, locale)
	if err != nil {
		return nil, err
	}
	trByUnit := make(map[int64]*domain.Translation, len(trList))
	for _, t := range trList {
		trByUnit[t.UnitID] = t
	}
	cat := &domain.Catalog{Version: f.Version, Language: locale, SourceLanguage: f.SourceLanguage}
	for _, u := range units {
		var meta domain.UnitMetadata
		if u.MetadataRaw != "" {
			if err := json.Unmarshal([]byte(u.MetadataRaw), &meta); err != nil {
				return nil, fmt.Errorf("unit %d metadata: %w", u.ID, err)
			}
		}
		group := cat.Context(u.Context)
		if group.Comment == "" {
			group.Comment = meta.ContextComment
		}
		m := &domain.Message{
			ID:                meta.ID,
			Source:            u.SourceText,
			Comment:           u.Comment,
			ExtraComment:      meta.ExtraComment,
			TranslatorComment: meta.TranslatorComment,
			Numerus:           u.Numerus,
			Locations:         meta.Locations,
			Type:              domain.TypeUnfinished,
		}
		if t, ok := trByUnit[u.ID]; ok {
			m.Translation = t.Text
			m.Type = t.Status
			m.NumerusForms = t.NumerusForms
		}
		group.Messages = append(group.Messages, m)
	}
	return cat, nil
}
