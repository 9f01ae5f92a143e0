package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	parreg "tscat/internal/adapters/parser/registry"
	"tscat/internal/domain"
	"tscat/internal/ports"
)

type Service struct {
	Files          ports.FileRepository
	Units          ports.UnitRepository
	Translations   ports.TranslationRepository
	Tx             ports.Transactor
	ParserRegistry *parreg.Registry
	Log            *slog.Logger
}

func New(files ports.FileRepository, units ports.UnitRepository, trans ports.TranslationRepository, tx ports.Transactor, reg *parreg.Registry, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{Files: files, Units: units, Translations: trans, Tx: tx, ParserRegistry: reg, Log: log}
}

type ImportArgs struct {
	Filename string
	// Format selects the parser; empty picks one from the file extension.
	Format string
	// Locale overrides the catalog's own language attribute.
	Locale  string
	Content []byte
}

type ImportResult struct {
	FileID       int64
	Language     string
	Units        int
	Translations int
}

// Parse decodes content with the parser chosen by format or filename.
func (s *Service) Parse(format, filename string, content []byte) (*domain.Catalog, string, error) {
	var (
		parser ports.Parser
		ok     bool
	)
	if format != "" {
		parser, ok = s.ParserRegistry.Get(format)
	} else {
		parser, ok = s.ParserRegistry.ForPath(filename)
	}
	if !ok {
		if format == "" {
			format = filename
		}
		return nil, "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format)
	}
	cat, err := parser.Parse(content)
	if err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", filename, err)
	}
	return cat, parser.Format(), nil
}

type unitKey struct{ context, key, comment string }

// Import parses a catalog and stores its file, units and translations in
// one transaction.
func (s *Service) Import(ctx context.Context, in ImportArgs) (ImportResult, error) {
	cat, format, err := s.Parse(in.Format, in.Filename, in.Content)
	if err != nil {
		return ImportResult{}, err
	}
	lang := cat.Language
	if in.Locale != "" {
		lang = in.Locale
	}
	f := &domain.File{
		Path:           in.Filename,
		Format:         format,
		Language:       lang,
		SourceLanguage: cat.SourceLanguage,
		Version:        cat.Version,
		Hash:           hashContent(in.Content),
	}

	var res ImportResult
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Files.Create(ctx, f); err != nil {
			return err
		}
		units, msgs, err := buildUnits(f.ID, cat)
		if err != nil {
			return err
		}
		if err := s.Units.UpsertBatch(ctx, units); err != nil {
			return err
		}
		res = ImportResult{FileID: f.ID, Language: lang, Units: len(units)}
		if lang == "" {
			return nil
		}
		stored, err := s.Units.ListByFile(ctx, f.ID)
		if err != nil {
			return err
		}
		for _, u := range stored {
			m, ok := msgs[unitKey{u.Context, u.Key, u.Comment}]
			if !ok {
				continue
			}
			t := &domain.Translation{UnitID: u.ID, Locale: lang, Text: m.Translation, Status: m.Type, NumerusForms: m.NumerusForms}
			if err := s.Translations.Upsert(ctx, t); err != nil {
				return err
			}
			res.Translations++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	s.Log.Info("catalog imported", "file", in.Filename, "file_id", res.FileID, "format", format, "units", res.Units, "locale", lang)
	return res, nil
}

// buildUnits converts messages to units in document order. Repeated
// (context, key, comment) identities keep the first message.
func buildUnits(fileID int64, cat *domain.Catalog) ([]*domain.Unit, map[unitKey]*domain.Message, error) {
	units := make([]*domain.Unit, 0, cat.Len())
	msgs := make(map[unitKey]*domain.Message, cat.Len())
	var err error
	cat.Each(func(ctx *domain.Context, m *domain.Message) {
		if err != nil {
			return
		}
		if !m.Type.Valid() {
			err = fmt.Errorf("context %q: message %q has unknown translation type %q", ctx.Name, m.Source, string(m.Type))
			return
		}
		k := unitKey{ctx.Name, m.Key(), m.Comment}
		if _, dup := msgs[k]; dup {
			return
		}
		msgs[k] = m
		meta, merr := json.Marshal(domain.UnitMetadata{
			ID:                m.ID,
			ExtraComment:      m.ExtraComment,
			TranslatorComment: m.TranslatorComment,
			ContextComment:    ctx.Comment,
			Locations:         m.Locations,
		})
		if merr != nil {
			err = merr
			return
		}
		units = append(units, &domain.Unit{
			FileID:      fileID,
			Context:     ctx.Name,
			Key:         m.Key(),
			SourceText:  m.Source,
			Comment:     m.Comment,
			Numerus:     m.Numerus,
			Position:    len(units),
			MetadataRaw: string(meta),
		})
	})
	return units, msgs, err
}
