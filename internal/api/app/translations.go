package app

import (
	"context"
	"errors"
	"fmt"

	"tscat/internal/domain"
	"tscat/internal/ports"
)

type TranslationsAPI struct {
	repo  ports.TranslationRepository
	units ports.UnitRepository
}

func NewTranslationsAPI(repo ports.TranslationRepository, units ports.UnitRepository) *TranslationsAPI {
	return &TranslationsAPI{repo: repo, units: units}
}

type UpsertTranslationRequest struct {
	UnitID int64  `json:"unit_id"`
	Locale string `json:"locale"`
	Text   string `json:"text"`
	Status string `json:"status"`
}

// Upsert stores a reviewed translation. An empty status means finished.
func (a *TranslationsAPI) Upsert(ctx context.Context, req UpsertTranslationRequest) error {
	if req.Locale == "" {
		return errors.New("locale is required")
	}
	st, err := domain.ParseTranslationType(req.Status)
	if err != nil {
		return err
	}
	u, err := a.units.Get(ctx, req.UnitID)
	if err != nil {
		return err
	}
	t := &domain.Translation{UnitID: u.ID, Locale: req.Locale, Text: req.Text, Status: st}
	if u.Numerus {
		t.NumerusForms = []string{req.Text}
	}
	return a.repo.Upsert(ctx, t)
}

type UnitText struct {
	UnitID      int64  `json:"unit_id"`
	Context     string `json:"context"`
	Key         string `json:"key"`
	Source      string `json:"source"`
	Translation string `json:"translation"`
	Status      string `json:"status"`
}

func (u UnitText) String() string {
	return fmt.Sprintf("%d\t%s\t%s\t%s\t%s", u.UnitID, u.Status, u.Context, u.Source, u.Translation)
}

// ListUnitTexts pairs every unit of a file with its translation for locale.
// Units without a stored translation are reported as unfinished.
func (a *TranslationsAPI) ListUnitTexts(ctx context.Context, fileID int64, locale string) ([]*UnitText, error) {
	units, err := a.units.ListByFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	trs, err := a.repo.ListByFileLocale(ctx, fileID, locale)
	if err != nil {
		return nil, err
	}
	byUnit := make(map[int64]*domain.Translation, len(trs))
	for _, t := range trs {
		byUnit[t.UnitID] = t
	}
	out := make([]*UnitText, 0, len(units))
	for _, u := range units {
		ut := &UnitText{UnitID: u.ID, Context: u.Context, Key: u.Key, Source: u.SourceText, Status: domain.TypeUnfinished.String()}
		if t := byUnit[u.ID]; t != nil {
			ut.Translation = t.Text
			ut.Status = t.Status.String()
		}
		out = append(out, ut)
	}
	return out, nil
}
