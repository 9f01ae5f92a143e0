package goi18n_test

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"tscat/internal/adapters/exporter/goi18n"
	"tscat/internal/domain"
)

func sample() *domain.Catalog {
	return &domain.Catalog{Language: "en_US", Contexts: []*domain.Context{
		{Name: "ClientWidget", Messages: []*domain.Message{
			{Source: "Ajouter un client", Translation: "Add a client", ExtraComment: "toolbar button"},
			{Source: "Client {0} supprimé", Translation: "Client {0} deleted"},
			{Source: "Rechercher", Type: domain.TypeUnfinished, Comment: "search box"},
			{Source: "%n document(s) généré(s)", Numerus: true, Translation: "%n document generated",
				NumerusForms: []string{"%n document generated", "%n documents generated"}},
			{Source: "Ancien", Translation: "Old", Type: domain.TypeObsolete},
		}},
	}}
}

func TestMessages(t *testing.T) {
	msgs := goi18n.Messages(sample())
	assert.Equal(t, map[string]map[string]string{
		"ClientWidget.Ajouter un client":   {"description": "toolbar button", "other": "Add a client"},
		"ClientWidget.Client {0} supprimé": {"other": "Client {{.Arg0}} deleted"},
		"ClientWidget.Rechercher":          {"description": "search box", "other": "Rechercher"},
		"ClientWidget.%n document(s) généré(s)": {
			"one":   "{{.PluralCount}} document generated",
			"other": "{{.PluralCount}} documents generated",
		},
	}, msgs)
}

func TestMessagesPluralCategories(t *testing.T) {
	cat := &domain.Catalog{Contexts: []*domain.Context{{Name: "C", Messages: []*domain.Message{
		{Source: "%n fichier(s)", Numerus: true, NumerusForms: []string{"%n plik", "%n pliki", "%n plików"}},
	}}}}
	assert.Equal(t, map[string]string{
		"one":   "{{.PluralCount}} plik",
		"few":   "{{.PluralCount}} pliki",
		"other": "{{.PluralCount}} plików",
	}, goi18n.Messages(cat)["C.%n fichier(s)"])
}

func TestMessagesKeepCommentVariants(t *testing.T) {
	cat := &domain.Catalog{Contexts: []*domain.Context{{Name: "InvoiceList", Messages: []*domain.Message{
		{Source: "Ouvrir", Comment: "action", Translation: "Open"},
		{Source: "Ouvrir", Comment: "status", Translation: "Unpaid"},
	}}}}
	assert.Equal(t, map[string]map[string]string{
		"InvoiceList.Ouvrir":        {"description": "action", "other": "Open"},
		"InvoiceList.Ouvrir#status": {"description": "status", "other": "Unpaid"},
	}, goi18n.Messages(cat))
}

func TestFormats(t *testing.T) {
	assert.Equal(t, "goi18n", goi18n.New().Format())
	assert.Equal(t, "goi18n-yaml", goi18n.NewYAML().Format())
}

func TestExportLoadsIntoBundle(t *testing.T) {
	tests := []struct {
		name     string
		exporter *goi18n.Exporter
		file     string
	}{
		{name: "toml", exporter: goi18n.New(), file: "active.en-US.toml"},
		{name: "yaml", exporter: goi18n.NewYAML(), file: "active.en-US.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.exporter.Export(sample())
			require.NoError(t, err)

			bundle := i18n.NewBundle(language.AmericanEnglish)
			bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
			bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)
			_, err = bundle.ParseMessageFileBytes(out, tt.file)
			require.NoError(t, err)

			loc := i18n.NewLocalizer(bundle, "en-US")
			got, err := loc.Localize(&i18n.LocalizeConfig{
				MessageID:    "ClientWidget.Client {0} supprimé",
				TemplateData: map[string]any{"Arg0": "Dupont"},
			})
			require.NoError(t, err)
			assert.Equal(t, "Client Dupont deleted", got)

			got, err = loc.Localize(&i18n.LocalizeConfig{MessageID: "ClientWidget.Rechercher"})
			require.NoError(t, err)
			assert.Equal(t, "Rechercher", got)

			got, err = loc.Localize(&i18n.LocalizeConfig{
				MessageID:    "ClientWidget.%n document(s) généré(s)",
				PluralCount:  3,
				TemplateData: map[string]any{"PluralCount": 3},
			})
			require.NoError(t, err)
			assert.Equal(t, "3 documents generated", got)
		})
	}
}
