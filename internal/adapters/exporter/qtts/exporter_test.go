package qtts_test

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tscat/internal/adapters/exporter/qtts"
	parser "tscat/internal/adapters/parser/qtts"
	"tscat/internal/domain"
)

func withoutLines(cat *domain.Catalog) *domain.Catalog {
	cat.Each(func(_ *domain.Context, m *domain.Message) { m.Line = 0 })
	return cat
}

func TestExportRoundTrip(t *testing.T) {
	data, err := os.ReadFile("../../parser/qtts/testdata/clients_en.ts")
	require.NoError(t, err)
	want, err := parser.New().Parse(data)
	require.NoError(t, err)

	out, err := qtts.New().Export(want)
	require.NoError(t, err)
	got, err := parser.New().Parse(out)
	require.NoError(t, err)

	assert.Equal(t, withoutLines(want), withoutLines(got))
}

func TestExportRoundTripPendingNumerus(t *testing.T) {
	want := &domain.Catalog{Version: "2.1", Language: "en_US", Contexts: []*domain.Context{{
		Name: "ClientWidget",
		Messages: []*domain.Message{
			{Source: "%n client(s)", Numerus: true, Type: domain.TypeUnfinished},
			{Source: "%n facture(s)", Numerus: true, NumerusForms: []string{"%n invoice", "%n invoices"}, Translation: "%n invoice"},
		},
	}}}
	out, err := qtts.New().Export(want)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<translation type=\"unfinished\"></translation>")

	got, err := parser.New().Parse(out)
	require.NoError(t, err)
	assert.Equal(t, want, withoutLines(got))
}

func TestExportLayout(t *testing.T) {
	cat := &domain.Catalog{Language: "en_US", Contexts: []*domain.Context{{
		Name: "EmailDialog",
		Messages: []*domain.Message{
			{Source: "Envoyer", Translation: "Send", Locations: []domain.Location{{Filename: "email.py", Line: 3}}},
			{Source: "Objet : <vide>", Type: domain.TypeUnfinished},
		},
	}}}
	out, err := qtts.New().Export(cat)
	require.NoError(t, err)

	want := `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE TS>
<TS version="2.1" language="en_US">
<context>
    <name>EmailDialog</name>
    <message>
        <location filename="email.py" line="3"/>
        <source>Envoyer</source>
        <translation>Send</translation>
    </message>
    <message>
        <source>Objet : &lt;vide&gt;</source>
        <translation type="unfinished"></translation>
    </message>
</context>
</TS>
`
	assert.Equal(t, want, string(out))
}

func TestExportKeepsNewlines(t *testing.T) {
	cat := &domain.Catalog{Version: "2.1", Contexts: []*domain.Context{{
		Name:     "C",
		Messages: []*domain.Message{{Source: "ligne 1\nligne 2", Translation: "line 1\nline 2"}},
	}}}
	out, err := qtts.New().Export(cat)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(out), "<source>ligne 1\nligne 2</source>"))

	back, err := parser.New().Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "line 1\nline 2", back.Contexts[0].Messages[0].Translation)
}
