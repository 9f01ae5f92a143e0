package qtts_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tscat/internal/adapters/parser/qtts"
	"tscat/internal/domain"
)

func loadFixture(t *testing.T) *domain.Catalog {
	t.Helper()
	data, err := os.ReadFile("testdata/clients_en.ts")
	require.NoError(t, err)
	cat, err := qtts.New().Parse(data)
	require.NoError(t, err)
	return cat
}

func TestParseHeader(t *testing.T) {
	cat := loadFixture(t)
	assert.Equal(t, "2.1", cat.Version)
	assert.Equal(t, "en_US", cat.Language)
	assert.Equal(t, "fr_FR", cat.SourceLanguage)
	require.Len(t, cat.Contexts, 2)
	assert.Equal(t, "ClientWidget", cat.Contexts[0].Name)
	assert.Equal(t, "CompanyManagement", cat.Contexts[1].Name)
	assert.Equal(t, 7, cat.Len())
}

func TestParseMessages(t *testing.T) {
	cat := loadFixture(t)
	client := cat.Contexts[0].Messages
	require.Len(t, client, 4)

	assert.Equal(t, "Ajouter un client", client[0].Source)
	assert.Equal(t, "Add a client", client[0].Translation)
	assert.Equal(t, domain.TypeFinished, client[0].Type)
	assert.Equal(t, 6, client[0].Line)

	assert.Equal(t, "Rechercher", client[2].Source)
	assert.Equal(t, "search field placeholder", client[2].Comment)
	assert.Equal(t, domain.TypeUnfinished, client[2].Type)
	assert.Empty(t, client[2].Translation)
	assert.Equal(t, 16, client[2].Line)

	numerus := client[3]
	assert.True(t, numerus.Numerus)
	assert.Equal(t, []string{"%n document generated", "%n documents generated"}, numerus.NumerusForms)
	assert.Equal(t, "%n document generated", numerus.Translation)

	company := cat.Contexts[1].Messages
	require.Len(t, company, 3)
	assert.Equal(t, "company.save", company[0].ID)
	assert.Equal(t, "company.save", company[0].Key())
	assert.Equal(t, "Enregistrer & fermer", company[0].Source)
	assert.Equal(t, "Save & close", company[0].Translation)
	assert.Equal(t, "Button in the company dialog", company[0].ExtraComment)
	assert.Equal(t, "keep it short", company[0].TranslatorComment)
	assert.Equal(t, 34, company[0].Line)
	assert.Equal(t, domain.TypeObsolete, company[1].Type)
	assert.Equal(t, domain.TypeVanished, company[2].Type)
	assert.Empty(t, company[1].Locations)
}

func TestParseRelativeLocations(t *testing.T) {
	cat := loadFixture(t)
	client := cat.Contexts[0].Messages
	assert.Equal(t, []domain.Location{{Filename: "../client_widget.py", Line: 42}}, client[0].Locations)
	assert.Equal(t, []domain.Location{{Filename: "../client_widget.py", Line: 54}}, client[1].Locations)
	assert.Equal(t, []domain.Location{
		{Filename: "../client_widget.py", Line: 80},
		{Filename: "../main_window.py", Line: 17},
	}, client[2].Locations)
}

func TestParseMissingTranslationIsUnfinished(t *testing.T) {
	src := `<TS version="2.1" language="de_DE"><context><name>C</name>` +
		`<message><source>Bonjour</source></message></context></TS>`
	cat, err := qtts.New().Parse([]byte(src))
	require.NoError(t, err)
	m := cat.Contexts[0].Messages[0]
	assert.Equal(t, domain.TypeUnfinished, m.Type)
	assert.Equal(t, "Bonjour", m.Source)
}

func TestParseKeepsUnknownType(t *testing.T) {
	src := `<TS version="2.1"><context><name>C</name>` +
		`<message><source>a</source><translation type="draft">b</translation></message></context></TS>`
	cat, err := qtts.New().Parse([]byte(src))
	require.NoError(t, err)
	m := cat.Contexts[0].Messages[0]
	assert.Equal(t, domain.TranslationType("draft"), m.Type)
	assert.False(t, m.Type.Valid())
}

func TestParseBOMAndLatin1(t *testing.T) {
	bom := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`<?xml version="1.0" encoding="utf-8"?><TS version="2.1"></TS>`)...)
	cat, err := qtts.New().Parse(bom)
	require.NoError(t, err)
	assert.Equal(t, "2.1", cat.Version)

	latin1 := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><TS version=\"2.1\"><context><name>C</name>" +
		"<message><source>Cr\xe9er</source><translation>Create</translation></message></context></TS>")
	cat, err = qtts.New().Parse(latin1)
	require.NoError(t, err)
	assert.Equal(t, "Créer", cat.Contexts[0].Messages[0].Source)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "malformed", in: "<TS version=\"2.1\">\n<context>\n<name>C</name>\n</TS>", want: "ts: line 4"},
		{name: "no root", in: `<?xml version="1.0"?><other/>`, want: "missing <TS> root element"},
		{name: "empty", in: "", want: "missing <TS> root element"},
		{name: "message outside context", in: `<TS><message><source>a</source></message></TS>`, want: "<message> outside <context>"},
		{name: "unknown charset", in: `<?xml version="1.0" encoding="x-nope"?><TS/>`, want: "unsupported encoding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := qtts.New().Parse([]byte(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
