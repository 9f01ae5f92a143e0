package importer_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tscat/internal/adapters/db/sqlite"
	csvparser "tscat/internal/adapters/parser/csv"
	"tscat/internal/adapters/parser/qtts"
	"tscat/internal/adapters/parser/registry"
	"tscat/internal/domain"
	"tscat/internal/usecase/importer"
)

type env struct {
	svc   *importer.Service
	files *sqlite.FileRepo
	units *sqlite.UnitRepo
	trans *sqlite.TranslationRepo
}

func newEnv(t *testing.T) env {
	t.Helper()
	db, err := sqlite.Init(context.Background(), sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	reg := registry.New()
	reg.Register(qtts.New())
	reg.Register(csvparser.New())
	e := env{files: sqlite.NewFileRepo(db), units: sqlite.NewUnitRepo(db), trans: sqlite.NewTranslationRepo(db)}
	e.svc = importer.New(e.files, e.units, e.trans, sqlite.NewTransactor(db), reg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return e
}

const catalogTS = `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE TS>
<TS version="2.1" language="en_US" sourcelanguage="fr_FR">
<context>
    <name>EmailDialog</name>
    <comment>SMTP settings dialog</comment>
    <message>
        <location filename="../email_dialog.py" line="30"/>
        <source>Envoyer</source>
        <extracomment>send button</extracomment>
        <translation>Send</translation>
    </message>
    <message>
        <source>Ouvrir</source>
        <comment>menu</comment>
        <translation>Open</translation>
    </message>
    <message>
        <source>Ouvrir</source>
        <comment>state</comment>
        <translation type="unfinished"></translation>
    </message>
    <message>
        <source>Envoyer</source>
        <translation>Submit</translation>
    </message>
</context>
</TS>
`

func TestImport(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := e.svc.Import(ctx, importer.ImportArgs{Filename: "email_en.ts", Content: []byte(catalogTS)})
	require.NoError(t, err)
	assert.Equal(t, "en_US", res.Language)
	assert.Equal(t, 3, res.Units)
	assert.Equal(t, 3, res.Translations)

	f, err := e.files.Get(ctx, res.FileID)
	require.NoError(t, err)
	assert.Equal(t, "ts", f.Format)
	assert.Equal(t, "fr_FR", f.SourceLanguage)
	assert.Equal(t, "2.1", f.Version)
	assert.Len(t, f.Hash, 64)

	units, err := e.units.ListByFile(ctx, res.FileID)
	require.NoError(t, err)
	require.Len(t, units, 3)
	assert.Equal(t, "Envoyer", units[0].Key)
	assert.Equal(t, "menu", units[1].Comment)
	assert.Equal(t, "state", units[2].Comment)

	var meta domain.UnitMetadata
	require.NoError(t, json.Unmarshal([]byte(units[0].MetadataRaw), &meta))
	assert.Equal(t, "send button", meta.ExtraComment)
	assert.Equal(t, "SMTP settings dialog", meta.ContextComment)
	assert.Equal(t, []domain.Location{{Filename: "../email_dialog.py", Line: 30}}, meta.Locations)

	first, err := e.trans.Get(ctx, units[0].ID, "en_US")
	require.NoError(t, err)
	assert.Equal(t, "Send", first.Text, "first duplicate wins")

	pending, err := e.trans.Get(ctx, units[2].ID, "en_US")
	require.NoError(t, err)
	assert.Equal(t, domain.TypeUnfinished, pending.Status)
}

func TestImportLocaleOverride(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	res, err := e.svc.Import(ctx, importer.ImportArgs{Filename: "email.ts", Locale: "en_GB", Content: []byte(catalogTS)})
	require.NoError(t, err)
	assert.Equal(t, "en_GB", res.Language)

	list, err := e.trans.ListByFileLocale(ctx, res.FileID, "en_GB")
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestImportWithoutLanguageStoresNoTranslations(t *testing.T) {
	e := newEnv(t)
	res, err := e.svc.Import(context.Background(), importer.ImportArgs{
		Filename: "keys.csv",
		Content:  []byte("key,source\nsave,Enregistrer\ncancel,Annuler\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Units)
	assert.Zero(t, res.Translations)
	assert.Empty(t, res.Language)
}

func TestImportErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Import(ctx, importer.ImportArgs{Filename: "notes.txt", Content: []byte("x")})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	_, err = e.svc.Import(ctx, importer.ImportArgs{Filename: "broken.ts", Content: []byte("<TS><context>")})
	assert.ErrorContains(t, err, "parse broken.ts")

	bad := `<TS version="2.1" language="en_US"><context><name>C</name>` +
		`<message><source>a</source><translation>b</translation></message>` +
		`<message><source>c</source><translation type="draft">d</translation></message></context></TS>`
	_, err = e.svc.Import(ctx, importer.ImportArgs{Filename: "bad.ts", Content: []byte(bad)})
	assert.ErrorContains(t, err, `unknown translation type "draft"`)

	files, err := e.files.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, files, "failed imports leave nothing behind")
}
