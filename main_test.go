package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = "internal/adapters/parser/qtts/testdata/clients_en.ts"

func runCapture(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	code := run(args)
	return code, buf.String()
}

func setupEnv(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "tscat.db")
	t.Setenv("TSCAT_DB_PATH", dbPath)
	t.Setenv("TSCAT_LOG_LEVEL", "error")
	return dbPath
}

func TestRunLookup(t *testing.T) {
	setupEnv(t)
	code, out := runCapture(t, "lookup", fixture, "Client {0} supprimé", "-c", "ClientWidget", "-a", "Dupont")
	assert.Equal(t, 0, code)
	assert.Equal(t, "Client Dupont deleted\n", out)

	code, out = runCapture(t, "lookup", fixture, "Rechercher", "-c", "ClientWidget")
	assert.Equal(t, 0, code)
	assert.Equal(t, "Rechercher\n", out)
}

func TestRunConvertToStdout(t *testing.T) {
	setupEnv(t)
	for _, flags := range [][]string{{"--stdout"}, {"--out=-"}} {
		code, out := runCapture(t, append([]string{"convert", fixture, "--to", "csv"}, flags...)...)
		assert.Equal(t, 0, code, flags)
		assert.Contains(t, out, "context,key,source,translation,status\n")
		assert.Contains(t, out, "ClientWidget,Rechercher,Rechercher,,unfinished\n")
	}
}

func TestRunConvertWritesDerivedPath(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "clients_en.ts")
	data, err := os.ReadFile(fixture)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(src, data, 0o644))

	code, _ := runCapture(t, "convert", src, "--to", "goi18n")
	require.Equal(t, 0, code)
	assert.FileExists(t, filepath.Join(dir, "clients_en.toml"))

	// same format without --out would replace the input
	code, _ = runCapture(t, "convert", src, "--to", "ts")
	assert.Equal(t, 1, code)
	after, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, data, after)

	code, _ = runCapture(t, "convert", src, "--to", "ts", "-o", filepath.Join(dir, "copy.ts"))
	assert.Equal(t, 0, code)
	assert.FileExists(t, filepath.Join(dir, "copy.ts"))
}

func TestRunValidateBrokenFile(t *testing.T) {
	setupEnv(t)
	path := filepath.Join(t.TempDir(), "broken.ts")
	require.NoError(t, os.WriteFile(path, []byte(`<TS version="2.1"><context><message><source></source></message></context></TS>`), 0o644))

	code, out := runCapture(t, "validate", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "[empty-source]")
	assert.Contains(t, out, "1 errors")
}

func TestRunImportAndList(t *testing.T) {
	dbPath := setupEnv(t)
	code, out := runCapture(t, "import", fixture)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "imported file 1:")
	assert.FileExists(t, dbPath)

	code, out = runCapture(t, "files")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "clients_en.ts")

	code, _ = runCapture(t, "show", "99")
	assert.Equal(t, 1, code)

	code, _ = runCapture(t, "export", "1")
	assert.Equal(t, 1, code)
	code, out = runCapture(t, "export", "1", "--stdout")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "<TS version=\"2.1\" language=\"en_US\"")
}

func TestRunUsageError(t *testing.T) {
	setupEnv(t)
	code, _ := runCapture(t, "convert", fixture)
	assert.Equal(t, 2, code)
}
