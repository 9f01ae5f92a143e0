package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	apiapp "tscat/internal/api/app"
	"tscat/internal/domain"
)

// errInvalidCatalog is returned by validate after the issues were printed.
var errInvalidCatalog = errors.New("catalog has errors")

var errOverwrite = errors.New("output would overwrite the input, pass --out or --stdout")

var stdout io.Writer = os.Stdout

func (c *cli) dispatch(ctx context.Context, app *App, cmd string) error {
	switch cmd {
	case c.validate.FullCommand():
		return c.runValidate(app)
	case c.stats.FullCommand():
		return c.runStats(app)
	case c.lookup.FullCommand():
		return c.runLookup(app)
	case c.convert.FullCommand():
		return c.runConvert(app)
	}

	if err := app.Open(ctx); err != nil {
		return err
	}
	switch cmd {
	case c.importCmd.FullCommand():
		return c.runImport(ctx, app)
	case c.files.FullCommand():
		return c.runFiles(ctx, app)
	case c.show.FullCommand():
		return c.runShow(ctx, app)
	case c.set.FullCommand():
		return app.Translations.Upsert(ctx, apiapp.UpsertTranslationRequest{
			UnitID: *c.setUnit, Locale: *c.setLocale, Text: *c.setText, Status: *c.setStatus,
		})
	case c.export.FullCommand():
		return c.runExport(ctx, app)
	case c.fill.FullCommand():
		return c.runFill(ctx, app)
	case c.jobs.FullCommand():
		return c.runJobs(ctx, app)
	case c.jobLogs.FullCommand():
		return c.runJobLogs(ctx, app)
	case c.providerTest.FullCommand():
		if err := app.Provider.Test(ctx); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "ok")
		return nil
	case c.providerModels.FullCommand():
		return c.runModels(ctx, app)
	case c.templateSet.FullCommand():
		return app.Provider.SetTemplate(ctx, apiapp.SetTemplateRequest{
			FileID: *c.templateFile, Type: *c.templateType, Role: *c.templateRole, Body: *c.templateBody,
		})
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func (c *cli) load(app *App, path, format string) (*domain.Catalog, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return app.Catalog.Load(path, format, content)
}

func (c *cli) runValidate(app *App) error {
	failed := false
	var all []map[string]any
	for _, path := range *c.validateFiles {
		cat, err := c.load(app, path, *c.validateFormat)
		if err != nil {
			failed = true
			if *c.jsonOut {
				all = append(all, map[string]any{"file": path, "ok": false, "error": err.Error()})
				continue
			}
			fmt.Fprintf(stdout, "%s: %v\n", path, err)
			continue
		}
		report := app.Catalog.Validate(cat)
		if !report.OK() {
			failed = true
		}
		if *c.jsonOut {
			all = append(all, map[string]any{"file": path, "ok": report.OK(), "issues": report.Issues})
			continue
		}
		for _, is := range report.Issues {
			fmt.Fprintf(stdout, "%s: %s\n", path, is)
		}
		fmt.Fprintf(stdout, "%s: %d errors, %d warnings\n", path, report.Errors(), report.Warnings())
	}
	if *c.jsonOut {
		if err := writeJSON(all); err != nil {
			return err
		}
	}
	if failed {
		return errInvalidCatalog
	}
	return nil
}

func (c *cli) runStats(app *App) error {
	cat, err := c.load(app, *c.statsFile, "")
	if err != nil {
		return err
	}
	sum := app.Catalog.Stats(cat)
	if *c.jsonOut {
		return writeJSON(sum)
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CONTEXT\tMESSAGES\tFINISHED\tUNFINISHED\tOBSOLETE\tVANISHED\tDONE")
	for _, cs := range sum.Contexts {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%.1f%%\n", cs.Name, cs.Messages, cs.Finished, cs.Unfinished, cs.Obsolete, cs.Vanished, cs.Completion())
	}
	t := sum.Total
	fmt.Fprintf(tw, "TOTAL\t%d\t%d\t%d\t%d\t%d\t%.1f%%\n", t.Messages, t.Finished, t.Unfinished, t.Obsolete, t.Vanished, t.Completion())
	return tw.Flush()
}

func (c *cli) runLookup(app *App) error {
	cat, err := c.load(app, *c.lookupFile, "")
	if err != nil {
		return err
	}
	req := apiapp.LookupRequest{Context: *c.lookupContext, Source: *c.lookupSource, Args: *c.lookupArgs}
	if *c.lookupCount >= 0 {
		n := *c.lookupCount
		req.Count = &n
	}
	res := app.Catalog.Lookup(cat, req)
	if *c.jsonOut {
		return writeJSON(res)
	}
	fmt.Fprintln(stdout, res.Text)
	return nil
}

func (c *cli) runConvert(app *App) error {
	cat, err := c.load(app, *c.convertFile, "")
	if err != nil {
		return err
	}
	out, derived, err := app.Catalog.Convert(cat, *c.convertFile, *c.convertTo)
	if err != nil {
		return err
	}
	name, err := target(derived, *c.convertFile, *c.convertOut, *c.convertStdout)
	if err != nil {
		return err
	}
	return writeOutput(name, out)
}

func (c *cli) runImport(ctx context.Context, app *App) error {
	content, err := os.ReadFile(*c.importFile)
	if err != nil {
		return err
	}
	res, err := app.Import.Import(ctx, apiapp.ImportRequest{
		Filename: *c.importFile, Format: *c.importFormat, Locale: *c.importLocale, Content: content,
	})
	if err != nil {
		return err
	}
	if *c.jsonOut {
		return writeJSON(res)
	}
	fmt.Fprintf(stdout, "imported file %d: %d units, %d %s translations\n", res.FileID, res.Units, res.Translations, res.Language)
	return nil
}

func (c *cli) runFiles(ctx context.Context, app *App) error {
	files, err := app.Files.List(ctx)
	if err != nil {
		return err
	}
	if *c.jsonOut {
		return writeJSON(files)
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFORMAT\tLANGUAGE\tSOURCE\tPATH")
	for _, f := range files {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", f.ID, f.Format, f.Language, f.SourceLanguage, f.Path)
	}
	return tw.Flush()
}

func (c *cli) fileLocale(ctx context.Context, app *App, id int64, locale string) (string, error) {
	if locale != "" {
		return locale, nil
	}
	f, err := app.Files.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if f.Language == "" {
		return "", fmt.Errorf("file %d declares no language, pass --locale", id)
	}
	return f.Language, nil
}

func (c *cli) runShow(ctx context.Context, app *App) error {
	locale, err := c.fileLocale(ctx, app, *c.showID, *c.showLocale)
	if err != nil {
		return err
	}
	texts, err := app.Translations.ListUnitTexts(ctx, *c.showID, locale)
	if err != nil {
		return err
	}
	if *c.jsonOut {
		return writeJSON(texts)
	}
	for _, t := range texts {
		fmt.Fprintln(stdout, t)
	}
	return nil
}

func (c *cli) runExport(ctx context.Context, app *App) error {
	res, err := app.Export.ExportFile(ctx, apiapp.ExportFileRequest{FileID: *c.exportID, Locale: *c.exportLocale, Format: *c.exportTo})
	if err != nil {
		return err
	}
	name, err := target(res.Filename, res.Source, *c.exportOut, *c.exportStdout)
	if err != nil {
		return err
	}
	return writeOutput(name, res.Content)
}

func (c *cli) runFill(ctx context.Context, app *App) error {
	job, err := app.Jobs.Fill(ctx, apiapp.FillRequest{
		FileID:      *c.fillID,
		Locale:      *c.fillLocale,
		Model:       app.cfg.Provider.Model,
		Workers:     app.cfg.Workers,
		ItemTimeout: app.cfg.ItemTimeout,
	})
	if err != nil {
		return err
	}
	if *c.jsonOut {
		return writeJSON(job)
	}
	fmt.Fprintf(stdout, "job %d %s: %d/%d translated, %d failed\n", job.ID, job.Status, job.Progress-job.Failed, job.Total, job.Failed)
	if job.Status == domain.JobFailed {
		return fmt.Errorf("job %d failed, see tscat job-logs %d", job.ID, job.ID)
	}
	return nil
}

func (c *cli) runJobs(ctx context.Context, app *App) error {
	js, err := app.Jobs.List(ctx, *c.jobsLimit)
	if err != nil {
		return err
	}
	if *c.jsonOut {
		return writeJSON(js)
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tSTATUS\tFILE\tPROGRESS\tFAILED\tUPDATED")
	for _, j := range js {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d/%d\t%d\t%s\n", j.ID, j.Type, j.Status, j.FileID, j.Progress, j.Total, j.Failed, j.Updated.Local().Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func (c *cli) runJobLogs(ctx context.Context, app *App) error {
	logs, err := app.Jobs.Logs(ctx, *c.jobLogsID, *c.jobLogsLimit)
	if err != nil {
		return err
	}
	if *c.jsonOut {
		return writeJSON(logs)
	}
	for _, l := range logs {
		fmt.Fprintf(stdout, "%s %-5s %s\n", l.Time.Local().Format("15:04:05"), l.Level, l.Message)
	}
	return nil
}

func (c *cli) runModels(ctx context.Context, app *App) error {
	models, err := app.Provider.Models(ctx)
	if err != nil {
		return err
	}
	if *c.jsonOut {
		return writeJSON(models)
	}
	for _, m := range models {
		fmt.Fprintln(stdout, m.Name)
	}
	return nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// target picks where rendered content goes: stdout, the explicit path, or
// the derived one unless it is the input file itself.
func target(derived, input, out string, toStdout bool) (string, error) {
	switch {
	case toStdout || out == "-":
		return "-", nil
	case out != "":
		return out, nil
	case filepath.Clean(derived) == filepath.Clean(input):
		return "", fmt.Errorf("%s: %w", input, errOverwrite)
	}
	return derived, nil
}

func writeOutput(path string, content []byte) error {
	if path == "-" {
		_, err := stdout.Write(content)
		return err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", path)
	return nil
}
