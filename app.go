package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	exreg "tscat/internal/adapters/exporter/registry"
	dbsqlite "tscat/internal/adapters/db/sqlite"
	llmfactory "tscat/internal/adapters/llm/factory"
	promptRenderer "tscat/internal/adapters/prompt"
	parreg "tscat/internal/adapters/parser/registry"
	apiapp "tscat/internal/api/app"
	"tscat/internal/config"
	"tscat/internal/ports"
	"tscat/internal/usecase/exporter"
	"tscat/internal/usecase/importer"
	jobsusecase "tscat/internal/usecase/jobs"
	translatorusecase "tscat/internal/usecase/translator"

	"golang.org/x/time/rate"
)

// App wires the services behind the CLI. File-only commands use Catalog;
// everything touching the database goes through Open first.
type App struct {
	cfg       config.Config
	log       *slog.Logger
	parsers   *parreg.Registry
	exporters *exreg.Registry

	Catalog *apiapp.CatalogAPI

	db           *sql.DB
	Import       *apiapp.ImportAPI
	Export       *apiapp.ExportAPI
	Files        *apiapp.FileAPI
	Translations *apiapp.TranslationsAPI
	Jobs         *apiapp.JobsAPI
	Provider     *apiapp.ProviderAPI
}

// NewApp creates an instance of the app structure
func NewApp(cfg config.Config, log *slog.Logger) *App {
	parsers := apiapp.NewDefaultParserRegistry()
	exporters := apiapp.NewDefaultExporterRegistry(cfg.CSVSeparator)
	return &App{
		cfg:       cfg,
		log:       log,
		parsers:   parsers,
		exporters: exporters,
		Catalog:   apiapp.NewCatalogAPI(parsers, exporters),
	}
}

// Open initializes the database and the services that depend on it.
func (a *App) Open(ctx context.Context) error {
	if a.db != nil {
		return nil
	}
	db, err := dbsqlite.Init(ctx, a.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database %s: %w", a.cfg.DBPath, err)
	}
	a.db = db
	fileRepo := dbsqlite.NewFileRepo(db)
	unitRepo := dbsqlite.NewUnitRepo(db)
	translationRepo := dbsqlite.NewTranslationRepo(db)
	templatesRepo := dbsqlite.NewTemplateRepo(db)
	cacheRepo := dbsqlite.NewCacheRepo(db)
	jobRepo := dbsqlite.NewJobRepo(db)

	importSvc := importer.New(fileRepo, unitRepo, translationRepo, dbsqlite.NewTransactor(db), a.parsers, a.log)
	expSvc := exporter.New(fileRepo, unitRepo, translationRepo, a.exporters)

	var provider ports.Provider
	if a.cfg.Provider.Type != "" {
		provider, err = llmfactory.FromProvider(a.cfg.Provider.Domain())
		if err != nil {
			return err
		}
	}
	limit := rate.Inf
	if a.cfg.RatePerSecond > 0 {
		limit = rate.Limit(a.cfg.RatePerSecond)
	}
	transSvc := translatorusecase.New(translatorusecase.Deps{
		Provider: provider,
		Info:     a.cfg.Provider.Domain(),
		Cache:    cacheRepo,
		Prompt:   promptRenderer.New(templatesRepo),
		Limiter:  rate.NewLimiter(limit, 1),
		Log:      a.log,
	})
	runner := jobsusecase.NewRunner(jobsusecase.Deps{Jobs: jobRepo, Files: fileRepo, Units: unitRepo, Translations: translationRepo, Log: a.log}, transSvc)
	runner.SetEmitter(logEmitter{log: a.log})

	a.Import = apiapp.NewImportAPI(importSvc)
	a.Export = apiapp.NewExportAPI(expSvc)
	a.Files = apiapp.NewFileAPI(fileRepo)
	a.Translations = apiapp.NewTranslationsAPI(translationRepo, unitRepo)
	a.Jobs = apiapp.NewJobsAPI(runner, jobRepo)
	a.Provider = apiapp.NewProviderAPI(provider, templatesRepo)
	return nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

type logEmitter struct{ log *slog.Logger }

func (e logEmitter) Emit(name string, payload any) {
	e.log.Debug(name, "payload", payload)
}
