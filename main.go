package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/alecthomas/kingpin.v2"

	"tscat/internal/config"
	"tscat/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cli := newCLI()
	cmd, err := cli.app.Parse(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cli.override(&cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	log, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApp(cfg, log)
	defer func() {
		if err := app.Close(); err != nil {
			log.Error("close database", "err", err)
		}
	}()

	if err := cli.dispatch(ctx, app, cmd); err != nil {
		if errors.Is(err, errInvalidCatalog) {
			return 1
		}
		log.Error(cmd+" failed", "err", err)
		return 1
	}
	return 0
}

type cli struct {
	app *kingpin.Application

	dbPath   *string
	logLevel *string
	jsonOut  *bool

	validate       *kingpin.CmdClause
	validateFiles  *[]string
	validateFormat *string

	stats     *kingpin.CmdClause
	statsFile *string

	lookup        *kingpin.CmdClause
	lookupFile    *string
	lookupSource  *string
	lookupContext *string
	lookupArgs    *[]string
	lookupCount   *int

	convert       *kingpin.CmdClause
	convertFile   *string
	convertTo     *string
	convertOut    *string
	convertStdout *bool

	importCmd    *kingpin.CmdClause
	importFile   *string
	importFormat *string
	importLocale *string

	files *kingpin.CmdClause

	show       *kingpin.CmdClause
	showID     *int64
	showLocale *string

	set       *kingpin.CmdClause
	setUnit   *int64
	setText   *string
	setLocale *string
	setStatus *string

	export       *kingpin.CmdClause
	exportID     *int64
	exportTo     *string
	exportLocale *string
	exportOut    *string
	exportStdout *bool

	fill        *kingpin.CmdClause
	fillID      *int64
	fillLocale  *string
	fillModel   *string
	fillWorkers *int

	jobs      *kingpin.CmdClause
	jobsLimit *int

	jobLogs      *kingpin.CmdClause
	jobLogsID    *int64
	jobLogsLimit *int

	providerTest   *kingpin.CmdClause
	providerModels *kingpin.CmdClause

	templateSet  *kingpin.CmdClause
	templateType *string
	templateRole *string
	templateBody *string
	templateFile *int64
}

func newCLI() *cli {
	c := &cli{app: kingpin.New("tscat", "Qt Linguist translation catalog toolkit.")}
	c.app.HelpFlag.Short('h')

	c.dbPath = c.app.Flag("db", "SQLite database path (overrides TSCAT_DB_PATH).").String()
	c.logLevel = c.app.Flag("log-level", "Log level (overrides TSCAT_LOG_LEVEL).").String()
	c.jsonOut = c.app.Flag("json", "Print results as JSON.").Bool()

	c.validate = c.app.Command("validate", "Check catalogs for structural problems.")
	c.validateFiles = c.validate.Arg("file", "Catalog files.").Required().ExistingFiles()
	c.validateFormat = c.validate.Flag("format", "Input format, detected from the extension by default.").String()

	c.stats = c.app.Command("stats", "Print translation progress per context.")
	c.statsFile = c.stats.Arg("file", "Catalog file.").Required().ExistingFile()

	c.lookup = c.app.Command("lookup", "Resolve a source string like the application does at runtime.")
	c.lookupFile = c.lookup.Arg("file", "Catalog file.").Required().ExistingFile()
	c.lookupSource = c.lookup.Arg("source", "Source text.").Required().String()
	c.lookupContext = c.lookup.Flag("context", "Context name; any context when empty.").Short('c').String()
	c.lookupArgs = c.lookup.Flag("arg", "Positional placeholder value, repeatable.").Short('a').Strings()
	c.lookupCount = c.lookup.Flag("count", "Plural count for numerus messages.").Default("-1").Int()

	c.convert = c.app.Command("convert", "Convert a catalog to another format.")
	c.convertFile = c.convert.Arg("file", "Catalog file.").Required().ExistingFile()
	c.convertTo = c.convert.Flag("to", "Output format.").Required().String()
	c.convertOut = c.convert.Flag("out", "Output path; --out=- prints to stdout.").Short('o').String()
	c.convertStdout = c.convert.Flag("stdout", "Print to stdout instead of writing a file.").Bool()

	c.importCmd = c.app.Command("import", "Store a catalog in the database.")
	c.importFile = c.importCmd.Arg("file", "Catalog file.").Required().ExistingFile()
	c.importFormat = c.importCmd.Flag("format", "Input format, detected from the extension by default.").String()
	c.importLocale = c.importCmd.Flag("locale", "Translation locale when the file does not declare one.").String()

	c.files = c.app.Command("files", "List imported files.")

	c.show = c.app.Command("show", "List the units of a file with their translations.")
	c.showID = c.show.Arg("id", "File id.").Required().Int64()
	c.showLocale = c.show.Flag("locale", "Translation locale, the file language by default.").String()

	c.set = c.app.Command("set", "Store a reviewed translation for a unit.")
	c.setUnit = c.set.Arg("unit", "Unit id.").Required().Int64()
	c.setText = c.set.Arg("text", "Translation text.").Required().String()
	c.setLocale = c.set.Flag("locale", "Translation locale.").Required().String()
	c.setStatus = c.set.Flag("status", "finished, unfinished, obsolete or vanished.").Default("finished").String()

	c.export = c.app.Command("export", "Render an imported file.")
	c.exportID = c.export.Arg("id", "File id.").Required().Int64()
	c.exportTo = c.export.Flag("to", "Output format, the file format by default.").String()
	c.exportLocale = c.export.Flag("locale", "Translation locale, the file language by default.").String()
	c.exportOut = c.export.Flag("out", "Output path; --out=- prints to stdout.").Short('o').String()
	c.exportStdout = c.export.Flag("stdout", "Print to stdout instead of writing a file.").Bool()

	c.fill = c.app.Command("fill", "Machine-translate units that have no translation yet.")
	c.fillID = c.fill.Arg("id", "File id.").Required().Int64()
	c.fillLocale = c.fill.Flag("locale", "Target locale.").Required().String()
	c.fillModel = c.fill.Flag("model", "Model, TSCAT_PROVIDER_MODEL by default.").String()
	c.fillWorkers = c.fill.Flag("workers", "Concurrent requests (overrides TSCAT_WORKERS).").Int()

	c.jobs = c.app.Command("jobs", "List recent jobs.")
	c.jobsLimit = c.jobs.Flag("limit", "Maximum number of jobs.").Default("20").Int()

	c.jobLogs = c.app.Command("job-logs", "Print the log of a job.")
	c.jobLogsID = c.jobLogs.Arg("id", "Job id.").Required().Int64()
	c.jobLogsLimit = c.jobLogs.Flag("limit", "Maximum number of entries.").Default("200").Int()

	provider := c.app.Command("provider", "Inspect the configured LLM provider.")
	c.providerTest = provider.Command("test", "Check that the provider is reachable.")
	c.providerModels = provider.Command("models", "List available models.")

	template := c.app.Command("template", "Manage prompt templates.")
	c.templateSet = template.Command("set", "Override a prompt template.")
	c.templateType = c.templateSet.Arg("type", "Template type, e.g. translate.").Required().String()
	c.templateRole = c.templateSet.Arg("role", "system or user.").Required().Enum("system", "user")
	c.templateBody = c.templateSet.Arg("body", "text/template body.").Required().String()
	c.templateFile = c.templateSet.Flag("file", "Limit the override to one file id.").Int64()
	return c
}

// override applies command line flags on top of the environment.
func (c *cli) override(cfg *config.Config) {
	if *c.dbPath != "" {
		cfg.DBPath = *c.dbPath
	}
	if *c.logLevel != "" {
		cfg.LogLevel = *c.logLevel
	}
	if *c.fillWorkers > 0 {
		cfg.Workers = *c.fillWorkers
	}
	if *c.fillModel != "" {
		cfg.Provider.Model = *c.fillModel
	}
}
