package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/mharris/quotly/internal/cli"
	"github.com/mharris/quotly/internal/keyring"
	"github.com/mharris/quotly/internal/logging"
	"github.com/mharris/quotly/internal/quota"
	"github.com/mharris/quotly/internal/storage"
	"github.com/mharris/quotly/internal/storage/postgres"
	"github.com/mharris/quotly/internal/storage/sqlite"
	"github.com/mharris/quotly/internal/template"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"SQLite file path, PostgreSQL connection string, or 'keyring'." type:"string" default:"~/.config/quotly/quotly.db"`
	Debug   bool   `help:"Enable debug logging to stderr."`

	Init    cli.InitCmd    `cmd:"" help:"Initialize quotly storage."`
	Migrate cli.MigrateCmd `cmd:"" help:"Apply pending database migrations."`
	Doctor  cli.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Tui     cli.TuiCmd     `cmd:"" help:"Launch the interactive TUI." default:"1"`

	Day     cli.DayCmd     `cmd:"" help:"Show (and create if needed) a day's quota sheet."`
	Check   cli.CheckCmd   `cmd:"" help:"Complete a quota item with evidence."`
	Uncheck cli.UncheckCmd `cmd:"" help:"Clear a quota item's completion."`
	Close   cli.CloseCmd   `cmd:"" help:"Close a day, making it read-only."`
	Reopen  cli.ReopenCmd  `cmd:"" help:"Reopen a closed day (requires --confirm)."`
	History cli.HistoryCmd `cmd:"" help:"List day summaries for a date range."`

	Template struct {
		List cli.TemplateListCmd   `cmd:"" help:"Show the current template." default:"1"`
		Add  cli.TemplateAddCmd    `cmd:"" help:"Add a template item."`
		Rm   cli.TemplateRemoveCmd `cmd:"" help:"Remove a template item."`
		Edit cli.TemplateEditCmd   `cmd:"" help:"Edit a template item."`
		Move cli.TemplateMoveCmd   `cmd:"" help:"Reorder template items."`
	} `cmd:"" help:"Manage the quota template."`

	Cfg struct {
		SetConnection   cli.ConfigSetConnectionCmd   `cmd:"" name:"set-connection" help:"Store a PostgreSQL connection string in the OS keyring."`
		ClearConnection cli.ConfigClearConnectionCmd `cmd:"" name:"clear-connection" help:"Remove the stored connection string."`
	} `cmd:"" name:"config" help:"Manage configuration secrets."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("quotly"),
		kong.Description("Evidence-first daily quota tracker"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": "v0.3.1"},
	)

	config, err := resolveConfig(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var store storage.Provider
	if storage.IsPostgres(config) {
		if storage.HasEmbeddedCredentials(config) {
			fmt.Fprintln(os.Stderr, "Error: connection strings with embedded credentials are not allowed.")
			fmt.Fprintln(os.Stderr, "Store the connection string with 'quotly config set-connection' or use QUOTLY_DB_CONNECTION.")
			os.Exit(1)
		}
		if err := logging.Setup(logging.Config{Debug: CLI.Debug, ConfigDir: defaultConfigDir()}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		store = postgres.NewStore(config)
	} else {
		if err := logging.Setup(logging.Config{Debug: CLI.Debug, ConfigDir: filepath.Dir(config)}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		store = sqlite.NewStore(config)
	}

	appCtx := &cli.Context{
		Store:     store,
		Service:   quota.New(store),
		Templates: template.New(store),
	}

	// Most commands expect an initialized, migrated store. The exceptions
	// manage their own lifecycle (init, migrate, doctor) or never touch
	// the store (keyring commands).
	selfManaged := map[string]bool{
		"init": true, "migrate": true, "doctor": true,
		"set-connection": true, "clear-connection": true,
	}
	if sel := ctx.Selected(); sel != nil && !selfManaged[sel.Name] {
		if err := store.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolveConfig expands the keyring/env indirections: the literal "keyring"
// reads the stored connection string, and QUOTLY_DB_CONNECTION overrides a
// default config value entirely.
func resolveConfig(config string) (string, error) {
	if env := os.Getenv("QUOTLY_DB_CONNECTION"); env != "" {
		return env, nil
	}
	if config == "keyring" {
		connStr, err := keyring.GetConnectionString()
		if err != nil {
			return "", fmt.Errorf("failed to read connection string from keyring: %w", err)
		}
		return connStr, nil
	}
	return kong.ExpandPath(config), nil
}

func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "quotly")
}
