package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/mharris/quotly/internal/constants"
	"github.com/mharris/quotly/internal/keyring"
	"github.com/mharris/quotly/internal/storage"
)

type InitCmd struct {
	Force bool `help:"Reinitialize even if storage already exists." default:"false"`
}

func (c *InitCmd) Run(ctx *Context) error {
	if _, err := os.Stat(ctx.Store.GetConfigPath()); err == nil && !c.Force {
		fmt.Printf("Storage already initialized at: %s (use --force to re-run setup)\n", ctx.Store.GetConfigPath())
		return nil
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized quotly storage at: %s\n", ctx.Store.GetConfigPath())
	return nil
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *Context) error {
	// Init re-applies pending migrations and is a no-op when up to date.
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	version, err := ctx.Store.SchemaVersion()
	if err != nil {
		return err
	}
	fmt.Printf("Schema is at version %d\n", version)
	return nil
}

type DoctorCmd struct{}

func (c *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false

	if err := ctx.Store.Load(); err != nil {
		fmt.Printf("x database reachable: FAIL\n   %v\n", err)
		hasError = true
	} else {
		fmt.Printf("  database reachable: OK\n")

		version, err := ctx.Store.SchemaVersion()
		if err != nil {
			fmt.Printf("x schema version: FAIL\n   %v\n", err)
			hasError = true
		} else if latest, err := ctx.Store.LatestSchemaVersion(); err == nil && version < latest {
			fmt.Printf("! schema version: %d (%d migration(s) pending, run 'quotly migrate')\n", version, latest-version)
		} else {
			fmt.Printf("  schema version: %d\n", version)
		}

		if _, err := ctx.Store.LoadTemplate(); err != nil {
			fmt.Printf("x template present: FAIL\n   %v\n", err)
			hasError = true
		} else {
			fmt.Printf("  template present: OK\n")
		}
	}

	// A second quotly process sharing the sqlite file risks lock contention;
	// surface it rather than letting a write fail later.
	if others, err := otherInstances(); err == nil {
		if len(others) > 0 {
			fmt.Printf("! concurrent processes: %d other %s process(es) running\n", len(others), constants.AppName)
		} else {
			fmt.Printf("  concurrent processes: none\n")
		}
	}

	fmt.Println()
	if hasError {
		return fmt.Errorf("diagnostics found problems")
	}
	fmt.Println("All checks passed")
	return nil
}

func otherInstances() ([]ps.Process, error) {
	procs, err := ps.Processes()
	if err != nil {
		return nil, err
	}
	self := os.Getpid()
	name := filepath.Base(os.Args[0])

	var others []ps.Process
	for _, p := range procs {
		if p.Pid() != self && strings.EqualFold(p.Executable(), name) {
			others = append(others, p)
		}
	}
	return others, nil
}

type ConfigSetConnectionCmd struct {
	ConnString string `arg:"" help:"PostgreSQL connection string to store in the OS keyring."`
}

type ConfigClearConnectionCmd struct{}

func (c *ConfigSetConnectionCmd) Run(ctx *Context) error {
	if !storage.IsPostgres(c.ConnString) {
		return fmt.Errorf("expected a postgres:// or postgresql:// connection string")
	}
	if err := keyring.SetConnectionString(c.ConnString); err != nil {
		return err
	}
	fmt.Println("Connection string stored in OS keyring")
	return nil
}

func (c *ConfigClearConnectionCmd) Run(ctx *Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		return err
	}
	fmt.Println("Connection string removed from OS keyring")
	return nil
}
