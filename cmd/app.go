// Package cmd implements the lds command line tool.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/etnz/ledgerdiff"
	"github.com/etnz/ledgerdiff/config"
	"github.com/etnz/ledgerdiff/logger"
	"github.com/etnz/ledgerdiff/xlsx"
)

// Commands lists the subcommands, in the order they are registered.
var Commands = []subcommands.Command{
	&compareCmd{},
	&diffCmd{},
	&rollupCmd{},
	&serveCmd{},
	&topicCmd{},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		group := "reconciliation"
		switch cmd.Name() {
		case "serve":
			group = "server"
		case "topic":
			group = "help"
		}
		c.Register(cmd, group)
	}
}

// Known returns true if name is a registered subcommand.
func Known(name string) bool {
	for _, cmd := range Commands {
		if cmd.Name() == name {
			return true
		}
	}
	return false
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	currency = flag.String("currency", "", "Currency of the balances, for display. Overrides "+config.Prefix+"_CURRENCY.")
	sheet    = flag.String("sheet", "", "Sheet compared account by account. Defaults to the first sheet of each workbook.")
	exclude  = flag.String("exclude", "", "Comma separated account types to exclude, replacing the staff loan defaults. Use \"-\" to exclude nothing.")
	logLevel = flag.String("log-level", "", "Log level: trace, debug, info, warn, error or disabled.")
	Verbose  = flag.Bool("v", false, "Verbose output, same as -log-level debug.")
)

// stdout is where commands print their result.
var stdout io.Writer = os.Stdout

// loadConfig loads the configuration and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if *currency != "" {
		cfg.Currency = *currency
	}
	if *sheet != "" {
		cfg.Sheet = *sheet
	}
	switch *exclude {
	case "":
	case "-":
		cfg.ExcludedAccountTypes = []string{}
	default:
		cfg.ExcludedAccountTypes = strings.Split(*exclude, ",")
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *Verbose {
		cfg.LogLevel = zerolog.DebugLevel.String()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger returns the console logger for cfg.
func newLogger(cfg *config.Config) zerolog.Logger {
	log, err := logger.NewWithLevel(os.Stderr, cfg.LogLevel)
	if err != nil {
		// the level has been validated already.
		return logger.New()
	}
	return log
}

// setup loads the configuration and the logger of a command.
func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, newLogger(cfg), nil
}

// readWorkbooks reads both workbooks concurrently.
func readWorkbooks(previous, current string) (prev, curr *ledgerdiff.Workbook, err error) {
	var g errgroup.Group
	g.Go(func() (err error) {
		prev, err = xlsx.ReadWorkbook(previous)
		return err
	})
	g.Go(func() (err error) {
		curr, err = xlsx.ReadWorkbook(current)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return prev, curr, nil
}

// workbookArgs returns the previous and current paths from the flags or
// from the two positional arguments.
func workbookArgs(f *flag.FlagSet, previous, current string) (string, string, error) {
	if f.NArg() == 2 && previous == "" && current == "" {
		return f.Arg(0), f.Arg(1), nil
	}
	if f.NArg() != 0 || previous == "" || current == "" {
		return "", "", fmt.Errorf("want a previous and a current workbook")
	}
	return previous, current, nil
}
