package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/ledgerdiff"
	"github.com/etnz/ledgerdiff/logger"
	"github.com/etnz/ledgerdiff/renderer"
)

// diffCmd holds the flags for the 'diff' subcommand.
type diffCmd struct {
	previous string
	current  string
	json     bool
}

func (*diffCmd) Name() string     { return "diff" }
func (*diffCmd) Synopsis() string { return "list settled, new and continuing accounts" }
func (*diffCmd) Usage() string {
	return `lds diff [-json] <previous> <current>
lds diff -prev <previous> -curr <current> [-json]

  Lists the accounts settled since the previous snapshot, the new accounts,
  and the balance movement of every continuing account.
`
}

func (c *diffCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.previous, "prev", "", "Previous snapshot workbook")
	f.StringVar(&c.current, "curr", "", "Current snapshot workbook")
	f.BoolVar(&c.json, "json", false, "Print the accounts as json")
}

func (c *diffCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	previous, current, err := workbookArgs(f, c.previous, c.current)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n%s", err, c.Usage())
		return subcommands.ExitUsageError
	}

	cfg, log, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error %v\n", err)
		return subcommands.ExitFailure
	}
	ctx = logger.WithContext(ctx, log)

	prev, curr, err := readWorkbooks(previous, current)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading workbooks: %v\n", err)
		return subcommands.ExitFailure
	}

	report, err := ledgerdiff.Compare(ctx, prev, curr, cfg.Options())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error comparing workbooks: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.json {
		accounts := struct {
			Settled   []ledgerdiff.AccountRecord `json:"settled"`
			New       []ledgerdiff.AccountRecord `json:"new"`
			Movements []ledgerdiff.Movement      `json:"movements"`
		}{report.Settled, report.New, report.Movements}
		if err := printJSON(accounts, ""); err != nil {
			fmt.Fprintf(os.Stderr, "Error printing accounts: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.AccountsMarkdown(report))
	return subcommands.ExitSuccess
}
