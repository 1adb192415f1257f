package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/ledgerdiff"
	"github.com/etnz/ledgerdiff/renderer"
)

// rollupCmd holds the flags for the 'rollup' subcommand.
type rollupCmd struct {
	previous string
	current  string
	by       ledgerdiff.Dimension
	json     bool
}

func (*rollupCmd) Name() string     { return "rollup" }
func (*rollupCmd) Synopsis() string { return "aggregate balances by category or branch" }
func (*rollupCmd) Usage() string {
	return `lds rollup [-by category|branch] [-json] <previous> <current>

  Aggregates the balances of both snapshots by account category or by branch.
  Every pair of sheets is considered, the last pair exposing the required
  columns is reported.
`
}

func (c *rollupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.previous, "prev", "", "Previous snapshot workbook")
	f.StringVar(&c.current, "curr", "", "Current snapshot workbook")
	f.TextVar(&c.by, "by", ledgerdiff.ByAccountType, "Rollup dimension: category or branch")
	f.BoolVar(&c.json, "json", false, "Print the rollup as json")
}

func (c *rollupCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	prev, curr, err := readWorkbooks(previous, current)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading workbooks: %v\n", err)
		return subcommands.ExitFailure
	}

	rollup, ok, skipped := ledgerdiff.RollupPairs(prev, curr, c.by, cfg.Options())
	for _, sk := range skipped {
		log.Warn().Str("workbook", sk.Workbook).Str("table", sk.Table).Err(sk.Err).Msg("table left out of the rollup")
		fmt.Fprintf(os.Stderr, "Skipped %v\n", sk)
	}
	if !ok {
		log.Warn().Stringer("dimension", c.by).Msg("no pair of sheets exposes the rollup columns")
		fmt.Fprintf(os.Stderr, "No rollup by %s: no pair of sheets has the %v columns.\n", c.by, ledgerdiff.RollupColumns)
		return subcommands.ExitSuccess
	}

	if c.json {
		if err := printJSON(rollup, ""); err != nil {
			fmt.Fprintf(os.Stderr, "Error printing rollup: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RollupMarkdown(&rollup))
	return subcommands.ExitSuccess
}
