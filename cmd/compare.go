package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/subcommands"

	"github.com/etnz/ledgerdiff"
	"github.com/etnz/ledgerdiff/logger"
	"github.com/etnz/ledgerdiff/renderer"
	"github.com/etnz/ledgerdiff/xlsx"
)

// compareCmd holds the flags for the 'compare' subcommand.
type compareCmd struct {
	previous string
	current  string
	format   string
	output   string
	query    string
	summary  bool
}

func (*compareCmd) Name() string     { return "compare" }
func (*compareCmd) Synopsis() string { return "reconcile two ledger snapshots" }
func (*compareCmd) Usage() string {
	return `lds compare [-format md|json|html] [-o <report.xlsx>] [-q <jsonpath>] [-s] <previous> <current>
lds compare -prev <previous> -curr <current> ...

  Compares two snapshots of the ledger (xlsx or csv), and prints the
  waterfall, the rollups by category and branch, and the account level
  movements.
`
}

func (c *compareCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.previous, "prev", "", "Previous snapshot workbook")
	f.StringVar(&c.current, "curr", "", "Current snapshot workbook")
	f.StringVar(&c.format, "format", "md", "Output format: md, json or html")
	f.StringVar(&c.output, "o", "", "Also save the report as an xlsx workbook")
	f.StringVar(&c.query, "q", "", "JSONPath query applied to the json report, e.g. '$.diagnostics.discrepancy.amount'")
	f.BoolVar(&c.summary, "s", false, "Summary only, without the account level sections")
}

func (c *compareCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	previous, current, err := workbookArgs(f, c.previous, c.current)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n%s", err, c.Usage())
		return subcommands.ExitUsageError
	}
	if c.query != "" {
		c.format = "json"
	}
	switch c.format {
	case "md", "json", "html":
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", c.format)
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

	if c.output != "" {
		if err := xlsx.SaveReport(c.output, report); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving report: %v\n", err)
			return subcommands.ExitFailure
		}
		log.Info().Str("path", c.output).Msg("report saved")
	}

	switch c.format {
	case "json":
		if err := printJSON(report, c.query); err != nil {
			fmt.Fprintf(os.Stderr, "Error printing report: %v\n", err)
			return subcommands.ExitFailure
		}
	case "html":
		html, err := renderer.HTML(renderer.ReportMarkdown(report, renderer.ReportRenderOptions{SkipAccounts: c.summary}))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprint(stdout, html)
	default:
		printMarkdown(renderer.ReportMarkdown(report, renderer.ReportRenderOptions{SkipAccounts: c.summary}))
	}
	return subcommands.ExitSuccess
}

// printJSON prints v as indented json. When query is not empty only the
// matching part of v is printed.
func printJSON(v any, query string) error {
	if query != "" {
		var err error
		if v, err = queryJSON(v, query); err != nil {
			return err
		}
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// queryJSON evaluates a JSONPath expression on the json form of v.
func queryJSON(v any, path string) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var jobj any
	if err := json.Unmarshal(data, &jobj); err != nil {
		return nil, err
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("evaluating %q: %w", path, err)
	}
	// jsonpath returns a list for filters, even with a single answer.
	if jlist, ok := jval.([]any); ok && len(jlist) == 1 {
		jval = jlist[0]
	}
	return jval, nil
}
