package cmd

import (
	"flag"

	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/etnz/ledgerdiff/docs"
)

// workbooks predicts snapshot files.
var workbooks = predict.Or(predict.Files("*.xlsx"), predict.Files("*.csv"))

// flagPredictors maps flag names to their predictor. Other flags predict anything.
var flagPredictors = map[string]complete.Predictor{
	"prev":      workbooks,
	"curr":      workbooks,
	"o":         predict.Files("*.xlsx"),
	"format":    predict.Set{"md", "json", "html"},
	"by":        predict.Set{"category", "branch"},
	"log-level": predict.Set{"trace", "debug", "info", "warn", "error", "disabled"},
}

// Completion returns the shell completion of lds and its subcommands.
//
// Call Completion().Complete("lds") before parsing the flags: it completes and
// exits when the shell asks for completion, and does nothing otherwise.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flagsOf(flag.CommandLine),
	}
	for _, cmd := range Commands {
		f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
		cmd.SetFlags(f)
		sub := &complete.Command{Flags: flagsOf(f)}
		switch cmd.Name() {
		case "serve":
		case "topic":
			sub.Args = topics{}
		default:
			sub.Args = workbooks
		}
		root.Sub[cmd.Name()] = sub
	}
	return root
}

func flagsOf(f *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	f.VisitAll(func(fl *flag.Flag) {
		p, ok := flagPredictors[fl.Name]
		switch {
		case ok:
		case isBool(fl):
			p = predict.Nothing
		default:
			p = predict.Something
		}
		flags[fl.Name] = p
	})
	return flags
}

func isBool(fl *flag.Flag) bool {
	b, ok := fl.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

// topics predicts the documentation topics.
type topics struct{}

func (topics) Predict(string) []string {
	list, _ := docs.List()
	return list
}
