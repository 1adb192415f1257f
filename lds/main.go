// Command lds reconciles two snapshots of a ledger.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/etnz/ledgerdiff/cmd"
)

func main() {
	// Completes and exits when invoked by the shell completion.
	cmd.Completion().Complete("lds")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()

	// Unknown subcommands are looked up as lds-<name> extensions.
	if name := flag.Arg(0); name != "" && !cmd.Known(name) && !builtin(name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

func builtin(name string) bool {
	switch name {
	case "help", "flags", "commands":
		return true
	}
	return false
}
