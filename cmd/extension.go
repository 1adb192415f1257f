package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/etnz/ledgerdiff/config"
)

// Environment variables passed to extensions. They are the ones config.Load
// reads, so an extension sees the same configuration as lds itself.
const (
	EnvCurrency             = config.Prefix + "_CURRENCY"
	EnvSheet                = config.Prefix + "_SHEET"
	EnvExcludedAccountTypes = config.Prefix + "_EXCLUDED_ACCOUNT_TYPES"
	EnvLogLevel             = config.Prefix + "_LOG_LEVEL"
)

// ExtensionPrefix is the prefix of external subcommand binaries.
const ExtensionPrefix = "lds-"

// RunExtension attempts to find and execute an external lds-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found or executed.
func RunExtension(subcommand string, args []string) (bool, int) {
	externalCmdName := ExtensionPrefix + subcommand

	lp, err := exec.LookPath(externalCmdName)
	if err != nil {
		return false, 0
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return true, 1
	}
	log := newLogger(cfg)
	log.Debug().Str("path", lp).Strs("args", args).Msg("running extension")

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = os.Stderr
	// Pass the effective configuration as environment variables.
	cmd.Env = append(os.Environ(), extensionEnv(cfg)...)

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", externalCmdName, err)
		return true, 1
	}
	return true, 0
}

// extensionEnv returns the configuration as environment variables.
func extensionEnv(cfg *config.Config) []string {
	env := []string{
		EnvCurrency + "=" + cfg.Currency,
		EnvSheet + "=" + cfg.Sheet,
		EnvLogLevel + "=" + cfg.LogLevel,
	}
	// An unset variable keeps the default exclusions, an empty one excludes nothing.
	if cfg.ExcludedAccountTypes != nil {
		env = append(env, EnvExcludedAccountTypes+"="+strings.Join(cfg.ExcludedAccountTypes, ","))
	}
	return env
}
