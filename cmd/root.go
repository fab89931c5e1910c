package cmd

import (
	"errors"
	"fmt"
	"os"

	"netbox-reconciler/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailed  = 1
	ExitCommand = 2
)

// ExitError carries the process exit code of a command.
// A nil Err means the command already reported the problem on stdout.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

var (
	configFile string
	logLevel   string
	logFormat  string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "netbox-reconciler",
	Short: "Declarative NetBox object reconciler",
	Long: `netbox-reconciler drives NetBox objects (platforms, manufacturers, sites, ...)
towards a declared desired state: it creates, updates or deletes only what differs
and reports what changed. Runs from the command line or as an HTTP service.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the command's exit code.
func Execute() {
	err := RootCmd.Execute()
	if err == nil {
		return
	}

	code := ExitCommand
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.Code
		if exitErr.Err == nil {
			os.Exit(code)
		}
	}

	// Console format with debug level gives ISO8601 timestamps for CLI errors.
	l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
	if logErr == nil {
		l.Error("command failed", zap.Error(err))
		_ = l.Sync()
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(code)
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (YAML or JSON); environment variables and .env still apply")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the log level (debug, info, warn, error)")
	RootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Override the log format (json, console)")
}
