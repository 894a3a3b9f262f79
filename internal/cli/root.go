package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"smarthr/internal/app/server"
	"smarthr/internal/app/session"
	"smarthr/internal/domain/auth"
	"smarthr/internal/domain/core"
	"smarthr/internal/domain/leave"
	"smarthr/internal/domain/payroll"
	"smarthr/internal/platform/config"
	"smarthr/internal/platform/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DataDir string
	Format  string
	Verbose bool

	// Config is loaded from the environment when nil.
	Config *config.Config
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "smarthr",
		Short:         "SmartHR payroll record keeper",
		Long:          "Manage employees, leave and monthly payroll stored as flat files in a data directory.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data directory (default $SMARTHR_DATA_DIR)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newPayrollCommand(opts))
	cmd.AddCommand(newEmployeeCommand(opts))
	cmd.AddCommand(newLeaveCommand(opts))
	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (o *RootOptions) config() config.Config {
	var cfg config.Config
	if o.Config != nil {
		cfg = *o.Config
	} else {
		cfg = config.Load()
	}
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	return cfg
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// open loads the data directory. The returned func releases the archive
// connection, if any.
func (o *RootOptions) open(cmd *cobra.Command) (*session.Session, func(), error) {
	cfg := o.config()
	if o.Verbose {
		logger.InitWriter(cfg.Environment, cmd.ErrOrStderr())
	} else {
		logger.InitWriter("production", io.Discard)
	}
	sess, pool, err := server.Open(cmd.Context(), cfg, nil)
	if err != nil {
		return nil, func() {}, WrapExitError(ExitFailure, "open data directory", err)
	}
	if loadErr := sess.LoadError(); loadErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", strings.ReplaceAll(loadErr.Error(), "\n", "\nWarning: "))
	}
	o.formatter(cmd).VerboseLog("Loaded data directory %s", cfg.DataDir)
	return sess, func() {
		if pool != nil {
			pool.Close()
		}
	}, nil
}

var usageErrors = []error{
	payroll.ErrInvalidMonth,
	payroll.ErrNegativeDays,
	payroll.ErrNegativeBonus,
	core.ErrInvalidEmployee,
	auth.ErrInvalidRole,
	leave.ErrInvalidDays,
	leave.ErrReasonRequired,
}

// failed wraps a domain error with the exit code it deserves.
func failed(action string, err error) error {
	for _, target := range usageErrors {
		if errors.Is(err, target) {
			return WrapExitError(ExitCommandError, action, err)
		}
	}
	return WrapExitError(ExitFailure, action, err)
}

// prompt writes question and reads one trimmed line of input.
func prompt(cmd *cobra.Command, in *bufio.Reader, question string) string {
	fmt.Fprint(cmd.ErrOrStderr(), question)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func confirmPrompt(cmd *cobra.Command, in *bufio.Reader, question string) bool {
	switch strings.ToLower(prompt(cmd, in, question+" [y/N] ")) {
	case "y", "yes":
		return true
	}
	return false
}
