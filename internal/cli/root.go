package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alexanderramin/sqltx"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// App carries the resolved configuration and environment hooks shared
// by all CLI commands.
type App struct {
	Config sqltx.Config
	Target string

	// IsInteractive reports whether stdin is attached to a terminal.
	// Confirmation prompts are skipped when it returns false.
	IsInteractive func() bool
}

type rootFlags struct {
	configPath string
	target     string
	driver     string
	dsn        string
	timeoutSec int
	verbose    bool
}

func (f *rootFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "Config file (YAML); defaults to $SQLTX_CONFIG")
	fs.StringVar(&f.target, "target", "", "Named target from the config, or a raw DSN")
	fs.StringVar(&f.driver, "driver", "", "Database driver name")
	fs.StringVar(&f.dsn, "dsn", "", "Data source name")
	fs.IntVar(&f.timeoutSec, "timeout", 0, "Command timeout in seconds")
	fs.BoolVar(&f.verbose, "verbose", false, "Log connection lifecycle events to stderr")
}

// NewRootCmd creates the top-level "sqltx" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "sqltx",
		Short:         "Run SQL statements and stored procedures over managed connections",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.configure(flags)
		},
	}
	flags.register(root.PersistentFlags())

	root.AddCommand(
		newExecCmd(app),
		newQueryCmd(app),
		newTargetsCmd(app),
	)

	return root
}

// configure resolves the effective configuration: flags win over the
// config file, the file wins over environment defaults.
func (a *App) configure(flags *rootFlags) error {
	path := flags.configPath
	if path == "" {
		path = os.Getenv("SQLTX_CONFIG")
	}

	cfg := sqltx.LoadConfig()
	if path != "" {
		fileCfg, err := sqltx.LoadConfigFile(path)
		if err != nil {
			return err
		}
		cfg = fileCfg
	}

	if flags.driver != "" {
		cfg.Driver = flags.driver
	}
	if flags.dsn != "" {
		cfg.DSN = flags.dsn
	}
	if flags.timeoutSec > 0 {
		cfg.CommandTimeout = time.Duration(flags.timeoutSec) * time.Second
	}
	if flags.verbose {
		cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	a.Config = cfg
	a.Target = flags.target
	if a.Target == "" {
		a.Target = os.Getenv("SQLTX_TARGET")
	}
	return nil
}

// connect builds an unopened connection for the selected target.
func (a *App) connect() (*sqltx.Conn, error) {
	var opts []sqltx.Option
	if a.Target != "" {
		opts = append(opts, sqltx.WithTarget(a.Target))
	}
	return sqltx.New(a.Config, opts...)
}

// buildCommand assembles a Command from either a stored procedure name
// or statement text, with --param values bound as text in order.
func buildCommand(conn *sqltx.Conn, proc, stmt string, params []string) (*sqltx.Command, error) {
	var cmd *sqltx.Command
	switch {
	case proc != "" && stmt != "":
		return nil, fmt.Errorf("pass either a statement or --proc, not both")
	case proc != "":
		cmd = conn.StoredProc(proc)
	case stmt != "":
		cmd = conn.SQL(stmt)
	default:
		return nil, fmt.Errorf("nothing to run: pass a statement, --proc, or pipe SQL on stdin")
	}

	for _, p := range params {
		name, value, err := splitParam(p)
		if err != nil {
			return nil, err
		}
		cmd.In(name, value)
	}
	return cmd, nil
}

func splitParam(p string) (string, string, error) {
	for i := 0; i < len(p); i++ {
		if p[i] == '=' {
			if i == 0 {
				break
			}
			return p[:i], p[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("invalid --param format %q, expected name=value", p)
}
