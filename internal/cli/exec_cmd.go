package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alexanderramin/sqltx/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newExecCmd(app *App) *cobra.Command {
	var proc string
	var params []string
	var useTx, rollback, yes bool

	cmd := &cobra.Command{
		Use:   "exec [SQL]",
		Short: "Execute a statement or stored procedure",
		Long: `Execute a statement or stored procedure and print the affected row count.

The statement comes from the argument, from --proc, or from stdin when
piped. With --tx the statement runs inside a transaction that commits on
success; --rollback discards it instead, which is useful for dry runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var stmt string
			if len(args) == 1 {
				stmt = args[0]
			}
			if stmt == "" && proc == "" && !app.IsInteractive() {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				stmt = strings.TrimSpace(string(data))
			}

			conn, err := app.connect()
			if err != nil {
				return err
			}
			command, err := buildCommand(conn, proc, stmt, params)
			if err != nil {
				return err
			}

			if app.IsInteractive() && !yes {
				target := conn.Target()
				var proceed bool
				form := huh.NewForm(huh.NewGroup(
					huh.NewConfirm().
						Title(fmt.Sprintf("Execute against %s (%s)?", target.Driver, target.DSN)).
						Affirmative("Execute").
						Negative("Cancel").
						Value(&proceed),
				))
				if err := form.Run(); err != nil {
					return err
				}
				if !proceed {
					fmt.Println("Canceled.")
					return nil
				}
			}

			ctx := context.Background()
			if useTx {
				err = conn.Begin(ctx)
			} else {
				err = conn.Open(ctx)
			}
			if err != nil {
				return err
			}
			defer conn.Close()

			n, err := conn.Exec(ctx, command)
			if err != nil {
				return err
			}

			if useTx {
				if rollback {
					// The deferred Close rolls the transaction back.
					fmt.Printf("%s\n", formatter.Dim(fmt.Sprintf("%d row(s) affected, rolled back", n)))
					return nil
				}
				if err := conn.Commit(); err != nil {
					return err
				}
			}

			fmt.Printf("%s\n", formatter.RowCount(n))
			return nil
		},
	}

	cmd.Flags().StringVar(&proc, "proc", "", "Stored procedure name to call")
	cmd.Flags().StringArrayVar(&params, "param", nil, "Parameter as name=value, bound as text in order")
	cmd.Flags().BoolVar(&useTx, "tx", false, "Run inside a transaction and commit on success")
	cmd.Flags().BoolVar(&rollback, "rollback", false, "With --tx: execute, then roll back instead of committing")
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")

	return cmd
}
