package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alexanderramin/sqltx/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newQueryCmd(app *App) *cobra.Command {
	var proc string
	var params []string

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run a query and print the result set",
		Args:  cobra.MaximumNArgs(1),
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

			ctx := context.Background()
			if err := conn.Open(ctx); err != nil {
				return err
			}
			defer conn.Close()

			rows, err := conn.Query(ctx, command)
			if err != nil {
				return err
			}
			defer rows.Close()

			headers, err := rows.Columns()
			if err != nil {
				return err
			}

			values := make([]any, len(headers))
			scan := make([]any, len(headers))
			for i := range values {
				scan[i] = &values[i]
			}

			var table [][]string
			for rows.Next() {
				if err := rows.Scan(scan...); err != nil {
					return err
				}
				row := make([]string, len(headers))
				for i, v := range values {
					row[i] = formatter.Value(v)
				}
				table = append(table, row)
			}
			if err := rows.Err(); err != nil {
				return err
			}

			if len(table) == 0 {
				fmt.Println(formatter.Dim("No rows."))
				return nil
			}
			fmt.Printf("%s", formatter.RenderTable(headers, table))
			fmt.Printf("%s\n", formatter.Dim(fmt.Sprintf("%d row(s)", len(table))))
			return nil
		},
	}

	cmd.Flags().StringVar(&proc, "proc", "", "Stored procedure name to call")
	cmd.Flags().StringArrayVar(&params, "param", nil, "Parameter as name=value, bound as text in order")

	return cmd
}
