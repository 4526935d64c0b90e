package cli

import (
	"fmt"
	"sort"

	"github.com/alexanderramin/sqltx"
	"github.com/alexanderramin/sqltx/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newTargetsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List configured connection targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config
			if len(cfg.Targets) == 0 && cfg.DSN == "" {
				fmt.Println("No targets configured.")
				return nil
			}

			rows := make([][]string, 0, len(cfg.Targets)+1)
			if cfg.DSN != "" {
				driver := cfg.Driver
				if driver == "" {
					driver = sqltx.DefaultDriver
				}
				mark := ""
				if cfg.DefaultTarget == "" {
					mark = formatter.Bold("default")
				}
				rows = append(rows, []string{"-", driver, cfg.DSN, mark})
			}

			names := make([]string, 0, len(cfg.Targets))
			for name := range cfg.Targets {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				t := cfg.Targets[name]
				mark := ""
				if name == cfg.DefaultTarget {
					mark = formatter.Bold("default")
				}
				rows = append(rows, []string{name, t.Driver, t.DSN, mark})
			}

			fmt.Printf("%s", formatter.RenderTable([]string{"NAME", "DRIVER", "DSN", ""}, rows))
			return nil
		},
	}
}
