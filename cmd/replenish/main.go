// replenish analyzes inventory spreadsheets from the command line.
//
// Usage:
//
//	replenish analyze --file stock.xlsx --days 30 --format table
//	replenish fetch --key inventory/stock.xlsx --publish
//	replenish batch --dir ./data/drive --out-dir ./data/reports
//	replenish drive list --folder <id>
//	replenish drive pull --path Compras/Estoque --dir ./data/drive
//	replenish cache clear
//	replenish layout
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	app := &cli.App{
		Name:    "replenish",
		Usage:   "Compute purchase recommendations from inventory spreadsheets",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			analyzeCommand(),
			fetchCommand(),
			batchCommand(),
			objectsCommand(),
			driveCommand(),
			cacheCommand(),
			layoutCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
