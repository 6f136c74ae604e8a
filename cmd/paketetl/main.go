// paketetl cleans and serializes telecom paket catalogs.
//
// Usage:
//
//	paketetl --config configs/paketetl.yaml format --module xl --input catalog.json
//	paketetl fetch --module xl --end api/list --trxid TRX1 --to 0812
//	paketetl compare --module xl --input catalog.json --runs 5
//	paketetl validate
//	paketetl serve --addr :8080
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "paketetl",
		Usage:   "clean, simplify and serialize paket catalogs",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "configs/paketetl.yaml",
				Usage:   "settings file (YAML, or JSON by .json extension)",
				EnvVars: []string{"PAKET_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "override log.level (trace, debug, info, warn, error)",
				EnvVars: []string{"PAKET_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "override log.format (json, console)",
			},
		},
		Commands: []*cli.Command{
			formatCommand(),
			fetchCommand(),
			compareCommand(),
			validateCommand(),
			serveCommand(),
		},
	}
}
