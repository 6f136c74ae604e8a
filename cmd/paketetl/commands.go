package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/urfave/cli/v2"

	"paketetl/internal/config"
	"paketetl/internal/datasource"
	"paketetl/internal/datasource/file"
	"paketetl/internal/datasource/httpds"
	"paketetl/internal/engine"
	"paketetl/internal/format"
	jsonparser "paketetl/internal/parser/json"
)

func moduleFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "module",
		Aliases:  []string{"m"},
		Usage:    "module name from the settings file",
		Required: true,
	}
}

func envelopeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "trxid", Usage: "wrap the output in a response envelope with this transaction id"},
		&cli.StringFlag{Name: "to", Usage: "destination number for the envelope"},
		&cli.StringFlag{Name: "category", Value: format.DefaultCategory, Usage: "envelope category"},
	}
}

// -----------------------------------------------------------------------------
// format
// -----------------------------------------------------------------------------

func formatCommand() *cli.Command {
	return &cli.Command{
		Name:  "format",
		Usage: "run a module pipeline over a local catalog file",
		Flags: append([]cli.Flag{
			moduleFlag(),
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Value:   "-",
				Usage:   "catalog JSON file, fixture directory, or - for stdin",
			},
			&cli.StringFlag{Name: "end", Usage: "endpoint file inside a fixture directory"},
			&cli.StringFlag{Name: "strategy", Usage: "override runtime.strategy"},
			&cli.BoolFlag{Name: "records", Usage: "print cleaned records as JSON instead of the catalog line"},
		}, envelopeFlags()...),
		Action: runFormat,
	}
}

func runFormat(c *cli.Context) error {
	env, err := loadEnv(c)
	if err != nil {
		return err
	}
	defer env.close()

	eng, m, err := env.engineFor(c.String("module"), c.String("strategy"))
	if err != nil {
		return err
	}
	src := file.NewLocal(c.String("input"), jsonparser.Parser{Keys: m.ListKeys})
	return runPipeline(c, eng, src, c.String("end"), nil)
}

// -----------------------------------------------------------------------------
// fetch
// -----------------------------------------------------------------------------

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "fetch a catalog from the module's provider and run its pipeline",
		Flags: append([]cli.Flag{
			moduleFlag(),
			&cli.StringFlag{Name: "end", Usage: "provider endpoint path", Required: true},
			&cli.StringSliceFlag{Name: "param", Aliases: []string{"p"}, Usage: "extra query parameter key=value (repeatable)"},
			&cli.BoolFlag{Name: "records", Usage: "print cleaned records as JSON instead of the catalog line"},
		}, envelopeFlags()...),
		Action: runFetch,
	}
}

func runFetch(c *cli.Context) error {
	env, err := loadEnv(c)
	if err != nil {
		return err
	}
	defer env.close()
	_, flush := setupMetrics(env.settings.Metrics, env.log)
	defer flush()

	eng, m, err := env.engineFor(c.String("module"), "")
	if err != nil {
		return err
	}
	q, err := queryFromParams(c.StringSlice("param"))
	if err != nil {
		return err
	}
	for _, k := range []string{"trxid", "to", "category"} {
		if v := c.String(k); v != "" && c.IsSet(k) {
			q.Set(k, v)
		}
	}
	return runPipeline(c, eng, httpds.CatalogFromModule(m, env.settings.Response), c.String("end"), q)
}

func queryFromParams(params []string) (url.Values, error) {
	q := url.Values{}
	for _, p := range params {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("param %q: want key=value", p)
		}
		q.Add(strings.TrimSpace(k), v)
	}
	return q, nil
}

// runPipeline fetches from src, runs eng and prints the result.
func runPipeline(c *cli.Context, eng *engine.Engine, src datasource.Source, endpoint string, q url.Values) error {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	recs, err := src.Fetch(ctx, endpoint, q)
	if err != nil {
		return err
	}
	res, err := eng.Run(ctx, recs)
	if err != nil {
		return err
	}

	w := c.App.Writer
	if c.Bool("records") {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Records)
	}
	out := res.Serialized
	if trx := c.String("trxid"); trx != "" {
		out = format.Envelope{TrxID: trx, To: c.String("to"), Category: c.String("category")}.Success(out)
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// -----------------------------------------------------------------------------
// validate
// -----------------------------------------------------------------------------

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "lint the settings file and exit",
		Action: func(c *cli.Context) error {
			path := c.String("config")
			s, err := config.Load(path)
			if err != nil {
				return err
			}
			s.ApplyEnv()
			issues := config.ValidateSettings(s)
			for _, iss := range issues {
				fmt.Fprintf(c.App.ErrWriter, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
			}
			if config.HasErrors(issues) {
				return fmt.Errorf("settings are invalid: %s", path)
			}
			fmt.Fprintf(c.App.Writer, "settings are valid: %s (%d modules)\n", path, len(s.Modules))
			return nil
		},
	}
}
