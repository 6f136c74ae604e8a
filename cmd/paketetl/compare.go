package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"paketetl/internal/datasource/file"
	"paketetl/internal/engine"
	jsonparser "paketetl/internal/parser/json"
	"paketetl/pkg/records"
)

func compareCommand() *cli.Command {
	return &cli.Command{
		Name:  "compare",
		Usage: "run every dispatch strategy over one catalog, check they agree and report timings",
		Flags: []cli.Flag{
			moduleFlag(),
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Value: "-", Usage: "catalog JSON file or - for stdin"},
			&cli.StringFlag{Name: "end", Usage: "endpoint file inside a fixture directory"},
			&cli.IntFlag{Name: "runs", Value: 3, Usage: "timed runs per strategy"},
		},
		Action: runCompare,
	}
}

type strategyReport struct {
	strategy engine.Strategy
	best     time.Duration
	total    time.Duration
	stats    engine.Stats
	output   string
}

func runCompare(c *cli.Context) error {
	env, err := loadEnv(c)
	if err != nil {
		return err
	}
	defer env.close()

	runs := c.Int("runs")
	if runs < 1 {
		return fmt.Errorf("--runs must be >= 1, got %d", runs)
	}

	m, err := env.settings.Module(c.String("module"))
	if err != nil {
		return err
	}
	recs, err := file.NewLocal(c.String("input"), jsonparser.Parser{Keys: m.ListKeys}).Fetch(c.Context, c.String("end"), nil)
	if err != nil {
		return err
	}

	reports := make([]strategyReport, 0, len(engine.Strategies()))
	for _, s := range engine.Strategies() {
		eng, _, err := env.engineFor(m.Name, string(s))
		if err != nil {
			return err
		}
		rep, err := timeStrategy(c, eng, recs, runs)
		if err != nil {
			return fmt.Errorf("%s: %w", s, err)
		}
		reports = append(reports, rep)
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "strategy\tbest\tmean\trecords\ttext hits/misses\tbonus hits/misses\n")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d->%d\t%d/%d\t%d/%d\n",
			r.strategy,
			r.best.Round(time.Microsecond),
			(r.total / time.Duration(runs)).Round(time.Microsecond),
			r.stats.In, r.stats.Out,
			r.stats.TextCache.Hits, r.stats.TextCache.Misses,
			r.stats.BonusCache.Hits, r.stats.BonusCache.Misses,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, r := range reports[1:] {
		if r.output != reports[0].output {
			return fmt.Errorf("strategy %s output differs from %s", r.strategy, reports[0].strategy)
		}
	}
	fmt.Fprintln(c.App.Writer, "outputs identical")
	return nil
}

// timeStrategy runs eng runs times. The caches are purged before each run
// so every run starts cold; stats are those of the first run.
func timeStrategy(c *cli.Context, eng *engine.Engine, recs []records.Record, runs int) (strategyReport, error) {
	rep := strategyReport{strategy: eng.Strategy()}
	for i := 0; i < runs; i++ {
		eng.Purge()
		start := time.Now()
		res, err := eng.Run(c.Context, recs)
		d := time.Since(start)
		if err != nil {
			return rep, err
		}
		if i == 0 {
			rep.stats = res.Stats
			rep.output = res.Serialized
			rep.best = d
		}
		if d < rep.best {
			rep.best = d
		}
		rep.total += d
	}
	return rep, nil
}
