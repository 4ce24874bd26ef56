package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vitalsgrid/pkg/errors"
	"github.com/matzehuels/vitalsgrid/pkg/vitals"
)

// vitalsCommand groups the data commands.
func (c *CLI) vitalsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vitals",
		Short: "Fetch, summarize and generate Web Vitals data",
	}
	cmd.AddCommand(c.vitalsFetchCommand())
	cmd.AddCommand(c.vitalsStatsCommand())
	cmd.AddCommand(c.vitalsSeriesCommand())
	cmd.AddCommand(c.vitalsGenerateCommand())
	return cmd
}

// dataFlags are shared by commands that read from the configured source.
type dataFlags struct {
	timeRange string
	noCache   bool
	asJSON    bool
}

func (f *dataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.timeRange, "range", "r", "", "time range: 1D, 1W, 1M, 3M, 6M, 1Y, ALL (default from config)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "bypass the cache")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print JSON instead of a table")
	_ = cmd.RegisterFlagCompletionFunc("range", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, len(vitals.TimeRanges))
		for i, tr := range vitals.TimeRanges {
			names[i] = string(tr)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
}

// openSource loads config and opens the data source the flags ask for.
func (c *CLI) openSource(ctx context.Context, f dataFlags) (*source, vitals.TimeRange, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, "", err
	}
	tr := cfg.TimeRange()
	if f.timeRange != "" {
		if tr, err = vitals.ParseTimeRange(f.timeRange); err != nil {
			return nil, "", err
		}
	}
	src, err := c.newSource(ctx, cfg, c.openCache(ctx, cfg, f.noCache))
	if err != nil {
		return nil, "", err
	}
	return src, tr, nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// =============================================================================
// fetch
// =============================================================================

func (c *CLI) vitalsFetchCommand() *cobra.Command {
	var flags dataFlags
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch one data bundle from the configured source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd.Context(), flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) runFetch(ctx context.Context, flags dataFlags) error {
	src, tr, err := c.openSource(ctx, flags)
	if err != nil {
		return err
	}
	defer src.close()

	ctx, cancel := context.WithTimeout(ctx, defaultFetchTimeout)
	defer cancel()

	prog := newProgress(loggerFromContext(ctx))
	sp := newSpinner(ctx, os.Stderr, fmt.Sprintf("Fetching %s...", tr))
	sp.Start()
	b, err := src.fetcher.Fetch(ctx, tr)
	if err != nil {
		sp.StopWithError("%s", errors.UserMessage(err))
		return err
	}
	sp.Stop()
	prog.done("Fetched %s bundle", tr)

	if flags.asJSON {
		return writeJSON(b)
	}
	printSuccess("Fetched %s", StyleHighlight.Render(string(tr)))
	printFetchSummary(b)
	printNewline()

	rows := make([][]string, 0, len(b.Bar))
	for _, r := range b.Bar {
		rows = append(rows, []string{fmt.Sprint(r["name"]), fmt.Sprint(r["value"])})
	}
	printTable([]string{"Series", "Value"}, rows, nil)
	return nil
}

// =============================================================================
// stats
// =============================================================================

func (c *CLI) vitalsStatsCommand() *cobra.Command {
	var (
		flags  dataFlags
		filter vitals.Filter
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize metrics over a time range",
		Long: `Summarize every metric over a time range.

Percentiles take the value at floor(n*p) of the sorted sample. The rating
column rates the 75th percentile against the Core Web Vitals thresholds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStats(cmd.Context(), flags, filter)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&filter.Browser, "browser", "", "only records from this browser")
	cmd.Flags().StringVar(&filter.DeviceType, "device", "", "only records from this device type")
	cmd.Flags().StringVar(&filter.Country, "country", "", "only records from this country")
	return cmd
}

func (c *CLI) runStats(ctx context.Context, flags dataFlags, filter vitals.Filter) error {
	src, tr, err := c.openSource(ctx, flags)
	if err != nil {
		return err
	}
	defer src.close()
	if src.service == nil {
		return errors.New(errors.ErrCodeUnsupported, "statistics need a record source (memory or mongo)")
	}

	stats, err := src.service.Stats(ctx, tr, filter)
	if err != nil {
		return err
	}
	if flags.asJSON {
		return writeJSON(stats)
	}
	printStats(tr, stats)
	return nil
}

// printStats renders one row per metric.
func printStats(tr vitals.TimeRange, s vitals.Stats) {
	printInfo("%s records over %s", StyleHighlight.Render(strconv.Itoa(s.TotalRecords)), tr)
	if s.TotalRecords == 0 {
		return
	}

	rows := make([][]string, 0, len(vitals.MetricNames))
	ratings := make([]vitals.Rating, 0, len(vitals.MetricNames))
	for _, name := range vitals.MetricNames {
		m := s.Metrics[name]
		rating := vitals.Rate(name, m.P75)
		ratings = append(ratings, rating)
		rows = append(rows, []string{
			name,
			formatMetric(name, m.Avg),
			formatMetric(name, m.Median),
			formatMetric(name, m.P75),
			formatMetric(name, m.P90),
			formatMetric(name, m.P95),
			string(rating),
		})
	}
	printTable([]string{"Metric", "Avg", "Median", "P75", "P90", "P95", "Rating"}, rows,
		func(row, col int) lipgloss.Style {
			if col == 6 && row < len(ratings) {
				return ratingStyle(ratings[row])
			}
			return lipgloss.NewStyle()
		})
}

// formatMetric prints CLS unitless and timings in milliseconds.
func formatMetric(name string, v float64) string {
	if name == "CLS" {
		return strconv.FormatFloat(v, 'f', 3, 64)
	}
	return strconv.FormatFloat(v, 'f', 0, 64) + "ms"
}

// =============================================================================
// series
// =============================================================================

func (c *CLI) vitalsSeriesCommand() *cobra.Command {
	var (
		flags  dataFlags
		filter vitals.Filter
	)
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Print hourly metric averages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, tr, err := c.openSource(ctx, flags)
			if err != nil {
				return err
			}
			defer src.close()
			if src.service == nil {
				return errors.New(errors.ErrCodeUnsupported, "series need a record source (memory or mongo)")
			}
			points, err := src.service.Series(ctx, tr, filter)
			if err != nil {
				return err
			}
			if flags.asJSON {
				return writeJSON(points)
			}
			printSeries(points)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&filter.Browser, "browser", "", "only records from this browser")
	cmd.Flags().StringVar(&filter.DeviceType, "device", "", "only records from this device type")
	return cmd
}

func printSeries(points []vitals.SeriesPoint) {
	if len(points) == 0 {
		printInfo("No records in range")
		return
	}
	rows := make([][]string, len(points))
	for i, p := range points {
		rows[i] = []string{
			p.Timestamp.Format("Jan 2 15:04"),
			strconv.Itoa(p.Count),
			formatMetric("LCP", p.Metrics.LCP),
			formatMetric("FID", p.Metrics.FID),
			formatMetric("CLS", p.Metrics.CLS),
			formatMetric("INP", p.Metrics.INP),
		}
	}
	printTable([]string{"Hour", "Records", "LCP", "FID", "CLS", "INP"}, rows, nil)
}

// =============================================================================
// generate
// =============================================================================

type generateOpts struct {
	records int
	days    int
	seed    uint64
	app     string
	output  string
	mongo   bool
}

func (c *CLI) vitalsGenerateCommand() *cobra.Command {
	var opts generateOpts
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic dataset",
		Long: `Generate synthetic Web Vitals records spread evenly over the last N days.

The dataset is written as JSON to --output (or stdout). With --mongo the
records are inserted into the configured MongoDB collection instead, which
then serves as the data source when data.source = "mongo".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), opts)
		},
	}
	cmd.Flags().IntVarP(&opts.records, "records", "n", vitals.DefaultRecords, "number of records")
	cmd.Flags().IntVar(&opts.days, "days", vitals.DefaultDays, "days covered, ending now")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed (0 uses the clock)")
	cmd.Flags().StringVar(&opts.app, "app", vitals.DefaultAppName, "application name on every record")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.mongo, "mongo", false, "insert into MongoDB instead of writing JSON")
	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, opts generateOpts) error {
	if opts.records < 1 || opts.days < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "--records and --days must be positive")
	}
	seed := opts.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -opts.days)
	ds := vitals.NewGenerator(seed).Dataset(opts.app, start, end, opts.records)

	logger := loggerFromContext(ctx)
	logger.Debug("generated dataset", "records", ds.TotalRecords, "days", ds.DateRange.DaysSpan, "seed", seed)

	if opts.mongo {
		return c.insertMongo(ctx, ds)
	}
	if opts.output == "" {
		return writeJSON(ds)
	}
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Generated %d records", ds.TotalRecords)
	printFile(opts.output)
	return nil
}

func (c *CLI) insertMongo(ctx context.Context, ds vitals.Dataset) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	prog := newProgress(loggerFromContext(ctx))
	src, err := vitals.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = src.Close(closeCtx)
	}()

	if err := src.EnsureIndexes(ctx); err != nil {
		return err
	}
	n, err := src.Insert(ctx, ds.Records)
	if err != nil {
		return err
	}
	prog.done("Inserted %d records", n)
	printSuccess("Inserted %d records into %s", n, StyleHighlight.Render(cfg.Mongo.Database))
	printNextStep("Use them", `set data.source = "mongo" and run `+appName+" dashboard")
	return nil
}
