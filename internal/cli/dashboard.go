package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vitalsgrid/pkg/dashboard"
	"github.com/matzehuels/vitalsgrid/pkg/vitals"
)

type dashboardOpts struct {
	layout    string
	timeRange string
	noFeed    bool
	noCache   bool
}

// dashboardCommand runs the interactive terminal board.
func (c *CLI) dashboardCommand() *cobra.Command {
	var opts dashboardOpts
	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dash"},
		Short:   "Open the interactive terminal dashboard",
		Long: `Open the interactive terminal dashboard.

Press e to enter edit mode. In edit mode move the cursor onto a chart and
press space to pick it up, move to the target cell and press space again to
drop it. Drops onto occupied or out-of-grid cells are refused. Press r to
edit a chart's size, then w/h to choose the field, +/- or a digit to change
it and enter to save.

Outside edit mode, t cycles the time range and f toggles real-time updates.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDashboard(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.layout, "layout", "", "seed layout file")
	cmd.Flags().StringVarP(&opts.timeRange, "range", "r", "", "initial time range (default from config)")
	cmd.Flags().BoolVar(&opts.noFeed, "no-feed", false, "start with real-time updates off")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	return cmd
}

func (c *CLI) runDashboard(ctx context.Context, opts dashboardOpts) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	tr := cfg.TimeRange()
	if opts.timeRange != "" {
		if tr, err = vitals.ParseTimeRange(opts.timeRange); err != nil {
			return err
		}
	}

	store, err := c.loadLayout(opts.layout)
	if err != nil {
		return err
	}
	backend := c.openCache(ctx, cfg, opts.noCache)
	defer backend.Close()

	src, err := c.newSource(ctx, cfg, backend)
	if err != nil {
		return err
	}
	defer src.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The alternate screen owns the terminal; only errors reach stderr.
	logger := c.Logger.WithPrefix("dashboard")
	if logger.GetLevel() < log.ErrorLevel {
		logger.SetLevel(log.ErrorLevel)
	}
	dash := dashboard.New(store, logger)
	dash.TimeRange = tr

	m := newDashboardModel(ctx, dash, src.fetcher, newFeed(cfg), logger)
	m.feedOnStart = !opts.noFeed

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	m.stopFeed()
	return err
}
