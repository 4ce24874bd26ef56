package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vitalsgrid/pkg/api"
	"github.com/matzehuels/vitalsgrid/pkg/cache"
	"github.com/matzehuels/vitalsgrid/pkg/dashboard"
)

type serveOpts struct {
	addr    string
	layout  string
	noFeed  bool
	noCache bool
}

// serveCommand serves the board over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP and WebSocket",
		Long: `Serve the dashboard over HTTP and WebSocket.

The board is seeded from --layout or the configured tiles, loaded once from
the data source, and kept current by the real-time feed. Clients edit the
layout through /api and receive feed records on /ws/feed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&opts.layout, "layout", "", "seed layout file")
	cmd.Flags().BoolVar(&opts.noFeed, "no-feed", false, "do not subscribe to the real-time feed")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	addr := opts.addr
	if addr == "" {
		addr = cfg.Server.Addr
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

	dash := dashboard.New(store, c.Logger)
	apiOpts := api.Options{
		Dashboard: dash,
		Fetcher:   src.fetcher,
		Stats:     src.service,
		Cache:     backend,
		Keyer:     cache.NewScopedKeyer(nil, "serve:"+addr+":"),
		Logger:    c.Logger,
	}
	if !opts.noFeed {
		apiOpts.Feed = newFeed(cfg)
	}
	srv := api.New(apiOpts)
	defer srv.Close()

	// Initial load. Failures stay on the dashboard and show up in /api/session.
	tr := cfg.TimeRange()
	prog := newProgress(c.Logger)
	ticket := dash.BeginFetch(tr)
	b, ferr := src.fetcher.Fetch(ctx, tr)
	changed := dash.CompleteFetch(ticket, b, ferr)
	if ferr != nil {
		c.Logger.Warn("initial fetch failed", "error", ferr)
	} else {
		prog.done("Loaded %s from %s, %d tiles updated", tr, b.Source, len(changed))
	}

	if err := srv.Start(ctx); err != nil {
		c.Logger.Warn("feed unavailable", "error", err)
	}

	printSuccess("Serving on %s", StyleLink.Render("http://"+hostPort(addr)))
	printDetail("Tiles     GET  /api/tiles")
	printDetail("Session   GET  /api/session")
	printDetail("Feed      WS   /ws/feed")
	return srv.ListenAndServe(ctx, addr)
}

// hostPort makes ":8080" printable as a URL host.
func hostPort(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
