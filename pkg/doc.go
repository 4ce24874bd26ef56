// Package pkg holds the vitalsgrid libraries.
//
// # Overview
//
// vitalsgrid keeps a set of chart tiles on a fixed-column grid. Tiles never
// overlap and never leave the grid; every move or resize is validated and
// either applied whole or rejected with a coded error. The tiles' rows are
// refreshed from a data source and from a real-time feed.
//
//  1. [grid], [tile], [layout] - geometry, placement rules and the tile store
//  2. [session] - edit mode, drag and drop, and resize drafts
//  3. [vitals], [reconcile] - records, aggregation and row replacement
//  4. [feed] - simulated and WebSocket real-time records
//  5. [dashboard] - one board's state, tying the above together
//  6. [render], [io] - terminal, SVG and PNG output; JSON layout files
//  7. [api] - HTTP and WebSocket server
//  8. [cache], [config], [integrations], [observability] - infrastructure
//
// # Data flow
//
//	record source / CoinGecko ──Fetch──▶ Bundle ──reconcile──▶ layout.Store
//	feed ──Record──▶ dashboard ──ApplyRecord──▶ layout.Store
//	session.Controller ──Move/Resize──▶ layout.Store ──▶ render / api
//
// # Quick Start
//
//	store, _ := layout.Default(grid.DefaultColumns)
//	dash := dashboard.New(store, nil)
//
//	svc := vitals.NewService(vitals.NewMemorySource(vitals.MemoryOptions{}))
//	t := dash.BeginFetch(vitals.Range1W)
//	b, err := svc.Fetch(ctx, vitals.Range1W)
//	dash.CompleteFetch(t, b, err)
//
//	dash.Controller.ToggleEdit()
//	_ = dash.Controller.BeginDrag("chart-1")
//	res := dash.Controller.Drop(grid.Cell{Col: 0, Row: 4})
package pkg
