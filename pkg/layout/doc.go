// Package layout holds the authoritative tile sequence of a dashboard.
//
// A [Store] owns an ordered list of [tile.Tile] values on a bounded
// [grid.Grid]. Every mutation goes through the placement validator, so after
// any call the following hold:
//
//   - no two tiles overlap
//   - every tile lies inside the grid columns with width and height of at least one
//   - tile ids are unique
//
// Mutations never fail loudly. They return a [Result] whose [Status] tells the
// caller whether the change was applied, rejected (with a coded placement
// error), a no-op, or aimed at an unknown tile.
//
// # Copy on write
//
// The tile slice is replaced on every applied mutation; existing slices are
// never modified. A renderer holding the result of [Store.Tiles] therefore
// sees either the complete old sequence or the complete new one.
//
// # Concurrency
//
// A Store is not safe for concurrent mutation. The dashboard funnels all
// events through one goroutine (the terminal UI loop or the HTTP server lock).
package layout
