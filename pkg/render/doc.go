// Package render draws dashboard tiles and whole boards.
//
// # Overview
//
// Three outputs share the same layout geometry:
//
//   - [Terminal] renders a single tile's chart as text for the TUI, and
//     [Board] composes every tile of a layout into a grid of boxes
//   - [SVG] lays the board out with Graphviz (neato with pinned positions)
//   - [PNG] rasterizes the board with gg
//
// # Charts
//
// All four chart kinds read their fields from the tile's config:
//
//	bar      one horizontal bar per row, scaled to the largest value
//	line     one marker per series and column
//	area     the same plot filled down to the baseline
//	scatter  x against y, z raises the marker weight
//
// Rows are maps, so values are converted leniently: any Go number type or
// numeric string counts, anything else is skipped.
//
// # Snapshots
//
// SVG and PNG snapshots show only the layout: one box per tile with its
// title, kind and size, filled with the tile's color. They are meant for
// sharing a board arrangement, not its data.
package render
