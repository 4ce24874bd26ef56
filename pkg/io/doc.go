// Package io provides JSON import and export for dashboard layouts.
//
// # JSON Format
//
// A layout file records the grid width and the ordered tile sequence:
//
//	{
//	  "columns": 6,
//	  "tiles": [
//	    {
//	      "id": "chart-1",
//	      "kind": "bar",
//	      "title": "Core Web Vitals",
//	      "position": {"col": 0, "row": 0},
//	      "size": {"width": 2, "height": 2},
//	      "data": [{"name": "LCP", "value": 2450}],
//	      "config": {"kind": "bar", "data_key": "value", "color": "#8884d8"}
//	    }
//	  ]
//	}
//
// A missing or zero "columns" falls back to the default grid width. A tile
// without "config" gets the default config for its kind.
//
// # Import
//
// Use [ImportJSON] to read a layout from a file path, or [ReadJSON] to read
// from any io.Reader. Both validate the layout the same way the store does
// (no overlap, inside the grid, unique ids) and return the first violation as
// a coded error.
//
// # Export
//
// Use [ExportJSON] to write a layout to a file, or [WriteJSON] to write to any
// io.Writer. Export is a one-shot snapshot; nothing reloads it automatically.
package io
