package layout

import (
	"github.com/matzehuels/vitalsgrid/pkg/grid"
	"github.com/matzehuels/vitalsgrid/pkg/tile"
)

// DatasetBrowsers names the browser distribution data set.
const DatasetBrowsers = "browsers"

// DefaultTiles returns the five-tile web vitals board laid out on a
// six-column grid.
func DefaultTiles() []tile.Tile {
	return []tile.Tile{
		{
			ID:       "chart-1",
			Kind:     tile.KindBar,
			Title:    "Core Web Vitals",
			Position: grid.Cell{Col: 0, Row: 0},
			Size:     grid.Size{Width: 2, Height: 2},
			Data: []tile.Row{
				{"name": "LCP", "value": 2450.0},
				{"name": "FID", "value": 85.0},
				{"name": "CLS", "value": 45.0},
				{"name": "INP", "value": 120.0},
			},
			Config: tile.BarConfig{DataKey: "value", Color: "#8884d8"},
		},
		{
			ID:       "chart-4",
			Kind:     tile.KindBar,
			Title:    "Browser Distribution",
			Position: grid.Cell{Col: 0, Row: 2},
			Size:     grid.Size{Width: 2, Height: 2},
			Data:     []tile.Row{},
			Config:   tile.BarConfig{DataKey: "count", Color: "#82ca9d"},
			Dataset:  DatasetBrowsers,
		},
		{
			ID:       "chart-2",
			Kind:     tile.KindLine,
			Title:    "Loading Performance Over Time",
			Position: grid.Cell{Col: 2, Row: 0},
			Size:     grid.Size{Width: 2, Height: 2},
			Data: []tile.Row{
				{"name": "00:00", "LCP": 2400.0, "FCP": 1200.0, "TTFB": 450.0},
				{"name": "06:00", "LCP": 2200.0, "FCP": 1100.0, "TTFB": 420.0},
				{"name": "12:00", "LCP": 2600.0, "FCP": 1300.0, "TTFB": 480.0},
				{"name": "18:00", "LCP": 2450.0, "FCP": 1250.0, "TTFB": 460.0},
			},
			Config: tile.SeriesConfig{
				DataKeys: []string{"LCP", "FCP", "TTFB"},
				Colors:   []string{"#8884d8", "#82ca9d", "#ffc658"},
			},
		},
		{
			ID:       "chart-3",
			Kind:     tile.KindArea,
			Title:    "Interactivity & Responsiveness",
			Position: grid.Cell{Col: 4, Row: 0},
			Size:     grid.Size{Width: 2, Height: 2},
			Data: []tile.Row{
				{"name": "00:00", "TTI": 2800.0, "SI": 2100.0, "TBT": 340.0},
				{"name": "06:00", "TTI": 2600.0, "SI": 1900.0, "TBT": 310.0},
				{"name": "12:00", "TTI": 3000.0, "SI": 2300.0, "TBT": 380.0},
				{"name": "18:00", "TTI": 2850.0, "SI": 2150.0, "TBT": 350.0},
			},
			Config: tile.SeriesConfig{
				Area:     true,
				DataKeys: []string{"TTI", "SI", "TBT"},
				Colors:   []string{"#8884d8", "#82ca9d", "#ff8042"},
			},
		},
		{
			ID:       "chart-5",
			Kind:     tile.KindScatter,
			Title:    "LCP vs FID Correlation",
			Position: grid.Cell{Col: 2, Row: 2},
			Size:     grid.Size{Width: 4, Height: 2},
			Data:     []tile.Row{},
			Config:   tile.ScatterConfig{XKey: "lcp", YKey: "fid", ZKey: "cls", Color: "#ff8042"},
		},
	}
}

// Default returns a store holding [DefaultTiles] on a grid of the given
// width. Seeds that do not fit a narrower grid are rejected by [New].
func Default(columns int) (*Store, error) {
	return New(grid.New(columns), DefaultTiles()...)
}

// Widths the built-in boards need.
const (
	VitalsColumns = 6
	CryptoColumns = 5
)

// CryptoTiles returns the three-tile market board laid out on a
// five-column grid. Its data keys match the CoinGecko bundle.
func CryptoTiles() []tile.Tile {
	return []tile.Tile{
		{
			ID:       "chart-1",
			Kind:     tile.KindBar,
			Title:    "Crypto Prices",
			Position: grid.Cell{Col: 0, Row: 0},
			Size:     grid.Size{Width: 2, Height: 2},
			Data: []tile.Row{
				{"name": "BTC", "value": 45000.0},
				{"name": "ETH", "value": 3200.0},
				{"name": "BNB", "value": 420.0},
				{"name": "SOL", "value": 110.0},
			},
			Config: tile.BarConfig{DataKey: "value", Color: "#8884d8"},
		},
		{
			ID:       "chart-2",
			Kind:     tile.KindLine,
			Title:    "Price Trends",
			Position: grid.Cell{Col: 2, Row: 0},
			Size:     grid.Size{Width: 2, Height: 2},
			Data: []tile.Row{
				{"name": "Jan", "btc": 40000.0, "eth": 2800.0},
				{"name": "Feb", "btc": 42000.0, "eth": 2950.0},
				{"name": "Mar", "btc": 45000.0, "eth": 3100.0},
				{"name": "Apr", "btc": 43000.0, "eth": 3000.0},
				{"name": "May", "btc": 47000.0, "eth": 3300.0},
				{"name": "Jun", "btc": 46000.0, "eth": 3200.0},
			},
			Config: tile.SeriesConfig{
				DataKeys: []string{"btc", "eth"},
				Colors:   []string{"#8884d8", "#82ca9d"},
			},
		},
		{
			ID:       "chart-3",
			Kind:     tile.KindArea,
			Title:    "Portfolio Growth",
			Position: grid.Cell{Col: 4, Row: 0},
			Size:     grid.Size{Width: 1, Height: 2},
			Data: []tile.Row{
				{"name": "Jan", "portfolio": 50000.0, "profit": 5000.0},
				{"name": "Feb", "portfolio": 55000.0, "profit": 7000.0},
				{"name": "Mar", "portfolio": 62000.0, "profit": 9000.0},
				{"name": "Apr", "portfolio": 58000.0, "profit": 6500.0},
				{"name": "May", "portfolio": 70000.0, "profit": 12000.0},
				{"name": "Jun", "portfolio": 68000.0, "profit": 10000.0},
			},
			Config: tile.SeriesConfig{
				Area:     true,
				DataKeys: []string{"portfolio", "profit"},
				Colors:   []string{"#8884d8", "#82ca9d"},
			},
		},
	}
}

// Crypto returns a store holding [CryptoTiles] on a grid of the given width.
func Crypto(columns int) (*Store, error) {
	return New(grid.New(columns), CryptoTiles()...)
}
