// Package coingecko serves cryptocurrency prices from the CoinGecko API as a
// dashboard data source.
//
// A fetch makes three requests: current USD prices for the tracked coins
// (bar rows) and the bitcoin and ethereum market charts for the requested
// range (line and area rows). The market charts are downsampled to about 30
// points. Responses are cached through [integrations.Client].
package coingecko

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/vitalsgrid/pkg/cache"
	"github.com/matzehuels/vitalsgrid/pkg/errors"
	"github.com/matzehuels/vitalsgrid/pkg/integrations"
	"github.com/matzehuels/vitalsgrid/pkg/observability"
	"github.com/matzehuels/vitalsgrid/pkg/tile"
	"github.com/matzehuels/vitalsgrid/pkg/vitals"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// SourceName identifies this source in bundles and hooks.
const SourceName = "coingecko"

// targetPoints is roughly how many points a downsampled chart keeps.
const targetPoints = 30

// Coin is a tracked coin: its API id and the ticker shown on the bar chart.
type Coin struct {
	ID     string
	Ticker string
}

// Coins are the coins priced on the bar chart, in display order.
var Coins = []Coin{
	{"bitcoin", "BTC"},
	{"ethereum", "ETH"},
	{"binancecoin", "BNB"},
	{"solana", "SOL"},
}

// MarketChart is the market_chart response: [unix ms, value] pairs.
type MarketChart struct {
	Prices       [][2]float64 `json:"prices"`
	MarketCaps   [][2]float64 `json:"market_caps"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

// Client fetches crypto market data.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
	now     func() time.Time
}

// NewClient creates a CoinGecko client caching responses in backend for
// cacheTTL.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, SourceName, cacheTTL, nil),
		baseURL: DefaultBaseURL,
		now:     time.Now,
	}
}

// SetBaseURL points the client at another API root, such as a test server.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// Prices returns the USD price per coin id.
func (c *Client) Prices(ctx context.Context, refresh bool) (map[string]float64, error) {
	ids := ""
	for i, coin := range Coins {
		if i > 0 {
			ids += ","
		}
		ids += coin.ID
	}

	var raw map[string]struct {
		USD float64 `json:"usd"`
	}
	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.baseURL, integrations.URLEncode(ids))
	err := c.Cached(ctx, "price:"+ids, refresh, &raw, func() error {
		return c.Get(ctx, url, &raw)
	})
	if err != nil {
		return nil, err
	}
	prices := make(map[string]float64, len(raw))
	for id, p := range raw {
		prices[id] = p.USD
	}
	return prices, nil
}

// MarketChart returns the market chart for coin over days ("1", "7", ...,
// "max").
func (c *Client) MarketChart(ctx context.Context, coin, days string, refresh bool) (*MarketChart, error) {
	var chart MarketChart
	url := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=%s",
		c.baseURL, integrations.URLEncode(coin), integrations.URLEncode(days))
	err := c.Cached(ctx, "chart:"+coin+":"+days, refresh, &chart, func() error {
		return c.Get(ctx, url, &chart)
	})
	if err != nil {
		return nil, err
	}
	return &chart, nil
}

// Fetch builds a bundle for tr: bar rows are current prices, line rows the
// btc and eth prices, area rows bitcoin market cap ("portfolio") and volume
// ("profit") in millions.
func (c *Client) Fetch(ctx context.Context, tr vitals.TimeRange) (vitals.Bundle, error) {
	if !tr.Valid() {
		return vitals.Bundle{}, errors.New(errors.ErrCodeInvalidTimeRange, "invalid time range: %q", tr)
	}
	hooks := observability.Data()
	started := time.Now()
	hooks.OnFetchStart(ctx, SourceName, tr.String())

	b, err := c.fetch(ctx, tr)
	hooks.OnFetchComplete(ctx, SourceName, tr.String(), len(b.Line), time.Since(started), err)
	return b, err
}

func (c *Client) fetch(ctx context.Context, tr vitals.TimeRange) (vitals.Bundle, error) {
	prices, err := c.Prices(ctx, false)
	if err != nil {
		return vitals.Bundle{}, errors.Wrap(errors.ErrCodeDataSource, err, "Failed to fetch current prices")
	}

	var btc, eth *MarketChart
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		btc, err = c.MarketChart(gctx, "bitcoin", tr.Days(), false)
		return err
	})
	g.Go(func() (err error) {
		eth, err = c.MarketChart(gctx, "ethereum", tr.Days(), false)
		return err
	})
	if err := g.Wait(); err != nil {
		return vitals.Bundle{}, errors.Wrap(errors.ErrCodeDataSource, err, "Failed to fetch historical data")
	}

	return vitals.Bundle{
		Source:     SourceName,
		Range:      tr,
		Records:    len(btc.Prices),
		Bar:        BarRows(prices),
		Line:       LineRows(btc, eth),
		Area:       AreaRows(btc),
		LastUpdate: c.now(),
	}, nil
}

// BarRows orders prices by [Coins]. Missing coins are zero.
func BarRows(prices map[string]float64) []tile.Row {
	rows := make([]tile.Row, 0, len(Coins))
	for _, coin := range Coins {
		rows = append(rows, tile.Row{"name": coin.Ticker, "value": prices[coin.ID]})
	}
	return rows
}

// SampleRate is the stride that keeps about targetPoints of n points.
func SampleRate(n int) int {
	return max(1, n/targetPoints)
}

// LineRows pairs downsampled btc prices with the eth price at the same index.
func LineRows(btc, eth *MarketChart) []tile.Row {
	step := SampleRate(len(btc.Prices))
	var rows []tile.Row
	for i := 0; i < len(btc.Prices); i += step {
		p := btc.Prices[i]
		var ethPrice float64
		if i < len(eth.Prices) {
			ethPrice = math.Round(eth.Prices[i][1])
		}
		rows = append(rows, tile.Row{
			"name": label(p[0]),
			"btc":  math.Round(p[1]),
			"eth":  ethPrice,
		})
	}
	return rows
}

// AreaRows downsamples bitcoin market cap and volume, in millions.
func AreaRows(btc *MarketChart) []tile.Row {
	step := SampleRate(len(btc.Prices))
	var rows []tile.Row
	for i := 0; i < len(btc.MarketCaps); i += step {
		cp := btc.MarketCaps[i]
		var profit float64
		if i < len(btc.TotalVolumes) {
			profit = math.Round(btc.TotalVolumes[i][1] / 1e6)
		}
		rows = append(rows, tile.Row{
			"name":      label(cp[0]),
			"portfolio": math.Round(cp[1] / 1e6),
			"profit":    profit,
		})
	}
	return rows
}

func label(ms float64) string {
	return time.UnixMilli(int64(ms)).UTC().Format("Jan 2")
}

var _ vitals.Fetcher = (*Client)(nil)
