package coingecko

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/vitalsgrid/pkg/cache"
	"github.com/matzehuels/vitalsgrid/pkg/errors"
	"github.com/matzehuels/vitalsgrid/pkg/httputil"
	"github.com/matzehuels/vitalsgrid/pkg/vitals"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func chart(n int, base float64) MarketChart {
	var c MarketChart
	for i := 0; i < n; i++ {
		ts := float64(start.Add(time.Duration(i) * time.Hour).UnixMilli())
		c.Prices = append(c.Prices, [2]float64{ts, base + float64(i) + 0.4})
		c.MarketCaps = append(c.MarketCaps, [2]float64{ts, (base + float64(i)) * 1e6})
		c.TotalVolumes = append(c.TotalVolumes, [2]float64{ts, float64(i) * 1e6})
	}
	return c
}

type fakeAPI struct {
	days  atomic.Value
	hits  atomic.Int64
	fail  bool
	chart int
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.hits.Add(1)
	switch {
	case r.URL.Path == "/simple/price":
		if got := r.URL.Query().Get("ids"); got != "bitcoin,ethereum,binancecoin,solana" {
			http.Error(w, "bad ids "+got, http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]map[string]float64{
			"bitcoin":  {"usd": 65000},
			"ethereum": {"usd": 3200},
			"solana":   {"usd": 150},
		})
	case strings.HasSuffix(r.URL.Path, "/market_chart"):
		if f.fail {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.days.Store(r.URL.Query().Get("days"))
		base := 100.0
		if strings.Contains(r.URL.Path, "ethereum") {
			base = 10
		}
		json.NewEncoder(w).Encode(chart(f.chart, base))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c := NewClient(cache.NewNullCache(), time.Minute)
	c.SetBaseURL(srv.URL)
	c.SetHTTPClient(srv.Client())
	c.SetRetry(httputil.NoRetry)
	c.now = func() time.Time { return start }
	return c
}

func TestFetch(t *testing.T) {
	api := &fakeAPI{chart: 90}
	b, err := newClient(t, api).Fetch(context.Background(), vitals.Range1W)
	if err != nil {
		t.Fatal(err)
	}
	if got := api.days.Load(); got != "7" {
		t.Errorf("days = %v, want 7", got)
	}

	wantBar := []struct {
		name  string
		value float64
	}{{"BTC", 65000}, {"ETH", 3200}, {"BNB", 0}, {"SOL", 150}}
	if len(b.Bar) != len(wantBar) {
		t.Fatalf("bar rows = %d", len(b.Bar))
	}
	for i, w := range wantBar {
		if b.Bar[i]["name"] != w.name || b.Bar[i]["value"] != w.value {
			t.Errorf("bar[%d] = %v, want %s=%v", i, b.Bar[i], w.name, w.value)
		}
	}

	// 90 points, stride 3
	if len(b.Line) != 30 || len(b.Area) != 30 {
		t.Fatalf("line = %d, area = %d rows, want 30", len(b.Line), len(b.Area))
	}
	if b.Line[1]["btc"] != 103.0 || b.Line[1]["eth"] != 13.0 {
		t.Errorf("line[1] = %v", b.Line[1])
	}
	if b.Area[1]["portfolio"] != 103.0 || b.Area[1]["profit"] != 3.0 {
		t.Errorf("area[1] = %v", b.Area[1])
	}
	if b.Line[0]["name"] != "Jan 1" {
		t.Errorf("label = %v", b.Line[0]["name"])
	}
	if b.Source != SourceName || !b.LastUpdate.Equal(start) {
		t.Errorf("source = %s, last update = %v", b.Source, b.LastUpdate)
	}
}

func TestFetchDaysPerRange(t *testing.T) {
	for _, tr := range vitals.TimeRanges {
		t.Run(string(tr), func(t *testing.T) {
			api := &fakeAPI{chart: 5}
			if _, err := newClient(t, api).Fetch(context.Background(), tr); err != nil {
				t.Fatal(err)
			}
			if got := api.days.Load(); got != tr.Days() {
				t.Errorf("days = %v, want %s", got, tr.Days())
			}
		})
	}
}

func TestFetchHistoricalFailure(t *testing.T) {
	api := &fakeAPI{chart: 5, fail: true}
	_, err := newClient(t, api).Fetch(context.Background(), vitals.Range1M)
	if !errors.Is(err, errors.ErrCodeDataSource) {
		t.Fatalf("err = %v, want DATA_SOURCE", err)
	}
	if msg := errors.UserMessage(err); msg != "Failed to fetch historical data" {
		t.Errorf("message = %q", msg)
	}
}

func TestFetchInvalidRange(t *testing.T) {
	_, err := newClient(t, &fakeAPI{}).Fetch(context.Background(), "2W")
	if !errors.Is(err, errors.ErrCodeInvalidTimeRange) {
		t.Errorf("err = %v", err)
	}
}

func TestFetchCached(t *testing.T) {
	api := &fakeAPI{chart: 10}
	srv := httptest.NewServer(api)
	defer srv.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := NewClient(fc, time.Hour)
	c.SetBaseURL(srv.URL)
	c.SetHTTPClient(srv.Client())

	for i := 0; i < 2; i++ {
		if _, err := c.Fetch(context.Background(), vitals.Range1D); err != nil {
			t.Fatal(err)
		}
	}
	if api.hits.Load() != 3 {
		t.Errorf("upstream hits = %d, want 3", api.hits.Load())
	}
}

func TestSampleRate(t *testing.T) {
	tests := []struct{ n, want int }{
		{0, 1}, {29, 1}, {30, 1}, {60, 2}, {91, 3}, {8760, 292},
	}
	for _, tt := range tests {
		if got := SampleRate(tt.n); got != tt.want {
			t.Errorf("SampleRate(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestLineRowsShortEthSeries(t *testing.T) {
	btc, eth := chart(4, 100), chart(2, 10)
	rows := LineRows(&btc, &eth)
	if len(rows) != 4 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[3]["eth"] != 0.0 {
		t.Errorf("missing eth price = %v, want 0", rows[3]["eth"])
	}
}
