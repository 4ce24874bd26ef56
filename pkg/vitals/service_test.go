package vitals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matzehuels/vitalsgrid/pkg/cache"
	verrors "github.com/matzehuels/vitalsgrid/pkg/errors"
)

type countingSource struct {
	inner RecordSource
	calls int
	err   error
}

func (s *countingSource) Name() string { return "counting" }

func (s *countingSource) Records(ctx context.Context, from, to time.Time) ([]Record, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.inner.Records(ctx, from, to)
}

func fixedNow() time.Time { return time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC) }

func TestMemorySourceWindow(t *testing.T) {
	src := NewMemorySource(MemoryOptions{Records: 300, Days: 30, Seed: 1, Now: fixedNow})
	ctx := context.Background()

	from, to := Range1W.Window(fixedNow())
	got, err := src.Records(ctx, from, to)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 || len(got) >= 300 {
		t.Fatalf("1W records = %d", len(got))
	}
	for _, r := range got {
		if r.Datetime.Before(from) || r.Datetime.After(to) {
			t.Fatalf("record %s outside window", r.Datetime)
		}
	}

	if a, b := src.Dataset(), src.Dataset(); !a.GeneratedAt.Equal(b.GeneratedAt) {
		t.Error("dataset regenerated between reads")
	}
}

func TestMemorySourceLatencyHonoursContext(t *testing.T) {
	src := NewMemorySource(MemoryOptions{Latency: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Records(ctx, time.Time{}, time.Now()); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestServiceFetch(t *testing.T) {
	src := &countingSource{inner: NewMemorySource(MemoryOptions{Records: 500, Seed: 2, Now: fixedNow})}
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	svc := &Service{Source: src, Cache: c, TTL: time.Hour, Now: fixedNow}
	ctx := context.Background()

	b, err := svc.Fetch(ctx, Range1M)
	if err != nil {
		t.Fatal(err)
	}
	if b.Empty() || len(b.Bar) != 4 || len(b.Line) == 0 || len(b.Line) != len(b.Area) {
		t.Fatalf("bundle bar=%d line=%d area=%d", len(b.Bar), len(b.Line), len(b.Area))
	}
	if b.Bar[0]["name"] != "LCP" || b.Bar[2]["name"] != "CLS" {
		t.Errorf("bar rows = %v", b.Bar)
	}
	if len(b.Browsers) == 0 || len(b.Scatter) == 0 {
		t.Errorf("browsers=%d scatter=%d", len(b.Browsers), len(b.Scatter))
	}

	again, err := svc.Fetch(ctx, Range1M)
	if err != nil {
		t.Fatal(err)
	}
	if src.calls != 1 {
		t.Errorf("source calls = %d, want 1 (second fetch cached)", src.calls)
	}
	if again.Records != b.Records || len(again.Line) != len(b.Line) {
		t.Errorf("cached bundle differs")
	}
}

func TestServiceFetchErrors(t *testing.T) {
	src := &countingSource{err: errors.New("boom")}
	svc := &Service{Source: src, Now: fixedNow}

	_, err := svc.Fetch(context.Background(), Range1D)
	if !verrors.Is(err, verrors.ErrCodeDataSource) {
		t.Errorf("err = %v, want DATA_SOURCE", err)
	}
	if _, err := svc.Fetch(context.Background(), TimeRange("5Y")); !verrors.Is(err, verrors.ErrCodeInvalidTimeRange) {
		t.Errorf("err = %v, want INVALID_TIME_RANGE", err)
	}
}

func TestServiceStatsAndSeries(t *testing.T) {
	svc := &Service{Source: NewMemorySource(MemoryOptions{Records: 200, Seed: 5, Now: fixedNow}), Now: fixedNow}
	ctx := context.Background()

	all, err := svc.Stats(ctx, Range1M, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	chrome, err := svc.Stats(ctx, Range1M, Filter{Browser: "Chrome"})
	if err != nil {
		t.Fatal(err)
	}
	if chrome.TotalRecords == 0 || chrome.TotalRecords >= all.TotalRecords {
		t.Errorf("chrome=%d all=%d", chrome.TotalRecords, all.TotalRecords)
	}

	series, err := svc.Series(ctx, Range1D, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(series); i++ {
		if !series[i].Timestamp.After(series[i-1].Timestamp) {
			t.Fatal("series not sorted")
		}
	}
}

func TestLiveBarRows(t *testing.T) {
	rows := LiveBarRows(Metrics{LCP: 2000, FID: 80, CLS: 0.045, INP: 150})
	want := []float64{2000, 80, 45, 150}
	for i, r := range rows {
		if r["value"] != want[i] {
			t.Errorf("row %d value = %v, want %v", i, r["value"], want[i])
		}
	}
}
