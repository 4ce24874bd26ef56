package feed

import (
	"context"
	"time"

	"github.com/matzehuels/vitalsgrid/pkg/observability"
	"github.com/matzehuels/vitalsgrid/pkg/vitals"
)

// DefaultInterval is the simulator's record cadence.
const DefaultInterval = 2 * time.Second

// Simulator emits a generated record every Interval.
type Simulator struct {
	Interval  time.Duration
	Generator *vitals.Generator
	AppName   string
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewSimulator returns a simulator using gen. A non-positive interval uses
// [DefaultInterval]; a nil gen is seeded from the clock.
func NewSimulator(interval time.Duration, gen *vitals.Generator) *Simulator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if gen == nil {
		gen = vitals.NewGenerator(uint64(time.Now().UnixNano()))
	}
	return &Simulator{Interval: interval, Generator: gen, AppName: vitals.DefaultAppName}
}

func (s *Simulator) Name() string { return "simulator" }

func (s *Simulator) Subscribe(ctx context.Context, onRecord RecordFunc, onError ErrorFunc) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := s.Now
	if now == nil {
		now = time.Now
	}
	h, ctx := newHandle(ctx)
	hooks := observability.Feed()
	hooks.OnSubscribe(s.Name())

	go func() {
		defer h.finish()
		defer hooks.OnUnsubscribe(s.Name())

		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rec := s.Generator.Live(now(), s.AppName)
				if h.emit(func() { onRecord(rec) }) {
					hooks.OnRecord(s.Name())
				}
			}
		}
	}()
	return h, nil
}

var _ Feed = (*Simulator)(nil)
