package orchestrator

import (
	"time"

	"github.com/lthibault/jitterbug/v2"
)

// Ticker delivers poll ticks until stopped. The channel may be closed after
// Stop.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type TickerFunc func(interval time.Duration) Ticker

type jitterTicker struct {
	t *jitterbug.Ticker
}

func (j *jitterTicker) C() <-chan time.Time { return j.t.C }
func (j *jitterTicker) Stop()               { j.t.Stop() }

// NewJitterTicker returns a TickerFunc spreading ticks normally around the
// interval with the given standard deviation.
func NewJitterTicker(stdev time.Duration) TickerFunc {
	return func(interval time.Duration) Ticker {
		return &jitterTicker{t: jitterbug.New(interval, &jitterbug.Norm{Stdev: stdev, Mean: 0})}
	}
}

type stdTicker struct {
	t *time.Ticker
}

func (s *stdTicker) C() <-chan time.Time { return s.t.C }
func (s *stdTicker) Stop()               { s.t.Stop() }

// NewTicker is a TickerFunc without jitter.
func NewTicker(interval time.Duration) Ticker {
	return &stdTicker{t: time.NewTicker(interval)}
}
