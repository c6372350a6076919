package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/wardwatch/internal/app/docstore"
	"go.uber.org/zap"
)

// Strategy selects how a Refresher notices changes.
type Strategy string

const (
	StrategyPoll      Strategy = "poll"
	StrategySubscribe Strategy = "subscribe"
)

// ParseStrategy validates a configured strategy. Empty means poll.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyPoll:
		return StrategyPoll, nil
	case StrategySubscribe:
		return StrategySubscribe, nil
	}
	return "", fmt.Errorf("refresh strategy %q: want poll or subscribe", s)
}

// DefaultInterval is the poll interval when none is configured.
const DefaultInterval = 15 * time.Second

// Refresher produces a new Snapshot whenever the inputs may have changed:
// on every tick when polling, or on every document-store change when
// subscribed. A subscription that cannot be opened falls back to polling.
type Refresher struct {
	Loader     *Loader
	Strategy   Strategy
	Interval   time.Duration
	Subscriber docstore.Subscriber
	// Collections are watched in subscribe mode.
	Collections []string
	Log         *zap.Logger
}

func (r *Refresher) log() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

// Updates emits an initial snapshot and then one per observed change until
// ctx is done, when the channel is closed. A slow reader only ever sees the
// most recent snapshot. Load failures are logged and skipped.
func (r *Refresher) Updates(ctx context.Context) <-chan Snapshot {
	out := make(chan Snapshot, 1)
	triggers := r.triggers(ctx)

	go func() {
		defer close(out)
		r.emit(ctx, out)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-triggers:
				if !ok {
					return
				}
				r.emit(ctx, out)
			}
		}
	}()
	return out
}

func (r *Refresher) emit(ctx context.Context, out chan Snapshot) {
	snap, err := r.Loader.Load(ctx)
	if err != nil {
		if ctx.Err() == nil {
			r.log().Warn("dashboard refresh failed", zap.Error(err))
		}
		return
	}
	select {
	case <-out:
	default:
	}
	select {
	case out <- snap:
	default:
	}
}

// triggers returns a channel that fires whenever a refresh is due.
func (r *Refresher) triggers(ctx context.Context) <-chan struct{} {
	if r.Strategy == StrategySubscribe && r.Subscriber != nil {
		ch, err := r.subscribe(ctx)
		if err == nil {
			return ch
		}
		r.log().Warn("change subscription unavailable, polling instead", zap.Error(err))
	}
	return r.poll(ctx)
}

func (r *Refresher) poll(ctx context.Context) <-chan struct{} {
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				fire(ch)
			}
		}
	}()
	return ch
}

func (r *Refresher) subscribe(ctx context.Context) (<-chan struct{}, error) {
	ctx, cancel := context.WithCancel(ctx)
	feeds := make([]<-chan docstore.Change, 0, len(r.Collections))
	for _, coll := range r.Collections {
		feed, err := r.Subscriber.Subscribe(ctx, coll)
		if err != nil {
			cancel()
			return nil, err
		}
		feeds = append(feeds, feed)
	}

	// Feeds close when ctx is done; ch is closed once every feed has.
	ch := make(chan struct{}, 1)
	var wg sync.WaitGroup
	for _, feed := range feeds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range feed {
				fire(ch)
			}
		}()
	}
	go func() {
		wg.Wait()
		cancel()
		close(ch)
	}()
	return ch, nil
}

// fire signals ch without blocking; pending signals coalesce.
func fire(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
