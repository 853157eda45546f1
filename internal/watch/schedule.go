package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// debouncer calls fn once the trigger has been quiet for delay.
type debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	fn    func()
}

func newDebouncer(delay time.Duration, fn func()) *debouncer {
	return &debouncer{delay: delay, fn: fn}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// scheduler runs rebuilds one at a time. Requests arriving during a rebuild
// collapse into a single follow-up run.
type scheduler struct {
	requests chan struct{}
	rebuild  RebuildFunc
}

func newScheduler(rebuild RebuildFunc) *scheduler {
	return &scheduler{requests: make(chan struct{}, 1), rebuild: rebuild}
}

func (s *scheduler) request() {
	select {
	case s.requests <- struct{}{}:
	default:
	}
}

func (s *scheduler) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.requests:
			slog.Info("Change detected; rebuilding site")
			start := time.Now()
			if err := s.rebuild(ctx); err != nil {
				slog.Warn("Rebuild failed", logfields.Error(err))
				continue
			}
			slog.Info("Rebuild finished", logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
		}
	}
}
