// Package sampler polls media streams on a fixed interval and turns them into
// raw readings. Samplers never decide violations.
package sampler

import (
	"context"
	"sync"
	"time"
)

// loop runs tick on a single goroutine. Ticks that fire while tick is still
// running are dropped and reported through skipped.
type loop struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func (l *loop) start(ctx context.Context, interval time.Duration, tick func(context.Context), skipped func(int)) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return false
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.cancel = cancel
	l.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				started := time.Now()
				tick(ctx)
				if elapsed := time.Since(started); elapsed >= interval {
					select {
					case <-ticker.C:
					default:
					}
					if skipped != nil {
						skipped(int(elapsed / interval))
					}
				}
			}
		}
	}()
	return true
}

// stop cancels the loop and blocks until the goroutine has exited.
func (l *loop) stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (l *loop) running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}
