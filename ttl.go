package arrowdoc

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ttlDaemon periodically evicts documents older than age, realized with a
// time.Ticker under a context/WaitGroup pair.
type ttlDaemon struct {
	age      time.Duration
	interval time.Duration
	sweep    func(cutoff int64) int

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *logrus.Entry
}

func newTTLDaemon(age, interval time.Duration, sweep func(cutoff int64) int, log *logrus.Entry) *ttlDaemon {
	return &ttlDaemon{age: age, interval: interval, sweep: sweep, log: log}
}

// start begins the periodic sweep. No-op if age or interval is <= 0;
// eviction is disabled by passing a non-positive age.
func (d *ttlDaemon) start() {
	if d.age <= 0 || d.interval <= 0 {
		return
	}

	d.mu.Lock()
	if d.cancel != nil {
		d.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := nowMillis() - d.age.Milliseconds()
				removed := d.sweep(cutoff)
				if d.log != nil && removed > 0 {
					d.log.WithField("removed", removed).Debug("ttl sweep evicted documents")
				}
			}
		}
	}()
}

// stop cancels the handle and waits for the running sweep goroutine to
// exit.
func (d *ttlDaemon) stop() {
	d.mu.Lock()
	cancel := d.cancel
	d.cancel = nil
	d.mu.Unlock()

	if cancel != nil {
		cancel()
		d.wg.Wait()
	}
}
