// internal/app/system/workers/storeping.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/projectflow/internal/app/store"
	"github.com/dalemusser/projectflow/internal/app/system/timeouts"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var storeUp = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "projectflow_store_up",
	Help: "1 when the last store ping succeeded",
})

// StorePinger is a background worker that pings the store on an interval and
// logs when it goes down or comes back. A store that was unreachable at
// startup is picked up here once it answers.
type StorePinger struct {
	pinger   store.Pinger
	backend  string
	log      *zap.Logger
	interval time.Duration

	// OnReachable, when set, runs each time the store comes up, including
	// the first successful ping. Set it before Start.
	OnReachable func(ctx context.Context)

	mu    sync.RWMutex
	up    bool
	known bool

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewStorePinger creates a new ping worker for st.
func NewStorePinger(st store.Store, logger *zap.Logger, interval time.Duration) *StorePinger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StorePinger{
		pinger:   st.Pinger,
		backend:  st.Backend,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs one ping immediately, then begins the background loop.
func (w *StorePinger) Start() {
	w.Check(context.Background())
	w.wg.Add(1)
	go w.run()
	w.log.Info("store ping worker started",
		zap.String("backend", w.backend),
		zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. It is safe to
// call more than once.
func (w *StorePinger) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("store ping worker stopped")
	})
}

// Up reports the result of the latest ping.
func (w *StorePinger) Up() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.up
}

func (w *StorePinger) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Check(context.Background())
		}
	}
}

// Check pings once and records the outcome.
func (w *StorePinger) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()

	err := w.pinger.Ping(ctx)
	up := err == nil

	w.mu.Lock()
	changed := !w.known || w.up != up
	w.up, w.known = up, true
	w.mu.Unlock()

	if up {
		storeUp.Set(1)
	} else {
		storeUp.Set(0)
	}

	switch {
	case !changed:
	case up:
		w.log.Info("store reachable", zap.String("backend", w.backend))
		if w.OnReachable != nil {
			w.OnReachable(ctx)
		}
	default:
		w.log.Warn("store unreachable; will retry",
			zap.String("backend", w.backend),
			zap.Duration("retry_in", w.interval),
			zap.Error(err))
	}
	return up
}
