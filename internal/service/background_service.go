package service

import (
	"context"
	"sync"
	"time"

	"NetIntelAPI/internal/cache"
	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/monitor"
)

// BackgroundMonitor runs the periodic housekeeping loop: refresh the stats
// stamp, re-cache the stats and retire alerts that stayed active too long.
type BackgroundMonitor struct {
	monitor    *monitor.Monitor
	cache      *cache.Cache
	log        *logger.Logger
	interval   time.Duration
	staleAfter time.Duration
	now        func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewBackgroundMonitor(mon *monitor.Monitor, c *cache.Cache, interval, staleAfter time.Duration, log *logger.Logger) *BackgroundMonitor {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 24 * time.Hour
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &BackgroundMonitor{
		monitor:    mon,
		cache:      c,
		log:        log.With("background"),
		interval:   interval,
		staleAfter: staleAfter,
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (b *BackgroundMonitor) Start() {
	b.log.Info("Starting background monitor (every %v)", b.interval)

	b.wg.Add(1)
	go b.loop()
}

func (b *BackgroundMonitor) Shutdown() {
	b.log.Info("Shutting down background monitor...")
	b.cancel()
	b.wg.Wait()
	b.log.Info("Background monitor stopped gracefully")
}

func (b *BackgroundMonitor) loop() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.ctx.Done():
			return
		case <-ticker.C:
			b.RunOnce(b.ctx)
		}
	}
}

// RunOnce performs a single housekeeping pass and returns how many alerts went stale.
func (b *BackgroundMonitor) RunOnce(ctx context.Context) int {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("Background monitor pass panicked: %v", r)
		}
	}()

	stats := b.monitor.Touch()
	b.cache.CacheNetworkStats(ctx, stats)

	n := b.monitor.MarkStale(b.now().Add(-b.staleAfter))
	if n > 0 {
		b.log.Info("Marked %d alerts as stale", n)
	}
	return n
}
