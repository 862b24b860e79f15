package sensor

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jengzang/ecogo-motion/internal/models"
)

const readingQueueSize = 256

// Collector runs the sampling loop in the background. Producers push raw
// readings through a channel; completed windows are published on Windows.
type Collector struct {
	cfg      Config
	buf      *Buffer
	readings chan Reading
	windows  chan models.SensorWindow

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running atomic.Bool

	dropped atomic.Int64
	emitted atomic.Int64
}

// NewCollector creates a stopped collector
func NewCollector(cfg Config) *Collector {
	cfg = cfg.withDefaults()
	return &Collector{
		cfg:      cfg,
		buf:      NewBuffer(cfg),
		readings: make(chan Reading, readingQueueSize),
		windows:  make(chan models.SensorWindow, 1),
	}
}

// Windows returns the channel completed windows are published on. Only the
// most recent unconsumed window is retained.
func (c *Collector) Windows() <-chan models.SensorWindow {
	return c.windows
}

// Start launches the sampling loop. Starting a running collector is a no-op.
func (c *Collector) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running.Load() {
		return
	}

	// readings pushed while stopped belong to no session
	c.drain()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.running.Store(true)

	go c.run(ctx, c.done)
	log.Printf("[Sensor] Sampling started (interval=%s window=%s step=%s)",
		c.cfg.SampleInterval, c.cfg.WindowSize, c.cfg.SlideStep)
}

// Stop cancels the sampling loop and clears all buffered state so the next
// Start begins from an empty buffer.
func (c *Collector) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running.Load() {
		return
	}
	c.running.Store(false)
	c.cancel()
	<-c.done

	c.buf.Reset()
	c.drain()
	log.Printf("[Sensor] Sampling stopped (windows=%d dropped=%d)", c.emitted.Load(), c.dropped.Load())
}

// Running reports whether the sampling loop is active
func (c *Collector) Running() bool {
	return c.running.Load()
}

// Push enqueues a reading without blocking. It returns false when the
// collector is stopped or the queue is full.
func (c *Collector) Push(r Reading) bool {
	if !c.running.Load() {
		return false
	}
	select {
	case c.readings <- r:
		return true
	default:
		c.dropped.Add(1)
		return false
	}
}

// Dropped returns the number of readings discarded because the queue was full
func (c *Collector) Dropped() int64 {
	return c.dropped.Load()
}

func (c *Collector) drain() {
	for {
		select {
		case <-c.readings:
		case <-c.windows:
		default:
			return
		}
	}
}

func (c *Collector) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.cfg.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case r := <-c.readings:
			c.buf.Apply(r)
		case now := <-ticker.C:
			if w, ok := c.buf.Tick(now); ok {
				c.publish(w)
			}
		}
	}
}

// publish replaces any unconsumed window so the loop never blocks on a slow reader
func (c *Collector) publish(w models.SensorWindow) {
	c.emitted.Add(1)
	for {
		select {
		case c.windows <- w:
			return
		default:
		}
		select {
		case <-c.windows:
		default:
		}
	}
}
