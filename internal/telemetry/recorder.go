package telemetry

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBufferSize is the event queue capacity
const DefaultBufferSize = 256

const sinkWriteTimeout = 5 * time.Second

// Recorder queues snapshots and forwards them to sinks in the background.
// Record never blocks: when the queue is full the event is dropped.
type Recorder struct {
	sinks []Sink
	queue chan Event

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}

	mu     sync.RWMutex
	closed bool

	dropped atomic.Int64
	written atomic.Int64
	failed  atomic.Int64
}

// NewRecorder creates a recorder over sinks. A recorder without sinks
// accepts and discards events.
func NewRecorder(bufferSize int, sinks ...Sink) *Recorder {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Recorder{
		sinks: sinks,
		queue: make(chan Event, bufferSize),
		done:  make(chan struct{}),
	}
}

// Start launches the forwarding goroutine
func (r *Recorder) Start() {
	r.startOnce.Do(func() {
		go r.run()
	})
}

// Record enqueues e and reports whether it was accepted
func (r *Recorder) Record(e Event) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.dropped.Add(1)
		return false
	}
	select {
	case r.queue <- e:
		return true
	default:
		r.dropped.Add(1)
		return false
	}
}

// Stop drains queued events, closes the sinks and waits for the
// forwarding goroutine to exit
func (r *Recorder) Stop() {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.queue)
		r.mu.Unlock()

		r.Start()
		<-r.done

		for _, s := range r.sinks {
			if err := s.Close(); err != nil {
				log.Printf("[Telemetry] Failed to close sink %s: %v", s.Name(), err)
			}
		}
		log.Printf("[Telemetry] Recorder stopped (written=%d failed=%d dropped=%d)",
			r.written.Load(), r.failed.Load(), r.dropped.Load())
	})
}

// Stats returns written, failed and dropped event counts
func (r *Recorder) Stats() (written, failed, dropped int64) {
	return r.written.Load(), r.failed.Load(), r.dropped.Load()
}

func (r *Recorder) run() {
	defer close(r.done)

	for e := range r.queue {
		for _, s := range r.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), sinkWriteTimeout)
			err := s.Write(ctx, e)
			cancel()
			if err != nil {
				r.failed.Add(1)
				log.Printf("[Telemetry] Sink %s rejected %s event for %s: %v", s.Name(), e.Kind, e.SessionID, err)
				continue
			}
			r.written.Add(1)
		}
	}
}
