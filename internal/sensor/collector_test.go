package sensor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{
		SampleInterval: 5 * time.Millisecond,
		WindowSize:     50 * time.Millisecond,
		SlideStep:      25 * time.Millisecond,
	}
}

func TestCollectorEmitsWindows(t *testing.T) {
	c := NewCollector(fastConfig())
	c.Start(context.Background())
	defer c.Stop()

	require.True(t, c.Push(Reading{Kind: KindGPSSpeed, Values: []float64{2}}))

	select {
	case w := <-c.Windows():
		assert.NotEmpty(t, w.Samples)
		assert.False(t, w.EndTime.Before(w.StartTime))
	case <-time.After(2 * time.Second):
		t.Fatal("no window emitted")
	}
}

func TestCollectorStopAndRestart(t *testing.T) {
	c := NewCollector(fastConfig())
	assert.False(t, c.Push(Reading{Kind: KindGPSSpeed, Values: []float64{1}}))

	c.Start(context.Background())
	c.Start(context.Background())
	assert.True(t, c.Running())

	c.Push(Reading{Kind: KindGPSSpeed, Values: []float64{7}})
	time.Sleep(100 * time.Millisecond)

	c.Stop()
	c.Stop()
	assert.False(t, c.Running())
	assert.Zero(t, c.buf.Len())
	select {
	case <-c.Windows():
		t.Fatal("window survived stop")
	default:
	}

	c.Start(context.Background())
	defer c.Stop()

	select {
	case w := <-c.Windows():
		for _, s := range w.Samples {
			assert.Zero(t, s.GPSSpeed, "speed leaked across sessions")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no window emitted after restart")
	}
}

func TestCollectorContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewCollector(fastConfig())
	c.Start(ctx)
	cancel()
	c.Stop()
	assert.False(t, c.Running())
}
