package bessel

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSinkWritesStructuredWarning(t *testing.T) {
	var buf bytes.Buffer
	sink := LogSink{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	sink.Warn("hankel2e", "Overflow: no computation done, result may be infinite")

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "function=hankel2e")
	assert.Contains(t, out, `msg="Overflow: no computation done, result may be infinite"`)
}

func TestCollectorForwardsAndResets(t *testing.T) {
	var forwarded []string
	c := &Collector{Next: SinkFunc(func(fn, msg string) { forwarded = append(forwarded, fn+": "+msg) })}

	c.Warn("iv", "first")
	c.Warn("kv", "second")

	assert.Equal(t, []Warning{{"iv", "first"}, {"kv", "second"}}, c.Warnings())
	assert.Equal(t, []string{"iv: first", "kv: second"}, forwarded)

	c.Reset()
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Warnings())
}

func TestCollectorConcurrent(t *testing.T) {
	c := &Collector{}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.Warn("iv", "w")
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1000, c.Len())
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard.Warn("iv", "ignored") })
}
