package bessel

import (
	"context"
	"log/slog"
	"sync"
)

// Sink receives one call per recoverable anomaly reported by a kernel.
// Implementations must be safe for concurrent use.
type Sink interface {
	Warn(function, message string)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(function, message string)

// Warn calls f.
func (f SinkFunc) Warn(function, message string) { f(function, message) }

// Discard drops every warning.
var Discard Sink = SinkFunc(func(string, string) {})

// LogSink writes warnings to a slog.Logger at Warn level.
// A nil Logger means slog.Default() at the time of the call.
type LogSink struct {
	Logger *slog.Logger
}

// Warn logs the warning with the function as a structured attribute.
func (s LogSink) Warn(function, message string) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.LogAttrs(context.Background(), slog.LevelWarn, message,
		slog.String("function", function),
	)
}

// Warning is one recorded sink call.
type Warning struct {
	Function string `json:"function"`
	Message  string `json:"message"`
}

// Collector records warnings in memory, optionally forwarding them.
type Collector struct {
	// Next, if set, also receives every warning.
	Next Sink

	mu       sync.Mutex
	warnings []Warning
}

// Warn records the warning and forwards it to Next.
func (c *Collector) Warn(function, message string) {
	c.mu.Lock()
	c.warnings = append(c.warnings, Warning{Function: function, Message: message})
	c.mu.Unlock()
	if c.Next != nil {
		c.Next.Warn(function, message)
	}
}

// Warnings returns a copy of the recorded warnings in arrival order.
func (c *Collector) Warnings() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// Len returns the number of recorded warnings.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.warnings)
}

// Reset forgets all recorded warnings.
func (c *Collector) Reset() {
	c.mu.Lock()
	c.warnings = nil
	c.mu.Unlock()
}
