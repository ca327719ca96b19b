package telemetry

import "sync"

// Sink accepts protocol lines. Implementations must never block the
// caller and must never return delivery failures to it.
type Sink interface {
	SendLine(line string)
}

// Nop is a Sink that discards everything. Used when telemetry is
// disabled.
type Nop struct{}

// SendLine implements Sink.
func (Nop) SendLine(string) {}

// Capture is a Sink that records every line in order. Intended for tests.
type Capture struct {
	mu    sync.Mutex
	lines []string
}

// SendLine implements Sink.
func (c *Capture) SendLine(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, line)
}

// Lines returns a copy of everything sent so far.
func (c *Capture) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

// Reset discards recorded lines.
func (c *Capture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}
