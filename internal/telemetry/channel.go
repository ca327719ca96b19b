package telemetry

import (
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	dialTimeout  = 250 * time.Millisecond
	writeTimeout = 100 * time.Millisecond
)

// Channel is a Sink over a unix domain socket. The channel is named: the
// monitor listens on SocketPath(name) and the harness dials it.
//
// A Channel is usable whether or not a monitor is attached. Open succeeds
// even when nobody is listening; each failed send marks the connection
// dead and the next send re-dials. Concurrent use is safe, though the
// harness itself sends from a single goroutine.
type Channel struct {
	name   string
	logger *slog.Logger

	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

// SocketPath returns the filesystem path for a channel name.
func SocketPath(name string) string {
	return filepath.Join(os.TempDir(), name+".sock")
}

// Open establishes a channel with the given name. A missing monitor is
// not an error; the first successful send happens whenever one attaches.
func Open(name string, logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ch := &Channel{name: name, logger: logger}
	ch.mu.Lock()
	ch.dialLocked()
	ch.mu.Unlock()
	return ch
}

// SendLine implements Sink. Failures are swallowed: a monitor that is
// absent, slow or gone must never abort a trial.
func (c *Channel) SendLine(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.sendLocked(line)
}

// Close sends the terminal stop message and releases the channel. It is
// idempotent; closing an already-closed channel is a no-op.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.sendLocked(StopLine)
	c.closed = true
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	return nil
}

func (c *Channel) dialLocked() {
	conn, err := net.DialTimeout("unix", SocketPath(c.name), dialTimeout)
	if err != nil {
		c.logger.Debug("telemetry monitor not reachable", "channel", c.name, "error", err)
		return
	}
	c.conn = conn
}

func (c *Channel) sendLocked(line string) {
	if c.conn == nil {
		c.dialLocked()
		if c.conn == nil {
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		c.logger.Debug("telemetry send failed", "channel", c.name, "error", err)
		_ = c.conn.Close()
		c.conn = nil
	}
}
