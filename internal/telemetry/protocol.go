package telemetry

import (
	"fmt"
	"strconv"
	"strings"
)

// Bar indices on the monitor. Bar 1 counts entries at the archive level,
// bar 2 counts bytes within the current entry.
const (
	BarArchive = 1
	BarEntry   = 2
)

// StopLine is the terminal protocol message.
const StopLine = "stop"

// TestLine formats a scenario announcement.
func TestLine(name string) string {
	return "test " + sanitize(name)
}

// StatusLine formats a free-text status message.
func StatusLine(text string) string {
	return "status " + sanitize(text)
}

// BarMaxLine formats a bar maximum command.
func BarMaxLine(bar int, max int64) string {
	return "pb " + strconv.Itoa(bar) + " max " + strconv.FormatInt(max, 10)
}

// BarValueLine formats a bar value command.
func BarValueLine(bar int, value int64) string {
	return "pb " + strconv.Itoa(bar) + " value " + strconv.FormatInt(value, 10)
}

// BarStepLine formats a bar increment command.
func BarStepLine(bar int) string {
	return "pb " + strconv.Itoa(bar) + " step"
}

// Statusf formats a status line from a printf-style message.
func Statusf(format string, args ...interface{}) string {
	return StatusLine(fmt.Sprintf(format, args...))
}

// sanitize strips line breaks so a free-text field cannot split into two
// protocol messages. The grammar has no escaping; flattening is the only
// safe option.
func sanitize(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	r := strings.NewReplacer("\r", " ", "\n", " ")
	return r.Replace(s)
}
