package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineFormats(t *testing.T) {
	assert.Equal(t, "test trial-00-create-always", TestLine("trial-00-create-always"))
	assert.Equal(t, "status Compressing entry-0001.bin", StatusLine("Compressing entry-0001.bin"))
	assert.Equal(t, "pb 1 max 17", BarMaxLine(BarArchive, 17))
	assert.Equal(t, "pb 2 value 65536", BarValueLine(BarEntry, 65536))
	assert.Equal(t, "pb 1 step", BarStepLine(BarArchive))
	assert.Equal(t, "stop", StopLine)
}

func TestStatusf(t *testing.T) {
	assert.Equal(t, "status 42%", Statusf("%d%%", 42))
}

func TestSanitize_FlattensLineBreaks(t *testing.T) {
	assert.Equal(t, "status one two three", StatusLine("one\ntwo\r\nthree"))
	assert.Equal(t, "test a b", TestLine("a\rb"))
}

func TestBarValueLine_LargeValues(t *testing.T) {
	// Byte counters exceed 32 bits for size-extended archives.
	assert.Equal(t, "pb 2 max 5368709120", BarMaxLine(BarEntry, 5<<30))
}

func TestCapture(t *testing.T) {
	var c Capture
	c.SendLine("test a")
	c.SendLine("pb 1 max 3")

	assert.Equal(t, []string{"test a", "pb 1 max 3"}, c.Lines())

	// Lines returns a copy; mutating it must not affect the capture.
	c.Lines()[0] = "mutated"
	assert.Equal(t, "test a", c.Lines()[0])

	c.Reset()
	assert.Empty(t, c.Lines())
}

func TestNopDiscards(t *testing.T) {
	var n Nop
	n.SendLine("status anything")
}
