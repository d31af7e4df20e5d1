package terminal

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestErrorPlainOnBuffer(t *testing.T) {
	var buf bytes.Buffer
	w := NewWithOutput(&buf)
	w.Error("lattice", "needs a terminal\n  - run it directly\n")
	assert.Equal(t, "lattice: needs a terminal\n  - run it directly\n", buf.String())
}

func TestWarnPrefix(t *testing.T) {
	var buf bytes.Buffer
	NewWithOutput(&buf).Warn("tracing off: %s", "disk full")
	assert.Equal(t, "warning: tracing off: disk full\n", buf.String())
}

func TestErrorColoredWhenForced(t *testing.T) {
	var buf bytes.Buffer
	w := NewWithOutput(&buf, termenv.WithProfile(termenv.TrueColor))
	w.Error("lattice", "boom")
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "lattice: boom")
}
