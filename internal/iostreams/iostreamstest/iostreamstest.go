// Package iostreamstest provides test doubles for the iostreams package.
// Command tests should use iostreamstest.New() to get IOStreams backed by
// buffers and a nop logger.
package iostreamstest

import (
	"bytes"
	"sync"

	"github.com/schmitthub/cosytest/internal/iostreams"
	"github.com/schmitthub/cosytest/internal/logger/loggertest"
)

// TestIOStreams wraps IOStreams for testing with accessible buffers.
type TestIOStreams struct {
	*iostreams.IOStreams
	InBuf  *Buffer
	OutBuf *Buffer
	ErrBuf *Buffer
}

// New creates IOStreams for testing: not a TTY, colors disabled, nop logger.
func New() *TestIOStreams {
	in, out, errOut := &Buffer{}, &Buffer{}, &Buffer{}

	// Struct literal zero values mean "not a TTY" and "color disabled".
	ios := &iostreams.IOStreams{
		In:     in,
		Out:    out,
		ErrOut: errOut,
		Logger: loggertest.NewNop(),
	}

	return &TestIOStreams{
		IOStreams: ios,
		InBuf:     in,
		OutBuf:    out,
		ErrBuf:    errOut,
	}
}

// SetTTY makes stdout look like a terminal with colors on and a fixed width.
func (t *TestIOStreams) SetTTY(width int) {
	t.SetOutputTTY(true)
	t.SetColorEnabled(true)
	t.SetTerminalWidth(width)
}

// Buffer is a goroutine-safe bytes.Buffer.
type Buffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *Buffer) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Read(p)
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Reset discards buffered data.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// SetInput replaces the buffer contents, for use as stdin.
func (b *Buffer) SetInput(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
	b.buf.WriteString(s)
}
