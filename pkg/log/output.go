package log

import (
	"io"
	"os"
	"sync"
)

// ConsoleOutput writes formatted entries to stderr (errors) or stdout.
type ConsoleOutput struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer
}

// NewConsoleOutput returns a ConsoleOutput writing to the process streams.
func NewConsoleOutput() *ConsoleOutput {
	return &ConsoleOutput{out: os.Stdout, err: os.Stderr}
}

// Write implements Output.
func (c *ConsoleOutput) Write(entry *Entry, formatted []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := c.out
	if entry.Level >= ErrorLevel {
		w = c.err
	}
	_, err := w.Write(formatted)
	return err
}

// Close implements Output. Process streams are not closed.
func (c *ConsoleOutput) Close() error { return nil }

// WriterOutput writes formatted entries to an arbitrary io.Writer.
// Useful in tests to capture output.
type WriterOutput struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterOutput returns an Output backed by w.
func NewWriterOutput(w io.Writer) *WriterOutput { return &WriterOutput{w: w} }

// Write implements Output.
func (o *WriterOutput) Write(_ *Entry, formatted []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := o.w.Write(formatted)
	return err
}

// Close implements Output.
func (o *WriterOutput) Close() error { return nil }
