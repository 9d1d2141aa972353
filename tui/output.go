package tui

import (
	"os"
	"sync"
)

// Output serializes writes to the terminal so an alert bell can never land
// inside a frame the renderer is still writing. It keeps the file's
// descriptor visible so Bubble Tea still detects a TTY.
type Output struct {
	mu sync.Mutex
	f  *os.File
}

// NewOutput wraps f.
func NewOutput(f *os.File) *Output {
	return &Output{f: f}
}

func (o *Output) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.f.Write(p)
}

func (o *Output) Read(p []byte) (int, error) { return o.f.Read(p) }

func (o *Output) Close() error { return o.f.Close() }

func (o *Output) Fd() uintptr { return o.f.Fd() }
