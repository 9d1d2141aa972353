package alert

import (
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// CommandPlayer plays sounds by running an external command. Every "{src}"
// in Command is replaced with the sound reference, e.g.
// "mpv --no-video --really-quiet {src}".
type CommandPlayer struct {
	Command string
}

// Load prepares the command line for src.
func (p CommandPlayer) Load(src string) (Handle, error) {
	fields := strings.Fields(p.Command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no sound command configured")
	}
	args := make([]string, 0, len(fields)+1)
	substituted := false
	for _, f := range fields {
		if strings.Contains(f, "{src}") {
			substituted = true
			f = strings.ReplaceAll(f, "{src}", src)
		}
		args = append(args, f)
	}
	if !substituted {
		args = append(args, src)
	}
	if _, err := exec.LookPath(args[0]); err != nil {
		return nil, fmt.Errorf("sound command %q: %w", args[0], err)
	}
	return &commandHandle{args: args}, nil
}

type commandHandle struct {
	mu   sync.Mutex
	args []string
	cmd  *exec.Cmd
}

// Play starts the command without waiting for it. A sound still playing
// from the previous call is cut off.
func (h *commandHandle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.killLocked()
	cmd := exec.Command(h.args[0], h.args[1:]...)
	if err := cmd.Start(); err != nil {
		return err
	}
	h.cmd = cmd
	go cmd.Wait()
	return nil
}

func (h *commandHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.killLocked()
	return nil
}

func (h *commandHandle) killLocked() {
	if h.cmd != nil && h.cmd.Process != nil {
		h.cmd.Process.Kill()
	}
	h.cmd = nil
}

// BellPlayer rings the terminal bell for every sound.
type BellPlayer struct {
	W io.Writer
}

func (p BellPlayer) Load(string) (Handle, error) {
	return bell{w: p.W}, nil
}

type bell struct{ w io.Writer }

func (b bell) Play() error {
	_, err := io.WriteString(b.w, "\a")
	return err
}

func (bell) Close() error { return nil }

// NopPlayer never makes a sound.
type NopPlayer struct{}

func (NopPlayer) Load(string) (Handle, error) { return nopHandle{}, nil }

type nopHandle struct{}

func (nopHandle) Play() error  { return nil }
func (nopHandle) Close() error { return nil }
