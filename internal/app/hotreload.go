package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// HotReloader watches the running binary and reports when a newer build
// replaces it. Enabled in development builds to prompt for a restart.
type HotReloader struct {
	execPath string
	interval time.Duration

	mu       sync.Mutex
	baseline time.Time
	cancel   context.CancelFunc

	onNewBinary func()
	onTick      func()
	log         *logrus.Entry
}

// NewHotReloader creates a watcher for the current executable.
func NewHotReloader(interval time.Duration) (*HotReloader, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	return NewHotReloaderFor(execPath, interval)
}

// NewHotReloaderFor watches the file at path.
func NewHotReloaderFor(path string, interval time.Duration) (*HotReloader, error) {
	// go build replaces the file, so follow symlinks to the real target.
	if real, err := filepath.EvalSymlinks(path); err == nil {
		path = real
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &HotReloader{
		execPath: path,
		interval: interval,
		baseline: info.ModTime(),
		log:      logrus.WithField("component", "hotreload"),
	}, nil
}

// OnNewBinary sets the callback invoked once when a newer binary appears.
// It runs on the watcher goroutine.
func (h *HotReloader) OnNewBinary(callback func()) {
	h.onNewBinary = callback
}

// OnTick sets a callback invoked on every poll.
func (h *HotReloader) OnTick(callback func()) {
	h.onTick = callback
}

// Start begins polling in a background goroutine. Calling Start again
// restarts the watcher.
func (h *HotReloader) Start(ctx context.Context) {
	h.mu.Lock()
	if h.cancel != nil {
		h.cancel()
	}
	ctx, h.cancel = context.WithCancel(ctx)
	h.mu.Unlock()
	go h.watchLoop(ctx)
}

// Stop ends polling.
func (h *HotReloader) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

func (h *HotReloader) watchLoop(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if h.onTick != nil {
				h.onTick()
			}
			if h.Changed() {
				h.log.WithField("path", h.execPath).Info("Newer binary detected")
				if h.onNewBinary != nil {
					h.onNewBinary()
				}
				// Fire once; ResetBaseline and Start resume watching.
				return
			}
		}
	}
}

// Changed reports whether the binary was modified after the baseline.
func (h *HotReloader) Changed() bool {
	info, err := os.Stat(h.execPath)
	if err != nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return info.ModTime().After(h.baseline)
}

// ExecPath returns the watched path.
func (h *HotReloader) ExecPath() string {
	return h.execPath
}

// ResetBaseline accepts the binary's current modification time.
func (h *HotReloader) ResetBaseline() {
	if info, err := os.Stat(h.execPath); err == nil {
		h.mu.Lock()
		h.baseline = info.ModTime()
		h.mu.Unlock()
	}
}

// Restart replaces the current process with the watched binary, keeping
// arguments and environment. It does not return on success.
func (h *HotReloader) Restart() error {
	return syscall.Exec(h.execPath, os.Args, os.Environ())
}
