package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestChangedAfterNewerBuild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bin")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o755))
	start := time.Now().Add(-time.Hour)
	touch(t, path, start)

	h, err := NewHotReloaderFor(path, time.Second)
	require.NoError(t, err)
	assert.False(t, h.Changed())

	touch(t, path, start.Add(time.Minute))
	assert.True(t, h.Changed())

	h.ResetBaseline()
	assert.False(t, h.Changed())
}

func TestWatchLoopFiresOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bin")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o755))
	start := time.Now().Add(-time.Hour)
	touch(t, path, start)

	h, err := NewHotReloaderFor(path, 5*time.Millisecond)
	require.NoError(t, err)
	fired := make(chan struct{}, 4)
	h.OnNewBinary(func() { fired <- struct{}{} })

	h.Start(context.Background())
	defer h.Stop()
	touch(t, path, start.Add(time.Minute))

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("new binary not reported")
	}
	time.Sleep(30 * time.Millisecond)
	assert.Len(t, fired, 0)
}

func TestMissingBinary(t *testing.T) {
	_, err := NewHotReloaderFor(filepath.Join(t.TempDir(), "missing"), time.Second)
	assert.Error(t, err)
}
