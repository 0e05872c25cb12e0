package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magic-eraser/internal/brush"
)

func TestMissingFileGivesDefaults(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), "nope", prefsFile))
	assert.Equal(t, "", p.String(KeyLastDir))
	assert.Equal(t, brush.DefaultSettings(), p.Brush())
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), appDir, prefsFile)
	p := LoadFrom(path)
	p.SetString(KeyIOPaintURL, "http://gpu:8080")
	p.SetBrush(brush.Settings{Size: 42, Opacity: 60, Color: "#ff0000"})
	require.NoError(t, p.Save())

	q := LoadFrom(path)
	assert.Equal(t, "http://gpu:8080", q.String(KeyIOPaintURL))
	bs := q.Brush()
	assert.Equal(t, 42, bs.Size)
	assert.InDelta(t, 60, bs.Opacity, 1e-9)
	assert.Equal(t, "#ff0000", bs.Color)
}

func TestSaveIfChangedSkipsCleanPrefs(t *testing.T) {
	path := filepath.Join(t.TempDir(), prefsFile)
	p := LoadFrom(path)
	require.NoError(t, p.SaveIfChanged())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	p.SetFloat(KeyBlurAmount, 35)
	require.NoError(t, p.SaveIfChanged())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestBrushNormalizesSavedValues(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), prefsFile))
	p.SetFloat(KeyBrushSize, 5000)
	p.SetString(KeyBrushColor, "not-a-color")
	bs := p.Brush()
	assert.Equal(t, brush.MaxSize, bs.Size)
	assert.Equal(t, brush.DefaultColor, bs.Color)
}
