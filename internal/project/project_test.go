package project

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magic-eraser/internal/editor"
	eimage "magic-eraser/internal/image"
	"magic-eraser/pkg/geometry"
)

func asset(t *testing.T, name string, w, h int) *eimage.Asset {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Rect, &image.Uniform{C: color.RGBA{B: 128, A: 255}}, image.Point{}, draw.Src)
	a, err := eimage.FromImage(name, img)
	require.NoError(t, err)
	return a
}

func newManager(t *testing.T) (*Manager, *editor.Session) {
	t.Helper()
	s := editor.NewSession(editor.DefaultOptions())
	s.SetContainer(geometry.NewRect(0, 0, 200, 200))
	return NewManager(s), s
}

func TestAddSelectsFirstImage(t *testing.T) {
	m, s := newManager(t)
	a, b := asset(t, "a.png", 100, 100), asset(t, "b.png", 50, 50)

	require.NoError(t, m.Add(a, b))
	assert.Equal(t, 2, m.Len())
	assert.Same(t, a, m.Current())
	assert.Same(t, a, s.Asset())

	require.NoError(t, m.Add(a))
	assert.Equal(t, 2, m.Len())
}

func TestSelectRestoresMaskPerImage(t *testing.T) {
	m, s := newManager(t)
	a, b := asset(t, "a.png", 100, 100), asset(t, "b.png", 100, 100)
	require.NoError(t, m.Add(a, b))

	s.PointerDown(geometry.Point2D{X: 100, Y: 100})
	s.PointerUp(geometry.Point2D{X: 100, Y: 100})
	require.True(t, s.HasMask())

	require.NoError(t, m.Select(b.ID))
	assert.Same(t, b, s.Asset())
	assert.False(t, s.HasMask())

	require.NoError(t, m.Select(a.ID))
	assert.True(t, s.HasMask())
	assert.True(t, s.CanUndo())

	items := m.Images()
	require.Len(t, items, 2)
	assert.True(t, items[0].HasState)
	assert.True(t, items[1].HasState)
}

func TestSelectUnknown(t *testing.T) {
	m, _ := newManager(t)
	assert.ErrorIs(t, m.Select("nope"), ErrUnknownImage)
	assert.ErrorIs(t, m.Remove("nope"), ErrUnknownImage)
}

func TestAddLoadedLastOpenWins(t *testing.T) {
	m, s := newManager(t)
	a, b := asset(t, "a.png", 10, 10), asset(t, "b.png", 20, 20)

	slow := m.BeginOpen("a.png")
	fast := m.BeginOpen("b.png")

	require.NoError(t, m.AddLoaded(fast, b))
	assert.Same(t, b, s.Asset())

	err := m.AddLoaded(slow, a)
	assert.ErrorIs(t, err, editor.ErrStaleLoad)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, b.ID, m.CurrentID())
	assert.Same(t, b, s.Asset())

	require.NoError(t, m.Select(a.ID))
	assert.Same(t, a, s.Asset())
}

func TestSelectSupersedesPendingOpen(t *testing.T) {
	m, s := newManager(t)
	a, b := asset(t, "a.png", 10, 10), asset(t, "b.png", 10, 10)
	require.NoError(t, m.Add(a))

	pending := m.BeginOpen("late.png")
	require.NoError(t, m.Add(b))
	require.NoError(t, m.Select(b.ID))

	late := asset(t, "late.png", 10, 10)
	assert.ErrorIs(t, m.AddLoaded(pending, late), editor.ErrStaleLoad)
	assert.Same(t, b, s.Asset())
	assert.Equal(t, 3, m.Len())
}

func TestRemoveCurrentSelectsNext(t *testing.T) {
	m, s := newManager(t)
	a, b := asset(t, "a.png", 10, 10), asset(t, "b.png", 10, 10)
	require.NoError(t, m.Add(a, b))

	require.NoError(t, m.Remove(a.ID))
	assert.Same(t, b, m.Current())
	assert.Same(t, b, s.Asset())

	require.NoError(t, m.Remove(b.ID))
	assert.Nil(t, m.Current())
	assert.Nil(t, s.Asset())
	assert.Zero(t, m.Len())
}

func TestResults(t *testing.T) {
	m, _ := newManager(t)
	a := asset(t, "a.png", 10, 10)
	require.NoError(t, m.Add(a))

	clock := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	m.now = func() time.Time { clock = clock.Add(time.Second); return clock }

	m.SetProcessing(a.ID, ResultInpaint, true)
	assert.True(t, m.Processing(a.ID, ResultInpaint))
	assert.True(t, m.Images()[0].Processing)

	inpainted := image.NewRGBA(image.Rect(0, 0, 10, 10))
	blurred := image.NewRGBA(image.Rect(0, 0, 10, 10))
	require.NoError(t, m.SetResult(a.ID, ResultInpaint, inpainted))
	require.NoError(t, m.SetResult(a.ID, ResultBackgroundBlurred, blurred))
	assert.False(t, m.Processing(a.ID, ResultInpaint))

	r, ok := m.Result(a.ID, ResultInpaint)
	require.True(t, ok)
	assert.Same(t, inpainted, r.Image)

	latest, ok := m.LatestResult(a.ID)
	require.True(t, ok)
	assert.Equal(t, ResultBackgroundBlurred, latest.Kind)

	require.NoError(t, m.ClearResults(a.ID))
	_, ok = m.LatestResult(a.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, m.SetResult("missing", ResultInpaint, inpainted), ErrUnknownImage)
}

func TestReset(t *testing.T) {
	m, s := newManager(t)
	require.NoError(t, m.Add(asset(t, "a.png", 10, 10)))
	m.Reset()
	assert.Zero(t, m.Len())
	assert.Nil(t, s.Asset())
}
