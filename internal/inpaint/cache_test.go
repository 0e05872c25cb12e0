package inpaint

import (
	"context"
	"image"
	"image/color"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eimage "magic-eraser/internal/image"
)

type countingInpainter struct {
	calls atomic.Int32
}

func (c *countingInpainter) Inpaint(_ context.Context, src *eimage.Asset, _ image.Image) (*eimage.Asset, error) {
	c.calls.Add(1)
	return eimage.FromImage("out.png", src.Image)
}

func TestCachedInpainterReusesResults(t *testing.T) {
	next := &countingInpainter{}
	c, err := NewCachedInpainter(next, 1<<20)
	require.NoError(t, err)
	defer c.Close()

	src := testAsset(t, 4, 4)
	m := image.NewRGBA(image.Rect(0, 0, 4, 4))

	first, err := c.Inpaint(context.Background(), src, m)
	require.NoError(t, err)
	second, err := c.Inpaint(context.Background(), src, m)
	require.NoError(t, err)

	assert.Equal(t, int32(1), next.calls.Load())
	assert.Equal(t, first.Data, second.Data)

	m.SetRGBA(1, 1, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	_, err = c.Inpaint(context.Background(), src, m)
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
}
