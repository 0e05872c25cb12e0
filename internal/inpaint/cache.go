package inpaint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
	"github.com/sirupsen/logrus"

	eimage "magic-eraser/internal/image"
)

// DefaultCacheBytes bounds the memory used for cached results.
const DefaultCacheBytes = 256 << 20

// CachedInpainter memoizes results by the exact image and mask bytes, so
// re-running an unchanged mask does not hit the server again.
type CachedInpainter struct {
	next   Inpainter
	client *ristretto.Cache
	cache  *cache.Cache[[]byte]
	log    *logrus.Entry
}

// NewCachedInpainter wraps next with a result cache of at most maxBytes.
func NewCachedInpainter(next Inpainter, maxBytes int64) (*CachedInpainter, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultCacheBytes
	}
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}
	return &CachedInpainter{
		next:   next,
		client: client,
		cache:  cache.New[[]byte](ristretto_store.NewRistretto(client)),
		log:    logrus.WithField("component", "inpaint-cache"),
	}, nil
}

// Inpaint returns a cached result or delegates to the wrapped inpainter.
func (c *CachedInpainter) Inpaint(ctx context.Context, src *eimage.Asset, mask image.Image) (*eimage.Asset, error) {
	key, err := cacheKey(src, mask)
	if err != nil {
		return nil, err
	}

	if data, err := c.cache.Get(ctx, key); err == nil {
		if result, err := eimage.Decode(resultName(src.Name), data); err == nil {
			c.log.WithField("key", key[:12]).Debug("Inpaint cache hit")
			return result, nil
		}
		_ = c.cache.Delete(ctx, key)
	}

	result, err := c.next.Inpaint(ctx, src, mask)
	if err != nil {
		return nil, err
	}
	if len(result.Data) > 0 {
		if err := c.cache.Set(ctx, key, result.Data, store.WithCost(int64(len(result.Data)))); err != nil {
			c.log.WithError(err).Debug("Failed to cache inpaint result")
		}
		c.client.Wait()
	}
	return result, nil
}

// Close releases the cache.
func (c *CachedInpainter) Close() {
	c.client.Close()
}

func cacheKey(src *eimage.Asset, mask image.Image) (string, error) {
	if src == nil || src.Image == nil {
		return "", errors.New("inpaint: no source image")
	}
	data := src.Data
	if len(data) == 0 {
		var err error
		if data, err = eimage.EncodePNG(src.Image); err != nil {
			return "", err
		}
	}
	maskPNG, err := eimage.EncodePNG(mask)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write(data)
	h.Write([]byte{0})
	h.Write(maskPNG)
	return hex.EncodeToString(h.Sum(nil)), nil
}
