// Package batch applies one mask to many images through an inpainter.
package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	eimage "magic-eraser/internal/image"
	"magic-eraser/internal/inpaint"
	"magic-eraser/internal/mask"
)

// ErrRunning is returned when Run is called while a run is in progress.
var ErrRunning = errors.New("batch already running")

// ErrNoMask is returned when Run is called without a mask source.
var ErrNoMask = errors.New("no mask to apply")

// Status is the processing state of one item.
type Status int

const (
	StatusPending Status = iota
	StatusProcessing
	StatusCompleted
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Item is one image in the batch.
type Item struct {
	Asset    *eimage.Asset
	Status   Status
	Progress int
	Result   *eimage.Asset
	Err      error
}

// Stats summarizes a batch.
type Stats struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
}

// Progress is the finished fraction, counting failures as finished.
func (s Stats) Progress() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed+s.Failed) / float64(s.Total)
}

// MaskSource produces the mask for an image of the given size.
// *editor.Session satisfies it.
type MaskSource interface {
	ExportMaskScaledTo(width, height int) (*image.RGBA, error)
}

// StaticMask adapts a fixed mask image to MaskSource.
type StaticMask struct {
	Image image.Image
}

// ExportMaskScaledTo scales the mask to width×height.
func (m StaticMask) ExportMaskScaledTo(width, height int) (*image.RGBA, error) {
	if m.Image == nil {
		return nil, ErrNoMask
	}
	return mask.Scale(m.Image, width, height), nil
}

// Options configures a Processor.
type Options struct {
	Concurrency int
	Delay       time.Duration
	// OnProgress is called after every status change of an item.
	OnProgress func(index int, item Item)
}

// DefaultOptions processes one image at a time with a short pause between
// requests.
func DefaultOptions() Options {
	return Options{Concurrency: 1, Delay: 100 * time.Millisecond}
}

// Processor runs a batch.
type Processor struct {
	mu        sync.Mutex
	items     []Item
	inpainter inpaint.Inpainter
	masks     MaskSource
	opts      Options
	cancel    context.CancelFunc
	log       *logrus.Entry
}

// New creates a Processor.
func New(inpainter inpaint.Inpainter, opts Options) *Processor {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Processor{
		inpainter: inpainter,
		opts:      opts,
		log:       logrus.WithField("component", "batch"),
	}
}

// SetMask sets where masks come from.
func (p *Processor) SetMask(src MaskSource) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.masks = src
}

// Add appends pending items.
func (p *Processor) Add(assets ...*eimage.Asset) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, a := range assets {
		p.items = append(p.items, Item{Asset: a})
	}
}

// Remove drops the item at index. It does nothing while running.
func (p *Processor) Remove(index int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel == nil && index >= 0 && index < len(p.items) {
		p.items = append(p.items[:index], p.items[index+1:]...)
	}
}

// Clear removes every item. It does nothing while running.
func (p *Processor) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel == nil {
		p.items = nil
	}
}

// RetryFailed resets failed items to pending.
func (p *Processor) RetryFailed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.items {
		if p.items[i].Status == StatusError {
			p.items[i] = Item{Asset: p.items[i].Asset}
		}
	}
}

// Items returns a copy of the items.
func (p *Processor) Items() []Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Item(nil), p.items...)
}

// Completed returns the items that have a result.
func (p *Processor) Completed() []Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Item
	for _, it := range p.items {
		if it.Status == StatusCompleted && it.Result != nil {
			out = append(out, it)
		}
	}
	return out
}

// Stats counts items by status.
func (p *Processor) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := Stats{Total: len(p.items)}
	for _, it := range p.items {
		switch it.Status {
		case StatusPending:
			s.Pending++
		case StatusProcessing:
			s.Processing++
		case StatusCompleted:
			s.Completed++
		case StatusError:
			s.Failed++
		}
	}
	return s
}

// Running reports whether Run is in progress.
func (p *Processor) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Stop cancels a run. Items already sent finish or fail with the
// cancellation; the rest stay pending.
func (p *Processor) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}

// Run processes every item that is not completed yet. Failures are
// recorded on the item and do not stop the batch.
func (p *Processor) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return ErrRunning
	}
	if p.masks == nil {
		p.mu.Unlock()
		return ErrNoMask
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	n := len(p.items)
	p.mu.Unlock()

	defer func() {
		cancel()
		p.mu.Lock()
		p.cancel = nil
		p.mu.Unlock()
	}()

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)

	dispatched := 0
	for i := 0; i < n; i++ {
		asset, ok := p.claim(i)
		if !ok {
			continue
		}
		if dispatched > 0 && p.opts.Delay > 0 {
			select {
			case <-gctx.Done():
			case <-time.After(p.opts.Delay):
			}
		}
		if gctx.Err() != nil {
			p.update(i, func(it *Item) { it.Status = StatusPending })
			break
		}
		dispatched++
		g.Go(func() error {
			p.process(gctx, i, asset)
			return nil
		})
	}
	_ = g.Wait()

	stats := p.Stats()
	p.log.WithFields(logrus.Fields{
		"completed": stats.Completed,
		"failed":    stats.Failed,
		"pending":   stats.Pending,
		"duration":  time.Since(start),
	}).Info("Batch finished")
	return ctx.Err()
}

// claim marks item i as processing unless it is already done.
func (p *Processor) claim(i int) (*eimage.Asset, bool) {
	p.mu.Lock()
	done := i >= len(p.items) || p.items[i].Status == StatusCompleted
	p.mu.Unlock()
	if done {
		return nil, false
	}
	var asset *eimage.Asset
	p.update(i, func(it *Item) {
		it.Status = StatusProcessing
		it.Progress = 0
		it.Err = nil
		asset = it.Asset
	})
	return asset, asset != nil
}

func (p *Processor) process(ctx context.Context, i int, asset *eimage.Asset) {
	result, err := p.inpaintOne(ctx, asset)
	p.update(i, func(it *Item) {
		if err != nil {
			it.Status = StatusError
			it.Err = err
			it.Progress = 0
			return
		}
		it.Status = StatusCompleted
		it.Result = result
		it.Progress = 100
	})
	if err != nil {
		p.log.WithError(err).WithField("image", asset.Name).Warn("Batch item failed")
	}
}

func (p *Processor) inpaintOne(ctx context.Context, asset *eimage.Asset) (*eimage.Asset, error) {
	p.mu.Lock()
	masks := p.masks
	p.mu.Unlock()

	scaled, err := masks.ExportMaskScaledTo(asset.Width(), asset.Height())
	if err != nil {
		return nil, fmt.Errorf("failed to scale mask for %s: %w", asset.Name, err)
	}
	return p.inpainter.Inpaint(ctx, asset, mask.NormalizeForInpaint(scaled))
}

// update mutates item i if it still exists and reports the change.
func (p *Processor) update(i int, fn func(*Item)) bool {
	p.mu.Lock()
	if i >= len(p.items) {
		p.mu.Unlock()
		return false
	}
	fn(&p.items[i])
	item := p.items[i]
	cb := p.opts.OnProgress
	p.mu.Unlock()

	if cb != nil {
		cb(i, item)
	}
	return true
}
