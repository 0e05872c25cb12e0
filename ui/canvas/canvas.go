// Package canvas provides the interactive mask editing canvas.
package canvas

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"magic-eraser/internal/editor"
	"magic-eraser/internal/viewport"
	"magic-eraser/pkg/geometry"
)

// EditorCanvas displays an editor session and forwards pointer, wheel and
// resize events to it. All coordinates handed to the session are relative
// to the widget's top-left corner.
type EditorCanvas struct {
	widget.BaseWidget

	session *editor.Session
	raster  *fynecanvas.Raster

	mu       sync.Mutex
	pressed  bool
	hovering bool
	cursor   fyne.Position
	busy     bool

	onPointer func(p geometry.Point2D)
}

// NewEditorCanvas creates a canvas bound to session and subscribes to its
// change events.
func NewEditorCanvas(session *editor.Session) *EditorCanvas {
	ec := &EditorCanvas{session: session}
	ec.raster = fynecanvas.NewRaster(ec.draw)
	ec.raster.SetMinSize(fyne.NewSize(320, 240))
	ec.ExtendBaseWidget(ec)

	refresh := func(any) { ec.raster.Refresh() }
	for _, typ := range []editor.EventType{
		editor.EventImageLoaded,
		editor.EventViewChanged,
		editor.EventMaskChanged,
		editor.EventResultChanged,
		editor.EventToolChanged,
		editor.EventBrushChanged,
	} {
		session.On(typ, refresh)
	}
	session.On(editor.EventDisabledChanged, func(data any) {
		busy, _ := data.(bool)
		ec.SetBusy(busy)
	})
	return ec
}

// Session returns the session the canvas displays.
func (ec *EditorCanvas) Session() *editor.Session {
	return ec.session
}

// SetBusy dims the canvas while a request is running.
func (ec *EditorCanvas) SetBusy(busy bool) {
	ec.mu.Lock()
	ec.busy = busy
	ec.mu.Unlock()
	ec.raster.Refresh()
}

// OnPointer registers a callback receiving the image coordinate under the
// pointer as it moves.
func (ec *EditorCanvas) OnPointer(callback func(p geometry.Point2D)) {
	ec.onPointer = callback
}

// Refresh redraws the canvas.
func (ec *EditorCanvas) Refresh() {
	ec.raster.Refresh()
}

// MouseDown implements desktop.Mouseable.
func (ec *EditorCanvas) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	ec.mu.Lock()
	ec.pressed = true
	ec.cursor = ev.Position
	ec.mu.Unlock()
	ec.session.PointerDown(toPoint(ev.Position))
}

// MouseUp implements desktop.Mouseable.
func (ec *EditorCanvas) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	ec.mu.Lock()
	wasPressed := ec.pressed
	ec.pressed = false
	ec.mu.Unlock()
	if wasPressed {
		ec.session.PointerUp(toPoint(ev.Position))
	}
}

// MouseIn implements desktop.Hoverable.
func (ec *EditorCanvas) MouseIn(ev *desktop.MouseEvent) {
	ec.mu.Lock()
	ec.hovering = true
	ec.cursor = ev.Position
	ec.mu.Unlock()
	ec.raster.Refresh()
}

// MouseMoved implements desktop.Hoverable.
func (ec *EditorCanvas) MouseMoved(ev *desktop.MouseEvent) {
	ec.mu.Lock()
	ec.cursor = ev.Position
	pressed := ec.pressed
	ec.mu.Unlock()

	p := toPoint(ev.Position)
	if pressed {
		ec.session.PointerMove(p)
	}
	if ec.onPointer != nil {
		ec.onPointer(ec.session.ScreenToCanvas(p))
	}
	if ec.session.Tool() == viewport.ToolBrush {
		ec.raster.Refresh()
	}
}

// MouseOut implements desktop.Hoverable. Leaving the widget ends any
// gesture in progress.
func (ec *EditorCanvas) MouseOut() {
	ec.mu.Lock()
	ec.hovering = false
	wasPressed := ec.pressed
	ec.pressed = false
	ec.mu.Unlock()
	if wasPressed {
		ec.session.PointerLeave()
	}
	ec.raster.Refresh()
}

// Scrolled implements fyne.Scrollable. The wheel zooms around the pointer.
func (ec *EditorCanvas) Scrolled(ev *fyne.ScrollEvent) {
	switch {
	case ev.Scrolled.DY > 0:
		ec.session.WheelZoom(1, toPoint(ev.Position))
	case ev.Scrolled.DY < 0:
		ec.session.WheelZoom(-1, toPoint(ev.Position))
	}
}

// Cursor implements desktop.Cursorable.
func (ec *EditorCanvas) Cursor() desktop.Cursor {
	if ec.session.Tool() == viewport.ToolBrush && !ec.session.ViewingResult() {
		return desktop.HiddenCursor
	}
	return desktop.DefaultCursor
}

// CreateRenderer implements fyne.Widget.
func (ec *EditorCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &editorCanvasRenderer{canvas: ec}
}

// draw renders the session at widget resolution; the raster scales the
// frame to device pixels.
func (ec *EditorCanvas) draw(w, h int) image.Image {
	size := ec.Size()
	if size.Width >= 1 && size.Height >= 1 {
		w, h = int(size.Width), int(size.Height)
	}
	if w < 1 || h < 1 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	output := image.NewRGBA(image.Rect(0, 0, w, h))
	drawCheckerboard(output, 12, checkLight, checkDark)
	ec.session.Render(output)

	ec.mu.Lock()
	ov := Overlay{
		Cursor:     image.Pt(int(ec.cursor.X), int(ec.cursor.Y)),
		ShowCursor: ec.hovering && ec.session.Tool() == viewport.ToolBrush && !ec.session.ViewingResult(),
		Busy:       ec.busy,
	}
	ec.mu.Unlock()

	if ec.session.Asset() != nil {
		view := ec.session.View()
		ov.Scale = view.Scale
		ov.CursorRadius = ec.session.BrushSettings().Radius() * view.Scale
	}
	ov.Draw(output)
	return output
}

func toPoint(p fyne.Position) geometry.Point2D {
	return geometry.NewPoint2D(float64(p.X), float64(p.Y))
}

type editorCanvasRenderer struct {
	canvas *EditorCanvas
}

func (r *editorCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.raster.Resize(size)
	r.canvas.session.SetContainer(geometry.NewRect(0, 0, float64(size.Width), float64(size.Height)))
}

func (r *editorCanvasRenderer) MinSize() fyne.Size {
	return r.canvas.raster.MinSize()
}

func (r *editorCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *editorCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.raster}
}

func (r *editorCanvasRenderer) Destroy() {}
