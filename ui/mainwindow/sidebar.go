package mainwindow

import (
	"fmt"
	"slices"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"magic-eraser/internal/background"
	"magic-eraser/internal/brush"
	"magic-eraser/internal/project"
	"magic-eraser/internal/viewport"
	"magic-eraser/pkg/colorutil"
	"magic-eraser/ui/prefs"
)

var toolLabels = map[viewport.Tool]string{
	viewport.ToolBrush: "Brush",
	viewport.ToolPan:   "Pan",
}

// sidebar holds the tool, brush and image list controls.
type sidebar struct {
	mw *MainWindow

	tool      *widget.RadioGroup
	size      *widget.Slider
	sizeLabel *widget.Label
	opacity   *widget.Slider
	opLabel   *widget.Label
	color     *widget.Select
	blur      *widget.Slider
	blurLabel *widget.Label
	images    *widget.List

	items     []project.Item
	container fyne.CanvasObject
}

func newSidebar(mw *MainWindow) *sidebar {
	sb := &sidebar{mw: mw}
	bs := mw.session.BrushSettings()

	sb.tool = widget.NewRadioGroup([]string{toolLabels[viewport.ToolBrush], toolLabels[viewport.ToolPan]}, func(label string) {
		for t, l := range toolLabels {
			if l == label {
				mw.session.SetTool(t)
			}
		}
	})
	sb.tool.Horizontal = true
	sb.tool.Required = true
	sb.tool.SetSelected(toolLabels[mw.session.Tool()])

	sb.sizeLabel = widget.NewLabel("")
	sb.size = widget.NewSlider(brush.MinSize, brush.MaxSize)
	sb.size.Step = 1
	sb.size.SetValue(float64(bs.Size))
	sb.size.OnChanged = func(v float64) {
		sb.applyBrush(func(bs *brush.Settings) { bs.Size = int(v) })
	}

	sb.opLabel = widget.NewLabel("")
	sb.opacity = widget.NewSlider(0, 100)
	sb.opacity.Step = 1
	sb.opacity.SetValue(bs.Opacity)
	sb.opacity.OnChanged = func(v float64) {
		sb.applyBrush(func(bs *brush.Settings) { bs.Opacity = v })
	}

	colors := slices.Clone(colorutil.Presets)
	if !slices.Contains(colors, bs.Color) {
		colors = append([]string{bs.Color}, colors...)
	}
	sb.color = widget.NewSelect(colors, func(hex string) {
		sb.applyBrush(func(bs *brush.Settings) { bs.Color = hex })
	})
	sb.color.SetSelected(bs.Color)

	sb.blurLabel = widget.NewLabel("")
	sb.blur = widget.NewSlider(0, 100)
	sb.blur.Step = 1
	sb.blur.OnChanged = func(v float64) {
		sb.blurLabel.SetText(fmt.Sprintf("Blur: %.0f", v))
		mw.prefs.SetFloat(prefs.KeyBlurAmount, v)
	}
	sb.blur.SetValue(mw.prefs.FloatWithFallback(prefs.KeyBlurAmount, background.DefaultBlurIntensity))

	sb.images = widget.NewList(
		func() int { return len(sb.items) },
		func() fyne.CanvasObject { return widget.NewLabel("image") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < 0 || id >= len(sb.items) {
				return
			}
			obj.(*widget.Label).SetText(itemLabel(sb.items[id]))
		},
	)
	sb.images.OnSelected = func(id widget.ListItemID) {
		if id < 0 || id >= len(sb.items) {
			return
		}
		if err := mw.project.Select(sb.items[id].Asset.ID); err != nil {
			mw.showError("Failed to open image", err)
		}
	}

	sb.updateLabels(bs)

	brushCard := widget.NewCard("Brush", "", container.NewVBox(
		sb.tool,
		sb.sizeLabel, sb.size,
		sb.opLabel, sb.opacity,
		widget.NewLabel("Color"), sb.color,
	))
	processCard := widget.NewCard("Process", "", container.NewVBox(
		widget.NewButton("Erase", mw.onErase),
		widget.NewButton("Apply Result", mw.onApplyResult),
		widget.NewButton("Remove Background", mw.onRemoveBackground),
		sb.blurLabel, sb.blur,
		widget.NewButton("Blur Background", mw.onBlurBackground),
		widget.NewButton("Replace Background...", mw.onReplaceBackground),
	))

	sb.container = container.NewBorder(
		container.NewVBox(brushCard, processCard),
		nil, nil, nil,
		widget.NewCard("Images", "", sb.images),
	)
	return sb
}

// Container returns the sidebar's root object.
func (sb *sidebar) Container() fyne.CanvasObject {
	return sb.container
}

func (sb *sidebar) applyBrush(edit func(*brush.Settings)) {
	bs := sb.mw.session.BrushSettings()
	edit(&bs)
	sb.mw.session.SetBrushSettings(bs)
	bs = sb.mw.session.BrushSettings()
	sb.mw.prefs.SetBrush(bs)
	sb.updateLabels(bs)
}

func (sb *sidebar) updateLabels(bs brush.Settings) {
	sb.sizeLabel.SetText(fmt.Sprintf("Size: %d px", bs.Size))
	sb.opLabel.SetText(fmt.Sprintf("Opacity: %.0f%%", bs.Opacity))
}

// nudgeBrushSize changes the brush size by delta, moving the slider with it.
func (sb *sidebar) nudgeBrushSize(delta int) {
	size := sb.mw.session.BrushSettings().Size + delta
	sb.size.SetValue(float64(max(brush.MinSize, min(brush.MaxSize, size))))
}

// showTool reflects the session tool in the radio group.
func (sb *sidebar) showTool(t viewport.Tool) {
	if sb.tool.Selected != toolLabels[t] {
		sb.tool.SetSelected(toolLabels[t])
	}
}

// refreshImages reloads the image list from the project.
func (sb *sidebar) refreshImages() {
	sb.items = sb.mw.project.Images()
	sb.images.Refresh()
	current := sb.mw.project.CurrentID()
	for i, it := range sb.items {
		if it.Asset.ID == current {
			sb.images.Select(i)
			return
		}
	}
	sb.images.UnselectAll()
}

func itemLabel(it project.Item) string {
	label := it.Asset.Name
	switch {
	case it.Processing:
		label += "  (processing)"
	case it.Results > 0:
		label += fmt.Sprintf("  (%d result", it.Results)
		if it.Results > 1 {
			label += "s"
		}
		label += ")"
	}
	return label
}
