package mainwindow

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"magic-eraser/internal/background"
	"magic-eraser/internal/editor"
	eimage "magic-eraser/internal/image"
	"magic-eraser/internal/project"
	"magic-eraser/pkg/colorutil"
	"magic-eraser/ui/prefs"
)

const pingTimeout = 5 * time.Second

var errNoImage = errors.New("open an image first")

// job produces a processed image from the current source image.
type job func(ctx context.Context, src *eimage.Asset) (*eimage.Asset, error)

func (mw *MainWindow) onOpenImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		mw.saveLastDir(path)
		name := filepath.Base(path)

		mw.openAsync(name, func() ([]*eimage.Asset, error) {
			defer reader.Close()
			data, err := io.ReadAll(reader)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", name, err)
			}
			asset, err := eimage.Decode(name, data)
			if err != nil {
				return nil, err
			}
			return []*eimage.Asset{asset}, nil
		})
	}, mw.Window)

	fd.SetFilter(storage.NewExtensionFileFilter(eimage.SupportedFormats()))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onOpenFolder() {
	fd := dialog.NewFolderOpen(func(dir fyne.ListableURI, err error) {
		if err != nil || dir == nil {
			return
		}
		mw.prefs.SetString(prefs.KeyLastDir, dir.Path())
		uris, err := dir.List()
		if err != nil {
			mw.showError("Failed to list folder", err)
			return
		}

		var paths []string
		for _, u := range uris {
			if eimage.IsSupportedFormat(u.Path()) {
				paths = append(paths, u.Path())
			}
		}
		if len(paths) == 0 {
			mw.updateStatus("No supported images in " + dir.Name())
			return
		}
		mw.OpenFiles(paths)
	}, mw.Window)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// OpenFiles decodes the image files at paths in the background and adds
// them to the project. Unreadable files are skipped.
func (mw *MainWindow) OpenFiles(paths []string) {
	if len(paths) == 0 {
		return
	}
	name := filepath.Base(paths[0])
	if len(paths) > 1 {
		name = fmt.Sprintf("%d images", len(paths))
	}
	mw.openAsync(name, func() ([]*eimage.Asset, error) {
		var assets []*eimage.Asset
		for _, path := range paths {
			a, err := eimage.Load(path)
			if err != nil {
				mw.log.WithError(err).WithField("path", path).Warn("Skipping unreadable image")
				continue
			}
			assets = append(assets, a)
		}
		if len(assets) == 0 {
			return nil, fmt.Errorf("none of the %d files could be opened", len(paths))
		}
		return assets, nil
	})
}

// openAsync runs decode off the UI goroutine. The load is reserved first so
// that opening or selecting another image meanwhile wins over this one.
func (mw *MainWindow) openAsync(name string, decode func() ([]*eimage.Asset, error)) {
	tok := mw.project.BeginOpen(name)
	mw.updateStatus("Opening " + name + "...")
	start := time.Now()
	go func() {
		assets, err := decode()
		fyne.Do(func() {
			if err != nil {
				mw.updateStatus("")
				mw.showError("Failed to open image", err)
				return
			}
			mw.addLoaded(tok, assets, time.Since(start))
		})
	}()
}

// addLoaded adds decoded assets to the project, showing the first one unless
// a later open has taken over the editor.
func (mw *MainWindow) addLoaded(tok editor.LoadToken, assets []*eimage.Asset, took time.Duration) {
	err := mw.project.AddLoaded(tok, assets...)
	mw.sidebar.refreshImages()
	log := mw.log.WithFields(logrus.Fields{"count": len(assets), "duration": took})
	switch {
	case errors.Is(err, editor.ErrStaleLoad):
		log.Debug("Images added behind a newer load")
	case err != nil:
		mw.showError("Failed to open image", err)
	default:
		log.Info("Images added")
	}
}

func (mw *MainWindow) onRemoveImage() {
	id := mw.project.CurrentID()
	if id == "" {
		return
	}
	if err := mw.project.Remove(id); err != nil {
		mw.showError("Failed to remove image", err)
	}
	mw.sidebar.refreshImages()
}

func (mw *MainWindow) onClearProject() {
	if mw.project.Len() == 0 {
		return
	}
	dialog.ShowConfirm("Clear Project", "Close all images and discard their masks and results?", func(ok bool) {
		if !ok {
			return
		}
		mw.project.Reset()
		mw.sidebar.refreshImages()
	}, mw.Window)
}

// currentSource returns the image shown on the canvas as an asset. After a
// result was applied this is no longer the loaded file.
func (mw *MainWindow) currentSource() (*eimage.Asset, error) {
	asset := mw.session.Asset()
	if asset == nil {
		return nil, errNoImage
	}
	img := mw.session.Image()
	if img == asset.Image {
		return asset, nil
	}
	return eimage.FromImage(asset.Name, img)
}

// run executes fn in the background with the session disabled and stores
// the output as a result of kind for the current image.
func (mw *MainWindow) run(kind project.ResultKind, label string, fn job) {
	id := mw.project.CurrentID()
	if id == "" {
		mw.updateStatus(errNoImage.Error())
		return
	}
	if mw.session.Disabled() {
		mw.updateStatus("Still processing, please wait")
		return
	}
	src, err := mw.currentSource()
	if err != nil {
		mw.showError(label+" failed", err)
		return
	}

	mw.session.SetDisabled(true)
	mw.project.SetProcessing(id, kind, true)
	mw.sidebar.refreshImages()
	mw.updateStatus(label + "...")
	start := time.Now()

	go func() {
		res, err := fn(context.Background(), src)
		fyne.Do(func() { mw.finish(id, kind, label, src.Name, start, res, err) })
	}()
}

// finish re-enables editing and stores or reports the outcome of run. It
// runs on the UI goroutine.
func (mw *MainWindow) finish(id string, kind project.ResultKind, label, name string, start time.Time, res *eimage.Asset, err error) {
	mw.session.SetDisabled(false)
	mw.project.SetProcessing(id, kind, false)
	defer mw.sidebar.refreshImages()

	if err != nil {
		mw.updateStatus(label + " failed")
		mw.showError(label+" failed", err)
		return
	}
	if err := mw.project.SetResult(id, kind, res.Image); err != nil {
		// Image removed while processing.
		mw.log.WithError(err).Debug("Dropping result")
		return
	}
	if mw.project.CurrentID() == id {
		mw.session.ShowResult(res.Image)
	}
	mw.log.WithFields(logrus.Fields{
		"image":    name,
		"kind":     kind.String(),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Info("Processing complete")
	mw.updateStatus(label + " done")
}

func (mw *MainWindow) onErase() {
	if mw.session.Asset() != nil && !mw.session.HasMask() {
		mw.updateStatus("Paint over the area to erase first")
		return
	}
	mask, err := mw.session.InpaintMask()
	if err != nil {
		mw.updateStatus(errNoImage.Error())
		return
	}
	mw.run(project.ResultInpaint, "Erase", func(ctx context.Context, src *eimage.Asset) (*eimage.Asset, error) {
		inpainter, _ := mw.services()
		return inpainter.Inpaint(ctx, src, mask)
	})
}

func (mw *MainWindow) onRemoveBackground() {
	_, effects := mw.services()
	mw.run(project.ResultBackgroundRemoved, "Remove background", effects.Remove)
}

func (mw *MainWindow) onBlurBackground() {
	intensity := mw.sidebar.blur.Value
	_, effects := mw.services()
	mw.run(project.ResultBackgroundBlurred, "Blur background", func(ctx context.Context, src *eimage.Asset) (*eimage.Asset, error) {
		return effects.Blur(ctx, src, intensity)
	})
}

func (mw *MainWindow) onReplaceBackground() {
	colors := append([]string{"#ffffff", "#000000"}, colorutil.Presets...)
	colorSelect := widget.NewSelect(colors, nil)
	colorSelect.SetSelected(colors[0])
	blendSelect := widget.NewSelect([]string{
		eimage.BlendNormal.String(),
		eimage.BlendMultiply.String(),
		eimage.BlendScreen.String(),
		eimage.BlendOverlay.String(),
	}, nil)
	blendSelect.SetSelected(eimage.BlendNormal.String())

	var bg image.Image
	bgLabel := widget.NewLabel("None (use color)")
	bgButton := widget.NewButton("Choose...", func() {
		fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil || reader == nil {
				return
			}
			defer reader.Close()
			data, err := io.ReadAll(reader)
			if err == nil {
				var a *eimage.Asset
				if a, err = eimage.Decode(reader.URI().Name(), data); err == nil {
					bg = a.Image
					bgLabel.SetText(a.Name)
					return
				}
			}
			mw.showError("Failed to open background", err)
		}, mw.Window)
		fd.SetFilter(storage.NewExtensionFileFilter(eimage.SupportedFormats()))
		fd.Show()
	})

	items := []*widget.FormItem{
		widget.NewFormItem("Color", colorSelect),
		widget.NewFormItem("Image", container.NewBorder(nil, nil, nil, bgButton, bgLabel)),
		widget.NewFormItem("Blend", blendSelect),
	}
	dialog.ShowForm("Replace Background", "Replace", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		blend, err := eimage.ParseBlendMode(blendSelect.Selected)
		if err != nil {
			mw.showError("Replace background failed", err)
			return
		}
		r := background.Replacement{Color: colorSelect.Selected, Background: bg, Blend: blend}
		_, effects := mw.services()
		mw.run(project.ResultBackgroundReplaced, "Replace background", func(ctx context.Context, src *eimage.Asset) (*eimage.Asset, error) {
			return effects.Replace(ctx, src, r)
		})
	}, mw.Window)
}

func (mw *MainWindow) onApplyResult() {
	res := mw.session.Result()
	if res == nil {
		mw.updateStatus("No result to apply")
		return
	}
	if err := mw.session.ApplyResult(res); err != nil {
		mw.showError("Failed to apply result", err)
		return
	}
	mw.updateStatus("Result applied; undo to revert")
}

func (mw *MainWindow) onSaveResult() {
	id := mw.project.CurrentID()
	asset := mw.session.Asset()
	if asset == nil {
		mw.updateStatus(errNoImage.Error())
		return
	}

	img := mw.session.Result()
	kind := project.ResultInpaint
	if r, ok := mw.project.LatestResult(id); ok {
		img, kind = r.Image, r.Kind
	}
	if img == nil {
		mw.updateStatus("No result to save")
		return
	}
	mw.saveImage(img, project.ResultFilename(kind, asset.Name, time.Now()))
}

func (mw *MainWindow) onExportMask() {
	asset := mw.session.Asset()
	if asset == nil {
		mw.updateStatus(errNoImage.Error())
		return
	}
	mask, err := mw.session.InpaintMask()
	if err != nil {
		mw.showError("Failed to export mask", err)
		return
	}
	name := project.SanitizeFilename(project.BaseName(asset.Name)) + "-mask.png"
	mw.saveImage(mask, name)
}

// saveImage asks for a destination and writes img as PNG.
func (mw *MainWindow) saveImage(img image.Image, name string) {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		data, err := eimage.EncodePNG(img)
		if err == nil {
			_, err = writer.Write(data)
		}
		if err != nil {
			mw.showError("Failed to save image", err)
			return
		}
		mw.saveLastDir(writer.URI().Path())
		mw.updateStatus("Saved " + writer.URI().Name())
	}, mw.Window)
	fd.SetFileName(name)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// onServerSettings edits the IOPaint URL and checks the server responds.
func (mw *MainWindow) onServerSettings() {
	entry := widget.NewEntry()
	entry.SetText(mw.currentClient().BaseURL())
	entry.SetPlaceHolder("http://localhost:8080")

	dialog.ShowForm("IOPaint Server", "Connect", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("URL", entry)},
		func(ok bool) {
			if !ok || entry.Text == "" {
				return
			}
			client := mw.currentClient().WithBaseURL(entry.Text)
			mw.updateStatus("Checking " + client.BaseURL() + "...")
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
				defer cancel()
				err := client.Ping(ctx)
				fyne.Do(func() {
					if err != nil {
						mw.showError("IOPaint server not reachable", err)
						return
					}
					mw.useClient(client)
					mw.prefs.SetString(prefs.KeyIOPaintURL, client.BaseURL())
					mw.updateStatus(fmt.Sprintf("Connected to %s", client.BaseURL()))
				})
			}()
		}, mw.Window)
}
