// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"path/filepath"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"magic-eraser/internal/background"
	"magic-eraser/internal/editor"
	"magic-eraser/internal/inpaint"
	"magic-eraser/internal/project"
	"magic-eraser/internal/version"
	"magic-eraser/internal/viewport"
	"magic-eraser/pkg/geometry"
	"magic-eraser/ui/canvas"
	"magic-eraser/ui/prefs"
)

// Deps are the services the window drives.
type Deps struct {
	Session *editor.Session
	Project *project.Manager
	Client  *inpaint.Client
	Prefs   *prefs.Prefs
	// WrapInpainter decorates the client used for erasing, for example
	// with a result cache. It is applied again when the server changes.
	WrapInpainter func(inpaint.Inpainter) inpaint.Inpainter
}

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app fyne.App

	session *editor.Session
	project *project.Manager
	prefs   *prefs.Prefs

	svcMu     sync.RWMutex
	client    *inpaint.Client
	inpainter inpaint.Inpainter
	effects   *background.Effects
	wrap      func(inpaint.Inpainter) inpaint.Inpainter

	canvas    *canvas.EditorCanvas
	sidebar   *sidebar
	statusBar *widget.Label
	coordsBar *widget.Label
	progress  *widget.ProgressBarInfinite

	log *logrus.Entry
}

// New creates a new main window.
func New(fyneApp fyne.App, deps Deps) *MainWindow {
	win := fyneApp.NewWindow(version.AppName)

	mw := &MainWindow{
		Window:    win,
		app:       fyneApp,
		session: deps.Session,
		project: deps.Project,
		prefs:   deps.Prefs,
		wrap:    deps.WrapInpainter,
		log:     logrus.WithField("component", "mainwindow"),
	}
	mw.useClient(deps.Client)

	mw.setupUI()
	mw.setupMenus()
	mw.setupShortcuts()
	mw.setupEventHandlers()

	win.Resize(fyne.NewSize(1280, 820))
	win.SetOnClosed(mw.SavePreferences)
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewEditorCanvas(mw.session)
	mw.canvas.OnPointer(func(p geometry.Point2D) {
		if mw.session.Asset() == nil {
			return
		}
		mw.coordsBar.SetText(fmt.Sprintf("%.0f, %.0f", p.X, p.Y))
	})

	mw.sidebar = newSidebar(mw)
	mw.statusBar = widget.NewLabel("Open an image to start")
	mw.coordsBar = widget.NewLabel("")
	mw.progress = widget.NewProgressBarInfinite()
	mw.progress.Hide()

	canvasArea := container.NewBorder(
		mw.createToolbar(), // top
		nil,                // bottom
		nil,                // left
		nil,                // right
		mw.canvas,          // center
	)

	split := container.NewHSplit(mw.sidebar.Container(), canvasArea)
	split.SetOffset(0.22)

	status := container.NewBorder(nil, nil, nil,
		container.NewHBox(mw.progress, mw.coordsBar),
		mw.statusBar)

	mw.SetContent(container.NewBorder(nil, container.NewPadded(status), nil, nil, split))
}

// createToolbar creates the editing toolbar.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	return widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), mw.onOpenImage),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), mw.onSaveResult),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), mw.onUndo),
		widget.NewToolbarAction(theme.ContentRedoIcon(), mw.onRedo),
		widget.NewToolbarAction(theme.ContentClearIcon(), mw.onResetMask),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ZoomOutIcon(), mw.onZoomOut),
		widget.NewToolbarAction(theme.ZoomInIcon(), mw.onZoomIn),
		widget.NewToolbarAction(theme.ZoomFitIcon(), mw.onFit),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.MediaPlayIcon(), mw.onErase),
		widget.NewToolbarAction(theme.VisibilityIcon(), mw.onToggleResult),
		widget.NewToolbarAction(theme.ConfirmIcon(), mw.onApplyResult),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.SettingsIcon(), mw.onServerSettings),
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mw.onOpenImage),
		fyne.NewMenuItem("Open Folder...", mw.onOpenFolder),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Result...", mw.onSaveResult),
		fyne.NewMenuItem("Export Mask...", mw.onExportMask),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Remove Image", mw.onRemoveImage),
		fyne.NewMenuItem("Clear Project", mw.onClearProject),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", mw.onUndo),
		fyne.NewMenuItem("Redo", mw.onRedo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Reset Mask", mw.onResetMask),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("IOPaint Server...", mw.onServerSettings),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.onZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.onZoomOut),
		fyne.NewMenuItem("Fit to Window", mw.onFit),
		fyne.NewMenuItem("Actual Size", mw.onActualSize),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Show / Hide Result", mw.onToggleResult),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Brush", func() { mw.session.SetTool(viewport.ToolBrush) }),
		fyne.NewMenuItem("Pan", func() { mw.session.SetTool(viewport.ToolPan) }),
	)

	processMenu := fyne.NewMenu("Process",
		fyne.NewMenuItem("Erase Masked Area", mw.onErase),
		fyne.NewMenuItem("Apply Result", mw.onApplyResult),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Remove Background", mw.onRemoveBackground),
		fyne.NewMenuItem("Blur Background", mw.onBlurBackground),
		fyne.NewMenuItem("Replace Background...", mw.onReplaceBackground),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, toolsMenu, processMenu, helpMenu))
}

// setupShortcuts binds the editing keys.
func (mw *MainWindow) setupShortcuts() {
	c := mw.Canvas()
	bind := func(key fyne.KeyName, mod fyne.KeyModifier, fn func()) {
		c.AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: mod}, func(fyne.Shortcut) { fn() })
	}
	bind(fyne.KeyZ, fyne.KeyModifierShortcutDefault, mw.onUndo)
	bind(fyne.KeyZ, fyne.KeyModifierShortcutDefault|fyne.KeyModifierShift, mw.onRedo)
	bind(fyne.KeyY, fyne.KeyModifierShortcutDefault, mw.onRedo)
	bind(fyne.KeyO, fyne.KeyModifierShortcutDefault, mw.onOpenImage)
	bind(fyne.KeyS, fyne.KeyModifierShortcutDefault, mw.onSaveResult)
	bind(fyne.KeyReturn, fyne.KeyModifierShortcutDefault, mw.onErase)

	c.SetOnTypedRune(func(r rune) {
		switch r {
		case '+', '=':
			mw.onZoomIn()
		case '-':
			mw.onZoomOut()
		case '0':
			mw.onFit()
		case '1':
			mw.onActualSize()
		case 'b', 'B':
			mw.session.SetTool(viewport.ToolBrush)
		case 'h', 'H', ' ':
			mw.session.SetTool(viewport.ToolPan)
		case '[':
			mw.sidebar.nudgeBrushSize(-5)
		case ']':
			mw.sidebar.nudgeBrushSize(5)
		}
	})
}

// setupEventHandlers registers for session events.
func (mw *MainWindow) setupEventHandlers() {
	mw.session.On(editor.EventImageLoaded, func(any) {
		if a := mw.session.Asset(); a != nil {
			mw.SetTitle(version.AppName + " - " + a.Name)
			mw.updateStatus(fmt.Sprintf("%s (%d×%d)", a.Name, a.Width(), a.Height()))
		} else {
			mw.SetTitle(version.AppName)
			mw.updateStatus("Open an image to start")
		}
		mw.sidebar.refreshImages()
	})

	mw.session.On(editor.EventToolChanged, func(data any) {
		if t, ok := data.(viewport.Tool); ok {
			mw.sidebar.showTool(t)
		}
	})

	mw.session.On(editor.EventWarning, func(data any) {
		if err, ok := data.(error); ok {
			mw.updateStatus("Warning: " + err.Error())
		}
	})

	mw.session.On(editor.EventDisabledChanged, func(data any) {
		if busy, _ := data.(bool); busy {
			mw.progress.Show()
		} else {
			mw.progress.Hide()
		}
	})
}

// useClient switches the IOPaint server used by every action.
func (mw *MainWindow) useClient(client *inpaint.Client) {
	var inpainter inpaint.Inpainter = client
	if mw.wrap != nil {
		inpainter = mw.wrap(client)
	}
	mw.svcMu.Lock()
	defer mw.svcMu.Unlock()
	mw.client = client
	mw.inpainter = inpainter
	mw.effects = background.New(client)
}

func (mw *MainWindow) currentClient() *inpaint.Client {
	mw.svcMu.RLock()
	defer mw.svcMu.RUnlock()
	return mw.client
}

func (mw *MainWindow) services() (inpaint.Inpainter, *background.Effects) {
	mw.svcMu.RLock()
	defer mw.svcMu.RUnlock()
	return mw.inpainter, mw.effects
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// showError reports err in a dialog and the log.
func (mw *MainWindow) showError(op string, err error) {
	mw.log.WithError(err).Warn(op)
	dialog.ShowError(fmt.Errorf("%s: %w", op, err), mw.Window)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDir)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefs.KeyLastDir, filepath.Dir(filePath))
}

// SavePreferences writes the brush settings and other preferences.
func (mw *MainWindow) SavePreferences() {
	mw.prefs.SetBrush(mw.session.BrushSettings())
	if err := mw.prefs.Save(); err != nil {
		mw.log.WithError(err).Warn("Failed to save preferences")
	}
}

// SavePreferencesIfChanged writes preferences when something changed.
func (mw *MainWindow) SavePreferencesIfChanged() {
	if err := mw.prefs.SaveIfChanged(); err != nil {
		mw.log.WithError(err).Warn("Failed to save preferences")
	}
}

func (mw *MainWindow) onUndo() {
	if err := mw.session.Undo(); err != nil {
		mw.updateStatus("Undo failed: " + err.Error())
	}
}

func (mw *MainWindow) onRedo() {
	if err := mw.session.Redo(); err != nil {
		mw.updateStatus("Redo failed: " + err.Error())
	}
}

func (mw *MainWindow) onResetMask() {
	if err := mw.session.ResetMask(); err != nil {
		mw.updateStatus("Reset failed: " + err.Error())
	}
}

func (mw *MainWindow) onZoomIn() {
	mw.session.Zoom(viewport.ZoomStep)
}

func (mw *MainWindow) onZoomOut() {
	mw.session.Zoom(-viewport.ZoomStep)
}

func (mw *MainWindow) onFit() {
	mw.session.FitToView()
}

func (mw *MainWindow) onActualSize() {
	v := mw.session.View()
	v.Scale = 1
	mw.session.SetView(v)
}

func (mw *MainWindow) onToggleResult() {
	if mw.session.ViewingResult() {
		mw.session.HideResult()
		return
	}
	if mw.session.Result() == nil {
		mw.updateStatus("No result to show yet")
		return
	}
	mw.session.ShowResult(mw.session.Result())
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+version.AppName,
		fmt.Sprintf("%s\n\n"+
			"Paint over unwanted objects and let an IOPaint\n"+
			"server fill them in.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.String(), version.BuildTime, version.GitCommit),
		mw.Window)
}
