// Package main provides the entry point for the Magic Eraser desktop application.
package main

import (
	"context"
	"flag"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"github.com/sirupsen/logrus"

	"magic-eraser/internal/app"
	"magic-eraser/internal/config"
	"magic-eraser/internal/editor"
	"magic-eraser/internal/inpaint"
	"magic-eraser/internal/project"
	"magic-eraser/internal/version"
	"magic-eraser/ui/mainwindow"
	"magic-eraser/ui/prefs"
)

const appID = "io.github.magiceraser"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	logLevel := flag.String("loglevel", "info", "The log level (debug, info, warn, error).")
	hotReload := flag.Bool("hotreload", false, "Offer a restart when the binary is rebuilt.")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logrus.WithField("version", version.Version).Infof("Starting %s", version.AppName)

	appPrefs := prefs.Load()
	baseURL := cfg.IOPaintURL
	if u := appPrefs.String(prefs.KeyIOPaintURL); u != "" {
		baseURL = u
	}
	client := inpaint.NewClient(baseURL, cfg.IOPaintTimeout)

	var (
		cacheMu sync.Mutex
		caches  []*inpaint.CachedInpainter
	)
	wrap := func(next inpaint.Inpainter) inpaint.Inpainter {
		cached, err := inpaint.NewCachedInpainter(next, cfg.CacheMaxBytes)
		if err != nil {
			logrus.WithError(err).Warn("Result cache disabled")
			return next
		}
		cacheMu.Lock()
		caches = append(caches, cached)
		cacheMu.Unlock()
		return cached
	}
	defer func() {
		cacheMu.Lock()
		defer cacheMu.Unlock()
		for _, c := range caches {
			c.Close()
		}
	}()

	opts := editor.DefaultOptions()
	opts.HistoryCapacity = cfg.HistoryDepth
	opts.Brush = appPrefs.Brush()
	session := editor.NewSession(opts)
	manager := project.NewManager(session)

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.EraserTheme{})

	win := mainwindow.New(fyneApp, mainwindow.Deps{
		Session:       session,
		Project:       manager,
		Client:        client,
		Prefs:         appPrefs,
		WrapInpainter: wrap,
	})

	win.OpenFiles(flag.Args())
	go checkServer(client)
	if *hotReload {
		setupHotReload(win)
	}

	win.ShowAndRun()
}

// checkServer logs whether the IOPaint server answers at startup.
func checkServer(client *inpaint.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log := logrus.WithField("iopaint", client.BaseURL())
	if err := client.Ping(ctx); err != nil {
		log.WithError(err).Warn("IOPaint server not reachable")
		return
	}
	log.Info("IOPaint server reachable")
}

// setupHotReload offers a restart when the binary is recompiled.
func setupHotReload(win *mainwindow.MainWindow) {
	reloader, err := app.NewHotReloader(2 * time.Second)
	if err != nil {
		logrus.WithError(err).Warn("Hot reload: unable to watch executable")
		return
	}
	logrus.WithField("path", reloader.ExecPath()).Info("Hot reload: watching binary")

	reloader.OnTick(win.SavePreferencesIfChanged)
	reloader.OnNewBinary(func() {
		fyne.Do(func() { confirmRestart(win, reloader) })
	})
	reloader.Start(context.Background())
}

func confirmRestart(win *mainwindow.MainWindow, reloader *app.HotReloader) {
	dialog.ShowConfirm("New Version Available",
		"The application binary has been updated.\nRestart now?",
		func(restart bool) {
			if !restart {
				reloader.ResetBaseline()
				reloader.Start(context.Background())
				return
			}
			win.SavePreferences()
			if err := reloader.Restart(); err != nil {
				logrus.WithError(err).Error("Hot reload: restart failed")
			}
		}, win.Window)
}
