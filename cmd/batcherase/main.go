// Command batcherase applies one mask to a set of images through IOPaint and
// writes the results next to them or to an output directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"magic-eraser/internal/batch"
	"magic-eraser/internal/config"
	eimage "magic-eraser/internal/image"
	"magic-eraser/internal/inpaint"
	"magic-eraser/internal/project"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	maskPath := flag.String("mask", "", "Path to the mask image (painted pixels are erased)")
	outDir := flag.String("out", "", "Output directory (default: next to each input)")
	baseURL := flag.String("url", cfg.IOPaintURL, "IOPaint server URL")
	concurrency := flag.Int("j", cfg.BatchConcurrency, "Images processed in parallel")
	delay := flag.Duration("delay", cfg.BatchDelay, "Pause between requests")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	if *maskPath == "" || flag.NArg() == 0 {
		fmt.Println("Usage: batcherase -mask <mask.png> [-out dir] [-url http://localhost:8080] image...")
		os.Exit(1)
	}
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	m, err := eimage.Load(*maskPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load mask: %v\n", err)
		os.Exit(1)
	}

	client := inpaint.NewClient(*baseURL, cfg.IOPaintTimeout)
	if err := client.Ping(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot connect to IOPaint server: %v\n", err)
		os.Exit(1)
	}

	p := batch.New(client, batch.Options{
		Concurrency: *concurrency,
		Delay:       *delay,
		OnProgress: func(i int, it batch.Item) {
			switch it.Status {
			case batch.StatusCompleted:
				fmt.Printf("  [%d] %s done\n", i+1, it.Asset.Name)
			case batch.StatusError:
				fmt.Printf("  [%d] %s failed: %v\n", i+1, it.Asset.Name, it.Err)
			}
		},
	})
	p.SetMask(batch.StaticMask{Image: m.Image})

	var paths []string
	for _, path := range flag.Args() {
		if !eimage.IsSupportedFormat(path) {
			fmt.Printf("Skipping %s: unsupported format\n", path)
			continue
		}
		a, err := eimage.Load(path)
		if err != nil {
			fmt.Printf("Skipping %s: %v\n", path, err)
			continue
		}
		p.Add(a)
		paths = append(paths, path)
	}
	fmt.Printf("Processing %d images with %s\n", len(paths), client.BaseURL())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	runErr := p.Run(ctx)

	items := p.Items()
	now := time.Now()
	for i, it := range items {
		if it.Status != batch.StatusCompleted {
			continue
		}
		dir := *outDir
		if dir == "" {
			dir = filepath.Dir(paths[i])
		}
		name := project.ResultFilename(project.ResultInpaint, it.Asset.Name, now)
		if err := os.WriteFile(filepath.Join(dir, name), it.Result.Data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", name, err)
		}
	}

	stats := p.Stats()
	fmt.Printf("\nCompleted %d, failed %d, pending %d in %v\n",
		stats.Completed, stats.Failed, stats.Pending, time.Since(start).Round(time.Millisecond))
	if runErr != nil || stats.Failed > 0 {
		os.Exit(1)
	}
}
