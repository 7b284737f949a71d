// Command oxy-view opens a window and shows an OBJ model through the deferred renderer.
package main

import (
	"flag"
	"os"
	"runtime"

	"github.com/Carmen-Shannon/oxy-view/common"
	"github.com/Carmen-Shannon/oxy-view/engine"
	"github.com/Carmen-Shannon/oxy-view/engine/config"
	"github.com/Carmen-Shannon/oxy-view/engine/dialog"
	"github.com/Carmen-Shannon/oxy-view/engine/logging"
	"github.com/Carmen-Shannon/oxy-view/engine/renderer"
	"github.com/Carmen-Shannon/oxy-view/engine/viewer"
	"github.com/Carmen-Shannon/oxy-view/engine/watcher"
	"github.com/Carmen-Shannon/oxy-view/engine/window"
)

func init() {
	// GLFW and the WebGPU surface must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "oxy-view.toml", "path to the TOML settings file")
	model := flag.String("model", "", "OBJ file to open instead of the configured model")
	profile := flag.Bool("profile", false, "log frame statistics every second")
	fallback := flag.Bool("fallback-adapter", false, "use the software fallback adapter")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal("load config", "path", *configPath, "err", err)
	}
	if *model != "" {
		cfg.Scene.Model = *model
	}
	if err := logging.SetLevel(cfg.Log.Level); err != nil {
		logging.Warn("log level", "err", err)
	}

	if err := run(cfg, *profile, *fallback); err != nil {
		logging.Error("oxy-view stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, profile, fallback bool) error {
	win, err := window.NewWindow(
		window.WithTitle(common.Coalesce(cfg.Window.Title, "oxy-view")),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	presentMode := renderer.PresentModeVSync
	if cfg.Window.PresentMode == "uncapped" {
		presentMode = renderer.PresentModeUncapped
	}
	backend, err := renderer.NewWGPURendererBackend(
		win.SurfaceDescriptor(),
		win.Width(),
		win.Height(),
		renderer.WithFallbackAdapter(fallback),
		renderer.WithBackendPresentMode(presentMode),
	)
	if err != nil {
		return err
	}
	defer backend.Release()
	r := renderer.NewRenderer(backend, renderer.WithPresentMode(presentMode))

	options := []viewer.ViewerBuilderOption{
		viewer.WithConfig(cfg),
		viewer.WithDialog(dialog.NewDialog()),
	}
	if cfg.Watch.Enabled {
		w, err := watcher.New(watcher.WithErrorHandler(func(err error) {
			logging.Warn("watch", "err", err)
		}))
		if err != nil {
			logging.Warn("file watcher unavailable, hot reload disabled", "err", err)
		} else {
			options = append(options, viewer.WithWatcher(w))
		}
	}

	v, err := viewer.NewViewer(r, win.Input(), options...)
	if err != nil {
		return err
	}
	defer v.Release()

	return engine.NewEngine(
		engine.WithWindow(win),
		engine.WithViewer(v),
		engine.WithProfiling(profile),
	).Run()
}
