// Command mudra runs the webcam gesture menu: capture, classification,
// stabilization, the HTTP dashboard and an optional tray icon.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "config file (default: mudra.{json,yaml} in . or ~/.mudra)")
	mockDetector := flag.Bool("mock-detector", false, "run without MediaPipe; no hands are ever detected")
	paused := flag.Bool("paused", false, "start with the capture loop stopped")
	flag.Parse()

	if err := run(*configPath, *mockDetector, *paused); err != nil {
		fmt.Fprintf(os.Stderr, "mudra: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, mockDetector, paused bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	root, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return err
	}
	log := logging.Component(root, "main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	manager := plugin.NewManager(cfg.Plugins.Dir)
	if err := manager.Discover(); err != nil {
		log.Warn().Err(err).Str("dir", cfg.Plugins.Dir).Msg("plugin discovery failed")
	}
	for _, name := range manager.Skipped() {
		log.Warn().Str("plugin", name).Msg("skipped plugin with invalid manifest")
	}
	log.Info().Int("count", len(manager.List())).Str("dir", manager.PluginDir()).Msg("plugins loaded")

	det := openDetector(cfg, mockDetector, log)
	defer det.Close()

	stabCfg, err := cfg.StabilizerConfig()
	if err != nil {
		return err
	}
	a, err := app.New(app.Config{
		Logger:          root,
		Classifier:      cfg.GestureConfig(),
		Stabilizer:      stabCfg,
		Menu:            cfg.MenuConfig(),
		Camera:          capture.NewCamera(cfg.CameraConfig()),
		Detector:        det,
		Async:           cfg.Pipeline.Async,
		MotionThreshold: cfg.Pipeline.MotionThreshold,
		Store:           st,
		Runner:          plugin.NewRunner(manager, plugin.NewExecutor(cfg.Plugins.Timeout)),
	})
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.StartSession(time.Now()); err != nil {
		log.Warn().Err(err).Msg("failed to start session")
	}
	defer func() {
		if err := a.EndSession(time.Now()); err != nil {
			log.Warn().Err(err).Msg("failed to end session")
		}
	}()

	if !paused {
		if err := a.Start(); err != nil {
			// The dashboard stays useful for sessions and bindings without a camera.
			log.Error().Err(err).Msg("capture pipeline not started")
		}
	}

	staticDir := cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		log.Info().Str("dir", staticDir).Msg("serving static files")
	}
	srv := server.New(server.Config{
		App:       a,
		Plugins:   manager,
		StaticDir: staticDir,
		Logger:    root,
	})

	if !cfg.Tray.Enabled {
		return srv.Run(ctx, cfg.Server.Addr)
	}
	return runWithTray(ctx, stop, srv, a, cfg.Server.Addr, log)
}

// runWithTray serves HTTP in the background while the tray owns the main
// goroutine, as the tray library requires.
func runWithTray(ctx context.Context, stop context.CancelFunc, srv *server.Server, a *app.App, addr string, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx, addr)
		stop()
	}()

	t := tray.New(a.Running())
	t.OnToggle(func(running bool) error {
		if !running {
			a.Stop()
			return nil
		}
		if err := a.Start(); err != nil {
			log.Warn().Err(err).Msg("failed to resume pipeline")
			return err
		}
		return nil
	})
	t.OnOpen(func() { openBrowser(dashboardURL(addr), log) })
	t.OnQuit(stop)

	events, cancel := a.Subscribe()
	defer cancel()
	go t.Follow(ctx, events)
	go func() {
		<-ctx.Done()
		t.Quit()
	}()

	t.Run()
	stop()
	return <-errCh
}

// openDetector returns the MediaPipe detector, or the mock detector when
// asked for or when the MediaPipe service script cannot be found.
func openDetector(cfg *config.Config, mock bool, log zerolog.Logger) detector.Detector {
	if mock {
		log.Info().Msg("using mock detector")
		return detector.NewMockDetector()
	}
	d, err := detector.NewMediaPipeDetector(cfg.DetectorConfig())
	if err != nil {
		if errors.Is(err, detector.ErrServiceNotFound) {
			log.Warn().Err(err).Msg("falling back to mock detector")
		} else {
			log.Error().Err(err).Msg("falling back to mock detector")
		}
		return detector.NewMockDetector()
	}
	return d
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeWebDir := filepath.Join(config.DataDir(), "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}
	return ""
}

func dashboardURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string, log zerolog.Logger) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("failed to open browser")
		return
	}
	go cmd.Wait()
}
