// Command mudra-replay feeds recorded or scripted landmark streams through
// the classifier and stabilizer without a camera, and prints a summary.
//
// Usage:
//
//	mudra-replay [flags] stream.jsonl...
//	mudra-replay -script menu
//	mudra-replay -script menu -write > menu.jsonl
//	cat stream.jsonl | mudra-replay -
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/replay"
	"github.com/ayusman/mudra/internal/store"
)

type options struct {
	config   string
	script   string
	realtime bool
	record   bool
	events   bool
	write    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.config, "config", "", "config file (default: mudra.{json,yaml} in . or ~/.mudra)")
	flag.StringVar(&opts.script, "script", "", "replay a built-in script ("+strings.Join(replay.ScriptNames(), ", ")+")")
	flag.BoolVar(&opts.realtime, "realtime", false, "process frames at their recorded pace")
	flag.BoolVar(&opts.record, "record", false, "record the replay as a session in the store and run bound plugins")
	flag.BoolVar(&opts.events, "events", false, "print every event as a JSON line")
	flag.BoolVar(&opts.write, "write", false, "write the script as JSONL to stdout instead of replaying it")
	flag.Parse()

	if err := run(opts, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "mudra-replay: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, args []string) error {
	if opts.script == "" && len(args) == 0 {
		return errors.New("no input: pass stream files, - for stdin, or -script")
	}
	if opts.script != "" && len(args) > 0 {
		return errors.New("-script cannot be combined with stream files")
	}
	if opts.write {
		if opts.script == "" {
			return errors.New("-write needs -script")
		}
		return writeScript(opts.script, os.Stdout)
	}

	cfg, err := config.Load(opts.config)
	if err != nil {
		return err
	}
	root, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stabCfg, err := cfg.StabilizerConfig()
	if err != nil {
		return err
	}
	appCfg := app.Config{
		Logger:     root,
		Classifier: cfg.GestureConfig(),
		Stabilizer: stabCfg,
		Menu:       cfg.MenuConfig(),
		Source:     store.SourceReplay,
	}
	if opts.record {
		st, runner, err := openStore(cfg, root)
		if err != nil {
			return err
		}
		defer st.Close()
		appCfg.Store = st
		appCfg.Runner = runner
	}

	a, err := app.New(appCfg)
	if err != nil {
		return err
	}
	defer a.Close()

	inputs := args
	if opts.script != "" {
		inputs = []string{"script:" + opts.script}
	}

	out := json.NewEncoder(os.Stdout)
	start := time.Now()
	for _, input := range inputs {
		src, closeSrc, err := openSource(input)
		if err != nil {
			return err
		}

		// Each input is its own session and starts from a fresh state.
		a.Reset()
		var sessionID string
		if opts.record {
			sess, err := a.StartSession(start)
			if err != nil {
				closeSrc()
				return err
			}
			sessionID = sess.ID
		}

		runOpts := replay.Options{Start: start, Realtime: opts.realtime}
		if opts.events {
			runOpts.OnEvent = func(f replay.Frame, ev app.Event) {
				out.Encode(eventLine{Input: input, Line: f.Line, T: f.T.Seconds(), Event: ev})
			}
		}
		sum, runErr := replay.Run(ctx, src, a, runOpts)
		closeSrc()

		if opts.record {
			end := start
			if !sum.Last.At.IsZero() {
				end = sum.Last.At
			}
			if err := a.EndSession(end); err != nil {
				root.Warn().Err(err).Msg("failed to end session")
			}
			a.Wait()
		}
		if err := out.Encode(summaryLine{Input: input, Session: sessionID, Summary: sum}); err != nil {
			return err
		}
		if runErr != nil {
			return fmt.Errorf("%s: %w", input, runErr)
		}
		start = time.Now()
	}
	return nil
}

type eventLine struct {
	Input string    `json:"input"`
	Line  int       `json:"line"`
	T     float64   `json:"t"`
	Event app.Event `json:"event"`
}

type summaryLine struct {
	Input   string `json:"input"`
	Session string `json:"session,omitempty"`
	replay.Summary
}

// openStore opens the configured store along with a runner over the
// configured plugins, so bindings fire during a recorded replay.
func openStore(cfg *config.Config, log zerolog.Logger) (*store.Store, *plugin.Runner, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	manager := plugin.NewManager(cfg.Plugins.Dir)
	if err := manager.Discover(); err != nil {
		log.Warn().Err(err).Str("dir", cfg.Plugins.Dir).Msg("plugin discovery failed")
	}
	return st, plugin.NewRunner(manager, plugin.NewExecutor(cfg.Plugins.Timeout)), nil
}

func openSource(input string) (replay.Source, func(), error) {
	if name, ok := strings.CutPrefix(input, "script:"); ok {
		frames, err := replay.Scripted(name)
		if err != nil {
			return nil, nil, err
		}
		return replay.FromFrames(frames), func() {}, nil
	}
	if input == "-" {
		return replay.NewReader(os.Stdin), func() {}, nil
	}
	f, err := os.Open(input)
	if err != nil {
		return nil, nil, err
	}
	return replay.NewReader(f), func() { f.Close() }, nil
}

func writeScript(name string, w io.Writer) error {
	frames, err := replay.Scripted(name)
	if err != nil {
		return err
	}
	enc := replay.NewWriter(w)
	for _, f := range frames {
		if err := enc.Write(f); err != nil {
			return err
		}
	}
	return enc.Flush()
}
