// Package main is the entry point for the undoredo demo.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/undoredo/internal/config"
	"github.com/dshills/undoredo/internal/history"
	"github.com/dshills/undoredo/internal/logging"
	"github.com/dshills/undoredo/internal/scene"
	"github.com/dshills/undoredo/internal/script"
	"github.com/dshills/undoredo/internal/ui"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errExit reports that the process should exit with status 0 after
// printing help or version information.
var errExit = errors.New("exit")

// options holds the command line settings.
type options struct {
	ConfigPath string
	ScriptPath string
	LogLevel   string
	Capacity   int

	capacitySet bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stdout, stderr)
	if errors.Is(err, errExit) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to load configuration: %v\n", err)
		return 1
	}

	logger, closeLog, err := newLogger(cfg, opts, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to open log: %v\n", err)
		return 1
	}
	defer closeLog()
	logging.Set(logger)

	sc := scene.New(
		scene.WithSeed(cfg.Scene.Seed),
		scene.WithSize(cfg.Scene.Width, cfg.Scene.Height),
	)
	c := history.New(cfg.History.Capacity,
		history.WithLogger(logger),
		history.WithEnabled(cfg.History.Enabled),
	)

	if opts.ScriptPath != "" {
		return runScript(opts.ScriptPath, c, sc, logger, stdout, stderr)
	}
	return runUI(opts, cfg, c, sc, logger, stderr)
}

func parseFlags(args []string, stdout, stderr io.Writer) (options, error) {
	var opts options
	var showVersion bool
	var showHelp bool

	fs := flag.NewFlagSet("undoredo", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml, .yaml)")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.ScriptPath, "script", "", "Run a Lua script instead of the terminal UI")
	fs.StringVar(&opts.ScriptPath, "s", "", "Run a Lua script (shorthand)")
	fs.IntVar(&opts.Capacity, "capacity", config.DefaultCapacity, "Maximum records kept (negative for unbounded)")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	fs.BoolVar(&showHelp, "help", false, "Show help message")
	fs.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "undoredo - record container demo\n\n")
		fmt.Fprintf(stderr, "Usage: undoredo [options]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  undoredo                       Start the terminal demo\n")
		fmt.Fprintf(stderr, "  undoredo -c undoredo.toml      Start with a config file\n")
		fmt.Fprintf(stderr, "  undoredo -s session.lua        Run a scripted session\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, errExit
		}
		return opts, err
	}

	if showHelp {
		fs.Usage()
		return opts, errExit
	}

	if showVersion {
		fmt.Fprintf(stdout, "undoredo %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return opts, errExit
	}

	if opts.LogLevel != "" {
		if _, ok := logging.ParseLevel(opts.LogLevel); !ok {
			return opts, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.LogLevel)
		}
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "capacity" {
			opts.capacitySet = true
		}
	})
	return opts, nil
}

// loadConfig loads the configuration file and applies flag overrides.
func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.capacitySet {
		cfg.History.Capacity = opts.Capacity
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	return cfg, cfg.Validate()
}

// newLogger builds the process logger. The terminal UI owns the screen, so
// without a log file it logs nothing.
func newLogger(cfg *config.Config, opts options, stderr io.Writer) (*logging.Logger, func(), error) {
	lc := logging.DefaultConfig()
	lc.Level = cfg.LogLevel()
	lc.Output = stderr
	closeFn := func() {}

	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		lc.Output = f
		closeFn = func() { _ = f.Close() }
	}

	logger := logging.New(lc)
	if cfg.Logging.File == "" && opts.ScriptPath == "" {
		logger.Disable()
	}
	return logger, closeFn, nil
}

func runScript(path string, c *history.Container, sc *scene.Scene, logger *logging.Logger, stdout, stderr io.Writer) int {
	state, err := script.NewState(c,
		script.WithScene(sc),
		script.WithLogger(logger),
		script.WithOutput(stdout),
	)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer state.Close()

	if err := state.DoFile(path); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	st := history.StatusOf(c)
	fmt.Fprintf(stdout, "records: %d  undo: %d  redo: %d  objects: %d\n",
		st.Len, st.UndoCount, st.RedoCount, sc.ActiveCount())
	return 0
}

func runUI(opts options, cfg *config.Config, c *history.Container, sc *scene.Scene, logger *logging.Logger, stderr io.Writer) int {
	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	app := ui.New(screen, history.NewSynchronized(c), sc, ui.WithLogger(logger))

	if opts.ConfigPath != "" {
		reloader, err := config.NewReloader(opts.ConfigPath, cfg, logger)
		if err != nil {
			logger.Warn("config reload disabled: %v", err)
		} else {
			defer reloader.Close()
			reloader.OnReload(app.ApplyConfig)
			if err := reloader.Start(); err != nil {
				logger.Warn("config reload disabled: %v", err)
			}
		}
	}

	// Handle signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
