package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/markpasc/luabject/coop"
	"github.com/markpasc/luabject/engine"
	"github.com/markpasc/luabject/runtime"
)

// argList collects repeated -arg flags.
type argList []string

func (a *argList) String() string { return strings.Join(*a, ",") }

func (a *argList) Set(v string) error {
	*a = append(*a, v)
	return nil
}

func main() {
	var args argList
	var (
		scriptFile  = flag.String("script", "", "Path to guest script")
		funcName    = flag.String("func", "", "Function to call after the script body runs (optional)")
		budget      = flag.Int64("budget", 0, "Per-pump instruction budget (default 1000)")
		configFile  = flag.String("config", "", "YAML run configuration")
		watch       = flag.Bool("watch", false, "Re-run the script when its file changes")
		list        = flag.Bool("list", false, "List callable functions and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose engine logging")
	)
	flag.Var(&args, "arg", "Argument for -func; repeatable")
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		engine.SetLogger(logger)
	}

	var cfg Config
	if *configFile != "" {
		loaded, err := loadConfig(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = *loaded
	}
	if *scriptFile != "" {
		cfg.Script = *scriptFile
	}
	if *budget > 0 {
		cfg.Budget = *budget
	}

	if cfg.Script == "" {
		fmt.Fprintln(os.Stderr, "Usage: run -script <file.lua> [-func name] [-arg value ...] [-budget n]")
		fmt.Fprintln(os.Stderr, "       run -script <file.lua> -list")
		fmt.Fprintln(os.Stderr, "       run -script <file.lua> -watch")
		fmt.Fprintln(os.Stderr, "       run -script <file.lua> -i  (interactive mode)")
		fmt.Fprintln(os.Stderr, "       run -config <run.yaml>")
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *watch {
		if err := watchAndRun(cfg, *funcName, args, *list); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, *funcName, args, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRuntime builds a Runtime from cfg with the standard host bindings.
func newRuntime(cfg Config) (*runtime.Runtime, error) {
	var opts []runtime.Option
	if cfg.Budget > 0 {
		opts = append(opts, runtime.WithBudget(cfg.Budget))
	}
	rt := runtime.New(opts...)

	if err := rt.RegisterGlobal("emit", func(args ...any) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = fmt.Sprintf("%v", a)
		}
		fmt.Println(strings.Join(parts, "\t"))
	}); err != nil {
		rt.Close()
		return nil, err
	}

	for name, v := range cfg.Globals {
		if err := rt.SetGlobalValue(name, normalizeYAML(v)); err != nil {
			rt.Close()
			return nil, fmt.Errorf("global %s: %w", name, err)
		}
	}
	return rt, nil
}

func run(cfg Config, funcName string, args []string, listOnly bool) error {
	ctx := context.Background()

	source, err := os.ReadFile(cfg.Script)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	rt, err := newRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	fmt.Printf("Script: %s\n", cfg.Script)
	if err := coop.RunScript(ctx, rt, string(source)); err != nil {
		return fmt.Errorf("run script: %w", err)
	}

	if listOnly {
		fmt.Printf("\nCallable functions:\n")
		for _, name := range rt.Callables() {
			fmt.Printf("  %s\n", name)
		}
		return nil
	}

	if funcName == "" {
		return nil
	}

	callArgs := make([]any, len(args))
	for i, a := range args {
		callArgs[i] = convertArg(a)
	}
	fmt.Printf("\nCalling %s(%s)...\n", funcName, strings.Join(args, ", "))
	results, err := coop.CallFunction(ctx, rt, funcName, callArgs...)
	if err != nil {
		return fmt.Errorf("call %s: %w", funcName, err)
	}
	for _, r := range results {
		fmt.Printf("Result: %v\n", r)
	}
	return nil
}

// watchAndRun runs once, then re-runs the script on every write to its file.
// Each run gets a fresh Runtime so global state does not leak between runs.
func watchAndRun(cfg Config, funcName string, args []string, listOnly bool) error {
	if err := run(cfg, funcName, args, listOnly); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	// Watch the directory; editors often replace the file on save.
	if err := watcher.Add(filepath.Dir(cfg.Script)); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	target := filepath.Clean(cfg.Script)
	fmt.Printf("\nWatching %s for changes...\n", target)
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			fmt.Printf("\n--- %s changed, re-running ---\n", target)
			if err := run(cfg, funcName, args, listOnly); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", werr)
		}
	}
}

// convertArg gives a flag value its most specific guest mapping.
func convertArg(value string) any {
	if value == "true" {
		return true
	}
	if value == "false" {
		return false
	}
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return n
	}
	return value
}

// normalizeYAML maps YAML scalars onto guest-mappable values. Nested
// structures have no guest mapping and pass through to fail with a clear
// error.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case uint64:
		return int64(t)
	case float32:
		return float64(t)
	default:
		return v
	}
}
