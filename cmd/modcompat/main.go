package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/modcompat/cil"
	"github.com/wippyai/modcompat/config"
	"github.com/wippyai/modcompat/engine"
	"github.com/wippyai/modcompat/rewriters"
)

type options struct {
	in       string
	out      string
	config   string
	platform string
	host     string
	strict   bool
	dryRun   bool
	verbose  bool
}

func main() {
	var opts options
	flag.StringVar(&opts.in, "in", "", "Path to the module to rewrite (CBOR)")
	flag.StringVar(&opts.out, "out", "", "Output path (default: overwrite -in)")
	flag.StringVar(&opts.config, "config", "", "Path to "+config.FileName)
	flag.StringVar(&opts.platform, "platform", "", "Host platform: windows, linux or mac")
	flag.StringVar(&opts.host, "host", "", "Host description (TOML) overriding the built-in one")
	flag.BoolVar(&opts.strict, "strict", false, "Verify replacements keep the stack effect")
	flag.BoolVar(&opts.dryRun, "n", false, "Report rewrites without writing the module")
	flag.BoolVar(&opts.verbose, "v", false, "Verbose logging")
	flag.Parse()

	if opts.in == "" {
		fmt.Fprintln(os.Stderr, "Usage: modcompat -in <mod.cbor> [-out path] [-config modcompat.toml] [-platform linux] [-n] [-v]")
		os.Exit(1)
	}

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(opts options) (*config.Config, error) {
	cfg := config.Default()
	if opts.config != "" {
		c, err := config.Load(opts.config)
		if err != nil {
			return nil, err
		}
		cfg = c
	}

	if opts.platform != "" {
		cfg.Platform = opts.platform
	}
	if opts.host != "" {
		cfg.Host = opts.host
		cfg.Dir = "."
	}
	if opts.strict {
		cfg.Strict = true
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	lvl, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	if lvl <= zap.DebugLevel {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	engine.SetLogger(log)

	amap, err := cfg.AssemblyMap()
	if err != nil {
		return err
	}
	reg, err := rewriters.NewRegistry(cfg.Rewriters()...)
	if err != nil {
		return err
	}
	eng, err := engine.New(engine.Config{Registry: reg, AssemblyMap: amap, Strict: cfg.Strict})
	if err != nil {
		return err
	}

	data, err := os.ReadFile(opts.in)
	if err != nil {
		return fmt.Errorf("read module: %w", err)
	}
	mod, err := cil.Decode(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", opts.in, err)
	}

	res, err := eng.Rewrite(ctx, mod)
	if err != nil {
		return fmt.Errorf("rewrite %s: %w", mod.Name, err)
	}

	fmt.Fprintf(stdout, "Module: %s (%d instructions)\n", mod.Name, mod.InstructionCount())
	if res.Changed() {
		for _, line := range res.Summary() {
			fmt.Fprintf(stdout, "  %s\n", line)
		}
	} else {
		fmt.Fprintln(stdout, "  no changes needed")
	}
	if opts.dryRun {
		return nil
	}

	// An unchanged module is still copied to a separate -out path so the
	// output exists for every input.
	path := opts.out
	if path == "" {
		path = opts.in
	}
	if !res.Changed() && path == opts.in {
		return nil
	}

	out, err := cil.Encode(mod)
	if err != nil {
		return fmt.Errorf("encode %s: %w", mod.Name, err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write module: %w", err)
	}
	return nil
}
