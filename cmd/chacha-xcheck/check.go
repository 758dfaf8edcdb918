package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/siv2r/chacha-xcheck/pkg/conformance"
	"github.com/siv2r/chacha-xcheck/pkg/tracing"
	"github.com/siv2r/chacha-xcheck/pkg/vectors"
)

type checkOptions struct {
	engines    string
	table      string
	derive     int
	seed       string
	configFile string
	verbose    bool
	logLevel   string
	logFormat  string
	tracing    string
}

func runCheck(opts checkOptions) {
	conf, err := loadConfig(opts.configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: config: %v\n", err)
		os.Exit(1)
	}

	logger, err := setupObservability(
		pick(opts.logLevel, "warn", conf.LogLevel),
		pick(opts.logFormat, "text", conf.LogFormat),
		pick(opts.tracing, "none", conf.Tracing),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	tablePath := opts.table
	if tablePath == "" {
		tablePath = conf.Table
	}
	table, err := buildTable(ctx, logger, tablePath, opts.derive, opts.seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	names := resolveEngines(opts.engines, conf.Engines)

	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║      ChaCha20 Conformance Check                          ║")
	fmt.Println("║      64-bit nonce / 64-bit counter layout                ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Vectors: %d\n", len(table))

	checker := conformance.New()
	diverged := false

	for _, name := range names {
		fmt.Println()
		fmt.Printf("Engine: %s\n", name)
		fmt.Println(strings.Repeat("─", 60))

		engine, err := conformance.NewEngine(name)
		if err != nil {
			fmt.Printf("✗ %v\n", err)
			logger.Error().Str("engine", name).Err(err).Msg("engine unavailable")
			diverged = true
			continue
		}

		start := time.Now()
		report, err := checker.Run(ctx, engine, table)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("✗ run failed: %v\n", err)
			logger.Error().Str("engine", name).Err(err).Msg("run failed")
			diverged = true
			continue
		}

		printReport(report, opts.verbose)

		mismatches := len(report.Mismatches())
		logger.Info().
			Str("engine", name).
			Str("table_digest", report.TableDigest).
			Int("vectors", len(report.Results)).
			Int("mismatches", mismatches).
			Dur("elapsed", elapsed).
			Msg("engine checked")

		if mismatches > 0 {
			diverged = true
			fmt.Printf("⚠ %s: %d/%d vectors failed (%v)\n",
				name, mismatches, len(report.Results), elapsed)
		} else {
			fmt.Printf("✓ %s: %d/%d vectors passed (%v)\n",
				name, len(report.Results), len(report.Results), elapsed)
		}
	}

	fmt.Println()
	if diverged {
		fmt.Println("⚠ DIVERGENCE DETECTED - implementations disagree on this table")
		os.Exit(1)
	}
	fmt.Println("✓ All engines agree on the full table")
}

// pick returns the flag value unless it still holds its default and the
// config file offers one.
func pick(flagVal, flagDefault, confVal string) string {
	if flagVal == flagDefault && confVal != "" {
		return confVal
	}
	return flagVal
}

func resolveEngines(flagVal string, confEngines []string) []string {
	if flagVal == "all" {
		if len(confEngines) > 0 {
			return confEngines
		}
		return conformance.Engines()
	}
	var names []string
	for _, name := range strings.Split(flagVal, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// buildTable assembles the run's table: a file or the built-in set,
// optionally extended with seed-derived vectors.
func buildTable(ctx context.Context, logger zerolog.Logger, path string, derive int, seedHex string) ([]vectors.Vector, error) {
	var table []vectors.Vector

	if path != "" {
		_, end := tracing.StartSpan(ctx, tracing.SpanTableLoad)
		loaded, err := vectors.Load(path)
		end(err)
		if err != nil {
			return nil, err
		}
		table = loaded
		logger.Debug().Str("path", path).Int("vectors", len(table)).Msg("table loaded")
	} else {
		table = vectors.Default()
	}

	if derive > 0 {
		seed, err := resolveSeed(seedHex)
		if err != nil {
			return nil, err
		}
		fmt.Printf("Derive seed: %x\n", seed)

		_, end := tracing.StartSpan(ctx, tracing.SpanTableDerive)
		derived, err := vectors.Derive(seed, derive)
		end(err)
		if err != nil {
			return nil, err
		}

		// Re-index the derived vectors past the base table so report
		// lines stay unambiguous.
		next := 0
		for i := range table {
			if table[i].Index >= next {
				next = table[i].Index + 1
			}
		}
		for i := range derived {
			derived[i].Index = next + i
		}
		table = append(table, derived...)
		logger.Debug().Int("derived", len(derived)).Msg("table extended")
	}

	return table, nil
}

func resolveSeed(seedHex string) ([]byte, error) {
	if seedHex == "" {
		return vectors.NewSeed()
	}
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	if len(seed) != vectors.SeedSize {
		return nil, fmt.Errorf("seed: got %d bytes, want %d", len(seed), vectors.SeedSize)
	}
	return seed, nil
}

func printReport(report *conformance.Report, verbose bool) {
	fmt.Printf("Table digest: %s\n", report.TableDigest)

	for i := range report.Results {
		r := &report.Results[i]
		switch {
		case r.Passed() && verbose:
			fmt.Printf("  ✓ vector %d (%s)\n", r.Index, r.Kind)
		case !r.Passed():
			fmt.Printf("  ✗ vector %d (%s): %v\n", r.Index, r.Kind, r.Err)
			if len(r.Got) > 0 {
				fmt.Printf("      got:  %s\n", hexPrefix(r.Got, 24))
				fmt.Printf("      want: %s\n", hexPrefix(r.Want, 24))
			}
		}
	}
}

// hexPrefix renders up to n leading bytes of b as hex, marking truncation.
func hexPrefix(b []byte, n int) string {
	if len(b) <= n {
		return hex.EncodeToString(b)
	}
	return hex.EncodeToString(b[:n]) + "..."
}

// setupObservability builds the process logger and installs the global
// tracer.
func setupObservability(logLevel, logFormat, tracingMode string) (zerolog.Logger, error) {
	level, err := parseLogLevel(logLevel)
	if err != nil {
		return zerolog.Nop(), err
	}

	var out io.Writer
	switch strings.ToLower(logFormat) {
	case "text":
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	case "json":
		out = os.Stderr
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format: %s (use text or json)", logFormat)
	}

	logger := zerolog.New(out).Level(level).With().
		Timestamp().
		Str("app", "chacha-xcheck").
		Logger()

	switch strings.ToLower(tracingMode) {
	case "none":
		tracing.SetTracer(tracing.NoOpTracer{})
	case "simple":
		tracing.SetTracer(tracing.NewSimpleTracer())
	case "otel":
		if !tracing.OTelEnabled() {
			return zerolog.Nop(), fmt.Errorf("otel tracing not enabled (build with -tags otel)")
		}
		tracing.SetTracer(tracing.NewOTelTracer("chacha-xcheck"))
	default:
		return zerolog.Nop(), fmt.Errorf("invalid tracing mode: %s (use none, simple, or otel)", tracingMode)
	}

	return logger, nil
}

func parseLogLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "silent", "off", "none":
		return zerolog.Disabled, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("invalid log level: %s (use debug, info, warn, error, silent)", level)
	}
}
