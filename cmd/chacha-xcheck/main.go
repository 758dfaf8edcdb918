package main

import (
	"flag"
	"fmt"
	"os"

	pkgversion "github.com/siv2r/chacha-xcheck/pkg/version"
)

// Build-time variables (set via -ldflags)
var (
	version   = ""        // Set via -ldflags "-X main.version=x.y.z"
	buildTime = "unknown" // Set via -ldflags "-X main.buildTime=..."
	gitCommit = "unknown" // Set via -ldflags "-X main.gitCommit=..."
)

func getVersion() string {
	if version != "" {
		return version
	}
	return pkgversion.String()
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "check":
		checkCommand()
	case "vectors":
		vectorsCommand()
	case "bench":
		benchCommand()
	case "example":
		exampleCommand()
	case "version":
		fmt.Printf("chacha-xcheck version %s\n", getVersion())
		if buildTime != "unknown" {
			fmt.Printf("Built: %s\n", buildTime)
		}
		if gitCommit != "unknown" {
			fmt.Printf("Commit: %s\n", gitCommit)
		}
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`chacha-xcheck - ChaCha20 Conformance Checker (64-bit nonce variant)

USAGE:
    chacha-xcheck <command> [options]

COMMANDS:
    check     Cross-check engines against a vector table
    vectors   Print, derive, or fingerprint vector tables
    bench     Run cipher and checker benchmarks
    example   Show example usage with explanations
    version   Print version information
    help      Show this help message

Run 'chacha-xcheck <command> --help' for more information on a command.

EXAMPLES:
    # Check every engine against the built-in table
    chacha-xcheck check

    # Check one engine against a table file
    chacha-xcheck check --engines yawning --table vectors.csv

    # Add 256 derived vectors to the run
    chacha-xcheck check --derive 256

    # Write the built-in table to a file
    chacha-xcheck vectors --out vectors.csv

    # Benchmark keystream generation
    chacha-xcheck bench --keystream --size 256MB

PROJECT:
    chacha-xcheck - ChaCha20 with a 64-bit nonce and 64-bit counter
    https://github.com/siv2r/chacha-xcheck

    Layout: DJB's original 64/64 split of the state's last 128 bits,
    not RFC 8439's 32-bit counter with a 96-bit nonce.`)
}

func checkCommand() {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	engines := fs.String("engines", "all", "Comma-separated engine names, or 'all'")
	table := fs.String("table", "", "Vector table file (CSV). Empty uses the built-in table")
	derive := fs.Int("derive", 0, "Number of derived vectors to append (0 = none)")
	seed := fs.String("seed", "", "Hex seed for derived vectors (random if empty)")
	config := fs.String("config", defaultConfigFile, "Configuration file")
	verbose := fs.Bool("verbose", false, "Print every vector, not only mismatches")
	logLevel := fs.String("log-level", "warn", "Log level: debug, info, warn, error, silent")
	logFormat := fs.String("log-format", "text", "Log format: text or json")
	tracing := fs.String("tracing", "none", "Tracing mode: none, simple, otel (requires -tags otel)")

	fs.Usage = func() {
		fmt.Println(`USAGE: chacha-xcheck check [options]

Run every vector in a table against one or more engines and report,
per vector, whether the output matched. Mismatches never abort a run.

OPTIONS:`)
		fs.PrintDefaults()
		fmt.Println(`
EXAMPLES:
    # All engines, built-in table
    chacha-xcheck check

    # One engine, custom table, every vector printed
    chacha-xcheck check --engines aead --table vectors.csv --verbose

    # Reproducible derived run
    chacha-xcheck check --derive 512 --seed 00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff

    # Structured logs for a CI run
    chacha-xcheck check --log-level info --log-format json`)
	}

	_ = fs.Parse(os.Args[2:])

	runCheck(checkOptions{
		engines:    *engines,
		table:      *table,
		derive:     *derive,
		seed:       *seed,
		configFile: *config,
		verbose:    *verbose,
		logLevel:   *logLevel,
		logFormat:  *logFormat,
		tracing:    *tracing,
	})
}

func vectorsCommand() {
	fs := flag.NewFlagSet("vectors", flag.ExitOnError)
	out := fs.String("out", "-", "Output file, or '-' for stdout")
	table := fs.String("table", "", "Source table file (CSV). Empty uses the built-in table")
	derive := fs.Int("derive", 0, "Number of derived vectors to append (0 = none)")
	seed := fs.String("seed", "", "Hex seed for derived vectors (random if empty)")
	digest := fs.Bool("digest", false, "Print only the table fingerprint")

	fs.Usage = func() {
		fmt.Println(`USAGE: chacha-xcheck vectors [options]

Print a vector table as CSV, optionally extended with derived vectors,
or print its order-independent fingerprint.

OPTIONS:`)
		fs.PrintDefaults()
		fmt.Println(`
EXAMPLES:
    # Built-in table to stdout
    chacha-xcheck vectors

    # Built-in table plus 100 derived vectors to a file
    chacha-xcheck vectors --derive 100 --out extended.csv

    # Fingerprint of a table file
    chacha-xcheck vectors --table vectors.csv --digest`)
	}

	_ = fs.Parse(os.Args[2:])

	runVectors(*out, *table, *derive, *seed, *digest)
}

func benchCommand() {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	keystream := fs.Bool("keystream", false, "Benchmark raw keystream generation")
	encrypt := fs.Bool("encrypt", false, "Benchmark encryption (pooled and unpooled buffers)")
	check := fs.Bool("check", false, "Benchmark conformance runs per engine")
	size := fs.String("size", "64MB", "Data size per pass (e.g., 64MB, 1GB)")
	duration := fs.String("duration", "10s", "Maximum time per pass (e.g., 10s, 1m)")
	nvectors := fs.Int("vectors", 256, "Derived table size for --check")

	fs.Usage = func() {
		fmt.Println(`USAGE: chacha-xcheck bench [options]

Run performance benchmarks for the cipher and the conformance checker.

OPTIONS:`)
		fs.PrintDefaults()
		fmt.Println(`
EXAMPLES:
    # Keystream throughput
    chacha-xcheck bench --keystream --size 256MB

    # Encryption with and without buffer pooling
    chacha-xcheck bench --encrypt --size 128MB

    # Vectors per second for each engine
    chacha-xcheck bench --check --vectors 1024

    # Everything
    chacha-xcheck bench --keystream --encrypt --check`)
	}

	_ = fs.Parse(os.Args[2:])

	runBench(*keystream, *encrypt, *check, *size, *duration, *nvectors)
}

func exampleCommand() {
	if len(os.Args) > 2 && (os.Args[2] == "--help" || os.Args[2] == "-h") {
		fmt.Println(`USAGE: chacha-xcheck example

Display examples with code snippets showing how to use the library.

This command shows:
  - Direct encryption with explicit counters
  - Session streaming and seeking
  - Checking an external implementation
  - Custom and derived vector tables
  - Error handling`)
		return
	}

	showExamples()
}
