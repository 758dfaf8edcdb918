package main

import (
	"context"
	"fmt"
	"os"

	"github.com/siv2r/chacha-xcheck/pkg/tracing"
	"github.com/siv2r/chacha-xcheck/pkg/vectors"
)

func runVectors(out, tablePath string, derive int, seedHex string, digestOnly bool) {
	ctx := context.Background()

	var table []vectors.Vector
	if tablePath != "" {
		loaded, err := vectors.Load(tablePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		table = loaded
	} else {
		table = vectors.Default()
	}

	if derive > 0 {
		seed, err := resolveSeed(seedHex)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Derive seed: %x\n", seed)

		derived, err := vectors.Derive(seed, derive)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
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
	}

	if digestOnly {
		_, end := tracing.StartSpan(ctx, tracing.SpanReportDigest)
		digest, err := vectors.Fingerprint(table)
		end(err)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(digest)
		return
	}

	w := os.Stdout
	if out != "-" && out != "" {
		f, err := os.Create(out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if err := vectors.Marshal(w, table); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if w != os.Stdout {
		fmt.Fprintf(os.Stderr, "Wrote %d vectors to %s\n", len(table), out)
	}
}
