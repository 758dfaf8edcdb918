package main

import (
	"fmt"
	"strings"
)

func showExamples() {
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║      chacha-xcheck: Interactive Examples                 ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	examples := []struct {
		title       string
		description string
		code        string
	}{
		{
			title:       "Example 1: Direct Encryption",
			description: "Stateless encryption with an explicit block counter",
			code: `package main

import (
    "fmt"
    "github.com/siv2r/chacha-xcheck/pkg/chacha20"
)

func main() {
    key, _ := chacha20.RandomKey()
    nonce, _ := chacha20.RandomNonce()

    cipher, _ := chacha20.New(key, nonce)

    // Every call names its counter; nothing is implicit.
    ciphertext := cipher.Encrypt([]byte("attack at dawn"), 0)

    // Decryption is the same XOR at the same counter. There is no
    // default counter: pass the one the data was encrypted with.
    plaintext := cipher.Decrypt(ciphertext, 0)
    fmt.Printf("%s\n", plaintext)
}`,
		},
		{
			title:       "Example 2: Session Streaming",
			description: "Seek-then-read keystream access with a block cursor",
			code: `package main

import (
    "fmt"
    "github.com/siv2r/chacha-xcheck/pkg/chacha20"
)

func main() {
    session := chacha20.NewSession()
    defer session.Reset() // clears key material

    key, _ := chacha20.RandomKey()
    session.SetKey(key)        // nonce and cursor reset to zero
    session.SetNonce(42)       // cursor keeps its position

    // Each read advances the cursor by whole blocks; a read that
    // ends mid-block discards the rest of that block.
    a, _ := session.Keystream(100) // blocks 0-1, cursor now 2
    b, _ := session.Keystream(40)  // block 2, cursor now 3

    // Seeking backwards replays identical keystream.
    session.Seek(0)
    a2, _ := session.Keystream(100)
    fmt.Println(len(a), len(b), len(a2))
}`,
		},
		{
			title:       "Example 3: Checking an External Implementation",
			description: "Cross-validate an engine against the built-in vector table",
			code: `package main

import (
    "context"
    "fmt"
    "github.com/siv2r/chacha-xcheck/pkg/conformance"
    "github.com/siv2r/chacha-xcheck/pkg/vectors"
)

func main() {
    engine, _ := conformance.NewEngine("yawning")

    checker := conformance.New()
    report, _ := checker.Run(context.Background(), engine, vectors.Default())

    fmt.Printf("table %s\n", report.TableDigest)
    if report.Ok() {
        fmt.Println("all vectors passed")
        return
    }
    // One bad vector never hides the others: every result is kept.
    for _, r := range report.Mismatches() {
        fmt.Printf("vector %d (%s): %v\n", r.Index, r.Kind, r.Err)
    }
}`,
		},
		{
			title:       "Example 4: Custom Vector Tables",
			description: "Tables are plain CSV; malformed rows fail loudly by row number",
			code: `package main

import (
    "fmt"
    "os"
    "strings"
    "github.com/siv2r/chacha-xcheck/pkg/vectors"
)

func main() {
    table := strings.NewReader(
        "index,message,key,nonce,counter,expected_output\n" +
            "0,," + strings.Repeat("00", 32) + ",0,0," +
            "76b8e0ada0f13d90405d6ae55386bd28" + "\n")

    vecs, err := vectors.Parse(table)
    if err != nil {
        // e.g. "vectors: row 2: vectors: malformed hex field: key"
        fmt.Fprintln(os.Stderr, err)
        os.Exit(1)
    }

    // Empty message means keystream test; otherwise encryption test.
    fmt.Println(vecs[0].Kind()) // "keystream"

    // Round-trip back to CSV.
    vectors.Marshal(os.Stdout, vecs)
}`,
		},
		{
			title:       "Example 5: Derived Tables",
			description: "Deterministic, replayable fuzzing from a 32-byte seed",
			code: `package main

import (
    "context"
    "fmt"
    "github.com/siv2r/chacha-xcheck/pkg/conformance"
    "github.com/siv2r/chacha-xcheck/pkg/vectors"
)

func main() {
    seed, _ := vectors.NewSeed()
    fmt.Printf("seed %x\n", seed) // print it: the run is replayable

    // 10000 vectors with varied keys, nonces, counters, and lengths,
    // expected outputs filled in by the reference engine.
    table, _ := vectors.Derive(seed, 10000)

    engine, _ := conformance.NewEngine("aead")
    report, _ := conformance.New().Run(context.Background(), engine, table)
    fmt.Println(report.Ok())

    // The same seed always derives the same table, and a longer
    // derivation extends a shorter one without changing it.
    again, _ := vectors.Derive(seed, 10000)
    _ = again // identical to table
}`,
		},
		{
			title:       "Example 6: Error Handling",
			description: "Sentinel errors wrapped with operation context",
			code: `package main

import (
    "fmt"
    "log"
    "github.com/siv2r/chacha-xcheck/pkg/chacha20"
    xerrors "github.com/siv2r/chacha-xcheck/internal/errors"
)

func main() {
    session := chacha20.NewSession()

    if _, err := session.Keystream(64); err != nil {
        if xerrors.Is(err, xerrors.ErrKeyNotSet) {
            fmt.Println("install a key first")
        } else {
            log.Printf("keystream error: %v", err)
        }
    }

    if err := session.SetKey(make([]byte, 16)); err != nil {
        // "chacha20.New: chacha20: invalid key size"
        fmt.Println(err)
    }

    // Table errors carry the offending row number.
    // xerrors.As(err, &vectorErr) exposes it for tooling.
}`,
		},
	}

	for i, ex := range examples {
		fmt.Printf("┌%s┐\n", strings.Repeat("─", 58))
		fmt.Printf("│ %s%s │\n", ex.title, strings.Repeat(" ", 58-len(ex.title)-2))
		fmt.Printf("└%s┘\n", strings.Repeat("─", 58))
		fmt.Println()
		fmt.Println(ex.description)
		fmt.Println()
		fmt.Println(ex.code)
		fmt.Println()

		if i < len(examples)-1 {
			fmt.Println()
		}
	}

	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║                    Next Steps                             ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Println("Run a check:")
	fmt.Println("  chacha-xcheck check --verbose")
	fmt.Println()
	fmt.Println("Fuzz the external engines:")
	fmt.Println("  chacha-xcheck check --derive 10000")
	fmt.Println()
	fmt.Println("Run benchmarks:")
	fmt.Println("  chacha-xcheck bench --keystream --encrypt --check")
	fmt.Println()
	fmt.Println("Documentation:")
	fmt.Println("  https://github.com/siv2r/chacha-xcheck")
	fmt.Println("  https://pkg.go.dev/github.com/siv2r/chacha-xcheck")
	fmt.Println()
}
