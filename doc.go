// Package chachaxcheck provides a ChaCha20 variant with a 64-bit nonce and
// 64-bit block counter, plus a conformance checker that cross-validates
// independent implementations of it against a shared test-vector table.
//
// The cipher follows DJB's original state layout: the 128-bit tail of the
// state holds a 64-bit counter in words 12-13 and a 64-bit nonce in words
// 14-15, unlike RFC 8439's 32-bit counter and 96-bit nonce. The round
// function itself is the standard one, so keystreams agree with RFC 8439
// whenever a counter/nonce pair is representable in both layouts.
//
// # Quick Start
//
// For direct encryption with an explicit counter:
//
//	import "github.com/siv2r/chacha-xcheck/pkg/chacha20"
//
//	cipher, _ := chacha20.New(key, nonce)
//	ciphertext := cipher.Encrypt(plaintext, 0)
//	plaintext2 := cipher.Decrypt(ciphertext, 0)
//
// For checking an implementation against the built-in table:
//
//	import (
//		"github.com/siv2r/chacha-xcheck/pkg/conformance"
//		"github.com/siv2r/chacha-xcheck/pkg/vectors"
//	)
//
//	engine, _ := conformance.NewEngine("yawning")
//	report, _ := conformance.New().Run(ctx, engine, vectors.Default())
//	fmt.Println(report.Ok())
//
// # Package Structure
//
// The library is organized into several packages:
//
//   - pkg/chacha20: The reference cipher, sessions, and keystream primitives
//   - pkg/vectors: Vector table parsing, generation, and fingerprinting
//   - pkg/conformance: Engine adapters and the cross-checking harness
//   - pkg/muhash: Order-independent set hashing for table fingerprints
//   - pkg/tracing: Span-based tracing for check runs
//   - internal/constants: Cipher parameters and table format constants
//   - internal/errors: Custom error types for detailed error handling
//
// # Vector Tables
//
// A table is CSV with one assertion per row. Rows with an empty message
// compare raw keystream; rows with a message compare ciphertext. The
// built-in table covers DJB's original test set and the RFC 8439
// examples re-packed into the 64/64 layout; pkg/vectors can also derive
// arbitrarily many reference-filled vectors from a seed for
// deterministic, replayable fuzzing of external engines.
//
// # Testing
//
// The library includes comprehensive tests:
//
//	go test ./...                              # All tests
//	go test -fuzz=FuzzParse ./test/fuzz/      # Fuzz tests
//	go test -run TestKAT ./pkg/chacha20       # Known Answer Tests
//	go test -bench=. ./test/benchmark         # Benchmarks
//
// # References
//
//   - RFC 8439: ChaCha20 and Poly1305 for IETF Protocols
//   - DJB, ChaCha, a variant of Salsa20 (2008)
//
// For more information, see: https://github.com/siv2r/chacha-xcheck
package chachaxcheck
