// Package integration provides end-to-end integration tests for the chacha-xcheck system.
//
// These tests verify the complete flow from table derivation through
// marshaling, loading, and cross-engine conformance runs.
package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	xerrors "github.com/siv2r/chacha-xcheck/internal/errors"
	"github.com/siv2r/chacha-xcheck/pkg/chacha20"
	"github.com/siv2r/chacha-xcheck/pkg/conformance"
	"github.com/siv2r/chacha-xcheck/pkg/tracing"
	"github.com/siv2r/chacha-xcheck/pkg/vectors"
)

// defaultTableDigest is the MuHash fingerprint of the built-in table.
// It changes only when the embedded vectors do.
const defaultTableDigest = "123c5a2a7e22be700b183807a61c4ef3efe29e060596494d271b7c090be2ecb2"

// TestDefaultTableAllEngines verifies that every engine passes the
// built-in table and that all runs report the same table digest.
func TestDefaultTableAllEngines(t *testing.T) {
	table := vectors.Default()
	checker := conformance.New()

	for _, name := range conformance.Engines() {
		t.Run(name, func(t *testing.T) {
			engine, err := conformance.NewEngine(name)
			if err != nil {
				t.Fatalf("Failed to create engine: %v", err)
			}

			report, err := checker.Run(context.Background(), engine, table)
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}

			if !report.Ok() {
				for _, r := range report.Mismatches() {
					t.Errorf("vector %d (%s): %v", r.Index, r.Kind, r.Err)
				}
			}
			if report.TableDigest != defaultTableDigest {
				t.Errorf("table digest: got %s, want %s", report.TableDigest, defaultTableDigest)
			}
			if len(report.Results) != len(table) {
				t.Errorf("results: got %d, want %d", len(report.Results), len(table))
			}
		})
	}
}

// TestDeriveMarshalLoadCheck verifies the full table lifecycle: derive a
// table from a seed, write it to disk, load it back, and run every
// engine against the loaded copy.
func TestDeriveMarshalLoadCheck(t *testing.T) {
	seed := make([]byte, vectors.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}

	derived, err := vectors.Derive(seed, 48)
	if err != nil {
		t.Fatalf("Failed to derive table: %v", err)
	}

	path := filepath.Join(t.TempDir(), "derived.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create table file: %v", err)
	}
	if err := vectors.Marshal(f, derived); err != nil {
		t.Fatalf("Failed to marshal table: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Failed to close table file: %v", err)
	}

	loaded, err := vectors.Load(path)
	if err != nil {
		t.Fatalf("Failed to load table: %v", err)
	}
	if len(loaded) != len(derived) {
		t.Fatalf("loaded %d vectors, derived %d", len(loaded), len(derived))
	}
	for i := range loaded {
		if loaded[i].Index != derived[i].Index ||
			loaded[i].Nonce != derived[i].Nonce ||
			loaded[i].Counter != derived[i].Counter ||
			!bytes.Equal(loaded[i].Key, derived[i].Key) ||
			!bytes.Equal(loaded[i].Message, derived[i].Message) ||
			!bytes.Equal(loaded[i].Expected, derived[i].Expected) {
			t.Fatalf("vector %d changed across marshal/load", i)
		}
	}

	wantDigest, err := vectors.Fingerprint(derived)
	if err != nil {
		t.Fatalf("Failed to fingerprint table: %v", err)
	}

	checker := conformance.New()
	for _, name := range conformance.Engines() {
		engine, err := conformance.NewEngine(name)
		if err != nil {
			t.Fatalf("Failed to create engine %s: %v", name, err)
		}
		report, err := checker.Run(context.Background(), engine, loaded)
		if err != nil {
			t.Fatalf("Run failed for %s: %v", name, err)
		}
		if !report.Ok() {
			t.Errorf("%s: %d mismatches on derived table", name, len(report.Mismatches()))
		}
		if report.TableDigest != wantDigest {
			t.Errorf("%s: table digest %s, want %s", name, report.TableDigest, wantDigest)
		}
	}
}

// TestDivergenceDetection verifies that a corrupted expected output is
// flagged by every engine, at the right vector, without disturbing the
// rest of the run.
func TestDivergenceDetection(t *testing.T) {
	table := vectors.Default()
	table[4].Expected[0] ^= 0x01

	checker := conformance.New()
	for _, name := range conformance.Engines() {
		t.Run(name, func(t *testing.T) {
			engine, err := conformance.NewEngine(name)
			if err != nil {
				t.Fatalf("Failed to create engine: %v", err)
			}

			report, err := checker.Run(context.Background(), engine, table)
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}

			if report.Ok() {
				t.Fatal("corrupted table passed")
			}
			mismatches := report.Mismatches()
			if len(mismatches) != 1 {
				t.Fatalf("got %d mismatches, want 1", len(mismatches))
			}
			if mismatches[0].Index != table[4].Index {
				t.Errorf("mismatch at vector %d, want %d", mismatches[0].Index, table[4].Index)
			}
			if !xerrors.Is(mismatches[0].Err, xerrors.ErrMismatch) {
				t.Errorf("unexpected error type: %v", mismatches[0].Err)
			}
			if len(report.Results) != len(table) {
				t.Errorf("run stopped early: %d of %d results", len(report.Results), len(table))
			}
		})
	}
}

// TestCorruptTableFileReportsRow verifies that loading a damaged table
// file fails with the offending row number.
func TestCorruptTableFileReportsRow(t *testing.T) {
	var buf bytes.Buffer
	if err := vectors.Marshal(&buf, vectors.Default()); err != nil {
		t.Fatalf("Failed to marshal table: %v", err)
	}

	// Truncate the first vector's key to an odd-length hex string. The
	// header is row 1, so the damage lands on row 2.
	corrupt := bytes.Replace(buf.Bytes(), []byte(strings.Repeat("0", 64)), []byte("000"), 1)

	path := filepath.Join(t.TempDir(), "corrupt.csv")
	if err := os.WriteFile(path, corrupt, 0o600); err != nil {
		t.Fatalf("Failed to write table file: %v", err)
	}

	_, err := vectors.Load(path)
	if err == nil {
		t.Fatal("corrupt table loaded without error")
	}
	if !xerrors.Is(err, xerrors.ErrBadHex) {
		t.Errorf("unexpected error: %v", err)
	}
	var vErr *xerrors.VectorError
	if !xerrors.As(err, &vErr) {
		t.Fatalf("error does not carry a row number: %v", err)
	}
	if vErr.Row != 2 {
		t.Errorf("error names row %d, want 2", vErr.Row)
	}
}

// TestSessionLockstepStreaming verifies that two sessions with the same
// key and nonce stay in lockstep across uneven chunk sizes, so a
// receiver can decrypt a stream chunk by chunk.
func TestSessionLockstepStreaming(t *testing.T) {
	key := make([]byte, chacha20.KeySize)
	for i := range key {
		key[i] = byte(i * 7)
	}

	sender := chacha20.NewSession()
	receiver := chacha20.NewSession()
	defer sender.Reset()
	defer receiver.Reset()

	if err := sender.SetKey(key); err != nil {
		t.Fatalf("Failed to key sender: %v", err)
	}
	if err := receiver.SetKey(key); err != nil {
		t.Fatalf("Failed to key receiver: %v", err)
	}
	sender.SetNonce(0x4a000000)
	receiver.SetNonce(0x4a000000)

	// Partial blocks on both sides of a chunk boundary; both cursors
	// discard the same tail, so the streams stay aligned.
	for _, size := range []int{100, 40, 64, 7, 1000, 0, 65} {
		plaintext := make([]byte, size)
		for i := range plaintext {
			plaintext[i] = byte(i)
		}

		ciphertext, err := sender.Crypt(plaintext)
		if err != nil {
			t.Fatalf("Send of %d bytes failed: %v", size, err)
		}
		decrypted, err := receiver.Crypt(ciphertext)
		if err != nil {
			t.Fatalf("Receive of %d bytes failed: %v", size, err)
		}

		if !bytes.Equal(decrypted, plaintext) {
			t.Errorf("Size %d: data mismatch", size)
		}
		if sender.Counter() != receiver.Counter() {
			t.Fatalf("Size %d: cursors diverged: %d != %d", size, sender.Counter(), receiver.Counter())
		}
	}
}

// TestSeekReplayDecryption verifies that a fresh session can decrypt
// data from any stream position by seeking to the counter it was
// encrypted at.
func TestSeekReplayDecryption(t *testing.T) {
	key := make([]byte, chacha20.KeySize)
	for i := range key {
		key[i] = byte(255 - i)
	}
	plaintext := []byte("resume from the middle of the stream")

	sender := chacha20.NewSession()
	if err := sender.SetKey(key); err != nil {
		t.Fatalf("Failed to key sender: %v", err)
	}
	sender.SetNonce(7)
	sender.Seek(5)
	ciphertext, err := sender.Crypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	receiver := chacha20.NewSession()
	if err := receiver.SetKey(key); err != nil {
		t.Fatalf("Failed to key receiver: %v", err)
	}
	receiver.SetNonce(7)
	receiver.Seek(5)
	decrypted, err := receiver.Crypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}

	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("got %q, want %q", decrypted, plaintext)
	}
}

// TestTracingAcrossRuns verifies that one tracer collects a complete
// span tree for consecutive engine runs.
func TestTracingAcrossRuns(t *testing.T) {
	table := vectors.Default()
	tracer := tracing.NewSimpleTracer()
	checker := conformance.New(conformance.WithTracer(tracer))

	for _, name := range []string{conformance.EngineReference, conformance.EngineYawning} {
		engine, err := conformance.NewEngine(name)
		if err != nil {
			t.Fatalf("Failed to create engine %s: %v", name, err)
		}
		if _, err := checker.Run(context.Background(), engine, table); err != nil {
			t.Fatalf("Run failed for %s: %v", name, err)
		}
	}

	var runs, vectorSpans, opSpans int
	for _, span := range tracer.Spans() {
		switch span.Name {
		case tracing.SpanCheckRun:
			runs++
		case tracing.SpanCheckVector:
			vectorSpans++
			if span.ParentID == "" {
				t.Error("vector span has no parent")
			}
		case tracing.SpanEngineKeystream, tracing.SpanEngineCrypt:
			opSpans++
		}
	}

	if runs != 2 {
		t.Errorf("run spans: got %d, want 2", runs)
	}
	if vectorSpans != 2*len(table) {
		t.Errorf("vector spans: got %d, want %d", vectorSpans, 2*len(table))
	}
	if opSpans != 2*len(table) {
		t.Errorf("engine op spans: got %d, want %d", opSpans, 2*len(table))
	}
}
