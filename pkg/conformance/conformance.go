// Package conformance cross-checks ChaCha20 implementations against a
// shared vector table.
//
// An Engine is any implementation of the 64-bit-nonce, 64-bit-counter
// ChaCha20 variant exposed through a small capability set: install a
// key, install a nonce, seek the block counter, produce keystream, and
// encrypt or decrypt bytes. The package ships a reference engine built
// on pkg/chacha20 and adapters for two independent external libraries;
// a Checker drives any engine through a table and reports, per vector,
// whether the engine's output matched the expected bytes.
//
// A mismatch never aborts a run. Every vector is checked and every
// divergence is recorded, so one incompatible vector still leaves a
// complete picture of where an implementation agrees and where it
// drifts. The report carries a MuHash fingerprint of the table it ran,
// tying results to the exact vectors that produced them.
package conformance

import (
	"bytes"
	"context"
	"fmt"

	xerrors "github.com/siv2r/chacha-xcheck/internal/errors"
	"github.com/siv2r/chacha-xcheck/pkg/tracing"
	"github.com/siv2r/chacha-xcheck/pkg/vectors"
)

// Engine is the capability set a ChaCha20 implementation must expose to
// be checked. All engines share session semantics: SetKey installs a
// key and resets the nonce and counter to zero, SetNonce keeps the
// counter, and Keystream and Crypt advance the counter by whole blocks,
// discarding the unused tail of a partial final block.
type Engine interface {
	// Name identifies the engine in reports and traces.
	Name() string

	// SetKey installs a 32-byte key and resets nonce and counter.
	SetKey(key []byte) error

	// SetNonce installs the 64-bit nonce. The counter is unchanged.
	SetNonce(nonce uint64)

	// Seek positions the block counter.
	Seek(counter uint64)

	// Keystream returns the next n keystream bytes.
	Keystream(n int) ([]byte, error)

	// Crypt XORs data with keystream. Encryption and decryption are the
	// same operation.
	Crypt(data []byte) ([]byte, error)

	// Reset clears key material from the engine.
	Reset()
}

// Result is the outcome of one vector against one engine.
type Result struct {
	Index int          // vector index from the table
	Kind  vectors.Kind // keystream or encrypt
	Got   []byte       // engine output, nil if the engine errored
	Want  []byte       // expected output from the table
	Err   error        // nil on pass; ErrMismatch or an engine error otherwise
}

// Passed reports whether the engine matched the expected output.
func (r *Result) Passed() bool {
	return r.Err == nil
}

// Report is the outcome of a full table run against one engine.
type Report struct {
	Engine      string   // engine name
	TableDigest string   // MuHash fingerprint of the table that ran
	Results     []Result // one result per vector, in table order
}

// Ok reports whether every vector passed.
func (r *Report) Ok() bool {
	for i := range r.Results {
		if !r.Results[i].Passed() {
			return false
		}
	}
	return true
}

// Mismatches returns the results that failed.
func (r *Report) Mismatches() []Result {
	var failed []Result
	for i := range r.Results {
		if !r.Results[i].Passed() {
			failed = append(failed, r.Results[i])
		}
	}
	return failed
}

// Checker runs vector tables against engines.
type Checker struct {
	tracer tracing.Tracer
}

// Option configures a Checker.
type Option func(*Checker)

// WithTracer sets the tracer for check runs. Without it the global
// tracer is used.
func WithTracer(t tracing.Tracer) Option {
	return func(c *Checker) {
		c.tracer = t
	}
}

// New creates a Checker.
func New(opts ...Option) *Checker {
	c := &Checker{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Checker) getTracer() tracing.Tracer {
	if c.tracer != nil {
		return c.tracer
	}
	return tracing.GetTracer()
}

// Run checks every vector in the table against the engine. Mismatches
// and per-vector engine errors are recorded in the report, never
// returned; Run itself fails only on context cancellation or a table
// that cannot be fingerprinted. The engine's key material is cleared
// before Run returns.
func (c *Checker) Run(ctx context.Context, engine Engine, table []vectors.Vector) (*Report, error) {
	tracer := c.getTracer()

	digest, err := vectors.Fingerprint(table)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Engine:      engine.Name(),
		TableDigest: digest,
		Results:     make([]Result, 0, len(table)),
	}

	ctx, endRun := tracer.StartSpan(ctx, tracing.SpanCheckRun,
		tracing.WithAttributes(tracing.SpanAttributes{
			Engine:    engine.Name(),
			TableSize: len(table),
		}.ToMap()))
	defer engine.Reset()

	for i := range table {
		if err := ctx.Err(); err != nil {
			endRun(err)
			return nil, err
		}
		report.Results = append(report.Results, c.checkVector(ctx, tracer, engine, &table[i]))
	}

	mismatches := len(report.Mismatches())
	if mismatches > 0 {
		endRun(fmt.Errorf("%w: %d of %d vectors", xerrors.ErrMismatch, mismatches, len(table)))
	} else {
		endRun(nil)
	}
	return report, nil
}

// checkVector drives the engine through one vector: key, nonce, counter,
// then the operation the vector's kind calls for.
func (c *Checker) checkVector(ctx context.Context, tracer tracing.Tracer, engine Engine, v *vectors.Vector) Result {
	result := Result{
		Index: v.Index,
		Kind:  v.Kind(),
		Want:  v.Expected,
	}

	ctx, end := tracer.StartSpan(ctx, tracing.SpanCheckVector,
		tracing.WithAttributes(tracing.SpanAttributes{
			Engine:      engine.Name(),
			VectorIndex: v.Index,
			VectorKind:  v.Kind().String(),
		}.ToMap()))
	defer func() { end(result.Err) }()

	if err := engine.SetKey(v.Key); err != nil {
		result.Err = err
		return result
	}
	engine.SetNonce(v.Nonce)
	engine.Seek(v.Counter)

	var got []byte
	var err error
	switch result.Kind {
	case vectors.KindKeystream:
		_, endOp := tracer.StartSpan(ctx, tracing.SpanEngineKeystream)
		got, err = engine.Keystream(len(v.Expected))
		endOp(err)
	case vectors.KindEncrypt:
		_, endOp := tracer.StartSpan(ctx, tracing.SpanEngineCrypt)
		got, err = engine.Crypt(v.Message)
		endOp(err)
	default:
		err = fmt.Errorf("%w: %v", xerrors.ErrUnknownKind, result.Kind)
	}
	if err != nil {
		result.Err = err
		return result
	}

	result.Got = got
	if !bytes.Equal(got, v.Expected) {
		result.Err = fmt.Errorf("%w: vector %d (%s)", xerrors.ErrMismatch, v.Index, result.Kind)
	}
	return result
}
