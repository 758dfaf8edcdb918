// Package vectors loads, validates, and generates the shared test-vector
// tables consumed by the conformance checker.
//
// A table is CSV with a fixed header and one vector per row:
//
//	index,message,key,nonce,counter,expected_output
//
// The message, key, and expected_output fields are hex-encoded bytes
// (message may be empty); the nonce is a hexadecimal integer, not hex
// bytes; the counter is a decimal integer. A vector with an empty
// message is a pure keystream test: the expected output is compared
// against keystream of its own length. A vector with a message is an
// encryption test and its expected output must be exactly as long as
// the message.
//
// Malformed rows fail loudly with the offending row number; loading
// never skips or coerces a bad row.
package vectors

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/siv2r/chacha-xcheck/internal/constants"
	xerrors "github.com/siv2r/chacha-xcheck/internal/errors"
)

// Kind classifies what a vector asserts.
type Kind uint8

const (
	// KindKeystream compares raw keystream of the expected output's length.
	KindKeystream Kind = iota

	// KindEncrypt encrypts the message and compares the ciphertext.
	KindEncrypt
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindKeystream:
		return "keystream"
	case KindEncrypt:
		return "encrypt"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Vector is one conformance assertion: with Key and Nonce installed and
// the block counter at Counter, the engine's output must equal Expected.
type Vector struct {
	Index    int    // identifies the vector in reports
	Message  []byte // nil or empty for keystream vectors
	Key      []byte // exactly 32 bytes
	Nonce    uint64
	Counter  uint64
	Expected []byte
}

// Kind reports whether the vector is a keystream or an encryption test.
// The message field decides: empty means keystream.
func (v *Vector) Kind() Kind {
	if len(v.Message) == 0 {
		return KindKeystream
	}
	return KindEncrypt
}

//go:embed testdata/chacha20_vectors.csv
var defaultTable []byte

// Default returns the built-in vector table: DJB's original 64-bit-nonce
// test set plus the RFC 8439 examples re-packed into the 64/64 layout.
// The result is freshly parsed on every call, so callers may modify it.
func Default() []Vector {
	vectors, err := Parse(bytes.NewReader(defaultTable))
	if err != nil {
		panic("vectors: embedded table is malformed: " + err.Error())
	}
	return vectors
}

// Parse reads a vector table from r. The first row must be the exact
// header; any malformed later row aborts parsing with a VectorError
// naming the row.
func Parse(r io.Reader) ([]Vector, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // field count is checked per row for a better error

	header, err := cr.Read()
	if err == io.EOF {
		return nil, xerrors.NewVectorError(1, xerrors.ErrBadHeader)
	}
	if err != nil {
		return nil, xerrors.NewVectorError(1, err)
	}
	if strings.Join(header, ",") != constants.TableHeader {
		return nil, xerrors.NewVectorError(1, xerrors.ErrBadHeader)
	}

	var vectors []Vector
	row := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, xerrors.NewVectorError(row, err)
		}
		v, err := parseRecord(record)
		if err != nil {
			return nil, xerrors.NewVectorError(row, err)
		}
		vectors = append(vectors, v)
	}
	return vectors, nil
}

// parseRecord decodes one data row into a Vector.
func parseRecord(record []string) (Vector, error) {
	var v Vector

	if len(record) != constants.TableFields {
		return v, fmt.Errorf("%w: got %d fields, want %d",
			xerrors.ErrFieldCount, len(record), constants.TableFields)
	}

	index, err := strconv.Atoi(record[0])
	if err != nil {
		return v, fmt.Errorf("%w: index %q", xerrors.ErrBadInteger, record[0])
	}
	v.Index = index

	if record[1] != "" {
		v.Message, err = hex.DecodeString(record[1])
		if err != nil {
			return v, fmt.Errorf("%w: message", xerrors.ErrBadHex)
		}
	}

	v.Key, err = hex.DecodeString(record[2])
	if err != nil {
		return v, fmt.Errorf("%w: key", xerrors.ErrBadHex)
	}
	if len(v.Key) != constants.KeySize {
		return v, fmt.Errorf("%w: got %d bytes", xerrors.ErrInvalidKeySize, len(v.Key))
	}

	v.Nonce, err = strconv.ParseUint(strings.TrimPrefix(record[3], "0x"), 16, 64)
	if err != nil {
		return v, fmt.Errorf("%w: nonce %q", xerrors.ErrBadInteger, record[3])
	}

	v.Counter, err = strconv.ParseUint(record[4], 10, 64)
	if err != nil {
		return v, fmt.Errorf("%w: counter %q", xerrors.ErrBadInteger, record[4])
	}

	v.Expected, err = hex.DecodeString(record[5])
	if err != nil {
		return v, fmt.Errorf("%w: expected_output", xerrors.ErrBadHex)
	}

	if len(v.Message) > 0 && len(v.Expected) != len(v.Message) {
		return v, fmt.Errorf("%w: message %d bytes, expected_output %d bytes",
			xerrors.ErrLengthMismatch, len(v.Message), len(v.Expected))
	}

	return v, nil
}

// Load reads a vector table from a file. The path may start with ~ for
// the user's home directory.
func Load(path string) ([]Vector, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("vectors: expand %q: %w", path, err)
	}
	f, err := os.Open(expanded)
	if err != nil {
		return nil, fmt.Errorf("vectors: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// record renders a vector as one CSV data row. Marshal and Fingerprint
// share it so the on-disk form and the fingerprinted form never drift.
func record(v *Vector) []string {
	return []string{
		strconv.Itoa(v.Index),
		hex.EncodeToString(v.Message),
		hex.EncodeToString(v.Key),
		strconv.FormatUint(v.Nonce, 16),
		strconv.FormatUint(v.Counter, 10),
		hex.EncodeToString(v.Expected),
	}
}

// Marshal writes a vector table to w in the same CSV format Parse reads.
func Marshal(w io.Writer, vectors []Vector) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(constants.TableHeader, ",")); err != nil {
		return fmt.Errorf("vectors: write header: %w", err)
	}
	for i := range vectors {
		if err := cw.Write(record(&vectors[i])); err != nil {
			return fmt.Errorf("vectors: write row %d: %w", vectors[i].Index, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
