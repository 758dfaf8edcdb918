// Derived vector generation.
//
// The built-in table is small and fixed; Derive stretches a seed into an
// arbitrarily long table of pseudorandom vectors whose expected outputs
// are filled in by the reference engine. Cross-checking an external
// engine against derived vectors turns the checker into a deterministic,
// replayable fuzzer: any divergence is reproducible from the seed alone.
//
// Vector material is drawn from SHAKE-256 (FIPS 202) with domain
// separation, so derived tables are independent of any other use of the
// seed. Length prefixes are 4-byte big-endian integers to ensure
// unambiguous parsing of the XOF input.

package vectors

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/siv2r/chacha-xcheck/pkg/chacha20"
)

// DeriveDomain separates vector derivation from every other SHAKE-256 use.
const DeriveDomain = "chacha-xcheck/derive/v1"

// SeedSize is the length of seeds produced by NewSeed.
const SeedSize = 32

const (
	// maxDerivedLength caps derived outputs at three blocks, enough to
	// exercise multi-block and partial-block paths.
	maxDerivedLength = 3 * chacha20.BlockSize

	// counterMask keeps derived counters 48-bit so counter+blocks stays
	// far from the 2^64 wrap the engine does not guard.
	counterMask = (1 << 48) - 1
)

// NewSeed returns a fresh random derivation seed.
func NewSeed() ([]byte, error) {
	seed := make([]byte, SeedSize)
	if err := chacha20.SecureRandom(seed); err != nil {
		return nil, err
	}
	return seed, nil
}

// Derive expands seed into n pseudorandom vectors with expected outputs
// computed by the reference engine. The result is deterministic in
// (seed, n): Derive(seed, m) is a prefix of Derive(seed, n) for m < n.
// n <= 0 yields an empty table.
//
// Roughly half the vectors are keystream tests and half encryption
// tests; output lengths range over [0, 192] to cover empty, partial,
// and multi-block requests.
func Derive(seed []byte, n int) ([]Vector, error) {
	h := sha3.NewShake256()
	lenBuf := make([]byte, 4)

	// Absorb domain separator and seed, each length-prefixed
	domain := []byte(DeriveDomain)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(domain)))
	h.Write(lenBuf)
	h.Write(domain)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(seed)))
	h.Write(lenBuf)
	h.Write(seed)

	vectors := make([]Vector, 0, max(n, 0))
	for i := 0; i < n; i++ {
		// 32 key + 8 nonce + 8 counter + 1 length + 1 kind
		var raw [50]byte
		_, _ = h.Read(raw[:]) // SHAKE256.Read never fails

		v := Vector{
			Index:   i,
			Key:     append([]byte(nil), raw[0:32]...),
			Nonce:   binary.LittleEndian.Uint64(raw[32:40]),
			Counter: binary.LittleEndian.Uint64(raw[40:48]) & counterMask,
		}
		length := int(raw[48]) % (maxDerivedLength + 1)
		encrypt := raw[49]&1 == 1
		if encrypt && length == 0 {
			length = 1 // an empty message would flip the vector's kind
		}

		c, err := chacha20.New(v.Key, v.Nonce)
		if err != nil {
			return nil, err
		}
		if encrypt {
			v.Message = make([]byte, length)
			_, _ = h.Read(v.Message)
			v.Expected = c.Encrypt(v.Message, v.Counter)
		} else {
			v.Expected = c.Keystream(length, v.Counter)
		}
		vectors = append(vectors, v)
	}
	return vectors, nil
}
