// Package chacha20 implements the ChaCha20 stream cipher in its original
// DJB form: a 64-bit nonce and a 64-bit block counter, rather than the
// 96-bit nonce and 32-bit counter of RFC 8439.
//
// State Layout:
//
// Each 64-byte block is produced from a fresh 16-word state:
//
//	words  0..3   the constants "expand 32-byte k"
//	words  4..11  the 256-bit key, little-endian
//	words 12..13  the 64-bit block counter, low word first
//	words 14..15  the 64-bit nonce, low word first
//
// Ten double rounds (20 rounds) mix a working copy of the state, the
// initial state is added back word-wise mod 2^32, and the result is
// serialized little-endian into 64 bytes of keystream.
//
// The 64/64 split is the layout of DJB's reference implementation and of
// 64-bit-nonce deployments such as the Tor and Bitcoin codebases. It is
// NOT wire-compatible with RFC 8439's 96-bit-nonce layout: the round
// function is identical but words 12..15 are packed differently.
//
// Usage:
//
//	c, err := chacha20.New(key, nonce)
//	if err != nil {
//		...
//	}
//	ct := c.Encrypt(plaintext, 0)
//	pt := c.Decrypt(ct, 0)
//
// A Cipher is stateless per call: the block counter is an explicit
// argument to every operation, so calls are independently reentrant and
// safe for concurrent use. Session (session.go) layers a seekable cursor
// on top for callers that want seek-then-read semantics.
package chacha20

import (
	"crypto/subtle"
	"encoding/binary"
	"math/bits"

	"github.com/siv2r/chacha-xcheck/internal/constants"
	xerrors "github.com/siv2r/chacha-xcheck/internal/errors"
)

// Sizes of the cipher's inputs and outputs, in bytes.
const (
	// KeySize is the required key length.
	KeySize = constants.KeySize

	// NonceSize is the serialized nonce length.
	NonceSize = constants.NonceSize

	// BlockSize is the length of one keystream block.
	BlockSize = constants.BlockSize

	// StateWords is the number of 32-bit words in the cipher state.
	StateWords = constants.StateWords
)

// quarterRounds lists the state indices mixed by the eight quarter rounds
// of one double round: four column rounds, then four diagonal rounds.
// The table is the algorithm; the round loop only consumes it.
var quarterRounds = [8][4]int{
	{0, 4, 8, 12},
	{1, 5, 9, 13},
	{2, 6, 10, 14},
	{3, 7, 11, 15},
	{0, 5, 10, 15},
	{1, 6, 11, 12},
	{2, 7, 8, 13},
	{3, 4, 9, 14},
}

// Cipher is a ChaCha20 instance bound to one key and one 64-bit nonce.
// It carries no other state: the block counter is passed per call.
type Cipher struct {
	key   [constants.KeyWords]uint32
	nonce uint64
}

// New creates a Cipher from a 32-byte key and a 64-bit nonce.
// Any nonce value is valid; a key of any other length is rejected.
func New(key []byte, nonce uint64) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, xerrors.NewCryptoError("chacha20.New", xerrors.ErrInvalidKeySize)
	}
	c := &Cipher{nonce: nonce}
	for i := range c.key {
		c.key[i] = binary.LittleEndian.Uint32(key[4*i:])
	}
	return c, nil
}

// Nonce returns the nonce the cipher was constructed with.
func (c *Cipher) Nonce() uint64 {
	return c.nonce
}

// rotl32 rotates x left by n bits. The amount is reduced modulo 32, so
// rotations by 0 or 32 leave x unchanged.
func rotl32(x uint32, n uint) uint32 {
	return bits.RotateLeft32(x, int(n%32))
}

// quarterRound mixes the four state words at indices a, b, c, d with the
// ARX sequence fixed by the algorithm: rotation amounts 16, 12, 8, 7.
// All additions wrap mod 2^32.
func quarterRound(s *[StateWords]uint32, a, b, c, d int) {
	s[a] += s[b]
	s[d] = rotl32(s[d]^s[a], 16)
	s[c] += s[d]
	s[b] = rotl32(s[b]^s[c], 12)
	s[a] += s[b]
	s[d] = rotl32(s[d]^s[a], 8)
	s[c] += s[d]
	s[b] = rotl32(s[b]^s[c], 7)
}

// Block computes the block function for the given counter: build the
// initial state, run ten double rounds on a working copy, then add the
// initial state back word-wise mod 2^32.
//
// The result is deterministic in (key, nonce, counter) and independent of
// any previous call.
func (c *Cipher) Block(counter uint64) [StateWords]uint32 {
	var init [StateWords]uint32
	init[0] = constants.StateConstant0
	init[1] = constants.StateConstant1
	init[2] = constants.StateConstant2
	init[3] = constants.StateConstant3
	copy(init[4:12], c.key[:])
	init[12] = uint32(counter)
	init[13] = uint32(counter >> 32)
	init[14] = uint32(c.nonce)
	init[15] = uint32(c.nonce >> 32)

	state := init
	for i := 0; i < constants.DoubleRounds; i++ {
		for _, q := range quarterRounds {
			quarterRound(&state, q[0], q[1], q[2], q[3])
		}
	}

	// Feed-forward: add the initial state back, word-wise mod 2^32.
	for i := range state {
		state[i] += init[i]
	}
	return state
}

// serialize encodes a 16-word state as 64 bytes, each word little-endian,
// in array order.
func serialize(state [StateWords]uint32) [BlockSize]byte {
	var out [BlockSize]byte
	for i, w := range state {
		binary.LittleEndian.PutUint32(out[4*i:], w)
	}
	return out
}

// Keystream returns n bytes of keystream starting at the given block
// counter. Blocks are always computed whole: a request that is not a
// multiple of BlockSize computes the full final block and truncates it.
//
// Keystream panics if n is negative. Counter overflow past 2^64-1 wraps
// and is unsupported; callers own nonce/counter hygiene.
func (c *Cipher) Keystream(n int, counter uint64) []byte {
	if n < 0 {
		panic("chacha20: negative keystream length")
	}
	blocks := (n + BlockSize - 1) / BlockSize
	out := make([]byte, 0, blocks*BlockSize)
	for i := 0; i < blocks; i++ {
		b := serialize(c.Block(counter + uint64(i)))
		out = append(out, b[:]...)
	}
	return out[:n:n]
}

// XORKeyStream XORs src with keystream starting at the given block
// counter and writes the result to dst. dst must be at least as long as
// src and must either overlap it entirely or not at all.
//
// XORKeyStream panics if dst is shorter than src.
func (c *Cipher) XORKeyStream(dst, src []byte, counter uint64) {
	if len(dst) < len(src) {
		panic("chacha20: output buffer smaller than input")
	}
	for off := 0; off < len(src); off += BlockSize {
		b := serialize(c.Block(counter))
		counter++
		n := len(src) - off
		if n > BlockSize {
			n = BlockSize
		}
		subtle.XORBytes(dst[off:off+n], src[off:off+n], b[:n])
	}
}

// Encrypt XORs data with keystream starting at the given block counter
// and returns the result in a fresh slice. The input is not modified.
func (c *Cipher) Encrypt(data []byte, counter uint64) []byte {
	out := make([]byte, len(data))
	c.XORKeyStream(out, data, counter)
	return out
}

// Decrypt is Encrypt under another name: the cipher is an XOR stream, so
// both directions are the same operation. The counter must be the one the
// data was encrypted with; there is no default.
func (c *Cipher) Decrypt(data []byte, counter uint64) []byte {
	return c.Encrypt(data, counter)
}
