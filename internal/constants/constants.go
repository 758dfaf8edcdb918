// Package constants defines the cipher parameters and table-format constants
// shared across the chacha-xcheck packages.
//
// The cipher here is the original DJB layout of ChaCha20: a 64-bit nonce and
// a 64-bit block counter occupy the last four state words, instead of the
// 96-bit nonce / 32-bit counter split standardized in RFC 8439. The
// permutation itself (rounds, rotations, feed-forward) is identical.
package constants

// ChaCha20 cipher parameters (64-bit nonce / 64-bit counter variant)
const (
	// KeySize is the only supported key length in bytes.
	KeySize = 32

	// NonceSize is the nonce width in bytes (a single little-endian uint64).
	NonceSize = 8

	// CounterSize is the block-counter width in bytes.
	CounterSize = 8

	// BlockSize is the keystream produced per block-function call, in bytes.
	BlockSize = 64

	// StateWords is the number of 32-bit words in the cipher state.
	StateWords = 16

	// KeyWords is the number of 32-bit words occupied by the key.
	KeyWords = 8

	// DoubleRounds is the number of column+diagonal passes per block.
	DoubleRounds = 10

	// Rounds is the total single-round count (two per double round).
	Rounds = 2 * DoubleRounds
)

// Initial state header: the ASCII constant "expand 32-byte k" read as four
// little-endian 32-bit words. These occupy state words 0..3.
const (
	StateConstant0 = 0x61707865
	StateConstant1 = 0x3320646e
	StateConstant2 = 0x79622d32
	StateConstant3 = 0x6b206574
)

// MuHash3072 parameters
const (
	// MuHashItemSize is the required length of a set item in bytes.
	MuHashItemSize = 32

	// MuHashElementSize is the keystream length drawn per element, in bytes
	// (3072 bits interpreted as a little-endian integer).
	MuHashElementSize = 384

	// MuHashModulusBits is the width of the multiplicative group modulus.
	MuHashModulusBits = 3072

	// MuHashModulusOffset defines the modulus as 2^MuHashModulusBits - offset.
	MuHashModulusOffset = 1103717
)

// Vector table format
const (
	// TableFields is the column count of a vector table row.
	TableFields = 6

	// TableHeader is the required header row of a vector table.
	TableHeader = "index,message,key,nonce,counter,expected_output"
)
