// Package muhash implements a MuHash3072 multiplicative set hash.
//
// A MuHash accumulates an unordered multiset of 32-byte items into a
// single 32-byte digest. Each item is expanded to a 3072-bit group
// element by taking 384 bytes of ChaCha20 keystream with the item as
// key, nonce 0, counter 0, read as a little-endian integer. Insertion
// multiplies the element into a numerator, removal into a denominator,
// both modulo the prime 2^3072 - 1103717. The digest is SHA-256 over the
// little-endian serialization of numerator/denominator.
//
// Because multiplication commutes, the digest depends only on the
// multiset: insertion order never matters, and removing an item exactly
// cancels an earlier insertion. The checker uses this to fingerprint
// vector tables so a report can be tied to the exact table it ran.
package muhash

import (
	"crypto/sha256"
	"math/big"

	"github.com/siv2r/chacha-xcheck/internal/constants"
	xerrors "github.com/siv2r/chacha-xcheck/internal/errors"
	"github.com/siv2r/chacha-xcheck/pkg/chacha20"
)

// ItemSize is the required length of set items.
const ItemSize = constants.MuHashItemSize

// DigestSize is the length of the set digest.
const DigestSize = sha256.Size

// modulus is 2^3072 - 1103717, the largest 3072-bit prime. Primality
// guarantees every nonzero element has an inverse.
var modulus = func() *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), constants.MuHashModulusBits)
	return m.Sub(m, big.NewInt(constants.MuHashModulusOffset))
}()

// MuHash is a running multiset accumulator. The zero value is not
// usable; call New.
//
// A MuHash is not safe for concurrent use.
type MuHash struct {
	numerator   *big.Int
	denominator *big.Int
}

// New returns an accumulator over the empty set.
func New() *MuHash {
	return &MuHash{
		numerator:   big.NewInt(1),
		denominator: big.NewInt(1),
	}
}

// element expands a 32-byte item to its 3072-bit group element.
func element(item []byte) (*big.Int, error) {
	if len(item) != ItemSize {
		return nil, xerrors.NewCryptoError("muhash", xerrors.ErrInvalidItemSize)
	}
	c, err := chacha20.New(item, 0)
	if err != nil {
		return nil, err
	}
	ks := c.Keystream(constants.MuHashElementSize, 0)
	reverse(ks) // keystream is little-endian, big.Int wants big-endian
	e := new(big.Int).SetBytes(ks)
	return e.Mod(e, modulus), nil
}

// Insert adds a 32-byte item to the set. Inserting the same item twice
// counts it twice; the accumulator tracks a multiset.
func (m *MuHash) Insert(item []byte) error {
	e, err := element(item)
	if err != nil {
		return err
	}
	m.numerator.Mul(m.numerator, e)
	m.numerator.Mod(m.numerator, modulus)
	return nil
}

// Remove cancels one earlier insertion of a 32-byte item. Removing an
// item that was never inserted is not detected; the digest simply
// reflects the resulting multiset with a negative count.
func (m *MuHash) Remove(item []byte) error {
	e, err := element(item)
	if err != nil {
		return err
	}
	m.denominator.Mul(m.denominator, e)
	m.denominator.Mod(m.denominator, modulus)
	return nil
}

// Digest returns the 32-byte set digest: SHA-256 over the 384-byte
// little-endian serialization of numerator/denominator mod the prime.
// Digest does not consume the accumulator; it may be called repeatedly
// between updates.
func (m *MuHash) Digest() [DigestSize]byte {
	x := new(big.Int).ModInverse(m.denominator, modulus)
	x.Mul(x, m.numerator)
	x.Mod(x, modulus)

	buf := make([]byte, constants.MuHashElementSize)
	x.FillBytes(buf) // big-endian
	reverse(buf)
	return sha256.Sum256(buf)
}

// Reset returns the accumulator to the empty set.
func (m *MuHash) Reset() {
	m.numerator.SetInt64(1)
	m.denominator.SetInt64(1)
}

// reverse flips a byte slice in place.
func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
