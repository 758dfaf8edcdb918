// Random helpers for key and nonce generation.
//
// All random number generation uses crypto/rand, which provides
// cryptographically secure random bytes from the operating system's
// CSPRNG. Keys produced here are meant for exercising the cipher and the
// conformance engines, but there is no reason for them to be weaker than
// production keys.

package chacha20

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	xerrors "github.com/siv2r/chacha-xcheck/internal/errors"
)

// SecureRandom reads cryptographically secure random bytes into the provided slice.
// It uses crypto/rand.Read which sources entropy from the OS CSPRNG.
//
// This function will only return an error if the system's random number generator
// fails, which should be treated as a critical system failure.
func SecureRandom(b []byte) error {
	_, err := io.ReadFull(rand.Reader, b)
	if err != nil {
		return xerrors.NewCryptoError("SecureRandom", err)
	}
	return nil
}

// MustSecureRandom reads cryptographically secure random bytes into the provided slice.
// It panics if the system's CSPRNG fails, as this indicates a critical system failure.
func MustSecureRandom(b []byte) {
	if err := SecureRandom(b); err != nil {
		panic("chacha20: failed to read from CSPRNG: " + err.Error())
	}
}

// RandomKey returns a fresh 32-byte key from the OS CSPRNG.
func RandomKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if err := SecureRandom(key); err != nil {
		return nil, err
	}
	return key, nil
}

// RandomNonce returns a fresh 64-bit nonce from the OS CSPRNG.
func RandomNonce() (uint64, error) {
	var buf [NonceSize]byte
	if err := SecureRandom(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// Zeroize erases sensitive data from memory by overwriting with zeros.
// Call it on keys when they are no longer needed.
//
// Note: The Go runtime may have already copied the data, and the compiler may
// optimize away the zeroing. For maximum security, consider using memory
// protections at the OS level in production deployments.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ZeroizeMultiple erases multiple byte slices.
func ZeroizeMultiple(slices ...[]byte) {
	for _, s := range slices {
		Zeroize(s)
	}
}
