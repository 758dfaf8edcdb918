package chacha20

import (
	xerrors "github.com/siv2r/chacha-xcheck/internal/errors"
)

// Session wraps a Cipher with a mutable block cursor for callers that
// want seek-then-read semantics instead of explicit per-call counters.
// The pure Block function remains the only primitive underneath; the
// cursor is the session's only state beyond key and nonce.
//
// Cursor semantics are block-granular: Keystream and Crypt advance the
// cursor by whole blocks, so a request that ends inside a block discards
// the unused tail of that block and the next request starts at the
// following block boundary. Use Seek for byte-free repositioning.
//
// A Session is not safe for concurrent use.
type Session struct {
	cipher *Cipher // nil until SetKey succeeds
	nonce  uint64
	cursor uint64
}

// NewSession returns an empty session. A key must be installed with
// SetKey before any keystream can be produced.
func NewSession() *Session {
	return &Session{}
}

// SetKey installs a 32-byte key and resets both the nonce and the cursor
// to zero. Rejects keys of any other length.
func (s *Session) SetKey(key []byte) error {
	c, err := New(key, 0)
	if err != nil {
		return err
	}
	s.cipher = c
	s.nonce = 0
	s.cursor = 0
	return nil
}

// SetNonce changes the session nonce. The cursor keeps its position; use
// Seek to move it. A nonce set before SetKey is discarded by SetKey.
func (s *Session) SetNonce(nonce uint64) {
	s.nonce = nonce
	if s.cipher != nil {
		s.cipher = &Cipher{key: s.cipher.key, nonce: nonce}
	}
}

// Seek positions the cursor at the given block counter. Seeking backwards
// is allowed; the keystream is a pure function of the counter.
func (s *Session) Seek(counter uint64) {
	s.cursor = counter
}

// Counter reports the cursor position in blocks.
func (s *Session) Counter() uint64 {
	return s.cursor
}

// Keystream returns the next n bytes of keystream and advances the cursor
// by ceil(n/BlockSize) blocks.
func (s *Session) Keystream(n int) ([]byte, error) {
	if s.cipher == nil {
		return nil, xerrors.NewCryptoError("session-keystream", xerrors.ErrKeyNotSet)
	}
	if n < 0 {
		return nil, xerrors.NewCryptoError("session-keystream", xerrors.ErrNegativeLength)
	}
	out := s.cipher.Keystream(n, s.cursor)
	s.cursor += blockCount(n)
	return out, nil
}

// Crypt XORs data with keystream at the cursor and advances the cursor by
// ceil(len(data)/BlockSize) blocks. Encrypting and decrypting are the
// same operation.
func (s *Session) Crypt(data []byte) ([]byte, error) {
	if s.cipher == nil {
		return nil, xerrors.NewCryptoError("session-crypt", xerrors.ErrKeyNotSet)
	}
	out := s.cipher.Encrypt(data, s.cursor)
	s.cursor += blockCount(len(data))
	return out, nil
}

// Reset forgets the key and returns the session to its initial state.
func (s *Session) Reset() {
	if s.cipher != nil {
		for i := range s.cipher.key {
			s.cipher.key[i] = 0
		}
		s.cipher = nil
	}
	s.nonce = 0
	s.cursor = 0
}

// blockCount returns the number of whole blocks covering n bytes.
func blockCount(n int) uint64 {
	return uint64((n + BlockSize - 1) / BlockSize)
}
