package conformance

import (
	"encoding/binary"
	"fmt"
	"math"

	aeadchacha "github.com/aead/chacha20/chacha"
	yawning "gitlab.com/yawning/chacha20.git"

	xerrors "github.com/siv2r/chacha-xcheck/internal/errors"
	"github.com/siv2r/chacha-xcheck/pkg/chacha20"
)

// Registered engine names.
const (
	// EngineReference is the in-tree implementation.
	EngineReference = "reference"

	// EngineYawning is gitlab.com/yawning/chacha20.git.
	EngineYawning = "yawning"

	// EngineAead is github.com/aead/chacha20.
	EngineAead = "aead"
)

// Engines returns the registered engine names, reference first.
func Engines() []string {
	return []string{EngineReference, EngineYawning, EngineAead}
}

// NewEngine constructs a registered engine by name.
func NewEngine(name string) (Engine, error) {
	switch name {
	case EngineReference:
		return NewReferenceEngine(), nil
	case EngineYawning:
		return NewYawningEngine(), nil
	case EngineAead:
		return NewAeadEngine(), nil
	default:
		return nil, fmt.Errorf("%w: %q", xerrors.ErrUnknownEngine, name)
	}
}

// blocksFor returns how many whole blocks cover n bytes.
func blocksFor(n int) uint64 {
	return (uint64(n) + chacha20.BlockSize - 1) / chacha20.BlockSize
}

// nonceBytes serializes a nonce the way the external libraries expect:
// eight little-endian bytes filling state words 14 and 15.
func nonceBytes(nonce uint64) [chacha20.NonceSize]byte {
	var buf [chacha20.NonceSize]byte
	binary.LittleEndian.PutUint64(buf[:], nonce)
	return buf
}

// --- Reference Engine ---

// referenceEngine exposes the in-tree session as an Engine. The session
// already has the required semantics, so the adapter only adds a name.
type referenceEngine struct {
	session *chacha20.Session
}

// NewReferenceEngine returns the in-tree implementation.
func NewReferenceEngine() Engine {
	return &referenceEngine{session: chacha20.NewSession()}
}

func (e *referenceEngine) Name() string { return EngineReference }

func (e *referenceEngine) SetKey(key []byte) error { return e.session.SetKey(key) }

func (e *referenceEngine) SetNonce(nonce uint64) { e.session.SetNonce(nonce) }

func (e *referenceEngine) Seek(counter uint64) { e.session.Seek(counter) }

func (e *referenceEngine) Keystream(n int) ([]byte, error) { return e.session.Keystream(n) }

func (e *referenceEngine) Crypt(data []byte) ([]byte, error) { return e.session.Crypt(data) }

func (e *referenceEngine) Reset() { e.session.Reset() }

// --- Yawning Engine ---

// yawningEngine adapts gitlab.com/yawning/chacha20.git. The library
// keys a cipher from (key, nonce) together and buffers partial blocks
// internally, so the adapter tracks key, nonce, and counter itself,
// re-keys lazily when either key or nonce changes, and seeks before
// every operation to enforce the block-granular cursor.
type yawningEngine struct {
	cipher  *yawning.Cipher
	key     [chacha20.KeySize]byte
	nonce   uint64
	counter uint64
	haveKey bool
	stale   bool // key or nonce changed since the cipher was keyed
}

// NewYawningEngine returns an adapter for gitlab.com/yawning/chacha20.git.
func NewYawningEngine() Engine {
	return &yawningEngine{}
}

func (e *yawningEngine) Name() string { return EngineYawning }

func (e *yawningEngine) SetKey(key []byte) error {
	if len(key) != chacha20.KeySize {
		return xerrors.NewCryptoError("yawning-setkey", xerrors.ErrInvalidKeySize)
	}
	copy(e.key[:], key)
	e.nonce = 0
	e.counter = 0
	e.haveKey = true
	e.stale = true
	return nil
}

func (e *yawningEngine) SetNonce(nonce uint64) {
	e.nonce = nonce
	e.stale = true
}

func (e *yawningEngine) Seek(counter uint64) {
	e.counter = counter
}

// prepare re-keys the cipher if needed and positions it at the cursor.
func (e *yawningEngine) prepare(op string) error {
	if !e.haveKey {
		return xerrors.NewCryptoError(op, xerrors.ErrKeyNotSet)
	}
	if e.stale {
		nonce := nonceBytes(e.nonce)
		if e.cipher == nil {
			c, err := yawning.New(e.key[:], nonce[:])
			if err != nil {
				return xerrors.NewCryptoError(op, err)
			}
			e.cipher = c
		} else if err := e.cipher.ReKey(e.key[:], nonce[:]); err != nil {
			return xerrors.NewCryptoError(op, err)
		}
		e.stale = false
	}
	// Seek discards the library's buffered partial block, which is
	// exactly the cursor semantics the checker expects.
	if err := e.cipher.Seek(e.counter); err != nil {
		return xerrors.NewCryptoError(op, err)
	}
	return nil
}

func (e *yawningEngine) Keystream(n int) ([]byte, error) {
	if err := e.prepare("yawning-keystream"); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, xerrors.NewCryptoError("yawning-keystream", xerrors.ErrNegativeLength)
	}
	dst := make([]byte, n)
	if n > 0 {
		e.cipher.KeyStream(dst)
	}
	e.counter += blocksFor(n)
	return dst, nil
}

func (e *yawningEngine) Crypt(data []byte) ([]byte, error) {
	if err := e.prepare("yawning-crypt"); err != nil {
		return nil, err
	}
	dst := make([]byte, len(data))
	if len(data) > 0 {
		e.cipher.XORKeyStream(dst, data)
	}
	e.counter += blocksFor(len(data))
	return dst, nil
}

func (e *yawningEngine) Reset() {
	chacha20.Zeroize(e.key[:])
	if e.cipher != nil {
		e.cipher.Reset()
		e.cipher = nil
	}
	e.nonce = 0
	e.counter = 0
	e.haveKey = false
	e.stale = false
}

// --- Aead Engine ---

// aeadEngine adapts github.com/aead/chacha20. The library takes the
// nonce before the key, offers no re-key, and panics on counter
// overflow, so the adapter rebuilds the cipher when key or nonce
// changes, repositions with SetCounter before every operation, and
// turns the overflow panic into an error ahead of time.
type aeadEngine struct {
	cipher  *aeadchacha.Cipher
	key     [chacha20.KeySize]byte
	nonce   uint64
	counter uint64
	haveKey bool
	stale   bool
}

// NewAeadEngine returns an adapter for github.com/aead/chacha20.
func NewAeadEngine() Engine {
	return &aeadEngine{}
}

func (e *aeadEngine) Name() string { return EngineAead }

func (e *aeadEngine) SetKey(key []byte) error {
	if len(key) != chacha20.KeySize {
		return xerrors.NewCryptoError("aead-setkey", xerrors.ErrInvalidKeySize)
	}
	copy(e.key[:], key)
	e.nonce = 0
	e.counter = 0
	e.haveKey = true
	e.stale = true
	return nil
}

func (e *aeadEngine) SetNonce(nonce uint64) {
	e.nonce = nonce
	e.stale = true
}

func (e *aeadEngine) Seek(counter uint64) {
	e.counter = counter
}

func (e *aeadEngine) prepare(op string) error {
	if !e.haveKey {
		return xerrors.NewCryptoError(op, xerrors.ErrKeyNotSet)
	}
	if e.stale {
		nonce := nonceBytes(e.nonce)
		c, err := aeadchacha.NewCipher(nonce[:], e.key[:], 20)
		if err != nil {
			return xerrors.NewCryptoError(op, err)
		}
		e.cipher = c
		e.stale = false
	}
	e.cipher.SetCounter(e.counter)
	return nil
}

// checkCounter refuses operations the wrapped cipher would panic on:
// it guards against the counter passing 2^64 instead of wrapping.
func (e *aeadEngine) checkCounter(op string, blocks uint64) error {
	if blocks > 0 && e.counter > math.MaxUint64-blocks {
		return xerrors.NewCryptoError(op, xerrors.ErrCounterOverflow)
	}
	return nil
}

func (e *aeadEngine) Keystream(n int) ([]byte, error) {
	if err := e.prepare("aead-keystream"); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, xerrors.NewCryptoError("aead-keystream", xerrors.ErrNegativeLength)
	}
	if err := e.checkCounter("aead-keystream", blocksFor(n)); err != nil {
		return nil, err
	}
	// XOR over zeros yields raw keystream; in-place is allowed.
	dst := make([]byte, n)
	if n > 0 {
		e.cipher.XORKeyStream(dst, dst)
	}
	e.counter += blocksFor(n)
	return dst, nil
}

func (e *aeadEngine) Crypt(data []byte) ([]byte, error) {
	if err := e.prepare("aead-crypt"); err != nil {
		return nil, err
	}
	if err := e.checkCounter("aead-crypt", blocksFor(len(data))); err != nil {
		return nil, err
	}
	dst := make([]byte, len(data))
	if len(data) > 0 {
		e.cipher.XORKeyStream(dst, data)
	}
	e.counter += blocksFor(len(data))
	return dst, nil
}

func (e *aeadEngine) Reset() {
	chacha20.Zeroize(e.key[:])
	// The wrapped cipher has no zeroize; dropping the reference is the
	// best available.
	e.cipher = nil
	e.nonce = 0
	e.counter = 0
	e.haveKey = false
	e.stale = false
}
