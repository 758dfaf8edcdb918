package chacha20

import (
	"bytes"
	"testing"

	xerrors "github.com/siv2r/chacha-xcheck/internal/errors"
)

// TestRotl32 verifies the rotation primitive, including the modulo-32
// shift normalization.
func TestRotl32(t *testing.T) {
	tests := []struct {
		x    uint32
		n    uint
		want uint32
	}{
		{0x00000001, 0, 0x00000001}, // zero rotation is a no-op
		{0x00000001, 32, 0x00000001},
		{0x00000001, 1, 0x00000002},
		{0x80000000, 1, 0x00000001}, // wraps around
		{0x12345678, 16, 0x56781234},
		{0xdeadbeef, 36, 0xeadbeefd}, // 36 mod 32 == 4
		{0xffffffff, 7, 0xffffffff},
		{0x00000000, 12, 0x00000000},
	}

	for _, tt := range tests {
		if got := rotl32(tt.x, tt.n); got != tt.want {
			t.Errorf("rotl32(%#08x, %d) = %#08x, want %#08x", tt.x, tt.n, got, tt.want)
		}
	}
}

// TestQuarterRound verifies one quarter round against the RFC 8439 2.1.1
// worked example.
func TestQuarterRound(t *testing.T) {
	var s [StateWords]uint32
	s[0], s[1], s[2], s[3] = 0x11111111, 0x01020304, 0x9b8d6f43, 0x01234567

	quarterRound(&s, 0, 1, 2, 3)

	want := [4]uint32{0xea2a92f4, 0xcb1cf8ce, 0x4581472e, 0x5881c4bb}
	for i, w := range want {
		if s[i] != w {
			t.Errorf("word %d = %#08x, want %#08x", i, s[i], w)
		}
	}
}

// TestQuarterRoundOnState verifies a quarter round applied to a full
// state touches only its four indices, using the RFC 8439 2.2.1 example
// (QR on indices 2, 7, 8, 13).
func TestQuarterRoundOnState(t *testing.T) {
	before := [StateWords]uint32{
		0x879531e0, 0xc5ecf37d, 0x516461b1, 0xc9a62f8a,
		0x44c20ef3, 0x3390af7f, 0xd9fc690b, 0x2a5f714c,
		0x53372767, 0xb00a5631, 0x974c541a, 0x359e9963,
		0x5c971061, 0x3d631689, 0x2098d9d6, 0x91dbd320,
	}
	wantChanged := map[int]uint32{
		2:  0xbdb886dc,
		7:  0xcfacafd2,
		8:  0xe46bea80,
		13: 0xccc07c79,
	}

	after := before
	quarterRound(&after, 2, 7, 8, 13)

	for i := range after {
		if want, ok := wantChanged[i]; ok {
			if after[i] != want {
				t.Errorf("word %d = %#08x, want %#08x", i, after[i], want)
			}
		} else if after[i] != before[i] {
			t.Errorf("word %d changed from %#08x to %#08x, should be untouched",
				i, before[i], after[i])
		}
	}
}

// TestQuarterRoundTable verifies the shape of the index table: four
// column rounds followed by four diagonal rounds, with every state index
// mixed exactly twice per double round.
func TestQuarterRoundTable(t *testing.T) {
	if len(quarterRounds) != 8 {
		t.Fatalf("table has %d rounds, want 8", len(quarterRounds))
	}

	counts := make(map[int]int)
	for r, q := range quarterRounds {
		for _, idx := range q {
			if idx < 0 || idx >= StateWords {
				t.Fatalf("round %d holds out-of-range index %d", r, idx)
			}
			counts[idx]++
		}
	}
	for i := 0; i < StateWords; i++ {
		if counts[i] != 2 {
			t.Errorf("index %d mixed %d times per double round, want 2", i, counts[i])
		}
	}

	// Column rounds walk the columns in order
	for i := 0; i < 4; i++ {
		want := [4]int{i, i + 4, i + 8, i + 12}
		if quarterRounds[i] != want {
			t.Errorf("column round %d = %v, want %v", i, quarterRounds[i], want)
		}
	}
	// Diagonal rounds start at the main diagonal
	if quarterRounds[4] != [4]int{0, 5, 10, 15} {
		t.Errorf("first diagonal round = %v, want [0 5 10 15]", quarterRounds[4])
	}
}

// TestSerialize verifies the little-endian, array-order serialization.
func TestSerialize(t *testing.T) {
	var state [StateWords]uint32
	for i := range state {
		b := uint32(4 * i)
		state[i] = b | (b+1)<<8 | (b+2)<<16 | (b+3)<<24
	}

	out := serialize(state)
	for i, b := range out {
		if b != byte(i) {
			t.Errorf("byte %d = %#02x, want %#02x", i, b, byte(i))
		}
	}
}

// TestBlockDeterminism checks that the block function is a pure function
// of (key, nonce, counter).
func TestBlockDeterminism(t *testing.T) {
	key := make([]byte, KeySize)
	MustSecureRandom(key)

	c, err := New(key, 0x1122334455667788)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for _, counter := range []uint64{0, 1, 1 << 32, ^uint64(0)} {
		a := c.Block(counter)
		b := c.Block(counter)
		if a != b {
			t.Errorf("Block(%d) is not deterministic", counter)
		}
	}
}

// TestNewRejectsBadKeys checks the construction-time key length check.
func TestNewRejectsBadKeys(t *testing.T) {
	for _, n := range []int{0, 1, 16, 31, 33, 64} {
		_, err := New(make([]byte, n), 0)
		if err == nil {
			t.Errorf("New accepted a %d-byte key", n)
			continue
		}
		if !xerrors.Is(err, xerrors.ErrInvalidKeySize) {
			t.Errorf("New(%d-byte key) returned %v, want ErrInvalidKeySize", n, err)
		}
	}

	if _, err := New(make([]byte, KeySize), 0); err != nil {
		t.Errorf("New rejected a valid key: %v", err)
	}
}

// TestKeystreamLength checks length exactness for sizes around the block
// boundary, including zero.
func TestKeystreamLength(t *testing.T) {
	key := make([]byte, KeySize)
	MustSecureRandom(key)
	c, _ := New(key, 7)

	for _, n := range []int{0, 1, 63, 64, 65, 127, 128, 129, 1000} {
		ks := c.Keystream(n, 0)
		if len(ks) != n {
			t.Errorf("len(Keystream(%d)) = %d, want %d", n, len(ks), n)
		}
	}
}

// TestKeystreamNegativePanics checks the misuse guard.
func TestKeystreamNegativePanics(t *testing.T) {
	c, _ := New(make([]byte, KeySize), 0)

	defer func() {
		if recover() == nil {
			t.Error("Keystream(-1) did not panic")
		}
	}()
	c.Keystream(-1, 0)
}

// TestCounterIndependence checks that one long request equals the
// concatenation of adjacent per-block requests.
func TestCounterIndependence(t *testing.T) {
	key := make([]byte, KeySize)
	MustSecureRandom(key)
	c, _ := New(key, 42)

	long := c.Keystream(128, 0)
	first := c.Keystream(64, 0)
	second := c.Keystream(64, 1)

	if !bytes.Equal(long[:64], first) {
		t.Error("first half of Keystream(128, 0) differs from Keystream(64, 0)")
	}
	if !bytes.Equal(long[64:], second) {
		t.Error("second half of Keystream(128, 0) differs from Keystream(64, 1)")
	}
}

// TestEncryptKeystreamConsistency checks that encryption is exactly an
// XOR with the keystream.
func TestEncryptKeystreamConsistency(t *testing.T) {
	key := make([]byte, KeySize)
	MustSecureRandom(key)
	c, _ := New(key, 3)

	plaintext := make([]byte, 300)
	MustSecureRandom(plaintext)

	for _, counter := range []uint64{0, 1, 1000} {
		ct := c.Encrypt(plaintext, counter)
		ks := c.Keystream(len(plaintext), counter)

		manual := make([]byte, len(plaintext))
		for i := range plaintext {
			manual[i] = plaintext[i] ^ ks[i]
		}
		if !bytes.Equal(ct, manual) {
			t.Errorf("Encrypt(_, %d) != plaintext XOR keystream", counter)
		}
	}
}

// TestEncryptInvolution checks that encrypting twice with the same
// counter restores the input.
func TestEncryptInvolution(t *testing.T) {
	key := make([]byte, KeySize)
	MustSecureRandom(key)
	c, _ := New(key, 0x0807060504030201)

	for _, n := range []int{0, 1, 64, 100, 1024} {
		plaintext := make([]byte, n)
		MustSecureRandom(plaintext)

		roundTripped := c.Encrypt(c.Encrypt(plaintext, 5), 5)
		if !bytes.Equal(roundTripped, plaintext) {
			t.Errorf("double Encrypt of %d bytes did not restore the input", n)
		}

		// Decrypt is the documented spelling of the second call
		if !bytes.Equal(c.Decrypt(c.Encrypt(plaintext, 9), 9), plaintext) {
			t.Errorf("Decrypt(Encrypt(%d bytes)) did not restore the input", n)
		}
	}
}

// TestEncryptDoesNotModifyInput checks that Encrypt works on a copy.
func TestEncryptDoesNotModifyInput(t *testing.T) {
	c, _ := New(make([]byte, KeySize), 0)

	plaintext := []byte("attack at dawn")
	saved := append([]byte(nil), plaintext...)

	_ = c.Encrypt(plaintext, 0)
	if !bytes.Equal(plaintext, saved) {
		t.Error("Encrypt modified its input")
	}
}

// TestXORKeyStreamShortDstPanics checks the destination size guard.
func TestXORKeyStreamShortDstPanics(t *testing.T) {
	c, _ := New(make([]byte, KeySize), 0)

	defer func() {
		if recover() == nil {
			t.Error("XORKeyStream with short dst did not panic")
		}
	}()
	c.XORKeyStream(make([]byte, 10), make([]byte, 11), 0)
}

// TestXORKeyStreamInPlace checks the exact-overlap case.
func TestXORKeyStreamInPlace(t *testing.T) {
	key := make([]byte, KeySize)
	MustSecureRandom(key)
	c, _ := New(key, 77)

	plaintext := make([]byte, 150)
	MustSecureRandom(plaintext)

	want := c.Encrypt(plaintext, 2)

	buf := append([]byte(nil), plaintext...)
	c.XORKeyStream(buf, buf, 2)
	if !bytes.Equal(buf, want) {
		t.Error("in-place XORKeyStream differs from Encrypt")
	}
}

// TestNonceAccessor checks the nonce is retained as constructed.
func TestNonceAccessor(t *testing.T) {
	c, _ := New(make([]byte, KeySize), 0xdeadbeefcafebabe)
	if c.Nonce() != 0xdeadbeefcafebabe {
		t.Errorf("Nonce() = %#x, want %#x", c.Nonce(), uint64(0xdeadbeefcafebabe))
	}
}

// TestDistinctNoncesDiverge checks that changing only the nonce changes
// the keystream.
func TestDistinctNoncesDiverge(t *testing.T) {
	key := make([]byte, KeySize)
	MustSecureRandom(key)

	a, _ := New(key, 1)
	b, _ := New(key, 2)

	if bytes.Equal(a.Keystream(64, 0), b.Keystream(64, 0)) {
		t.Error("different nonces produced identical keystream")
	}
}
