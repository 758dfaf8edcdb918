// Known-answer and property tests for the MuHash3072 set hash.
//
// The known-answer digests were computed with an independent
// implementation of the same construction (ChaCha20 element expansion,
// modulus 2^3072 - 1103717, SHA-256 over the little-endian residue).
package muhash_test

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	xerrors "github.com/siv2r/chacha-xcheck/internal/errors"
	"github.com/siv2r/chacha-xcheck/pkg/muhash"
)

// item returns a 32-byte item whose first byte is b and rest are zero.
func item(b byte) []byte {
	it := make([]byte, muhash.ItemSize)
	it[0] = b
	return it
}

func digestHex(m *muhash.MuHash) string {
	d := m.Digest()
	return hex.EncodeToString(d[:])
}

// --- Known-Answer Tests ---

func TestKATEmptySet(t *testing.T) {
	const want = "c85525462fdcf30a2c18d6f4b92923000974355c2477f59594d2c205a1d25add"

	m := muhash.New()
	if got := digestHex(m); got != want {
		t.Errorf("empty set digest mismatch:\n  got:  %s\n  want: %s", got, want)
	}
}

func TestKATInsertRemoveChain(t *testing.T) {
	const want = "c3fd0bdc50f79a383fe0e408e2d21539655de6061cf29a349b254de3d5164ea4"

	m := muhash.New()
	if err := m.Insert(item(0x00)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := m.Insert(item(0x01)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := m.Remove(item(0x02)); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if got := digestHex(m); got != want {
		t.Errorf("chain digest mismatch:\n  got:  %s\n  want: %s", got, want)
	}
}

// --- Property Tests ---

func TestOrderIndependence(t *testing.T) {
	items := [][]byte{item(0x01), item(0x02), item(0x03), item(0x7f)}

	forward := muhash.New()
	for _, it := range items {
		if err := forward.Insert(it); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	backward := muhash.New()
	for i := len(items) - 1; i >= 0; i-- {
		if err := backward.Insert(items[i]); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	if digestHex(forward) != digestHex(backward) {
		t.Error("digest should not depend on insertion order")
	}
}

func TestInsertRemoveCancellation(t *testing.T) {
	m := muhash.New()
	empty := digestHex(m)

	if err := m.Insert(item(0x42)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if digestHex(m) == empty {
		t.Fatal("insertion should change the digest")
	}

	if err := m.Remove(item(0x42)); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if digestHex(m) != empty {
		t.Error("removing the only item should restore the empty digest")
	}
}

func TestMultisetSemantics(t *testing.T) {
	// Inserting the same item twice must differ from inserting it once.
	once := muhash.New()
	if err := once.Insert(item(0x05)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	twice := muhash.New()
	for i := 0; i < 2; i++ {
		if err := twice.Insert(item(0x05)); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	if digestHex(once) == digestHex(twice) {
		t.Error("multiplicity should affect the digest")
	}
}

func TestDistinctItemsDiverge(t *testing.T) {
	a := muhash.New()
	if err := a.Insert(item(0x01)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	b := muhash.New()
	if err := b.Insert(item(0x02)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if digestHex(a) == digestHex(b) {
		t.Error("distinct items should produce distinct digests")
	}
}

func TestDigestDoesNotConsume(t *testing.T) {
	m := muhash.New()
	if err := m.Insert(item(0x09)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	first := m.Digest()
	second := m.Digest()
	if !bytes.Equal(first[:], second[:]) {
		t.Error("repeated Digest calls should agree")
	}
}

func TestInvalidItemSize(t *testing.T) {
	m := muhash.New()

	for _, size := range []int{0, 16, 31, 33, 64} {
		bad := make([]byte, size)
		if err := m.Insert(bad); !errors.Is(err, xerrors.ErrInvalidItemSize) {
			t.Errorf("Insert(%d bytes): got %v, want ErrInvalidItemSize", size, err)
		}
		if err := m.Remove(bad); !errors.Is(err, xerrors.ErrInvalidItemSize) {
			t.Errorf("Remove(%d bytes): got %v, want ErrInvalidItemSize", size, err)
		}
	}

	// Rejected items must not perturb the accumulator.
	if got := digestHex(m); got != digestHex(muhash.New()) {
		t.Error("rejected items should leave the digest unchanged")
	}
}

func TestReset(t *testing.T) {
	m := muhash.New()
	empty := digestHex(m)

	if err := m.Insert(item(0x11)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := m.Remove(item(0x22)); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	m.Reset()
	if digestHex(m) != empty {
		t.Error("Reset should restore the empty-set digest")
	}
}

func BenchmarkInsert(b *testing.B) {
	m := muhash.New()
	it := item(0x33)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.Insert(it)
	}
}

func BenchmarkDigest(b *testing.B) {
	m := muhash.New()
	_ = m.Insert(item(0x44))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.Digest()
	}
}
