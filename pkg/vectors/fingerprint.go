package vectors

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/siv2r/chacha-xcheck/pkg/muhash"
)

// Fingerprint returns a hex digest identifying a vector table as a set.
// Each vector is rendered to its CSV row, hashed with SHA-256, and
// accumulated into a MuHash, so the digest covers every field of every
// vector but does not depend on row order. Two reports carry the same
// fingerprint exactly when they ran the same vectors.
func Fingerprint(vectors []Vector) (string, error) {
	acc := muhash.New()
	for i := range vectors {
		item := sha256.Sum256([]byte(strings.Join(record(&vectors[i]), ",")))
		if err := acc.Insert(item[:]); err != nil {
			return "", err
		}
	}
	d := acc.Digest()
	return hex.EncodeToString(d[:]), nil
}
