package digest

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/text/cases"
	"lukechampine.com/blake3"
)

// Algorithm selects the content hash used for a whole run.
type Algorithm int

const (
	SHA256 Algorithm = iota
	BLAKE3
)

// Default is used when neither flag nor config names an algorithm.
const Default = SHA256

// ErrUnknownAlgorithm is returned by ParseAlgorithm for names outside the supported set.
var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

var fold = cases.Fold()

// Algorithms lists every supported algorithm in display order.
func Algorithms() []Algorithm {
	return []Algorithm{SHA256, BLAKE3}
}

// ParseAlgorithm resolves a case-insensitive algorithm name.
func ParseAlgorithm(name string) (Algorithm, error) {
	folded := fold.String(strings.TrimSpace(name))
	for _, alg := range Algorithms() {
		if folded == alg.Prefix() {
			return alg, nil
		}
	}
	return 0, fmt.Errorf("%w %q: expected one of: %s", ErrUnknownAlgorithm, name, strings.Join(names(), ", "))
}

// Prefix is the lowercase name written before the hex digest.
func (a Algorithm) Prefix() string {
	switch a {
	case BLAKE3:
		return "blake3"
	default:
		return "sha256"
	}
}

func (a Algorithm) String() string {
	return a.Prefix()
}

// FormatBytesHash renders hex as "<prefix>:<lowercase hex>".
func (a Algorithm) FormatBytesHash(hexDigest string) string {
	return a.Prefix() + ":" + strings.ToLower(hexDigest)
}

// New returns a fresh hash.Hash for the algorithm. Both produce 32-byte sums.
func (a Algorithm) New() hash.Hash {
	switch a {
	case BLAKE3:
		return blake3.New(32, nil)
	default:
		return sha256.New()
	}
}

func names() []string {
	algs := Algorithms()
	out := make([]string, 0, len(algs))
	for _, alg := range algs {
		out = append(out, alg.Prefix())
	}
	return out
}
