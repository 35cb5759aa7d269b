package pipeline

import (
	"encoding/hex"
	"hash"
	"io"

	"hashstage/internal/digest"
)

// hashingWriter digests every byte successfully written to the run output so
// the ledger can identify exactly what a run produced.
type hashingWriter struct {
	w io.Writer
	h hash.Hash
}

func newHashingWriter(w io.Writer) *hashingWriter {
	return &hashingWriter{w: w, h: digest.BLAKE3.New()}
}

func (hw *hashingWriter) Write(p []byte) (int, error) {
	n, err := hw.w.Write(p)
	hw.h.Write(p[:n])
	return n, err
}

// Sum returns "blake3:<hex>" of the bytes written so far.
func (hw *hashingWriter) Sum() string {
	return digest.BLAKE3.FormatBytesHash(hex.EncodeToString(hw.h.Sum(nil)))
}
