package digest

import (
	"bufio"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
)

const readBufferSize = 64 * 1024

// Digester computes the prefixed content digest of a file. Implementations
// must be safe for concurrent use.
type Digester interface {
	Digest(path string) (string, error)
}

// FileDigester hashes files from the local filesystem.
type FileDigester struct {
	Algorithm Algorithm
}

// NewFileDigester returns a Digester for alg.
func NewFileDigester(alg Algorithm) *FileDigester {
	return &FileDigester{Algorithm: alg}
}

// Digest implements Digester.
func (d *FileDigester) Digest(path string) (string, error) {
	return File(path, d.Algorithm)
}

// File streams path through alg and returns "<prefix>:<hex>".
func File(path string, alg Algorithm) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	adviseSequential(f)

	return Reader(bufio.NewReaderSize(f, readBufferSize), alg)
}

// Reader hashes everything readable from r.
func Reader(r io.Reader, alg Algorithm) (string, error) {
	h := alg.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return alg.FormatBytesHash(hex.EncodeToString(h.Sum(nil))), nil
}

// ErrorText reduces an I/O error to the operating system's description,
// dropping the "open <path>:" prefix that *fs.PathError adds since the path
// is reported separately.
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) && pathErr.Err != nil {
		return pathErr.Err.Error()
	}
	return err.Error()
}
