package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// HashAlgorithm represents the hashing algorithm to use
type HashAlgorithm string

const (
	SHA256  HashAlgorithm = "sha256"
	BLAKE2B HashAlgorithm = "blake2b"
)

// ParseHashAlgorithm maps a configured name to an algorithm, defaulting to SHA256
func ParseHashAlgorithm(name string) HashAlgorithm {
	switch strings.ToLower(name) {
	case string(BLAKE2B), "blake2b-256":
		return BLAKE2B
	default:
		return SHA256
	}
}

// Hasher provides hashing over the configured algorithm
type Hasher struct {
	algorithm HashAlgorithm
}

// NewHasher creates a new hasher with the specified algorithm
func NewHasher(algorithm HashAlgorithm) *Hasher {
	return &Hasher{
		algorithm: algorithm,
	}
}

// DefaultHasher returns a hasher with the default algorithm
func DefaultHasher() *Hasher {
	return NewHasher(SHA256)
}

// Algorithm returns the configured algorithm
func (h *Hasher) Algorithm() HashAlgorithm {
	return h.algorithm
}

// New returns a streaming hash.Hash for the configured algorithm
func (h *Hasher) New() hash.Hash {
	if h.algorithm == BLAKE2B {
		// only errors for keys longer than 64 bytes
		d, _ := blake2b.New256(nil)
		return d
	}
	return sha256.New()
}

// HashReader streams r through the hasher
func (h *Hasher) HashReader(r io.Reader) (string, error) {
	d := h.New()
	if _, err := io.Copy(d, r); err != nil {
		return "", fmt.Errorf("failed to hash stream: %w", err)
	}
	return hex.EncodeToString(d.Sum(nil)), nil
}

// DigestWriter hashes everything written through it
type DigestWriter struct {
	w io.Writer
	d hash.Hash
	n int64
}

// NewDigestWriter wraps w so that written bytes are also hashed
func (h *Hasher) NewDigestWriter(w io.Writer) *DigestWriter {
	return &DigestWriter{w: w, d: h.New()}
}

func (dw *DigestWriter) Write(p []byte) (int, error) {
	n, err := dw.w.Write(p)
	dw.d.Write(p[:n])
	dw.n += int64(n)
	return n, err
}

// Sum returns the hex digest of the bytes written so far
func (dw *DigestWriter) Sum() string {
	return hex.EncodeToString(dw.d.Sum(nil))
}

// Size returns the number of bytes written so far
func (dw *DigestWriter) Size() int64 {
	return dw.n
}

// ShortHash returns an 8-character prefix for display
func ShortHash(fullHash string) string {
	if len(fullHash) < 8 {
		return fullHash
	}
	return fullHash[:8]
}
