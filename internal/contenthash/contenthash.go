package contenthash

import (
	"crypto/md5" //nolint:gosec // naming scheme, not authentication
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"
)

const (
	AlgorithmMD5    = "md5"
	AlgorithmBLAKE3 = "blake3"
)

// Hasher computes a deterministic hex digest for a byte buffer.
type Hasher interface {
	Digest(data []byte) string
	Algorithm() string
}

// New returns the hasher for the named algorithm.
func New(algorithm string) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", AlgorithmMD5:
		return MD5{}, nil
	case AlgorithmBLAKE3:
		return BLAKE3{}, nil
	default:
		return nil, fmt.Errorf("content hash: unsupported algorithm %q", algorithm)
	}
}

// MD5 names assets the way Scratch does.
type MD5 struct{}

func (MD5) Digest(data []byte) string {
	sum := md5.Sum(data) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

func (MD5) Algorithm() string { return AlgorithmMD5 }

// BLAKE3 produces 256-bit digests.
type BLAKE3 struct{}

func (BLAKE3) Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (BLAKE3) Algorithm() string { return AlgorithmBLAKE3 }

// Filename joins a digest and extension into a content-addressed name.
func Filename(digest, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	if ext == "" {
		return digest
	}
	return digest + "." + ext
}

// SplitFilename splits a content-addressed name at its last '.' into the bare
// identifier and the extension. A name without '.' yields an empty extension.
func SplitFilename(name string) (id, ext string) {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return name, ""
	}
	return name[:idx], name[idx+1:]
}
