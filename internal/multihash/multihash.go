/*
Package multihash builds and validates the 34-byte SHA-256 multihash
used by an Import's integrity-check field: two prefix bytes (hash
function code, digest length) followed by the raw digest, per the
multihash self-describing-hash convention.

The wire-shape check here (read a length, then require exactly that
many digest bytes) follows the same shape as the DASL CID decoder this
package is adapted from, trimmed to the one algorithm Dhall allows.
*/
package multihash

import (
	"fmt"

	mh "github.com/multiformats/go-multihash"
	"github.com/multiformats/go-varint"
)

const (
	// sha2-256, per the multihash table: https://github.com/multiformats/multicodec
	codeSHA256 = mh.SHA2_256
	// Dhall only ever uses 32-byte SHA-256 digests.
	digestLength = 32
)

// EncodeSHA256 wraps a 32-byte SHA-256 digest in its multihash framing
// (0x12 0x20 followed by the digest). It panics if digest is not
// exactly 32 bytes; callers only ever pass a sha256.Sum256 result.
func EncodeSHA256(digest []byte) []byte {
	if len(digest) != digestLength {
		panic(fmt.Sprintf("multihash: EncodeSHA256: digest is %d bytes, want %d", len(digest), digestLength))
	}
	encoded, err := mh.Encode(digest, codeSHA256)
	if err != nil {
		// mh.Encode only fails for an invalid code or a length mismatch,
		// neither of which can happen given the check above.
		panic(err)
	}
	return encoded
}

// DecodeSHA256 validates that b is a well-formed Dhall import-hash
// multihash (code sha2-256, length 32) and returns the raw digest.
func DecodeSHA256(b []byte) ([]byte, error) {
	if len(b) < 2 {
		return nil, fmt.Errorf("multihash: too short: %d bytes", len(b))
	}
	code, n, err := varint.FromUvarint(b)
	if err != nil {
		return nil, fmt.Errorf("multihash: bad code varint: %w", err)
	}
	if code != uint64(codeSHA256) {
		return nil, fmt.Errorf("multihash: unsupported hash code 0x%x, want sha2-256 (0x%x)", code, codeSHA256)
	}
	rest := b[n:]
	length, n2, err := varint.FromUvarint(rest)
	if err != nil {
		return nil, fmt.Errorf("multihash: bad length varint: %w", err)
	}
	if length != digestLength {
		return nil, fmt.Errorf("multihash: digest length %d, want %d", length, digestLength)
	}
	digest := rest[n2:]
	if len(digest) != digestLength {
		return nil, fmt.Errorf("multihash: got %d digest bytes, want %d", len(digest), digestLength)
	}
	out := make([]byte, digestLength)
	copy(out, digest)
	return out, nil
}
