/*
Package cache stores resolved, encoded Dhall expressions on disk,
content-addressed by the SHA-256 of their bit-exact CBOR bytes, with a
small CBOR manifest recording the digest, a secondary BLAKE3 digest,
size, and storage time for each entry.
*/
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
	"lukechampine.com/blake3"
)

// Options configures a Store.
type Options struct {
	// Dir is the directory entries and manifests are stored under. It
	// is created on first use if it does not already exist.
	Dir string

	// VerifyBlake3, when true, makes Warm also re-verify each entry's
	// BLAKE3 digest, catching bit flips that happen not to change the
	// SHA-256 (vanishingly unlikely, but the check is cheap).
	VerifyBlake3 bool
}

// Entry is the manifest record stored alongside one cached payload.
type Entry struct {
	Digest    [32]byte `cbor:"digest"`
	Blake3    []byte   `cbor:"blake3,omitempty"`
	SizeBytes int64    `cbor:"size_bytes"`
	StoredAt  time.Time `cbor:"stored_at"`
}

// Store is a directory-backed, content-addressed cache of encoded
// expressions. Filenames are the lowercase-hex digest, following the
// same content-hash-as-filename convention a RASL-backed directory
// handler uses to serve files by CID.
type Store struct {
	dir          string
	verifyBlake3 bool
}

// NewStore opens (and if necessary creates) a cache directory.
func NewStore(opts Options) (*Store, error) {
	if opts.Dir == "" {
		return nil, errors.New("cache: Options.Dir must not be empty")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: creating %s: %w", opts.Dir, err)
	}
	return &Store{dir: opts.Dir, verifyBlake3: opts.VerifyBlake3}, nil
}

func (s *Store) payloadPath(digest [32]byte) string {
	return filepath.Join(s.dir, hex.EncodeToString(digest[:]))
}

func (s *Store) manifestPath(digest [32]byte) string {
	return filepath.Join(s.dir, hex.EncodeToString(digest[:])+".manifest")
}

// Put stores raw under its own SHA-256 digest and returns that digest.
// Calling Put twice with the same bytes is a no-op the second time.
func (s *Store) Put(raw []byte) ([32]byte, error) {
	digest := sha256.Sum256(raw)
	payloadPath := s.payloadPath(digest)
	if _, err := os.Stat(payloadPath); err == nil {
		return digest, nil
	}

	entry := Entry{Digest: digest, SizeBytes: int64(len(raw)), StoredAt: time.Now()}
	if s.verifyBlake3 {
		h := blake3.New(32, nil)
		h.Write(raw)
		entry.Blake3 = h.Sum(nil)
	}
	manifest, err := cbor.Marshal(entry)
	if err != nil {
		return digest, fmt.Errorf("cache: encoding manifest: %w", err)
	}

	if err := os.WriteFile(payloadPath, raw, 0o644); err != nil {
		return digest, fmt.Errorf("cache: writing payload: %w", err)
	}
	if err := os.WriteFile(s.manifestPath(digest), manifest, 0o644); err != nil {
		return digest, fmt.Errorf("cache: writing manifest: %w", err)
	}
	return digest, nil
}

// Get returns the stored bytes for digest, or ok == false if absent.
func (s *Store) Get(digest [32]byte) (raw []byte, ok bool, err error) {
	raw, err = os.ReadFile(s.payloadPath(digest))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: reading payload: %w", err)
	}
	return raw, true, nil
}

// Entry returns the manifest record for digest, or ok == false if
// absent.
func (s *Store) Entry(digest [32]byte) (entry Entry, ok bool, err error) {
	data, err := os.ReadFile(s.manifestPath(digest))
	if errors.Is(err, os.ErrNotExist) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("cache: reading manifest: %w", err)
	}
	if err := cbor.Unmarshal(data, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("cache: decoding manifest: %w", err)
	}
	return entry, true, nil
}
