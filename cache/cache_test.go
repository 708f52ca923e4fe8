package cache_test

import (
	"bytes"
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"github.com/dhall-lang/dhall-cbor/cache"
)

func newStore(t *testing.T, verifyBlake3 bool) *cache.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := cache.NewStore(cache.Options{Dir: dir, VerifyBlake3: verifyBlake3})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newStore(t, false)
	raw := []byte("some encoded dhall expression bytes")

	digest, err := s.Put(raw)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	want := sha256.Sum256(raw)
	if digest != want {
		t.Fatalf("Put digest = %x, want %x", digest, want)
	}

	got, ok, err := s.Get(digest)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("Get: ok = false, want true")
	}
	if !bytes.Equal(got, raw) {
		t.Fatalf("Get = %q, want %q", got, raw)
	}
}

func TestGetMissing(t *testing.T) {
	s := newStore(t, false)
	var digest [32]byte
	_, ok, err := s.Get(digest)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("Get: ok = true for absent entry, want false")
	}
}

func TestPutIsIdempotent(t *testing.T) {
	s := newStore(t, false)
	raw := []byte("repeat me")
	d1, err := s.Put(raw)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	d2, err := s.Put(raw)
	if err != nil {
		t.Fatalf("second Put: %v", err)
	}
	if d1 != d2 {
		t.Fatalf("digests differ across Put calls: %x vs %x", d1, d2)
	}
}

func TestEntryRecordsSizeAndBlake3(t *testing.T) {
	s := newStore(t, true)
	raw := []byte("hash me twice")
	digest, err := s.Put(raw)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	entry, ok, err := s.Entry(digest)
	if err != nil {
		t.Fatalf("Entry: %v", err)
	}
	if !ok {
		t.Fatal("Entry: ok = false, want true")
	}
	if entry.SizeBytes != int64(len(raw)) {
		t.Errorf("SizeBytes = %d, want %d", entry.SizeBytes, len(raw))
	}
	if len(entry.Blake3) == 0 {
		t.Error("Blake3 digest is empty, want populated when VerifyBlake3 is set")
	}
	if entry.Digest != digest {
		t.Errorf("Entry.Digest = %x, want %x", entry.Digest, digest)
	}
}

func TestEntryOmitsBlake3WhenNotRequested(t *testing.T) {
	s := newStore(t, false)
	raw := []byte("no blake3 here")
	digest, err := s.Put(raw)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	entry, ok, err := s.Entry(digest)
	if err != nil || !ok {
		t.Fatalf("Entry: ok=%v err=%v", ok, err)
	}
	if len(entry.Blake3) != 0 {
		t.Errorf("Blake3 = %x, want empty", entry.Blake3)
	}
}

func TestWarmDetectsCorruption(t *testing.T) {
	dir := t.TempDir()
	s, err := cache.NewStore(cache.Options{Dir: dir})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	raw := []byte("original content")
	digest, err := s.Put(raw)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	n, err := cache.Warm(dir, cache.Options{Dir: dir})
	if err != nil {
		t.Fatalf("Warm before corruption: %v", err)
	}
	if n != 1 {
		t.Fatalf("Warm checked %d entries, want 1", n)
	}

	payloadPath := filepath.Join(dir, hexDigest(digest))
	if err := os.WriteFile(payloadPath, []byte("corrupted content"), 0o644); err != nil {
		t.Fatalf("corrupting payload: %v", err)
	}

	_, err = cache.Warm(dir, cache.Options{Dir: dir})
	if err == nil {
		t.Fatal("Warm: want error after corrupting a payload, got nil")
	}
}

func hexDigest(d [32]byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 64)
	for i, b := range d {
		out[i*2] = hexdigits[b>>4]
		out[i*2+1] = hexdigits[b&0xf]
	}
	return string(out)
}
