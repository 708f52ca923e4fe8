package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"lukechampine.com/blake3"
)

// Warm walks a cache directory with a worker pool, re-hashing every
// payload file and reporting any whose filename (the digest recorded
// at Put time) no longer matches its content's SHA-256. It returns the
// number of entries checked. A mismatch is reported as an error
// listing the corrupt filename; Warm does not repair or delete
// anything.
//
// The worker pool shape is the same goroutine/channel arrangement used
// to hash a whole directory once before serving it by CID: a fixed
// pool of runtime.NumCPU() workers pulling paths off a channel, with a
// single error aborting every in-flight worker.
func Warm(dir string, opts Options) (int, error) {
	var wg sync.WaitGroup
	errCh := make(chan error)
	pathCh := make(chan string)

	type result struct {
		name    string
		digest  string
		blake3  []byte
		mismatch bool
	}
	retCh := make(chan result)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < runtime.NumCPU(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case name, ok := <-pathCh:
					if !ok {
						return
					}
					f, err := os.Open(filepath.Join(dir, name))
					if err != nil {
						errCh <- err
						return
					}

					hasherSHA256 := sha256.New()
					var hasherBlake3 hash.Hash
					var w io.Writer = hasherSHA256
					if opts.VerifyBlake3 {
						hasherBlake3 = blake3.New(32, nil)
						w = io.MultiWriter(hasherSHA256, hasherBlake3)
					}
					_, err = io.Copy(w, f)
					f.Close()
					if err != nil {
						errCh <- err
						return
					}

					got := hex.EncodeToString(hasherSHA256.Sum(nil))
					r := result{name: name, digest: got, mismatch: got != name}
					if opts.VerifyBlake3 {
						r.blake3 = hasherBlake3.Sum(nil)
					}
					retCh <- r
				}
			}
		}()
	}

	go func() {
		fs.WalkDir(os.DirFS(dir), ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				errCh <- err
				return err
			}
			if d.IsDir() || strings.HasSuffix(path, ".manifest") || path == "." {
				return nil
			}
			pathCh <- path
			return nil
		})
		close(pathCh)
	}()

	go func() {
		wg.Wait()
		errCh <- nil
	}()

	checked := 0
outer:
	for {
		select {
		case err := <-errCh:
			if err == nil {
				break outer
			}
			cancel()
			return checked, err
		case r := <-retCh:
			checked++
			if r.mismatch {
				cancel()
				return checked, fmt.Errorf("cache: corrupt entry %q: content now hashes to %s", r.name, r.digest)
			}
			if opts.VerifyBlake3 {
				entry, ok, err := entryByFilename(dir, r.name)
				if err == nil && ok && len(entry.Blake3) > 0 {
					if hex.EncodeToString(entry.Blake3) != hex.EncodeToString(r.blake3) {
						cancel()
						return checked, fmt.Errorf("cache: corrupt entry %q: blake3 digest no longer matches manifest", r.name)
					}
				}
			}
		}
	}
	return checked, nil
}

func entryByFilename(dir, name string) (Entry, bool, error) {
	var digest [32]byte
	raw, err := hex.DecodeString(name)
	if err != nil || len(raw) != len(digest) {
		return Entry{}, false, nil
	}
	copy(digest[:], raw)
	s := &Store{dir: dir}
	return s.Entry(digest)
}
