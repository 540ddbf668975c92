package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/listmatch/backend/internal/domain"
)

// WriteResults writes one line per product. Listings are emitted exactly as
// they were read.
func WriteResults(w io.Writer, results []domain.ProductResult) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	for _, r := range results {
		if r.Listings == nil {
			r.Listings = []*domain.Listing{}
		}
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode %s: %w", r.ProductName, err)
		}
	}
	return bw.Flush()
}

// WriteResultsFile writes results to path while holding "<path>.lock".
// The file is written to a temporary sibling and renamed into place, so
// readers never see a partial file. Returns ErrResultsLocked when another
// run holds the lock.
func WriteResultsFile(path string, results []domain.ProductResult) (err error) {
	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire results lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrResultsLocked, path)
	}
	defer func() {
		if uerr := lock.Unlock(); uerr != nil && err == nil {
			err = fmt.Errorf("release results lock: %w", uerr)
		}
	}()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod results file: %w", err)
	}

	if err := WriteResults(tmp, results); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close results file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace results file: %w", err)
	}
	return nil
}
