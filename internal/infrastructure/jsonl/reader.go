// Package jsonl reads product and listing files and writes results, one
// JSON object per line.
package jsonl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/listmatch/backend/internal/domain"
)

// ReadOptions controls how malformed lines are handled.
type ReadOptions struct {
	// SkipMalformed logs and skips unparsable lines instead of failing.
	// The default is fail-fast.
	SkipMalformed bool
	Logger        *slog.Logger
}

func (o ReadOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// ReadProducts decodes product records in file order.
func ReadProducts(r io.Reader, opts ReadOptions) ([]*domain.Product, error) {
	var products []*domain.Product
	err := eachLine(context.Background(), r, opts, func(line []byte) error {
		rec, err := decodeProduct(line)
		if err != nil {
			return err
		}
		products = append(products, domain.NewProductFromRecord(rec))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ReadProductsFile opens path and reads its products.
func ReadProductsFile(path string, opts ReadOptions) ([]*domain.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open products file: %w", err)
	}
	defer f.Close()

	products, err := ReadProducts(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return products, nil
}

// EachListing decodes listings one at a time and hands them to fn in file
// order. An error from fn stops the scan and is returned.
func EachListing(ctx context.Context, r io.Reader, opts ReadOptions, fn func(*domain.Listing) error) error {
	return eachLine(ctx, r, opts, func(line []byte) error {
		listing, err := domain.ParseListing(line)
		if err != nil {
			return err
		}
		if err := fn(listing); err != nil {
			return &handlerError{err: err}
		}
		return nil
	})
}

// EachListingFile opens path and streams its listings to fn.
func EachListingFile(ctx context.Context, path string, opts ReadOptions, fn func(*domain.Listing) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open listings file: %w", err)
	}
	defer f.Close()

	if err := EachListing(ctx, f, opts, fn); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func decodeProduct(line []byte) (domain.ProductRecord, error) {
	var rec domain.ProductRecord
	if line[0] != '{' {
		return rec, fmt.Errorf("%w: product is not a JSON object", domain.ErrMalformedRecord)
	}
	if err := json.Unmarshal(line, &rec); err != nil {
		return rec, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}
	return rec, nil
}

// handlerError marks errors returned by a caller's callback so they are
// never mistaken for malformed input.
type handlerError struct {
	err error
}

func (e *handlerError) Error() string { return e.err.Error() }
func (e *handlerError) Unwrap() error { return e.err }

// eachLine calls fn for every non-blank line. Lines may be of any length.
func eachLine(ctx context.Context, r io.Reader, opts ReadOptions, fn func([]byte) error) error {
	br := bufio.NewReader(r)
	lineNo := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, readErr := br.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("read line %d: %w", lineNo+1, readErr)
		}
		if len(raw) > 0 {
			lineNo++
			if line := bytes.TrimSpace(raw); len(line) > 0 {
				if err := fn(line); err != nil {
					if err := classify(err, lineNo, opts); err != nil {
						return err
					}
				}
			}
		}
		if errors.Is(readErr, io.EOF) {
			return nil
		}
	}
}

// classify decides whether a per-line error aborts the scan.
func classify(err error, lineNo int, opts ReadOptions) error {
	var he *handlerError
	if errors.As(err, &he) {
		return he.err
	}
	if opts.SkipMalformed && errors.Is(err, domain.ErrMalformedRecord) {
		opts.logger().Warn("skipping malformed line", "line", lineNo, "error", err)
		return nil
	}
	return fmt.Errorf("line %d: %w", lineNo, err)
}
