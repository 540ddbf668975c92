package domain

import "errors"

var (
	// ErrMalformedRecord is returned when a product or listing line is not a JSON object
	ErrMalformedRecord = errors.New("malformed record")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrNoCandidates is returned when no candidate product scores above zero
	ErrNoCandidates = errors.New("no candidate product matched")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrResultsLocked is returned when another run holds the results file lock
	ErrResultsLocked = errors.New("results file is locked by another run")
)
