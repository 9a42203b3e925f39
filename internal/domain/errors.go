package domain

import "errors"

var (
	// ErrInvalidSchema is returned when an ingestion document is missing
	// required fields; it fails the whole batch for that store.
	ErrInvalidSchema = errors.New("flyer document failed schema validation")

	// ErrPriceParse is returned when no numeric token can be extracted from
	// a price string. Callers degrade to "unit price unavailable".
	ErrPriceParse = errors.New("no numeric price found")

	// ErrNoData is returned when a queried store has no indexed collection.
	// This is a normal condition, reported as an empty-but-valid result.
	ErrNoData = errors.New("no indexed deals for store")

	// ErrCollaborator is returned when a vector-store or text-generation
	// call failed after retries were exhausted.
	ErrCollaborator = errors.New("external service unavailable")

	// ErrInvalidRequest is returned when request parameters are invalid.
	ErrInvalidRequest = errors.New("invalid request parameters")
)
