package domain

import "errors"

var (
	// ErrNotFound: entity lookup (hotel, room type) found nothing.
	ErrNotFound = errors.New("not found")

	// ErrDataAccess: historical store unreachable or returned malformed rows.
	// Fatal to a training run; nothing is written when it occurs.
	ErrDataAccess = errors.New("data access failed")

	// ErrArtifactNotFound: no trained model exists yet. Surfaced to callers
	// as "prediction unavailable"; never retried automatically.
	ErrArtifactNotFound = errors.New("model artifact not found")

	// ErrSchemaMismatch: the persisted model and feature-column list do not
	// belong together (torn write or mixed artifact pair). Fatal.
	ErrSchemaMismatch = errors.New("artifact schema mismatch")
)
