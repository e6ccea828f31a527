package repositories

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// Sentinel errors shared by all stores. Services translate these into the
// caller-facing error kinds.
var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrDuplicateKey is returned when an insert violates a unique index.
	// For referral codes this means "another writer won" and the caller
	// should refetch rather than fail.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrConflict is returned when a conditional update matched no document,
	// i.e. the guarded state transition already happened.
	ErrConflict = errors.New("state conflict")
)

// mapWriteErr converts driver errors into the store sentinels.
func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	return err
}

func mapFindErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
