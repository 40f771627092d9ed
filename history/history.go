// Package history persists completed transcriptions so clients can
// review past results. The Store interface is deliberately small; the
// relay itself never depends on storage internals.
package history

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("history: record not found")

// Record is one completed transcription.
type Record struct {
	// ID uniquely identifies the record (UUID).
	ID string `json:"id"`
	// Text is the final transcript.
	Text string `json:"text"`
	// Source names the transcription backend that produced the text.
	Source string `json:"source"`
	// CreatedAt is when the transcription completed.
	CreatedAt time.Time `json:"created_at"`
}

// Store is the persistence contract for transcription history.
type Store interface {
	// Get returns the record with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)
	// List returns up to limit records, newest first. A non-positive
	// limit returns all records.
	List(ctx context.Context, limit int) ([]Record, error)
	// Create persists a record. A missing ID or CreatedAt is filled in.
	Create(ctx context.Context, rec *Record) error
	// Delete removes the record with the given ID, or ErrNotFound.
	Delete(ctx context.Context, id string) error
}
