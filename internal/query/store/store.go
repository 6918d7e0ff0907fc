// Package store holds the record and vector backends a query reads from.
package store

import (
	"context"
	"errors"

	"github.com/kart-io/usrsp-rag/internal/model"
)

var (
	// ErrIndexNotFound is returned when the local index file or the remote
	// collection does not exist.
	ErrIndexNotFound = errors.New("vector index not found")
	// ErrDimensionMismatch is returned when the query vector and the
	// indexed vectors differ in length.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// RecordStore finds the records that involve a customer.
// Implementations must return every match, in natural store order, and an
// empty slice rather than an error when nothing matches.
type RecordStore interface {
	FindInvitations(ctx context.Context, customerID string) ([]model.InvitationRecord, error)
	FindFamilyLinks(ctx context.Context, customerID string) ([]model.FamilyLinkingRecord, error)
}

// VectorStore returns up to k documents nearest to vector, in the
// backend's ranking order.
type VectorStore interface {
	Search(ctx context.Context, vector []float32, k int) ([]model.RetrievedDocument, error)
}
