// Package verifications declares the Verification Store: pending one-time
// codes keyed by phone number.
package verifications

import (
	"context"
)

// Repository stores code digests until they are consumed. Records carry no
// expiry; unmatched ones stay until a matching attempt consumes them.
type Repository interface {
	// Create stores a pending code digest for phone and returns the record ID.
	Create(ctx context.Context, phone, codeHash string) (int64, error)

	// Consume deletes one record matching both phone and codeHash and returns
	// its ID. It returns common.ErrorNotFound, changing nothing, when no
	// record matches or a concurrent attempt already holds the match.
	Consume(ctx context.Context, phone, codeHash string) (int64, error)
}
