// Package tx defines the unit-of-work contract shared by the ledger services and their stores.
package tx

import (
	"context"
)

// Manager runs fn as one unit of work: everything fn writes commits together or not at all.
// The active unit travels in ctx, so a nested call joins it instead of starting another.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager also offers read-only units, used for consistent multi-query reads.
type ReadOnlyManager interface {
	Manager
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnly runs fn read-only when m supports it and as a regular unit of work otherwise.
func ReadOnly(ctx context.Context, m Manager, fn func(ctx context.Context) error) error {
	if ro, ok := m.(ReadOnlyManager); ok {
		return ro.ReadOnly(ctx, fn)
	}
	return m.RunInTransaction(ctx, fn)
}
