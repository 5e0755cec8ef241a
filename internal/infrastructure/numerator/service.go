// Package numerator looks up the last used code of each series in PostgreSQL.
// It implements core/numerator.LastCodeFinder.
package numerator

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	corenumerator "stockledger/internal/core/numerator"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// seriesTables maps each series to the table whose id column holds its codes.
var seriesTables = map[corenumerator.Series]string{
	corenumerator.SeriesImport:   "import_transactions",
	corenumerator.SeriesExport:   "export_transactions",
	corenumerator.SeriesTransfer: "transfers",
	corenumerator.SeriesProduct:  "products",
}

// Service reads last codes outside of any business transaction.
type Service struct {
	querier Querier
}

var _ corenumerator.LastCodeFinder = (*Service)(nil)

// New creates a new last-code finder.
func New(querier Querier) *Service {
	return &Service{querier: querier}
}

// LastCode returns the greatest code of series, or "" when the table is empty.
// Longer codes sort first so N1000 follows N999.
func (s *Service) LastCode(ctx context.Context, series corenumerator.Series) (string, error) {
	query, err := lastCodeSQL(series)
	if err != nil {
		return "", err
	}

	var code string
	if err := s.querier.QueryRow(ctx, query).Scan(&code); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("last %s code: %w", series, err)
	}
	return code, nil
}

func lastCodeSQL(series corenumerator.Series) (string, error) {
	table, ok := seriesTables[series]
	if !ok {
		return "", fmt.Errorf("unknown series %q", series)
	}
	return fmt.Sprintf("SELECT id FROM %s ORDER BY length(id) DESC, id DESC LIMIT 1", table), nil
}
