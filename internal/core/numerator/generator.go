package numerator

import (
	"context"
)

// Generator suggests the next code of a series.
// Suggestions are advisory: uniqueness is enforced by storage.
type Generator interface {
	Suggest(ctx context.Context, series Series) (string, error)
}

// LastCodeFinder returns the greatest existing code of a series, or "" when the series is empty.
// Implementations live in the storage layers.
type LastCodeFinder interface {
	LastCode(ctx context.Context, series Series) (string, error)
}

// Suggester is the Generator over a LastCodeFinder.
type Suggester struct {
	finder LastCodeFinder
}

// NewSuggester creates a Generator reading last codes from finder.
func NewSuggester(finder LastCodeFinder) *Suggester {
	return &Suggester{finder: finder}
}

// Suggest implements Generator.
func (s *Suggester) Suggest(ctx context.Context, series Series) (string, error) {
	last, err := s.finder.LastCode(ctx, series)
	if err != nil {
		return "", err
	}
	return NextCode(last, series.Prefix()), nil
}

var _ Generator = (*Suggester)(nil)
