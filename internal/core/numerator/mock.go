package numerator

import (
	"context"
)

// MockGenerator is a test implementation of Generator.
// Use in unit tests to avoid database dependencies.
type MockGenerator struct {
	SuggestFunc func(ctx context.Context, series Series) (string, error)
}

// Suggest implements Generator.
func (m *MockGenerator) Suggest(ctx context.Context, series Series) (string, error) {
	if m.SuggestFunc != nil {
		return m.SuggestFunc(ctx, series)
	}
	// Default: first code of the series
	return NextCode("", series.Prefix()), nil
}

// Ensure compile-time interface compliance.
var _ Generator = (*MockGenerator)(nil)
