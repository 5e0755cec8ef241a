package numerator

import (
	"context"
	"errors"
	"testing"
)

func TestNextCode(t *testing.T) {
	tests := []struct {
		last     string
		fallback string
		want     string
	}{
		{"N007", "N", "N008"},
		{"", "X", "X001"},
		{"DC099", "DC", "DC100"},
		{"DC099", "N", "DC100"},
		{"N999", "N", "N1000"},
		{"N1000", "N", "N1001"},
		{"SP", "SP", "SP001"},
		{"1000", "N", "N001"},
		{"ABC", "X", "ABC001"},
		{"  X012 ", "X", "X013"},
	}

	for _, tt := range tests {
		if got := NextCode(tt.last, tt.fallback); got != tt.want {
			t.Errorf("NextCode(%q, %q) = %q, want %q", tt.last, tt.fallback, got, tt.want)
		}
	}
}

type finderFunc func(ctx context.Context, series Series) (string, error)

func (f finderFunc) LastCode(ctx context.Context, series Series) (string, error) {
	return f(ctx, series)
}

func TestSuggester(t *testing.T) {
	last := map[Series]string{SeriesImport: "N041"}
	s := NewSuggester(finderFunc(func(_ context.Context, series Series) (string, error) {
		return last[series], nil
	}))

	got, err := s.Suggest(context.Background(), SeriesImport)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "N042" {
		t.Errorf("expected N042, got %s", got)
	}

	got, err = s.Suggest(context.Background(), SeriesTransfer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "DC001" {
		t.Errorf("expected DC001, got %s", got)
	}
}

func TestSuggester_Error(t *testing.T) {
	boom := errors.New("boom")
	s := NewSuggester(finderFunc(func(context.Context, Series) (string, error) {
		return "", boom
	}))
	if _, err := s.Suggest(context.Background(), SeriesExport); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}
