package numerator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"

	corenumerator "stockledger/internal/core/numerator"
)

// Mock objects
type mockRow struct {
	val string
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*string); ok {
			*ptr = m.val
		}
	}
	return nil
}

type mockQuerier struct {
	rows    map[string]*mockRow
	lastSQL string
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.lastSQL = sql
	for table, row := range m.rows {
		if strings.Contains(sql, "FROM "+table+" ") {
			return row
		}
	}
	return &mockRow{err: pgx.ErrNoRows}
}

func TestLastCode(t *testing.T) {
	q := &mockQuerier{rows: map[string]*mockRow{
		"import_transactions": {val: "N041"},
		"transfers":           {val: "DC099"},
	}}
	svc := New(q)
	ctx := context.Background()

	code, err := svc.LastCode(ctx, corenumerator.SeriesImport)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != "N041" {
		t.Errorf("expected N041, got %s", code)
	}
	if !strings.Contains(q.lastSQL, "ORDER BY length(id) DESC, id DESC LIMIT 1") {
		t.Errorf("unexpected SQL: %s", q.lastSQL)
	}

	code, err = svc.LastCode(ctx, corenumerator.SeriesExport)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != "" {
		t.Errorf("expected empty code for empty table, got %s", code)
	}
}

func TestLastCode_Error(t *testing.T) {
	boom := errors.New("connection reset")
	svc := New(&mockQuerier{rows: map[string]*mockRow{"products": {err: boom}}})

	if _, err := svc.LastCode(context.Background(), corenumerator.SeriesProduct); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestLastCode_UnknownSeries(t *testing.T) {
	svc := New(&mockQuerier{})
	if _, err := svc.LastCode(context.Background(), corenumerator.Series("Q")); err == nil {
		t.Fatal("expected error for unknown series")
	}
}

func TestSuggesterOverService(t *testing.T) {
	svc := New(&mockQuerier{rows: map[string]*mockRow{"transfers": {val: "DC099"}}})
	gen := corenumerator.NewSuggester(svc)

	code, err := gen.Suggest(context.Background(), corenumerator.SeriesTransfer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != "DC100" {
		t.Errorf("expected DC100, got %s", code)
	}
}
