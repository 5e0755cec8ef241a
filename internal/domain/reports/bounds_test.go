package reports

import (
	"testing"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/types"
)

func TestParseBound(t *testing.T) {
	loc := time.FixedZone("ICT", 7*60*60)

	tests := []struct {
		in   string
		end  bool
		want time.Time
	}{
		{"2024-05-01", false, time.Date(2024, 5, 1, 0, 0, 0, 0, loc)},
		{"2024-05-01", true, time.Date(2024, 5, 1, 23, 59, 59, 0, loc)},
		{"2024-05-01T13:45", true, time.Date(2024, 5, 1, 13, 45, 0, 0, loc)},
		{"2024-05-01 13:45:10", false, time.Date(2024, 5, 1, 13, 45, 10, 0, loc)},
		{" 2024-05-01T06:00:00Z ", false, time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := ParseBound(tt.in, tt.end, loc)
		if err != nil {
			t.Fatalf("ParseBound(%q): unexpected error: %v", tt.in, err)
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseBound(%q, %v) = %v, want %v", tt.in, tt.end, got, tt.want)
		}
	}

	if _, err := ParseBound("01/05/2024", false, loc); !apperror.Is(err, apperror.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestDefaultRange(t *testing.T) {
	now := time.Date(2024, 3, 15, 16, 20, 0, 0, time.UTC)

	from, to := DefaultRange(now, time.UTC)
	if want := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC); !from.Equal(want) {
		t.Errorf("from = %v, want %v", from, want)
	}
	if want := time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC); !to.Equal(want) {
		t.Errorf("to = %v, want %v", to, want)
	}
}

func TestResolveRange(t *testing.T) {
	now := time.Date(2024, 3, 15, 16, 20, 0, 0, time.UTC)

	from, to, err := ResolveRange("2024-03-01", "", now, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !from.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) || !to.Equal(time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("got [%v, %v]", from, to)
	}

	if _, _, err := ResolveRange("2024-03-10", "2024-03-09", now, time.UTC); !apperror.Is(err, apperror.CodeValidation) {
		t.Errorf("expected validation error for reversed range, got %v", err)
	}
}

func TestComposeDaily(t *testing.T) {
	revenue := []DailyAmount{
		{Day: "2024-03-02", Amount: types.MustMoney("100")},
		{Day: "2024-03-01", Amount: types.MustMoney("500")},
	}
	cogs := []DailyAmount{{Day: "2024-03-01", Amount: types.MustMoney("200")}}

	rows := composeDaily(revenue, cogs)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Date != "2024-03-01" || rows[0].Profit.StringFixed(2) != "300.00" {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[1].COGS.StringFixed(2) != "0.00" || rows[1].Profit.StringFixed(2) != "100.00" {
		t.Errorf("day without cost should cost 0: %+v", rows[1])
	}
}

func TestNewService_LocalMeansUTC(t *testing.T) {
	for _, loc := range []*time.Location{nil, time.Local} {
		if got := NewService(nil, loc).loc; got != time.UTC {
			t.Errorf("NewService(%v) buckets in %v, want UTC", loc, got)
		}
	}
	ict := time.FixedZone("ICT", 7*60*60)
	if got := NewService(nil, ict).loc; got != ict {
		t.Errorf("explicit zone replaced by %v", got)
	}
}
