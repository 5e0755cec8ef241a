package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"stockledger/internal/core/security"
	"stockledger/internal/core/types"
)

var tracer = otel.Tracer("stockledger/reports")

// Cache stores computed reports keyed by a version that movements bump.
type Cache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
}

// Service provides report generation operations.
type Service struct {
	repo  Repository
	cache Cache
	loc   *time.Location
	now   func() time.Time
}

// NewService creates a new reports service. Days are bucketed in loc.
// A nil loc or time.Local means UTC.
func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil || loc == time.Local {
		loc = time.UTC
	}
	return &Service{repo: repo, loc: loc, now: time.Now}
}

// WithCache enables report caching.
func (s *Service) WithCache(c Cache) *Service {
	s.cache = c
	return s
}

// SalesReport computes daily revenue, COGS and profit plus the top sellers for the
// caller's view of the requested warehouse over the requested range.
func (s *Service) SalesReport(ctx context.Context, caller security.CallerContext, req SalesRequest) (*SalesReport, error) {
	view, err := caller.ResolveView(req.WarehouseID)
	if err != nil {
		return nil, err
	}
	from, to, err := ResolveRange(req.From, req.To, s.now(), s.loc)
	if err != nil {
		return nil, err
	}

	q := Query{From: from, To: to, Location: s.loc}
	if view != security.AllWarehouses {
		q.WarehouseID = view
	}

	if s.cache == nil {
		return s.build(ctx, view, q)
	}

	key, err := s.cache.BuildKey(ctx, "reports", "sales", view, from.Format(time.RFC3339), to.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("build cache key: %w", err)
	}
	var report SalesReport
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (any, error) {
		return s.build(ctx, view, q)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch sales report: %w", err)
	}
	return &report, nil
}

func (s *Service) build(ctx context.Context, view string, q Query) (*SalesReport, error) {
	ctx, span := tracer.Start(ctx, "sales_report")
	defer span.End()
	span.SetAttributes(
		attribute.String("report.warehouse", view),
		attribute.String("report.from", q.From.Format(time.RFC3339)),
		attribute.String("report.to", q.To.Format(time.RFC3339)),
	)

	revenue, err := s.repo.DailyRevenue(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("get daily revenue: %w", err)
	}
	cogs, err := s.repo.DailyCOGS(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("get daily cogs: %w", err)
	}
	byQty, err := s.repo.TopByQuantity(ctx, q, TopLimit)
	if err != nil {
		return nil, fmt.Errorf("get top by quantity: %w", err)
	}
	byRevenue, err := s.repo.TopByRevenue(ctx, q, TopLimit)
	if err != nil {
		return nil, fmt.Errorf("get top by revenue: %w", err)
	}

	daily := composeDaily(revenue, cogs)
	totals := Totals{Revenue: types.Zero(), COGS: types.Zero(), Profit: types.Zero()}
	for _, row := range daily {
		totals.Revenue = totals.Revenue.Add(row.Revenue)
		totals.COGS = totals.COGS.Add(row.COGS)
		totals.Profit = totals.Profit.Add(row.Profit)
	}

	return &SalesReport{
		WarehouseID:   view,
		From:          q.From,
		To:            q.To,
		Daily:         daily,
		Totals:        totals,
		TopByQuantity: nonNil(byQty),
		TopByRevenue:  nonNil(byRevenue),
	}, nil
}

// composeDaily emits one row per revenue day in date order. A day with no COGS entry costs 0.
func composeDaily(revenue, cogs []DailyAmount) []DailyRow {
	cost := make(map[string]types.Money, len(cogs))
	for _, c := range cogs {
		cost[c.Day] = cost[c.Day].Add(c.Amount)
	}

	sums := make(map[string]types.Money, len(revenue))
	for _, r := range revenue {
		sums[r.Day] = sums[r.Day].Add(r.Amount)
	}
	days := make([]string, 0, len(sums))
	for d := range sums {
		days = append(days, d)
	}
	sort.Strings(days)

	rows := make([]DailyRow, 0, len(days))
	for _, d := range days {
		c, ok := cost[d]
		if !ok {
			c = types.Zero()
		}
		rows = append(rows, DailyRow{
			Date:    d,
			Revenue: sums[d],
			COGS:    c,
			Profit:  sums[d].Sub(c),
		})
	}
	return rows
}

// Dashboard summarizes the caller's view of warehouseID.
func (s *Service) Dashboard(ctx context.Context, caller security.CallerContext, warehouseID string) (*Dashboard, error) {
	view, err := caller.ResolveView(warehouseID)
	if err != nil {
		return nil, err
	}
	filter := view
	if view == security.AllWarehouses {
		filter = ""
	}

	d, err := s.repo.Dashboard(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get dashboard: %w", err)
	}
	d.WarehouseID = view
	return &d, nil
}

func nonNil(in []TopProduct) []TopProduct {
	if in == nil {
		return []TopProduct{}
	}
	return in
}
