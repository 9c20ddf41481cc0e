package service

import (
	"context"
	"fmt"
	"time"

	"github.com/storekeep/storekeep/internal/domain"
)

const dateLayout = "2006-01-02"

func (s *Service) toolDailySales(ctx context.Context, args map[string]any) domain.ToolResult {
	day := time.Now()
	if raw := stringArg(args, "date"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return domain.Fail(domain.ErrKindValidation, "Invalid date '%s'. Use YYYY-MM-DD format.", raw)
		}
		day = parsed
	}

	count, total, err := s.store.DailySales(ctx, day)
	if err != nil {
		return domain.Fail(domain.ErrKindInternal, "failed to compute daily sales: %v", err)
	}
	label := day.Format(dateLayout)
	return domain.OK(
		fmt.Sprintf("Sales for %s: %d bills totaling $%.2f", label, count, total),
		map[string]any{"date": label, "total_bills": count, "total_sales": total},
	)
}

func (s *Service) toolProfitLoss(ctx context.Context, args map[string]any) domain.ToolResult {
	now := time.Now()
	start := now
	end := now

	if raw := stringArg(args, "start_date"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return domain.Fail(domain.ErrKindValidation, "Invalid start_date '%s'. Use YYYY-MM-DD format.", raw)
		}
		start = parsed
	}
	if raw := stringArg(args, "end_date"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return domain.Fail(domain.ErrKindValidation, "Invalid end_date '%s'. Use YYYY-MM-DD format.", raw)
		}
		end = parsed
	}
	if end.Before(start) {
		return domain.Fail(domain.ErrKindValidation, "end_date must not be before start_date")
	}

	row, err := s.store.ProfitLoss(ctx, start, end)
	if err != nil {
		return domain.Fail(domain.ErrKindInternal, "failed to compute profit/loss: %v", err)
	}

	profit := row.Revenue - row.Cost
	margin := 0.0
	if row.Revenue > 0 {
		margin = profit / row.Revenue * 100
	}
	return domain.OK(
		fmt.Sprintf("From %s to %s: Revenue $%.2f, Cost $%.2f, Profit $%.2f (%.1f%% margin) across %d bills",
			start.Format(dateLayout), end.Format(dateLayout), row.Revenue, row.Cost, profit, margin, row.Bills),
		map[string]any{
			"start_date":    start.Format(dateLayout),
			"end_date":      end.Format(dateLayout),
			"total_revenue": row.Revenue,
			"total_cost":    row.Cost,
			"profit":        profit,
			"profit_margin": margin,
			"total_bills":   row.Bills,
		},
	)
}

// --- REST-facing report operations ---

// DailySalesReport aggregates bills for one calendar day.
type DailySalesReport struct {
	Date       string  `json:"date"`
	BillCount  int     `json:"bill_count"`
	TotalSales float64 `json:"total_sales"`
}

// ProfitLossReport aggregates revenue against purchase cost over a range.
type ProfitLossReport struct {
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Revenue   float64 `json:"revenue"`
	Cost      float64 `json:"cost"`
	Profit    float64 `json:"profit"`
	MarginPct float64 `json:"margin_pct"`
	BillCount int     `json:"bill_count"`
}

// DailySales reports sales totals for the given day.
func (s *Service) DailySales(ctx context.Context, day time.Time) (DailySalesReport, error) {
	count, total, err := s.store.DailySales(ctx, day)
	if err != nil {
		return DailySalesReport{}, err
	}
	return DailySalesReport{
		Date:       day.Format(dateLayout),
		BillCount:  count,
		TotalSales: total,
	}, nil
}

// ProfitLoss reports revenue, cost and profit between start and end inclusive.
func (s *Service) ProfitLoss(ctx context.Context, start, end time.Time) (ProfitLossReport, error) {
	row, err := s.store.ProfitLoss(ctx, start, end)
	if err != nil {
		return ProfitLossReport{}, err
	}
	profit := row.Revenue - row.Cost
	margin := 0.0
	if row.Revenue > 0 {
		margin = profit / row.Revenue * 100
	}
	return ProfitLossReport{
		StartDate: start.Format(dateLayout),
		EndDate:   end.Format(dateLayout),
		Revenue:   row.Revenue,
		Cost:      row.Cost,
		Profit:    profit,
		MarginPct: margin,
		BillCount: row.Bills,
	}, nil
}
