package store

import (
	"context"
	"fmt"
	"time"

	"workshop-backend/internal/model"
)

// openTicketStatuses are the ticket statuses counted as "open" in the KPI
// summary.
var openTicketStatuses = []model.TicketStatus{
	model.TicketReported,
	model.TicketTriaged,
	model.TicketAssigned,
	model.TicketInProgress,
	model.TicketWaitingApproval,
	model.TicketOnHold,
}

// Summary computes the KPI aggregates for one location. Always reads the
// datastore; callers memoize through the query cache.
func (s *gormStore) Summary(ctx context.Context, locationID string) (*DashboardSummary, error) {
	summary := &DashboardSummary{
		TicketsByStatus: make(map[model.TicketStatus]int64),
		BatteryByStatus: make(map[model.CaseStatus]int64),
		VehicleByStatus: make(map[model.CaseStatus]int64),
	}

	type statusCount struct {
		Status string
		Total  int64
	}

	var ticketCounts []statusCount
	err := s.db.WithContext(ctx).
		Model(&model.ServiceTicket{}).
		Select("status, COUNT(*) as total").
		Where("location_id = ?", locationID).
		Group("status").
		Scan(&ticketCounts).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate tickets: %w", err)
	}
	for _, row := range ticketCounts {
		summary.TicketsByStatus[model.TicketStatus(row.Status)] = row.Total
	}
	for _, open := range openTicketStatuses {
		summary.OpenTickets += summary.TicketsByStatus[open]
	}

	var batteryCounts []statusCount
	err = s.db.WithContext(ctx).
		Model(&model.BatteryRecord{}).
		Select("status, COUNT(*) as total").
		Where("location_id = ?", locationID).
		Group("status").
		Scan(&batteryCounts).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate battery cases: %w", err)
	}
	for _, row := range batteryCounts {
		summary.BatteryByStatus[model.CaseStatus(row.Status)] = row.Total
	}

	var vehicleCounts []statusCount
	err = s.db.WithContext(ctx).
		Model(&model.VehicleCase{}).
		Select("status, COUNT(*) as total").
		Where("location_id = ?", locationID).
		Group("status").
		Scan(&vehicleCounts).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate vehicle cases: %w", err)
	}
	for _, row := range vehicleCounts {
		summary.VehicleByStatus[model.CaseStatus(row.Status)] = row.Total
	}

	err = s.db.WithContext(ctx).
		Model(&model.Invoice{}).
		Where("location_id = ? AND kind = ? AND status IN ?",
			locationID, model.KindInvoice,
			[]model.InvoiceStatus{model.InvoiceDraft, model.InvoiceSent}).
		Count(&summary.OpenInvoices).Error
	if err != nil {
		return nil, fmt.Errorf("count open invoices: %w", err)
	}

	today := time.Now().Truncate(24 * time.Hour)
	err = s.db.WithContext(ctx).
		Model(&model.Invoice{}).
		Where("location_id = ? AND kind = ? AND status IN ? AND due_date < ?",
			locationID, model.KindInvoice,
			[]model.InvoiceStatus{model.InvoiceDraft, model.InvoiceSent}, today).
		Count(&summary.OverdueInvoices).Error
	if err != nil {
		return nil, fmt.Errorf("count overdue invoices: %w", err)
	}

	err = s.db.WithContext(ctx).
		Model(&model.Customer{}).
		Where("location_id = ?", locationID).
		Count(&summary.Customers).Error
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	return summary, nil
}

// WeeklyTrend buckets ticket intake volume by ISO-style weeks (Monday
// start) over the trailing window. Bucketing happens in Go so the query
// stays portable between Postgres and SQLite.
func (s *gormStore) WeeklyTrend(ctx context.Context, locationID string, weeks int) ([]WeekBucket, error) {
	if weeks <= 0 {
		weeks = 8
	}

	start := weekStart(time.Now().UTC()).AddDate(0, 0, -7*(weeks-1))

	var createdAts []time.Time
	err := s.db.WithContext(ctx).
		Model(&model.ServiceTicket{}).
		Where("location_id = ? AND created_at >= ?", locationID, start).
		Pluck("created_at", &createdAts).Error
	if err != nil {
		return nil, fmt.Errorf("fetch ticket intake dates: %w", err)
	}

	buckets := make([]WeekBucket, weeks)
	for i := range buckets {
		buckets[i].WeekStart = start.AddDate(0, 0, 7*i)
	}
	for _, at := range createdAts {
		idx := int(weekStart(at.UTC()).Sub(start).Hours() / (24 * 7))
		if idx >= 0 && idx < weeks {
			buckets[idx].Tickets++
		}
	}
	return buckets, nil
}

// weekStart truncates t to the Monday of its week at midnight UTC.
func weekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
