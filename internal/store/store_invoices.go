package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"workshop-backend/internal/model"
)

// CreateInvoice persists a quote or invoice with its lines and the totals
// the billing engine computed from them.
func (s *gormStore) CreateInvoice(ctx context.Context, in CreateInvoiceInput) (*model.Invoice, error) {
	kind := in.Kind
	if kind == "" {
		kind = model.KindInvoice
	}

	inv := &model.Invoice{
		ID:               uuid.NewString(),
		Kind:             kind,
		LocationID:       in.LocationID,
		CustomerID:       in.CustomerID,
		TicketID:         in.TicketID,
		Status:           model.InvoiceDraft,
		ShippingAmount:   in.Shipping,
		AdjustmentAmount: in.Adjustment,
		Subtotal:         in.Totals.Subtotal,
		DiscountTotal:    in.Totals.DiscountTotal,
		TaxTotal:         in.Totals.TaxTotal,
		GrandTotal:       in.Totals.GrandTotal,
		DueDate:          in.DueDate,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Invoice{}).Where("kind = ?", kind).Count(&count).Error; err != nil {
			return fmt.Errorf("count invoices: %w", err)
		}
		prefix := "INV"
		if kind == model.KindQuote {
			prefix = "QUO"
		}
		inv.Number = fmt.Sprintf("%s-%06d", prefix, count+1)

		if err := tx.Create(inv).Error; err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}

		for i := range in.Lines {
			in.Lines[i].InvoiceID = inv.ID
		}
		if len(in.Lines) > 0 {
			if err := tx.Create(&in.Lines).Error; err != nil {
				return fmt.Errorf("create invoice lines: %w", err)
			}
		}
		inv.Lines = in.Lines
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// ListInvoices returns invoices scoped to a location, optionally filtered
// by kind and status.
func (s *gormStore) ListInvoices(ctx context.Context, f InvoiceFilter) ([]model.Invoice, error) {
	q := s.db.WithContext(ctx).Where("location_id = ?", f.LocationID)
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	var invoices []model.Invoice
	if err := q.Order("created_at DESC").Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

func (s *gormStore) GetInvoice(ctx context.Context, id string) (*model.Invoice, error) {
	var inv model.Invoice
	err := s.db.WithContext(ctx).
		Preload("Lines").
		Preload("Customer").
		First(&inv, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ReplaceInvoiceLines swaps the full line set and the recomputed totals in
// one transaction. The previous persisted totals never feed the new ones.
func (s *gormStore) ReplaceInvoiceLines(ctx context.Context, id string, lines []model.InvoiceLine, totals InvoiceTotals, shipping, adjustment float64) (*model.Invoice, error) {
	var inv model.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&inv, "id = ?", id).Error; err != nil {
			return err
		}

		if err := tx.Where("invoice_id = ?", id).Delete(&model.InvoiceLine{}).Error; err != nil {
			return fmt.Errorf("delete invoice lines: %w", err)
		}
		for i := range lines {
			lines[i].ID = 0
			lines[i].InvoiceID = id
		}
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				return fmt.Errorf("recreate invoice lines: %w", err)
			}
		}

		fields := map[string]any{
			"shipping_amount":   shipping,
			"adjustment_amount": adjustment,
			"subtotal":          totals.Subtotal,
			"discount_total":    totals.DiscountTotal,
			"tax_total":         totals.TaxTotal,
			"grand_total":       totals.GrandTotal,
		}
		if err := tx.Model(&inv).Updates(fields).Error; err != nil {
			return fmt.Errorf("update invoice totals: %w", err)
		}
		inv.Lines = lines
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *gormStore) UpdateInvoiceStatus(ctx context.Context, id string, status model.InvoiceStatus) (*model.Invoice, error) {
	var inv model.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&inv, "id = ?", id).Error; err != nil {
			return err
		}
		inv.Status = status
		if err := tx.Model(&inv).Update("status", status).Error; err != nil {
			return fmt.Errorf("update invoice status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListOpenInvoices returns unpaid, unvoided invoices with a due date, for
// due-bucket display.
func (s *gormStore) ListOpenInvoices(ctx context.Context, locationID string) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := s.db.WithContext(ctx).
		Where("location_id = ? AND kind = ? AND status IN ? AND due_date IS NOT NULL",
			locationID, model.KindInvoice,
			[]model.InvoiceStatus{model.InvoiceDraft, model.InvoiceSent}).
		Order("due_date ASC").
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("list open invoices: %w", err)
	}
	return invoices, nil
}

// CreateCustomer inserts a customer, generating its id.
func (s *gormStore) CreateCustomer(ctx context.Context, c *model.Customer) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

// ListCustomers returns customers scoped to a location, optionally matched
// by a substring search on name and phone.
func (s *gormStore) ListCustomers(ctx context.Context, f CustomerFilter) ([]model.Customer, error) {
	q := s.db.WithContext(ctx).Where("location_id = ?", f.LocationID)
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR phone LIKE ?", pattern, pattern)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	var customers []model.Customer
	if err := q.Order("name ASC").Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

func (s *gormStore) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	var c model.Customer
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateLocation inserts a workshop location.
func (s *gormStore) CreateLocation(ctx context.Context, l *model.Location) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(l).Error; err != nil {
		return fmt.Errorf("create location: %w", err)
	}
	return nil
}

func (s *gormStore) ListLocations(ctx context.Context) ([]model.Location, error) {
	var locations []model.Location
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locations, nil
}
