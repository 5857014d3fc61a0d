// Package billing computes quote and invoice totals. Everything here is
// pure: totals are always derived from the submitted lines, never from a
// previously persisted total.
package billing

import (
	"time"

	"workshop-backend/internal/model"
)

// LineInput is a single billing line before computation.
type LineInput struct {
	Description     string  `json:"description" binding:"required"`
	Quantity        float64 `json:"quantity" binding:"required"`
	UnitPrice       float64 `json:"unitPrice"`
	DiscountPercent float64 `json:"discountPercent"`
	TaxRatePercent  float64 `json:"taxRatePercent"`
}

// LineTotals are the derived amounts for a single line.
type LineTotals struct {
	Subtotal       float64
	DiscountAmount float64
	TaxAmount      float64
	LineTotal      float64
}

// DocumentTotals are the aggregate amounts for a quote or invoice.
type DocumentTotals struct {
	Subtotal      float64
	DiscountTotal float64
	TaxTotal      float64
	GrandTotal    float64
}

// ComputeLine derives the per-line amounts:
//
//	subtotal       = quantity * unitPrice
//	discountAmount = subtotal * discountPercent/100
//	taxAmount      = (subtotal - discountAmount) * taxRatePercent/100
//	lineTotal      = subtotal - discountAmount + taxAmount
func ComputeLine(in LineInput) LineTotals {
	subtotal := in.Quantity * in.UnitPrice
	discount := subtotal * in.DiscountPercent / 100
	taxable := subtotal - discount
	tax := taxable * in.TaxRatePercent / 100
	return LineTotals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		LineTotal:      taxable + tax,
	}
}

// ComputeDocument aggregates line totals with the document-level shipping
// and adjustment amounts. Adjustment may be negative. A document with no
// lines totals to shipping + adjustment.
func ComputeDocument(lines []LineInput, shipping, adjustment float64) DocumentTotals {
	var totals DocumentTotals
	for _, line := range lines {
		lt := ComputeLine(line)
		totals.Subtotal += lt.Subtotal
		totals.DiscountTotal += lt.DiscountAmount
		totals.TaxTotal += lt.TaxAmount
	}
	totals.GrandTotal = totals.Subtotal - totals.DiscountTotal + totals.TaxTotal + shipping + adjustment
	return totals
}

// BuildLines converts inputs into persistable invoice lines with derived
// amounts filled in.
func BuildLines(inputs []LineInput) []model.InvoiceLine {
	lines := make([]model.InvoiceLine, 0, len(inputs))
	for _, in := range inputs {
		lt := ComputeLine(in)
		lines = append(lines, model.InvoiceLine{
			Description:     in.Description,
			Quantity:        in.Quantity,
			UnitPrice:       in.UnitPrice,
			DiscountPercent: in.DiscountPercent,
			TaxRatePercent:  in.TaxRatePercent,
			Subtotal:        lt.Subtotal,
			DiscountAmount:  lt.DiscountAmount,
			TaxAmount:       lt.TaxAmount,
			LineTotal:       lt.LineTotal,
		})
	}
	return lines
}

// DueBucket classifies a due date relative to a reference day.
type DueBucket string

const (
	DueOverdue DueBucket = "overdue"
	DueSoon    DueBucket = "due_soon"
	DueLater   DueBucket = "due_later"
)

// ClassifyDue buckets dueDate against now. A due date earlier than today is
// overdue; within soonWindow of today it is due_soon; otherwise due_later.
// Comparison is by calendar day in the due date's location.
func ClassifyDue(dueDate, now time.Time, soonWindow time.Duration) DueBucket {
	today := truncateToDay(now)
	due := truncateToDay(dueDate)

	if due.Before(today) {
		return DueOverdue
	}
	if !due.After(today.Add(soonWindow)) {
		return DueSoon
	}
	return DueLater
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
