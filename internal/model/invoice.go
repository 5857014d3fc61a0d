package model

import "time"

// InvoiceKind distinguishes quotes from invoices. Both share the same line
// and total structure.
type InvoiceKind string

const (
	KindQuote   InvoiceKind = "quote"
	KindInvoice InvoiceKind = "invoice"
)

// InvoiceStatus is the document lifecycle status.
type InvoiceStatus string

const (
	InvoiceDraft InvoiceStatus = "draft"
	InvoiceSent  InvoiceStatus = "sent"
	InvoicePaid  InvoiceStatus = "paid"
	InvoiceVoid  InvoiceStatus = "void"
)

// Invoice is a billing document (quote or invoice). The persisted totals are
// display copies recomputed from the lines on every mutation; they are never
// read back as inputs to a new calculation.
type Invoice struct {
	ID         string        `gorm:"primaryKey;size:36" json:"id"`
	Number     string        `gorm:"uniqueIndex;size:32;not null" json:"number"`
	Kind       InvoiceKind   `gorm:"size:16;not null;default:invoice" json:"kind"`
	LocationID string        `gorm:"index;size:36;not null" json:"locationId"`
	CustomerID string        `gorm:"index;size:36;not null" json:"customerId"`
	TicketID   string        `gorm:"index;size:36" json:"ticketId,omitempty"`
	Status     InvoiceStatus `gorm:"size:16;not null;default:draft" json:"status"`

	ShippingAmount   float64 `json:"shippingAmount"`
	AdjustmentAmount float64 `json:"adjustmentAmount"`

	Subtotal      float64 `json:"subtotal"`
	DiscountTotal float64 `json:"discountTotal"`
	TaxTotal      float64 `json:"taxTotal"`
	GrandTotal    float64 `json:"grandTotal"`

	DueDate   *time.Time `json:"dueDate,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"not null" json:"updatedAt"`

	// Associations
	Lines    []InvoiceLine `gorm:"foreignKey:InvoiceID" json:"lines,omitempty"`
	Customer *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// InvoiceLine is a single billing line. Derived amounts are recomputed from
// quantity, unit price, discount and tax on every edit.
type InvoiceLine struct {
	ID        int64  `gorm:"autoIncrement;primaryKey" json:"id"`
	InvoiceID string `gorm:"index;size:36;not null" json:"invoiceId"`

	Description     string  `gorm:"size:256;not null" json:"description"`
	Quantity        float64 `gorm:"not null" json:"quantity"`
	UnitPrice       float64 `gorm:"not null" json:"unitPrice"`
	DiscountPercent float64 `json:"discountPercent"`
	TaxRatePercent  float64 `json:"taxRatePercent"`

	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discountAmount"`
	TaxAmount      float64 `json:"taxAmount"`
	LineTotal      float64 `json:"lineTotal"`
}
