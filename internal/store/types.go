package store

import (
	"time"

	"workshop-backend/internal/model"
)

// RouteTo is the triage routing decision.
type RouteTo string

const (
	RouteVehicle RouteTo = "vehicle"
	RouteBattery RouteTo = "battery"
	RouteBoth    RouteTo = "both"
)

// Valid reports whether r is a recognized routing decision.
func (r RouteTo) Valid() bool {
	return r == RouteVehicle || r == RouteBattery || r == RouteBoth
}

// CreateTicketInput carries the intake form fields for a new service
// ticket. Vehicle fields are optional; Year is pre-validated by the caller.
type CreateTicketInput struct {
	LocationID   string
	CustomerID   string
	Symptom      string
	Description  string
	VehicleMake  string
	VehicleModel string
	Registration string
	VehicleYear  int
	CreatedBy    string
}

// TicketFilter scopes a ticket listing. LocationID is required; the rest is
// optional. Search is an ilike-style substring match on symptom and ticket
// number.
type TicketFilter struct {
	LocationID string
	Status     model.TicketStatus
	Search     string
	Limit      int
	Offset     int
}

// CaseFilter scopes a battery or vehicle case listing.
type CaseFilter struct {
	LocationID string
	Status     model.CaseStatus
	Limit      int
	Offset     int
}

// TriageInput routes a reported ticket into one or both case types.
type TriageInput struct {
	TicketID string
	RouteTo  RouteTo
	Note     string
	Actor    string
}

// TriageResult reports what triage created.
type TriageResult struct {
	Ticket      *model.ServiceTicket `json:"ticket"`
	VehicleCase *model.VehicleCase   `json:"vehicleCase,omitempty"`
	BatteryCase *model.BatteryRecord `json:"batteryCase,omitempty"`
}

// BatteryCaseUpdate carries the mutable diagnostic and costing fields of a
// battery case. Nil pointers leave the stored value untouched.
type BatteryCaseUpdate struct {
	DiagnosticSummary *string
	EstimatedCost     *float64
	FinalCost         *float64
	PartsCost         *float64
	LaborCost         *float64
}

// VehicleCaseUpdate carries the mutable fields of a vehicle case.
type VehicleCaseUpdate struct {
	TechnicianNotes *string
}

// AttachmentInput describes one uploaded file in a batch.
type AttachmentInput struct {
	Kind      model.AttachmentKind
	FileName  string
	SizeBytes int64
}

// AttachmentResult is the per-item outcome of an attachment batch. One
// failed item does not roll back the items before it.
type AttachmentResult struct {
	FileName   string            `json:"fileName"`
	Success    bool              `json:"success"`
	Error      string            `json:"error,omitempty"`
	Attachment *model.Attachment `json:"attachment,omitempty"`
}

// CreateInvoiceInput creates a quote or invoice. Totals are computed by the
// billing engine from Lines, never taken from the caller.
type CreateInvoiceInput struct {
	Kind       model.InvoiceKind
	LocationID string
	CustomerID string
	TicketID   string
	Lines      []model.InvoiceLine
	Totals     InvoiceTotals
	Shipping   float64
	Adjustment float64
	DueDate    *time.Time
}

// InvoiceTotals are the precomputed document totals persisted alongside the
// lines.
type InvoiceTotals struct {
	Subtotal      float64
	DiscountTotal float64
	TaxTotal      float64
	GrandTotal    float64
}

// InvoiceFilter scopes an invoice listing.
type InvoiceFilter struct {
	LocationID string
	Kind       model.InvoiceKind
	Status     model.InvoiceStatus
	Limit      int
	Offset     int
}

// CustomerFilter scopes a customer listing.
type CustomerFilter struct {
	LocationID string
	Search     string
	Limit      int
	Offset     int
}

// DashboardSummary is the aggregate KPI view for one location.
type DashboardSummary struct {
	OpenTickets     int64                        `json:"openTickets"`
	TicketsByStatus map[model.TicketStatus]int64 `json:"ticketsByStatus"`
	BatteryByStatus map[model.CaseStatus]int64   `json:"batteryByStatus"`
	VehicleByStatus map[model.CaseStatus]int64   `json:"vehicleByStatus"`
	OpenInvoices    int64                        `json:"openInvoices"`
	OverdueInvoices int64                        `json:"overdueInvoices"`
	Customers       int64                        `json:"customers"`
}

// WeekBucket is one week of intake volume for the trend chart.
type WeekBucket struct {
	WeekStart time.Time `json:"weekStart"`
	Tickets   int64     `json:"tickets"`
}
