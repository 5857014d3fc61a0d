package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"workshop-backend/internal/model"
	"workshop-backend/internal/parse"
	"workshop-backend/internal/workflow"
)

// ErrInvalidTransition is returned when a requested status change is not in
// the workflow's transition table. Nothing is written in that case.
var ErrInvalidTransition = errors.New("status transition not allowed")

// ErrAlreadyTriaged is returned when triage would overwrite an existing
// case link on the ticket. Case links are never cleared by the workflow.
var ErrAlreadyTriaged = errors.New("ticket already routed to this case type")

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	// Tickets
	CreateTicket(ctx context.Context, in CreateTicketInput) (*model.ServiceTicket, error)
	ListTickets(ctx context.Context, f TicketFilter) ([]model.ServiceTicket, error)
	GetTicket(ctx context.Context, id string) (*model.ServiceTicket, error)
	UpdateTicketStatus(ctx context.Context, id string, newStatus model.TicketStatus, actor, note string) (*model.ServiceTicket, error)
	ListTicketHistory(ctx context.Context, id string) ([]model.TicketStatusHistory, error)
	TriageTicket(ctx context.Context, in TriageInput) (*TriageResult, error)
	AddAttachments(ctx context.Context, caseType model.CaseType, caseID, uploadedBy string, files []AttachmentInput) []AttachmentResult
	ListAttachments(ctx context.Context, caseType model.CaseType, caseID string) ([]model.Attachment, error)

	// Battery cases
	ListBatteryCases(ctx context.Context, f CaseFilter) ([]model.BatteryRecord, error)
	GetBatteryCase(ctx context.Context, id string) (*model.BatteryRecord, error)
	UpdateBatteryCase(ctx context.Context, id string, upd BatteryCaseUpdate) (*model.BatteryRecord, error)
	TransitionBatteryCase(ctx context.Context, id string, to model.CaseStatus, actor, note string) (*model.BatteryRecord, error)
	ListBatteryHistory(ctx context.Context, id string) ([]model.BatteryStatusHistory, error)

	// Vehicle cases
	ListVehicleCases(ctx context.Context, f CaseFilter) ([]model.VehicleCase, error)
	GetVehicleCase(ctx context.Context, id string) (*model.VehicleCase, error)
	UpdateVehicleCase(ctx context.Context, id string, upd VehicleCaseUpdate) (*model.VehicleCase, error)
	TransitionVehicleCase(ctx context.Context, id string, to model.CaseStatus, actor, note string) (*model.VehicleCase, error)
	ListVehicleHistory(ctx context.Context, id string) ([]model.VehicleStatusHistory, error)

	// Customers and locations
	CreateCustomer(ctx context.Context, c *model.Customer) error
	ListCustomers(ctx context.Context, f CustomerFilter) ([]model.Customer, error)
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	CreateLocation(ctx context.Context, l *model.Location) error
	ListLocations(ctx context.Context) ([]model.Location, error)

	// Invoices
	CreateInvoice(ctx context.Context, in CreateInvoiceInput) (*model.Invoice, error)
	ListInvoices(ctx context.Context, f InvoiceFilter) ([]model.Invoice, error)
	GetInvoice(ctx context.Context, id string) (*model.Invoice, error)
	ReplaceInvoiceLines(ctx context.Context, id string, lines []model.InvoiceLine, totals InvoiceTotals, shipping, adjustment float64) (*model.Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, id string, status model.InvoiceStatus) (*model.Invoice, error)
	ListOpenInvoices(ctx context.Context, locationID string) ([]model.Invoice, error)

	// Dashboard aggregates
	Summary(ctx context.Context, locationID string) (*DashboardSummary, error)
	WeeklyTrend(ctx context.Context, locationID string, weeks int) ([]WeekBucket, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying connection for migrations and tests.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// CreateTicket inserts a new intake ticket with a generated ticket number
// and initial status reported.
func (s *gormStore) CreateTicket(ctx context.Context, in CreateTicketInput) (*model.ServiceTicket, error) {
	ticket := &model.ServiceTicket{
		ID:           uuid.NewString(),
		LocationID:   in.LocationID,
		CustomerID:   in.CustomerID,
		Symptom:      in.Symptom,
		Description:  in.Description,
		Status:       model.TicketReported,
		VehicleMake:  in.VehicleMake,
		VehicleModel: in.VehicleModel,
		Registration: parse.NormalizeRegistration(in.Registration),
		VehicleYear:  in.VehicleYear,
		CreatedBy:    in.CreatedBy,
		UpdatedBy:    in.CreatedBy,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.ServiceTicket{}).Count(&count).Error; err != nil {
			return fmt.Errorf("count tickets: %w", err)
		}
		ticket.TicketNumber = fmt.Sprintf("ST-%06d", count+1)
		if err := tx.Create(ticket).Error; err != nil {
			return fmt.Errorf("create ticket: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// ListTickets returns tickets scoped to a location, optionally filtered by
// status and a substring search over symptom and ticket number.
func (s *gormStore) ListTickets(ctx context.Context, f TicketFilter) ([]model.ServiceTicket, error) {
	q := s.db.WithContext(ctx).Where("location_id = ?", f.LocationID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(symptom) LIKE ? OR LOWER(ticket_number) LIKE ?", pattern, pattern)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	var tickets []model.ServiceTicket
	if err := q.Order("created_at DESC").Find(&tickets).Error; err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

// GetTicket fetches one ticket with its customer, cases and attachments.
func (s *gormStore) GetTicket(ctx context.Context, id string) (*model.ServiceTicket, error) {
	var ticket model.ServiceTicket
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("VehicleCase").
		Preload("BatteryCase").
		First(&ticket, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	if ticket.VehicleCaseID != "" {
		atts, err := s.ListAttachments(ctx, model.CaseTypeVehicle, ticket.VehicleCaseID)
		if err != nil {
			return nil, err
		}
		ticket.Attachments = append(ticket.Attachments, atts...)
	}
	if ticket.BatteryCaseID != "" {
		atts, err := s.ListAttachments(ctx, model.CaseTypeBattery, ticket.BatteryCaseID)
		if err != nil {
			return nil, err
		}
		ticket.Attachments = append(ticket.Attachments, atts...)
	}
	return &ticket, nil
}

// UpdateTicketStatus sets the ticket status and appends exactly one history
// row in the same transaction.
func (s *gormStore) UpdateTicketStatus(ctx context.Context, id string, newStatus model.TicketStatus, actor, note string) (*model.ServiceTicket, error) {
	var ticket model.ServiceTicket
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&ticket, "id = ?", id).Error; err != nil {
			return err
		}

		previous := ticket.Status
		ticket.Status = newStatus
		ticket.UpdatedBy = actor
		if err := tx.Model(&ticket).Updates(map[string]any{
			"status":     newStatus,
			"updated_by": actor,
		}).Error; err != nil {
			return fmt.Errorf("update ticket status: %w", err)
		}

		history := model.TicketStatusHistory{
			TicketID:       ticket.ID,
			PreviousStatus: previous,
			NewStatus:      newStatus,
			ChangedBy:      actor,
			Note:           note,
			CreatedAt:      time.Now().UTC(),
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("append ticket history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ListTicketHistory returns the append-only status log, oldest first.
func (s *gormStore) ListTicketHistory(ctx context.Context, id string) ([]model.TicketStatusHistory, error) {
	var history []model.TicketStatusHistory
	err := s.db.WithContext(ctx).
		Where("ticket_id = ?", id).
		Order("created_at ASC, id ASC").
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("list ticket history: %w", err)
	}
	return history, nil
}

// TriageTicket routes a ticket into one or both case types and marks the
// ticket triaged, all inside a single transaction. Either every requested
// case is created and the ticket updated, or nothing is committed.
func (s *gormStore) TriageTicket(ctx context.Context, in TriageInput) (*TriageResult, error) {
	result := &TriageResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ticket model.ServiceTicket
		if err := tx.First(&ticket, "id = ?", in.TicketID).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		wantVehicle := in.RouteTo == RouteVehicle || in.RouteTo == RouteBoth
		wantBattery := in.RouteTo == RouteBattery || in.RouteTo == RouteBoth

		if wantVehicle && ticket.VehicleCaseID != "" {
			return ErrAlreadyTriaged
		}
		if wantBattery && ticket.BatteryCaseID != "" {
			return ErrAlreadyTriaged
		}

		if wantVehicle {
			vc := newVehicleCaseFromTicket(&ticket, now)
			if err := tx.Create(vc).Error; err != nil {
				return fmt.Errorf("create vehicle case: %w", err)
			}
			ticket.VehicleCaseID = vc.ID
			result.VehicleCase = vc
		}

		if wantBattery {
			bc := newBatteryCaseFromTicket(&ticket, now)
			if err := tx.Create(bc).Error; err != nil {
				return fmt.Errorf("create battery case: %w", err)
			}
			ticket.BatteryCaseID = bc.ID
			result.BatteryCase = bc
		}

		previous := ticket.Status
		ticket.Status = model.TicketTriaged
		ticket.TriagedAt = &now
		ticket.TriageNote = in.Note
		ticket.UpdatedBy = in.Actor
		if err := tx.Save(&ticket).Error; err != nil {
			return fmt.Errorf("update ticket after triage: %w", err)
		}

		history := model.TicketStatusHistory{
			TicketID:       ticket.ID,
			PreviousStatus: previous,
			NewStatus:      model.TicketTriaged,
			ChangedBy:      in.Actor,
			Note:           in.Note,
			CreatedAt:      now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("append triage history: %w", err)
		}

		result.Ticket = &ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// newVehicleCaseFromTicket snapshots the ticket's vehicle fields, falling
// back to the intake placeholders for anything unknown.
func newVehicleCaseFromTicket(ticket *model.ServiceTicket, now time.Time) *model.VehicleCase {
	vc := &model.VehicleCase{
		ID:           uuid.NewString(),
		TicketID:     ticket.ID,
		LocationID:   ticket.LocationID,
		CustomerID:   ticket.CustomerID,
		Make:         ticket.VehicleMake,
		Model:        ticket.VehicleModel,
		Registration: ticket.Registration,
		Year:         ticket.VehicleYear,
		Status:       model.CaseReceived,
		ReceivedAt:   now,
	}
	if vc.Make == "" {
		vc.Make = "Unknown"
	}
	if vc.Model == "" {
		vc.Model = "Unknown"
	}
	if vc.Registration == "" {
		vc.Registration = "UNKNOWN"
	}
	return vc
}

// newBatteryCaseFromTicket creates the minimal battery record triage can
// produce: placeholder serial derived from the ticket number, defaulted
// chemistry and cell type, zero electrical ratings.
func newBatteryCaseFromTicket(ticket *model.ServiceTicket, now time.Time) *model.BatteryRecord {
	return &model.BatteryRecord{
		ID:           uuid.NewString(),
		TicketID:     ticket.ID,
		LocationID:   ticket.LocationID,
		CustomerID:   ticket.CustomerID,
		SerialNumber: parse.BatterySerial(ticket.TicketNumber),
		Chemistry:    model.ChemistryOther,
		CellType:     model.CellPrismatic,
		Status:       model.CaseReceived,
		ReceivedAt:   now,
	}
}

// AddAttachments records one attachment row per file. Items are processed
// in order; a failed item is reported in its slot and the batch continues.
func (s *gormStore) AddAttachments(ctx context.Context, caseType model.CaseType, caseID, uploadedBy string, files []AttachmentInput) []AttachmentResult {
	results := make([]AttachmentResult, 0, len(files))
	for _, f := range files {
		att := &model.Attachment{
			ID:          uuid.NewString(),
			CaseType:    caseType,
			CaseID:      caseID,
			Kind:        f.Kind,
			FileName:    f.FileName,
			StoragePath: fmt.Sprintf("%s/%s/%s/%s", caseType, caseID, f.Kind, f.FileName),
			SizeBytes:   f.SizeBytes,
			UploadedBy:  uploadedBy,
		}
		if err := s.db.WithContext(ctx).Create(att).Error; err != nil {
			results = append(results, AttachmentResult{FileName: f.FileName, Error: err.Error()})
			continue
		}
		results = append(results, AttachmentResult{FileName: f.FileName, Success: true, Attachment: att})
	}
	return results
}

// ListAttachments returns the attachments scoped to one case, oldest first.
func (s *gormStore) ListAttachments(ctx context.Context, caseType model.CaseType, caseID string) ([]model.Attachment, error) {
	var atts []model.Attachment
	err := s.db.WithContext(ctx).
		Where("case_type = ? AND case_id = ?", caseType, caseID).
		Order("created_at ASC, id ASC").
		Find(&atts).Error
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return atts, nil
}

// transitionGuard rejects transitions absent from the case type's table
// before anything touches the database.
func transitionGuard(caseType model.CaseType, from, to model.CaseStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if !workflow.Allowed(caseType, from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
