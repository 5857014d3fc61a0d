package model

import "time"

// ServiceTicket is the customer intake record, precursor to a vehicle or
// battery case. Once VehicleCaseID or BatteryCaseID is set it is never
// cleared by the normal workflow.
type ServiceTicket struct {
	ID           string       `gorm:"primaryKey;size:36" json:"id"`
	TicketNumber string       `gorm:"uniqueIndex;size:32;not null" json:"ticketNumber"`
	LocationID   string       `gorm:"index;size:36;not null" json:"locationId"`
	CustomerID   string       `gorm:"index;size:36;not null" json:"customerId"`
	Symptom      string       `gorm:"size:512;not null" json:"symptom"`
	Description  string       `gorm:"type:text" json:"description,omitempty"`
	Status       TicketStatus `gorm:"size:32;not null;default:reported" json:"status"`

	// Optional vehicle intake fields, copied onto the vehicle case at triage.
	VehicleMake  string `gorm:"size:64" json:"vehicleMake,omitempty"`
	VehicleModel string `gorm:"size:64" json:"vehicleModel,omitempty"`
	Registration string `gorm:"size:32" json:"registration,omitempty"`
	VehicleYear  int    `json:"vehicleYear,omitempty"`

	VehicleCaseID string     `gorm:"size:36" json:"vehicleCaseId,omitempty"`
	BatteryCaseID string     `gorm:"size:36" json:"batteryCaseId,omitempty"`
	TriageNote    string     `gorm:"type:text" json:"triageNote,omitempty"`
	TriagedAt     *time.Time `json:"triagedAt,omitempty"`

	CreatedBy string    `gorm:"size:64" json:"createdBy,omitempty"`
	UpdatedBy string    `gorm:"size:64" json:"updatedBy,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`

	// Associations. Attachments hang off the linked cases and are collected
	// here when the ticket is fetched with relations.
	Customer    *Customer      `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	VehicleCase *VehicleCase   `gorm:"foreignKey:VehicleCaseID" json:"vehicleCase,omitempty"`
	BatteryCase *BatteryRecord `gorm:"foreignKey:BatteryCaseID" json:"batteryCase,omitempty"`
	Attachments []Attachment   `gorm:"-" json:"attachments,omitempty"`
}

// TicketStatusHistory is an append-only log entry for ticket status changes.
type TicketStatusHistory struct {
	ID             int64        `gorm:"autoIncrement;primaryKey" json:"id"`
	TicketID       string       `gorm:"index;size:36;not null" json:"ticketId"`
	PreviousStatus TicketStatus `gorm:"size:32;not null" json:"previousStatus"`
	NewStatus      TicketStatus `gorm:"size:32;not null" json:"newStatus"`
	ChangedBy      string       `gorm:"size:64" json:"changedBy,omitempty"`
	Note           string       `gorm:"type:text" json:"note,omitempty"`
	CreatedAt      time.Time    `gorm:"not null;index" json:"createdAt"`
}
