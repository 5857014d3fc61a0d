package model

import "time"

// VehicleCase is a physical vehicle repair workflow instance.
type VehicleCase struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	TicketID     string     `gorm:"index;size:36" json:"ticketId,omitempty"`
	LocationID   string     `gorm:"index;size:36;not null" json:"locationId"`
	CustomerID   string     `gorm:"index;size:36;not null" json:"customerId"`
	Make         string     `gorm:"size:64;not null" json:"make"`
	Model        string     `gorm:"size:64;not null" json:"model"`
	Registration string     `gorm:"size:32;not null" json:"registration"`
	Year         int        `json:"year"`
	Status       CaseStatus `gorm:"size:32;not null;default:received;index" json:"status"`

	TechnicianNotes string `gorm:"type:text" json:"technicianNotes,omitempty"`

	ReceivedAt time.Time `gorm:"not null" json:"receivedAt"`
	UpdatedAt  time.Time `gorm:"not null" json:"updatedAt"`
}

// VehicleStatusHistory is an append-only log entry for vehicle case
// transitions.
type VehicleStatusHistory struct {
	ID             int64      `gorm:"autoIncrement;primaryKey" json:"id"`
	VehicleCaseID  string     `gorm:"index;size:36;not null" json:"vehicleCaseId"`
	PreviousStatus CaseStatus `gorm:"size:32;not null" json:"previousStatus"`
	NewStatus      CaseStatus `gorm:"size:32;not null" json:"newStatus"`
	ChangedBy      string     `gorm:"size:64" json:"changedBy,omitempty"`
	Note           string     `gorm:"type:text" json:"note,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;index" json:"createdAt"`
}
