package model

import "time"

// BatteryChemistry is the cell chemistry of a battery under repair.
type BatteryChemistry string

const (
	ChemistryLiIon BatteryChemistry = "li-ion"
	ChemistryLiPo  BatteryChemistry = "li-po"
	ChemistryLFP   BatteryChemistry = "lifepo4"
	ChemistryLead  BatteryChemistry = "lead-acid"
	ChemistryNiMH  BatteryChemistry = "nimh"
	ChemistryOther BatteryChemistry = "other"
)

// BatteryCellType is the physical cell construction.
type BatteryCellType string

const (
	CellCylindrical BatteryCellType = "cylindrical"
	CellPrismatic   BatteryCellType = "prismatic"
	CellPouch       BatteryCellType = "pouch"
)

// BatteryRecord is a battery repair workflow instance.
type BatteryRecord struct {
	ID           string           `gorm:"primaryKey;size:36" json:"id"`
	TicketID     string           `gorm:"index;size:36" json:"ticketId,omitempty"`
	LocationID   string           `gorm:"index;size:36;not null" json:"locationId"`
	CustomerID   string           `gorm:"index;size:36;not null" json:"customerId"`
	SerialNumber string           `gorm:"index;size:64;not null" json:"serialNumber"`
	Brand        string           `gorm:"size:64" json:"brand,omitempty"`
	Model        string           `gorm:"size:64" json:"model,omitempty"`
	Chemistry    BatteryChemistry `gorm:"size:16;not null;default:other" json:"chemistry"`
	CellType     BatteryCellType  `gorm:"size:16;not null;default:prismatic" json:"cellType"`
	VoltageV     float64          `json:"voltage"`
	CapacityAh   float64          `json:"capacity"`
	Status       CaseStatus       `gorm:"size:32;not null;default:received;index" json:"status"`

	// Diagnostics and costing, filled in as the case progresses.
	DiagnosticSummary string  `gorm:"type:text" json:"diagnosticSummary,omitempty"`
	EstimatedCost     float64 `json:"estimatedCost"`
	FinalCost         float64 `json:"finalCost"`
	PartsCost         float64 `json:"partsCost"`
	LaborCost         float64 `json:"laborCost"`

	ReceivedAt time.Time `gorm:"not null" json:"receivedAt"`
	UpdatedAt  time.Time `gorm:"not null" json:"updatedAt"`
}

// BatteryStatusHistory is an append-only log entry for battery case
// transitions. Created exactly once per transition, never mutated.
type BatteryStatusHistory struct {
	ID             int64      `gorm:"autoIncrement;primaryKey" json:"id"`
	BatteryID      string     `gorm:"index;size:36;not null" json:"batteryId"`
	PreviousStatus CaseStatus `gorm:"size:32;not null" json:"previousStatus"`
	NewStatus      CaseStatus `gorm:"size:32;not null" json:"newStatus"`
	ChangedBy      string     `gorm:"size:64" json:"changedBy,omitempty"`
	Note           string     `gorm:"type:text" json:"note,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;index" json:"createdAt"`
}
