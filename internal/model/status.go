package model

// TicketStatus is the lifecycle status of a service ticket. The values are
// bit-exact with what the datastore accepts.
type TicketStatus string

const (
	TicketReported        TicketStatus = "reported"
	TicketTriaged         TicketStatus = "triaged"
	TicketAssigned        TicketStatus = "assigned"
	TicketInProgress      TicketStatus = "in_progress"
	TicketWaitingApproval TicketStatus = "waiting_approval"
	TicketOnHold          TicketStatus = "on_hold"
	TicketCompleted       TicketStatus = "completed"
	TicketDelivered       TicketStatus = "delivered"
	TicketClosed          TicketStatus = "closed"
	TicketCancelled       TicketStatus = "cancelled"
)

// Valid reports whether s is one of the accepted ticket statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketReported, TicketTriaged, TicketAssigned, TicketInProgress,
		TicketWaitingApproval, TicketOnHold, TicketCompleted,
		TicketDelivered, TicketClosed, TicketCancelled:
		return true
	}
	return false
}

// CaseStatus is the lifecycle status of a battery or vehicle repair case.
// Both case types draw from the same 7-value set.
type CaseStatus string

const (
	CaseReceived   CaseStatus = "received"
	CaseDiagnosed  CaseStatus = "diagnosed"
	CaseInProgress CaseStatus = "in_progress"
	CaseCompleted  CaseStatus = "completed"
	CaseDelivered  CaseStatus = "delivered"
	CaseOnHold     CaseStatus = "on_hold"
	CaseCancelled  CaseStatus = "cancelled"
)

// Valid reports whether s is one of the accepted case statuses.
func (s CaseStatus) Valid() bool {
	switch s {
	case CaseReceived, CaseDiagnosed, CaseInProgress, CaseCompleted,
		CaseDelivered, CaseOnHold, CaseCancelled:
		return true
	}
	return false
}

// CaseType distinguishes the two repair workflows.
type CaseType string

const (
	CaseTypeVehicle CaseType = "vehicle"
	CaseTypeBattery CaseType = "battery"
)
