package workflow

import "workshop-backend/internal/model"

// batteryTransitions is the full transition table for battery cases. A
// status absent from the map, or a target absent from its row, is rejected.
var batteryTransitions = map[model.CaseStatus][]model.CaseStatus{
	model.CaseReceived:   {model.CaseDiagnosed, model.CaseCancelled},
	model.CaseDiagnosed:  {model.CaseInProgress, model.CaseOnHold, model.CaseCancelled},
	model.CaseInProgress: {model.CaseCompleted, model.CaseOnHold, model.CaseCancelled},
	model.CaseOnHold:     {model.CaseInProgress, model.CaseCancelled},
	model.CaseCompleted:  {model.CaseDelivered},
	model.CaseDelivered:  {},
	model.CaseCancelled:  {},
}

// forwardStages is the 5-stage forward sequence the vehicle workflow walks.
var forwardStages = []model.CaseStatus{
	model.CaseReceived,
	model.CaseDiagnosed,
	model.CaseInProgress,
	model.CaseCompleted,
	model.CaseDelivered,
}

// BatteryNextStates returns the valid next statuses for a battery case in
// the given status. The returned slice must not be mutated.
func BatteryNextStates(from model.CaseStatus) []model.CaseStatus {
	return batteryTransitions[from]
}

// BatteryAllowed reports whether a battery case may move from one status to
// another.
func BatteryAllowed(from, to model.CaseStatus) bool {
	for _, next := range batteryTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// VehicleNextStates returns the valid next statuses for a vehicle case. The
// vehicle workflow is deliberately more permissive than the battery one: it
// allows stepping back to the immediately preceding forward stage, and
// on_hold may resume to any forward stage rather than only in_progress.
func VehicleNextStates(from model.CaseStatus) []model.CaseStatus {
	switch from {
	case model.CaseOnHold:
		next := make([]model.CaseStatus, 0, len(forwardStages)+1)
		next = append(next, forwardStages...)
		next = append(next, model.CaseCancelled)
		return next
	case model.CaseDelivered, model.CaseCancelled:
		return nil
	}

	idx := stageIndex(from)
	if idx < 0 {
		return nil
	}

	var next []model.CaseStatus
	next = append(next, batteryTransitions[from]...)
	if idx > 0 {
		next = appendUnique(next, forwardStages[idx-1])
	}
	return next
}

// VehicleAllowed reports whether a vehicle case may move from one status to
// another.
func VehicleAllowed(from, to model.CaseStatus) bool {
	for _, next := range VehicleNextStates(from) {
		if next == to {
			return true
		}
	}
	return false
}

// Allowed dispatches to the per-case-type transition check.
func Allowed(caseType model.CaseType, from, to model.CaseStatus) bool {
	if caseType == model.CaseTypeVehicle {
		return VehicleAllowed(from, to)
	}
	return BatteryAllowed(from, to)
}

// NextStates dispatches to the per-case-type next-state enumeration.
func NextStates(caseType model.CaseType, from model.CaseStatus) []model.CaseStatus {
	if caseType == model.CaseTypeVehicle {
		return VehicleNextStates(from)
	}
	return BatteryNextStates(from)
}

// Terminal reports whether a case status admits no further transitions.
func Terminal(status model.CaseStatus) bool {
	return status == model.CaseDelivered || status == model.CaseCancelled
}

func stageIndex(s model.CaseStatus) int {
	for i, stage := range forwardStages {
		if stage == s {
			return i
		}
	}
	return -1
}

func appendUnique(states []model.CaseStatus, s model.CaseStatus) []model.CaseStatus {
	for _, existing := range states {
		if existing == s {
			return states
		}
	}
	return append(states, s)
}
