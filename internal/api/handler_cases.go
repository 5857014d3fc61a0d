package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"workshop-backend/internal/cache"
	"workshop-backend/internal/model"
	"workshop-backend/internal/store"
	"workshop-backend/internal/workflow"
)

// batteryTags are the cache tags any battery mutation invalidates.
var batteryTags = []string{cache.TagBatteries, cache.TagSummaries, cache.TagKPIs, cache.TagDashboard}

// vehicleTags are the cache tags any vehicle mutation invalidates.
var vehicleTags = []string{cache.TagVehicles, cache.TagSummaries, cache.TagKPIs, cache.TagDashboard}

func caseFilterFromQuery(c *gin.Context) (store.CaseFilter, bool) {
	locationID, ok := requireLocation(c)
	if !ok {
		return store.CaseFilter{}, false
	}

	filter := store.CaseFilter{LocationID: locationID}
	if status := c.Query("status"); status != "" {
		cs := model.CaseStatus(status)
		if !cs.Valid() {
			respondError(c, http.StatusBadRequest, fmt.Sprintf("unknown case status %q", status))
			return store.CaseFilter{}, false
		}
		filter.Status = cs
	}
	filter.Limit, filter.Offset = pagination(c)
	return filter, true
}

type transitionRequest struct {
	Status model.CaseStatus `json:"status" binding:"required"`
	Actor  string           `json:"actor"`
	Note   string           `json:"note"`
}

// caseResponse pairs a case with the next statuses its workflow allows, so
// the client renders exactly the permitted actions.
type caseResponse struct {
	Case       any                `json:"case"`
	NextStates []model.CaseStatus `json:"nextStates"`
}

// ListBatteryCases handles GET /api/battery-cases.
func (h *Handler) ListBatteryCases(c *gin.Context) {
	filter, ok := caseFilterFromQuery(c)
	if !ok {
		return
	}
	cases, err := h.store.ListBatteryCases(c.Request.Context(), filter)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondOK(c, http.StatusOK, cases)
}

// GetBatteryCase handles GET /api/battery-cases/:id.
func (h *Handler) GetBatteryCase(c *gin.Context) {
	bc, err := h.store.GetBatteryCase(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondOK(c, http.StatusOK, caseResponse{
		Case:       bc,
		NextStates: workflow.BatteryNextStates(bc.Status),
	})
}

type batteryUpdateRequest struct {
	DiagnosticSummary *string  `json:"diagnosticSummary"`
	EstimatedCost     *float64 `json:"estimatedCost"`
	FinalCost         *float64 `json:"finalCost"`
	PartsCost         *float64 `json:"partsCost"`
	LaborCost         *float64 `json:"laborCost"`
}

// UpdateBatteryCase handles PATCH /api/battery-cases/:id.
func (h *Handler) UpdateBatteryCase(c *gin.Context) {
	var req batteryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	bc, err := h.store.UpdateBatteryCase(c.Request.Context(), c.Param("id"), store.BatteryCaseUpdate{
		DiagnosticSummary: req.DiagnosticSummary,
		EstimatedCost:     req.EstimatedCost,
		FinalCost:         req.FinalCost,
		PartsCost:         req.PartsCost,
		LaborCost:         req.LaborCost,
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}

	h.cache.Invalidate(batteryTags...)
	respondOK(c, http.StatusOK, bc)
}

// TransitionBatteryCase handles PATCH /api/battery-cases/:id/status.
func (h *Handler) TransitionBatteryCase(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	bc, err := h.store.TransitionBatteryCase(c.Request.Context(), c.Param("id"), req.Status, req.Actor, req.Note)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	h.cache.Invalidate(batteryTags...)
	h.notifyAsync(fmt.Sprintf("Battery %s moved to %s", bc.SerialNumber, bc.Status))
	respondOK(c, http.StatusOK, caseResponse{
		Case:       bc,
		NextStates: workflow.BatteryNextStates(bc.Status),
	})
}

// ListBatteryHistory handles GET /api/battery-cases/:id/history.
func (h *Handler) ListBatteryHistory(c *gin.Context) {
	history, err := h.store.ListBatteryHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondOK(c, http.StatusOK, history)
}

// ListVehicleCases handles GET /api/vehicle-cases.
func (h *Handler) ListVehicleCases(c *gin.Context) {
	filter, ok := caseFilterFromQuery(c)
	if !ok {
		return
	}
	cases, err := h.store.ListVehicleCases(c.Request.Context(), filter)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondOK(c, http.StatusOK, cases)
}

// GetVehicleCase handles GET /api/vehicle-cases/:id.
func (h *Handler) GetVehicleCase(c *gin.Context) {
	vc, err := h.store.GetVehicleCase(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondOK(c, http.StatusOK, caseResponse{
		Case:       vc,
		NextStates: workflow.VehicleNextStates(vc.Status),
	})
}

type vehicleUpdateRequest struct {
	TechnicianNotes *string `json:"technicianNotes"`
}

// UpdateVehicleCase handles PATCH /api/vehicle-cases/:id.
func (h *Handler) UpdateVehicleCase(c *gin.Context) {
	var req vehicleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	vc, err := h.store.UpdateVehicleCase(c.Request.Context(), c.Param("id"), store.VehicleCaseUpdate{
		TechnicianNotes: req.TechnicianNotes,
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}

	h.cache.Invalidate(vehicleTags...)
	respondOK(c, http.StatusOK, vc)
}

// TransitionVehicleCase handles PATCH /api/vehicle-cases/:id/status.
func (h *Handler) TransitionVehicleCase(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	vc, err := h.store.TransitionVehicleCase(c.Request.Context(), c.Param("id"), req.Status, req.Actor, req.Note)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	h.cache.Invalidate(vehicleTags...)
	h.notifyAsync(fmt.Sprintf("Vehicle %s %s moved to %s", vc.Make, vc.Registration, vc.Status))
	respondOK(c, http.StatusOK, caseResponse{
		Case:       vc,
		NextStates: workflow.VehicleNextStates(vc.Status),
	})
}

// ListVehicleHistory handles GET /api/vehicle-cases/:id/history.
func (h *Handler) ListVehicleHistory(c *gin.Context) {
	history, err := h.store.ListVehicleHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondOK(c, http.StatusOK, history)
}
