package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"workshop-backend/internal/cache"
	"workshop-backend/internal/model"
	"workshop-backend/internal/parse"
	"workshop-backend/internal/store"
)

type createTicketRequest struct {
	LocationID   string `json:"locationId" binding:"required"`
	CustomerID   string `json:"customerId" binding:"required"`
	Symptom      string `json:"symptom" binding:"required"`
	Description  string `json:"description"`
	VehicleMake  string `json:"vehicleMake"`
	VehicleModel string `json:"vehicleModel"`
	Registration string `json:"registration"`
	VehicleYear  string `json:"vehicleYear"`
	CreatedBy    string `json:"createdBy"`
}

// CreateTicket handles POST /api/tickets.
func (h *Handler) CreateTicket(c *gin.Context) {
	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	year, err := parse.ParseYear(req.VehicleYear, time.Now())
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ticket, err := h.store.CreateTicket(c.Request.Context(), store.CreateTicketInput{
		LocationID:   req.LocationID,
		CustomerID:   req.CustomerID,
		Symptom:      req.Symptom,
		Description:  req.Description,
		VehicleMake:  req.VehicleMake,
		VehicleModel: req.VehicleModel,
		Registration: req.Registration,
		VehicleYear:  year,
		CreatedBy:    req.CreatedBy,
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}

	h.cache.Invalidate(cache.TagTickets, cache.TagSummaries, cache.TagKPIs, cache.TagDashboard)
	respondOK(c, http.StatusCreated, ticket)
}

// ListTickets handles GET /api/tickets.
func (h *Handler) ListTickets(c *gin.Context) {
	locationID, ok := requireLocation(c)
	if !ok {
		return
	}

	filter := store.TicketFilter{
		LocationID: locationID,
		Search:     c.Query("q"),
	}
	if status := c.Query("status"); status != "" {
		ts := model.TicketStatus(status)
		if !ts.Valid() {
			respondError(c, http.StatusBadRequest, fmt.Sprintf("unknown ticket status %q", status))
			return
		}
		filter.Status = ts
	}
	filter.Limit, filter.Offset = pagination(c)

	tickets, err := h.store.ListTickets(c.Request.Context(), filter)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondOK(c, http.StatusOK, tickets)
}

// GetTicket handles GET /api/tickets/:id, returning the ticket with its
// customer and linked cases.
func (h *Handler) GetTicket(c *gin.Context) {
	ticket, err := h.store.GetTicket(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondOK(c, http.StatusOK, ticket)
}

type updateTicketStatusRequest struct {
	Status model.TicketStatus `json:"status" binding:"required"`
	Actor  string             `json:"actor"`
	Note   string             `json:"note"`
}

// UpdateTicketStatus handles PATCH /api/tickets/:id/status.
func (h *Handler) UpdateTicketStatus(c *gin.Context) {
	var req updateTicketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Status.Valid() {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("unknown ticket status %q", req.Status))
		return
	}

	ticket, err := h.store.UpdateTicketStatus(c.Request.Context(), c.Param("id"), req.Status, req.Actor, req.Note)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	h.cache.Invalidate(cache.TagTickets, cache.TagSummaries, cache.TagKPIs, cache.TagDashboard)
	h.notifyAsync(fmt.Sprintf("Ticket %s moved to %s", ticket.TicketNumber, ticket.Status))
	respondOK(c, http.StatusOK, ticket)
}

// ListTicketHistory handles GET /api/tickets/:id/history.
func (h *Handler) ListTicketHistory(c *gin.Context) {
	history, err := h.store.ListTicketHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondOK(c, http.StatusOK, history)
}

type triageRequest struct {
	RouteTo store.RouteTo `json:"routeTo" binding:"required"`
	Note    string        `json:"note"`
	Actor   string        `json:"actor"`
}

// TriageTicket handles POST /api/tickets/:id/triage.
func (h *Handler) TriageTicket(c *gin.Context) {
	var req triageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !req.RouteTo.Valid() {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("unknown routing decision %q", req.RouteTo))
		return
	}

	result, err := h.store.TriageTicket(c.Request.Context(), store.TriageInput{
		TicketID: c.Param("id"),
		RouteTo:  req.RouteTo,
		Note:     req.Note,
		Actor:    req.Actor,
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}

	h.cache.Invalidate(cache.TagTickets, cache.TagBatteries, cache.TagVehicles,
		cache.TagSummaries, cache.TagKPIs, cache.TagDashboard)
	h.notifyAsync(fmt.Sprintf("Ticket %s triaged to %s", result.Ticket.TicketNumber, req.RouteTo))
	respondOK(c, http.StatusOK, result)
}

type attachmentFile struct {
	Kind      model.AttachmentKind `json:"kind" binding:"required"`
	FileName  string               `json:"fileName" binding:"required"`
	SizeBytes int64                `json:"sizeBytes"`
}

type attachmentRequest struct {
	UploadedBy string           `json:"uploadedBy"`
	Files      []attachmentFile `json:"files" binding:"required,min=1"`
}

// attachmentInputs validates the batch's kinds up front. A bad kind fails
// the whole request before anything is written.
func attachmentInputs(c *gin.Context, files []attachmentFile) ([]store.AttachmentInput, bool) {
	inputs := make([]store.AttachmentInput, 0, len(files))
	for _, f := range files {
		switch f.Kind {
		case model.AttachmentPhoto, model.AttachmentAudio, model.AttachmentDocument:
		default:
			respondError(c, http.StatusBadRequest, fmt.Sprintf("unknown attachment kind %q", f.Kind))
			return nil, false
		}
		inputs = append(inputs, store.AttachmentInput{
			Kind:      f.Kind,
			FileName:  f.FileName,
			SizeBytes: f.SizeBytes,
		})
	}
	return inputs, true
}

// AddCaseAttachments handles POST /api/:caseType-cases/:id/attachments.
// Files are processed one at a time; a failed item is reported in place and
// the rest of the batch continues.
func (h *Handler) AddCaseAttachments(caseType model.CaseType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req attachmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		files, ok := attachmentInputs(c, req.Files)
		if !ok {
			return
		}

		results := h.store.AddAttachments(c.Request.Context(), caseType, c.Param("id"), req.UploadedBy, files)
		respondOK(c, http.StatusOK, results)
	}
}

type ticketAttachmentRequest struct {
	CaseType   model.CaseType   `json:"caseType" binding:"required"`
	UploadedBy string           `json:"uploadedBy"`
	Files      []attachmentFile `json:"files" binding:"required,min=1"`
}

// AddTicketAttachments handles POST /api/tickets/:id/attachments. The files
// land on the case the ticket was triaged into; an untriaged ticket (or one
// not routed to the requested case type) cannot receive attachments.
func (h *Handler) AddTicketAttachments(c *gin.Context) {
	var req ticketAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	files, ok := attachmentInputs(c, req.Files)
	if !ok {
		return
	}

	ticket, err := h.store.GetTicket(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}

	var caseID string
	switch req.CaseType {
	case model.CaseTypeVehicle:
		caseID = ticket.VehicleCaseID
	case model.CaseTypeBattery:
		caseID = ticket.BatteryCaseID
	default:
		respondError(c, http.StatusBadRequest, fmt.Sprintf("unknown case type %q", req.CaseType))
		return
	}
	if caseID == "" {
		respondError(c, http.StatusConflict,
			fmt.Sprintf("ticket %s has no %s case", ticket.TicketNumber, req.CaseType))
		return
	}

	results := h.store.AddAttachments(c.Request.Context(), req.CaseType, caseID, req.UploadedBy, files)
	respondOK(c, http.StatusOK, results)
}

// pagination reads limit/offset query parameters with a sane cap.
func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
