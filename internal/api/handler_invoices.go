package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"workshop-backend/internal/billing"
	"workshop-backend/internal/cache"
	"workshop-backend/internal/model"
	"workshop-backend/internal/store"
)

// invoiceTags are the cache tags any billing mutation invalidates.
var invoiceTags = []string{cache.TagInvoices, cache.TagSummaries, cache.TagKPIs, cache.TagDashboard}

type createInvoiceRequest struct {
	Kind       model.InvoiceKind   `json:"kind"`
	LocationID string              `json:"locationId" binding:"required"`
	CustomerID string              `json:"customerId" binding:"required"`
	TicketID   string              `json:"ticketId"`
	Lines      []billing.LineInput `json:"lines"`
	Shipping   float64             `json:"shippingAmount"`
	Adjustment float64             `json:"adjustmentAmount"`
	DueDate    *time.Time          `json:"dueDate"`
}

// CreateInvoice handles POST /api/invoices. Totals are always computed from
// the submitted lines; client-supplied totals are ignored.
func (h *Handler) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Kind != "" && req.Kind != model.KindQuote && req.Kind != model.KindInvoice {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("unknown document kind %q", req.Kind))
		return
	}

	totals := billing.ComputeDocument(req.Lines, req.Shipping, req.Adjustment)
	inv, err := h.store.CreateInvoice(c.Request.Context(), store.CreateInvoiceInput{
		Kind:       req.Kind,
		LocationID: req.LocationID,
		CustomerID: req.CustomerID,
		TicketID:   req.TicketID,
		Lines:      billing.BuildLines(req.Lines),
		Totals: store.InvoiceTotals{
			Subtotal:      totals.Subtotal,
			DiscountTotal: totals.DiscountTotal,
			TaxTotal:      totals.TaxTotal,
			GrandTotal:    totals.GrandTotal,
		},
		Shipping:   req.Shipping,
		Adjustment: req.Adjustment,
		DueDate:    req.DueDate,
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}

	h.cache.Invalidate(invoiceTags...)
	respondOK(c, http.StatusCreated, inv)
}

// ListInvoices handles GET /api/invoices.
func (h *Handler) ListInvoices(c *gin.Context) {
	locationID, ok := requireLocation(c)
	if !ok {
		return
	}

	filter := store.InvoiceFilter{
		LocationID: locationID,
		Kind:       model.InvoiceKind(c.Query("kind")),
		Status:     model.InvoiceStatus(c.Query("status")),
	}
	filter.Limit, filter.Offset = pagination(c)

	invoices, err := h.store.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondOK(c, http.StatusOK, invoices)
}

// GetInvoice handles GET /api/invoices/:id.
func (h *Handler) GetInvoice(c *gin.Context) {
	inv, err := h.store.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondOK(c, http.StatusOK, inv)
}

type replaceLinesRequest struct {
	Lines      []billing.LineInput `json:"lines"`
	Shipping   float64             `json:"shippingAmount"`
	Adjustment float64             `json:"adjustmentAmount"`
}

// ReplaceInvoiceLines handles PUT /api/invoices/:id/lines. Every edit
// recomputes the document from scratch so persisted totals cannot drift.
func (h *Handler) ReplaceInvoiceLines(c *gin.Context) {
	var req replaceLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	totals := billing.ComputeDocument(req.Lines, req.Shipping, req.Adjustment)
	inv, err := h.store.ReplaceInvoiceLines(c.Request.Context(), c.Param("id"),
		billing.BuildLines(req.Lines),
		store.InvoiceTotals{
			Subtotal:      totals.Subtotal,
			DiscountTotal: totals.DiscountTotal,
			TaxTotal:      totals.TaxTotal,
			GrandTotal:    totals.GrandTotal,
		},
		req.Shipping, req.Adjustment)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	h.cache.Invalidate(invoiceTags...)
	respondOK(c, http.StatusOK, inv)
}

type invoiceStatusRequest struct {
	Status model.InvoiceStatus `json:"status" binding:"required"`
}

// UpdateInvoiceStatus handles PATCH /api/invoices/:id/status.
func (h *Handler) UpdateInvoiceStatus(c *gin.Context) {
	var req invoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	switch req.Status {
	case model.InvoiceDraft, model.InvoiceSent, model.InvoicePaid, model.InvoiceVoid:
	default:
		respondError(c, http.StatusBadRequest, fmt.Sprintf("unknown invoice status %q", req.Status))
		return
	}

	inv, err := h.store.UpdateInvoiceStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	h.cache.Invalidate(invoiceTags...)
	respondOK(c, http.StatusOK, inv)
}

// dueInvoice is one open invoice with its display bucket.
type dueInvoice struct {
	model.Invoice
	Bucket billing.DueBucket `json:"bucket"`
}

// ListDueInvoices handles GET /api/invoices/due, classifying every open
// invoice as overdue, due_soon or due_later.
func (h *Handler) ListDueInvoices(c *gin.Context) {
	locationID, ok := requireLocation(c)
	if !ok {
		return
	}

	invoices, err := h.store.ListOpenInvoices(c.Request.Context(), locationID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	now := time.Now()
	out := make([]dueInvoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.DueDate == nil {
			continue
		}
		out = append(out, dueInvoice{
			Invoice: inv,
			Bucket:  billing.ClassifyDue(*inv.DueDate, now, h.dueSoonWindow),
		})
	}
	respondOK(c, http.StatusOK, out)
}
