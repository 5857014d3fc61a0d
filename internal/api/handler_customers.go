package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workshop-backend/internal/cache"
	"workshop-backend/internal/model"
	"workshop-backend/internal/store"
)

type createCustomerRequest struct {
	LocationID string `json:"locationId" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	Email      string `json:"email"`
	Address    string `json:"address"`
}

// CreateCustomer handles POST /api/customers.
func (h *Handler) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	customer := &model.Customer{
		LocationID: req.LocationID,
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
		Address:    req.Address,
	}
	if err := h.store.CreateCustomer(c.Request.Context(), customer); err != nil {
		respondStoreError(c, err)
		return
	}

	h.cache.Invalidate(cache.TagCustomers, cache.TagSummaries, cache.TagDashboard)
	respondOK(c, http.StatusCreated, customer)
}

// ListCustomers handles GET /api/customers.
func (h *Handler) ListCustomers(c *gin.Context) {
	locationID, ok := requireLocation(c)
	if !ok {
		return
	}

	filter := store.CustomerFilter{LocationID: locationID, Search: c.Query("q")}
	filter.Limit, filter.Offset = pagination(c)

	customers, err := h.store.ListCustomers(c.Request.Context(), filter)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondOK(c, http.StatusOK, customers)
}

// GetCustomer handles GET /api/customers/:id.
func (h *Handler) GetCustomer(c *gin.Context) {
	customer, err := h.store.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondOK(c, http.StatusOK, customer)
}

type createLocationRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
}

// CreateLocation handles POST /api/locations.
func (h *Handler) CreateLocation(c *gin.Context) {
	var req createLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	location := &model.Location{Name: req.Name, Address: req.Address}
	if err := h.store.CreateLocation(c.Request.Context(), location); err != nil {
		respondStoreError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, location)
}

// ListLocations handles GET /api/locations.
func (h *Handler) ListLocations(c *gin.Context) {
	locations, err := h.store.ListLocations(c.Request.Context())
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondOK(c, http.StatusOK, locations)
}
