package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"workshop-backend/internal/cache"
)

// summaryTags is the tag set carried by every cached summary entry.
var summaryTags = []string{
	cache.TagSummaries, cache.TagKPIs, cache.TagDashboard,
	cache.TagTickets, cache.TagBatteries, cache.TagVehicles,
	cache.TagInvoices, cache.TagCustomers,
}

// DashboardSummary handles GET /api/dashboard/summary. Results are
// memoized per location until the TTL lapses or a write path invalidates
// one of the entry's tags.
func (h *Handler) DashboardSummary(c *gin.Context) {
	locationID, ok := requireLocation(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	key := cache.Key("dashboard-summary", locationID)
	v, err := h.cache.GetOrCompute(key, summaryTags, func() (any, error) {
		return h.store.Summary(ctx, locationID)
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondOK(c, http.StatusOK, v)
}

// DashboardTrend handles GET /api/dashboard/trend, returning weekly intake
// buckets for the trailing window.
func (h *Handler) DashboardTrend(c *gin.Context) {
	locationID, ok := requireLocation(c)
	if !ok {
		return
	}

	weeks, _ := strconv.Atoi(c.DefaultQuery("weeks", "8"))
	if weeks <= 0 || weeks > 52 {
		weeks = 8
	}

	ctx := c.Request.Context()
	key := cache.Key("dashboard-trend", locationID, strconv.Itoa(weeks))
	v, err := h.cache.GetOrCompute(key, []string{cache.TagTickets, cache.TagDashboard}, func() (any, error) {
		return h.store.WeeklyTrend(ctx, locationID, weeks)
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondOK(c, http.StatusOK, v)
}
