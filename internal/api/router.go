package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"workshop-backend/config"
	"workshop-backend/internal/cache"
	"workshop-backend/internal/model"
	"workshop-backend/internal/mw"
	"workshop-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, qc *cache.QueryCache, notifier Dispatcher) *gin.Engine {
	r := gin.Default()

	dueSoonWindow := time.Duration(cfg.Billing.DueSoonDays) * 24 * time.Hour
	handler := NewHandler(s, qc, notifier, dueSoonWindow)

	rateLimiter := mw.RateLimiter(
		rate.Limit(cfg.Server.RateLimitPerSec),
		cfg.Server.RateLimitBurst,
		cfg.Server.RequestIPHeader,
	)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/locations", handler.CreateLocation)
		api.GET("/locations", handler.ListLocations)

		api.POST("/customers", handler.CreateCustomer)
		api.GET("/customers", handler.ListCustomers)
		api.GET("/customers/:id", handler.GetCustomer)

		api.POST("/tickets", handler.CreateTicket)
		api.GET("/tickets", handler.ListTickets)
		api.GET("/tickets/:id", handler.GetTicket)
		api.PATCH("/tickets/:id/status", handler.UpdateTicketStatus)
		api.GET("/tickets/:id/history", handler.ListTicketHistory)
		api.POST("/tickets/:id/triage", handler.TriageTicket)
		api.POST("/tickets/:id/attachments", handler.AddTicketAttachments)

		api.GET("/battery-cases", handler.ListBatteryCases)
		api.GET("/battery-cases/:id", handler.GetBatteryCase)
		api.PATCH("/battery-cases/:id", handler.UpdateBatteryCase)
		api.PATCH("/battery-cases/:id/status", handler.TransitionBatteryCase)
		api.GET("/battery-cases/:id/history", handler.ListBatteryHistory)
		api.POST("/battery-cases/:id/attachments", handler.AddCaseAttachments(model.CaseTypeBattery))

		api.GET("/vehicle-cases", handler.ListVehicleCases)
		api.GET("/vehicle-cases/:id", handler.GetVehicleCase)
		api.PATCH("/vehicle-cases/:id", handler.UpdateVehicleCase)
		api.PATCH("/vehicle-cases/:id/status", handler.TransitionVehicleCase)
		api.GET("/vehicle-cases/:id/history", handler.ListVehicleHistory)
		api.POST("/vehicle-cases/:id/attachments", handler.AddCaseAttachments(model.CaseTypeVehicle))

		api.POST("/invoices", handler.CreateInvoice)
		api.GET("/invoices", handler.ListInvoices)
		api.GET("/invoices/due", handler.ListDueInvoices)
		api.GET("/invoices/:id", handler.GetInvoice)
		api.PUT("/invoices/:id/lines", handler.ReplaceInvoiceLines)
		api.PATCH("/invoices/:id/status", handler.UpdateInvoiceStatus)

		api.GET("/dashboard/summary", handler.DashboardSummary)
		api.GET("/dashboard/trend", handler.DashboardTrend)
	}

	return r
}
