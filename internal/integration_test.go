package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"workshop-backend/config"
	"workshop-backend/internal/api"
	"workshop-backend/internal/cache"
	"workshop-backend/internal/db"
	"workshop-backend/internal/model"
	"workshop-backend/internal/store"
)

// capturingSink records every notification text the worker pool would have
// delivered to the webhook.
type capturingSink struct {
	mu    sync.Mutex
	texts []string
}

func (s *capturingSink) Dispatch(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
}

func (s *capturingSink) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...)
}

// TestRepairLifecycle walks a battery repair from intake through triage,
// diagnosis, repair and delivery, then bills it and checks the dashboard,
// all through the HTTP surface.
func TestRepairLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testDB, err := gorm.Open(sqlite.Open("file:lifecycle?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()
	require.NoError(t, db.Migrate(testDB))

	cfg := &config.Config{}
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Billing.DueSoonDays = 7

	sink := &capturingSink{}
	router := api.NewRouter(cfg, store.NewGormStore(testDB), cache.New(time.Minute, time.Minute), sink)

	server := httptest.NewServer(router)
	defer server.Close()

	client := server.Client()

	post := func(t *testing.T, path string, body any) map[string]json.RawMessage {
		t.Helper()
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
		resp, err := client.Post(server.URL+path, "application/json", &buf)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Less(t, resp.StatusCode, 300, "POST %s", path)

		var env map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
		return env
	}

	patch := func(t *testing.T, path string, body any) (int, map[string]json.RawMessage) {
		t.Helper()
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
		req, err := http.NewRequest(http.MethodPatch, server.URL+path, &buf)
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		var env map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
		return resp.StatusCode, env
	}

	get := func(t *testing.T, path string, out any) {
		t.Helper()
		resp, err := client.Get(server.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, "GET %s", path)

		var env struct {
			Success bool            `json:"success"`
			Data    json.RawMessage `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
		require.True(t, env.Success)
		require.NoError(t, json.Unmarshal(env.Data, out))
	}

	// Intake: a location, a customer, then the ticket itself.
	var location model.Location
	env := post(t, "/api/locations", gin.H{"name": "Riverside Workshop"})
	require.NoError(t, json.Unmarshal(env["data"], &location))

	var customer model.Customer
	env = post(t, "/api/customers", gin.H{
		"locationId": location.ID,
		"name":       "Jo Marchetti",
		"phone":      "555-0199",
	})
	require.NoError(t, json.Unmarshal(env["data"], &customer))

	var ticket model.ServiceTicket
	env = post(t, "/api/tickets", gin.H{
		"locationId":   location.ID,
		"customerId":   customer.ID,
		"symptom":      "range dropped by half",
		"vehicleMake":  "NIU",
		"vehicleModel": "NQi GTS",
		"registration": "ab 123 cd",
		"vehicleYear":  "2023",
	})
	require.NoError(t, json.Unmarshal(env["data"], &ticket))
	assert.Equal(t, "ST-000001", ticket.TicketNumber)
	assert.Equal(t, model.TicketReported, ticket.Status)

	// Triage routes to both workflows in a single step.
	var triage store.TriageResult
	env = post(t, fmt.Sprintf("/api/tickets/%s/triage", ticket.ID), gin.H{
		"routeTo": "both",
		"note":    "pack suspect, brakes also worn",
		"actor":   "front-desk",
	})
	require.NoError(t, json.Unmarshal(env["data"], &triage))
	require.NotNil(t, triage.BatteryCase)
	require.NotNil(t, triage.VehicleCase)
	assert.Equal(t, model.TicketTriaged, triage.Ticket.Status)
	assert.Equal(t, "BATT-ST-000001", triage.BatteryCase.SerialNumber)
	assert.Equal(t, "AB123CD", triage.VehicleCase.Registration)
	assert.Equal(t, model.CaseReceived, triage.BatteryCase.Status)

	// Walk the battery through its workflow. Each hop appends history.
	batteryPath := "/api/battery-cases/" + triage.BatteryCase.ID
	for _, status := range []string{"diagnosed", "in_progress", "completed", "delivered"} {
		code, _ := patch(t, batteryPath+"/status", gin.H{"status": status, "actor": "tech-2"})
		require.Equal(t, http.StatusOK, code, "transition to %s", status)
	}

	// A terminal case refuses further movement and leaves history intact.
	code, errEnv := patch(t, batteryPath+"/status", gin.H{"status": "received"})
	assert.Equal(t, http.StatusConflict, code)
	var success bool
	require.NoError(t, json.Unmarshal(errEnv["success"], &success))
	assert.False(t, success)

	var history []model.BatteryStatusHistory
	get(t, batteryPath+"/history", &history)
	require.Len(t, history, 4)
	assert.Equal(t, model.CaseReceived, history[0].PreviousStatus)
	assert.Equal(t, model.CaseDelivered, history[3].NewStatus)

	// Bill the repair. Totals come from the lines, not the client.
	due := time.Now().AddDate(0, 0, 14)
	var invoice model.Invoice
	env = post(t, "/api/invoices", gin.H{
		"kind":       "invoice",
		"locationId": location.ID,
		"customerId": customer.ID,
		"ticketId":   ticket.ID,
		"dueDate":    due.Format(time.RFC3339),
		"lines": []gin.H{
			{"description": "Replacement cells", "quantity": 10, "unitPrice": 45, "taxRatePercent": 20},
			{"description": "Labor", "quantity": 3, "unitPrice": 60},
		},
		"grandTotal": 1, // ignored
	})
	require.NoError(t, json.Unmarshal(env["data"], &invoice))
	assert.Equal(t, "INV-000001", invoice.Number)
	assert.InDelta(t, 630, invoice.Subtotal, 1e-9)
	assert.InDelta(t, 90, invoice.TaxTotal, 1e-9)
	assert.InDelta(t, 720, invoice.GrandTotal, 1e-9)

	var dueList []struct {
		Number string `json:"number"`
		Bucket string `json:"bucket"`
	}
	get(t, "/api/invoices/due?location="+location.ID, &dueList)
	require.Len(t, dueList, 1)
	assert.Equal(t, "INV-000001", dueList[0].Number)
	assert.Equal(t, "due_later", dueList[0].Bucket)

	// Dashboard reflects everything above for this location only.
	var summary store.DashboardSummary
	get(t, "/api/dashboard/summary?location="+location.ID, &summary)
	assert.Equal(t, int64(1), summary.OpenTickets)
	assert.Equal(t, int64(1), summary.TicketsByStatus[model.TicketTriaged])
	assert.Equal(t, int64(1), summary.BatteryByStatus[model.CaseDelivered])
	assert.Equal(t, int64(1), summary.VehicleByStatus[model.CaseReceived])
	assert.Equal(t, int64(1), summary.OpenInvoices)
	assert.Equal(t, int64(1), summary.Customers)

	// Every mutation along the way produced a best-effort notification.
	texts := sink.all()
	assert.GreaterOrEqual(t, len(texts), 5)
	assert.Contains(t, texts[0], "ST-000001")
}
