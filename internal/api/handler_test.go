package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"workshop-backend/config"
	"workshop-backend/internal/cache"
	"workshop-backend/internal/db"
	"workshop-backend/internal/model"
	"workshop-backend/internal/store"
)

// recordingDispatcher captures dispatched notification texts.
type recordingDispatcher struct {
	texts []string
}

func (d *recordingDispatcher) Dispatch(text string) {
	d.texts = append(d.texts, text)
}

func setupRouter(t *testing.T) (*gin.Engine, store.Store, *recordingDispatcher) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := "file:api_" + t.Name() + "?mode=memory&cache=shared"
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))

	cfg := &config.Config{}
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Billing.DueSoonDays = 7

	s := store.NewGormStore(gormDB)
	qc := cache.New(time.Minute, time.Minute)
	dispatcher := &recordingDispatcher{}

	return NewRouter(cfg, s, qc, dispatcher), s, dispatcher
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func seedCustomer(t *testing.T, s store.Store) *model.Customer {
	t.Helper()
	customer := &model.Customer{LocationID: "loc-1", Name: "Ada Veen", Phone: "555-0101"}
	require.NoError(t, s.CreateCustomer(context.Background(), customer))
	return customer
}

func TestCreateTicketValidation(t *testing.T) {
	router, s, _ := setupRouter(t)
	customer := seedCustomer(t, s)

	// Missing symptom fails before any store call.
	w := doJSON(t, router, http.MethodPost, "/api/tickets", gin.H{
		"locationId": "loc-1",
		"customerId": customer.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)

	// Malformed year is a validation error, not a store error.
	w = doJSON(t, router, http.MethodPost, "/api/tickets", gin.H{
		"locationId":  "loc-1",
		"customerId":  customer.ID,
		"symptom":     "battery drains fast",
		"vehicleYear": "20x9",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/tickets", gin.H{
		"locationId": "loc-1",
		"customerId": customer.ID,
		"symptom":    "battery drains fast",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	env = decodeEnvelope(t, w)
	assert.True(t, env.Success)

	var ticket model.ServiceTicket
	require.NoError(t, json.Unmarshal(env.Data, &ticket))
	assert.Equal(t, model.TicketReported, ticket.Status)
	assert.Equal(t, "ST-000001", ticket.TicketNumber)
}

func TestListTicketsRequiresLocation(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/tickets", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Contains(t, env.Error, "location")
}

func TestTriageEndpointLinksCases(t *testing.T) {
	router, s, dispatcher := setupRouter(t)
	customer := seedCustomer(t, s)

	ticket, err := s.CreateTicket(context.Background(), store.CreateTicketInput{
		LocationID: "loc-1",
		CustomerID: customer.ID,
		Symptom:    "battery drains fast",
	})
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodPost, "/api/tickets/"+ticket.ID+"/triage", gin.H{
		"routeTo": "battery",
		"note":    "pack swollen",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	var result store.TriageResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.NotNil(t, result.BatteryCase)
	assert.Equal(t, "BATT-"+ticket.TicketNumber, result.BatteryCase.SerialNumber)
	assert.Equal(t, model.TicketTriaged, result.Ticket.Status)

	require.Len(t, dispatcher.texts, 1)
	assert.Contains(t, dispatcher.texts[0], ticket.TicketNumber)

	// Unknown routing decision is rejected up front.
	w = doJSON(t, router, http.MethodPost, "/api/tickets/"+ticket.ID+"/triage", gin.H{
		"routeTo": "boat",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransitionEndpointRejectsIllegalMove(t *testing.T) {
	router, s, dispatcher := setupRouter(t)
	customer := seedCustomer(t, s)

	ticket, err := s.CreateTicket(context.Background(), store.CreateTicketInput{
		LocationID: "loc-1", CustomerID: customer.ID, Symptom: "battery drains fast",
	})
	require.NoError(t, err)
	result, err := s.TriageTicket(context.Background(), store.TriageInput{
		TicketID: ticket.ID, RouteTo: store.RouteBattery,
	})
	require.NoError(t, err)
	caseID := result.BatteryCase.ID

	// received -> delivered is not in the battery table.
	w := doJSON(t, router, http.MethodPatch, "/api/battery-cases/"+caseID+"/status", gin.H{
		"status": "delivered",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, dispatcher.texts, "rejected transition must not notify")

	history, err := s.ListBatteryHistory(context.Background(), caseID)
	require.NoError(t, err)
	assert.Empty(t, history)

	// The legal move succeeds and reports the next states.
	w = doJSON(t, router, http.MethodPatch, "/api/battery-cases/"+caseID+"/status", gin.H{
		"status": "diagnosed",
		"actor":  "tech-1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	var resp struct {
		NextStates []model.CaseStatus `json:"nextStates"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.ElementsMatch(t,
		[]model.CaseStatus{model.CaseInProgress, model.CaseOnHold, model.CaseCancelled},
		resp.NextStates)
}

func TestInvoiceEndpointComputesTotals(t *testing.T) {
	router, s, _ := setupRouter(t)
	customer := seedCustomer(t, s)

	w := doJSON(t, router, http.MethodPost, "/api/invoices", gin.H{
		"locationId": "loc-1",
		"customerId": customer.ID,
		"lines": []gin.H{
			{"description": "Diagnostics", "quantity": 1, "unitPrice": 80},
			{"description": "Cell module", "quantity": 2, "unitPrice": 150, "discountPercent": 10, "taxRatePercent": 20},
		},
		"shippingAmount":   12,
		"adjustmentAmount": -2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	var inv model.Invoice
	require.NoError(t, json.Unmarshal(env.Data, &inv))

	// 80 + (300 - 30 + 54) + 12 - 2
	assert.InDelta(t, 380, inv.Subtotal, 1e-9)
	assert.InDelta(t, 30, inv.DiscountTotal, 1e-9)
	assert.InDelta(t, 54, inv.TaxTotal, 1e-9)
	assert.InDelta(t, 414, inv.GrandTotal, 1e-9)
	assert.Len(t, inv.Lines, 2)
}

func TestDueInvoicesBuckets(t *testing.T) {
	router, s, _ := setupRouter(t)
	customer := seedCustomer(t, s)
	ctx := context.Background()

	mkInvoice := func(due time.Time) {
		_, err := s.CreateInvoice(ctx, store.CreateInvoiceInput{
			Kind:       model.KindInvoice,
			LocationID: "loc-1",
			CustomerID: customer.ID,
			DueDate:    &due,
		})
		require.NoError(t, err)
	}
	mkInvoice(time.Now().AddDate(0, 0, -1))
	mkInvoice(time.Now())
	mkInvoice(time.Now().AddDate(0, 0, 30))

	w := doJSON(t, router, http.MethodGet, "/api/invoices/due?location=loc-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	var due []struct {
		Bucket string `json:"bucket"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &due))
	require.Len(t, due, 3)

	buckets := make([]string, 0, 3)
	for _, d := range due {
		buckets = append(buckets, d.Bucket)
	}
	assert.ElementsMatch(t, []string{"overdue", "due_soon", "due_later"}, buckets)
}

func TestDashboardSummaryIsCachedUntilInvalidated(t *testing.T) {
	router, s, _ := setupRouter(t)
	customer := seedCustomer(t, s)
	ctx := context.Background()

	_, err := s.CreateTicket(ctx, store.CreateTicketInput{
		LocationID: "loc-1", CustomerID: customer.ID, Symptom: "battery drains fast",
	})
	require.NoError(t, err)

	get := func() envelope {
		w := doJSON(t, router, http.MethodGet, "/api/dashboard/summary?location=loc-1", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decodeEnvelope(t, w)
	}

	first := get()

	// A second ticket created behind the cache's back is invisible until a
	// write path invalidates the dashboard tags.
	_, err = s.CreateTicket(ctx, store.CreateTicketInput{
		LocationID: "loc-1", CustomerID: customer.ID, Symptom: "brake noise",
	})
	require.NoError(t, err)

	second := get()
	assert.JSONEq(t, string(first.Data), string(second.Data))

	// Creating a ticket through the API invalidates and recomputes.
	w := doJSON(t, router, http.MethodPost, "/api/tickets", gin.H{
		"locationId": "loc-1",
		"customerId": customer.ID,
		"symptom":    "won't charge",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	third := get()
	var summary store.DashboardSummary
	require.NoError(t, json.Unmarshal(third.Data, &summary))
	assert.Equal(t, int64(3), summary.OpenTickets)
}

func TestAttachmentBatchReportsPerItem(t *testing.T) {
	router, s, _ := setupRouter(t)
	customer := seedCustomer(t, s)
	ctx := context.Background()

	ticket, err := s.CreateTicket(ctx, store.CreateTicketInput{
		LocationID: "loc-1", CustomerID: customer.ID, Symptom: "battery drains fast",
	})
	require.NoError(t, err)
	result, err := s.TriageTicket(ctx, store.TriageInput{TicketID: ticket.ID, RouteTo: store.RouteBattery})
	require.NoError(t, err)

	path := fmt.Sprintf("/api/battery-cases/%s/attachments", result.BatteryCase.ID)
	w := doJSON(t, router, http.MethodPost, path, gin.H{
		"uploadedBy": "tech-1",
		"files": []gin.H{
			{"kind": "photo", "fileName": "pack-front.jpg", "sizeBytes": 120000},
			{"kind": "document", "fileName": "intake-form.pdf", "sizeBytes": 42000},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	var results []store.AttachmentResult
	require.NoError(t, json.Unmarshal(env.Data, &results))
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.True(t, results[1].Success)

	// Unknown kind is rejected for the whole request before any write.
	w = doJSON(t, router, http.MethodPost, path, gin.H{
		"files": []gin.H{{"kind": "video", "fileName": "clip.mp4"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTicketAttachmentsResolveThroughCase(t *testing.T) {
	router, s, _ := setupRouter(t)
	customer := seedCustomer(t, s)
	ctx := context.Background()

	ticket, err := s.CreateTicket(ctx, store.CreateTicketInput{
		LocationID: "loc-1", CustomerID: customer.ID, Symptom: "battery drains fast",
	})
	require.NoError(t, err)

	path := "/api/tickets/" + ticket.ID + "/attachments"
	body := gin.H{
		"caseType":   "battery",
		"uploadedBy": "front-desk",
		"files":      []gin.H{{"kind": "photo", "fileName": "arrival.jpg"}},
	}

	// Before triage there is no case to attach to.
	w := doJSON(t, router, http.MethodPost, path, body)
	assert.Equal(t, http.StatusConflict, w.Code)

	result, err := s.TriageTicket(ctx, store.TriageInput{TicketID: ticket.ID, RouteTo: store.RouteBattery})
	require.NoError(t, err)

	w = doJSON(t, router, http.MethodPost, path, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	var results []store.AttachmentResult
	require.NoError(t, json.Unmarshal(env.Data, &results))
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, result.BatteryCase.ID, results[0].Attachment.CaseID)

	// The ticket was routed to battery only, so vehicle is still a conflict.
	w = doJSON(t, router, http.MethodPost, path, gin.H{
		"caseType": "vehicle",
		"files":    []gin.H{{"kind": "photo", "fileName": "arrival.jpg"}},
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// The fetched ticket rolls the case attachments up.
	w = doJSON(t, router, http.MethodGet, "/api/tickets/"+ticket.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	env = decodeEnvelope(t, w)
	var fetched model.ServiceTicket
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	require.Len(t, fetched.Attachments, 1)
	assert.Equal(t, "arrival.jpg", fetched.Attachments[0].FileName)
}
