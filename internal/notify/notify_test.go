package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSender records sent texts and returns a configurable error.
type mockSender struct {
	mu    sync.Mutex
	sent  []string
	err   error
	calls chan struct{}
}

func (m *mockSender) Send(_ context.Context, text string) error {
	m.mu.Lock()
	m.sent = append(m.sent, text)
	m.mu.Unlock()
	if m.calls != nil {
		m.calls <- struct{}{}
	}
	return m.err
}

func TestWorkerPoolDispatch(t *testing.T) {
	wp := NewWorkerPool(1, &mockSender{})

	// Without workers running the job sits in the channel.
	wp.Dispatch("battery case BC-1 moved to diagnosed")

	select {
	case job := <-wp.Jobs():
		assert.Equal(t, "battery case BC-1 moved to diagnosed", job)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for dispatched job")
	}
}

func TestWorkerPoolDelivers(t *testing.T) {
	sender := &mockSender{calls: make(chan struct{}, 4)}
	wp := NewWorkerPool(2, sender)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	wp.Dispatch("one")
	wp.Dispatch("two")

	for i := 0; i < 2; i++ {
		select {
		case <-sender.calls:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for delivery")
		}
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.ElementsMatch(t, []string{"one", "two"}, sender.sent)
}

func TestWorkerPoolSwallowsSendFailures(t *testing.T) {
	sender := &mockSender{err: errors.New("sink unreachable"), calls: make(chan struct{}, 1)}
	wp := NewWorkerPool(1, sender)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	// Dispatch must not block or panic even though every send fails.
	wp.Dispatch("doomed")

	select {
	case <-sender.calls:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for attempted delivery")
	}
}

func TestDispatchDropsWhenFull(t *testing.T) {
	wp := NewWorkerPool(1, &mockSender{})

	// No workers running: fill the buffer, then one more. Must return.
	for i := 0; i < cap(wp.Jobs())+3; i++ {
		wp.Dispatch("overflow")
	}
	assert.Len(t, wp.Jobs(), cap(wp.Jobs()))
}

func TestWebhookSender(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewWebhookSender(server.URL, time.Second)
	err := sender.Send(context.Background(), "ticket ST-000001 triaged")
	require.NoError(t, err)
	assert.Equal(t, "ticket ST-000001 triaged", received["text"])
}

func TestWebhookSenderNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sender := NewWebhookSender(server.URL, time.Second)
	err := sender.Send(context.Background(), "anything")
	assert.Error(t, err)
}
