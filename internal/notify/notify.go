// Package notify delivers best-effort outbound notifications for workshop
// events. Delivery is fire-and-forget: failures are logged and swallowed,
// never surfaced to the write path that triggered them.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// Sender delivers a single notification text to the sink.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// WebhookSender posts {"text": ...} JSON to a webhook URL.
type WebhookSender struct {
	URL    string
	Client *http.Client
}

// NewWebhookSender creates a WebhookSender with the given request timeout.
func NewWebhookSender(url string, timeout time.Duration) *WebhookSender {
	return &WebhookSender{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

// Send posts the payload. Any non-2xx response is an error.
func (s *WebhookSender) Send(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// WorkerPool fans notification texts out to a fixed set of workers so the
// write paths that dispatch them never wait on the sink.
type WorkerPool struct {
	size   int
	jobs   chan string
	sender Sender
}

// NewWorkerPool creates a worker pool over the given sender.
func NewWorkerPool(size int, sender Sender) *WorkerPool {
	return &WorkerPool{
		size:   size,
		jobs:   make(chan string, size*4),
		sender: sender,
	}
}

// Start launches the worker goroutines. They run until ctx is cancelled.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Debugf("notify worker %d started", id)
	for {
		select {
		case text := <-wp.jobs:
			if err := wp.sender.Send(ctx, text); err != nil {
				log.Warnf("notification dropped: %v", err)
			}
		case <-ctx.Done():
			log.Debugf("notify worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a notification. If the buffer is full the message is
// dropped rather than blocking the caller.
func (wp *WorkerPool) Dispatch(text string) {
	select {
	case wp.jobs <- text:
	default:
		log.Warnf("notification queue full, dropping: %q", text)
	}
}

// Jobs exposes the job channel for tests.
func (wp *WorkerPool) Jobs() chan string {
	return wp.jobs
}

// Noop is a Sender that discards everything. Used when no webhook is
// configured.
type Noop struct{}

// Send implements Sender.
func (Noop) Send(context.Context, string) error { return nil }
