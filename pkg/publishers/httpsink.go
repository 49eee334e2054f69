package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/paperboy-hq/paperboy/pkg/httpclient"
)

// httpPublisher POSTs digest events as JSON to a configured endpoint.
type httpPublisher struct {
	id     string
	url    string
	header map[string]string
	client httpclient.Client
	log    Logger
}

// newHTTPPublisher builds an HTTP publisher from a config entry.
func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q has no http configuration", cfg.ID)
	}

	timeout := cfg.HTTP.TimeoutSeconds
	if timeout <= 0 {
		timeout = httpDefaultTimeoutSeconds
	}

	return &httpPublisher{
		id:     cfg.ID,
		url:    cfg.HTTP.URL,
		header: cfg.HTTP.Headers,
		client: httpclient.NewRestyClient(time.Duration(timeout) * time.Second),
		log:    ensureLogger(log),
	}, nil
}

func (p *httpPublisher) ID() string {
	return p.id
}

func (p *httpPublisher) Type() string {
	return TypeHTTP
}

// Publish delivers the digest event to the endpoint and treats any
// non-2xx response as a failure.
func (p *httpPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
	}
	for k, v := range p.header {
		headers[k] = v
	}

	resp, err := p.client.Post(ctx, p.url, headers, payload)
	if err != nil {
		return fmt.Errorf("post event to %s: %w", p.url, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("post event to %s: unexpected status %d", p.url, resp.StatusCode())
	}

	p.log.DebugObj("http publisher delivered event", "publisher_http_delivery", map[string]any{
		"publisher": p.id,
		"status":    resp.StatusCode(),
	})
	return nil
}
