package publishers

import (
	"context"
	"time"
)

// Event is the digest notification sent to every enabled sink after an
// aggregation run produced an artifact.
type Event struct {
	Digest       string    `json:"digest"`
	GeneratedAt  time.Time `json:"generated_at"`
	ArticleCount int       `json:"article_count"`
	Topics       []string  `json:"topics,omitempty"`
	Headlines    []string  `json:"headlines,omitempty"`
	ArtifactPath string    `json:"artifact_path,omitempty"`
}

// Publisher delivers digest events to one configured sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Logger is the logging surface the publishers depend on. It matches the
// service-wide logger so implementations pass straight through.
type Logger interface {
	DebugObj(msg, event string, fields map[string]any)
	InfoObj(msg, event string, fields map[string]any)
	WarnObj(msg, event string, fields map[string]any)
	ErrorObj(msg, event string, fields map[string]any)
}

// NopLogger discards all publisher logging.
type NopLogger struct{}

func (NopLogger) DebugObj(string, string, map[string]any) {}
func (NopLogger) InfoObj(string, string, map[string]any)  {}
func (NopLogger) WarnObj(string, string, map[string]any)  {}
func (NopLogger) ErrorObj(string, string, map[string]any) {}

// ensureLogger normalizes nil loggers to the nop implementation.
func ensureLogger(log Logger) Logger {
	if log == nil {
		return NopLogger{}
	}
	return log
}

// PublishAll delivers the event to every publisher, logging failures and
// carrying on. A sink outage never fails the digest run.
func PublishAll(ctx context.Context, pubs []Publisher, evt Event, log Logger) {
	log = ensureLogger(log)

	for _, pub := range pubs {
		if pub == nil {
			continue
		}

		if err := pub.Publish(ctx, evt); err != nil {
			log.ErrorObj("digest event delivery failed", "publisher_error", map[string]any{
				"publisher_id": pub.ID(),
				"type":         pub.Type(),
				"error":        err.Error(),
			})
			continue
		}

		log.DebugObj("digest event delivered", "publisher_delivery", map[string]any{
			"publisher_id": pub.ID(),
			"type":         pub.Type(),
		})
	}
}
