package mqtt

import (
	"context"
	"time"
)

// Change actions.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionVerified = "verified"
)

// Change describes one successful mutation.
type Change struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier announces changes. Implementations must not block the caller
// for long and must not return errors; failures are theirs to log.
type Notifier interface {
	Notify(ctx context.Context, change Change)
}

// Publisher is the subset of Client used by ChangeNotifier.
type Publisher interface {
	PublishJSON(topic string, v any) error
}

// ChangeNotifier publishes changes to {prefix}/changes/{entity}/{action}.
type ChangeNotifier struct {
	pub    Publisher
	topics Topics
	logger Logger
	now    func() time.Time
}

// NewChangeNotifier creates a notifier publishing through pub under prefix.
func NewChangeNotifier(pub Publisher, prefix string, logger Logger) *ChangeNotifier {
	return &ChangeNotifier{
		pub:    pub,
		topics: Topics{Prefix: prefix},
		logger: logger,
		now:    time.Now,
	}
}

// Notify publishes change. Errors are logged at warn level.
func (n *ChangeNotifier) Notify(ctx context.Context, change Change) {
	if ctx.Err() != nil {
		return
	}
	if change.Timestamp.IsZero() {
		change.Timestamp = n.now().UTC()
	}

	topic := n.topics.Change(change.Entity, change.Action)
	if err := n.pub.PublishJSON(topic, change); err != nil && n.logger != nil {
		n.logger.Warn("change notification failed",
			"topic", topic,
			"entity", change.Entity,
			"id", change.ID,
			"error", err,
		)
	}
}

// NopNotifier discards every change. It is used when MQTT is disabled.
type NopNotifier struct{}

// Notify does nothing.
func (NopNotifier) Notify(context.Context, Change) {}
