package notify

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/mock-auction/internal/model"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// EventSale is the only event type currently sent.
const EventSale = "sale"

// Event is the JSON message pushed to clients.
type Event struct {
	ID           uuid.UUID        `json:"id"`
	Type         string           `json:"type"`
	Message      string           `json:"message"` // "Congratulations <player> (<rating>) | <team> (<total>)"
	Sale         model.SaleNotice `json:"sale"`
	At           time.Time        `json:"at"`
	DisplayUntil time.Time        `json:"display_until"` // Popup disappears after this
}

// NewEvent wraps a sale notice.
func NewEvent(notice model.SaleNotice, at time.Time, displayFor time.Duration) Event {
	return Event{
		ID:           uuid.New(),
		Type:         EventSale,
		Message:      notice.Message(),
		Sale:         notice,
		At:           at,
		DisplayUntil: at.Add(displayFor),
	}
}

// Expired reports whether the popup window has passed.
func (e Event) Expired(now time.Time) bool {
	return !now.Before(e.DisplayUntil)
}

// Sink receives sale notices.
type Sink interface {
	Notify(notice model.SaleNotice)
}

// HubConfig configures a Hub.
type HubConfig struct {
	ClientBuffer int           // Per-client send queue length
	PingInterval time.Duration // Server ping period
	WriteTimeout time.Duration // Write deadline per message
	DisplayFor   time.Duration // Popup duration stamped on events
}

// DefaultHubConfig returns sensible defaults.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		ClientBuffer: 64,
		PingInterval: 15 * time.Second,
		WriteTimeout: 5 * time.Second,
		DisplayFor:   3 * time.Second,
	}
}

// SubscriberConfig configures a Subscriber.
type SubscriberConfig struct {
	URL          string        // ws://host:port/ws/notifications
	PingTimeout  time.Duration // Max time without ping before considering connection stale
	WriteTimeout time.Duration // Write deadline for control frames
	BufferSize   int           // Event channel buffer size
}

// DefaultSubscriberConfig returns sensible defaults.
func DefaultSubscriberConfig() SubscriberConfig {
	return SubscriberConfig{
		PingTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   100,
	}
}
