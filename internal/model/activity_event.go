// internal/model/activity_event.go
package model

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventLogin                EventType = "login"
	EventLeadCreated          EventType = "lead_created"
	EventQuoteCreated         EventType = "quote_created"
	EventQuoteSent            EventType = "quote_sent"
	EventOrderCreated         EventType = "order_created"
	EventCalculatorConfigured EventType = "calculator_configured"
	EventProductCreated       EventType = "product_created"
	EventLinkShared           EventType = "link_shared"
	EventLinkCopied           EventType = "link_copied"
	EventSettingsUpdated      EventType = "settings_updated"
)

// KeyActions is the curated subset of events that count as meaningful engagement.
var KeyActions = []EventType{
	EventLeadCreated,
	EventQuoteCreated,
	EventQuoteSent,
	EventOrderCreated,
	EventCalculatorConfigured,
	EventProductCreated,
	EventLinkShared,
}

var knownEventTypes = map[EventType]bool{
	EventLogin:                true,
	EventLeadCreated:          true,
	EventQuoteCreated:         true,
	EventQuoteSent:            true,
	EventOrderCreated:         true,
	EventCalculatorConfigured: true,
	EventProductCreated:       true,
	EventLinkShared:           true,
	EventLinkCopied:           true,
	EventSettingsUpdated:      true,
}

func (e EventType) Valid() bool {
	return knownEventTypes[e]
}

type ActivityEvent struct {
	ID        int64           `db:"id" json:"id"`
	TenantID  int             `db:"tenant_id" json:"tenant_id"`
	EventType EventType       `db:"event_type" json:"event_type"`
	Payload   json.RawMessage `db:"payload" json:"payload,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
