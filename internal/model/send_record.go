// internal/model/send_record.go
package model

import "time"

const (
	SendStatusSent    = "sent"
	SendStatusFailed  = "failed"
	SendStatusSkipped = "skipped"
)

type OnboardingSendRecord struct {
	ID                 int       `db:"id" json:"id"`
	TenantID           int       `db:"tenant_id" json:"tenant_id"`
	Day                int       `db:"day" json:"day"`
	Status             string    `db:"status" json:"status"` // sent, failed
	TemplateKey        string    `db:"template_key" json:"template_key"`
	ProcessorConnected bool      `db:"processor_connected" json:"processor_connected"`
	LastError          string    `db:"last_error" json:"last_error,omitempty"`
	Forced             bool      `db:"forced" json:"forced"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

type RetentionSendRecord struct {
	ID         int        `db:"id" json:"id"`
	TenantID   int        `db:"tenant_id" json:"tenant_id"`
	TemplateID int        `db:"template_id" json:"template_id"`
	TrackingID string     `db:"tracking_id" json:"tracking_id"`
	Segment    Segment    `db:"segment" json:"segment"`
	Status     string     `db:"status" json:"status"` // sent, failed
	LastError  string     `db:"last_error" json:"last_error,omitempty"`
	SentAt     *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	OpenedAt   *time.Time `db:"opened_at" json:"opened_at,omitempty"`
	ClickedAt  *time.Time `db:"clicked_at" json:"clicked_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
