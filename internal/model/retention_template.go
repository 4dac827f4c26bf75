// internal/model/retention_template.go
package model

import "time"

type RetentionTemplate struct {
	ID        int        `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Segment   Segment    `db:"segment" json:"segment"`
	Priority  int        `db:"priority" json:"priority"`
	Active    bool       `db:"active" json:"active"`
	Subject   string     `db:"subject" json:"subject"`
	BodyHTML  string     `db:"body_html" json:"body_html"`
	BodyText  string     `db:"body_text" json:"body_text"`
	CTALabel  string     `db:"cta_label" json:"cta_label"`
	CTARoute  string     `db:"cta_route" json:"cta_route"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
