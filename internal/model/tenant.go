// internal/model/tenant.go
package model

import "time"

const (
	RoleBaker = "baker"
	RoleAdmin = "admin"
)

type Tenant struct {
	ID                   int        `db:"id" json:"id"`
	Email                string     `db:"email" json:"email"`
	FirstName            string     `db:"first_name" json:"first_name"`
	BusinessName         string     `db:"business_name" json:"business_name"`
	Slug                 string     `db:"slug" json:"slug"`
	Role                 string     `db:"role" json:"role"`
	Suspended            bool       `db:"suspended" json:"suspended"`
	ProcessorConnectedAt *time.Time `db:"processor_connected_at" json:"processor_connected_at,omitempty"`
	ChargesEnabled       bool       `db:"charges_enabled" json:"charges_enabled"`
	PayoutsEnabled       bool       `db:"payouts_enabled" json:"payouts_enabled"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
}

// IsPrivileged reports whether the tenant is excluded from all lifecycle messaging.
func (t *Tenant) IsPrivileged() bool {
	return t.Role == RoleAdmin
}

// ProcessorConnected is true only once onboarding with the payment processor
// has completed and both charges and payouts are enabled.
func (t *Tenant) ProcessorConnected() bool {
	return t.ProcessorConnectedAt != nil && t.ChargesEnabled && t.PayoutsEnabled
}
