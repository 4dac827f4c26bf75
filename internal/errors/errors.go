// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// ErrAlreadySent is returned when the ledger already holds a record and the caller did not force.
var ErrAlreadySent = errors.New("message already sent")

// ErrInvalidDay is returned for onboarding days outside 0..6.
var ErrInvalidDay = errors.New("onboarding day out of range")

// ErrTenantExcluded is returned when a manual send targets a privileged or suspended tenant.
var ErrTenantExcluded = errors.New("tenant is excluded from lifecycle messaging")

var ErrInvalidTemplate = errors.New("invalid template")

type ErrTenantNotFound struct {
	TenantID int
}

func (e *ErrTenantNotFound) Error() string {
	return fmt.Sprintf("tenant with ID %d not found", e.TenantID)
}

func NewTenantNotFound(id int) error {
	return &ErrTenantNotFound{TenantID: id}
}

// ErrTemplateNotFound covers both retention templates looked up by ID and by segment.
type ErrTemplateNotFound struct {
	TemplateID int
	Segment    string
}

func (e *ErrTemplateNotFound) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("no active template for segment %s", e.Segment)
	}
	return fmt.Sprintf("template with ID %d not found", e.TemplateID)
}

func NewTemplateNotFound(id int) error {
	return &ErrTemplateNotFound{TemplateID: id}
}

func NewSegmentTemplateNotFound(segment string) error {
	return &ErrTemplateNotFound{Segment: segment}
}
