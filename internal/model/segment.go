// internal/model/segment.go
package model

type Segment string

const (
	SegmentNewButInactive      Segment = "new_but_inactive"
	SegmentConfiguredNotShared Segment = "configured_not_shared"
	SegmentLeadsNoQuotes       Segment = "leads_no_quotes"
	SegmentQuotesNoOrders      Segment = "quotes_no_orders"
	SegmentActivePowerUser     Segment = "active_power_user"
	SegmentAtRisk              Segment = "at_risk"
)

var Segments = []Segment{
	SegmentNewButInactive,
	SegmentConfiguredNotShared,
	SegmentLeadsNoQuotes,
	SegmentQuotesNoOrders,
	SegmentActivePowerUser,
	SegmentAtRisk,
}

func (s Segment) Valid() bool {
	for _, known := range Segments {
		if s == known {
			return true
		}
	}
	return false
}
