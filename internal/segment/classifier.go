// Package segment classifies a tenant into exactly one lifecycle segment from
// its signup date and a freshly computed activity metrics bundle.
package segment

import (
	"time"

	"github.com/unclebandit/lifecycle-messaging/internal/model"
)

// Metrics is the input bundle for Classify. Window counts are trailing windows ending at AsOf;
// the lead/quote/order counts are lifetime totals.
type Metrics struct {
	AsOf time.Time `json:"as_of"`

	LoginCount7d  int `json:"login_count_7d"`
	LoginCount14d int `json:"login_count_14d"`

	LeadCount      int `json:"lead_count"`
	QuoteCount     int `json:"quote_count"`
	SentQuoteCount int `json:"sent_quote_count"`
	OrderCount     int `json:"order_count"`

	HasConfiguredCalculator bool `json:"has_configured_calculator"`
	HasSharedLink           bool `json:"has_shared_link"`

	KeyActionCount7d  int `json:"key_action_count_7d"`
	KeyActionCount14d int `json:"key_action_count_14d"`
}

// Decision is a classification together with the 1-based rule that produced it.
type Decision struct {
	Segment model.Segment `json:"segment"`
	Rule    int           `json:"rule"`
}

type rule struct {
	segment model.Segment
	match   func(daysSinceSignup int, m Metrics) bool
}

// rules are evaluated in order and the first match wins. The order is the tie-break
// policy: recent heavy engagement outranks every warning sign below it.
var rules = []rule{
	{model.SegmentActivePowerUser, func(_ int, m Metrics) bool {
		return m.KeyActionCount7d >= 3
	}},
	{model.SegmentAtRisk, func(_ int, m Metrics) bool {
		return m.KeyActionCount14d > 0 && m.KeyActionCount7d == 0 && m.LoginCount7d == 0
	}},
	{model.SegmentQuotesNoOrders, func(_ int, m Metrics) bool {
		return m.SentQuoteCount > 0 && m.OrderCount == 0
	}},
	{model.SegmentLeadsNoQuotes, func(_ int, m Metrics) bool {
		return m.LeadCount > 0 && m.QuoteCount == 0
	}},
	{model.SegmentConfiguredNotShared, func(_ int, m Metrics) bool {
		return m.HasConfiguredCalculator && !m.HasSharedLink
	}},
	// This condition resolves to the same segment as the default below, so it never
	// changes the outcome. It is kept as observed behaviour until its intent is settled.
	{model.SegmentNewButInactive, func(days int, m Metrics) bool {
		return days > 7 && m.KeyActionCount14d == 0 && m.LoginCount14d <= 1
	}},
}

// DaysSinceSignup is the number of whole days between signup and asOf, never negative.
func DaysSinceSignup(signup, asOf time.Time) int {
	if asOf.Before(signup) {
		return 0
	}
	return int(asOf.Sub(signup).Hours() / 24)
}

// Evaluate runs the ordered rules. It is deterministic and has no side effects.
func Evaluate(signup time.Time, m Metrics) Decision {
	days := DaysSinceSignup(signup, m.AsOf)
	for i, r := range rules {
		if r.match(days, m) {
			return Decision{Segment: r.segment, Rule: i + 1}
		}
	}
	return Decision{Segment: model.SegmentNewButInactive, Rule: len(rules)}
}

// Classify returns the segment for a tenant.
func Classify(signup time.Time, m Metrics) model.Segment {
	return Evaluate(signup, m).Segment
}
