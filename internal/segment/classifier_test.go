package segment_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/unclebandit/lifecycle-messaging/internal/model"
	"github.com/unclebandit/lifecycle-messaging/internal/segment"
)

var asOf = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestClassifyRules(t *testing.T) {
	signup := asOf.Add(-30 * 24 * time.Hour)

	tests := []struct {
		name    string
		metrics segment.Metrics
		want    model.Segment
		rule    int
	}{
		{
			name:    "power user",
			metrics: segment.Metrics{KeyActionCount7d: 3, KeyActionCount14d: 3},
			want:    model.SegmentActivePowerUser,
			rule:    1,
		},
		{
			name:    "gone cold",
			metrics: segment.Metrics{KeyActionCount14d: 2},
			want:    model.SegmentAtRisk,
			rule:    2,
		},
		{
			name:    "cold but still logging in is not at risk",
			metrics: segment.Metrics{KeyActionCount14d: 2, LoginCount7d: 1, LeadCount: 1},
			want:    model.SegmentLeadsNoQuotes,
			rule:    4,
		},
		{
			name:    "quotes without orders",
			metrics: segment.Metrics{SentQuoteCount: 1, QuoteCount: 1, LoginCount7d: 1},
			want:    model.SegmentQuotesNoOrders,
			rule:    3,
		},
		{
			name:    "leads without quotes",
			metrics: segment.Metrics{LeadCount: 4},
			want:    model.SegmentLeadsNoQuotes,
			rule:    4,
		},
		{
			name:    "configured but never shared",
			metrics: segment.Metrics{HasConfiguredCalculator: true},
			want:    model.SegmentConfiguredNotShared,
			rule:    5,
		},
		{
			name:    "configured and shared falls through",
			metrics: segment.Metrics{HasConfiguredCalculator: true, HasSharedLink: true, LoginCount14d: 5},
			want:    model.SegmentNewButInactive,
			rule:    6,
		},
		{
			name:    "stale signup matches the redundant condition",
			metrics: segment.Metrics{LoginCount14d: 1},
			want:    model.SegmentNewButInactive,
			rule:    6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.metrics.AsOf = asOf
			got := segment.Evaluate(signup, tt.metrics)
			assert.Equal(t, tt.want, got.Segment)
			assert.Equal(t, tt.rule, got.Rule)
		})
	}
}

func TestPowerUserWinsTies(t *testing.T) {
	signup := asOf.Add(-10 * 24 * time.Hour)
	m := segment.Metrics{
		AsOf:                    asOf,
		KeyActionCount7d:        5,
		KeyActionCount14d:       5,
		SentQuoteCount:          2,
		OrderCount:              0,
		LeadCount:               3,
		HasConfiguredCalculator: true,
	}
	assert.Equal(t, model.SegmentActivePowerUser, segment.Classify(signup, m))
}

func TestClassifyIsDeterministicAndTotal(t *testing.T) {
	signups := []time.Time{asOf, asOf.Add(-3 * 24 * time.Hour), asOf.Add(-60 * 24 * time.Hour), asOf.Add(time.Hour)}
	for _, signup := range signups {
		for k7 := 0; k7 <= 4; k7++ {
			for k14 := k7; k14 <= k7+2; k14++ {
				for _, logins := range []int{0, 1, 3} {
					for _, flags := range []int{0, 1, 2, 3} {
						m := segment.Metrics{
							AsOf:                    asOf,
							KeyActionCount7d:        k7,
							KeyActionCount14d:       k14,
							LoginCount7d:            logins,
							LoginCount14d:           logins,
							LeadCount:               flags & 1,
							SentQuoteCount:          flags & 2,
							QuoteCount:              flags & 2,
							HasConfiguredCalculator: flags == 3,
						}
						first := segment.Evaluate(signup, m)
						second := segment.Evaluate(signup, m)
						assert.Equal(t, first, second)
						assert.True(t, first.Segment.Valid())
						assert.GreaterOrEqual(t, first.Rule, 1)
						assert.LessOrEqual(t, first.Rule, 6)
					}
				}
			}
		}
	}
}

func TestDaysSinceSignup(t *testing.T) {
	assert.Equal(t, 0, segment.DaysSinceSignup(asOf.Add(time.Hour), asOf))
	assert.Equal(t, 0, segment.DaysSinceSignup(asOf.Add(-23*time.Hour), asOf))
	assert.Equal(t, 4, segment.DaysSinceSignup(asOf.Add(-96*time.Hour), asOf))
}
