package catalog

import (
	"github.com/unclebandit/lifecycle-messaging/internal/model"
	"github.com/unclebandit/lifecycle-messaging/internal/render"
)

// RetentionContent wraps an operator-edited template in the shared footer.
func RetentionContent(t *model.RetentionTemplate) render.Content {
	return render.Content{
		Subject:  t.Subject,
		Body:     t.BodyHTML,
		Text:     t.BodyText,
		CTALabel: t.CTALabel,
		CTARoute: t.CTARoute,
		Footer:   Footer,
	}
}

// DefaultRetentionTemplates is the copy seeded into a fresh database, one per segment.
func DefaultRetentionTemplates() []model.RetentionTemplate {
	return []model.RetentionTemplate{
		{
			Name:     "New but inactive: first quote nudge",
			Segment:  model.SegmentNewButInactive,
			Priority: 10,
			Active:   true,
			Subject:  "{{first_name}}, your calculator is one step away",
			BodyHTML: `Hi {{first_name}},

Most bakers get their first enquiry within a week of setting prices. It only takes a few minutes.

- Add your base cake sizes
- Add flavours and fillings
- Share your order page`,
			CTALabel: "Set my prices",
			CTARoute: "/calculator",
		},
		{
			Name:     "Configured not shared: share your link",
			Segment:  model.SegmentConfiguredNotShared,
			Priority: 10,
			Active:   true,
			Subject:  "Your prices are set. Time to share them!",
			BodyHTML: `Hi {{first_name}},

{{business_name}}'s calculator is ready but nobody has seen it yet. Put {{share_url}} in your Instagram bio and let customers price their own cakes.`,
			CTALabel: "Get my link",
			CTARoute: "/dashboard",
		},
		{
			Name:     "Leads without quotes: reply faster",
			Segment:  model.SegmentLeadsNoQuotes,
			Priority: 10,
			Active:   true,
			Subject:  "You have enquiries waiting",
			BodyHTML: `Hi {{first_name}},

Customers have asked {{business_name}} for prices. Bakers who quote within 24 hours win **twice as many** orders.`,
			CTALabel: "Reply to my leads",
			CTARoute: "/leads",
		},
		{
			Name:     "Quotes without orders: follow up",
			Segment:  model.SegmentQuotesNoOrders,
			Priority: 10,
			Active:   true,
			Subject:  "A gentle follow-up wins orders",
			BodyHTML: `Hi {{first_name}},

You've sent quotes but none have turned into orders yet. A short follow-up message two days later is the easiest way to close them.`,
			CTALabel: "Review my quotes",
			CTARoute: "/quotes",
		},
		{
			Name:     "Power users: partner programme",
			Segment:  model.SegmentActivePowerUser,
			Priority: 10,
			Active:   true,
			Subject:  "You're on a roll, {{first_name}}",
			BodyHTML: `Hi {{first_name}},

{{business_name}} has been busy this week. Know other bakers who'd benefit? Refer them and earn commission.`,
			CTALabel: "Refer a baker",
			CTARoute: "/partners",
		},
		{
			Name:     "At risk: we miss you",
			Segment:  model.SegmentAtRisk,
			Priority: 10,
			Active:   true,
			Subject:  "Everything OK at {{business_name}}?",
			BodyHTML: `Hi {{first_name}},

We noticed things have gone quiet. Your order page is still live at {{share_url}}, and any new enquiries will be waiting in your dashboard.`,
			CTALabel: "Log in",
			CTARoute: "/login",
		},
	}
}
