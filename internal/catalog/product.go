package catalog

import "github.com/unclebandit/lifecycle-messaging/internal/render"

// Footer is appended to every lifecycle and product email.
const Footer = `<p>You're receiving this because you run {{business_name}} on Bakery HQ.</p>` +
	`<p><a href="{{dashboard_url}}">Dashboard</a> · <a href="{{base_url}}/help">Help centre</a> · ` +
	`<a href="{{unsubscribe_url}}">Email preferences</a></p>`

// StaticEmail is copy sent from elsewhere in the product that still needs link auditing.
type StaticEmail struct {
	Key     string
	Content render.Content
}

var staticEmails = []StaticEmail{
	{
		Key: "milestone_first_order",
		Content: render.Content{
			Subject: "Your first order! 🎉",
			Body: `Congratulations {{first_name}},

{{business_name}} just took its first order through Bakery HQ. You can track the deposit and balance from the order page.`,
			CTALabel: "Open my orders",
			CTARoute: "/orders",
			Footer:   Footer,
		},
	},
	{
		Key: "milestone_ten_quotes",
		Content: render.Content{
			Subject: "10 quotes sent",
			Body: `Nice work {{first_name}},

You've sent ten quotes. Bakers at this stage often add [seasonal flavours]({{base_url}}/calculator) to lift their average order.`,
			CTALabel: "Review my quotes",
			CTARoute: "/quotes",
			Footer:   Footer,
		},
	},
	{
		Key: "partner_invite",
		Content: render.Content{
			Subject: "Earn commission by referring other bakers",
			Body: `Hi {{first_name}},

Know another baker who'd love Bakery HQ? Share your partner link and earn commission on every subscription they start.

Read the [programme terms]({{base_url}}/partners/terms) before you share.`,
			CTALabel: "Join the partner programme",
			CTARoute: "/partners",
			Footer:   Footer,
		},
	},
	{
		Key: "partner_commission_earned",
		Content: render.Content{
			Subject: "You earned a referral commission",
			Body: `Hi {{first_name}},

A baker you referred just paid for their subscription, so a commission has been added to your ledger. Payouts are made monthly to the account on your [payments settings]({{base_url}}/settings/payments).`,
			CTALabel: "See my commissions",
			CTARoute: "/partners/commissions",
			Footer:   Footer,
		},
	},
}

func StaticEmails() []StaticEmail {
	out := make([]StaticEmail, len(staticEmails))
	copy(out, staticEmails)
	return out
}
