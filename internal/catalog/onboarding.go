// Package catalog holds the email copy that ships with the code: the seven-day
// onboarding sequence, transactional product emails and the default retention copy
// used to seed the template table.
package catalog

import (
	"fmt"

	"github.com/unclebandit/lifecycle-messaging/internal/render"
)

const (
	FirstOnboardingDay = 0
	LastOnboardingDay  = 6
	// BranchDay is the only day whose copy depends on the processor-connected flag.
	BranchDay = 4
)

type OnboardingTemplate struct {
	Key      string
	Day      int
	Subject  string
	Body     string
	CTALabel string
	CTARoute string
}

func (t OnboardingTemplate) Content() render.Content {
	return render.Content{
		Subject:  t.Subject,
		Body:     t.Body,
		CTALabel: t.CTALabel,
		CTARoute: t.CTARoute,
		Footer:   Footer,
	}
}

var linearDays = map[int]OnboardingTemplate{
	0: {
		Key:     "day_0_welcome",
		Day:     0,
		Subject: "Welcome to Bakery HQ, {{first_name}}!",
		Body: `Hi {{first_name}},

Thanks for setting up {{business_name}} with us. Over the next week we'll send you one short note a day to help you take your first order.

## Your first three steps
- Set your prices in the quote calculator
- Share your order page with customers
- Connect payouts so deposits land in your account

You can always pick up where you left off from your [dashboard]({{dashboard_url}}).`,
		CTALabel: "Go to my dashboard",
		CTARoute: "/dashboard",
	},
	1: {
		Key:     "day_1_calculator",
		Day:     1,
		Subject: "Set your prices in 5 minutes",
		Body: `Hi {{first_name}},

The quote calculator works out a price every time a customer asks for a cake, based on your flavours, sizes and add-ons.

Bakers who configure it on day one send their first quote twice as fast.`,
		CTALabel: "Configure my calculator",
		CTARoute: "/calculator",
	},
	2: {
		Key:     "day_2_share",
		Day:     2,
		Subject: "Your order page is ready to share",
		Body: `Hi {{first_name}},

{{business_name}} has its own order page: {{share_url}}

## Where to put it
- Your Instagram bio
- Your Facebook page
- Replies to customers who message you for prices`,
		CTALabel: "Copy my link",
		CTARoute: "/dashboard",
	},
	3: {
		Key:     "day_3_leads",
		Day:     3,
		Subject: "Every enquiry in one place",
		Body: `Hi {{first_name}},

When a customer fills in your order page, the request shows up under **Leads** with everything you need to quote: date, servings, flavours and photos.

Turn a lead into a quote with one click.`,
		CTALabel: "See my leads",
		CTARoute: "/leads",
	},
	5: {
		Key:     "day_5_orders",
		Day:     5,
		Subject: "From quote to order without the back-and-forth",
		Body: `Hi {{first_name}},

When a customer accepts a quote it becomes an order automatically, with the deposit and balance tracked for you.

Check your [orders]({{base_url}}/orders) to see what's coming up this week.`,
		CTALabel: "View my orders",
		CTARoute: "/orders",
	},
	6: {
		Key:     "day_6_checkin",
		Day:     6,
		Subject: "How's your first week going, {{first_name}}?",
		Body: `Hi {{first_name}},

It's been a week since you opened {{business_name}} on Bakery HQ. Reply to this email if anything has been confusing, we read every message.

Our [help centre]({{base_url}}/help) covers pricing, deposits and delivery fees.`,
		CTALabel: "Log in",
		CTARoute: "/login",
	},
}

var branchDay = map[bool]OnboardingTemplate{
	true: {
		Key:     "day_4_payments_live",
		Day:     BranchDay,
		Subject: "You're ready to take deposits, {{first_name}}",
		Body: `Hi {{first_name}},

Payouts are switched on for {{business_name}}. Customers can now pay a deposit the moment they accept a quote, and the money goes straight to your bank account.

Send a quote today to see it in action.`,
		CTALabel: "Send a quote",
		CTARoute: "/quotes/new",
	},
	false: {
		Key:     "day_4_connect_payments",
		Day:     BranchDay,
		Subject: "Get paid faster: connect payouts",
		Body: `Hi {{first_name}},

You haven't connected payouts yet. Once you do, customers can pay a deposit when they accept a quote and you stop chasing bank transfers.

## It takes about 3 minutes
- Confirm your business details
- Add the bank account for payouts`,
		CTALabel: "Connect payouts",
		CTARoute: "/settings/payments",
	},
}

// Onboarding returns the template for a day bucket. Only BranchDay consults processorConnected.
func Onboarding(day int, processorConnected bool) (OnboardingTemplate, error) {
	if day == BranchDay {
		return branchDay[processorConnected], nil
	}
	t, ok := linearDays[day]
	if !ok {
		return OnboardingTemplate{}, fmt.Errorf("no onboarding template for day %d", day)
	}
	return t, nil
}

// OnboardingVariants lists every (day, processor-connected) variant, in day order.
func OnboardingVariants() []OnboardingTemplate {
	var out []OnboardingTemplate
	for day := FirstOnboardingDay; day <= LastOnboardingDay; day++ {
		if day == BranchDay {
			out = append(out, branchDay[false], branchDay[true])
			continue
		}
		out = append(out, linearDays[day])
	}
	return out
}
