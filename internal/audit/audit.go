// Package audit renders every lifecycle email against the canonical base URL and
// checks that each embedded link points at the canonical host and a known route.
package audit

import (
	"fmt"
	"html"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/unclebandit/lifecycle-messaging/internal/catalog"
	"github.com/unclebandit/lifecycle-messaging/internal/model"
	"github.com/unclebandit/lifecycle-messaging/internal/render"
)

var urlPattern = regexp.MustCompile(`https?://[^\s"'<>()]+`)

// sampleTrackingID stands in for the per-send token retention emails are tracked under.
const sampleTrackingID = "00000000-0000-4000-8000-000000000000"

// sampleTenant fills every token so no placeholder survives rendering.
var sampleTenant = model.Tenant{
	ID:           1,
	Email:        "audit@example.com",
	FirstName:    "Audit",
	BusinessName: "Audit Bakery",
	Slug:         "audit-bakery",
	Role:         model.RoleBaker,
}

type URLCheck struct {
	URL    string `json:"url"`
	Host   string `json:"host"`
	Path   string `json:"path"`
	HostOK bool   `json:"host_ok"`
	PathOK bool   `json:"path_ok"`
}

func (c URLCheck) OK() bool {
	return c.HostOK && c.PathOK
}

type TemplateReport struct {
	Template string     `json:"template"`
	Subject  string     `json:"subject"`
	URLs     []URLCheck `json:"urls"`
}

func (t TemplateReport) Failed() bool {
	for _, u := range t.URLs {
		if !u.OK() {
			return true
		}
	}
	return false
}

type Report struct {
	BaseURL   string           `json:"base_url"`
	Templates []TemplateReport `json:"templates"`
}

func (r Report) Failed() bool {
	return len(r.Failures()) > 0
}

func (r Report) Failures() []TemplateReport {
	var out []TemplateReport
	for _, t := range r.Templates {
		if t.Failed() {
			out = append(out, t)
		}
	}
	return out
}

type Auditor struct {
	BaseURL string
	Routes  *Routes
	host    string
}

func NewAuditor(baseURL string, routes *Routes) (*Auditor, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("base url %q must be an absolute http(s) URL", baseURL)
	}
	return &Auditor{BaseURL: u.String(), Routes: routes, host: u.Host}, nil
}

// Audit covers every onboarding variant, every static product email and the
// given retention templates in their tracked, as-delivered form.
func (a *Auditor) Audit(retention []model.RetentionTemplate) Report {
	report := Report{BaseURL: a.BaseURL}
	tokens := render.NewTokens(a.BaseURL, &sampleTenant)

	for _, tmpl := range catalog.OnboardingVariants() {
		report.Templates = append(report.Templates,
			a.Check("onboarding/"+tmpl.Key, render.Build(tmpl.Content(), tokens)))
	}
	for _, email := range catalog.StaticEmails() {
		report.Templates = append(report.Templates,
			a.Check("product/"+email.Key, render.Build(email.Content, tokens)))
	}
	for i := range retention {
		tmpl := &retention[i]
		name := fmt.Sprintf("retention/%d-%s", tmpl.ID, tmpl.Segment)
		report.Templates = append(report.Templates,
			a.Check(name, render.Tracked(catalog.RetentionContent(tmpl), tokens, sampleTrackingID)))
	}
	return report
}

// Check verifies every absolute URL found in the message's HTML and text bodies.
// The target of a click-tracking redirect is checked as a URL of its own.
func (a *Auditor) Check(name string, msg render.Message) TemplateReport {
	report := TemplateReport{Template: name, Subject: msg.Subject}
	urls := ExtractURLs(msg.HTML + "\n" + msg.Text)
	seen := make(map[string]bool, len(urls))
	for _, raw := range urls {
		seen[raw] = true
	}
	for i := 0; i < len(urls); i++ {
		check := URLCheck{URL: urls[i]}
		if u, err := url.Parse(urls[i]); err == nil {
			check.Host = u.Host
			check.Path = u.Path
			check.HostOK = u.Host == a.host
			check.PathOK = a.Routes.Allows(u.Path)
			if target := u.Query().Get("u"); strings.HasPrefix(u.Path, "/t/c/") && target != "" && !seen[target] {
				seen[target] = true
				urls = append(urls, target)
			}
		}
		report.URLs = append(report.URLs, check)
	}
	return report
}

// ExtractURLs returns the distinct absolute URLs in s, in order of appearance.
func ExtractURLs(s string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range urlPattern.FindAllString(s, -1) {
		m = strings.TrimRight(html.UnescapeString(m), ".,;:!?")
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// WriteText prints one line per template and indented detail for failing URLs.
func (r Report) WriteText(w io.Writer) {
	for _, t := range r.Templates {
		status := "ok"
		if t.Failed() {
			status = "FAIL"
		}
		fmt.Fprintf(w, "%-4s %s (%d links)\n", status, t.Template, len(t.URLs))
		for _, u := range t.URLs {
			if u.OK() {
				continue
			}
			fmt.Fprintf(w, "       %s host_ok=%t path_ok=%t\n", u.URL, u.HostOK, u.PathOK)
		}
	}
	fmt.Fprintf(w, "%d templates, %d failing\n", len(r.Templates), len(r.Failures()))
}
