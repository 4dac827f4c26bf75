// Package render turns token-bearing template copy into deliverable email
// subject, HTML and plaintext. Nothing in this package returns an error:
// malformed input degrades to imperfect formatting, never to a failed send.
package render

import (
	"html"
	"sort"
	"strings"

	"github.com/unclebandit/lifecycle-messaging/internal/model"
)

// Supported tokens. Anything else in {{...}} is left untouched so typos show up in previews.
const (
	TokenFirstName      = "first_name"
	TokenBusinessName   = "business_name"
	TokenShareURL       = "share_url"
	TokenDashboardURL   = "dashboard_url"
	TokenLoginURL       = "login_url"
	TokenUnsubscribeURL = "unsubscribe_url"
	TokenCTAURL         = "cta_url"
	TokenBaseURL        = "base_url"
)

var SupportedTokens = []string{
	TokenFirstName,
	TokenBusinessName,
	TokenShareURL,
	TokenDashboardURL,
	TokenLoginURL,
	TokenUnsubscribeURL,
	TokenCTAURL,
	TokenBaseURL,
}

// Placeholder returns the delimited form of a token, e.g. {{first_name}}.
func Placeholder(token string) string {
	return "{{" + token + "}}"
}

// standIn is the form a token takes while copy is compiled. It is plain text to the
// markup compiler and a relative path to the sanitiser, so it comes out unchanged.
func standIn(token string) string {
	return "lmtoken_" + token + "_"
}

var standIns = func() map[string]string {
	m := make(map[string]string, len(SupportedTokens))
	for _, tok := range SupportedTokens {
		m[tok] = standIn(tok)
	}
	return m
}()

// Tokens is the personalisation data for one tenant.
type Tokens struct {
	FirstName      string
	BusinessName   string
	ShareURL       string
	DashboardURL   string
	LoginURL       string
	UnsubscribeURL string
	CTAURL         string
	BaseURL        string
}

// NewTokens builds the token set for a tenant against the canonical base URL.
func NewTokens(baseURL string, t *model.Tenant) Tokens {
	baseURL = strings.TrimRight(baseURL, "/")
	firstName := strings.TrimSpace(t.FirstName)
	if firstName == "" {
		firstName = "there"
	}
	business := strings.TrimSpace(t.BusinessName)
	if business == "" {
		business = "your bakery"
	}
	return Tokens{
		FirstName:      firstName,
		BusinessName:   business,
		ShareURL:       baseURL + "/b/" + t.Slug,
		DashboardURL:   baseURL + "/dashboard",
		LoginURL:       baseURL + "/login",
		UnsubscribeURL: baseURL + "/settings/notifications",
		CTAURL:         baseURL + "/dashboard",
		BaseURL:        baseURL,
	}
}

// WithCTA returns a copy pointing the call-to-action at route on the same base URL.
func (t Tokens) WithCTA(route string) Tokens {
	if route == "" {
		route = "/dashboard"
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	t.CTAURL = t.BaseURL + route
	return t
}

func (t Tokens) Map() map[string]string {
	return map[string]string{
		TokenFirstName:      t.FirstName,
		TokenBusinessName:   t.BusinessName,
		TokenShareURL:       t.ShareURL,
		TokenDashboardURL:   t.DashboardURL,
		TokenLoginURL:       t.LoginURL,
		TokenUnsubscribeURL: t.UnsubscribeURL,
		TokenCTAURL:         t.CTAURL,
		TokenBaseURL:        t.BaseURL,
	}
}

// Render substitutes every {{token}} found in values. Substitution is a single pass,
// so a value that itself contains a placeholder is emitted literally.
func Render(body string, values map[string]string) string {
	if body == "" || len(values) == 0 {
		return body
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, Placeholder(k), values[k])
	}
	return strings.NewReplacer(pairs...).Replace(body)
}

// RenderHTML substitutes tokens into HTML with every value escaped, so tenant data is
// always text. Both {{token}} and the compiled stand-in form are replaced.
func RenderHTML(src string, values map[string]string) string {
	if src == "" || len(values) == 0 {
		return src
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*4)
	for _, k := range keys {
		v := html.EscapeString(values[k])
		pairs = append(pairs, Placeholder(k), v, standIn(k), v)
	}
	return strings.NewReplacer(pairs...).Replace(src)
}
