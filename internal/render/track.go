package render

import (
	"html"
	"net/url"
	"strings"
)

func OpenURL(baseURL, trackingID string) string {
	return strings.TrimRight(baseURL, "/") + "/t/o/" + trackingID
}

// ClickURL records a click on trackingID and then redirects to target.
func ClickURL(baseURL, trackingID, target string) string {
	return strings.TrimRight(baseURL, "/") + "/t/c/" + trackingID + "?u=" + url.QueryEscape(target)
}

// Tracked builds c for tokens and applies open and click tracking under trackingID.
// It is the exact form a retention email is delivered in.
func Tracked(c Content, tokens Tokens, trackingID string) Message {
	ctaURL := tokens.WithCTA(c.CTARoute).CTAURL
	return Track(Build(c, tokens), ctaURL,
		ClickURL(tokens.BaseURL, trackingID, ctaURL), OpenURL(tokens.BaseURL, trackingID))
}

// Track points the call-to-action button at clickURL and appends an open pixel.
// Links other than the CTA are left as they are.
func Track(m Message, ctaURL, clickURL, pixelURL string) Message {
	if ctaURL != "" && clickURL != "" {
		m.HTML = strings.ReplaceAll(m.HTML,
			`href="`+html.EscapeString(ctaURL)+`"`,
			`href="`+html.EscapeString(clickURL)+`"`)
	}
	if pixelURL != "" {
		pixel := `<img src="` + html.EscapeString(pixelURL) + `" width="1" height="1" alt="" style="display:block;border:0;">`
		if i := strings.LastIndex(m.HTML, "</body>"); i >= 0 {
			m.HTML = m.HTML[:i] + pixel + m.HTML[i:]
		} else {
			m.HTML += pixel
		}
	}
	return m
}
