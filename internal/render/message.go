package render

import (
	"html"
	"strings"
)

// Message is a fully rendered email ready for delivery.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

// Content is template copy before personalisation.
type Content struct {
	Subject  string
	Body     string // markup or HTML
	Text     string // optional hand-written plaintext; derived from Body when empty
	CTALabel string
	CTARoute string
	Footer   string // HTML, tokens allowed
}

// Build compiles content and personalises it into a deliverable message. Copy is compiled
// before tenant values go in, and HTML only ever receives those values escaped.
func Build(c Content, tokens Tokens) Message {
	tokens = tokens.WithCTA(c.CTARoute)
	values := tokens.Map()

	body := RenderHTML(Compile(Render(c.Body, standIns)), values)
	footer := RenderHTML(c.Footer, values)

	text := strings.TrimSpace(Render(c.Text, values))
	if text == "" {
		text = HTMLToText(body)
	}
	if c.CTALabel != "" {
		text += "\n\n" + c.CTALabel + ": " + tokens.CTAURL
	}
	if footer != "" {
		text += "\n\n--\n" + HTMLToText(footer)
	}

	return Message{
		Subject: singleLine(Render(c.Subject, values)),
		HTML:    Layout(body, c.CTALabel, tokens.CTAURL, footer),
		Text:    text,
	}
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Layout wraps a compiled body in the shared email shell.
func Layout(body, ctaLabel, ctaURL, footer string) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><body style="margin:0;padding:0;background:#f8f9fa;">`)
	b.WriteString(`<table role="presentation" width="100%" cellpadding="0" cellspacing="0"><tr><td align="center" style="padding:24px 12px;">`)
	b.WriteString(`<table role="presentation" width="600" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:8px;font-family:Helvetica,Arial,sans-serif;"><tr><td style="padding:32px;">`)
	b.WriteString(body)
	if ctaLabel != "" && ctaURL != "" {
		b.WriteString(`<p style="margin:24px 0;"><a href="` + html.EscapeString(ctaURL) + `" style="background:#d9480f;color:#ffffff;padding:12px 24px;border-radius:6px;text-decoration:none;font-weight:bold;display:inline-block;">`)
		b.WriteString(html.EscapeString(ctaLabel))
		b.WriteString(`</a></p>`)
	}
	b.WriteString(`</td></tr></table>`)
	if footer != "" {
		b.WriteString(`<div style="max-width:600px;padding:16px;font-family:Helvetica,Arial,sans-serif;font-size:12px;line-height:18px;color:#868e96;">`)
		b.WriteString(footer)
		b.WriteString(`</div>`)
	}
	b.WriteString(`</td></tr></table></body></html>`)
	return b.String()
}
