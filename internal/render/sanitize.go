package render

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "div", "span", "strong", "b", "em", "i", "u",
		"ul", "ol", "li", "h1", "h2", "h3", "blockquote", "hr",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("style").Matching(regexp.MustCompile(`^[a-zA-Z0-9\s:;#%,.()'"-]*$`)).Globally()
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireParseableURLs(true)
	// Token placeholders are relative as far as the URL parser is concerned.
	p.AllowRelativeURLs(true)
	return p
}

// Sanitize keeps only the allow-listed structural and inline tags, href and style attributes,
// and http(s)/mailto links.
func Sanitize(src string) string {
	return policy.Sanitize(src)
}

// inlineStyles are applied to each tag so the output survives clients that strip <style> blocks.
var inlineStyles = map[string]string{
	"p":          "margin:0 0 16px;font-size:16px;line-height:24px;color:#333333;",
	"h1":         "margin:0 0 16px;font-size:24px;line-height:32px;color:#1f1f1f;",
	"h2":         "margin:0 0 12px;font-size:20px;line-height:28px;color:#1f1f1f;",
	"h3":         "margin:0 0 8px;font-size:17px;line-height:24px;color:#1f1f1f;",
	"ul":         "margin:0 0 16px;padding-left:20px;",
	"ol":         "margin:0 0 16px;padding-left:20px;",
	"li":         "margin:0 0 8px;font-size:16px;line-height:24px;color:#333333;",
	"a":          "color:#d9480f;text-decoration:underline;",
	"blockquote": "margin:0 0 16px;padding-left:12px;border-left:3px solid #e9ecef;color:#555555;",
	"hr":         "border:none;border-top:1px solid #e9ecef;margin:24px 0;",
}

// InjectStyles merges the default inline style for each known tag with any style the author set.
// Author declarations come last so they win.
func InjectStyles(src string) string {
	z := html.NewTokenizer(strings.NewReader(src))
	var b strings.Builder
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			style, ok := inlineStyles[tok.Data]
			if !ok {
				b.WriteString(tok.String())
				continue
			}
			merged := false
			for i, attr := range tok.Attr {
				if attr.Key == "style" {
					tok.Attr[i].Val = style + attr.Val
					merged = true
				}
			}
			if !merged {
				tok.Attr = append(tok.Attr, html.Attribute{Key: "style", Val: style})
			}
			b.WriteString(tok.String())
		default:
			b.Write(z.Raw())
		}
	}
}
