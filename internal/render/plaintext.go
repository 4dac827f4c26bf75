package render

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	manyNewlines   = regexp.MustCompile(`\n{3,}`)
	trailingSpaces = regexp.MustCompile(`[ \t]+\n`)
	leadingSpaces  = regexp.MustCompile(`\n[ \t]+`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

var blockTags = map[string]bool{
	"p": true, "div": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"ul": true, "ol": true, "blockquote": true, "table": true, "tr": true,
}

// HTMLToText strips tags, decodes entities, flattens list items to "- item" lines
// and appends link targets in parentheses.
func HTMLToText(src string) string {
	z := html.NewTokenizer(strings.NewReader(src))
	var b strings.Builder
	var hrefs []string
	skip := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return collapseBlankLines(b.String())
		case html.TextToken:
			if skip == 0 {
				b.WriteString(whitespaceRun.ReplaceAllString(string(z.Text()), " "))
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch {
			case tok.Data == "style" || tok.Data == "script" || tok.Data == "head":
				if tt == html.StartTagToken {
					skip++
				}
			case tok.Data == "br":
				b.WriteString("\n")
			case tok.Data == "hr":
				b.WriteString("\n---\n")
			case tok.Data == "li":
				b.WriteString("\n- ")
			case tok.Data == "a":
				href := ""
				for _, attr := range tok.Attr {
					if attr.Key == "href" {
						href = attr.Val
					}
				}
				hrefs = append(hrefs, href)
			case blockTags[tok.Data]:
				b.WriteString("\n\n")
			}
		case html.EndTagToken:
			tok := z.Token()
			switch {
			case tok.Data == "style" || tok.Data == "script" || tok.Data == "head":
				if skip > 0 {
					skip--
				}
			case tok.Data == "a":
				if n := len(hrefs); n > 0 {
					href := hrefs[n-1]
					hrefs = hrefs[:n-1]
					if href != "" && !strings.HasPrefix(href, "mailto:") {
						b.WriteString(" (" + href + ")")
					}
				}
			case blockTags[tok.Data]:
				b.WriteString("\n\n")
			}
		}
	}
}

func collapseBlankLines(s string) string {
	s = trailingSpaces.ReplaceAllString(s, "\n")
	s = leadingSpaces.ReplaceAllString(s, "\n")
	s = manyNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
