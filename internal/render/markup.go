package render

import (
	"html"
	"regexp"
	"strings"
)

var (
	htmlTagPattern = regexp.MustCompile(`(?i)</?(p|br|div|span|a|strong|b|em|i|u|ul|ol|li|h[1-6]|table|tr|td|img|hr|blockquote)\b[^>]*>`)
	linkPattern    = regexp.MustCompile(`\[([^\]]+)\]\(((?:https?://|mailto:|\{\{|lmtoken_)[^)\s]+)\)`)
	boldPattern    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	blankLines     = regexp.MustCompile(`\n[ \t]*\n`)
)

// LooksLikeHTML reports whether operator copy already contains HTML tags.
func LooksLikeHTML(s string) bool {
	return htmlTagPattern.MatchString(s)
}

// Compile converts operator-authored copy into email-safe HTML. HTML input is
// sanitised; anything else is treated as the lightweight markup below:
//
//	# Heading / ## Subheading / ### Minor heading
//	- list item (also * and •)
//	**bold** and [label](https://...)
//
// Blocks are separated by blank lines; single newlines inside a paragraph become <br>.
func Compile(src string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = "<p>" + html.EscapeString(src) + "</p>"
		}
	}()

	src = strings.ReplaceAll(src, "\r\n", "\n")
	if strings.TrimSpace(src) == "" {
		return ""
	}
	if LooksLikeHTML(src) {
		return InjectStyles(Sanitize(src))
	}

	var b strings.Builder
	for _, block := range blankLines.Split(strings.TrimSpace(src), -1) {
		compileBlock(&b, block)
	}
	return InjectStyles(b.String())
}

func compileBlock(b *strings.Builder, block string) {
	var para []string
	var items []string

	flushPara := func() {
		if len(para) > 0 {
			b.WriteString("<p>" + strings.Join(para, "<br>") + "</p>\n")
			para = nil
		}
	}
	flushList := func() {
		if len(items) > 0 {
			b.WriteString("<ul>")
			for _, item := range items {
				b.WriteString("<li>" + item + "</li>")
			}
			b.WriteString("</ul>\n")
			items = nil
		}
	}

	for _, raw := range strings.Split(block, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if level, text, ok := heading(line); ok {
			flushPara()
			flushList()
			b.WriteString("<h" + level + ">" + inline(text) + "</h" + level + ">\n")
			continue
		}
		if item, ok := listItem(line); ok {
			flushPara()
			items = append(items, inline(item))
			continue
		}
		flushList()
		para = append(para, inline(line))
	}
	flushPara()
	flushList()
}

func heading(line string) (level, text string, ok bool) {
	for _, prefix := range []string{"### ", "## ", "# "} {
		if strings.HasPrefix(line, prefix) {
			return string(rune('0' + len(prefix) - 1)), strings.TrimSpace(line[len(prefix):]), true
		}
	}
	return "", "", false
}

func listItem(line string) (string, bool) {
	for _, prefix := range []string{"- ", "* ", "• ", "•"} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
		}
	}
	return "", false
}

// inline escapes text and then applies the bold and link shorthands.
func inline(text string) string {
	escaped := html.EscapeString(text)
	escaped = boldPattern.ReplaceAllString(escaped, "<strong>$1</strong>")
	return linkPattern.ReplaceAllStringFunc(escaped, func(m string) string {
		parts := linkPattern.FindStringSubmatch(m)
		return `<a href="` + parts[2] + `">` + parts[1] + `</a>`
	})
}

// StripMarkup is the light-touch plaintext companion for markup copy.
func StripMarkup(src string) string {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	if LooksLikeHTML(src) {
		return HTMLToText(src)
	}
	lines := strings.Split(src, "\n")
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if _, text, ok := heading(line); ok {
			line = text
		} else if item, ok := listItem(line); ok {
			line = "- " + item
		}
		line = boldPattern.ReplaceAllString(line, "$1")
		line = linkPattern.ReplaceAllString(line, "$1 ($2)")
		lines[i] = line
	}
	return collapseBlankLines(strings.Join(lines, "\n"))
}
