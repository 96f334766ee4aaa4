// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize wraps bluemonday policies for the two kinds of
// user-entered text this app stores: report fields and internal notes are
// kept as plain text (Strip), while richer surfaces can render a limited
// safe subset (Sanitize).
package htmlsanitize

import (
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicy    = buildUGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// buildUGCPolicy extends bluemonday's UGC policy with class and style
// attributes on table elements, which the standard policy drops.
func buildUGCPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class", "style").OnElements("table", "thead", "tbody", "tr", "td", "th")
	return p
}

// Sanitize removes dangerous HTML (scripts, event handlers, javascript:
// URLs) while keeping the common formatting subset the UGC policy allows.
func Sanitize(s string) string {
	return ugcPolicy.Sanitize(s)
}

// SanitizeToHTML sanitizes and returns template.HTML so the result can be
// rendered without further escaping.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// Strip removes all HTML markup, returning plain text. Used for report
// titles, descriptions, addresses, and internal note content, which are
// never rendered as HTML.
func Strip(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}

// IsPlainText reports whether s contains no HTML tags. A lone < or >
// (comparison operators in prose) does not count as markup.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}

// PlainTextToHTML converts plain text to a minimal HTML rendering:
// entities escaped, newlines converted to <br>, the whole wrapped in <p>.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := template.HTMLEscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return "<p>" + escaped + "</p>"
}

// PrepareForDisplay renders stored user text for an HTML surface: plain
// text is escaped and paragraph-wrapped, anything containing markup is
// sanitized.
func PrepareForDisplay(s string) template.HTML {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return template.HTML(PlainTextToHTML(s))
	}
	return SanitizeToHTML(s)
}
