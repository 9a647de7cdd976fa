package mail

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// Alert kinds used in subjects and headers.
const (
	KindDaily   = "daily"
	KindChange  = "change"
	KindInstant = "instant"
)

// aqiCategory labels and colors for the 1..5 index.
var aqiCategories = map[int]struct {
	Label string
	Color string
}{
	1: {"Good", "#2ecc71"},
	2: {"Fair", "#a3d977"},
	3: {"Moderate", "#f1c40f"},
	4: {"Poor", "#e67e22"},
	5: {"Very Poor", "#e74c3c"},
}

// Category returns the human label for an AQI value.
func Category(aqi int) string {
	if c, ok := aqiCategories[aqi]; ok {
		return c.Label
	}
	return "Moderate"
}

// Subject builds the alert subject line for a kind and city.
func Subject(kind, city string, aqi int) string {
	switch kind {
	case KindChange:
		return fmt.Sprintf("Air quality changed in %s: now %s", city, Category(aqi))
	case KindInstant:
		return fmt.Sprintf("Air quality right now in %s: %s", city, Category(aqi))
	default:
		return fmt.Sprintf("Your daily air quality update for %s: %s", city, Category(aqi))
	}
}

// RenderAlert builds the HTML body for an alert email. insight may be
// empty; recommendations may be nil.
func RenderAlert(name, city string, aqi int, recommendations []string, insight string) string {
	cat, ok := aqiCategories[aqi]
	if !ok {
		cat = aqiCategories[3]
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><body style=\"font-family:Arial,sans-serif;color:#333;max-width:600px;margin:0 auto\">")
	fmt.Fprintf(&b, "<h2>Hello %s,</h2>", html.EscapeString(name))
	fmt.Fprintf(&b,
		"<div style=\"background:%s;color:#fff;padding:16px;border-radius:8px\"><strong>%s</strong> &mdash; air quality index %d of 5 in %s</div>",
		cat.Color, cat.Label, aqi, html.EscapeString(city))

	if insight != "" {
		b.WriteString("<div style=\"margin-top:16px\">")
		b.WriteString(markdownLite(insight))
		b.WriteString("</div>")
	}

	if len(recommendations) > 0 {
		b.WriteString("<h3>Recommendations</h3><ul>")
		for _, rec := range recommendations {
			fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(rec))
		}
		b.WriteString("</ul>")
	}

	b.WriteString("<p style=\"color:#999;font-size:12px;margin-top:24px\">You receive this because of your aircast alert preferences.</p>")
	b.WriteString("</body></html>")
	return b.String()
}

var (
	reBold   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	reItalic = regexp.MustCompile(`\*([^*]+)\*`)
	reCode   = regexp.MustCompile("`([^`]+)`")
)

// markdownLite converts the small markdown subset the AI providers
// emit (bold, italic, code, dashed lists, newlines) into HTML. Input
// is escaped first so provider text can't inject markup.
func markdownLite(text string) string {
	escaped := html.EscapeString(text)
	escaped = reBold.ReplaceAllString(escaped, "<strong>$1</strong>")
	escaped = reItalic.ReplaceAllString(escaped, "<em>$1</em>")
	escaped = reCode.ReplaceAllString(escaped, "<code>$1</code>")

	lines := strings.Split(escaped, "\n")
	var b strings.Builder
	inList := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			if !inList {
				b.WriteString("<ul>")
				inList = true
			}
			b.WriteString("<li>" + strings.TrimSpace(trimmed[2:]) + "</li>")
			continue
		}
		if inList {
			b.WriteString("</ul>")
			inList = false
		}
		if trimmed == "" {
			continue
		}
		b.WriteString("<p>" + trimmed + "</p>")
	}
	if inList {
		b.WriteString("</ul>")
	}
	return b.String()
}
