package mdtable

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// [any text](https://target) markdown link, capturing the target.
	markdownLinkTarget = regexp.MustCompile(`\[[^\]]*\]\((https?://[^)\s]+)\)`)

	// bare URL token; stops at quotes and angle brackets so hrefs inside
	// raw HTML anchors are captured cleanly.
	bareURLPattern = regexp.MustCompile(`https?://[^\s"'<>)\]]+`)

	// [text](anything) markdown link, capturing the text.
	markdownLinkText = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)

	lineBreakPattern = regexp.MustCompile(`(?i)<br\s*/?>`)

	markupStripper = strings.NewReplacer("*", "", "_", "", "`", "", "#", "")
)

// urlHintWords mark cells whose whole text stands in for a URL when no
// parsable link is present ("Apply here", "Link").
var urlHintWords = []string{"apply", "link", "url"}

// ExtractURL pulls an application URL out of a table cell. Markdown link
// targets win over bare URL tokens; failing both, a cell that merely hints
// at being a link is returned whole. Returns empty when nothing matches.
func ExtractURL(cell string) string {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return ""
	}

	if m := markdownLinkTarget.FindStringSubmatch(cell); m != nil {
		return m[1]
	}
	if u := bareURLPattern.FindString(cell); u != "" {
		return u
	}

	lower := strings.ToLower(cell)
	for _, w := range urlHintWords {
		if strings.Contains(lower, w) {
			return cell
		}
	}
	return ""
}

// CleanCell strips HTML tags and markdown decoration from a cell, leaving
// plain text. Line breaks become ", " so multi-line cells stay readable on
// one line.
func CleanCell(cell string) string {
	cell = lineBreakPattern.ReplaceAllString(cell, ", ")

	if strings.Contains(cell, "<") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(cell)); err == nil {
			cell = doc.Text()
		}
	}

	cell = markdownLinkText.ReplaceAllString(cell, "$1")
	cell = markupStripper.Replace(cell)
	return strings.TrimSpace(cell)
}
