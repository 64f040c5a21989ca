// Package render turns article fields into display text.
package render

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"news-reader/internal/article"
)

// PlainText strips markup from s and normalizes whitespace.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Byline returns "By <author> | <date>", with "Unknown" for a missing author.
func Byline(a article.Article) string {
	author := strings.TrimSpace(a.Author)
	if author == "" {
		author = "Unknown"
	}
	return "By " + author + " | " + a.PublishedDate()
}

// Truncate shortens s to n runes, ending with "..." when cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
