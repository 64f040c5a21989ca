package tui

import (
	"fmt"
	"strings"
	"time"

	"news-reader/internal/article"
	"news-reader/internal/render"
)

func relativeTime(publishedAt string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, publishedAt)
	if err != nil {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

func renderListItem(a article.Article, selected, saved bool, width int, now time.Time) string {
	if width < 10 {
		width = 30
	}

	mark := "  "
	if saved {
		mark = markStyle.Render("★ ")
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + render.Truncate(a.Title, width-6))
	} else {
		title = itemTitleStyle.Render("  " + render.Truncate(a.Title, width-6))
	}

	meta := "  " + itemSourceStyle.Render(a.SourceName())
	if rel := relativeTime(a.PublishedAt, now); rel != "" {
		meta += " " + itemTimeStyle.Render("· "+rel)
	}

	return mark + title + "\n  " + meta
}

func renderList(articles []article.Article, cursor int, saved func(string) bool, height, width int, now time.Time) string {
	if len(articles) == 0 {
		return center("No articles found", width, height)
	}

	// Each item is 2 lines + 1 blank line
	itemHeight := 3
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}

	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(articles) {
		end = len(articles)
		start = max(0, end-visible)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(articles[i], i == cursor, saved(articles[i].URL), width, now))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func center(s string, width, height int) string {
	pad := (width - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}
