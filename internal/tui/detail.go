package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"news-reader/internal/article"
	"news-reader/internal/preview"
	"news-reader/internal/render"
)

func renderDetail(a *article.Article, meta *preview.Meta, saved bool, width, height int) string {
	if a == nil {
		return center("Select an article", width, height)
	}

	contentWidth := max(width-2, 10)

	title := a.Title
	if saved {
		title = "★ " + title
	}
	parts := []string{
		detailTitleStyle.Width(contentWidth).Render(title),
		detailBylineStyle.Render(render.Byline(*a)),
	}
	if name := a.SourceName(); name != "" {
		parts = append(parts, itemSourceStyle.Render(name))
	}

	desc := render.PlainText(a.Description)
	if desc == "" && meta != nil {
		desc = meta.Description
	}
	if desc == "" {
		desc = "(No description available)"
	}
	parts = append(parts, "", detailBodyStyle.Width(contentWidth).Render(wrapText(desc, contentWidth)))

	if content := render.PlainText(a.Content); content != "" {
		parts = append(parts, "", detailBodyStyle.Width(contentWidth).Render(wrapText(content, contentWidth)))
	}

	image := a.URLToImage
	if image == "" && meta != nil {
		image = meta.Image
	}
	if image != "" {
		parts = append(parts, detailLinkStyle.Width(contentWidth).Render("Image: "+image))
	}
	parts = append(parts, detailLinkStyle.Width(contentWidth).Render("Read more: "+a.URL))

	lines := strings.Split(lipgloss.JoinVertical(lipgloss.Left, parts...), "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
