package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"news-reader/internal/views"
)

func renderTabs(defs []views.Definition, active, width int) string {
	var parts []string
	for i, d := range defs {
		label := fmt.Sprintf("%d %s", i+1, d.Title)
		if i == active {
			parts = append(parts, tabActiveStyle.Render(label))
		} else {
			parts = append(parts, tabInactiveStyle.Render(label))
		}
	}

	var row string
	for i, part := range parts {
		candidate := row
		if i > 0 {
			candidate += " "
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}
	return row
}

// renderSelector shows the view's choices with the current one bracketed.
func renderSelector(s views.State) string {
	if len(s.Def.Choices) == 0 {
		return ""
	}
	labels := make([]string, len(s.Def.Choices))
	for i, c := range s.Def.Choices {
		if i == s.Query.Choice {
			labels[i] = itemSelectedStyle.Render("[" + c.Label + "]")
		} else {
			labels[i] = headerDimStyle.Render(c.Label)
		}
	}
	return " " + strings.Join(labels, " ")
}

func pagerLabel(s views.State) string {
	switch s.Def.Paging {
	case views.PagingPages:
		label := fmt.Sprintf("page %d", s.Query.Page)
		if s.HasPrev {
			label = "p ← " + label
		}
		if s.HasNext {
			label += " → n"
		}
		return label
	case views.PagingLoadMore:
		if s.HasMore {
			return "m load more"
		}
	}
	return ""
}

func renderStatusBar(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 0 {
		gap = 0
	}
	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
