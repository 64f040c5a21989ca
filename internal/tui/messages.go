package tui

import (
	"news-reader/internal/article"
	"news-reader/internal/preview"
	"news-reader/internal/views"
)

type fetchedMsg struct {
	kind views.Kind
	gen  uint64
	resp *article.Response
	err  error
}

type previewMsg struct {
	url  string
	meta preview.Meta
	err  error
}

type toastExpiredMsg struct {
	seq int
}

type statusMsg struct {
	text string
}

type errMsg struct {
	err error
}
