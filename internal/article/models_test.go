package article

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter(t *testing.T) {
	articles := []Article{
		{URL: "a", Title: "Markets rally", Description: "Stocks climb"},
		{URL: "b", Title: "Weather", Description: "Storm hits the COAST"},
		{URL: "c", Title: "Sports roundup"},
	}

	tests := []struct {
		term string
		want []string
	}{
		{"", []string{"a", "b", "c"}},
		{"   ", []string{"a", "b", "c"}},
		{"rally", []string{"a"}},
		{"coast", []string{"b"}},
		{"STOCKS", []string{"a"}},
		{"o", []string{"a", "b", "c"}},
		{"nothing", []string{}},
	}
	for _, tt := range tests {
		got := Filter(articles, tt.term)
		urls := make([]string, 0, len(got))
		for _, a := range got {
			urls = append(urls, a.URL)
		}
		assert.Equal(t, tt.want, urls, "term %q", tt.term)
	}
}

func TestPublishedDate(t *testing.T) {
	assert.Equal(t, "2024-05-01", Article{PublishedAt: "2024-05-01T10:00:00Z"}.PublishedDate())
	assert.Equal(t, "2024", Article{PublishedAt: "2024"}.PublishedDate())
	assert.Equal(t, "", Article{}.PublishedDate())
}

func TestResponseOK(t *testing.T) {
	var nilResp *Response
	assert.False(t, nilResp.OK())
	assert.False(t, (&Response{Status: "error"}).OK())
	assert.True(t, (&Response{Status: "ok"}).OK())
}

func TestSourceName(t *testing.T) {
	assert.Equal(t, "", Article{}.SourceName())
	assert.Equal(t, "BBC", Article{Source: &Source{Name: "BBC"}}.SourceName())
}
