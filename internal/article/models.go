package article

import "strings"

// Source identifies the publisher of an article.
type Source struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Article represents a single news article as returned by the headlines API.
// URL is the identity key used for bookmarks.
type Article struct {
	Source      *Source `json:"source,omitempty"`
	Author      string  `json:"author,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	URL         string  `json:"url"`
	URLToImage  string  `json:"urlToImage,omitempty"`
	PublishedAt string  `json:"publishedAt,omitempty"`
	Content     string  `json:"content,omitempty"`
}

// Response represents the headlines API response body.
type Response struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
	Code         string    `json:"code,omitempty"`
	Message      string    `json:"message,omitempty"`
}

// OK reports whether the upstream marked the response successful.
func (r *Response) OK() bool {
	return r != nil && r.Status == "ok"
}

// PublishedDate returns the date part of PublishedAt.
func (a Article) PublishedDate() string {
	if len(a.PublishedAt) < 10 {
		return a.PublishedAt
	}
	return a.PublishedAt[:10]
}

// SourceName returns the publisher name or an empty string.
func (a Article) SourceName() string {
	if a.Source == nil {
		return ""
	}
	return a.Source.Name
}

// Filter returns the articles whose title or description contains term,
// ignoring case. A blank term returns the input unchanged.
func Filter(articles []Article, term string) []Article {
	term = strings.TrimSpace(term)
	if term == "" {
		return articles
	}
	needle := strings.ToLower(term)
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		if strings.Contains(strings.ToLower(a.Title), needle) ||
			strings.Contains(strings.ToLower(a.Description), needle) {
			out = append(out, a)
		}
	}
	return out
}
