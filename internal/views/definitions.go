package views

import "news-reader/internal/headlines"

// Kind identifies a view.
type Kind string

const (
	Home      Kind = "home"
	Telugu    Kind = "telugu"
	World     Kind = "world"
	Tech      Kind = "tech"
	Sports    Kind = "sports"
	Bookmarks Kind = "bookmarks"
)

// Paging is how a view moves through result pages.
type Paging int

const (
	PagingNone Paging = iota
	// PagingPages replaces the list with the next or previous page.
	PagingPages
	// PagingLoadMore appends the next page to the list.
	PagingLoadMore
)

// Choice is one entry of a view's selector.
type Choice struct {
	Label string
	Value string
}

// Definition is the fixed configuration of a view. Each view owns its own
// choices; they are not shared between views.
type Definition struct {
	Kind     Kind
	Title    string
	Endpoint headlines.Endpoint
	PageSize int
	Paging   Paging

	// Fixed parameters sent on every request.
	Fixed headlines.Params

	// SelectorParam is the query parameter Choices set, if any.
	SelectorParam string
	Choices       []Choice
}

// Local reports whether the view reads only the bookmark store.
func (d Definition) Local() bool {
	return d.Kind == Bookmarks
}

// Definitions returns the views in navigation order. homePageSize sets the
// home page size.
func Definitions(homePageSize int) []Definition {
	if homePageSize <= 0 {
		homePageSize = 10
	}
	return []Definition{
		{
			Kind:          Home,
			Title:         "Top Headlines",
			Endpoint:      headlines.TopHeadlines,
			PageSize:      homePageSize,
			Paging:        PagingPages,
			Fixed:         headlines.Params{"country": "us"},
			SelectorParam: "category",
			Choices: []Choice{
				{"General", "general"},
				{"Business", "business"},
				{"Entertainment", "entertainment"},
				{"Health", "health"},
				{"Science", "science"},
				{"Technology", "technology"},
			},
		},
		{
			Kind:     Telugu,
			Title:    "Telugu States",
			Endpoint: headlines.Everything,
			PageSize: 20,
			Fixed: headlines.Params{
				"language": "en",
				"sortBy":   "publishedAt",
			},
			SelectorParam: "q",
			Choices: []Choice{
				{"Telangana", "Telangana OR Hyderabad"},
				{"Andhra Pradesh", "Andhra Pradesh OR Amaravati OR Visakhapatnam"},
			},
		},
		{
			Kind:          World,
			Title:         "World News",
			Endpoint:      headlines.TopHeadlines,
			PageSize:      20,
			SelectorParam: "country",
			Choices: []Choice{
				{"USA", "us"},
				{"UK", "gb"},
				{"Canada", "ca"},
				{"Australia", "au"},
				{"India", "in"},
				{"France", "fr"},
				{"Germany", "de"},
				{"Japan", "jp"},
			},
		},
		{
			Kind:     Tech,
			Title:    "Technology News",
			Endpoint: headlines.TopHeadlines,
			PageSize: 20,
			Fixed:    headlines.Params{"country": "us", "category": "technology"},
		},
		{
			Kind:     Sports,
			Title:    "Sports News",
			Endpoint: headlines.TopHeadlines,
			PageSize: 10,
			Paging:   PagingLoadMore,
			Fixed:    headlines.Params{"country": "us", "category": "sports"},
		},
		{
			Kind:  Bookmarks,
			Title: "Bookmarked Articles",
		},
	}
}
