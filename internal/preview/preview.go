// Package preview scrapes an article page for the metadata shown in the
// reader's detail pane when the API gave no image.
package preview

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// ErrNoMeta is returned when the page carries none of the looked-for tags.
var ErrNoMeta = errors.New("no preview metadata found")

// Meta is the page metadata.
type Meta struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	SiteName    string `json:"site_name,omitempty"`
}

// Scraper fetches page metadata with colly.
type Scraper struct {
	timeout time.Duration
}

// NewScraper creates a scraper. A non-positive timeout uses 10s.
func NewScraper(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Scraper{timeout: timeout}
}

// Fetch visits pageURL and reads its Open Graph tags, falling back to the
// document title, meta description and the first article image.
func (s *Scraper) Fetch(ctx context.Context, pageURL string) (Meta, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return Meta{}, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Meta{}, fmt.Errorf("refusing to scrape URL with scheme %q (only http/https allowed)", u.Scheme)
	}

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.MaxDepth(1),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(s.timeout)

	meta := Meta{URL: pageURL}
	var scrapeErr error

	c.OnHTML("head", func(e *colly.HTMLElement) {
		meta.Title = first(
			e.ChildAttr(`meta[property="og:title"]`, "content"),
			e.ChildText("title"),
		)
		meta.Description = first(
			e.ChildAttr(`meta[property="og:description"]`, "content"),
			e.ChildAttr(`meta[name="description"]`, "content"),
		)
		meta.SiteName = e.ChildAttr(`meta[property="og:site_name"]`, "content")
		if img := first(
			e.ChildAttr(`meta[property="og:image"]`, "content"),
			e.ChildAttr(`meta[name="twitter:image"]`, "content"),
		); img != "" {
			meta.Image = e.Request.AbsoluteURL(img)
		}
	})

	// Fallback: first image in the article body
	c.OnHTML("body", func(e *colly.HTMLElement) {
		if meta.Image != "" {
			return
		}
		if img := firstImage(e.DOM); img != "" {
			meta.Image = e.Request.AbsoluteURL(img)
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		scrapeErr = fmt.Errorf("status code %d: %w", r.StatusCode, err)
	})

	if err := c.Visit(pageURL); err != nil {
		if scrapeErr != nil {
			return Meta{}, fmt.Errorf("failed to visit %s: %w", pageURL, scrapeErr)
		}
		return Meta{}, fmt.Errorf("failed to visit %s: %w", pageURL, err)
	}
	c.Wait()

	if scrapeErr != nil {
		return Meta{}, fmt.Errorf("failed to visit %s: %w", pageURL, scrapeErr)
	}
	if meta.Title == "" && meta.Description == "" && meta.Image == "" {
		return meta, ErrNoMeta
	}
	return meta, nil
}

func firstImage(doc *goquery.Selection) string {
	var found string
	doc.Find("picture img, article img, div.section-media img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, attr := range []string{"src", "data-src", "data-lazy-src"} {
			if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
				found = strings.TrimSpace(v)
				return false
			}
		}
		return true
	})
	return found
}

func first(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
