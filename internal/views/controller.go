// Package views holds the headless controllers behind each reader tab. A
// controller owns its query state, fetches through a Fetcher and keeps its
// bookmark marks current through the notify bus while mounted.
package views

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"news-reader/internal/article"
	"news-reader/internal/bookmark"
	"news-reader/internal/headlines"
	"news-reader/internal/notify"
)

// Fetcher is the part of headlines.Client a view needs.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint headlines.Endpoint, params headlines.Params) (*article.Response, error)
	Configured() bool
}

// ConfigBanner is shown when no credential is available for direct calls.
const ConfigBanner = "News API key not configured: no live data"

// Query is the per-view in-memory request state.
type Query struct {
	Choice int
	Search string
	Page   int
}

// State is a render snapshot of a controller.
type State struct {
	Def      Definition
	Query    Query
	Articles []article.Article
	Total    int
	Loading  bool
	Err      string
	Banner   string
	HasPrev  bool
	HasNext  bool
	HasMore  bool
	Mounted  bool
}

// Controller drives one view.
type Controller struct {
	mu      sync.Mutex
	def     Definition
	fetcher Fetcher
	marks   *bookmark.Store

	query     Query
	articles  []article.Article
	lastBatch int
	total     int
	loading   bool
	err       string
	banner    string
	saved     map[string]bool

	gen      uint64
	mounted  bool
	sub      *notify.Subscription
	onChange func()
}

// New creates an unmounted controller.
func New(def Definition, fetcher Fetcher, marks *bookmark.Store) *Controller {
	return &Controller{
		def:     def,
		fetcher: fetcher,
		marks:   marks,
		query:   Query{Page: 1},
		saved:   map[string]bool{},
	}
}

// Def returns the view definition.
func (c *Controller) Def() Definition {
	return c.def
}

// Mount subscribes to bookmark changes and loads the current marks. The
// query state starts over on every mount. onChange, if set, runs after every
// state change caused by a notification.
func (c *Controller) Mount(ctx context.Context, bus *notify.Bus, onChange func()) {
	c.mu.Lock()
	if c.mounted {
		c.mu.Unlock()
		return
	}
	c.mounted = true
	c.onChange = onChange
	c.query = Query{Page: 1}
	c.articles = nil
	c.total = 0
	c.lastBatch = 0
	c.err = ""
	c.mu.Unlock()

	if bus != nil {
		sub := bus.Subscribe(notify.TopicBookmarksChanged, func(notify.Event) {
			c.refreshMarks(context.Background())
			c.mu.Lock()
			fn := c.onChange
			c.mu.Unlock()
			if fn != nil {
				fn()
			}
		})
		c.mu.Lock()
		c.sub = sub
		c.mu.Unlock()
	}

	c.refreshMarks(ctx)
}

// Unmount releases the subscription. Results of fetches still in flight are
// discarded.
func (c *Controller) Unmount() {
	c.mu.Lock()
	sub := c.sub
	c.sub = nil
	c.mounted = false
	c.onChange = nil
	c.gen++
	c.loading = false
	c.mu.Unlock()

	sub.Unsubscribe()
}

// Mounted reports whether the view is mounted.
func (c *Controller) Mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mounted
}

func (c *Controller) refreshMarks(ctx context.Context) {
	if c.marks == nil {
		return
	}
	list := c.marks.List(ctx)
	saved := make(map[string]bool, len(list))
	for _, a := range list {
		saved[a.URL] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted {
		return
	}
	c.saved = saved
	if c.def.Local() {
		c.articles = list
		c.total = len(list)
	}
}

// Params returns the request parameters for the current query.
func (c *Controller) Params() headlines.Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paramsLocked()
}

func (c *Controller) paramsLocked() headlines.Params {
	p := headlines.Params{}
	for k, v := range c.def.Fixed {
		p[k] = v
	}
	if c.def.SelectorParam != "" && len(c.def.Choices) > 0 {
		p[c.def.SelectorParam] = c.def.Choices[c.query.Choice].Value
	}
	if c.def.PageSize > 0 {
		p["pageSize"] = strconv.Itoa(c.def.PageSize)
	}
	if c.def.Paging != PagingNone {
		p["page"] = strconv.Itoa(c.query.Page)
	}
	return p
}

// Begin marks the view as loading and returns the generation a result must
// carry to be applied. ok is false when nothing should be fetched.
func (c *Controller) Begin() (gen uint64, params headlines.Params, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.mounted || c.def.Local() {
		return 0, nil, false
	}
	if c.fetcher == nil || !c.fetcher.Configured() {
		c.banner = ConfigBanner
		c.loading = false
		return 0, nil, false
	}
	c.banner = ""
	c.err = ""
	c.loading = true
	c.gen++
	return c.gen, c.paramsLocked(), true
}

// Apply stores a fetch outcome. It returns false, leaving the view untouched,
// when the view was unmounted or the query changed since Begin.
func (c *Controller) Apply(gen uint64, resp *article.Response, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.mounted || gen != c.gen {
		return false
	}
	c.loading = false

	if err != nil {
		c.err = err.Error()
		if errors.Is(err, headlines.ErrNoCredential) {
			c.banner = ConfigBanner
		}
		return true
	}

	if resp == nil {
		resp = &article.Response{}
	}
	c.err = ""
	c.total = resp.TotalResults
	c.lastBatch = len(resp.Articles)
	if c.def.Paging == PagingLoadMore && c.query.Page > 1 {
		c.articles = append(append([]article.Article(nil), c.articles...), resp.Articles...)
	} else {
		c.articles = resp.Articles
	}
	return true
}

// Load fetches the current query and applies the result. Local views re-read
// the bookmark store.
func (c *Controller) Load(ctx context.Context) {
	if c.def.Local() {
		c.refreshMarks(ctx)
		return
	}
	gen, params, ok := c.Begin()
	if !ok {
		return
	}
	resp, err := c.fetcher.Fetch(ctx, c.def.Endpoint, params)
	c.Apply(gen, resp, err)
}

// Select switches the selector and returns to the first page.
func (c *Controller) Select(i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i < 0 || i >= len(c.def.Choices) || i == c.query.Choice {
		return false
	}
	c.query.Choice = i
	c.query.Page = 1
	c.articles = nil
	c.gen++
	return true
}

// Cycle moves the selector by delta, wrapping around.
func (c *Controller) Cycle(delta int) bool {
	c.mu.Lock()
	n := len(c.def.Choices)
	cur := c.query.Choice
	c.mu.Unlock()

	if n < 2 {
		return false
	}
	return c.Select(((cur+delta)%n + n) % n)
}

// NextPage advances one page. It returns false when there is no next page.
func (c *Controller) NextPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.def.Paging {
	case PagingPages:
		if !c.hasNextLocked() {
			return false
		}
	case PagingLoadMore:
		if !c.hasMoreLocked() {
			return false
		}
	default:
		return false
	}
	c.query.Page++
	c.gen++
	return true
}

// PrevPage goes back one page, never below the first.
func (c *Controller) PrevPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.def.Paging != PagingPages || c.query.Page <= 1 {
		return false
	}
	c.query.Page--
	c.gen++
	return true
}

func (c *Controller) hasNextLocked() bool {
	return c.query.Page*c.def.PageSize < c.total
}

func (c *Controller) hasMoreLocked() bool {
	return !c.loading && c.err == "" && c.lastBatch >= c.def.PageSize
}

// SetSearch sets the local filter term.
func (c *Controller) SetSearch(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query.Search = term
}

// Visible returns the articles matching the search term.
func (c *Controller) Visible() []article.Article {
	c.mu.Lock()
	defer c.mu.Unlock()
	return article.Filter(c.articles, c.query.Search)
}

// IsBookmarked reports whether url is saved, as of the last notification.
func (c *Controller) IsBookmarked(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saved[url]
}

// ToggleBookmark saves or unsaves a.
func (c *Controller) ToggleBookmark(ctx context.Context, a article.Article) (bool, error) {
	if c.marks == nil {
		return false, errors.New("no bookmark store")
	}
	return c.marks.Toggle(ctx, a)
}

// RemoveBookmark unsaves url.
func (c *Controller) RemoveBookmark(ctx context.Context, url string) error {
	if c.marks == nil {
		return errors.New("no bookmark store")
	}
	return c.marks.Remove(ctx, url)
}

// ClearBookmarks empties the bookmark list after confirmation.
func (c *Controller) ClearBookmarks(ctx context.Context) error {
	if c.marks == nil {
		return errors.New("no bookmark store")
	}
	return c.marks.Clear(ctx)
}

// State returns a snapshot for rendering.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Def:      c.def,
		Query:    c.query,
		Articles: article.Filter(c.articles, c.query.Search),
		Total:    c.total,
		Loading:  c.loading,
		Err:      c.err,
		Banner:   c.banner,
		Mounted:  c.mounted,
	}
	switch c.def.Paging {
	case PagingPages:
		s.HasPrev = c.query.Page > 1
		s.HasNext = c.hasNextLocked()
	case PagingLoadMore:
		s.HasMore = c.hasMoreLocked()
	}
	return s
}
