package tui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-reader/internal/article"
	"news-reader/internal/bookmark"
	"news-reader/internal/config"
	"news-reader/internal/headlines"
	"news-reader/internal/kv"
	"news-reader/internal/preview"
	"news-reader/internal/theme"
	"news-reader/internal/views"
)

type fakeFetcher struct {
	mu         sync.Mutex
	configured bool
	calls      []headlines.Params
	fail       error
}

func (f *fakeFetcher) Configured() bool { return f.configured }

func (f *fakeFetcher) Fetch(_ context.Context, ep headlines.Endpoint, p headlines.Params) (*article.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, p)
	fail := f.fail
	f.mu.Unlock()
	if fail != nil {
		return nil, fail
	}
	resp := &article.Response{Status: "ok", TotalResults: 25}
	for i := 0; i < 3; i++ {
		resp.Articles = append(resp.Articles, article.Article{
			URL:   fmt.Sprintf("http://%s/%s/%d", ep, p["page"], i),
			Title: fmt.Sprintf("story %d", i),
		})
	}
	return resp, nil
}

func (f *fakeFetcher) last() headlines.Params {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

type fakePreview struct {
	urls []string
}

func (p *fakePreview) Fetch(_ context.Context, url string) (preview.Meta, error) {
	p.urls = append(p.urls, url)
	return preview.Meta{URL: url, Image: url + "/og.jpg"}, nil
}

func newTestApp(t *testing.T, f *fakeFetcher) (*App, kv.KV) {
	t.Helper()
	cfg := config.Defaults()
	cfg.ToastDuration = "1ms"
	store := kv.NewMemory()
	a := New(Options{
		Config:  cfg,
		Store:   store,
		Fetcher: f,
		Copy:    func(string) error { return nil },
		Open:    func(string) error { return nil },
	})
	t.Cleanup(a.Close)
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return a, store
}

// drain runs cmd and feeds the app's own messages back into Update.
func drain(a *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			drain(a, c)
		}
	case fetchedMsg, previewMsg, statusMsg, errMsg, toastExpiredMsg:
		_, next := a.Update(msg)
		drain(a, next)
	}
}

func press(a *App, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd := a.Update(msg)
		drain(a, cmd)
	}
}

func TestApp_InitLoadsHome(t *testing.T) {
	f := &fakeFetcher{configured: true}
	a, _ := newTestApp(t, f)

	drain(a, a.Init())

	assert.True(t, a.current().Mounted())
	assert.Equal(t, views.Home, a.current().Def().Kind)
	assert.Equal(t, "general", f.last()["category"])
	assert.Len(t, a.visible(), 3)
	assert.Contains(t, a.View(), "story 0")
}

func TestApp_UnconfiguredShowsBanner(t *testing.T) {
	a, _ := newTestApp(t, &fakeFetcher{})
	drain(a, a.Init())
	assert.Contains(t, a.View(), views.ConfigBanner)
}

func TestApp_TabSwitchRemounts(t *testing.T) {
	f := &fakeFetcher{configured: true}
	a, _ := newTestApp(t, f)
	drain(a, a.Init())

	home := a.current()
	press(a, "tab")
	assert.False(t, home.Mounted())
	assert.Equal(t, views.Telugu, a.current().Def().Kind)
	assert.Equal(t, "Telangana OR Hyderabad", f.last()["q"])

	press(a, "6")
	assert.Equal(t, views.Bookmarks, a.current().Def().Kind)
	assert.Contains(t, a.View(), "No articles found")
}

func TestApp_StaleFetchIgnored(t *testing.T) {
	f := &fakeFetcher{configured: true}
	a, _ := newTestApp(t, f)
	drain(a, a.Init())

	gen, _, ok := a.current().Begin()
	require.True(t, ok)

	press(a, "]")
	require.Equal(t, 1, a.current().State().Query.Choice)

	stale := fetchedMsg{
		kind: views.Home,
		gen:  gen,
		resp: &article.Response{Status: "ok", Articles: []article.Article{{URL: "http://stale", Title: "stale"}}},
	}
	_, cmd := a.Update(stale)
	assert.Nil(t, cmd)
	for _, art := range a.visible() {
		assert.NotEqual(t, "http://stale", art.URL)
	}
	assert.Len(t, a.visible(), 3)
}

func TestApp_BookmarkToggleAndToast(t *testing.T) {
	f := &fakeFetcher{configured: true}
	a, store := newTestApp(t, f)
	drain(a, a.Init())

	press(a, "j", "b")
	marks := bookmark.New(store, nil)
	list := marks.List(context.Background())
	require.Len(t, list, 1)
	assert.Equal(t, a.visible()[1].URL, list[0].URL)
	assert.True(t, a.current().IsBookmarked(list[0].URL))
	assert.Equal(t, 1, a.toastSeq)

	press(a, "b")
	assert.Empty(t, marks.List(context.Background()))
	assert.Equal(t, 2, a.toastSeq)
}

func TestApp_ClearBookmarksConfirm(t *testing.T) {
	f := &fakeFetcher{configured: true}
	a, store := newTestApp(t, f)
	drain(a, a.Init())
	press(a, "b", "j", "b")

	marks := bookmark.New(store, nil)
	require.Len(t, marks.List(context.Background()), 2)

	press(a, "6")
	require.Len(t, a.visible(), 2)

	press(a, "c", "n")
	assert.Equal(t, modeNormal, a.mode)
	assert.Equal(t, "clear cancelled", a.status)
	assert.Len(t, marks.List(context.Background()), 2)

	press(a, "c")
	assert.Equal(t, modeConfirmClear, a.mode)
	assert.Contains(t, a.View(), bookmark.ClearPrompt)
	press(a, "y")
	assert.Empty(t, marks.List(context.Background()))
	assert.Empty(t, a.visible())
}

func TestApp_SearchFiltersLocally(t *testing.T) {
	f := &fakeFetcher{configured: true}
	a, _ := newTestApp(t, f)
	drain(a, a.Init())
	calls := len(f.calls)

	press(a, "/", "s", "t", "o", "r", "y", " ", "2", "enter")
	assert.Equal(t, modeNormal, a.mode)
	require.Len(t, a.visible(), 1)
	assert.Equal(t, "story 2", a.visible()[0].Title)
	assert.Equal(t, calls, len(f.calls))

	press(a, "/", "esc")
	assert.Len(t, a.visible(), 3)
}

func TestApp_Paging(t *testing.T) {
	f := &fakeFetcher{configured: true}
	a, _ := newTestApp(t, f)
	drain(a, a.Init())

	press(a, "n")
	assert.Equal(t, "2", f.last()["page"])
	press(a, "p")
	assert.Equal(t, "1", f.last()["page"])

	press(a, "5")
	require.Equal(t, views.Sports, a.current().Def().Kind)
	n := len(f.calls)
	// 3 results is fewer than a full page, so there is nothing more to load
	press(a, "m")
	assert.Equal(t, n, len(f.calls))
}

func TestApp_FetchErrorAndRetry(t *testing.T) {
	f := &fakeFetcher{configured: true, fail: errors.New("upstream down")}
	a, _ := newTestApp(t, f)
	drain(a, a.Init())

	assert.Equal(t, "upstream down", a.current().State().Err)
	assert.Contains(t, a.View(), "r retry")

	f.mu.Lock()
	f.fail = nil
	f.mu.Unlock()
	press(a, "r")
	assert.Empty(t, a.current().State().Err)
	assert.Len(t, a.visible(), 3)
}

func TestApp_DarkModePersists(t *testing.T) {
	a, store := newTestApp(t, &fakeFetcher{configured: true})
	drain(a, a.Init())

	press(a, "d")
	assert.True(t, a.dark)
	assert.True(t, theme.Load(context.Background(), store))

	press(a, "d")
	assert.False(t, theme.Load(context.Background(), store))
}

func TestApp_CopyAndOpen(t *testing.T) {
	f := &fakeFetcher{configured: true}
	a, _ := newTestApp(t, f)
	var copied, opened string
	a.copy = func(s string) error { copied = s; return nil }
	a.open = func(s string) error { opened = s; return errors.New("no browser") }
	drain(a, a.Init())

	press(a, "y")
	assert.Equal(t, a.visible()[0].URL, copied)
	assert.Equal(t, "link copied", a.status)

	press(a, "o")
	assert.Equal(t, a.visible()[0].URL, opened)
	require.Error(t, a.err)
	assert.Contains(t, a.View(), "no browser")
}

func TestApp_PreviewForImagelessArticle(t *testing.T) {
	f := &fakeFetcher{configured: true}
	a, _ := newTestApp(t, f)
	p := &fakePreview{}
	a.previewer = p
	drain(a, a.Init())

	url := a.visible()[0].URL
	require.Equal(t, []string{url}, p.urls)
	assert.Contains(t, a.View(), "Image: "+url+"/og.jpg")

	press(a, "j", "k")
	assert.Len(t, p.urls, 2)
}

// blockingFetcher holds every fetch until release is closed.
type blockingFetcher struct {
	started chan context.Context
	release chan struct{}
}

func (f *blockingFetcher) Configured() bool { return true }

func (f *blockingFetcher) Fetch(ctx context.Context, _ headlines.Endpoint, _ headlines.Params) (*article.Response, error) {
	f.started <- ctx
	<-f.release
	return &article.Response{Status: "ok", Articles: []article.Article{{URL: "http://x", Title: "late"}}}, nil
}

func TestApp_HungFetchStaysLoading(t *testing.T) {
	f := &blockingFetcher{started: make(chan context.Context, 1), release: make(chan struct{})}
	cfg := config.Defaults()
	cfg.ToastDuration = "1ms"
	a := New(Options{Config: cfg, Store: kv.NewMemory(), Fetcher: f})
	t.Cleanup(a.Close)
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	batch, ok := a.Init()().(tea.BatchMsg)
	require.True(t, ok)
	require.NotEmpty(t, batch)

	done := make(chan tea.Msg, 1)
	go func() { done <- batch[0]() }()

	ctx := <-f.started
	_, hasDeadline := ctx.Deadline()
	assert.False(t, hasDeadline)

	select {
	case msg := <-done:
		t.Fatalf("fetch finished while upstream was blocked: %#v", msg)
	case <-time.After(50 * time.Millisecond):
	}
	assert.True(t, a.current().State().Loading)

	close(f.release)
	a.Update(<-done)
	assert.False(t, a.current().State().Loading)
	assert.Len(t, a.current().Visible(), 1)
}

func TestApp_LogsBusEvents(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	f := &fakeFetcher{configured: true}
	a, _ := newTestApp(t, f)
	drain(a, a.Init())
	press(a, "b")

	assert.Contains(t, buf.String(), "tui: event bookmarks-changed")
	assert.Contains(t, buf.String(), `tui: event toast "added to bookmark"`)
}
