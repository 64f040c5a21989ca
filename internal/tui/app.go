// Package tui is the terminal news reader. Each tab is a views.Controller;
// the app mounts the active one and renders its state.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"news-reader/internal/article"
	"news-reader/internal/bookmark"
	"news-reader/internal/browser"
	"news-reader/internal/config"
	"news-reader/internal/headlines"
	"news-reader/internal/kv"
	"news-reader/internal/notify"
	"news-reader/internal/preview"
	"news-reader/internal/theme"
	"news-reader/internal/toast"
	"news-reader/internal/views"
)

const previewTimeout = 10 * time.Second

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeConfirmClear
)

// Previewer looks up page metadata for articles that came without an image.
type Previewer interface {
	Fetch(ctx context.Context, url string) (preview.Meta, error)
}

// Options holds the dependencies of the app.
type Options struct {
	Config  *config.Config
	Store   kv.KV
	Fetcher views.Fetcher
	Preview Previewer

	// Copy and Open default to the system clipboard and browser.
	Copy func(string) error
	Open func(string) error
}

// keyAnswer is the bookmark Confirmer backed by the y/n prompt. The answer
// is consumed by the next Confirm call.
type keyAnswer struct {
	yes bool
}

func (k *keyAnswer) Confirm(context.Context, string) (bool, error) {
	yes := k.yes
	k.yes = false
	return yes, nil
}

type App struct {
	store  kv.KV
	bus    *notify.Bus
	marks  *bookmark.Store
	answer *keyAnswer

	fetcher views.Fetcher
	ctls    []*views.Controller
	active  int
	cursor  int
	mode    mode

	search  textinput.Model
	spinner spinner.Model

	toast      *toast.Model
	toastSeq   int
	toastTimed int

	dark bool

	previewer Previewer
	previews  map[string]*preview.Meta
	pending   map[string]bool

	copy func(string) error
	open func(string) error

	status string
	err    error
	width  int
	height int
	now    func() time.Time
}

// New builds the app. Nothing is mounted until Init.
func New(opts Options) *App {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Defaults()
	}
	store := opts.Store
	if store == nil {
		store = kv.NewMemory()
	}

	ti := textinput.New()
	ti.Placeholder = "Search articles..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	bus := notify.NewBus()
	bus.SubscribeAll(func(ev notify.Event) {
		log.Printf("tui: event %s %q", ev.Topic, ev.Text)
	})
	answer := &keyAnswer{}
	marks := bookmark.New(store, bus, bookmark.WithConfirmer(answer))

	defs := views.Definitions(cfg.GetPageSize())
	ctls := make([]*views.Controller, len(defs))
	for i, d := range defs {
		ctls[i] = views.New(d, opts.Fetcher, marks)
	}

	a := &App{
		store:     store,
		bus:       bus,
		marks:     marks,
		answer:    answer,
		fetcher:   opts.Fetcher,
		ctls:      ctls,
		search:    ti,
		spinner:   sp,
		toast:     toast.New(cfg.ToastDurationValue()),
		previewer: opts.Preview,
		previews:  map[string]*preview.Meta{},
		pending:   map[string]bool{},
		copy:      opts.Copy,
		open:      opts.Open,
		now:       time.Now,
	}
	if a.copy == nil {
		a.copy = clipboard.WriteAll
	}
	if a.open == nil {
		a.open = browser.Open
	}
	a.toast.Attach(bus, func(string) { a.toastSeq++ })

	a.dark = theme.Load(context.Background(), store)
	lipgloss.SetHasDarkBackground(a.dark)
	return a
}

func (a *App) Init() tea.Cmd {
	return a.activate(0)
}

// Close unmounts the active view and drops the toast subscription.
func (a *App) Close() {
	if ctl := a.current(); ctl.Mounted() {
		ctl.Unmount()
	}
	a.toast.Detach()
}

func (a *App) current() *views.Controller {
	return a.ctls[a.active]
}

// activate unmounts the current view and mounts the one at i.
func (a *App) activate(i int) tea.Cmd {
	if i < 0 || i >= len(a.ctls) {
		return nil
	}
	cur := a.current()
	if cur.Mounted() {
		if i == a.active {
			return nil
		}
		cur.Unmount()
	}
	a.active = i
	a.cursor = 0
	a.mode = modeNormal
	a.search.SetValue("")
	a.search.Blur()
	a.status = ""

	a.current().Mount(context.Background(), a.bus, nil)
	return a.load()
}

// load fetches the active view's current query.
func (a *App) load() tea.Cmd {
	ctl := a.current()
	if ctl.Def().Local() {
		ctl.Load(context.Background())
		a.clampCursor()
		return a.previewCmd()
	}
	gen, params, ok := ctl.Begin()
	if !ok {
		return nil
	}
	return tea.Batch(a.fetchCmd(ctl.Def(), gen, params), a.spinner.Tick)
}

func (a *App) fetchCmd(def views.Definition, gen uint64, params headlines.Params) tea.Cmd {
	f := a.fetcher
	return func() tea.Msg {
		// no deadline: a hung upstream keeps the view loading
		resp, err := f.Fetch(context.Background(), def.Endpoint, params)
		return fetchedMsg{kind: def.Kind, gen: gen, resp: resp, err: err}
	}
}

func (a *App) previewCmd() tea.Cmd {
	sel := a.selected()
	if a.previewer == nil || sel == nil || sel.URLToImage != "" || sel.URL == "" {
		return nil
	}
	url := sel.URL
	if a.previews[url] != nil || a.pending[url] {
		return nil
	}
	a.pending[url] = true
	p := a.previewer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), previewTimeout)
		defer cancel()
		meta, err := p.Fetch(ctx, url)
		return previewMsg{url: url, meta: meta, err: err}
	}
}

func (a *App) toastCmd() tea.Cmd {
	if a.toastSeq == a.toastTimed {
		return nil
	}
	a.toastTimed = a.toastSeq
	seq := a.toastSeq
	return tea.Tick(a.toast.Duration(), func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

func (a *App) visible() []article.Article {
	return a.current().Visible()
}

func (a *App) selected() *article.Article {
	list := a.visible()
	if a.cursor < 0 || a.cursor >= len(list) {
		return nil
	}
	return &list[a.cursor]
}

func (a *App) clampCursor() {
	n := len(a.visible())
	if a.cursor >= n {
		a.cursor = max(0, n-1)
	}
}

func (a *App) controller(kind views.Kind) *views.Controller {
	for _, c := range a.ctls {
		if c.Def().Kind == kind {
			return c
		}
	}
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		model, cmd := a.handleKey(msg)
		a.clampCursor()
		return model, tea.Batch(cmd, a.toastCmd())

	case fetchedMsg:
		ctl := a.controller(msg.kind)
		if ctl == nil || !ctl.Apply(msg.gen, msg.resp, msg.err) {
			return a, nil
		}
		if msg.err != nil {
			log.Printf("fetch %s: %v", msg.kind, msg.err)
		}
		a.clampCursor()
		return a, a.previewCmd()

	case previewMsg:
		delete(a.pending, msg.url)
		if msg.err != nil {
			log.Printf("preview %s: %v", msg.url, msg.err)
		}
		meta := msg.meta
		a.previews[msg.url] = &meta
		return a, nil

	case toastExpiredMsg:
		// Current() already reports expiry; this tick only forces a redraw.
		return a, nil

	case statusMsg:
		a.status = msg.text
		return a, nil

	case errMsg:
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.current().State().Loading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeConfirmClear:
		return a.handleConfirmKey(msg)
	}

	ctl := a.current()
	ctx := context.Background()

	switch key := msg.String(); key {
	case "q":
		return a, tea.Quit
	case "tab":
		return a, a.activate((a.active + 1) % len(a.ctls))
	case "shift+tab":
		return a, a.activate((a.active - 1 + len(a.ctls)) % len(a.ctls))
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return a, a.activate(int(key[0] - '1'))
	case "j", "down":
		if a.cursor < len(a.visible())-1 {
			a.cursor++
		}
		return a, a.previewCmd()
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, a.previewCmd()
	case "/":
		a.mode = modeSearch
		a.search.Focus()
		return a, textinput.Blink
	case "b":
		if sel := a.selected(); sel != nil {
			if _, err := ctl.ToggleBookmark(ctx, *sel); err != nil {
				a.err = err
			}
		}
		return a, nil
	case "c":
		if ctl.Def().Local() && len(a.visible()) > 0 {
			a.mode = modeConfirmClear
		}
		return a, nil
	case "n":
		if ctl.Def().Paging == views.PagingPages && ctl.NextPage() {
			a.cursor = 0
			return a, a.load()
		}
		return a, nil
	case "p":
		if ctl.PrevPage() {
			a.cursor = 0
			return a, a.load()
		}
		return a, nil
	case "m":
		if ctl.Def().Paging == views.PagingLoadMore && ctl.NextPage() {
			return a, a.load()
		}
		return a, nil
	case "[", "]":
		delta := 1
		if key == "[" {
			delta = -1
		}
		if ctl.Cycle(delta) {
			a.cursor = 0
			return a, a.load()
		}
		return a, nil
	case "d":
		dark, err := theme.Toggle(ctx, a.store)
		if err != nil {
			a.err = err
			return a, nil
		}
		a.dark = dark
		lipgloss.SetHasDarkBackground(dark)
		return a, nil
	case "y":
		if sel := a.selected(); sel != nil {
			return a, a.copyCmd(sel.URL)
		}
		return a, nil
	case "o", "enter":
		if sel := a.selected(); sel != nil {
			return a, a.openCmd(sel.URL)
		}
		return a, nil
	case "r":
		return a, a.load()
	}
	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.search.SetValue("")
		a.search.Blur()
		a.current().SetSearch("")
		return a, nil
	case "enter":
		a.mode = modeNormal
		a.search.Blur()
		return a, a.previewCmd()
	}

	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	a.current().SetSearch(a.search.Value())
	a.cursor = 0
	return a, cmd
}

func (a *App) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		a.answer.yes = true
	case "n", "N", "esc":
		a.answer.yes = false
	default:
		return a, nil
	}
	a.mode = modeNormal

	err := a.current().ClearBookmarks(context.Background())
	switch {
	case errors.Is(err, bookmark.ErrNotConfirmed):
		a.status = "clear cancelled"
	case err != nil:
		a.err = err
	}
	return a, nil
}

func (a *App) copyCmd(url string) tea.Cmd {
	cp := a.copy
	return func() tea.Msg {
		if err := cp(url); err != nil {
			return errMsg{err: fmt.Errorf("copy link: %w", err)}
		}
		return statusMsg{text: "link copied"}
	}
}

func (a *App) openCmd(url string) tea.Cmd {
	open := a.open
	return func() tea.Msg {
		if err := open(url); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (a *App) View() string {
	if a.width == 0 {
		return headerStyle.Render("news-reader")
	}

	state := a.current().State()

	// Header
	themeLabel := "light"
	if a.dark {
		themeLabel = "dark"
	}
	left := headerStyle.Render("news-reader") + headerDimStyle.Render("  "+state.Def.Title)
	right := headerDimStyle.Render(a.now().Format("Jan 2") + " · " + themeLabel + " ")
	gap := max(0, a.width-lipgloss.Width(left)-lipgloss.Width(right))
	header := left + fmt.Sprintf("%*s", gap, "") + right

	tabs := renderTabs(a.defs(), a.active, a.width)

	// Selector line, replaced by the search input while searching
	line := renderSelector(state)
	if a.mode == modeSearch {
		line = a.search.View()
	} else if state.Query.Search != "" {
		line += headerDimStyle.Render("  filter: " + state.Query.Search)
	}
	if state.Banner != "" {
		line = bannerStyle.Render(" " + state.Banner)
	}

	contentHeight := max(a.height-3-1-2, 3)
	listWidth := int(float64(a.width) * 0.4)
	detailWidth := a.width - listWidth - 1

	list := renderList(state.Articles, a.cursor, a.current().IsBookmarked, contentHeight, listWidth-4, a.now())
	if state.Loading && len(state.Articles) == 0 {
		list = center(a.spinner.View()+" loading", listWidth-4, contentHeight)
	}
	listPane := paneStyle.Width(listWidth - 2).Height(contentHeight).Render(list)

	var meta *preview.Meta
	sel := a.selected()
	if sel != nil {
		meta = a.previews[sel.URL]
	}
	saved := sel != nil && a.current().IsBookmarked(sel.URL)
	detail := renderDetail(sel, meta, saved, detailWidth-4, contentHeight)
	detailPane := paneStyle.Width(detailWidth - 2).Height(contentHeight).Render(detail)

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)

	return lipgloss.JoinVertical(lipgloss.Left, header, tabs, line, content, a.statusLine(state))
}

func (a *App) statusLine(state views.State) string {
	if a.mode == modeConfirmClear {
		return renderStatusBar(bookmark.ClearPrompt, "y confirm  n cancel", a.width)
	}
	if a.err != nil {
		return errorStyle.Render(a.err.Error())
	}

	left := fmt.Sprintf("%d articles", len(state.Articles))
	if state.Loading {
		left = a.spinner.View() + " " + left
	}
	if p := pagerLabel(state); p != "" {
		left += " · " + p
	}
	if state.Err != "" {
		left += " · " + errorStyle.Render(state.Err) + " (r retry)"
	}
	if text, ok := a.toast.Current(); ok {
		left += "  " + toastStyle.Render(text)
	} else if a.status != "" {
		left += " · " + a.status
	}

	right := "tab views  / search  b save  y copy  o open  d theme  q quit"
	switch {
	case a.mode == modeSearch:
		right = "esc clear  enter done"
	case state.Def.Local():
		right = "b remove  c clear  y copy  o open  q quit"
	case len(state.Def.Choices) > 0:
		right = "[ ] " + selectorNoun(state.Def) + "  " + right
	}
	return renderStatusBar(left, right, a.width)
}

func (a *App) defs() []views.Definition {
	defs := make([]views.Definition, len(a.ctls))
	for i, c := range a.ctls {
		defs[i] = c.Def()
	}
	return defs
}

func selectorNoun(d views.Definition) string {
	switch d.SelectorParam {
	case "country":
		return "country"
	case "q":
		return "state"
	default:
		return d.SelectorParam
	}
}

// Run starts the terminal UI and blocks until it exits.
func Run(opts Options) error {
	app := New(opts)
	defer app.Close()
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
