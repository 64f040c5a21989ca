// Package bookmark keeps the user's saved articles as a single ordered list
// in the local KV store and announces every change on the notify bus.
package bookmark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"news-reader/internal/article"
	"news-reader/internal/kv"
	"news-reader/internal/notify"
)

// Toast texts published after a mutation.
const (
	ToastAdded   = "added to bookmark"
	ToastRemoved = "removed from bookmark"
	ToastCleared = "bookmarks cleared"

	ClearPrompt = "Are you sure you want to clear all bookmarks?"
)

// ErrNotConfirmed is returned by Clear when the user declines.
var ErrNotConfirmed = errors.New("clear bookmarks not confirmed")

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AlwaysConfirm approves every prompt.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) {
	return true, nil
})

// neverConfirm is the default so that Clear cannot run without an explicit
// confirmation step wired in.
var neverConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) {
	return false, nil
})

// Store is the bookmark list.
type Store struct {
	mu      sync.Mutex
	kv      kv.KV
	bus     *notify.Bus
	confirm Confirmer
}

// Option configures a Store.
type Option func(*Store)

// WithConfirmer sets the confirmation step used by Clear.
func WithConfirmer(c Confirmer) Option {
	return func(s *Store) {
		s.confirm = c
	}
}

// New creates a Store persisting to store and publishing on bus.
func New(store kv.KV, bus *notify.Bus, opts ...Option) *Store {
	s := &Store{kv: store, bus: bus, confirm: neverConfirm}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the saved articles in insertion order. An absent or
// malformed blob reads as an empty list.
func (s *Store) List(ctx context.Context) []article.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadOrEmpty(ctx)
}

// Contains reports whether an article with url is saved.
func (s *Store) Contains(ctx context.Context, url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOf(s.loadOrEmpty(ctx), url) >= 0
}

// Add appends a if no saved article shares its URL. Adding a saved URL is a
// no-op and publishes nothing. A failed read leaves the stored list alone.
func (s *Store) Add(ctx context.Context, a article.Article) error {
	s.mu.Lock()
	list, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if indexOf(list, a.URL) >= 0 {
		s.mu.Unlock()
		return nil
	}
	err = s.save(ctx, append(list, a))
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.announce(ToastAdded)
	return nil
}

// Remove drops the article with url. Change events are published even when
// url was not saved.
func (s *Store) Remove(ctx context.Context, url string) error {
	s.mu.Lock()
	list, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	kept := make([]article.Article, 0, len(list))
	for _, a := range list {
		if a.URL != url {
			kept = append(kept, a)
		}
	}
	err = s.save(ctx, kept)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.announce(ToastRemoved)
	return nil
}

// Toggle removes a if saved and adds it otherwise. It reports whether a is
// saved afterwards.
func (s *Store) Toggle(ctx context.Context, a article.Article) (bool, error) {
	if s.Contains(ctx, a.URL) {
		return false, s.Remove(ctx, a.URL)
	}
	return true, s.Add(ctx, a)
}

// Clear empties the list once the Confirmer approves. A declined prompt
// returns ErrNotConfirmed and leaves the list untouched.
func (s *Store) Clear(ctx context.Context) error {
	ok, err := s.confirm.Confirm(ctx, ClearPrompt)
	if err != nil {
		return fmt.Errorf("confirming clear: %w", err)
	}
	if !ok {
		return ErrNotConfirmed
	}

	s.mu.Lock()
	err = s.save(ctx, []article.Article{})
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.announce(ToastCleared)
	return nil
}

func (s *Store) announce(text string) {
	if s.bus == nil {
		return
	}
	s.bus.BookmarksChanged()
	s.bus.Toast(text)
}

// load reads the list. An absent or malformed blob is an empty list; any
// other read failure is returned.
func (s *Store) load(ctx context.Context) ([]article.Article, error) {
	data, err := s.kv.Get(ctx, kv.KeyBookmarks)
	if errors.Is(err, kv.ErrNotFound) {
		return []article.Article{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading bookmarks: %w", err)
	}

	var list []article.Article
	if err := json.Unmarshal(data, &list); err != nil || list == nil {
		return []article.Article{}, nil
	}
	return list, nil
}

func (s *Store) loadOrEmpty(ctx context.Context) []article.Article {
	list, err := s.load(ctx)
	if err != nil {
		log.Printf("bookmarks: %v, treating as empty", err)
		return []article.Article{}
	}
	return list
}

func (s *Store) save(ctx context.Context, list []article.Article) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encoding bookmarks: %w", err)
	}
	if err := s.kv.Set(ctx, kv.KeyBookmarks, data); err != nil {
		return fmt.Errorf("saving bookmarks: %w", err)
	}
	return nil
}

func indexOf(list []article.Article, url string) int {
	for i, a := range list {
		if a.URL == url {
			return i
		}
	}
	return -1
}
