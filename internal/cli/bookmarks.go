package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"news-reader/internal/article"
	"news-reader/internal/bookmark"
	"news-reader/internal/notify"
)

func newBookmarksCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bookmarks",
		Aliases: []string{"bm"},
		Short:   "Manage saved articles",
	}

	cmd.AddCommand(newBookmarksListCommand(root))
	cmd.AddCommand(newBookmarksAddCommand(root))
	cmd.AddCommand(newBookmarksRemoveCommand(root))
	cmd.AddCommand(newBookmarksClearCommand(root))
	return cmd
}

// withBookmarks opens the store for the duration of fn. Toasts go to stderr.
func withBookmarks(cmd *cobra.Command, root *rootOptions, confirm bookmark.Confirmer, fn func(ctx context.Context, s *bookmark.Store) error) error {
	e, err := setup(root)
	if err != nil {
		return err
	}
	defer e.Close()

	bus := notify.NewBus()
	sub := bus.Subscribe(notify.TopicToast, func(ev notify.Event) {
		fmt.Fprintln(cmd.ErrOrStderr(), ev.Text)
	})
	defer sub.Unsubscribe()

	var opts []bookmark.Option
	if confirm != nil {
		opts = append(opts, bookmark.WithConfirmer(confirm))
	}
	return fn(cmd.Context(), bookmark.New(e.store, bus, opts...))
}

func newBookmarksListCommand(root *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBookmarks(cmd, root, nil, func(ctx context.Context, s *bookmark.Store) error {
				list := s.List(ctx)
				out := cmd.OutOrStdout()
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(list)
				}
				if len(list) == 0 {
					fmt.Fprintln(out, "No bookmarks yet")
					return nil
				}
				printArticles(out, list)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newBookmarksAddCommand(root *rootOptions) *cobra.Command {
	var a article.Article
	var source string

	cmd := &cobra.Command{
		Use:   "add URL",
		Short: "Save an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.URL = strings.TrimSpace(args[0])
			if a.URL == "" {
				return fmt.Errorf("url is required")
			}
			if a.Title == "" {
				a.Title = a.URL
			}
			if source != "" {
				a.Source = &article.Source{Name: source}
			}
			if a.PublishedAt == "" {
				a.PublishedAt = time.Now().UTC().Format(time.RFC3339)
			}
			return withBookmarks(cmd, root, nil, func(ctx context.Context, s *bookmark.Store) error {
				if s.Contains(ctx, a.URL) {
					fmt.Fprintln(cmd.OutOrStdout(), "already bookmarked")
					return nil
				}
				return s.Add(ctx, a)
			})
		},
	}

	cmd.Flags().StringVarP(&a.Title, "title", "t", "", "article title (defaults to the URL)")
	cmd.Flags().StringVarP(&a.Description, "description", "d", "", "article description")
	cmd.Flags().StringVarP(&a.Author, "author", "a", "", "article author")
	cmd.Flags().StringVar(&source, "source", "", "publisher name")
	cmd.Flags().StringVar(&a.PublishedAt, "published", "", "publication time (RFC 3339, defaults to now)")
	return cmd
}

func newBookmarksRemoveCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove URL",
		Aliases: []string{"rm"},
		Short:   "Remove a saved article",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBookmarks(cmd, root, nil, func(ctx context.Context, s *bookmark.Store) error {
				return s.Remove(ctx, strings.TrimSpace(args[0]))
			})
		},
	}
}

func newBookmarksClearCommand(root *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all saved articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm := bookmark.AlwaysConfirm
			if !yes {
				confirm = promptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
			}
			err := withBookmarks(cmd, root, confirm, func(ctx context.Context, s *bookmark.Store) error {
				return s.Clear(ctx)
			})
			if errors.Is(err, bookmark.ErrNotConfirmed) {
				fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// promptConfirmer asks on out and accepts "y" or "yes" from in.
func promptConfirmer(in io.Reader, out io.Writer) bookmark.Confirmer {
	return bookmark.ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		fmt.Fprintf(out, "%s [y/N]: ", prompt)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	})
}
