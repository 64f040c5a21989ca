package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"news-reader/internal/article"
	"news-reader/internal/headlines"
	"news-reader/internal/render"
)

type headlinesOptions struct {
	endpoint string
	params   []string
	search   string
	json     bool
	timeout  time.Duration
}

func newHeadlinesCommand(root *rootOptions) *cobra.Command {
	opts := &headlinesOptions{}

	cmd := &cobra.Command{
		Use:   "headlines",
		Short: "Fetch headlines and print them",
		Example: `  news-reader headlines -p country=us -p category=sports
  news-reader headlines --endpoint everything -p q=Hyderabad --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHeadlines(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.endpoint, "endpoint", "e", string(headlines.TopHeadlines), "upstream endpoint (top-headlines, everything)")
	cmd.Flags().StringArrayVarP(&opts.params, "param", "p", nil, "query parameter (format: key=value)")
	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "only show articles whose title or description contains this")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the response as JSON")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "request timeout (0 waits indefinitely)")

	return cmd
}

func runHeadlines(cmd *cobra.Command, root *rootOptions, opts *headlinesOptions) error {
	params, err := parseParams(opts.params)
	if err != nil {
		return err
	}
	endpoint := headlines.Endpoint(opts.endpoint)
	if !endpoint.Valid() {
		return fmt.Errorf("unknown endpoint %q (valid: %s, %s)", opts.endpoint, headlines.TopHeadlines, headlines.Everything)
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	fetcher := newFetcher(cfg)
	if !fetcher.Configured() {
		return fmt.Errorf("no API key: %s, or set proxy_url", cfg.KeyHint())
	}

	ctx := cmd.Context()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	resp, err := fetcher.Fetch(ctx, endpoint, params)
	if err != nil {
		return err
	}
	resp.Articles = article.Filter(resp.Articles, opts.search)

	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	printArticles(out, resp.Articles)
	fmt.Fprintf(out, "%d of %d results\n", len(resp.Articles), resp.TotalResults)
	return nil
}

func parseParams(raw []string) (headlines.Params, error) {
	params := headlines.Params{}
	for _, p := range raw {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid param %q (format: key=value)", p)
		}
		params[key] = strings.TrimSpace(value)
	}
	return params, nil
}

func printArticles(w io.Writer, articles []article.Article) {
	for i, a := range articles {
		fmt.Fprintf(w, "%2d. %s\n", i+1, a.Title)
		fmt.Fprintf(w, "    %s", render.Byline(a))
		if name := a.SourceName(); name != "" {
			fmt.Fprintf(w, " | %s", name)
		}
		fmt.Fprintf(w, "\n    %s\n\n", a.URL)
	}
}
