package cli

import (
	"context"
	"fmt"
	"log"

	"news-reader/internal/config"
	"news-reader/internal/headlines"
	"news-reader/internal/kv"
)

// env is what a command needs at runtime.
type env struct {
	cfg     *config.Config
	store   kv.KV
	fetcher *headlines.Client
}

func (e *env) Close() {
	if e.store == nil {
		return
	}
	if err := e.store.Close(); err != nil {
		log.Printf("closing store: %v", err)
	}
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	if err := config.LoadEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.driver != "" {
		cfg.Store.Driver = opts.driver
	}
	return cfg, nil
}

// setup loads the config and opens the store and fetcher.
func setup(opts *rootOptions) (*env, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	store, err := kv.Open(context.Background(), cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return &env{cfg: cfg, store: store, fetcher: newFetcher(cfg)}, nil
}

// newFetcher goes through the proxy when one is configured and otherwise
// calls the upstream directly with the local key.
func newFetcher(cfg *config.Config) *headlines.Client {
	if cfg.Proxied() {
		return headlines.NewProxied(cfg.ProxyURL)
	}
	return headlines.NewDirect(cfg.UpstreamBaseURL, cfg.APIKey())
}
