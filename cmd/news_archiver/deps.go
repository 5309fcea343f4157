package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/news-archiver/internal/browser"
	"github.com/jonathan/news-archiver/internal/classify"
	"github.com/jonathan/news-archiver/internal/config"
	"github.com/jonathan/news-archiver/internal/crawler"
	"github.com/jonathan/news-archiver/internal/db"
	"github.com/jonathan/news-archiver/internal/sites"
)

// loadConfig loads the optional JSON config file and fills gaps from the
// environment. A missing --config flag yields an env-only configuration.
func loadConfig(path string) (*config.Config, error) {
	cfg := &config.Config{}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newStore connects to the configured database.
func newStore(ctx context.Context, cfg *config.Config) (db.ArticleStore, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL required: set database_url in config or DATABASE_URL environment variable")
	}
	return db.Connect(ctx, cfg.DatabaseURL)
}

// newClassifier picks the Gemini classifier when an API key is configured,
// otherwise the offline keyword classifier.
func newClassifier(ctx context.Context, cfg *config.Config) (classify.Classifier, error) {
	if cfg.APIKey == "" {
		return classify.NewKeyword(), nil
	}
	return classify.NewGemini(ctx, cfg.APIKey)
}

// newRegistry builds crawlers for every enabled site.
func newRegistry(cfg *config.Config, classifier classify.Classifier) *crawler.Registry {
	opts := crawler.Options{
		OutputRoot:        cfg.OutputRoot,
		NavigationTimeout: cfg.NavigationTimeout(),
		ScrollPages:       cfg.ScrollPages,
		Verbose:           cfg.Verbose,
	}

	factory := browser.Chrome()
	crawlers := make([]*crawler.Crawler, 0)
	for _, rule := range sites.All() {
		if !cfg.SiteEnabled(rule.Identity.InternalName) {
			continue
		}
		crawlers = append(crawlers, crawler.New(rule, factory, classifier, opts))
	}
	return crawler.NewRegistry(cfg.Verbose, crawlers...)
}
