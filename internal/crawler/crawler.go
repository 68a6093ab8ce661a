package crawler

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Adda-Baaj/khobor-sandhan/internal/domain"
	"github.com/Adda-Baaj/khobor-sandhan/internal/logger"
	"github.com/Adda-Baaj/khobor-sandhan/pkg/pacer"
	"github.com/Adda-Baaj/khobor-sandhan/pkg/providers"
)

const (
	defaultKeywordDelayMin = 5 * time.Second
	defaultKeywordDelayMax = 10 * time.Second
)

// Options configures a Crawler.
type Options struct {
	// Providers are queried in order for every keyword. Empty means providers.DefaultProviders().
	Providers       []providers.Provider
	KeywordDelayMin time.Duration
	KeywordDelayMax time.Duration
	Pacer           pacer.Pacer
	Log             logger.Logger
}

// Crawler runs every provider for each keyword and merges the results.
type Crawler struct {
	registry  providers.FetcherRegistry
	providers []providers.Provider
	delayMin  time.Duration
	delayMax  time.Duration
	pacer     pacer.Pacer
	log       logger.Logger
	runID     string
}

// New creates a Crawler that resolves fetchers through reg.
func New(reg providers.FetcherRegistry, opts Options) *Crawler {
	if opts.Log == nil {
		opts.Log = logger.NopLogger{}
	}
	if opts.Pacer == nil {
		opts.Pacer = pacer.NewRandom()
	}
	if reg == nil {
		reg = providers.DefaultFetcherRegistry(nil, opts.Pacer, opts.Log)
	}

	provs := make([]providers.Provider, 0, len(opts.Providers))
	for _, p := range opts.Providers {
		provs = append(provs, providers.Sanitize(p))
	}
	if len(provs) == 0 {
		provs = providers.DefaultProviders()
	}

	if opts.KeywordDelayMin <= 0 && opts.KeywordDelayMax <= 0 {
		opts.KeywordDelayMin, opts.KeywordDelayMax = defaultKeywordDelayMin, defaultKeywordDelayMax
	}

	return &Crawler{
		registry:  reg,
		providers: provs,
		delayMin:  opts.KeywordDelayMin,
		delayMax:  opts.KeywordDelayMax,
		pacer:     opts.Pacer,
		log:       opts.Log,
		runID:     uuid.NewString(),
	}
}

// RunID identifies this crawler's run in logs and published events.
func (c *Crawler) RunID() string {
	return c.runID
}

// Search queries every enabled provider for keyword and returns the merged, deduplicated articles.
func (c *Crawler) Search(ctx context.Context, keyword string) []domain.Article {
	return c.search(ctx, keyword, 0)
}

// RunAll searches each keyword in order and concatenates the per-keyword results.
// maxPages overrides the page budget of listing providers when positive. Duplicates across
// keywords are kept.
func (c *Crawler) RunAll(ctx context.Context, keywords []string, maxPages int) []domain.Article {
	var all []domain.Article

	for i, keyword := range keywords {
		if ctx.Err() != nil {
			c.log.WarnObj("run interrupted", "crawl_interrupted", map[string]any{
				"run_id":    c.runID,
				"remaining": len(keywords) - i,
			})
			break
		}

		c.log.InfoObj("processing keyword", "keyword_start", map[string]any{
			"run_id":  c.runID,
			"keyword": keyword,
			"index":   i + 1,
			"total":   len(keywords),
		})

		found := c.search(ctx, keyword, maxPages)
		all = append(all, found...)

		c.log.InfoObj("keyword done", "keyword_done", map[string]any{
			"run_id":   c.runID,
			"keyword":  keyword,
			"articles": len(found),
		})

		if i < len(keywords)-1 {
			if _, err := c.pacer.Pause(ctx, c.delayMin, c.delayMax); err != nil {
				c.log.WarnObj("keyword delay interrupted", "crawl_interrupted", map[string]any{
					"run_id": c.runID,
					"error":  err.Error(),
				})
				break
			}
		}
	}

	return all
}

func (c *Crawler) search(ctx context.Context, keyword string, maxPages int) []domain.Article {
	keyword = strings.TrimSpace(keyword)

	var combined []domain.Article
	for _, cfg := range c.providers {
		if !cfg.EnabledValue() {
			continue
		}
		if maxPages > 0 && cfg.Type == providers.ProviderTypeListing {
			cfg.MaxPages = maxPages
		}

		fetcher, err := c.registry.FetcherFor(cfg)
		if err != nil {
			c.log.ErrorObj("no fetcher for provider", "fetcher_missing", map[string]any{
				"run_id":      c.runID,
				"provider_id": cfg.ID,
				"error":       err.Error(),
			})
			continue
		}

		articles, err := fetcher.Fetch(ctx, cfg, keyword)
		if err != nil {
			c.logRetrievalError(cfg, keyword, len(articles), err)
		}
		combined = append(combined, articles...)
	}

	unique := Dedupe(combined)
	c.log.InfoObj("merged channel results", "keyword_merged", map[string]any{
		"run_id":   c.runID,
		"keyword":  keyword,
		"combined": len(combined),
		"unique":   len(unique),
	})
	return unique
}

func (c *Crawler) logRetrievalError(cfg providers.Provider, keyword string, kept int, err error) {
	fields := map[string]any{
		"run_id":      c.runID,
		"provider_id": cfg.ID,
		"keyword":     keyword,
		"kept":        kept,
		"error":       err.Error(),
	}
	if providers.IsBlocked(err) {
		c.log.WarnObj("provider blocked automated traffic, pagination stopped", "provider_blocked", fields)
		return
	}
	c.log.WarnObj("provider retrieval failed", "retrieval_error", fields)
}
