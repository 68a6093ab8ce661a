package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/Adda-Baaj/khobor-sandhan/internal/domain"
	"github.com/Adda-Baaj/khobor-sandhan/internal/logger"
	"github.com/Adda-Baaj/khobor-sandhan/internal/recency"
)

const (
	placeholderTitle       = "No title"
	placeholderLink        = "No link"
	placeholderDescription = "No description"
)

var errEmptyKeyword = errors.New("keyword is empty")

// feedFetcher implements Fetcher for RSS/Atom search feeds.
type feedFetcher struct {
	client HTTPClient
	now    func() time.Time
	log    logger.Logger
}

// FeedFetcher exposes the bounded feed retrieval on top of Fetcher.
type FeedFetcher interface {
	Fetcher
	FetchFeed(ctx context.Context, cfg Provider, keyword string, maxResults int) ([]domain.Article, error)
}

// NewFeedFetcher builds a Fetcher for search feed providers.
func NewFeedFetcher(client HTTPClient, log logger.Logger) FeedFetcher {
	return newFeedFetcher(client, log, time.Now)
}

func newFeedFetcher(client HTTPClient, log logger.Logger, now func() time.Time) *feedFetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &feedFetcher{client: client, now: now, log: log}
}

// ID returns the provider type for the feed fetcher.
func (f *feedFetcher) ID() string {
	return ProviderTypeFeed
}

// Fetch retrieves up to cfg.MaxResults articles for keyword.
func (f *feedFetcher) Fetch(ctx context.Context, cfg Provider, keyword string) ([]domain.Article, error) {
	return f.FetchFeed(ctx, cfg, keyword, cfg.MaxResults)
}

// FetchFeed requests the search feed for keyword and normalizes at most maxResults items.
// Any failure yields no articles and a *RetrievalError.
func (f *feedFetcher) FetchFeed(ctx context.Context, cfg Provider, keyword string, maxResults int) ([]domain.Article, error) {
	if !strings.EqualFold(cfg.Type, ProviderTypeFeed) {
		return nil, fmt.Errorf("feed fetcher received incompatible provider type %q", cfg.Type)
	}

	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, &RetrievalError{Provider: cfg.ID, Err: errEmptyKeyword}
	}
	if maxResults < 0 {
		return nil, &RetrievalError{Provider: cfg.ID, Keyword: keyword, Err: fmt.Errorf("max results %d is negative", maxResults)}
	}

	feedURL := BuildFeedURL(cfg.SourceURL, keyword)
	f.log.DebugObj("fetching search feed", "feed_fetch_start", map[string]any{
		"provider_id": cfg.ID,
		"keyword":     keyword,
		"url":         feedURL,
	})

	raw, err := fetchDocument(ctx, f.client, feedURL, cfg.Timeout, Headers(cfg))
	if err != nil {
		return nil, &RetrievalError{Provider: cfg.ID, Keyword: keyword, Err: err}
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, &RetrievalError{Provider: cfg.ID, Keyword: keyword, Err: fmt.Errorf("decode feed: %w", err)}
	}

	items := feed.Items
	if len(items) > maxResults {
		items = items[:maxResults]
	}

	now := f.now()
	articles := make([]domain.Article, 0, len(items))
	for i, item := range items {
		art, err := buildFeedArticle(item, cfg.ID, keyword, now)
		if err != nil {
			f.log.DebugObj("feed item skipped", "feed_item_skipped", map[string]any{
				"provider_id": cfg.ID,
				"keyword":     keyword,
				"index":       i,
				"error":       err.Error(),
			})
			continue
		}
		articles = append(articles, art)
	}

	f.log.InfoObj("feed fetched", "feed_fetch_done", map[string]any{
		"provider_id": cfg.ID,
		"keyword":     keyword,
		"articles":    len(articles),
	})
	return articles, nil
}

// BuildFeedURL substitutes the escaped keyword into a feed URL template.
func BuildFeedURL(template, keyword string) string {
	return strings.ReplaceAll(template, QueryToken, url.QueryEscape(keyword))
}

// buildFeedArticle normalizes one feed item, filling placeholders for missing fields.
func buildFeedArticle(item *gofeed.Item, providerID, keyword string, now time.Time) (domain.Article, error) {
	if item == nil {
		return domain.Article{}, errors.New("nil feed item")
	}

	link := orPlaceholder(item.Link, placeholderLink)
	published := orPlaceholder(firstNonEmpty(item.Published, item.Updated), PlaceholderUnknown)

	return domain.Article{
		ID:          hashURL(link),
		Title:       orPlaceholder(item.Title, placeholderTitle),
		Link:        link,
		PublishTime: published,
		Description: orPlaceholder(item.Description, placeholderDescription),
		Keyword:     keyword,
		Channel:     providerID,
		IsRecent:    recency.IsRecent(published, now),
	}, nil
}

// firstNonEmpty returns the first non-empty string from the given values.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func orPlaceholder(v, placeholder string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return placeholder
}
