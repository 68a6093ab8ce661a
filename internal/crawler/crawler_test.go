package crawler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/khobor-sandhan/internal/domain"
	"github.com/Adda-Baaj/khobor-sandhan/pkg/pacer"
	"github.com/Adda-Baaj/khobor-sandhan/pkg/providers"
)

type call struct {
	provider string
	keyword  string
	maxPages int
}

// stubFetcher answers by keyword and records every call.
type stubFetcher struct {
	typ     string
	results map[string][]domain.Article
	errs    map[string]error
	calls   *[]call
}

func (s *stubFetcher) ID() string { return s.typ }

func (s *stubFetcher) Fetch(_ context.Context, cfg providers.Provider, keyword string) ([]domain.Article, error) {
	*s.calls = append(*s.calls, call{provider: cfg.ID, keyword: keyword, maxPages: cfg.MaxPages})
	return s.results[keyword], s.errs[keyword]
}

func art(link, keyword, channel string) domain.Article {
	return domain.Article{Title: "t " + link, Link: link, Keyword: keyword, Channel: channel}
}

func newTestCrawler(feed, listing *stubFetcher, p pacer.Pacer) *Crawler {
	reg := providers.NewFetcherRegistry(feed, listing)
	return New(reg, Options{Pacer: p})
}

func TestCrawler_SearchMergesFeedThenListing(t *testing.T) {
	var calls []call
	feed := &stubFetcher{typ: providers.ProviderTypeFeed, calls: &calls, results: map[string][]domain.Article{
		"go": {art("1", "go", "rss"), art("2", "go", "rss")},
	}}
	listing := &stubFetcher{typ: providers.ProviderTypeListing, calls: &calls, results: map[string][]domain.Article{
		"go": {art("2", "go", "html"), art("3", "go", "html"), art("1", "go", "html")},
	}}

	c := newTestCrawler(feed, listing, &pacer.Nop{})
	got := c.Search(context.Background(), "go")

	require.Len(t, got, 3)
	assert.Equal(t, []string{"1", "2", "3"}, links(got))
	assert.Equal(t, "rss", got[0].Channel)
	assert.Equal(t, "rss", got[1].Channel)
	assert.Equal(t, "html", got[2].Channel)

	require.Len(t, calls, 2)
	assert.Equal(t, "google-news-rss", calls[0].provider)
	assert.Equal(t, "google-news-html", calls[1].provider)
}

func TestCrawler_SearchKeepsResultsOnProviderErrors(t *testing.T) {
	var calls []call
	feed := &stubFetcher{typ: providers.ProviderTypeFeed, calls: &calls,
		errs: map[string]error{"go": &providers.RetrievalError{Provider: "rss", Keyword: "go", Err: errors.New("timeout")}},
	}
	listing := &stubFetcher{typ: providers.ProviderTypeListing, calls: &calls,
		results: map[string][]domain.Article{"go": {art("a", "go", "html")}},
		errs:    map[string]error{"go": &providers.RetrievalError{Provider: "html", Keyword: "go", Page: 2, Err: providers.ErrBlocked}},
	}

	c := newTestCrawler(feed, listing, &pacer.Nop{})
	got := c.Search(context.Background(), "go")
	assert.Equal(t, []string{"a"}, links(got))
}

func TestCrawler_RunAllAccumulatesWithoutCrossKeywordDedupe(t *testing.T) {
	var calls []call
	feed := &stubFetcher{typ: providers.ProviderTypeFeed, calls: &calls, results: map[string][]domain.Article{
		"alpha": {art("shared", "alpha", "rss")},
		"beta":  {art("shared", "beta", "rss"), art("b1", "beta", "rss")},
	}}
	listing := &stubFetcher{typ: providers.ProviderTypeListing, calls: &calls, results: map[string][]domain.Article{}}

	p := &pacer.Nop{}
	reg := providers.NewFetcherRegistry(feed, listing)
	c := New(reg, Options{Pacer: p, KeywordDelayMin: time.Second, KeywordDelayMax: 2 * time.Second})

	got := c.RunAll(context.Background(), []string{"alpha", "beta", "gamma"}, 3)

	assert.Equal(t, []string{"shared", "shared", "b1"}, links(got))
	assert.Equal(t, "alpha", got[0].Keyword)
	assert.Equal(t, "beta", got[1].Keyword)

	// one pause between each pair of keywords, none after the last
	require.Len(t, p.Calls, 2)
	assert.Equal(t, [2]time.Duration{time.Second, 2 * time.Second}, p.Calls[0])

	for _, cl := range calls {
		if cl.provider == "google-news-html" {
			assert.Equal(t, 3, cl.maxPages)
		}
	}
}

func TestCrawler_RunAllStopsOnCancelledContext(t *testing.T) {
	var calls []call
	feed := &stubFetcher{typ: providers.ProviderTypeFeed, calls: &calls}
	listing := &stubFetcher{typ: providers.ProviderTypeListing, calls: &calls}
	c := newTestCrawler(feed, listing, &pacer.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := c.RunAll(ctx, []string{"a", "b"}, 1)
	assert.Empty(t, got)
	assert.Empty(t, calls)
}

func TestCrawler_SkipsDisabledProviders(t *testing.T) {
	var calls []call
	feed := &stubFetcher{typ: providers.ProviderTypeFeed, calls: &calls}
	listing := &stubFetcher{typ: providers.ProviderTypeListing, calls: &calls}

	disabled := false
	reg := providers.NewFetcherRegistry(feed, listing)
	c := New(reg, Options{
		Pacer: &pacer.Nop{},
		Providers: []providers.Provider{
			{ID: "rss", Type: providers.ProviderTypeFeed, Enabled: &disabled},
			{ID: "html", Type: providers.ProviderTypeListing},
		},
	})

	c.Search(context.Background(), "go")
	require.Len(t, calls, 1)
	assert.Equal(t, "html", calls[0].provider)
	assert.NotEmpty(t, c.RunID())
}

func links(articles []domain.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.Link
	}
	return out
}

func ExampleDedupe() {
	in := []domain.Article{{Title: "A", Link: "1"}, {Title: "B", Link: "2"}, {Title: "C", Link: "1"}}
	for _, a := range Dedupe(in) {
		fmt.Println(a.Title)
	}
	// Output:
	// A
	// B
}
