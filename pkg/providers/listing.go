package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Adda-Baaj/khobor-sandhan/internal/domain"
	"github.com/Adda-Baaj/khobor-sandhan/internal/logger"
	"github.com/Adda-Baaj/khobor-sandhan/pkg/pacer"
)

var (
	errNoTitle = errors.New("container has no title")
	errNoLink  = errors.New("container has no usable link")
)

// listingFetcher implements Fetcher for paginated HTML search result listings.
type listingFetcher struct {
	client HTTPClient
	pacer  pacer.Pacer
	log    logger.Logger
}

// ListingFetcher exposes page-bounded listing retrieval on top of Fetcher.
type ListingFetcher interface {
	Fetcher
	FetchListing(ctx context.Context, cfg Provider, keyword string, maxPages int) ([]domain.Article, error)
}

// NewListingFetcher builds a Fetcher for HTML result listings. p paces requests between pages.
func NewListingFetcher(client HTTPClient, p pacer.Pacer, log logger.Logger) ListingFetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	if p == nil {
		p = pacer.NewRandom()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &listingFetcher{client: client, pacer: p, log: log}
}

// ID returns the provider type for the listing fetcher.
func (f *listingFetcher) ID() string {
	return ProviderTypeListing
}

// Fetch walks up to cfg.MaxPages result pages for keyword.
func (f *listingFetcher) Fetch(ctx context.Context, cfg Provider, keyword string) ([]domain.Article, error) {
	return f.FetchListing(ctx, cfg, keyword, cfg.MaxPages)
}

// FetchListing walks result pages until maxPages, an empty or low-yield page, a block page,
// or a failed request. Articles gathered before the stop are always returned; the error, if any,
// is a *RetrievalError.
func (f *listingFetcher) FetchListing(ctx context.Context, cfg Provider, keyword string, maxPages int) ([]domain.Article, error) {
	if !strings.EqualFold(cfg.Type, ProviderTypeListing) {
		return nil, fmt.Errorf("listing fetcher received incompatible provider type %q", cfg.Type)
	}

	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, &RetrievalError{Provider: cfg.ID, Err: errEmptyKeyword}
	}

	origin := originOf(cfg.SourceURL)
	headers := Headers(cfg)

	var all []domain.Article
	for page := 0; page < maxPages; page++ {
		pageURL, err := BuildListingURL(cfg, keyword, page)
		if err != nil {
			return all, &RetrievalError{Provider: cfg.ID, Keyword: keyword, Page: page + 1, Err: err}
		}

		f.log.DebugObj("fetching listing page", "listing_page_start", map[string]any{
			"provider_id": cfg.ID,
			"keyword":     keyword,
			"page":        page + 1,
			"url":         pageURL,
		})

		body, err := fetchDocument(ctx, f.client, pageURL, cfg.Timeout, headers)
		if err != nil {
			return all, &RetrievalError{Provider: cfg.ID, Keyword: keyword, Page: page + 1, Err: err}
		}

		if phrase, blocked := detectBlock(body, cfg.BlockPhrases); blocked {
			return all, &RetrievalError{
				Provider: cfg.ID,
				Keyword:  keyword,
				Page:     page + 1,
				Err:      fmt.Errorf("%w: matched %q", ErrBlocked, phrase),
			}
		}

		pageArticles, matched, err := f.parsePage(body, cfg, keyword, origin)
		if err != nil {
			return all, &RetrievalError{Provider: cfg.ID, Keyword: keyword, Page: page + 1, Err: err}
		}
		if !matched {
			f.log.InfoObj("no result containers on page", "listing_page_empty", map[string]any{
				"provider_id": cfg.ID,
				"keyword":     keyword,
				"page":        page + 1,
			})
			break
		}

		all = append(all, pageArticles...)
		f.log.InfoObj("listing page parsed", "listing_page_done", map[string]any{
			"provider_id": cfg.ID,
			"keyword":     keyword,
			"page":        page + 1,
			"articles":    len(pageArticles),
		})

		if len(pageArticles) < cfg.MinPageYield {
			break
		}

		if page < maxPages-1 {
			delay, err := f.pacer.Pause(ctx, cfg.DelayMin, cfg.DelayMax)
			if err != nil {
				return all, &RetrievalError{Provider: cfg.ID, Keyword: keyword, Page: page + 1, Err: err}
			}
			f.log.DebugObj("paused before next page", "listing_page_delay", map[string]any{
				"provider_id": cfg.ID,
				"keyword":     keyword,
				"delay_ms":    delay.Milliseconds(),
			})
		}
	}

	return all, nil
}

// BuildListingURL returns the result-page URL for the zero-based page index.
func BuildListingURL(cfg Provider, keyword string, page int) (string, error) {
	u, err := url.Parse(cfg.SourceURL)
	if err != nil {
		return "", fmt.Errorf("parse source url: %w", err)
	}

	size := cfg.PageSize
	if size <= 0 {
		size = defaultPageSize
	}

	q := u.Query()
	for k, v := range cfg.Params {
		q.Set(k, v)
	}
	q.Set("q", keyword)
	q.Set("start", strconv.Itoa(page*size))
	q.Set("num", strconv.Itoa(size))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// detectBlock reports the first block phrase found in body, ignoring case.
func detectBlock(body []byte, phrases []string) (string, bool) {
	lower := bytes.ToLower(body)
	for _, phrase := range phrases {
		p := strings.ToLower(strings.TrimSpace(phrase))
		if p == "" {
			continue
		}
		if bytes.Contains(lower, []byte(p)) {
			return phrase, true
		}
	}
	return "", false
}

// parsePage extracts articles from one result page. matched is false when no container selector
// found anything.
func (f *listingFetcher) parsePage(body []byte, cfg Provider, keyword, origin string) ([]domain.Article, bool, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("parse html: %w", err)
	}

	containers := selectContainers(doc.Selection, cfg.ContainerSelectors)
	if containers == nil {
		return nil, false, nil
	}

	articles := make([]domain.Article, 0, containers.Length())
	containers.Each(func(i int, s *goquery.Selection) {
		art, err := extractListingArticle(s, cfg, keyword, origin)
		if err != nil {
			f.log.DebugObj("listing container skipped", "listing_container_skipped", map[string]any{
				"provider_id": cfg.ID,
				"keyword":     keyword,
				"index":       i,
				"error":       err.Error(),
			})
			return
		}
		articles = append(articles, art)
	})

	return articles, true, nil
}

// selectContainers returns the matches of the first selector that matches anything.
func selectContainers(root *goquery.Selection, selectors []string) *goquery.Selection {
	for _, sel := range selectors {
		if found := root.Find(sel); found.Length() > 0 {
			return found
		}
	}
	return nil
}

// firstMatchText returns the text of the first element matched by the earliest matching selector.
func firstMatchText(s *goquery.Selection, selectors []string) (string, bool) {
	for _, sel := range selectors {
		if node := s.Find(sel).First(); node.Length() > 0 {
			return cleanText(node.Text()), true
		}
	}
	return "", false
}

// extractListingArticle builds an article from one result container.
func extractListingArticle(s *goquery.Selection, cfg Provider, keyword, origin string) (domain.Article, error) {
	title, _ := firstMatchText(s, cfg.TitleSelectors)
	if title == "" {
		return domain.Article{}, errNoTitle
	}

	href, ok := s.Find("a[href]").First().Attr("href")
	if !ok {
		return domain.Article{}, errNoLink
	}
	link, ok := NormalizeLink(href, origin)
	if !ok {
		return domain.Article{}, errNoLink
	}

	published, _ := firstMatchText(s, cfg.TimeSelectors)
	if published == "" {
		published = PlaceholderUnknown
	}

	return domain.Article{
		ID:          hashURL(link),
		Title:       title,
		Link:        link,
		PublishTime: published,
		Keyword:     keyword,
		Channel:     cfg.ID,
		// the listing is already restricted to the past day server-side
		IsRecent: true,
	}, nil
}
