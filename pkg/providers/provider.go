package providers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Adda-Baaj/khobor-sandhan/internal/domain"
	"github.com/Adda-Baaj/khobor-sandhan/pkg/httpclient"
)

const (
	// Supported provider types.
	ProviderTypeFeed    = "feed"
	ProviderTypeListing = "listing"

	// Placeholder query token in feed source URLs.
	QueryToken = "{query}"

	defaultFeedProviderID    = "google-news-rss"
	defaultListingProviderID = "google-news-html"

	defaultFeedURL    = "https://news.google.com/rss/search?q={query}&hl=en&gl=US&ceid=US:en"
	defaultListingURL = "https://www.google.com/search"

	defaultFeedTimeout    = 10 * time.Second
	defaultListingTimeout = 15 * time.Second
	defaultMaxResults     = 50
	defaultMaxPages       = 5
	defaultPageSize       = 10
	defaultMinPageYield   = 5
	defaultPageDelayMin   = 3 * time.Second
	defaultPageDelayMax   = 7 * time.Second

	// PlaceholderUnknown marks a publish time that could not be extracted.
	PlaceholderUnknown = "Unknown"
)

var defaultListingParams = map[string]string{"tbm": "nws", "tbs": "qdr:d1"}

// HTTPClient is the transport the fetchers call into.
type HTTPClient = httpclient.Client

// HTTPResponse is what HTTPClient returns.
type HTTPResponse = httpclient.Response

// Fetcher retrieves articles for a keyword from one kind of provider.
type Fetcher interface {
	ID() string
	Fetch(ctx context.Context, cfg Provider, keyword string) ([]domain.Article, error)
}

// FetcherRegistry resolves the Fetcher responsible for a provider.
type FetcherRegistry interface {
	FetcherFor(cfg Provider) (Fetcher, error)
}

// Provider describes one retrieval channel. Selectors, phrases and pacing live here so a
// layout change is a configuration change.
type Provider struct {
	ID        string            `mapstructure:"id" yaml:"id"`
	Type      string            `mapstructure:"type" yaml:"type"`
	SourceURL string            `mapstructure:"source_url" yaml:"source_url"`
	Enabled   *bool             `mapstructure:"enabled" yaml:"enabled"`
	Headers   map[string]string `mapstructure:"headers" yaml:"headers"`
	Params    map[string]string `mapstructure:"params" yaml:"params"`
	Timeout   time.Duration     `mapstructure:"timeout" yaml:"timeout"`

	// feed
	MaxResults int `mapstructure:"max_results" yaml:"max_results"`

	// listing
	MaxPages           int           `mapstructure:"max_pages" yaml:"max_pages"`
	PageSize           int           `mapstructure:"page_size" yaml:"page_size"`
	MinPageYield       int           `mapstructure:"min_page_yield" yaml:"min_page_yield"`
	DelayMin           time.Duration `mapstructure:"delay_min" yaml:"delay_min"`
	DelayMax           time.Duration `mapstructure:"delay_max" yaml:"delay_max"`
	ContainerSelectors []string      `mapstructure:"container_selectors" yaml:"container_selectors"`
	TitleSelectors     []string      `mapstructure:"title_selectors" yaml:"title_selectors"`
	TimeSelectors      []string      `mapstructure:"time_selectors" yaml:"time_selectors"`
	BlockPhrases       []string      `mapstructure:"block_phrases" yaml:"block_phrases"`
}

// DefaultProviders returns the feed channel followed by the listing channel.
func DefaultProviders() []Provider {
	return []Provider{
		Sanitize(Provider{ID: defaultFeedProviderID, Type: ProviderTypeFeed}),
		Sanitize(Provider{ID: defaultListingProviderID, Type: ProviderTypeListing}),
	}
}

// DefaultContainerSelectors are tried in order; the first with any match is used.
func DefaultContainerSelectors() []string {
	return []string{
		"div.SoaBEf",
		"div.dbsr",
		"div.g",
		"div.MjjYud",
		"div[data-sokoban-container]",
		"article",
	}
}

// DefaultTitleSelectors locate the headline inside a result container.
func DefaultTitleSelectors() []string {
	return []string{"h3", ".DKV0Md", ".LC20lb", ".JheGif", ".n0jPhd"}
}

// DefaultTimeSelectors locate the relative publish-time label inside a result container.
func DefaultTimeSelectors() []string {
	return []string{".LfVVr", ".f", ".OSrXXb", ".WG9SHd", ".ZE0LJd"}
}

// DefaultBlockPhrases signal that the source has flagged the traffic as automated.
func DefaultBlockPhrases() []string {
	return []string{"unusual traffic", "captcha"}
}

// Sanitize trims fields and fills type-specific defaults.
func Sanitize(cfg Provider) Provider {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))
	cfg.SourceURL = strings.TrimSpace(cfg.SourceURL)
	cfg.Headers = sanitizeMap(cfg.Headers)
	cfg.Params = sanitizeMap(cfg.Params)

	if cfg.Enabled == nil {
		def := true
		cfg.Enabled = &def
	}

	switch cfg.Type {
	case ProviderTypeFeed:
		if cfg.SourceURL == "" {
			cfg.SourceURL = defaultFeedURL
		}
		if cfg.Timeout <= 0 {
			cfg.Timeout = defaultFeedTimeout
		}
		if cfg.MaxResults <= 0 {
			cfg.MaxResults = defaultMaxResults
		}
	case ProviderTypeListing:
		if cfg.SourceURL == "" {
			cfg.SourceURL = defaultListingURL
		}
		if cfg.Timeout <= 0 {
			cfg.Timeout = defaultListingTimeout
		}
		cfg.Params = withListingScope(cfg.Params)
		if cfg.MaxPages <= 0 {
			cfg.MaxPages = defaultMaxPages
		}
		if cfg.PageSize <= 0 {
			cfg.PageSize = defaultPageSize
		}
		if cfg.MinPageYield <= 0 {
			cfg.MinPageYield = defaultMinPageYield
		}
		if cfg.DelayMin <= 0 && cfg.DelayMax <= 0 {
			cfg.DelayMin, cfg.DelayMax = defaultPageDelayMin, defaultPageDelayMax
		}
		cfg.ContainerSelectors = orDefault(cfg.ContainerSelectors, DefaultContainerSelectors)
		cfg.TitleSelectors = orDefault(cfg.TitleSelectors, DefaultTitleSelectors)
		cfg.TimeSelectors = orDefault(cfg.TimeSelectors, DefaultTimeSelectors)
		cfg.BlockPhrases = orDefault(cfg.BlockPhrases, DefaultBlockPhrases)
	}

	return cfg
}

// Validate checks that a sanitized provider can be fetched.
func Validate(cfg Provider) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	switch cfg.Type {
	case ProviderTypeFeed:
		if !strings.Contains(cfg.SourceURL, QueryToken) {
			return fmt.Errorf("source_url for feed provider %q must contain %s", cfg.ID, QueryToken)
		}
	case ProviderTypeListing:
		if len(cfg.ContainerSelectors) == 0 {
			return fmt.Errorf("container_selectors required for provider %q", cfg.ID)
		}
		if cfg.DelayMax < cfg.DelayMin {
			return fmt.Errorf("delay_max below delay_min for provider %q", cfg.ID)
		}
	case "":
		return fmt.Errorf("type is required for provider %q", cfg.ID)
	default:
		return fmt.Errorf("type %q not supported for provider %q", cfg.Type, cfg.ID)
	}

	u, err := url.Parse(strings.ReplaceAll(cfg.SourceURL, QueryToken, "q"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("source_url %q is not an absolute url for provider %q", cfg.SourceURL, cfg.ID)
	}
	return nil
}

// EnabledValue returns the enabled flag defaulting to true.
func (cfg Provider) EnabledValue() bool {
	if cfg.Enabled == nil {
		return true
	}
	return *cfg.Enabled
}

// Headers returns a copy of the provider's request headers.
func Headers(cfg Provider) map[string]string {
	if len(cfg.Headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		out[k] = v
	}
	return out
}

// withListingScope fills the news and past-day scope under any user params that do not set them.
// Listing records are flagged recent on the strength of the past-day scope.
func withListingScope(params map[string]string) map[string]string {
	out := make(map[string]string, len(params)+2)
	for k, v := range params {
		out[k] = v
	}
	for k, v := range defaultListingParams {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}

func sanitizeMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		out[key] = strings.TrimSpace(v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func orDefault(values []string, def func() []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def()
	}
	return out
}
