package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/khobor-sandhan/pkg/pacer"
)

func TestDefaultProviders_FeedThenListing(t *testing.T) {
	provs := DefaultProviders()
	require.Len(t, provs, 2)

	assert.Equal(t, ProviderTypeFeed, provs[0].Type)
	assert.Equal(t, ProviderTypeListing, provs[1].Type)
	for _, p := range provs {
		assert.NoError(t, Validate(p))
		assert.True(t, p.EnabledValue())
	}

	listing := provs[1]
	assert.Equal(t, DefaultContainerSelectors(), listing.ContainerSelectors)
	assert.Equal(t, 10, listing.PageSize)
	assert.Equal(t, 5, listing.MinPageYield)
	assert.Equal(t, 50, provs[0].MaxResults)
}

func TestSanitize_KeepsExplicitValues(t *testing.T) {
	disabled := false
	p := Sanitize(Provider{
		ID:                 " custom ",
		Type:               " LISTING ",
		SourceURL:          "https://search.example.com/find",
		Enabled:            &disabled,
		ContainerSelectors: []string{" ", "div.hit"},
		MinPageYield:       2,
		Headers:            map[string]string{" X-Key ": " v ", "": "dropped"},
	})

	assert.Equal(t, "custom", p.ID)
	assert.Equal(t, ProviderTypeListing, p.Type)
	assert.Equal(t, []string{"div.hit"}, p.ContainerSelectors)
	assert.Equal(t, 2, p.MinPageYield)
	assert.False(t, p.EnabledValue())
	assert.Equal(t, map[string]string{"X-Key": "v"}, Headers(p))
}

func TestSanitize_ListingScopeSurvivesPartialParams(t *testing.T) {
	p := Sanitize(Provider{ID: "html", Type: ProviderTypeListing, Params: map[string]string{"hl": "en"}})
	assert.Equal(t, map[string]string{"hl": "en", "tbm": "nws", "tbs": "qdr:d1"}, p.Params)

	p = Sanitize(Provider{ID: "html", Type: ProviderTypeListing, Params: map[string]string{"tbs": "qdr:h"}})
	assert.Equal(t, "qdr:h", p.Params["tbs"])
	assert.Equal(t, "nws", p.Params["tbm"])

	u, err := BuildListingURL(Sanitize(Provider{ID: "html", Type: ProviderTypeListing, Params: map[string]string{"hl": "en"}}), "rain", 0)
	require.NoError(t, err)
	assert.Contains(t, u, "tbs=qdr%3Ad1")
	assert.Contains(t, u, "hl=en")
}

func TestValidate(t *testing.T) {
	assert.Error(t, Validate(Provider{Type: ProviderTypeFeed}))
	assert.Error(t, Validate(Sanitize(Provider{ID: "x"})))
	assert.Error(t, Validate(Sanitize(Provider{ID: "x", Type: "sitemap"})))
	assert.Error(t, Validate(Sanitize(Provider{ID: "x", Type: ProviderTypeFeed, SourceURL: "https://example.com/rss"})))
	assert.Error(t, Validate(Sanitize(Provider{ID: "x", Type: ProviderTypeListing, SourceURL: "/relative"})))

	bad := Sanitize(Provider{ID: "x", Type: ProviderTypeListing})
	bad.DelayMin, bad.DelayMax = 5, 1
	assert.Error(t, Validate(bad))
}

func TestFetcherRegistry_ResolvesByType(t *testing.T) {
	reg := DefaultFetcherRegistry(&fakeClient{}, &pacer.Nop{}, nil)

	f, err := reg.FetcherFor(Provider{ID: "any", Type: "FEED"})
	require.NoError(t, err)
	assert.Equal(t, ProviderTypeFeed, f.ID())

	f, err = reg.FetcherFor(Provider{ID: "any", Type: ProviderTypeListing})
	require.NoError(t, err)
	assert.Equal(t, ProviderTypeListing, f.ID())

	_, err = reg.FetcherFor(Provider{ID: "any", Type: "sitemap"})
	assert.Error(t, err)
	_, err = reg.FetcherFor(Provider{ID: "any"})
	assert.Error(t, err)
}
