package providers

import (
	"net/url"
	"strings"
)

const (
	redirectPrefix     = "/url?q="
	searchResultPrefix = "/search?q="
)

// NormalizeLink turns a listing href into an absolute article URL.
// Redirect wrappers are unwrapped, links back into the search results are rejected, root-relative
// paths are resolved against origin, and script links are rejected.
func NormalizeLink(href, origin string) (string, bool) {
	link := strings.TrimSpace(href)
	if link == "" {
		return "", false
	}

	switch {
	case strings.HasPrefix(link, redirectPrefix):
		target := strings.TrimPrefix(link, redirectPrefix)
		if i := strings.IndexByte(target, '&'); i >= 0 {
			target = target[:i]
		}
		if decoded, err := url.PathUnescape(target); err == nil {
			target = decoded
		}
		link = target
	case strings.HasPrefix(link, searchResultPrefix):
		return "", false
	case strings.HasPrefix(link, "//"):
		link = schemeOf(origin) + ":" + link
	case strings.HasPrefix(link, "/"):
		link = strings.TrimSuffix(origin, "/") + link
	}

	if link == "" || strings.Contains(strings.ToLower(link), "javascript:") {
		return "", false
	}
	return link, true
}

// originOf returns scheme://host for raw.
func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func schemeOf(origin string) string {
	if u, err := url.Parse(origin); err == nil && u.Scheme != "" {
		return u.Scheme
	}
	return "https"
}
