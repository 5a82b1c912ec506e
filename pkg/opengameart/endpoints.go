package opengameart

import (
	"fmt"
	"net/url"
	"strings"

	"audiofetch/pkg/catalog"
	"audiofetch/pkg/config"
)

const (
	// artTypeParam and licenseParam are the bracketed multi-value filters of
	// the advanced search form, already percent-encoded
	artTypeParam = "field_art_type_tid%5B%5D"
	licenseParam = "field_art_licenses_tid%5B%5D"
)

// Endpoints builds page URLs for the asset site
type Endpoints struct {
	base       *url.URL
	searchPath string
	artTypes   []string
	licenses   []string
	sortBy     string
	sortOrder  string
}

// NewEndpoints creates Endpoints from site settings
func NewEndpoints(site config.SiteConfig) (*Endpoints, error) {
	base, err := url.Parse(strings.TrimRight(site.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", site.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", site.BaseURL)
	}

	return &Endpoints{
		base:       base,
		searchPath: site.SearchPath,
		artTypes:   site.ArtTypes,
		licenses:   site.Licenses,
		sortBy:     site.SortBy,
		sortOrder:  site.SortOrder,
	}, nil
}

// BaseURL returns the site root without a trailing slash
func (e *Endpoints) BaseURL() string {
	return e.base.String()
}

// SearchURL returns the advanced-search URL for a free-text query.
// Spaces are encoded as %20 and the filters keep their fixed order.
func (e *Endpoints) SearchURL(query string) string {
	var b strings.Builder
	b.WriteString(e.BaseURL())
	b.WriteString(e.searchPath)
	b.WriteString("?keys=")
	b.WriteString(escapeKeys(query))

	for _, t := range e.artTypes {
		fmt.Fprintf(&b, "&%s=%s", artTypeParam, url.QueryEscape(t))
	}
	for _, l := range e.licenses {
		fmt.Fprintf(&b, "&%s=%s", licenseParam, url.QueryEscape(l))
	}
	if e.sortBy != "" {
		fmt.Fprintf(&b, "&sort_by=%s", url.QueryEscape(e.sortBy))
	}
	if e.sortOrder != "" {
		fmt.Fprintf(&b, "&sort_order=%s", url.QueryEscape(e.sortOrder))
	}

	return b.String()
}

// TargetURL returns the page to fetch for a query: direct content URLs are
// used as they are, anything else becomes a search.
func (e *Endpoints) TargetURL(query string) string {
	if catalog.IsURL(query) {
		return strings.TrimSpace(query)
	}
	return e.SearchURL(query)
}

// Resolve turns a possibly relative link into an absolute URL on the site
func (e *Endpoints) Resolve(link string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", fmt.Errorf("invalid link %q: %w", link, err)
	}
	return e.base.ResolveReference(ref).String(), nil
}

func escapeKeys(query string) string {
	return strings.ReplaceAll(url.QueryEscape(query), "+", "%20")
}
