// Package catalog holds the static table of categories and the queries that
// feed each of them.
package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Category names a download subdirectory and the queries collected into it
type Category struct {
	Name    string   `yaml:"name" json:"name"`
	Queries []string `yaml:"queries" json:"queries"`
}

// Catalog is an ordered list of categories. Callers treat it as read-only.
type Catalog []Category

// Default returns the built-in table: free-text searches followed by
// hand-picked content pages for each category.
func Default() Catalog {
	return Catalog{
		{
			Name: "ambiance",
			Queries: []string{
				"forest ambiance",
				"cave ambiance",
				"ocean waves ambiance",
				"wind ambiance",
				"https://opengameart.org/content/ambient-wind",
				"https://opengameart.org/content/night-forest-ambience",
				"https://opengameart.org/content/cave-ambiance",
				"https://opengameart.org/content/ocean-sounds",
			},
		},
		{
			Name: "npc",
			Queries: []string{
				"monster growl",
				"skeleton rattle",
				"zombie groan",
				"bat screech",
				"monster roar",
				"https://opengameart.org/content/monster-grunt-pack",
				"https://opengameart.org/content/skeleton-sounds",
				"https://opengameart.org/content/zombie-groans",
				"https://opengameart.org/content/creature-sfx-pack",
			},
		},
	}
}

// Names returns the category names in order
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for _, cat := range c {
		names = append(names, cat.Name)
	}
	return names
}

// Lookup finds a category by name
func (c Catalog) Lookup(name string) (Category, bool) {
	for _, cat := range c {
		if cat.Name == name {
			return cat, true
		}
	}
	return Category{}, false
}

// Filter returns a catalog restricted to the named categories, keeping the
// original order. An empty name list returns the catalog unchanged.
func (c Catalog) Filter(names []string) (Catalog, error) {
	if len(names) == 0 {
		return c, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := c.Lookup(n); !ok {
			return nil, fmt.Errorf("unknown category %q", n)
		}
		wanted[n] = true
	}

	filtered := make(Catalog, 0, len(names))
	for _, cat := range c {
		if wanted[cat.Name] {
			filtered = append(filtered, cat)
		}
	}
	return filtered, nil
}

// QueryCount returns the total number of queries across categories
func (c Catalog) QueryCount() int {
	total := 0
	for _, cat := range c {
		total += len(cat.Queries)
	}
	return total
}

// Validate checks names are usable as directory names and queries are non-empty
func (c Catalog) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(c))

	if len(c) == 0 {
		errs = append(errs, errors.New("catalog has no categories"))
	}

	for _, cat := range c {
		switch {
		case strings.TrimSpace(cat.Name) == "":
			errs = append(errs, errors.New("category name is required"))
			continue
		case strings.ContainsAny(cat.Name, `/\`) || cat.Name == "." || cat.Name == "..":
			errs = append(errs, fmt.Errorf("category %q is not a valid directory name", cat.Name))
		case seen[cat.Name]:
			errs = append(errs, fmt.Errorf("category %q is listed twice", cat.Name))
		}
		seen[cat.Name] = true

		for i, q := range cat.Queries {
			if strings.TrimSpace(q) == "" {
				errs = append(errs, fmt.Errorf("category %q: query %d is empty", cat.Name, i))
			}
		}
	}

	return errors.Join(errs...)
}

// IsURL reports whether a query is a direct content-page URL rather than a
// search term
func IsURL(query string) bool {
	u, err := url.Parse(strings.TrimSpace(query))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
