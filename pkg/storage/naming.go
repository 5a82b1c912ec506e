package storage

import (
	"net/url"
	"path"
	"strconv"
	"strings"
)

// KeyFor derives the storage key for the candidate at position index of a
// query's extracted links. The name depends only on its inputs, so a re-run
// over the same page maps each link to the same file.
func KeyFor(category, query string, index int, link string) Key {
	return Key{
		Category: category,
		Filename: QuerySlug(query) + "_" + strconv.Itoa(index) + "_" + Basename(link),
	}
}

// QuerySlug turns a query into a file-name fragment. URL queries use their
// last path segment.
func QuerySlug(query string) string {
	query = strings.TrimSpace(query)

	if u, err := url.Parse(query); err == nil && u.Scheme != "" && u.Host != "" {
		query = path.Base(strings.TrimRight(u.Path, "/"))
		if query == "." || query == "/" {
			query = u.Host
		}
	}

	if slug := sanitize(query); slug != "" {
		return slug
	}
	return "query"
}

// Basename returns the unescaped, sanitized last path element of a link
func Basename(link string) string {
	p := link
	if u, err := url.Parse(link); err == nil {
		p = u.Path
	}

	name := path.Base(p)
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	if name = sanitize(name); name == "" || name == "." || name == ".." {
		return "audio"
	}
	return name
}

// sanitize keeps letters, digits, dot, dash and underscore, replacing other
// runs of characters with a single underscore
func sanitize(s string) string {
	var b strings.Builder
	lastUnderscore := false

	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}

	return strings.Trim(b.String(), "_.")
}
