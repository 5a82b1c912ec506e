// Package extract pulls candidate audio links out of fetched HTML.
//
// Rules run in order and the first rule that yields at least one usable link
// wins. A link is usable when, after normalization, its path lies under the
// site's file-storage prefix.
package extract

import (
	"bytes"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	errs "audiofetch/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// AudioExtensions are the file types treated as audio
var AudioExtensions = []string{".ogg", ".mp3", ".wav", ".flac"}

// Rule extracts raw links from a page body, in document order
type Rule interface {
	Name() string
	Extract(body []byte) ([]string, error)
}

// AttributeRule reads an attribute from every element matching a CSS selector
type AttributeRule struct {
	RuleName  string
	Selector  string
	Attribute string
}

func (r AttributeRule) Name() string { return r.RuleName }

// Extract returns the non-empty attribute values in document order
func (r AttributeRule) Extract(body []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, errs.New(errs.ErrorTypeParsing, 0, "failed to parse HTML: %v", err)
	}

	var links []string
	doc.Find(r.Selector).Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr(r.Attribute); ok && strings.TrimSpace(v) != "" {
			links = append(links, strings.TrimSpace(v))
		}
	})
	return links, nil
}

// PatternRule returns the first non-empty capture group of every match of
// Pattern against the raw body. Matches are HTML-unescaped.
type PatternRule struct {
	RuleName string
	Pattern  *regexp.Regexp
}

func (r PatternRule) Name() string { return r.RuleName }

// Extract returns every captured link in match order
func (r PatternRule) Extract(body []byte) ([]string, error) {
	matches := r.Pattern.FindAllSubmatch(body, -1)
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		for _, group := range m[1:] {
			if len(group) > 0 {
				links = append(links, html.UnescapeString(string(group)))
				break
			}
		}
	}
	return links, nil
}

// PreviewRule matches the audio preview attribute carried by player widgets
func PreviewRule() Rule {
	return AttributeRule{
		RuleName:  "preview-attribute",
		Selector:  "[data-ogg-url]",
		Attribute: "data-ogg-url",
	}
}

// HrefRule matches href attributes that end in an audio extension. The
// value may contain spaces but not the quote that opened it.
func HrefRule() Rule {
	exts := make([]string, 0, len(AudioExtensions))
	for _, e := range AudioExtensions {
		exts = append(exts, regexp.QuoteMeta(strings.TrimPrefix(e, ".")))
	}
	ext := strings.Join(exts, "|")
	pattern := fmt.Sprintf(`(?i)href\s*=\s*(?:"([^"<>]+?\.(?:%s))"|'([^'<>]+?\.(?:%s))')`, ext, ext)

	return PatternRule{
		RuleName: "audio-href",
		Pattern:  regexp.MustCompile(pattern),
	}
}

// Result is the outcome of running a Chain over one page
type Result struct {
	// Rule names the rule that produced Links, empty when nothing matched
	Rule  string
	Links []string
}

// Chain is an ordered fallback list of rules with a path-prefix filter
type Chain struct {
	rules  []Rule
	prefix string
}

// NewChain creates a chain keeping only links under prefix
func NewChain(prefix string, rules ...Rule) *Chain {
	return &Chain{rules: rules, prefix: prefix}
}

// DefaultChain tries the preview attribute first and falls back to audio hrefs
func DefaultChain(prefix string) *Chain {
	return NewChain(prefix, PreviewRule(), HrefRule())
}

// Extract runs the rules in order and returns the first non-empty,
// prefix-filtered, de-duplicated link list
func (c *Chain) Extract(body []byte) (Result, error) {
	for _, rule := range c.rules {
		raw, err := rule.Extract(body)
		if err != nil {
			return Result{}, fmt.Errorf("rule %s: %w", rule.Name(), err)
		}

		links := c.filter(raw)
		if len(links) > 0 {
			return Result{Rule: rule.Name(), Links: links}, nil
		}
	}
	return Result{}, nil
}

func (c *Chain) filter(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	links := make([]string, 0, len(raw))

	for _, link := range raw {
		link = Normalize(link)
		if link == "" || seen[link] || !c.underPrefix(link) {
			continue
		}
		seen[link] = true
		links = append(links, link)
	}
	return links
}

func (c *Chain) underPrefix(link string) bool {
	if c.prefix == "" {
		return true
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return strings.HasPrefix(u.Path, c.prefix)
}

// Normalize trims a link and rewrites preview paths to the full file path
func Normalize(link string) string {
	link = strings.TrimSpace(link)
	return strings.Replace(link, "/audio_preview/", "/", 1)
}
