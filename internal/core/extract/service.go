package extract

import (
	"fmt"
	"regexp"
	"strings"

	"galleryscraper/internal/logger"

	"github.com/PuerkitoBio/goquery"
)

// Candidate is one matching carousel photo: the resolved full-size URL and
// the alt text that matched the task pattern.
type Candidate struct {
	URL string
	Alt string
}

// Pager is the browser surface the extractor needs: navigate the shared page
// and read back the rendered HTML.
type Pager interface {
	Navigate(url string) error
	Content() (string, error)
}

type Service struct {
	log  *logger.Logger
	page Pager
}

func New(page Pager) *Service {
	return &Service{log: logger.New("Extractor"), page: page}
}

// carouselSelectors are tried in order, most specific gallery regions first.
// Listing pages expose the carousel under several different containers
// depending on layout generation.
var carouselSelectors = []string{
	"#vi_main_img_fs img",
	".ux-image-carousel img",
	"#vi_main_img_fs_slider img",
	".vi-image-carousel-list img",
}

// Extract returns the matching carousel images for a listing page in
// discovery order, deduplicated by alt text and by resolved URL. An invalid
// pattern is a per-task warning, not an error; only a navigation or page-read
// failure is returned as an error.
func (s *Service) Extract(targetURL, pattern string) ([]Candidate, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		s.log.LogWarnf("invalid pattern %q: %v", pattern, err)
		return nil, nil
	}

	if err := s.page.Navigate(targetURL); err != nil {
		return nil, err
	}
	html, err := s.page.Content()
	if err != nil {
		return nil, fmt.Errorf("page content: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	return collect(doc, re), nil
}

// collect runs the selector strategies over the rendered document. The broad
// passes only run when the carousel-specific passes yielded nothing.
func collect(doc *goquery.Document, re *regexp.Regexp) []Candidate {
	acc := newAccumulator(re)
	for _, sel := range carouselSelectors {
		doc.Find(sel).Each(acc.consider)
	}
	if len(acc.out) == 0 {
		doc.Find("img[alt]").Each(acc.consider)
	}
	if len(acc.out) == 0 {
		doc.Find("img").Each(acc.consider)
	}
	return acc.out
}

type accumulator struct {
	re      *regexp.Regexp
	seenAlt map[string]struct{}
	seenURL map[string]struct{}
	out     []Candidate
}

func newAccumulator(re *regexp.Regexp) *accumulator {
	return &accumulator{
		re:      re,
		seenAlt: make(map[string]struct{}),
		seenURL: make(map[string]struct{}),
	}
}

// consider accepts an image element if its alt text matches and neither its
// alt text nor its resolved URL was accepted before. Elements that fail any
// step are skipped without affecting their siblings.
func (a *accumulator) consider(_ int, sel *goquery.Selection) {
	alt, ok := sel.Attr("alt")
	if !ok || alt == "" {
		return
	}
	if !a.re.MatchString(alt) {
		return
	}
	raw := resolveImageURL(sel)
	if raw == "" {
		return
	}
	u := upgradeURL(raw)
	if _, dup := a.seenAlt[alt]; dup {
		return
	}
	if _, dup := a.seenURL[u]; dup {
		return
	}
	a.seenAlt[alt] = struct{}{}
	a.seenURL[u] = struct{}{}
	a.out = append(a.out, Candidate{URL: u, Alt: alt})
}

// resolveImageURL walks the attribute priority chain: full-size data
// attributes, then the largest srcset entry, then the lazy-load source, then
// the plain src.
func resolveImageURL(sel *goquery.Selection) string {
	for _, attr := range fullSizeAttrs {
		if v, ok := sel.Attr(attr); ok && usable(strings.TrimSpace(v)) {
			return strings.TrimSpace(v)
		}
	}
	if v, ok := sel.Attr("srcset"); ok {
		if u := bestFromSrcset(v); u != "" {
			return u
		}
	}
	if v, ok := sel.Attr("data-src"); ok && usable(strings.TrimSpace(v)) {
		return strings.TrimSpace(v)
	}
	if v, ok := sel.Attr("src"); ok && usable(strings.TrimSpace(v)) {
		return strings.TrimSpace(v)
	}
	return ""
}
