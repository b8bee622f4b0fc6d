package extract

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPage struct {
	html    string
	navErr  error
	visited []string
}

func (p *stubPage) Navigate(url string) error {
	p.visited = append(p.visited, url)
	return p.navErr
}

func (p *stubPage) Content() (string, error) { return p.html, nil }

func carouselHTML(imgs string) string {
	return fmt.Sprintf(`<html><body><div class="ux-image-carousel">%s</div></body></html>`, imgs)
}

func TestExtractMatchingOnly(t *testing.T) {
	page := &stubPage{html: carouselHTML(`
		<img alt="front view" src="https://i.ebayimg.com/images/g/aaa/s-l500.jpg">
		<img alt="back view" src="https://i.ebayimg.com/images/g/bbb/s-l500.jpg">
		<img alt="front detail" src="https://i.ebayimg.com/images/g/ccc/s-l500.jpg">
		<img src="https://i.ebayimg.com/images/g/ddd/s-l500.jpg">
	`)}
	svc := New(page)

	got, err := svc.Extract("https://www.ebay.com/itm/123456789", "front")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "front view", got[0].Alt)
	assert.Equal(t, "https://i.ebayimg.com/images/g/aaa/s-l1600.jpg", got[0].URL)
	assert.Equal(t, "front detail", got[1].Alt)
	assert.Equal(t, []string{"https://www.ebay.com/itm/123456789"}, page.visited)
}

func TestExtractDedupByAlt(t *testing.T) {
	page := &stubPage{html: carouselHTML(`
		<img alt="front view" src="https://i.ebayimg.com/images/g/aaa/s-l500.jpg">
		<img alt="front view" src="https://i.ebayimg.com/images/g/bbb/s-l500.jpg">
	`)}
	got, err := New(page).Extract("https://www.ebay.com/itm/1", "front")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://i.ebayimg.com/images/g/aaa/s-l1600.jpg", got[0].URL)
}

func TestExtractDedupByURL(t *testing.T) {
	// Same photo exposed twice with different alts, e.g. thumbnail strip plus
	// main stage: the resolved URL collapses them.
	page := &stubPage{html: carouselHTML(`
		<img alt="front view" src="https://i.ebayimg.com/images/g/aaa/s-l300.jpg">
		<img alt="front view thumbnail" src="https://i.ebayimg.com/images/g/aaa/s-l1600.jpg">
	`)}
	got, err := New(page).Extract("https://www.ebay.com/itm/1", "front")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "front view", got[0].Alt)
}

func TestExtractAttributePriority(t *testing.T) {
	tests := []struct {
		name string
		img  string
		want string
	}{
		{
			name: "zoom attribute beats everything",
			img:  `<img alt="front" data-zoom-src="https://cdn.test/zoom.jpg" srcset="https://cdn.test/a.jpg 640w" data-src="https://cdn.test/lazy.jpg" src="https://cdn.test/plain.jpg">`,
			want: "https://cdn.test/zoom.jpg",
		},
		{
			name: "srcset beats lazy and plain",
			img:  `<img alt="front" srcset="https://cdn.test/a.jpg 240w, https://cdn.test/b.jpg 960w" data-src="https://cdn.test/lazy.jpg" src="https://cdn.test/plain.jpg">`,
			want: "https://cdn.test/b.jpg",
		},
		{
			name: "lazy source beats plain",
			img:  `<img alt="front" data-src="https://cdn.test/lazy.jpg" src="https://cdn.test/plain.jpg">`,
			want: "https://cdn.test/lazy.jpg",
		},
		{
			name: "plain src as last resort",
			img:  `<img alt="front" src="https://cdn.test/plain.jpg">`,
			want: "https://cdn.test/plain.jpg",
		},
		{
			name: "placeholder zoom falls through to src",
			img:  `<img alt="front" data-zoom-src="data:image/gif;base64,R0lGOD" src="https://cdn.test/plain.jpg">`,
			want: "https://cdn.test/plain.jpg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := &stubPage{html: carouselHTML(tt.img)}
			got, err := New(page).Extract("https://www.ebay.com/itm/1", "front")
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].URL)
		})
	}
}

func TestExtractSkipsUnresolvableElement(t *testing.T) {
	page := &stubPage{html: carouselHTML(`
		<img alt="front placeholder" src="data:image/gif;base64,R0lGOD">
		<img alt="front real" src="https://cdn.test/real.jpg">
	`)}
	got, err := New(page).Extract("https://www.ebay.com/itm/1", "front")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "front real", got[0].Alt)
}

func TestExtractBroadFallback(t *testing.T) {
	// No carousel containers at all: the broad img[alt] pass takes over.
	page := &stubPage{html: `<html><body>
		<img alt="front view" src="https://cdn.test/front.jpg">
		<img alt="side view" src="https://cdn.test/side.jpg">
	</body></html>`}
	got, err := New(page).Extract("https://www.ebay.com/itm/1", "front")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://cdn.test/front.jpg", got[0].URL)
}

func TestExtractCarouselTakesPrecedenceOverBroad(t *testing.T) {
	// Decorative page images outside the carousel are not considered when the
	// carousel itself yields matches.
	page := &stubPage{html: `<html><body>
		<img alt="front banner" src="https://cdn.test/banner.jpg">
		<div class="ux-image-carousel">
			<img alt="front view" src="https://cdn.test/carousel.jpg">
		</div>
	</body></html>`}
	got, err := New(page).Extract("https://www.ebay.com/itm/1", "front")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://cdn.test/carousel.jpg", got[0].URL)
}

func TestExtractInvalidPattern(t *testing.T) {
	page := &stubPage{html: carouselHTML(`<img alt="front" src="https://cdn.test/a.jpg">`)}
	got, err := New(page).Extract("https://www.ebay.com/itm/1", "(unclosed")
	assert.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, page.visited, "invalid pattern should not navigate")
}

func TestExtractNavigationError(t *testing.T) {
	page := &stubPage{navErr: errors.New("net::ERR_TIMED_OUT")}
	got, err := New(page).Extract("https://www.ebay.com/itm/1", "front")
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestExtractNoMatchesIsNotAnError(t *testing.T) {
	page := &stubPage{html: carouselHTML(`<img alt="back view" src="https://cdn.test/a.jpg">`)}
	got, err := New(page).Extract("https://www.ebay.com/itm/1", "front")
	assert.NoError(t, err)
	assert.Empty(t, got)
}
