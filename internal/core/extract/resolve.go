package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// fullSizeToken is the CDN marker for the largest image variant served for a
// listing photo.
const fullSizeToken = "s-l1600"

// fullSizeAttrs are the data attributes that carry a full-size source when the
// page exposes one, in priority order.
var fullSizeAttrs = []string{"data-zoom-src", "data-original"}

// thumbSizes are the size markers the CDN uses for carousel thumbnails.
var thumbSizes = map[string]bool{
	"64": true, "96": true, "140": true, "225": true, "300": true,
	"400": true, "500": true, "640": true, "960": true, "1200": true,
}

var (
	sizeTokenRe = regexp.MustCompile(`s-l(\d+)`)
	cdnPathRe   = regexp.MustCompile(`^(.*/images/[^/]+/[^/]+/)s-l\d+(.*)$`)
	magnitudeRe = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)
)

// usable reports whether an attribute value is a real source. Inline
// data-URI placeholders are rejected so the chain moves on.
func usable(v string) bool {
	return v != "" && !strings.HasPrefix(v, "data:")
}

// bestFromSrcset picks the srcset entry with the largest numeric descriptor
// (width or density). Entries without a descriptor count as 0; a tie keeps
// the first-seen entry.
func bestFromSrcset(srcset string) string {
	best := ""
	bestWeight := -1.0
	for _, part := range strings.Split(srcset, ",") {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) == 0 || !usable(fields[0]) {
			continue
		}
		weight := 0.0
		if len(fields) > 1 {
			if m := magnitudeRe.FindString(fields[1]); m != "" {
				weight, _ = strconv.ParseFloat(m, 64)
			}
		}
		if weight > bestWeight {
			best = fields[0]
			bestWeight = weight
		}
	}
	return best
}

// upgradeURL rewrites a resolved URL to the full-size CDN variant. A known
// thumbnail marker is mapped directly; otherwise a URL in the CDN path form
// .../images/<id>/<id2>/s-l<size>/<filename> gets its size segment rewritten,
// keeping the trailing filename. Already-full-size URLs come back unchanged.
func upgradeURL(u string) string {
	if m := sizeTokenRe.FindStringSubmatch(u); m != nil {
		if thumbSizes[m[1]] {
			return sizeTokenRe.ReplaceAllString(u, fullSizeToken)
		}
		if m[1] == "1600" {
			return u
		}
	}
	if m := cdnPathRe.FindStringSubmatch(u); m != nil {
		return m[1] + fullSizeToken + m[2]
	}
	return u
}
