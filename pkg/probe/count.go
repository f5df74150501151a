package probe

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	errs "twharvest/pkg/errors"
)

// countAttr carries the exact count on profile pages that abbreviate the text
const countAttr = "data-count"

// ErrNoCount is returned when no selector yields a readable count
var ErrNoCount = errors.New("post count not found")

// PostCount returns the first count found under selectors, in order. The
// data-count attribute wins over the element text.
func PostCount(doc *goquery.Document, selectors []string) (int, error) {
	for _, sel := range selectors {
		var (
			count int
			found bool
		)
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if attr, ok := s.Attr(countAttr); ok {
				if n, err := ParseCount(attr); err == nil {
					count, found = n, true
					return false
				}
			}
			if n, err := ParseCount(s.Text()); err == nil {
				count, found = n, true
				return false
			}
			return true
		})
		if found {
			return count, nil
		}
	}
	return 0, errs.New(errs.ErrorTypeProbe, "no count selector matched", ErrNoCount)
}

// ParseCount reads counts as rendered on profile pages: "1234", "1,234",
// "1.234", "3.1K", "2M".
func ParseCount(s string) (int, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty count")
	}

	mult := 1.0
	switch {
	case strings.HasSuffix(s, "K"):
		mult, s = 1e3, strings.TrimSpace(strings.TrimSuffix(s, "K"))
	case strings.HasSuffix(s, "M"):
		mult, s = 1e6, strings.TrimSpace(strings.TrimSuffix(s, "M"))
	case strings.HasSuffix(s, "B"):
		mult, s = 1e9, strings.TrimSpace(strings.TrimSuffix(s, "B"))
	}

	if mult == 1 {
		// Thousands separators only; a plain count has no fraction
		s = strings.NewReplacer(",", "", ".", "", " ", "", "\u00a0", "").Replace(s)
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid count %q", s)
		}
		return n, nil
	}

	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("invalid count %q", s)
	}
	return int(math.Round(f * mult)), nil
}
