package scraper

import (
	"regexp"
	"strconv"
	"strings"
)

// Price plausibility bounds. Anything above the ceiling is assumed to be a
// decimal-shift misparse; anything below the floor is assumed to be an
// over-stripped fragment (a rating, a count) rather than a real price.
const (
	maxPlausiblePrice = 500000
	minPlausiblePrice = 100
)

var (
	// Currency glyph immediately followed by digits with optional grouping
	// separators and up to two decimal digits.
	anchoredPriceRe = regexp.MustCompile(`(?i)(₹|\brs\.?|\binr\b|\$|€|£)\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)

	// Discount and savings annotations. A number living next to one of
	// these is a promotion callout, not the purchasable price.
	promoWordRe = regexp.MustCompile(`(?i)(\b(off|save|saving|savings|upto|discount)\b|up\s+to)`)

	// A grouped number with exactly two decimal digits, e.g. 25,998.00.
	// When a parse of such text comes out implausibly large, the decimal
	// point was dropped somewhere and the value is 100x too big.
	twoDecimalRe = regexp.MustCompile(`[0-9]+,[0-9]+\.[0-9]{2}(?:[^0-9]|$)`)

	// A standalone numeral with optional grouping and decimals, no
	// currency anchor required.
	bareNumberRe = regexp.MustCompile(`[0-9][0-9,]*(?:\.[0-9]{1,2})?`)

	strippableRe = regexp.MustCompile(`[^0-9.,]`)
)

// Context carries the request-scoped inputs the normalizer needs when it
// has to fall back to multi-candidate selection. Threaded explicitly
// through the call chain; never global.
type Context struct {
	URL          string
	Title        string
	PreferSecond bool
}

// Normalizer converts a raw matched price substring into a numeric value,
// defending against promotional noise and order-of-magnitude misparses.
// Stateless and safe for concurrent use.
type Normalizer struct{}

// NewNormalizer creates a price token normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize parses rawText into a price. The bool result is false when no
// valid number could be produced by any step.
func (n *Normalizer) Normalize(rawText string, nctx *Context) (float64, bool) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return 0, false
	}

	// Promotional text guard: "₹45,000 off" is a savings callout. Only a
	// currency-anchored number NOT attached to a promo word counts.
	if promoWordRe.MatchString(text) {
		if v, ok := n.anchoredAwayFromPromo(text); ok {
			return n.correctMagnitude(v, text), true
		}
		return 0, false
	}

	// Primary currency-anchored match.
	if v, ok := firstAnchoredPrice(text); ok {
		return n.correctMagnitude(v, text), true
	}

	// Generic strip-and-parse.
	if v, ok := stripAndParse(text); ok {
		v = n.correctMagnitude(v, text)
		// Too small to be a price: the strip probably glued a rating or a
		// count onto the front ("4.5 stars 1,299" -> 4.51). Re-scan the
		// original text for a standalone number of plausible size.
		if v < minPlausiblePrice {
			for _, raw := range bareNumberRe.FindAllString(text, -1) {
				if bv, ok := parseNumber(raw); ok && bv >= minPlausiblePrice {
					v = bv
					break
				}
			}
		}
		return v, true
	}

	// Multiple anchored numbers but nothing parseable as a whole: extract
	// them all in document order and let the selection policy pick.
	if cands := ExtractCandidates(text); len(cands) > 0 {
		preferSecond := nctx != nil && nctx.PreferSecond
		return SelectCandidate(cands, preferSecond).Value, true
	}

	return 0, false
}

// correctMagnitude applies the decimal-shift correction: a two-decimal
// grouped price like "25,998.00" must never come out as 2599800.
func (n *Normalizer) correctMagnitude(v float64, original string) float64 {
	if v > maxPlausiblePrice && twoDecimalRe.MatchString(original) {
		return v / 100
	}
	return v
}

// anchoredAwayFromPromo returns the first anchored price whose immediate
// neighborhood carries no discount annotation.
func (n *Normalizer) anchoredAwayFromPromo(text string) (float64, bool) {
	for _, loc := range anchoredPriceRe.FindAllStringSubmatchIndex(text, -1) {
		after := window(text, loc[1], 12)
		before := window(text, loc[0]-14, 14)
		if promoWordRe.MatchString(after) || promoWordRe.MatchString(before) {
			continue
		}
		if v, ok := parseNumber(text[loc[4]:loc[5]]); ok {
			return v, true
		}
	}
	return 0, false
}

func window(s string, start, length int) string {
	if start < 0 {
		length += start
		start = 0
	}
	if length <= 0 || start >= len(s) {
		return ""
	}
	end := start + length
	if end > len(s) {
		end = len(s)
	}
	return s[start:end]
}

// firstAnchoredPrice parses the first currency-anchored number in text.
func firstAnchoredPrice(text string) (float64, bool) {
	m := anchoredPriceRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return parseNumber(m[2])
}

// stripAndParse removes everything except digits, dots and commas, treats
// the last dot as the decimal separator (decimal part truncated to two
// digits), strips grouping commas, and parses the result.
func stripAndParse(text string) (float64, bool) {
	cleaned := strippableRe.ReplaceAllString(text, "")
	if cleaned == "" {
		return 0, false
	}
	return parseNumber(cleaned)
}

// parseNumber parses a price numeral: comma grouping, optional dot decimal.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	intPart := s
	decPart := ""
	if i := strings.LastIndex(s, "."); i >= 0 {
		intPart = s[:i]
		decPart = s[i+1:]
		decPart = strings.ReplaceAll(decPart, ",", "")
		if len(decPart) > 2 {
			decPart = decPart[:2]
		}
	}
	intPart = strings.ReplaceAll(intPart, ",", "")
	if intPart == "" && decPart == "" {
		return 0, false
	}
	composed := intPart
	if decPart != "" {
		composed = intPart + "." + decPart
	}
	v, err := strconv.ParseFloat(composed, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// DetectCurrency picks the currency symbol used in the text, defaulting to
// the rupee when nothing recognizable appears.
func DetectCurrency(text string) string {
	switch {
	case strings.Contains(text, "₹"), strings.Contains(strings.ToLower(text), "rs."), strings.Contains(strings.ToUpper(text), "INR"):
		return "₹"
	case strings.Contains(text, "$"):
		return "$"
	case strings.Contains(text, "€"):
		return "€"
	case strings.Contains(text, "£"):
		return "£"
	default:
		return "₹"
	}
}
