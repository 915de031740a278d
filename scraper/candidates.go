package scraper

import (
	"hash/fnv"
	"strings"

	"pricewatch/models"
)

// maxCandidates caps how many anchored matches are collected from a page.
const maxCandidates = 5

// maxExposedOptions is how many candidates surface on the ProductRecord
// for manual review.
const maxExposedOptions = 2

// ExtractCandidates finds every currency-anchored price in the text, in
// document order of first appearance, deduplicated by numeric value and
// truncated to maxCandidates.
func ExtractCandidates(text string) []models.PriceCandidate {
	var out []models.PriceCandidate
	seen := make(map[float64]bool)
	for _, loc := range anchoredPriceRe.FindAllStringSubmatchIndex(text, -1) {
		v, ok := parseNumber(text[loc[4]:loc[5]])
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, models.PriceCandidate{
			Text:     text[loc[0]:loc[1]],
			Value:    v,
			Position: loc[0],
		})
		if len(out) >= maxCandidates {
			break
		}
	}
	return out
}

// SelectCandidate picks one candidate from a position-ordered list.
// Electronics pages conventionally show the list price first and a lower
// effective price second, so preferSecond callers get the second candidate
// when one exists. This is a tuned heuristic, not a domain invariant; the
// toggle lives in config.
func SelectCandidate(candidates []models.PriceCandidate, preferSecond bool) models.PriceCandidate {
	if len(candidates) == 0 {
		return models.PriceCandidate{}
	}
	if preferSecond && len(candidates) > 1 {
		return candidates[1]
	}
	return candidates[0]
}

// simulatedRange maps URL keywords onto a plausible price range for the
// product's apparent category.
type simulatedRange struct {
	keywords []string
	min, max int
}

// Ranges are checked in order; the first keyword hit wins. Audio comes
// before mobile so "headphone" is not swallowed by the "phone" keyword.
var simulatedRanges = []simulatedRange{
	{keywords: []string{"headphone", "earphone", "earbud", "speaker", "audio"}, min: 1000, max: 30000},
	{keywords: []string{"television", "tv"}, min: 15000, max: 150000},
	{keywords: []string{"laptop", "notebook", "macbook"}, min: 30000, max: 200000},
	{keywords: []string{"mobile", "smartphone", "phone"}, min: 15000, max: 80000},
}

const (
	simulatedDefaultMin = 500
	simulatedDefaultMax = 50000
)

// SimulatePrice derives a deterministic placeholder price for a URL whose
// page yielded nothing. The same URL always maps to the same value, so
// repeated checks of an unreachable product never show phantom changes.
func SimulatePrice(rawURL string) float64 {
	min, max := simulatedRangeFor(strings.ToLower(rawURL))
	h := fnv.New32a()
	h.Write([]byte(ProductID(rawURL)))
	h.Write([]byte(rawURL))
	span := max - min
	if span <= 0 {
		return float64(min)
	}
	return float64(min + int(h.Sum32())%span)
}

func simulatedRangeFor(lowerURL string) (int, int) {
	for _, r := range simulatedRanges {
		for _, kw := range r.keywords {
			if strings.Contains(lowerURL, kw) {
				return r.min, r.max
			}
		}
	}
	return simulatedDefaultMin, simulatedDefaultMax
}
