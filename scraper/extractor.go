package scraper

import (
	"context"
	"log"
	"time"

	"pricewatch/classifier"
	"pricewatch/models"
)

// Extractor runs the full pipeline for one URL: fetch, locate, normalize,
// select. Stateless between calls; safe for concurrent use across URLs.
type Extractor struct {
	fetcher    *Fetcher
	locator    *Locator
	normalizer *Normalizer
	classifier *classifier.Classifier

	// Tuned heuristic: electronics pages tend to list the standard price
	// first and a lower effective price second.
	preferSecondForElectronics bool
}

// Options configures an Extractor.
type Options struct {
	FetchTimeout               time.Duration
	PreferSecondForElectronics bool
	ClassificationThreshold    int
	NegativeKeywordPenalty     int
}

// DefaultOptions returns the extractor defaults.
func DefaultOptions() Options {
	return Options{
		FetchTimeout:               15 * time.Second,
		PreferSecondForElectronics: true,
		ClassificationThreshold:    classifier.DefaultThreshold,
		NegativeKeywordPenalty:     classifier.DefaultNegativePenalty,
	}
}

// NewExtractor creates an extractor with the given options.
func NewExtractor(opts Options) *Extractor {
	defaults := DefaultOptions()
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaults.FetchTimeout
	}
	if opts.ClassificationThreshold <= 0 {
		opts.ClassificationThreshold = defaults.ClassificationThreshold
	}
	if opts.NegativeKeywordPenalty <= 0 {
		opts.NegativeKeywordPenalty = defaults.NegativeKeywordPenalty
	}
	return &Extractor{
		fetcher:                    NewFetcher(opts.FetchTimeout),
		locator:                    NewLocator(),
		normalizer:                 NewNormalizer(),
		classifier:                 classifier.NewClassifierWithScoring(opts.ClassificationThreshold, opts.NegativeKeywordPenalty),
		preferSecondForElectronics: opts.PreferSecondForElectronics,
	}
}

// ExtractProduct fetches and extracts one product page. It never fails:
// unreachable pages and unparseable markup degrade to a deterministic
// simulated price with IsSimulated set.
func (e *Extractor) ExtractProduct(ctx context.Context, rawURL string) *models.ProductRecord {
	record := newRecord(rawURL)

	markup, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		log.Printf("Fetch failed for %s, falling back to simulated price: %v", rawURL, err)
		return e.simulate(record)
	}

	return e.extractFromMarkup(record, markup)
}

// ExtractFromMarkup runs location and normalization over already-fetched
// markup. Used by callers that bring their own transport.
func (e *Extractor) ExtractFromMarkup(rawURL, markup string) *models.ProductRecord {
	return e.extractFromMarkup(newRecord(rawURL), markup)
}

// IsElectronicsLike reports whether the classifier puts url+title in the
// electronics category. Exposed for external collaborators.
func (e *Extractor) IsElectronicsLike(url, title string) bool {
	return e.classifier.IsElectronicsLike(url, title)
}

func newRecord(rawURL string) *models.ProductRecord {
	return &models.ProductRecord{
		URL:       rawURL,
		Currency:  models.CurrencyINR,
		SiteType:  DetectSiteType(rawURL),
		CheckedAt: time.Now(),
	}
}

func (e *Extractor) extractFromMarkup(record *models.ProductRecord, markup string) *models.ProductRecord {
	doc, err := ParsePage(markup)
	if err != nil {
		log.Printf("Parse failed for %s, falling back to simulated price: %v", record.URL, err)
		return e.simulate(record)
	}

	located := e.locator.Locate(doc, record.URL)
	record.Title = located.Title

	preferSecond := e.preferSecondForElectronics && e.classifier.IsElectronicsLike(record.URL, record.Title)
	nctx := &Context{
		URL:          record.URL,
		Title:        record.Title,
		PreferSecond: preferSecond,
	}

	e.exposeOptions(record, located.AllPriceMatches)

	if located.RawPriceText != "" {
		if v, ok := e.normalizer.Normalize(located.RawPriceText, nctx); ok {
			record.SetPrice(v)
			record.Currency = DetectCurrency(located.RawPriceText)
			return record
		}
	}

	// Structural extraction produced nothing usable; fall back to the
	// page-wide candidate list and let the policy pick.
	if len(located.AllPriceMatches) > 0 {
		chosen := SelectCandidate(located.AllPriceMatches, preferSecond)
		record.SetPrice(chosen.Value)
		record.Currency = DetectCurrency(chosen.Text)
		return record
	}

	// Last real source: structured product data embedded in the page.
	if located.LinkedDataPrice != nil {
		record.SetPrice(*located.LinkedDataPrice)
		return record
	}

	return e.simulate(record)
}

// exposeOptions surfaces the top candidates so a reviewer can override the
// automatic selection.
func (e *Extractor) exposeOptions(record *models.ProductRecord, candidates []models.PriceCandidate) {
	for i, c := range candidates {
		if i >= maxExposedOptions {
			break
		}
		record.PriceOptions = append(record.PriceOptions, c.Value)
		record.PriceDisplayOptions = append(record.PriceDisplayOptions, c.Text)
	}
}

func (e *Extractor) simulate(record *models.ProductRecord) *models.ProductRecord {
	if record.Title == "" {
		record.Title = GenerateTitleFromURL(record.URL)
	}
	record.SetPrice(SimulatePrice(record.URL))
	record.Currency = models.CurrencyINR
	record.IsSimulated = true
	return record
}
