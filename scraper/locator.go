package scraper

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"pricewatch/models"
)

// Structured-data prices outside these bounds are junk (placeholder zeros,
// concatenated ids) and are skipped.
const (
	linkedDataMinPrice = 0
	linkedDataMaxPrice = 1000000
)

// LocateResult is what the locator found on one page. RawPriceText comes
// from the structural selector chain only; when it is empty the caller
// falls back to AllPriceMatches (full-text scan, candidate policy applies)
// and then LinkedDataPrice.
type LocateResult struct {
	Title           string
	RawPriceText    string
	PageText        string
	AllPriceMatches []models.PriceCandidate
	LinkedDataPrice *float64
}

// Ordered selector chains per site family. Order encodes confidence: the
// most specific, most reliable selector first; the first one yielding
// non-empty text wins.
var titleSelectors = map[models.SiteType][]string{
	models.SiteFlipkart: {
		"span.B_NuCI",
		"h1._6EBuvT span.VU-ZEz",
		"h1.yhB1nd",
		"h1",
	},
	models.SiteAmazon: {
		"#productTitle",
		"h1#title span",
		"h1.a-size-large",
		"h1",
	},
	models.SiteOther: {
		"[itemprop='name']",
		"h1.product-title",
		"h1.product-name",
		"h1",
	},
}

var priceSelectors = map[models.SiteType][]string{
	models.SiteFlipkart: {
		"div.Nx9bqj.CxhGGd",
		"div._30jeq3._16Jk6d",
		"div.Nx9bqj",
		"div._30jeq3",
		"div[class*='_25b18c'] div:first-child",
	},
	models.SiteAmazon: {
		"#corePriceDisplay_desktop_feature_div .a-price-whole",
		".a-price .a-offscreen",
		"#priceblock_ourprice",
		"#priceblock_dealprice",
		".a-price-whole",
	},
	models.SiteOther: {
		"[itemprop='price']",
		".price",
		".product-price",
		".selling-price",
		".current-price",
		".offer-price",
		"#price",
	},
}

// Ancestor markers for crossed-out reference prices. A price candidate
// sitting under one of these is the MRP, not the purchasable price.
var referencePriceClassRe = regexp.MustCompile(`(?i)(mrp|strike|struck|old[-_]?price|list[-_]?price|original[-_]?price|was[-_]?price)`)
var referencePriceTextRe = regexp.MustCompile(`(?i)(m\.?r\.?p|list price|original price|was:)`)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Locator finds a title and a price string in parsed markup, trying the
// structural selector chain for the URL's site family first and degrading
// through full-text and linked-data scans.
type Locator struct{}

// NewLocator creates a page locator.
func NewLocator() *Locator {
	return &Locator{}
}

// ParsePage parses raw markup into a goquery document.
func ParsePage(markup string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse markup: %v", err)
	}
	return doc, nil
}

// Locate extracts title, raw price text, rendered page text and the full
// candidate list from a parsed page.
func (l *Locator) Locate(doc *goquery.Document, rawURL string) *LocateResult {
	siteType := DetectSiteType(rawURL)
	pageText := collapseText(doc.Find("body").Text())

	result := &LocateResult{
		Title:           l.locateTitle(doc, siteType, rawURL),
		RawPriceText:    l.locatePrice(doc, siteType),
		PageText:        pageText,
		AllPriceMatches: ExtractCandidates(pageText),
	}
	if v, ok := l.linkedDataPrice(doc); ok {
		result.LinkedDataPrice = &v
	}
	return result
}

func (l *Locator) locateTitle(doc *goquery.Document, siteType models.SiteType, rawURL string) string {
	for _, selector := range titleSelectors[siteType] {
		if text := firstNonEmptyText(doc, selector); text != "" {
			return text
		}
	}
	// First heading of any kind, then the document title element.
	if text := firstNonEmptyText(doc, "h1, h2"); text != "" {
		return text
	}
	if text := collapseText(doc.Find("title").First().Text()); text != "" {
		return text
	}
	return GenerateTitleFromURL(rawURL)
}

func (l *Locator) locatePrice(doc *goquery.Document, siteType models.SiteType) string {
	for _, selector := range priceSelectors[siteType] {
		price := ""
		doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
			if isReferencePrice(s) {
				return true
			}
			text := collapseText(s.Text())
			if text == "" {
				// Meta-style carriers keep the value in a content attr.
				if content, ok := s.Attr("content"); ok {
					text = collapseText(content)
				}
			}
			if text != "" {
				price = text
				return false
			}
			return true
		})
		if price != "" {
			return price
		}
	}
	return ""
}

// isReferencePrice walks a few ancestors looking for crossed-out or
// MRP-style markers.
func isReferencePrice(s *goquery.Selection) bool {
	node := s
	for depth := 0; depth < 4 && node.Length() > 0; depth++ {
		switch goquery.NodeName(node) {
		case "del", "s", "strike":
			return true
		}
		if class, ok := node.Attr("class"); ok && referencePriceClassRe.MatchString(class) {
			return true
		}
		node = node.Parent()
	}
	if referencePriceTextRe.MatchString(s.Text()) {
		return true
	}
	// A label like "MRP:" written before the candidate marks it as the
	// reference price. The label must still be unconsumed: once another
	// price sits between the label and the candidate, the label belongs
	// to that price, and this candidate is the real one.
	if label := precedingSiblingText(s); label != "" {
		if loc := referencePriceTextRe.FindStringIndex(label); loc != nil && !anchoredPriceRe.MatchString(label[loc[1]:]) {
			return true
		}
	}
	return false
}

// precedingSiblingText concatenates the text of everything before s inside
// its parent, including bare text nodes a selection cannot reach.
func precedingSiblingText(s *goquery.Selection) string {
	if len(s.Nodes) == 0 || s.Nodes[0].Parent == nil {
		return ""
	}
	var b strings.Builder
	for n := s.Nodes[0].Parent.FirstChild; n != nil && n != s.Nodes[0]; n = n.NextSibling {
		collectNodeText(n, &b)
	}
	return b.String()
}

func collectNodeText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectNodeText(c, b)
	}
}

// linkedDataPrice scans ld+json script blocks for an offers.price or price
// field, accepting the first value inside the plausible bounds.
func (l *Locator) linkedDataPrice(doc *goquery.Document) (float64, bool) {
	found := 0.0
	ok := false
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		var data interface{}
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		if v, hit := findLinkedDataPrice(data, 0); hit {
			found, ok = v, true
			return false
		}
		return true
	})
	return found, ok
}

// findLinkedDataPrice walks arbitrarily nested ld+json looking for a price
// field. Depth-bounded so hostile documents cannot recurse forever.
func findLinkedDataPrice(data interface{}, depth int) (float64, bool) {
	if depth > 6 {
		return 0, false
	}
	switch v := data.(type) {
	case map[string]interface{}:
		for _, key := range []string{"price", "lowPrice"} {
			if raw, exists := v[key]; exists {
				if p, ok := asPrice(raw); ok {
					return p, true
				}
			}
		}
		for _, key := range []string{"offers", "@graph", "mainEntity"} {
			if nested, exists := v[key]; exists {
				if p, ok := findLinkedDataPrice(nested, depth+1); ok {
					return p, true
				}
			}
		}
	case []interface{}:
		for _, item := range v {
			if p, ok := findLinkedDataPrice(item, depth+1); ok {
				return p, true
			}
		}
	}
	return 0, false
}

func asPrice(raw interface{}) (float64, bool) {
	var p float64
	switch v := raw.(type) {
	case float64:
		p = v
	case string:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v), ",", ""), 64)
		if err != nil {
			return 0, false
		}
		p = parsed
	default:
		return 0, false
	}
	if p <= linkedDataMinPrice || p >= linkedDataMaxPrice {
		return 0, false
	}
	return p, true
}

// Brand and category vocab for generated placeholder titles.
var titleBrands = []string{"samsung", "apple", "oneplus", "xiaomi", "realme", "sony", "lg", "dell", "hp", "lenovo", "asus", "boat", "nike", "adidas", "puma"}
var titleCategories = []string{"mobile", "smartphone", "phone", "laptop", "television", "tv", "headphone", "earbud", "speaker", "tablet", "camera", "watch", "shoe", "shirt"}

// GenerateTitleFromURL builds a readable placeholder title when the page
// yielded none: recognized brand + category keyword from the URL, else the
// domain name.
func GenerateTitleFromURL(rawURL string) string {
	lower := strings.ToLower(rawURL)
	var parts []string
	for _, brand := range titleBrands {
		if strings.Contains(lower, brand) {
			parts = append(parts, titleCase(brand))
			break
		}
	}
	for _, category := range titleCategories {
		if strings.Contains(lower, category) {
			parts = append(parts, titleCase(category))
			break
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	return "Product from " + DomainName(rawURL)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	if s == "tv" {
		return "TV"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func firstNonEmptyText(doc *goquery.Document, selector string) string {
	found := ""
	doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if text := collapseText(s.Text()); text != "" {
			found = text
			return false
		}
		return true
	})
	return found
}

func collapseText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
