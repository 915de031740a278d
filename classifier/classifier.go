package classifier

import (
	"strings"

	"pricewatch/models"
)

// Default scoring constants. A category must clear the threshold to win
// at all; confidence needs twice that.
const (
	DefaultThreshold       = 10
	DefaultNegativePenalty = 15
)

// keywordTable is the weighted keyword set for one category. Matching is
// plain substring containment on case-folded text, so "tv" also matches
// inside "smart-tv". Negative keywords each subtract the penalty.
type keywordTable struct {
	category models.Category
	keywords map[string]int
	negative []string
}

// Classifier scores free text against weighted keyword tables per category.
// Stateless and safe for concurrent use.
type Classifier struct {
	threshold int
	penalty   int
	tables    []keywordTable
}

// NewClassifier creates a classifier with the default keyword tables.
func NewClassifier() *Classifier {
	return NewClassifierWithScoring(DefaultThreshold, DefaultNegativePenalty)
}

// NewClassifierWithScoring creates a classifier with custom threshold and
// negative-keyword penalty.
func NewClassifierWithScoring(threshold, penalty int) *Classifier {
	return &Classifier{
		threshold: threshold,
		penalty:   penalty,
		// Table order matters: on an exact score tie the first-declared
		// category wins, so electronics is declared first.
		tables: []keywordTable{
			{
				category: models.CategoryElectronics,
				keywords: map[string]int{
					"laptop":     10,
					"smartphone": 10,
					"mobile":     8,
					"phone":      7,
					"television": 10,
					"tablet":     8,
					"headphone":  8,
					"earbud":     8,
					"earphone":   8,
					"speaker":    6,
					"monitor":    7,
					"camera":     7,
					"console":    6,
					"router":     6,
					"processor":  5,
					"ssd":        5,
					"macbook":    8,
					"iphone":     8,
					"ipad":       7,
					"galaxy":     5,
					"samsung":    3,
					"dell":       4,
					"lenovo":     4,
					"asus":       4,
					"acer":       4,
					"oneplus":    5,
					"xiaomi":     4,
					"realme":     4,
					"boat":       3,
					"sony":       3,
					"lg":         2,
					"4k":         3,
					"5g":         3,
					"gb ram":     5,
					"bluetooth":  4,
					"wireless":   3,
					"gaming":     4,
				},
				negative: []string{"cover", "case", "screen guard", "tempered glass", "sticker", "cable only"},
			},
			{
				category: models.CategoryFashion,
				keywords: map[string]int{
					"shirt":    8,
					"t-shirt":  8,
					"tshirt":   8,
					"jeans":    8,
					"trouser":  7,
					"dress":    7,
					"kurta":    8,
					"saree":    8,
					"lehenga":  8,
					"jacket":   6,
					"hoodie":   6,
					"sweater":  6,
					"shoe":     7,
					"sneaker":  7,
					"sandal":   6,
					"heel":     5,
					"handbag":  6,
					"wallet":   4,
					"belt":     3,
					"sunglass": 5,
					"watch":    4,
					"cotton":   3,
					"denim":    4,
					"slim fit": 5,
					"footwear": 6,
					"apparel":  6,
					"clothing": 6,
					"fashion":  5,
					"nike":     4,
					"adidas":   4,
					"puma":     4,
					"zara":     4,
					"levis":    4,
				},
				negative: []string{"smartwatch", "smart watch", "fitness band"},
			},
		},
	}
}

// Classify scores the given text against every category table and returns
// the verdict. Text below the threshold classifies as "other" with a zero
// score regardless of which raw category scored highest.
func (c *Classifier) Classify(text string) models.CategoryVerdict {
	folded := strings.ToLower(text)

	best := models.CategoryOther
	bestScore := 0
	for _, table := range c.tables {
		score := c.scoreTable(folded, table)
		if score > bestScore {
			best = table.category
			bestScore = score
		}
	}

	if bestScore < c.threshold {
		return models.CategoryVerdict{Category: models.CategoryOther, Score: 0, IsConfident: false}
	}

	return models.CategoryVerdict{
		Category:    best,
		Score:       bestScore,
		IsConfident: bestScore >= 2*c.threshold,
	}
}

// ClassifyProduct classifies a product from its URL and title combined,
// which is the shape every caller in the extraction pipeline has on hand.
func (c *Classifier) ClassifyProduct(url, title string) models.CategoryVerdict {
	return c.Classify(url + " " + title)
}

// IsElectronicsLike reports whether url+title classifies as electronics.
func (c *Classifier) IsElectronicsLike(url, title string) bool {
	return c.ClassifyProduct(url, title).Category == models.CategoryElectronics
}

func (c *Classifier) scoreTable(folded string, table keywordTable) int {
	score := 0
	for keyword, weight := range table.keywords {
		if strings.Contains(folded, keyword) {
			score += weight
		}
	}
	for _, keyword := range table.negative {
		if strings.Contains(folded, keyword) {
			score -= c.penalty
		}
	}
	return score
}
