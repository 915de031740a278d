package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pricewatch/models"
)

func TestClassifyThreshold(t *testing.T) {
	c := NewClassifier()

	testCases := []struct {
		name          string
		text          string
		wantCategory  models.Category
		wantConfident bool
	}{
		{
			name:         "single weak keyword stays below threshold",
			text:         "samsung",
			wantCategory: models.CategoryOther,
		},
		{
			name:          "single strong keyword clears threshold but not confidence",
			text:          "laptop",
			wantCategory:  models.CategoryElectronics,
			wantConfident: false,
		},
		{
			name:          "laptop plus dell is still not confident",
			text:          "dell laptop",
			wantCategory:  models.CategoryElectronics,
			wantConfident: false,
		},
		{
			name:          "stacked strong keywords become confident",
			text:          "laptop smartphone",
			wantCategory:  models.CategoryElectronics,
			wantConfident: true,
		},
		{
			name:         "negative keyword drags a match back to other",
			text:         "laptop cover",
			wantCategory: models.CategoryOther,
		},
		{
			name:          "fashion keywords classify as fashion",
			text:          "slim fit cotton shirt",
			wantCategory:  models.CategoryFashion,
			wantConfident: false,
		},
		{
			name:         "empty text is other",
			text:         "",
			wantCategory: models.CategoryOther,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			verdict := c.Classify(tc.text)
			assert.Equal(t, tc.wantCategory, verdict.Category)
			assert.Equal(t, tc.wantConfident, verdict.IsConfident)
			if tc.wantCategory == models.CategoryOther {
				assert.Equal(t, 0, verdict.Score)
			} else {
				assert.GreaterOrEqual(t, verdict.Score, DefaultThreshold)
			}
		})
	}
}

func TestClassifyScoreValues(t *testing.T) {
	c := NewClassifier()

	// "laptop" alone is exactly the threshold.
	verdict := c.Classify("laptop")
	assert.Equal(t, 10, verdict.Score)

	// "dell laptop" adds the brand weight.
	verdict = c.Classify("dell laptop")
	assert.Equal(t, 14, verdict.Score)
	assert.False(t, verdict.IsConfident)
}

func TestClassifyMatchesInsideLargerWords(t *testing.T) {
	c := NewClassifier()

	// Substring containment: "tablet" inside a URL slug still matches.
	verdict := c.Classify("https://example.com/apple-ipad-tablets-sale")
	assert.Equal(t, models.CategoryElectronics, verdict.Category)
}

func TestClassifyDeterministic(t *testing.T) {
	c := NewClassifier()
	text := "samsung galaxy smartphone with charger"

	first := c.Classify(text)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, c.Classify(text))
	}
}

func TestIsElectronicsLike(t *testing.T) {
	c := NewClassifier()

	assert.True(t, c.IsElectronicsLike("https://www.flipkart.com/dell-laptop", "Dell Inspiron 15 Laptop"))
	assert.False(t, c.IsElectronicsLike("https://example.com/vase", "Ceramic Flower Vase"))
}

func TestCustomScoring(t *testing.T) {
	// With a lower threshold the single weak keyword is enough.
	c := NewClassifierWithScoring(3, 15)
	verdict := c.Classify("samsung")
	assert.Equal(t, models.CategoryElectronics, verdict.Category)
	assert.Equal(t, 3, verdict.Score)
	assert.False(t, verdict.IsConfident)
}
