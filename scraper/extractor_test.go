package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricewatch/models"
)

func newTestExtractor() *Extractor {
	return NewExtractor(DefaultOptions())
}

func TestExtractProductEndToEnd(t *testing.T) {
	markup := `<html><body>
		<h1>Wireless Bluetooth Headphone</h1>
		<div class="price">₹9,490</div>
	</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(markup))
	}))
	defer server.Close()

	record := newTestExtractor().ExtractProduct(context.Background(), server.URL+"/headphone-x100")

	require.True(t, record.HasPrice())
	assert.Equal(t, 9490.0, record.GetPrice())
	assert.Equal(t, models.CurrencyINR, record.Currency)
	assert.Contains(t, record.Title, "Headphone")
	assert.False(t, record.IsSimulated)
	assert.Equal(t, models.SiteOther, record.SiteType)
}

func TestExtractIdempotentOnSameMarkup(t *testing.T) {
	markup := `<html><body>
		<h1>Stainless Steel Kettle</h1>
		<div class="price">₹1,899</div>
		<p>Old price ₹2,299</p>
	</body></html>`

	e := newTestExtractor()
	first := e.ExtractFromMarkup("https://shop.example.com/kettle", markup)
	second := e.ExtractFromMarkup("https://shop.example.com/kettle", markup)

	assert.Equal(t, first.GetPrice(), second.GetPrice())
	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.PriceOptions, second.PriceOptions)
	assert.Equal(t, first.PriceDisplayOptions, second.PriceDisplayOptions)
	assert.Equal(t, first.IsSimulated, second.IsSimulated)
}

func TestExtractPrefersSecondCandidateForElectronics(t *testing.T) {
	markup := `<html><body>
		<h1>Samsung Galaxy Smartphone 5G Mobile</h1>
		<p>Standard price ₹30,000</p>
		<p>With card offer price ₹24,999</p>
	</body></html>`

	record := newTestExtractor().ExtractFromMarkup("https://shop.example.com/p/123", markup)

	require.True(t, record.HasPrice())
	assert.Equal(t, 24999.0, record.GetPrice())
}

func TestExtractTakesFirstCandidateForOtherCategories(t *testing.T) {
	markup := `<html><body>
		<h1>Ceramic Flower Vase</h1>
		<p>Standard price ₹30,000</p>
		<p>With card offer price ₹24,999</p>
	</body></html>`

	record := newTestExtractor().ExtractFromMarkup("https://shop.example.com/p/123", markup)

	require.True(t, record.HasPrice())
	assert.Equal(t, 30000.0, record.GetPrice())
}

func TestExtractPreferSecondPolicyDisabled(t *testing.T) {
	markup := `<html><body>
		<h1>Samsung Galaxy Smartphone 5G Mobile</h1>
		<p>Standard price ₹30,000</p>
		<p>With card offer price ₹24,999</p>
	</body></html>`

	opts := DefaultOptions()
	opts.PreferSecondForElectronics = false
	record := NewExtractor(opts).ExtractFromMarkup("https://shop.example.com/p/123", markup)

	require.True(t, record.HasPrice())
	assert.Equal(t, 30000.0, record.GetPrice())
}

func TestExtractExposesPriceOptions(t *testing.T) {
	markup := `<html><body>
		<h1>Mixer Grinder</h1>
		<p>₹4,299 list</p>
		<p>₹3,799 deal</p>
		<p>₹3,499 exchange</p>
	</body></html>`

	record := newTestExtractor().ExtractFromMarkup("https://shop.example.com/mixer", markup)

	require.Len(t, record.PriceOptions, 2)
	assert.Equal(t, []float64{4299, 3799}, record.PriceOptions)
	require.Len(t, record.PriceDisplayOptions, 2)
	assert.Contains(t, record.PriceDisplayOptions[0], "4,299")
}

func TestExtractLinkedDataFallback(t *testing.T) {
	markup := `<html><body>
		<h1>Ceramic Dinner Set</h1>
		<script type="application/ld+json">{"@type":"Product","offers":{"price":"4999"}}</script>
	</body></html>`

	record := newTestExtractor().ExtractFromMarkup("https://shop.example.com/dinner-set", markup)

	require.True(t, record.HasPrice())
	assert.Equal(t, 4999.0, record.GetPrice())
	assert.False(t, record.IsSimulated)
}

func TestExtractSimulatesWhenFetchFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	url := server.URL + "/sony-headphone-wh1000"
	e := newTestExtractor()

	record := e.ExtractProduct(context.Background(), url)
	require.True(t, record.HasPrice())
	assert.True(t, record.IsSimulated)
	assert.Equal(t, models.CurrencyINR, record.Currency)
	assert.NotEmpty(t, record.Title)

	// Same unreachable URL keeps the same simulated price.
	again := e.ExtractProduct(context.Background(), url)
	assert.Equal(t, record.GetPrice(), again.GetPrice())

	// Audio keyword maps into the audio range.
	assert.GreaterOrEqual(t, record.GetPrice(), 1000.0)
	assert.Less(t, record.GetPrice(), 30000.0)
}

func TestExtractSimulatesWhenPageHasNoPrice(t *testing.T) {
	markup := `<html><body><h1>Coming Soon</h1><p>This product is not yet available.</p></body></html>`

	record := newTestExtractor().ExtractFromMarkup("https://shop.example.com/mystery", markup)

	require.True(t, record.HasPrice())
	assert.True(t, record.IsSimulated)
	assert.Equal(t, "Coming Soon", record.Title)
}

func TestIsElectronicsLikeWrapper(t *testing.T) {
	e := newTestExtractor()
	assert.True(t, e.IsElectronicsLike("https://shop.example.com/p/1", "Dell Gaming Laptop"))
	assert.False(t, e.IsElectronicsLike("https://shop.example.com/p/2", "Ceramic Flower Vase"))
}
