package scheduler

import (
	"context"
	"log"

	"pricewatch/models"
	"pricewatch/notify"
	"pricewatch/repository"
	"pricewatch/scraper"

	"github.com/robfig/cron/v3"
)

// PriceChecker re-extracts every active tracked URL on a schedule, stores
// the result and fires alerts whose targets were reached.
type PriceChecker struct {
	cron       *cron.Cron
	schedule   string
	urlRepo    *repository.URLRepository
	alertRepo  *repository.AlertRepository
	choiceRepo *repository.ChoiceRepository
	extractor  *scraper.Extractor
	notifier   notify.Notifier
}

func NewPriceChecker(extractor *scraper.Extractor, notifier notify.Notifier, schedule string) *PriceChecker {
	return &PriceChecker{
		cron:       cron.New(cron.WithSeconds()),
		schedule:   schedule,
		urlRepo:    repository.NewURLRepository(),
		alertRepo:  repository.NewAlertRepository(),
		choiceRepo: repository.NewChoiceRepository(),
		extractor:  extractor,
		notifier:   notifier,
	}
}

// Start starts the scheduled price checking
func (pc *PriceChecker) Start() {
	_, err := pc.cron.AddFunc(pc.schedule, pc.checkAllPrices)
	if err != nil {
		log.Printf("Failed to schedule price checker: %v", err)
		return
	}

	// Also run once on startup
	go pc.checkAllPrices()

	pc.cron.Start()
	log.Printf("Price checker scheduled with spec %q", pc.schedule)
}

// Stop stops the scheduled price checking
func (pc *PriceChecker) Stop() {
	if pc.cron != nil {
		pc.cron.Stop()
	}
}

// checkAllPrices checks prices for all tracked URLs
func (pc *PriceChecker) checkAllPrices() {
	log.Println("Starting scheduled price check for all tracked URLs")

	urls, err := pc.urlRepo.GetTrackedURLs()
	if err != nil {
		log.Printf("Failed to get tracked URLs: %v", err)
		return
	}

	if len(urls) == 0 {
		log.Println("No URLs to check")
		return
	}

	log.Printf("Checking prices for %d URLs", len(urls))

	for _, url := range urls {
		go pc.CheckURL(url)
	}
}

// CheckURL extracts a single URL, persists the result and evaluates alerts.
func (pc *PriceChecker) CheckURL(url models.TrackedURL) *models.ProductRecord {
	log.Printf("Checking price for: %s (%s)", url.Title, url.URL)

	record := pc.extractor.ExtractProduct(context.Background(), url.URL)

	// A manual override pins the price until the user clears it.
	if choice, err := pc.choiceRepo.GetChoice(url.ID); err == nil && choice != nil {
		record.SetPrice(choice.ChosenPrice)
		record.IsSimulated = false
	}

	if err := pc.urlRepo.UpdateFromRecord(url.ID, record); err != nil {
		log.Printf("Failed to update URL price for %s: %v", url.URL, err)
		return record
	}

	if url.HasPrice() && record.HasPrice() && record.GetPrice() != url.GetCurrentPrice() {
		change := record.GetPrice() - url.GetCurrentPrice()
		changePercent := (change / url.GetCurrentPrice()) * 100
		if change < 0 {
			log.Printf("📉 Price DROPPED for %s: %.2f → %.2f (%.1f%%)",
				url.Title, url.GetCurrentPrice(), record.GetPrice(), changePercent)
		} else {
			log.Printf("📈 Price INCREASED for %s: %.2f → %.2f (+%.1f%%)",
				url.Title, url.GetCurrentPrice(), record.GetPrice(), changePercent)
		}
	}

	if !record.HasPrice() {
		return record
	}

	triggeredAlerts, err := pc.alertRepo.CheckAlerts(url.ID, record.GetPrice())
	if err != nil {
		log.Printf("Failed to check alerts for %s: %v", url.URL, err)
		return record
	}

	for _, alert := range triggeredAlerts {
		if err := pc.notifier.NotifyPriceDrop(url, alert, record); err != nil {
			log.Printf("Failed to deliver alert %d for %s: %v", alert.ID, url.URL, err)
		}
	}

	return record
}

// ManualCheck allows manual triggering of price checks
func (pc *PriceChecker) ManualCheck() {
	log.Println("Manual price check triggered")
	pc.checkAllPrices()
}
