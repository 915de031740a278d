package notify

import (
	"log"

	"pricewatch/models"
)

// Notifier is the outbound delivery contract. The core only decides WHEN
// an alert fires; how the message leaves the system (email, push, webhook)
// is the implementation's business.
type Notifier interface {
	NotifyPriceDrop(url models.TrackedURL, alert models.PriceAlert, record *models.ProductRecord) error
}

// LogNotifier writes alert notifications to the process log. Used as the
// default sink when no delivery transport is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) NotifyPriceDrop(url models.TrackedURL, alert models.PriceAlert, record *models.ProductRecord) error {
	suffix := ""
	if record.IsSimulated {
		suffix = " (simulated, needs confirmation)"
	}
	log.Printf("🚨 ALERT for %s: price %s%.2f reached target %s%.2f%s",
		url.Title, record.Currency, record.GetPrice(), record.Currency, alert.TargetPrice, suffix)
	return nil
}
