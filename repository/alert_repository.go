package repository

import (
	"fmt"
	"time"

	"pricewatch/database"
	"pricewatch/models"
)

type AlertRepository struct{}

func NewAlertRepository() *AlertRepository {
	return &AlertRepository{}
}

// SetPriceAlert creates a new target-price alert
func (r *AlertRepository) SetPriceAlert(urlID int, targetPrice float64, email string) (*models.PriceAlert, error) {
	query := `
		INSERT INTO price_alerts (url_id, target_price, email, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, url_id, target_price, email, is_active, created_at, triggered_at
	`

	var priceAlert models.PriceAlert
	now := time.Now()
	err := database.DB.QueryRow(query, urlID, targetPrice, email, now).Scan(
		&priceAlert.ID, &priceAlert.URLID, &priceAlert.TargetPrice,
		&priceAlert.Email, &priceAlert.IsActive,
		&priceAlert.CreatedAt, &priceAlert.TriggeredAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to set price alert: %v", err)
	}

	return &priceAlert, nil
}

// GetPriceAlerts returns all alerts for a URL
func (r *AlertRepository) GetPriceAlerts(urlID int) ([]models.PriceAlert, error) {
	return r.queryAlerts(`
		SELECT id, url_id, target_price, email, is_active, created_at, triggered_at
		FROM price_alerts
		WHERE url_id = $1 AND is_active = true
		ORDER BY created_at DESC
	`, urlID)
}

// GetActiveAlertsForURL returns all active, untriggered alerts for a URL
func (r *AlertRepository) GetActiveAlertsForURL(urlID int) ([]models.PriceAlert, error) {
	return r.queryAlerts(`
		SELECT id, url_id, target_price, email, is_active, created_at, triggered_at
		FROM price_alerts
		WHERE url_id = $1 AND is_active = true AND triggered_at IS NULL
	`, urlID)
}

// DeletePriceAlert deletes a price alert
func (r *AlertRepository) DeletePriceAlert(alertID int) error {
	query := `UPDATE price_alerts SET is_active = false WHERE id = $1`
	_, err := database.DB.Exec(query, alertID)
	if err != nil {
		return fmt.Errorf("failed to delete price alert: %v", err)
	}
	return nil
}

// TriggerAlert marks an alert as triggered
func (r *AlertRepository) TriggerAlert(alertID int) error {
	query := `UPDATE price_alerts SET triggered_at = $1 WHERE id = $2`
	_, err := database.DB.Exec(query, time.Now(), alertID)
	if err != nil {
		return fmt.Errorf("failed to trigger alert: %v", err)
	}
	return nil
}

// CheckAlerts returns the alerts whose target price the current price has
// reached, marking each as triggered.
func (r *AlertRepository) CheckAlerts(urlID int, currentPrice float64) ([]models.PriceAlert, error) {
	alerts, err := r.GetActiveAlertsForURL(urlID)
	if err != nil {
		return nil, err
	}

	var triggeredAlerts []models.PriceAlert
	for _, alert := range alerts {
		if currentPrice > alert.TargetPrice {
			continue
		}
		if err := r.TriggerAlert(alert.ID); err != nil {
			continue
		}
		now := time.Now()
		alert.TriggeredAt = &now
		triggeredAlerts = append(triggeredAlerts, alert)
	}

	return triggeredAlerts, nil
}

func (r *AlertRepository) queryAlerts(query string, urlID int) ([]models.PriceAlert, error) {
	rows, err := database.DB.Query(query, urlID)
	if err != nil {
		return nil, fmt.Errorf("failed to get price alerts: %v", err)
	}
	defer rows.Close()

	var alerts []models.PriceAlert
	for rows.Next() {
		var alert models.PriceAlert
		err := rows.Scan(
			&alert.ID, &alert.URLID, &alert.TargetPrice,
			&alert.Email, &alert.IsActive,
			&alert.CreatedAt, &alert.TriggeredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price alert: %v", err)
		}
		alerts = append(alerts, alert)
	}

	return alerts, nil
}
