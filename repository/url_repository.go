package repository

import (
	"database/sql"
	"fmt"
	"time"

	"pricewatch/database"
	"pricewatch/models"
)

type URLRepository struct{}

func NewURLRepository() *URLRepository {
	return &URLRepository{}
}

const trackedURLColumns = `id, url, title, current_price, currency, site_type, is_simulated, last_checked, created_at, updated_at, is_active`

// AddURLToTrack adds a new URL to track
func (r *URLRepository) AddURLToTrack(url, title string) (*models.TrackedURL, error) {
	query := `
		INSERT INTO tracked_urls (url, title, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		RETURNING ` + trackedURLColumns

	var trackedURL models.TrackedURL
	now := time.Now()
	err := scanTrackedURL(database.DB.QueryRow(query, url, title, now), &trackedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to add URL to track: %v", err)
	}

	return &trackedURL, nil
}

// GetTrackedURLs returns all active tracked URLs
func (r *URLRepository) GetTrackedURLs() ([]models.TrackedURL, error) {
	query := `
		SELECT ` + trackedURLColumns + `
		FROM tracked_urls
		WHERE is_active = true
		ORDER BY created_at DESC
	`

	rows, err := database.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get tracked URLs: %v", err)
	}
	defer rows.Close()

	var urls []models.TrackedURL
	for rows.Next() {
		var url models.TrackedURL
		if err := scanTrackedURL(rows, &url); err != nil {
			return nil, fmt.Errorf("failed to scan URL: %v", err)
		}
		urls = append(urls, url)
	}

	return urls, nil
}

// GetURLByID returns a tracked URL by ID
func (r *URLRepository) GetURLByID(id int) (*models.TrackedURL, error) {
	query := `
		SELECT ` + trackedURLColumns + `
		FROM tracked_urls
		WHERE id = $1 AND is_active = true
	`

	var url models.TrackedURL
	err := scanTrackedURL(database.DB.QueryRow(query, id), &url)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("URL not found")
		}
		return nil, fmt.Errorf("failed to get URL: %v", err)
	}

	return &url, nil
}

// UpdateFromRecord stores the result of an extraction pass on the URL row.
func (r *URLRepository) UpdateFromRecord(id int, record *models.ProductRecord) error {
	query := `
		UPDATE tracked_urls
		SET title = $2, current_price = $3, currency = $4, site_type = $5, is_simulated = $6, last_checked = $7, updated_at = $7
		WHERE id = $1
	`

	var price interface{}
	if record.HasPrice() {
		price = record.GetPrice()
	}

	_, err := database.DB.Exec(query, id, record.Title, price, record.Currency, record.SiteType, record.IsSimulated, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update URL price: %v", err)
	}

	return nil
}

// DeleteTrackedURL soft-deletes a tracked URL
func (r *URLRepository) DeleteTrackedURL(id int) error {
	query := `UPDATE tracked_urls SET is_active = false WHERE id = $1`
	_, err := database.DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete tracked URL: %v", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrackedURL(row rowScanner, url *models.TrackedURL) error {
	return row.Scan(
		&url.ID, &url.URL, &url.Title,
		&url.CurrentPrice, &url.Currency, &url.SiteType, &url.IsSimulated,
		&url.LastChecked, &url.CreatedAt, &url.UpdatedAt, &url.IsActive,
	)
}
