package repository

import (
	"database/sql"
	"fmt"
	"time"

	"pricewatch/database"
	"pricewatch/models"
)

type ChoiceRepository struct{}

func NewChoiceRepository() *ChoiceRepository {
	return &ChoiceRepository{}
}

// GetChoice returns the manual price override for a URL, or nil when the
// user never picked one.
func (r *ChoiceRepository) GetChoice(urlID int) (*models.PriceChoice, error) {
	query := `
		SELECT url_id, chosen_price, chosen_text, created_at, updated_at
		FROM price_choices
		WHERE url_id = $1
	`

	var choice models.PriceChoice
	err := database.DB.QueryRow(query, urlID).Scan(
		&choice.URLID, &choice.ChosenPrice, &choice.ChosenText,
		&choice.CreatedAt, &choice.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get price choice: %v", err)
	}

	return &choice, nil
}

// SaveChoice saves or updates the manual price override for a URL
func (r *ChoiceRepository) SaveChoice(urlID int, chosenPrice float64, chosenText string) error {
	query := `
		INSERT INTO price_choices (url_id, chosen_price, chosen_text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (url_id) DO UPDATE SET
			chosen_price = EXCLUDED.chosen_price,
			chosen_text = EXCLUDED.chosen_text,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	_, err := database.DB.Exec(query, urlID, chosenPrice, chosenText, now)
	if err != nil {
		return fmt.Errorf("failed to save price choice: %v", err)
	}

	return nil
}

// ClearChoice removes the manual override so automatic selection applies again
func (r *ChoiceRepository) ClearChoice(urlID int) error {
	query := `DELETE FROM price_choices WHERE url_id = $1`
	_, err := database.DB.Exec(query, urlID)
	if err != nil {
		return fmt.Errorf("failed to clear price choice: %v", err)
	}
	return nil
}
