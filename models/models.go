package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// SiteType identifies the site family a URL belongs to. The family decides
// which selector chain and which fetch strategy the scraper uses.
type SiteType string

const (
	SiteFlipkart SiteType = "flipkart" // specialized family with anti-scraping countermeasures
	SiteAmazon   SiteType = "amazon"   // amazon-like family
	SiteOther    SiteType = "other"
)

// Supported currency symbols. Rupee is the default since the selector
// chains are tuned for Indian storefronts first.
const (
	CurrencyINR = "₹"
	CurrencyUSD = "$"
	CurrencyEUR = "€"
	CurrencyGBP = "£"
)

// ProductRecord is the result of one extraction pass over a product URL.
type ProductRecord struct {
	URL                 string    `json:"url"`
	Title               string    `json:"title"`
	Price               *float64  `json:"price"`
	Currency            string    `json:"currency"`
	SiteType            SiteType  `json:"site_type"`
	PriceOptions        []float64 `json:"price_options,omitempty"`
	PriceDisplayOptions []string  `json:"price_display_options,omitempty"`
	IsSimulated         bool      `json:"is_simulated"`
	CheckedAt           time.Time `json:"checked_at"`
}

// HasPrice reports whether a numeric price was produced.
func (p *ProductRecord) HasPrice() bool {
	return p.Price != nil
}

// GetPrice returns the extracted price, or 0 if none was produced.
func (p *ProductRecord) GetPrice() float64 {
	if p.Price != nil {
		return *p.Price
	}
	return 0.0
}

// SetPrice stores a copy of the given value as the record's price.
func (p *ProductRecord) SetPrice(v float64) {
	p.Price = &v
}

// Category is a coarse product category used to disambiguate between
// multiple prices shown on the same page.
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryFashion     Category = "fashion"
	CategoryOther       Category = "other"
)

// CategoryVerdict is the classifier's output for one piece of text.
// Created fresh per extraction call, never persisted.
type CategoryVerdict struct {
	Category    Category `json:"category"`
	Score       int      `json:"score"`
	IsConfident bool     `json:"is_confident"`
}

// PriceCandidate is one price-like value found on a page, paired with its
// original display text and the position of its first appearance.
type PriceCandidate struct {
	Text     string  `json:"text"`
	Value    float64 `json:"value"`
	Position int     `json:"position"`
}

// TrackedURL represents a product URL being monitored for price drops.
type TrackedURL struct {
	ID           int             `json:"id" db:"id"`
	URL          string          `json:"url" db:"url"`
	Title        string          `json:"title" db:"title"`
	CurrentPrice sql.NullFloat64 `json:"current_price" db:"current_price"`
	Currency     string          `json:"currency" db:"currency"`
	SiteType     SiteType        `json:"site_type" db:"site_type"`
	IsSimulated  bool            `json:"is_simulated" db:"is_simulated"`
	LastChecked  *time.Time      `json:"last_checked" db:"last_checked"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
	IsActive     bool            `json:"is_active" db:"is_active"`
}

// GetCurrentPrice returns the current price as float64, or 0 if NULL
func (t *TrackedURL) GetCurrentPrice() float64 {
	if t.CurrentPrice.Valid {
		return t.CurrentPrice.Float64
	}
	return 0.0
}

// HasPrice returns true if the URL has a current price
func (t *TrackedURL) HasPrice() bool {
	return t.CurrentPrice.Valid
}

// MarshalJSON implements custom JSON marshaling for TrackedURL so NULL
// prices serialize as null instead of the sql.NullFloat64 envelope.
func (t *TrackedURL) MarshalJSON() ([]byte, error) {
	type Alias TrackedURL
	return json.Marshal(&struct {
		*Alias
		CurrentPrice *float64 `json:"current_price"`
	}{
		Alias:        (*Alias)(t),
		CurrentPrice: t.getCurrentPricePtr(),
	})
}

func (t *TrackedURL) getCurrentPricePtr() *float64 {
	if t.CurrentPrice.Valid {
		price := t.CurrentPrice.Float64
		return &price
	}
	return nil
}

// PriceAlert represents a target-price alert on a tracked URL. The alert
// fires when the tracked price falls to or below the target.
type PriceAlert struct {
	ID          int        `json:"id" db:"id"`
	URLID       int        `json:"url_id" db:"url_id"`
	TargetPrice float64    `json:"target_price" db:"target_price"`
	Email       string     `json:"email" db:"email"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	TriggeredAt *time.Time `json:"triggered_at" db:"triggered_at"`
}

// PriceChoice records a manual override: the user picked one of the
// exposed price options as the real price for a URL.
type PriceChoice struct {
	URLID       int       `json:"url_id" db:"url_id"`
	ChosenPrice float64   `json:"chosen_price" db:"chosen_price"`
	ChosenText  string    `json:"chosen_text" db:"chosen_text"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// AddURLRequest represents the request to add a new URL to track
type AddURLRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// SetAlertRequest represents the request to set a price alert
type SetAlertRequest struct {
	TargetPrice float64 `json:"target_price" validate:"required,gt=0"`
	Email       string  `json:"email"`
}

// UserChoiceRequest represents the user's pick when a page showed more
// than one plausible price and the automatic selection should be overridden.
type UserChoiceRequest struct {
	ChosenPrice float64 `json:"chosen_price" validate:"required"`
	ChosenText  string  `json:"chosen_text"`
}
