package scraper

import (
	"net/url"
	"strings"

	"pricewatch/models"
)

// DetectSiteType maps a product URL onto the site family whose selector
// chain and fetch strategy apply.
func DetectSiteType(rawURL string) models.SiteType {
	host := hostOf(rawURL)
	switch {
	case strings.Contains(host, "flipkart."):
		return models.SiteFlipkart
	case strings.Contains(host, "amazon."):
		return models.SiteAmazon
	default:
		return models.SiteOther
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return strings.ToLower(rawURL)
	}
	return strings.ToLower(u.Host)
}

// DomainName returns the registrable-ish part of the URL's host, used for
// generated placeholder titles ("flipkart.com" -> "Flipkart").
func DomainName(rawURL string) string {
	host := hostOf(rawURL)
	host = strings.TrimPrefix(host, "www.")
	if i := strings.Index(host, "."); i > 0 {
		host = host[:i]
	}
	if host == "" {
		return "Unknown"
	}
	return strings.ToUpper(host[:1]) + host[1:]
}

// ProductID extracts a stable product identifier from the URL: the last
// meaningful path segment, or the whole URL when the path carries nothing.
// Used to seed the deterministic simulated price.
func ProductID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	// Common id-bearing query params first (Flipkart pid, Amazon ASIN).
	for _, key := range []string{"pid", "asin"} {
		if v := u.Query().Get(key); v != "" {
			return v
		}
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(segments[i]); s != "" {
			return s
		}
	}
	return rawURL
}
