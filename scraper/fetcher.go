package scraper

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"pricewatch/models"
)

// FetchError indicates the page could not be fetched: network failure,
// timeout, or a non-200 status. Always recoverable by the caller.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// identityProfile is one realistic browser identity used when rotating
// headers against sites that resist generic fetching.
type identityProfile struct {
	userAgent      string
	accept         string
	acceptLanguage string
}

// Profiles are tried in order; the rotation stops at the first 200.
var flipkartProfiles = []identityProfile{
	{
		userAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		acceptLanguage: "en-IN,en;q=0.9",
	},
	{
		userAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
		accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		acceptLanguage: "en-US,en;q=0.8",
	},
	{
		userAgent:      "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
		accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		acceptLanguage: "en-GB,en;q=0.9",
	},
	{
		userAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
		accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		acceptLanguage: "en-IN,en-US;q=0.9,en;q=0.8",
	},
}

const genericUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetcher retrieves product pages. For the Flipkart family it rotates
// through identity profiles with redirects disabled; every other site gets
// a single generic desktop request.
type Fetcher struct {
	client         *http.Client
	noRedirect     *http.Client
	timeout        time.Duration
	attemptDelay   time.Duration
	maxResponseLen int64
}

// NewFetcher creates a fetcher with the given per-request timeout. Rotation
// attempts get a slightly longer timeout since blocked hosts respond slowly.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		// Redirects on the specialized family mean a challenge page, not
		// content, so they are treated as a failed attempt.
		noRedirect: &http.Client{
			Timeout: timeout + 5*time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		timeout:        timeout,
		attemptDelay:   500 * time.Millisecond,
		maxResponseLen: 5 << 20, // 5MB is plenty for any product page
	}
}

// Fetch retrieves the page markup for a URL, choosing the strategy by site
// family. Returns a *FetchError on any failure.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if DetectSiteType(rawURL) == models.SiteFlipkart {
		return f.fetchWithRotation(ctx, rawURL)
	}
	return f.fetchOnce(ctx, f.client, rawURL, identityProfile{
		userAgent:      genericUserAgent,
		accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		acceptLanguage: "en-US,en;q=0.9",
	})
}

// fetchWithRotation walks the fixed profile list in order, waiting a little
// longer before each subsequent attempt. Exhausting the list is a FetchError.
func (f *Fetcher) fetchWithRotation(ctx context.Context, rawURL string) (string, error) {
	var lastErr error
	for i, profile := range flipkartProfiles {
		if i > 0 {
			delay := time.Duration(i) * f.attemptDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", &FetchError{URL: rawURL, Err: ctx.Err()}
			}
		}

		body, err := f.fetchOnce(ctx, f.noRedirect, rawURL, profile)
		if err == nil {
			if i > 0 {
				log.Printf("Fetched %s on profile attempt %d", rawURL, i+1)
			}
			return body, nil
		}
		lastErr = err
	}
	return "", &FetchError{URL: rawURL, Err: fmt.Errorf("all %d identity profiles exhausted: %v", len(flipkartProfiles), lastErr)}
}

func (f *Fetcher) fetchOnce(ctx context.Context, client *http.Client, rawURL string, profile identityProfile) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", profile.userAgent)
	req.Header.Set("Accept", profile.accept)
	req.Header.Set("Accept-Language", profile.acceptLanguage)
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := client.Do(req)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxResponseLen))
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	return string(body), nil
}
