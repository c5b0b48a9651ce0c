// Package jpx assembles the external inputs of the calendar rebuild: the
// public holiday list and CSV exports of the exchange's settlement-price
// and trading-day publications.
package jpx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	hc *http.Client
}

func NewClient() *Client {
	return &Client{
		hc: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     30 * time.Second,
			},
			Timeout: 30 * time.Second,
		},
	}
}

// FetchHolidays downloads and parses the holiday_jp YAML list.
func (c *Client) FetchHolidays(ctx context.Context, url string) ([]Holiday, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch holidays: %w", err)
	}
	return parseHolidayYAML(body)
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	var lastErr error
	backoff := 500 * time.Millisecond
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 3
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; jpxcal/1.0)")
		req.Header.Set("Accept", "text/yaml,text/plain,*/*")

		resp, err := c.hc.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
		_ = resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK && readErr == nil:
			return body, nil
		case resp.StatusCode == 429 || resp.StatusCode == 502 || resp.StatusCode == 503 || resp.StatusCode == 504:
			lastErr = fmt.Errorf("http %d", resp.StatusCode)
			continue
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("http %d", resp.StatusCode)
		default:
			lastErr = readErr
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("unknown error")
	}
	return nil, lastErr
}
