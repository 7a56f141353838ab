package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/austerelabs/stockfinder/internal/config"
	"github.com/austerelabs/stockfinder/internal/models"
)

// Client fetches daily bars and current prices from the Yahoo Finance
// chart API. The provider is treated as unreliable: missing tickers,
// empty ranges, and transient errors are all reported as ordinary
// errors for the caller to skip past.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a provider client from configuration
func NewClient(cfg config.ProviderConfig) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// DailyBars fetches one OHLCV bar per trading day for the window
// [start, end). Yahoo treats period1 as inclusive, so the loader passes
// watermark+1 day to keep the watermark itself out of the result.
func (c *Client) DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]models.DailyQuote, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(end.Unix(), 10))
	params.Set("interval", "1d")
	params.Set("includeAdjustedClose", "true")

	resp, err := c.getChart(ctx, symbol, params)
	if err != nil {
		return nil, err
	}

	result := resp.Chart.Result[0]
	if len(result.Timestamp) == 0 {
		// No trading days in the window. Not an error.
		return nil, nil
	}
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote indicators for %s", symbol)
	}

	quote := result.Indicators.Quote[0]
	n := len(result.Timestamp)
	if len(quote.Open) < n || len(quote.High) < n || len(quote.Low) < n ||
		len(quote.Close) < n || len(quote.Volume) < n {
		return nil, fmt.Errorf("misaligned quote arrays for %s: %d timestamps", symbol, n)
	}

	var adjClose []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjClose = result.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]models.DailyQuote, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if quote.Open[i] == nil || quote.Close[i] == nil {
			continue // halted or partial bar
		}

		bar := models.DailyQuote{
			Symbol: symbol,
			Date:   time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Open:   decimal.NewFromFloat(*quote.Open[i]),
			Close:  decimal.NewFromFloat(*quote.Close[i]),
		}
		if quote.High[i] != nil {
			bar.High = decimal.NewFromFloat(*quote.High[i])
		}
		if quote.Low[i] != nil {
			bar.Low = decimal.NewFromFloat(*quote.Low[i])
		}
		if quote.Volume[i] != nil {
			bar.Volume = int64(*quote.Volume[i])
		}
		if i < len(adjClose) && adjClose[i] != nil {
			bar.AdjClose = decimal.NewFromFloat(*adjClose[i])
		} else {
			bar.AdjClose = bar.Close
		}

		bars = append(bars, bar)
	}

	return bars, nil
}

// CurrentPrice fetches the latest market price for a symbol, falling
// back to the last close when the regular market price is absent.
func (c *Client) CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("range", "1d")
	params.Set("interval", "1d")

	resp, err := c.getChart(ctx, symbol, params)
	if err != nil {
		return decimal.Zero, err
	}

	result := resp.Chart.Result[0]
	if result.Meta.RegularMarketPrice > 0 {
		return decimal.NewFromFloat(result.Meta.RegularMarketPrice), nil
	}

	if len(result.Indicators.Quote) > 0 {
		closes := result.Indicators.Quote[0].Close
		for i := len(closes) - 1; i >= 0; i-- {
			if closes[i] != nil {
				return decimal.NewFromFloat(*closes[i]), nil
			}
		}
	}

	return decimal.Zero, fmt.Errorf("no current price for %s", symbol)
}

func (c *Client) getChart(ctx context.Context, symbol string, params url.Values) (*chartResponse, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", symbol, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed for %s: %w", symbol, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response for %s: %w", symbol, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d for %s", httpResp.StatusCode, symbol)
	}

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response for %s: %w", symbol, err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("provider error for %s: %s - %s", symbol, resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no result for %s", symbol)
	}

	return &resp, nil
}
