package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/austerelabs/stockfinder/internal/config"
)

const chartBody = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "AAPL", "regularMarketPrice": 178.72},
      "timestamp": [1705276800, 1705363200],
      "indicators": {
        "quote": [{
          "open":   [175.0, 177.0],
          "high":   [178.5, 180.0],
          "low":    [174.0, 176.0],
          "close":  [177.25, 179.0],
          "volume": [55000000, 60000000]
        }],
        "adjclose": [{"adjclose": [176.9, 178.6]}]
      }
    }],
    "error": null
  }
}`

const errorBody = `{
  "chart": {
    "result": null,
    "error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}
  }
}`

func newTestClient(serverURL string) *Client {
	return NewClient(config.ProviderConfig{
		BaseURL:        serverURL,
		TimeoutSeconds: 5,
		UserAgent:      "stockfinder-test",
	})
}

func TestDailyBars(t *testing.T) {
	var gotPath, gotQuery, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, chartBody)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	start := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)

	bars, err := client.DailyBars(context.Background(), "AAPL", start, end)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, "/v8/finance/chart/AAPL", gotPath)
	assert.Contains(t, gotQuery, "interval=1d")
	assert.Contains(t, gotQuery, fmt.Sprintf("period1=%d", start.Unix()))
	assert.Contains(t, gotQuery, fmt.Sprintf("period2=%d", end.Unix()))
	assert.Equal(t, "stockfinder-test", gotAgent)

	first := bars[0]
	assert.Equal(t, "AAPL", first.Symbol)
	assert.True(t, first.Date.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.True(t, decimal.NewFromFloat(177.25).Equal(first.Close))
	assert.True(t, decimal.NewFromFloat(176.9).Equal(first.AdjClose))
	assert.Equal(t, int64(55000000), first.Volume)
}

func TestDailyBars_SkipsNullBars(t *testing.T) {
	body := `{
	  "chart": {
	    "result": [{
	      "meta": {"symbol": "AAPL"},
	      "timestamp": [1705276800, 1705363200],
	      "indicators": {
	        "quote": [{
	          "open":   [null, 177.0],
	          "high":   [null, 180.0],
	          "low":    [null, 176.0],
	          "close":  [null, 179.0],
	          "volume": [null, 60000000]
	        }]
	      }
	    }],
	    "error": null
	  }
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	bars, err := client.DailyBars(context.Background(), "AAPL", time.Now().AddDate(0, 0, -2), time.Now())
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.True(t, decimal.NewFromFloat(179.0).Equal(bars[0].Close))
	// Without an adjclose series the close doubles as adjusted close.
	assert.True(t, decimal.NewFromFloat(179.0).Equal(bars[0].AdjClose))
}

func TestDailyBars_MisalignedArraysError(t *testing.T) {
	// Two timestamps but length-1 indicator arrays. A truncated response
	// must surface as an ordinary error the loader can skip past.
	body := `{
	  "chart": {
	    "result": [{
	      "meta": {"symbol": "AAPL"},
	      "timestamp": [1705276800, 1705363200],
	      "indicators": {
	        "quote": [{
	          "open":   [175.0],
	          "high":   [178.5],
	          "low":    [174.0],
	          "close":  [177.25],
	          "volume": [55000000]
	        }]
	      }
	    }],
	    "error": null
	  }
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.DailyBars(context.Background(), "AAPL", time.Now().AddDate(0, 0, -2), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "misaligned quote arrays")
}

func TestDailyBars_ShortAdjCloseFallsBackToClose(t *testing.T) {
	body := `{
	  "chart": {
	    "result": [{
	      "meta": {"symbol": "AAPL"},
	      "timestamp": [1705276800, 1705363200],
	      "indicators": {
	        "quote": [{
	          "open":   [175.0, 177.0],
	          "high":   [178.5, 180.0],
	          "low":    [174.0, 176.0],
	          "close":  [177.25, 179.0],
	          "volume": [55000000, 60000000]
	        }],
	        "adjclose": [{"adjclose": [176.9]}]
	      }
	    }],
	    "error": null
	  }
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	bars, err := client.DailyBars(context.Background(), "AAPL", time.Now().AddDate(0, 0, -2), time.Now())
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.True(t, decimal.NewFromFloat(176.9).Equal(bars[0].AdjClose))
	assert.True(t, decimal.NewFromFloat(179.0).Equal(bars[1].AdjClose))
}

func TestDailyBars_EmptyWindowIsNotAnError(t *testing.T) {
	body := `{"chart": {"result": [{"meta": {"symbol": "AAPL"}, "timestamp": [], "indicators": {"quote": []}}], "error": null}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	bars, err := client.DailyBars(context.Background(), "AAPL", time.Now(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestDailyBars_ProviderErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, errorBody)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.DailyBars(context.Background(), "NOPE", time.Now(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "may be delisted")
}

func TestDailyBars_HTTPStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.DailyBars(context.Background(), "AAPL", time.Now(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestCurrentPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartBody)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	price, err := client.CurrentPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(178.72).Equal(price))
}

func TestCurrentPrice_FallsBackToLastClose(t *testing.T) {
	body := `{
	  "chart": {
	    "result": [{
	      "meta": {"symbol": "AAPL"},
	      "timestamp": [1705276800, 1705363200],
	      "indicators": {
	        "quote": [{
	          "open":   [175.0, 177.0],
	          "high":   [178.5, 180.0],
	          "low":    [174.0, 176.0],
	          "close":  [177.25, null],
	          "volume": [55000000, null]
	        }]
	      }
	    }],
	    "error": null
	  }
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	price, err := client.CurrentPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(177.25).Equal(price))
}

func TestNormalizeColumn(t *testing.T) {
	tests := map[string]string{
		"Open":      "open",
		"Adj Close": "adj_close",
		"Date":      "date",
		"VOLUME":    "volume",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeColumn(in))
		// Deterministic: repeated application yields the same name.
		assert.Equal(t, want, NormalizeColumn(in))
	}
}

func TestStagingColumns(t *testing.T) {
	assert.Equal(t,
		[]string{"symbol", "date", "open", "high", "low", "close", "adj_close", "volume"},
		StagingColumns(),
	)
}
