package database

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/austerelabs/stockfinder/internal/models"
)

func testQuote(symbol string, date time.Time, close float64) models.DailyQuote {
	c := decimal.NewFromFloat(close)
	return models.DailyQuote{
		Symbol:   symbol,
		Date:     date,
		Open:     c,
		High:     c.Add(decimal.NewFromInt(1)),
		Low:      c.Sub(decimal.NewFromInt(1)),
		Close:    c,
		AdjClose: c,
		Volume:   1000000,
	}
}

func addSymbol(t *testing.T, db *DB, symbol string, active bool) {
	t.Helper()
	require.NoError(t, db.CreateSymbol(&models.Symbol{
		Symbol: symbol,
		Type:   "stock",
		Active: active,
	}))
}

func TestQuoteRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	jan10 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	jan11 := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
	jan12 := time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)

	t.Run("ResolveWatermarks uses sentinel for unseen symbols", func(t *testing.T) {
		testDB.TruncateAll(t)

		addSymbol(t, testDB.DB, "AAPL", true)
		addSymbol(t, testDB.DB, "MSTR", true)

		require.NoError(t, testDB.StageQuotes([]models.DailyQuote{testQuote("AAPL", jan10, 175)}))
		_, err := testDB.MergeStaged()
		require.NoError(t, err)

		watermarks, err := testDB.ResolveWatermarks()
		require.NoError(t, err)
		require.Len(t, watermarks, 2)

		byName := make(map[string]models.Watermark)
		for _, w := range watermarks {
			byName[w.Symbol] = w
		}
		assert.True(t, byName["AAPL"].MaxDate.Equal(jan10))
		assert.True(t, byName["MSTR"].MaxDate.Equal(EarliestQuoteDate),
			"symbol with no history must get the sentinel date, got %s", byName["MSTR"].MaxDate)
	})

	t.Run("ResolveWatermarks excludes inactive symbols", func(t *testing.T) {
		testDB.TruncateAll(t)

		addSymbol(t, testDB.DB, "AAPL", true)
		addSymbol(t, testDB.DB, "SNOW", false)

		watermarks, err := testDB.ResolveWatermarks()
		require.NoError(t, err)
		require.Len(t, watermarks, 1)
		assert.Equal(t, "AAPL", watermarks[0].Symbol)
	})

	t.Run("MergeStaged is idempotent", func(t *testing.T) {
		testDB.TruncateAll(t)
		addSymbol(t, testDB.DB, "AAPL", true)

		batch := []models.DailyQuote{
			testQuote("AAPL", jan10, 175),
			testQuote("AAPL", jan11, 177),
			testQuote("AAPL", jan12, 179),
		}
		require.NoError(t, testDB.StageQuotes(batch))

		merged, err := testDB.MergeStaged()
		require.NoError(t, err)
		assert.Equal(t, int64(3), merged)

		// Merging the same staged batch again changes nothing.
		merged, err = testDB.MergeStaged()
		require.NoError(t, err)
		assert.Equal(t, int64(0), merged)

		count, err := testDB.CountQuotes("AAPL")
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("MergeStaged never overwrites existing rows", func(t *testing.T) {
		testDB.TruncateAll(t)
		addSymbol(t, testDB.DB, "AAPL", true)

		require.NoError(t, testDB.StageQuotes([]models.DailyQuote{testQuote("AAPL", jan10, 175)}))
		_, err := testDB.MergeStaged()
		require.NoError(t, err)

		// Stage a conflicting row with a different close. Existing data
		// wins on merge.
		require.NoError(t, testDB.TruncateStaging())
		require.NoError(t, testDB.StageQuotes([]models.DailyQuote{testQuote("AAPL", jan10, 999)}))
		merged, err := testDB.MergeStaged()
		require.NoError(t, err)
		assert.Equal(t, int64(0), merged)

		latest, err := testDB.GetLatestQuote("AAPL")
		require.NoError(t, err)
		assert.True(t, decimal.NewFromFloat(175).Equal(latest.Close))
	})

	t.Run("TruncateStaging prevents double contribution", func(t *testing.T) {
		testDB.TruncateAll(t)
		addSymbol(t, testDB.DB, "AAPL", true)

		require.NoError(t, testDB.StageQuotes([]models.DailyQuote{testQuote("AAPL", jan10, 175)}))
		require.NoError(t, testDB.TruncateStaging())

		merged, err := testDB.MergeStaged()
		require.NoError(t, err)
		assert.Equal(t, int64(0), merged)
	})

	t.Run("StageQuotes empty batch is a no-op", func(t *testing.T) {
		testDB.TruncateAll(t)
		require.NoError(t, testDB.StageQuotes(nil))
	})

	t.Run("GetQuotesRange returns rows ordered by date", func(t *testing.T) {
		testDB.TruncateAll(t)
		addSymbol(t, testDB.DB, "AAPL", true)

		require.NoError(t, testDB.StageQuotes([]models.DailyQuote{
			testQuote("AAPL", jan12, 179),
			testQuote("AAPL", jan10, 175),
			testQuote("AAPL", jan11, 177),
		}))
		_, err := testDB.MergeStaged()
		require.NoError(t, err)

		quotes, err := testDB.GetQuotesRange("AAPL", jan10, jan11)
		require.NoError(t, err)
		require.Len(t, quotes, 2)
		assert.True(t, quotes[0].Date.Before(quotes[1].Date))
	})
}
