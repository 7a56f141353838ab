package loader

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/austerelabs/stockfinder/internal/models"
)

// QuoteStore defines the store operations the loader needs
type QuoteStore interface {
	ResolveWatermarks() ([]models.Watermark, error)
	TruncateStaging() error
	StageQuotes(quotes []models.DailyQuote) error
	MergeStaged() (int64, error)
}

// BarProvider defines the market data operations the loader needs
type BarProvider interface {
	DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]models.DailyQuote, error)
}

// Publisher emits a load event after a successful merge
type Publisher interface {
	PublishLoadCompleted(ctx context.Context, symbols, staged int, merged int64) error
}

// Report summarizes one loader run
type Report struct {
	Symbols int
	Staged  int
	Merged  int64
	Skipped []string
	Failed  map[string]error
}

// Loader runs the incremental quote pipeline: resolve per-symbol
// watermarks, fetch only the missing window for each symbol, stage the
// combined batch, then merge it into the permanent table.
type Loader struct {
	store     QuoteStore
	provider  BarProvider
	publisher Publisher
	now       func() time.Time
}

// New creates a Loader. publisher may be nil when event publishing is
// disabled.
func New(store QuoteStore, provider BarProvider, publisher Publisher) *Loader {
	return &Loader{
		store:     store,
		provider:  provider,
		publisher: publisher,
		now:       time.Now,
	}
}

// Run executes one pipeline pass. A store failure while resolving
// watermarks or merging aborts the run; a provider failure for one
// symbol is logged and skipped so the rest of the batch still loads.
func (l *Loader) Run(ctx context.Context) (*Report, error) {
	watermarks, err := l.store.ResolveWatermarks()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watermarks: %w", err)
	}

	report := &Report{
		Symbols: len(watermarks),
		Failed:  make(map[string]error),
	}

	if len(watermarks) == 0 {
		log.Println("No active symbols configured, nothing to load")
		return report, nil
	}

	// Clear leftovers from a previous run so the staging table cannot
	// double-contribute rows to this merge.
	if err := l.store.TruncateStaging(); err != nil {
		return nil, fmt.Errorf("failed to clear staging: %w", err)
	}

	today := l.now().UTC().Truncate(24 * time.Hour)

	var batch []models.DailyQuote
	for _, w := range watermarks {
		bars, err := l.fetchIncremental(ctx, w, today)
		if err != nil {
			log.Printf("Error loading %s: %v", w.Symbol, err)
			report.Failed[w.Symbol] = err
			continue
		}
		if len(bars) == 0 {
			report.Skipped = append(report.Skipped, w.Symbol)
			continue
		}
		log.Printf("Loaded %d new bars for %s", len(bars), w.Symbol)
		batch = append(batch, bars...)
	}

	if len(batch) == 0 {
		log.Println("No new symbol data available")
		return report, nil
	}

	if err := l.store.StageQuotes(batch); err != nil {
		return nil, fmt.Errorf("failed to stage quotes: %w", err)
	}
	report.Staged = len(batch)

	merged, err := l.store.MergeStaged()
	if err != nil {
		return nil, fmt.Errorf("failed to merge staged quotes: %w", err)
	}
	report.Merged = merged
	log.Printf("Merged %d of %d staged rows into symbol_quotes", merged, report.Staged)

	if l.publisher != nil {
		if err := l.publisher.PublishLoadCompleted(ctx, report.Symbols, report.Staged, report.Merged); err != nil {
			log.Printf("Error publishing load event: %v", err)
		}
	}

	return report, nil
}

// fetchIncremental pulls the half-open window (watermark, today] for
// one symbol. The lower bound is exclusive: a symbol already at
// watermark D does not re-fetch D, so the request starts the day after.
// Bars at or before the watermark are dropped if the provider returns
// them anyway.
func (l *Loader) fetchIncremental(ctx context.Context, w models.Watermark, today time.Time) ([]models.DailyQuote, error) {
	start := w.MaxDate.AddDate(0, 0, 1)
	if start.After(today) {
		return nil, nil // already up to date
	}

	// end is exclusive in the provider call, so today itself is included.
	bars, err := l.provider.DailyBars(ctx, w.Symbol, start, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	fresh := make([]models.DailyQuote, 0, len(bars))
	for _, bar := range bars {
		if bar.Date.After(w.MaxDate) {
			fresh = append(fresh, bar)
		}
	}
	return fresh, nil
}
