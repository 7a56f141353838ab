package alert

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/austerelabs/stockfinder/internal/models"
)

// WatchSource supplies the watches to evaluate on a tick
type WatchSource interface {
	GetEnabledWatches() ([]models.Watch, error)
}

// Ledger is the (symbol, day) dedup record behind the notifier
type Ledger interface {
	HasNotified(symbol string, day time.Time) (bool, error)
	RecordNotification(r *models.NotificationRecord) error
}

// PriceSource supplies the current market price for a symbol
type PriceSource interface {
	CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// PriceCache caches prices between ticks. Get returns false on a miss.
type PriceCache interface {
	Get(ctx context.Context, symbol string) (decimal.Decimal, bool)
	Set(ctx context.Context, symbol string, price decimal.Decimal)
}

// Sender delivers a notification over the push transport
type Sender interface {
	Send(ctx context.Context, title, body string) error
}

// Publisher emits an event after a notification goes out
type Publisher interface {
	PublishAlertTriggered(ctx context.Context, symbol string, price decimal.Decimal, message string) error
}

// Notifier evaluates watches on a fixed interval and sends at most one
// notification per (symbol, day). Every failure below the watch-list
// query is logged and contained: one bad symbol or one failed send
// never halts the loop.
type Notifier struct {
	watches   WatchSource
	ledger    Ledger
	prices    PriceSource
	cache     PriceCache
	sender    Sender
	publisher Publisher
	now       func() time.Time
}

// New creates a Notifier. cache and publisher may be nil when those
// integrations are disabled.
func New(watches WatchSource, ledger Ledger, prices PriceSource, sender Sender, cache PriceCache, publisher Publisher) *Notifier {
	return &Notifier{
		watches:   watches,
		ledger:    ledger,
		prices:    prices,
		cache:     cache,
		sender:    sender,
		publisher: publisher,
		now:       time.Now,
	}
}

// Tick evaluates every enabled watch once. It returns an error only
// when the watch list itself cannot be read.
func (n *Notifier) Tick(ctx context.Context) error {
	watches, err := n.watches.GetEnabledWatches()
	if err != nil {
		return fmt.Errorf("failed to load watches: %w", err)
	}
	if len(watches) == 0 {
		log.Println("No active watches configured")
		return nil
	}

	today := n.now().UTC().Truncate(24 * time.Hour)
	for _, w := range watches {
		n.checkWatch(ctx, w, today)
	}
	return nil
}

func (n *Notifier) checkWatch(ctx context.Context, w models.Watch, today time.Time) {
	price, err := n.currentPrice(ctx, w.Symbol)
	if err != nil {
		log.Printf("Error fetching price for %s: %v", w.Symbol, err)
		return
	}

	outcome := Evaluate(w, price)
	if outcome.Kind == OutcomeInBounds {
		return
	}

	already, err := n.ledger.HasNotified(w.Symbol, today)
	if err != nil {
		log.Printf("Error checking ledger for %s: %v", w.Symbol, err)
		return
	}
	if already {
		return
	}

	message := outcome.Message(w.Symbol, price)
	if err := n.sender.Send(ctx, "Stock alert: "+w.Symbol, message); err != nil {
		// Ledger stays untouched so the next tick retries the send.
		log.Printf("Error sending notification for %s: %v", w.Symbol, err)
		return
	}

	record := &models.NotificationRecord{
		Symbol:  w.Symbol,
		SentOn:  today,
		Price:   price,
		Message: message,
	}
	if err := n.ledger.RecordNotification(record); err != nil {
		log.Printf("Error recording notification for %s: %v", w.Symbol, err)
	}

	if n.publisher != nil {
		if err := n.publisher.PublishAlertTriggered(ctx, w.Symbol, price, message); err != nil {
			log.Printf("Error publishing alert event for %s: %v", w.Symbol, err)
		}
	}

	log.Printf("Notified for %s: %s", w.Symbol, message)
}

func (n *Notifier) currentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if n.cache != nil {
		if price, ok := n.cache.Get(ctx, symbol); ok {
			return price, nil
		}
	}

	price, err := n.prices.CurrentPrice(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}

	if n.cache != nil {
		n.cache.Set(ctx, symbol, price)
	}
	return price, nil
}

// Run ticks on the given interval until the context is cancelled. Tick
// errors are logged, never returned: the monitoring loop outlives any
// single failure.
func (n *Notifier) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := n.Tick(ctx); err != nil {
		log.Printf("Error on notifier tick: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("Notifier shutting down...")
			return
		case <-ticker.C:
			if err := n.Tick(ctx); err != nil {
				log.Printf("Error on notifier tick: %v", err)
			}
		}
	}
}
