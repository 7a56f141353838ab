package alert

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/austerelabs/stockfinder/internal/models"
)

// Outcome kind constants
const (
	OutcomeInBounds = "IN_BOUNDS"
	OutcomeBelow    = "BELOW"
	OutcomeAbove    = "ABOVE"
)

// Outcome is the result of evaluating a watch against a price. For an
// out-of-bounds outcome, Bound is the crossed bound and Delta how far
// past it the price sits.
type Outcome struct {
	Kind  string
	Bound decimal.Decimal
	Delta decimal.Decimal
}

// Evaluate compares a price against a watch's band. Pure function, no
// I/O.
func Evaluate(w models.Watch, price decimal.Decimal) Outcome {
	if price.GreaterThan(w.UpperBound) {
		return Outcome{
			Kind:  OutcomeAbove,
			Bound: w.UpperBound,
			Delta: price.Sub(w.UpperBound),
		}
	}
	if price.LessThan(w.LowerBound) {
		return Outcome{
			Kind:  OutcomeBelow,
			Bound: w.LowerBound,
			Delta: w.LowerBound.Sub(price),
		}
	}
	return Outcome{Kind: OutcomeInBounds}
}

// Message renders the notification text for an out-of-bounds outcome
func (o Outcome) Message(symbol string, price decimal.Decimal) string {
	switch o.Kind {
	case OutcomeAbove:
		return fmt.Sprintf("%s at %s is above upper bound %s (+%s)", symbol, price, o.Bound, o.Delta)
	case OutcomeBelow:
		return fmt.Sprintf("%s at %s is below lower bound %s (-%s)", symbol, price, o.Bound, o.Delta)
	default:
		return fmt.Sprintf("%s at %s is in bounds", symbol, price)
	}
}
