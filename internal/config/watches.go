package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/austerelabs/stockfinder/internal/models"
)

// watchSeed mirrors one entry of the watch seed file:
//
//	MSTR:
//	  active: true
//	  lower_limit: 420
//	  upper_limit: 450
type watchSeed struct {
	Active     bool    `yaml:"active"`
	LowerLimit float64 `yaml:"lower_limit"`
	UpperLimit float64 `yaml:"upper_limit"`
}

// LoadWatchFile reads a YAML watch seed file keyed by ticker symbol.
// It backs the notifier when no watches are configured in the database.
func LoadWatchFile(path string) ([]models.Watch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read watch file %s: %w", path, err)
	}

	seeds := make(map[string]watchSeed)
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("failed to parse watch file %s: %w", path, err)
	}

	symbols := make([]string, 0, len(seeds))
	for symbol := range seeds {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	var watches []models.Watch
	for _, symbol := range symbols {
		seed := seeds[symbol]
		if seed.LowerLimit > seed.UpperLimit {
			return nil, fmt.Errorf("watch %s: lower_limit %v exceeds upper_limit %v", symbol, seed.LowerLimit, seed.UpperLimit)
		}
		watches = append(watches, models.Watch{
			Symbol:     symbol,
			LowerBound: decimal.NewFromFloat(seed.LowerLimit),
			UpperBound: decimal.NewFromFloat(seed.UpperLimit),
			Enabled:    seed.Active,
		})
	}

	return watches, nil
}
