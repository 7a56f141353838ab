package alert

import "github.com/austerelabs/stockfinder/internal/models"

// StaticSource serves a fixed watch list, typically loaded from a YAML
// seed file.
type StaticSource []models.Watch

// GetEnabledWatches returns the enabled subset of the static list
func (s StaticSource) GetEnabledWatches() ([]models.Watch, error) {
	var enabled []models.Watch
	for _, w := range s {
		if w.Enabled {
			enabled = append(enabled, w)
		}
	}
	return enabled, nil
}

// FallbackSource queries Primary and falls back to Fallback when the
// primary has no watches configured. A primary error is still an
// error; the fallback only covers the empty case.
type FallbackSource struct {
	Primary  WatchSource
	Fallback WatchSource
}

// GetEnabledWatches implements WatchSource
func (f FallbackSource) GetEnabledWatches() ([]models.Watch, error) {
	watches, err := f.Primary.GetEnabledWatches()
	if err != nil {
		return nil, err
	}
	if len(watches) == 0 && f.Fallback != nil {
		return f.Fallback.GetEnabledWatches()
	}
	return watches, nil
}
