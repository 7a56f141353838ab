package provider

import "strings"

// BarColumns are the provider's field labels in the order bars are
// serialized for staging.
var BarColumns = []string{"Symbol", "Date", "Open", "High", "Low", "Close", "Adj Close", "Volume"}

// NormalizeColumn maps a provider field label to its staging column
// name: lower-cased, spaces replaced with underscores. The transform is
// pure, so the same label always yields the same column.
func NormalizeColumn(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// StagingColumns returns BarColumns normalized for the staging schema.
func StagingColumns() []string {
	cols := make([]string, len(BarColumns))
	for i, name := range BarColumns {
		cols[i] = NormalizeColumn(name)
	}
	return cols
}
