package exporter

import (
	"fmt"
	"math"
)

// formatFloat formats a float64 for CSV output with exactly 2 decimal
// places; undefined values become empty cells
func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return fmt.Sprintf("%.2f", f)
}

// formatFloat4 is formatFloat with 4 decimal places, used for
// correlations and ratios
func formatFloat4(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return fmt.Sprintf("%.4f", f)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return fmt.Sprintf("%d", i)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
