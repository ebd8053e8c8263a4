// internal/domain/risk/format.go
package risk

import "strconv"

// formatNumber prints v with the shortest representation, so 24 stays "24" and 0.2 stays "0.2".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatNumber is the number format shared by USSD and chat replies.
func FormatNumber(v float64) string { return formatNumber(v) }
