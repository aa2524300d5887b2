package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Placeholder is shown for values the provider left empty.
const Placeholder = "---"

// FormatBytes formats a byte count into a human-readable string with 1 decimal place.
// Thresholds: <1KB → B, <1MB → KB, <1GB → MB, <1TB → GB, else TB.
func FormatBytes(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
		tb = gb * 1024
	)
	switch {
	case bytes < kb:
		return fmt.Sprintf("%d B", bytes)
	case bytes < mb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kb)
	case bytes < gb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	case bytes < tb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gb)
	default:
		return fmt.Sprintf("%.1f TB", float64(bytes)/tb)
	}
}

// FormatGigabytes formats a provider disk size given in whole GB.
func FormatGigabytes(gb int64) string {
	return FormatBytes(gb << 30)
}

// FormatNumber formats an integer with locale-style comma separators.
// Example: 12345678 → "12,345,678".
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	if n < 0 {
		return "-" + insertCommas(s[1:])
	}
	return insertCommas(s)
}

// FormatMoney formats an invoice amount with two decimals and thousands separators.
// Example: 1234.5 → "$1,234.50", -3 → "-$3.00".
func FormatMoney(amount float64) string {
	s := formatCommaFloat(amount, 2)
	if strings.HasPrefix(s, "-") {
		return "-$" + s[1:]
	}
	return "$" + s
}

// FormatOptional returns s, or Placeholder when s is blank.
func FormatOptional(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

// FormatBool renders a flag column.
func FormatBool(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// FormatDuration formats a latency. Values >= 1s are shown as seconds with
// 2 decimal places, smaller ones as ms with 2 decimal places.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return Placeholder
	}
	ms := float64(d) / float64(time.Millisecond)
	if ms >= 1000 {
		return fmt.Sprintf("%.2f s", ms/1000)
	}
	return fmt.Sprintf("%.2f ms", ms)
}

// formatCommaFloat formats a float with comma-separated thousands and the given precision.
func formatCommaFloat(f float64, prec int) string {
	formatted := strconv.FormatFloat(f, 'f', prec, 64)
	sign := ""
	if len(formatted) > 0 && formatted[0] == '-' {
		sign = "-"
		formatted = formatted[1:]
	}
	parts := strings.SplitN(formatted, ".", 2)
	intPart := insertCommas(parts[0])
	if len(parts) == 2 {
		return sign + intPart + "." + parts[1]
	}
	return sign + intPart
}

// insertCommas inserts comma separators into a digit string every 3 digits from the right.
func insertCommas(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var buf strings.Builder
	lead := n % 3
	if lead > 0 {
		buf.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(s[i : i+3])
	}
	return buf.String()
}
