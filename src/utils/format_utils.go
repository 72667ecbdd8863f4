package utils

import (
	"github.com/dustin/go-humanize"
)

// FormatTWD renders a market value with thousands separators and no
// decimals, matching how the charts display it.
func FormatTWD(value float64) string {
	return humanize.CommafWithDigits(value, 0)
}

// FormatCount renders a row count with thousands separators.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}
