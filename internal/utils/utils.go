package utils

import (
	"fmt"
	"math"
)

// BytesToMB converts bytes to mebibytes.
func BytesToMB(bytes int64) float64 {
	return float64(bytes) / (1024 * 1024)
}

// BytesToMBRounded converts bytes to mebibytes rounded to two decimals, the
// precision used in conversion descriptors.
func BytesToMBRounded(bytes int64) float64 {
	return math.Round(BytesToMB(bytes)*100) / 100
}

// FormatBytesToMB formats bytes into a string representation in MB.
func FormatBytesToMB(bytes int64) string {
	return fmt.Sprintf("%.2f MB", BytesToMB(bytes))
}
