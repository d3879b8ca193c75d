// Package units converts byte counts to the human readable strings stored
// alongside each file record, and back.
package units

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

var unitMultipliers = map[string]float64{
	"B":     1,
	"Bytes": 1,
	"KB":    1 << 10,
	"MB":    1 << 20,
	"GB":    1 << 30,
	"TB":    1 << 40,
}

// FormatSize renders bytes in the largest unit that keeps the value at or
// above one, with at most two decimals and no trailing zeros.
// Values beyond the TB range stay in TB.
func FormatSize(bytes int64) string {
	if bytes == 0 {
		return "0 Bytes"
	}
	sign := ""
	if bytes < 0 {
		sign = "-"
		bytes = -bytes
	}

	value := float64(bytes)
	i := 0
	for value >= 1024 && i < len(sizeUnits)-1 {
		value /= 1024
		i++
	}

	value = math.Round(value*100) / 100
	return sign + humanize.FtoaWithDigits(value, 2) + " " + sizeUnits[i]
}

// ParseSize converts a "<magnitude> <unit>" string back to bytes. An
// unknown unit or a malformed magnitude yields 0.
func ParseSize(s string) int64 {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return 0
	}
	magnitude, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}
	multiplier, ok := unitMultipliers[fields[1]]
	if !ok {
		return 0
	}
	return int64(math.Round(magnitude * multiplier))
}

// TotalSize sums human readable sizes and formats the total.
func TotalSize(sizes []string) string {
	var total int64
	for _, s := range sizes {
		total += ParseSize(s)
	}
	return FormatSize(total)
}
