package srs

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// intervalMagnitudes renders day counts without a relative suffix.
var intervalMagnitudes = []humanize.RelTimeMagnitude{
	{D: humanize.Day, Format: "less than a day", DivBy: 1},
	{D: 2 * humanize.Day, Format: "1 day", DivBy: 1},
	{D: humanize.Week, Format: "%d days", DivBy: humanize.Day},
	{D: 2 * humanize.Week, Format: "1 week", DivBy: 1},
	{D: humanize.Month, Format: "%d weeks", DivBy: humanize.Week},
	{D: 2 * humanize.Month, Format: "1 month", DivBy: 1},
	{D: humanize.Year, Format: "%d months", DivBy: humanize.Month},
	{D: 2 * humanize.Year, Format: "1 year", DivBy: 1},
	{D: math.MaxInt64, Format: "%d years", DivBy: humanize.Year},
}

// maxFormattableDays is the longest span a time.Duration can hold.
const maxFormattableDays = int(math.MaxInt64 / int64(humanize.Day))

// FormatInterval renders an interval in days as a short human readable
// duration such as "1 day", "6 days" or "3 weeks". Larger units round down.
func FormatInterval(days int) string {
	if days < 0 {
		days = 0
	}
	if days > maxFormattableDays {
		days = maxFormattableDays
	}
	var base time.Time
	return humanize.CustomRelTime(
		base,
		base.Add(time.Duration(days)*humanize.Day),
		"",
		"",
		intervalMagnitudes,
	)
}
