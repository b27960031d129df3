package pr

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	lo "github.com/samber/lo"
)

const (
	// UnknownLabel replaces empty status and contributor values.
	UnknownLabel = "Unknown"
	// InvalidDate labels records whose created_at cannot be parsed.
	InvalidDate = "Invalid Date"
	// DefaultTopContributors is how many contributors the ranked view keeps.
	DefaultTopContributors = 5
	// NeutralColor is used for statuses outside the palette.
	NeutralColor = "#6b7280"

	monthLayout = "Jan 2006"
)

// StatusColors maps known status labels to their display color.
var StatusColors = map[string]string{
	"Awaiting Review": "#4f46e5",
	"Awaiting Merger": "#10b981",
	"Merged":          "#10b981",
	"Closed":          "#ef4444",
	"Draft":           "#6b7280",
	"Open":            "#4f46e5",
}

// Bucket is a half-open [MinDays, MaxDays) age interval.
type Bucket struct {
	Label   string
	MinDays float64
	MaxDays float64
}

// AgeBuckets partition [0, +inf) days; negative ages land in the first one.
var AgeBuckets = []Bucket{
	{Label: "<1 day", MinDays: 0, MaxDays: 1},
	{Label: "1-2 days", MinDays: 1, MaxDays: 2},
	{Label: "2-3 days", MinDays: 2, MaxDays: 3},
	{Label: "3-5 days", MinDays: 3, MaxDays: 5},
	{Label: ">5 days", MinDays: 5, MaxDays: math.Inf(1)},
}

// countOrdered counts records per key, labels in first-seen order.
func countOrdered(records []Record, key func(Record) string) []LabelCount {
	keys := lo.Map(records, func(r Record, _ int) string { return key(r) })
	counts := lo.CountValues(keys)
	return lo.Map(lo.Uniq(keys), func(k string, _ int) LabelCount {
		return LabelCount{Label: k, Count: counts[k]}
	})
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownLabel
	}
	return s
}

// Trend counts records per calendar month of created_at. Callers pass the
// unfiltered dataset.
func Trend(all []Record, loc *time.Location) []LabelCount {
	return countOrdered(all, func(r Record) string {
		t, ok := ParseTime(r.Get(ColCreatedAt), loc)
		if !ok {
			return InvalidDate
		}
		if loc != nil {
			t = t.In(loc)
		}
		return t.Format(monthLayout)
	})
}

// StatusDistribution counts records per pr_state and attaches the palette color.
func StatusDistribution(records []Record) []StatusSlice {
	counts := countOrdered(records, func(r Record) string { return orUnknown(r.Get(ColState)) })
	return lo.Map(counts, func(c LabelCount, _ int) StatusSlice {
		return StatusSlice{Label: c.Label, Count: c.Count, Color: StatusColor(c.Label)}
	})
}

// StatusColor returns the palette color for a status label.
func StatusColor(status string) string {
	if c, ok := StatusColors[status]; ok {
		return c
	}
	return NeutralColor
}

// TopContributors ranks Actor values by record count, descending, keeping at
// most n. Equal counts keep first-seen order.
func TopContributors(records []Record, n int) []LabelCount {
	ranked := countOrdered(records, func(r Record) string { return orUnknown(r.Get(ColActor)) })
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if n < 0 {
		n = 0
	}
	return lo.Slice(ranked, 0, n)
}

// AgeHours reads the leading decimal number of age_hours, so "12h" is 12.
// Values with no numeric prefix, or that are not finite, are zero.
func AgeHours(r Record) float64 {
	h, err := strconv.ParseFloat(numericPrefix(r.Get(ColAgeHours)), 64)
	if err != nil || math.IsNaN(h) || math.IsInf(h, 0) {
		return 0
	}
	return h
}

// numericPrefix returns the longest prefix of s, after leading space, that
// reads as a decimal number with optional sign, fraction and exponent.
func numericPrefix(s string) string {
	s = strings.TrimLeft(s, " \t\r\n")
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for ; i < len(s) && isDigit(s[i]); i++ {
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for ; i < len(s) && isDigit(s[i]); i++ {
			digits++
		}
	}
	if digits == 0 {
		return ""
	}
	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			end = j
		}
	}
	return s[:end]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// BucketFor returns the index into AgeBuckets for an age in hours.
func BucketFor(hours float64) int {
	days := hours / 24
	for i, b := range AgeBuckets {
		if days < b.MaxDays {
			return i
		}
	}
	return len(AgeBuckets) - 1
}

// AgeHistogram counts records per age bucket. Every bucket is present.
func AgeHistogram(records []Record) []LabelCount {
	out := lo.Map(AgeBuckets, func(b Bucket, _ int) LabelCount { return LabelCount{Label: b.Label} })
	for _, r := range records {
		out[BucketFor(AgeHours(r))].Count++
	}
	return out
}
