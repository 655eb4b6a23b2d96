package layout

import (
	"github.com/Tinnci/merkuro-github-fork/model"
)

// DayBuckets groups the occurrences covering ref into stacked rows.
//
// The first unplaced occurrence seeds a bucket and every following occurrence
// of the same classification joins it, until the first one that does not
// match. The result therefore holds at most one all-day bucket followed by at
// most one timed bucket. Overlap inside a bucket is not resolved.
//
// Offsets are in days from ref; durations are clamped to periodDays.
func DayBuckets(occs []model.Occurrence, ref model.Date, periodDays int) []Bucket {
	if periodDays < 1 || ref.IsZero() {
		return nil
	}

	pool := make([]model.Occurrence, 0, len(occs))
	for _, o := range occs {
		if o.Covers(ref) {
			pool = append(pool, o)
		}
	}
	if len(pool) == 0 {
		return nil
	}
	sortOccurrences(pool)

	var buckets []Bucket
	for len(pool) > 0 {
		seed := pool[0]
		b := Bucket{AllDay: seed.AllDay(), Items: []Item{dayItem(seed, ref, periodDays)}}

		rest := pool[1:]
		n := 0
		for ; n < len(rest); n++ {
			if rest[n].AllDay() != b.AllDay {
				break
			}
			b.Items = append(b.Items, dayItem(rest[n], ref, periodDays))
		}
		pool = rest[n:]
		buckets = append(buckets, b)
	}
	return buckets
}

func dayItem(o model.Occurrence, ref model.Date, periodDays int) Item {
	start := max(0, ref.DaysTo(o.FirstDay()))
	duration := min(o.SpanDays(), periodDays-start)
	return Item{
		Occurrence:     o,
		StartOffset:    float64(start),
		Duration:       float64(duration),
		MaxConcurrency: 1,
		WidthShare:     1,
	}
}
