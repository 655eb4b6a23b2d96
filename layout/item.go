// Package layout packs occurrences into the two display flavors used by
// calendar views: day buckets for month and agenda rows, and a fractional
// time grid for hour-based views.
package layout

import (
	"sort"

	"github.com/Tinnci/merkuro-github-fork/model"
)

// Kind identifies a layout flavor.
type Kind int

const (
	KindDayBuckets Kind = iota
	KindTimeGrid
)

// String provides a human-readable representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindDayBuckets:
		return "day-buckets"
	case KindTimeGrid:
		return "time-grid"
	default:
		return "unknown"
	}
}

// Item is one positioned occurrence.
//
// StartOffset and Duration are in days for day buckets and in period units
// for the time grid. WidthShare and XOffset are fractions of the row width.
type Item struct {
	Occurrence     model.Occurrence
	StartOffset    float64
	Duration       float64
	MaxConcurrency int
	WidthShare     float64
	XOffset        float64
}

// AllDay reports whether the item's occurrence is an all-day one.
func (it Item) AllDay() bool {
	return it.Occurrence.AllDay()
}

// End returns StartOffset + Duration.
func (it Item) End() float64 {
	return it.StartOffset + it.Duration
}

// Bucket is one stacked row of same-classification items.
type Bucket struct {
	AllDay bool
	Items  []Item
}

// sortOccurrences orders occs in place: all-day first by ascending span,
// then timed by start. Remaining ties go to the uid so output is stable
// across calls.
func sortOccurrences(occs []model.Occurrence) {
	sort.SliceStable(occs, func(i, j int) bool {
		a, b := occs[i], occs[j]
		if a.AllDay() != b.AllDay() {
			return a.AllDay()
		}
		if a.AllDay() {
			if sa, sb := a.SpanDays(), b.SpanDays(); sa != sb {
				return sa < sb
			}
		}
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.UID() < b.UID()
	})
}
