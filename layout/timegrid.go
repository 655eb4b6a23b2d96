package layout

import (
	"sort"
	"time"

	"github.com/Tinnci/merkuro-github-fork/model"
)

const minutesPerDay = 24 * 60

// widths closer than this are treated as equal
const epsilon = 1e-9

// GridOptions describes the window a time grid covers.
type GridOptions struct {
	// Start is the first day of the window.
	Start model.Date
	// Days is the number of days in the window, at least 1.
	Days int
	// PeriodLength is the number of minutes per grid unit, at least 1.
	PeriodLength int
	// Location is the zone whose wall clock positions timed occurrences;
	// nil means each occurrence's own location.
	Location *time.Location
}

// Valid reports whether opts describes a non-empty grid.
func (opts GridOptions) Valid() bool {
	return !opts.Start.IsZero() && opts.Days >= 1 && opts.PeriodLength >= 1
}

// TotalUnits is the grid length in period units.
func (opts GridOptions) TotalUnits() float64 {
	return float64(opts.Days*minutesPerDay) / float64(opts.PeriodLength)
}

// wallMinute returns the grid minute of t: its day index from Start times
// 1440 plus its wall clock minute of day. Days lengthened or shortened by a
// DST switch still map hour h to h.
func (opts GridOptions) wallMinute(t time.Time) int {
	if opts.Location != nil {
		t = t.In(opts.Location)
	}
	h, m, _ := t.Clock()
	return opts.Start.DaysTo(model.DateOf(t))*minutesPerDay + h*60 + m
}

// span is a timed occurrence's rendered extent in whole minutes from the
// window origin.
type span struct {
	occ        model.Occurrence
	start, end int
	width      float64
	x          float64
	concurrent int
}

// TimeGrid positions occurrences on a grid of opts.PeriodLength minute units.
//
// All-day occurrences come first as full-width banners. Timed occurrences
// follow in start order; each gets a width of 1/MaxConcurrency, where
// MaxConcurrency is the highest number of occurrences sharing any minute of
// its rendered span, and the leftmost horizontal slot not claimed by an
// earlier overlapping occurrence. Overlapping items never share horizontal
// space and the widths covering any instant sum to at most 1.
//
// Rendered spans are at least one unit long and are clamped to the window;
// occurrences entirely outside it are dropped.
func TimeGrid(occs []model.Occurrence, opts GridOptions) []Item {
	if !opts.Valid() || len(occs) == 0 {
		return nil
	}

	sorted := make([]model.Occurrence, len(occs))
	copy(sorted, occs)
	sortOccurrences(sorted)

	var (
		items []Item
		spans []*span
	)
	for _, o := range sorted {
		if o.AllDay() {
			if it, ok := bannerItem(o, opts); ok {
				items = append(items, it)
			}
			continue
		}
		if s, ok := timedSpan(o, opts); ok {
			spans = append(spans, s)
		}
	}

	tallyConcurrency(spans, opts.Days*minutesPerDay)
	assignSlots(spans)

	unit := float64(opts.PeriodLength)
	for _, s := range spans {
		items = append(items, Item{
			Occurrence:     s.occ,
			StartOffset:    float64(s.start) / unit,
			Duration:       float64(s.end-s.start) / unit,
			MaxConcurrency: s.concurrent,
			WidthShare:     s.width,
			XOffset:        s.x,
		})
	}
	return items
}

func bannerItem(o model.Occurrence, opts GridOptions) (Item, bool) {
	last := opts.Start.AddDays(opts.Days - 1)
	if o.LastDay().Before(opts.Start) || o.FirstDay().After(last) {
		return Item{}, false
	}
	first := max(0, opts.Start.DaysTo(o.FirstDay()))
	days := min(opts.Start.DaysTo(o.LastDay())+1, opts.Days) - first
	perDay := float64(minutesPerDay) / float64(opts.PeriodLength)
	return Item{
		Occurrence:     o,
		StartOffset:    float64(first) * perDay,
		Duration:       float64(days) * perDay,
		MaxConcurrency: 1,
		WidthShare:     1,
	}, true
}

func timedSpan(o model.Occurrence, opts GridOptions) (*span, bool) {
	total := opts.Days * minutesPerDay
	start := opts.wallMinute(o.Start)
	end := opts.wallMinute(o.End)
	if end < start {
		end = start
	}
	if start >= total || end < 0 || (end == 0 && start < 0) {
		return nil, false
	}

	start = max(start, 0)
	// at least one period unit, never past the window
	end = min(max(end, start+opts.PeriodLength), total)
	return &span{occ: o, start: start, end: end}, true
}

// tallyConcurrency counts occurrences per minute and stores the maximum
// count over each span.
func tallyConcurrency(spans []*span, total int) {
	if len(spans) == 0 {
		return
	}
	counts := make([]int, total)
	for _, s := range spans {
		for m := s.start; m < s.end; m++ {
			counts[m]++
		}
	}
	for _, s := range spans {
		peak := 1
		for m := s.start; m < s.end; m++ {
			peak = max(peak, counts[m])
		}
		s.concurrent = peak
		s.width = 1 / float64(peak)
	}
}

type gap struct{ x, w float64 }

// assignSlots places spans left to right in start order. Because earlier
// spans never start later, every earlier span overlapping s covers s's first
// minute, so the claims at that minute are all that s must avoid.
func assignSlots(spans []*span) {
	for i, s := range spans {
		var claims []*span
		for _, p := range spans[:i] {
			if p.end > s.start {
				claims = append(claims, p)
			}
		}
		sort.Slice(claims, func(a, b int) bool { return claims[a].x < claims[b].x })

		var gaps []gap
		cursor := 0.0
		for _, c := range claims {
			if c.x-cursor > epsilon {
				gaps = append(gaps, gap{cursor, c.x - cursor})
			}
			cursor = max(cursor, c.x+c.width)
		}
		if 1-cursor > epsilon {
			gaps = append(gaps, gap{cursor, 1 - cursor})
		}

		placed := false
		for _, g := range gaps {
			if g.w+epsilon >= s.width {
				s.x = g.x
				placed = true
				break
			}
		}
		if placed {
			continue
		}
		// fragmented: take the widest free gap and shrink to fit
		widest := gap{}
		for _, g := range gaps {
			if g.w > widest.w {
				widest = g
			}
		}
		s.x, s.width = widest.x, widest.w
	}
}
