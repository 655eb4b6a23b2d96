package export

import (
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tinnci/merkuro-github-fork/layout"
	"github.com/Tinnci/merkuro-github-fork/model"
)

var day = model.NewDate(2026, 1, 6)

func occurrence(uid string, start, end time.Time, allDay bool) model.Occurrence {
	ev := &model.Event{UID: uid, Title: strings.ToUpper(uid), Start: start, End: end, AllDay: allDay, Color: "#3daee9"}
	return model.Occurrence{Event: ev, Start: start, End: end}
}

func TestXML_TimeGrid(t *testing.T) {
	base := day.In(time.UTC)
	occs := []model.Occurrence{
		occurrence("a", base.Add(9*time.Hour), base.Add(10*time.Hour), false),
		occurrence("b", base.Add(9*time.Hour+30*time.Minute), base.Add(10*time.Hour+30*time.Minute), false),
	}
	opts := layout.GridOptions{Start: day, Days: 1, PeriodLength: 60}
	items := layout.TimeGrid(occs, opts)

	doc := XML(items, opts)
	root := doc.SelectElement("layout")
	require.NotNil(t, root)
	assert.Equal(t, "time-grid", root.SelectAttrValue("kind", ""))
	assert.Equal(t, "2026-01-06", root.SelectAttrValue("start", ""))

	elems := root.SelectElements("item")
	require.Len(t, elems, 2)
	assert.Equal(t, "a", elems[0].SelectAttrValue("uid", ""))
	assert.Equal(t, "9", elems[0].SelectAttrValue("offset", ""))
	assert.Equal(t, "0.5", elems[0].SelectAttrValue("width", ""))
	assert.Equal(t, "0.5", elems[1].SelectAttrValue("x", ""))
	assert.Equal(t, "9.5", elems[1].SelectAttrValue("offset", ""))

	s, err := WriteString(doc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s, "<?xml"))

	kind, records, err := Parse(s)
	require.NoError(t, err)
	assert.Equal(t, layout.KindTimeGrid, kind)
	require.Len(t, records, 2)
	assert.Equal(t, "B", records[1].Title)
	assert.Equal(t, 2, records[1].MaxConcurrency)
	assert.Equal(t, -1, records[1].Bucket)
	assert.True(t, records[0].Start.Equal(occs[0].Start))
}

func TestBucketsXML(t *testing.T) {
	base := day.In(time.UTC)
	occs := []model.Occurrence{
		occurrence("holiday", base, base.AddDate(0, 0, 1), true),
		occurrence("standup", base.Add(9*time.Hour), base.Add(9*time.Hour+15*time.Minute), false),
	}
	buckets := layout.DayBuckets(occs, day, 7)

	s, err := WriteString(BucketsXML(day, buckets))
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(s))
	bucketElems := doc.FindElements("//bucket")
	require.Len(t, bucketElems, 2)
	assert.Equal(t, "true", bucketElems[0].SelectAttrValue("all-day", ""))
	assert.Equal(t, "false", bucketElems[1].SelectAttrValue("all-day", ""))

	kind, records, err := Parse(s)
	require.NoError(t, err)
	assert.Equal(t, layout.KindDayBuckets, kind)
	require.Len(t, records, 2)
	assert.Equal(t, "holiday", records[0].UID)
	assert.True(t, records[0].AllDay)
	assert.Equal(t, 0, records[0].Bucket)
	assert.Equal(t, 1, records[1].Bucket)
	assert.Equal(t, 1.0, records[1].Duration)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Not XML", "<<<"},
		{"Wrong root", "<grid/>"},
		{"Unknown kind", `<layout kind="spiral"/>`},
		{"Bad time", `<layout kind="time-grid"><item uid="x" start="yesterday"/></layout>`},
		{"Bad number", `<layout kind="time-grid"><item uid="x" start="2026-01-06T09:00:00Z" end="2026-01-06T10:00:00Z" offset="nine"/></layout>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.input)
			assert.Error(t, err)
		})
	}
}
