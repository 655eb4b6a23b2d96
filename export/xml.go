// Package export renders layout results as XML documents for rendering
// collaborators that do not link against the engine.
package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/Tinnci/merkuro-github-fork/layout"
	"github.com/Tinnci/merkuro-github-fork/model"
)

const (
	elemLayout = "layout"
	elemBucket = "bucket"
	elemItem   = "item"
)

// Record is the flat form of one exported item.
type Record struct {
	UID            string
	Title          string
	Color          string
	Start          time.Time
	End            time.Time
	AllDay         bool
	StartOffset    float64
	Duration       float64
	WidthShare     float64
	XOffset        float64
	MaxConcurrency int
	Bucket         int // index of the enclosing bucket, -1 for time grids
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func newDocument(kind layout.Kind) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(elemLayout)
	root.CreateAttr("kind", kind.String())
	return doc, root
}

func itemElement(parent *etree.Element, it layout.Item) {
	elem := parent.CreateElement(elemItem)
	occ := it.Occurrence
	elem.CreateAttr("uid", occ.UID())
	if occ.Event != nil {
		if occ.Event.Title != "" {
			elem.CreateAttr("title", occ.Event.Title)
		}
		if occ.Event.Color != "" {
			elem.CreateAttr("color", occ.Event.Color)
		}
	}
	elem.CreateAttr("start", occ.Start.Format(time.RFC3339))
	elem.CreateAttr("end", occ.End.Format(time.RFC3339))
	elem.CreateAttr("all-day", strconv.FormatBool(it.AllDay()))
	elem.CreateAttr("offset", formatFloat(it.StartOffset))
	elem.CreateAttr("duration", formatFloat(it.Duration))
	elem.CreateAttr("width", formatFloat(it.WidthShare))
	elem.CreateAttr("x", formatFloat(it.XOffset))
	elem.CreateAttr("concurrency", strconv.Itoa(it.MaxConcurrency))
}

// XML converts time grid items into a document:
//
//	<layout kind="time-grid" start="2026-01-06" days="1" period="60">
//	  <item uid=".." start=".." end=".." offset="9" duration="1" width="0.5" x="0" .../>
//	</layout>
func XML(items []layout.Item, opts layout.GridOptions) *etree.Document {
	doc, root := newDocument(layout.KindTimeGrid)
	root.CreateAttr("start", opts.Start.String())
	root.CreateAttr("days", strconv.Itoa(opts.Days))
	root.CreateAttr("period", strconv.Itoa(opts.PeriodLength))
	for _, it := range items {
		itemElement(root, it)
	}
	return doc
}

// BucketsXML converts the day buckets of date into a document with one
// <bucket> element per bucket.
func BucketsXML(date model.Date, buckets []layout.Bucket) *etree.Document {
	doc, root := newDocument(layout.KindDayBuckets)
	root.CreateAttr("date", date.String())
	for _, b := range buckets {
		be := root.CreateElement(elemBucket)
		be.CreateAttr("all-day", strconv.FormatBool(b.AllDay))
		for _, it := range b.Items {
			itemElement(be, it)
		}
	}
	return doc
}

// WriteString serializes doc with two-space indentation.
func WriteString(doc *etree.Document) (string, error) {
	doc.Indent(2)
	s, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("failed to write layout document: %w", err)
	}
	return s, nil
}

// Parse reads a document produced by XML or BucketsXML back into records.
func Parse(s string) (layout.Kind, []Record, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(s); err != nil {
		return 0, nil, fmt.Errorf("failed to parse layout document: %w", err)
	}
	root := doc.SelectElement(elemLayout)
	if root == nil {
		return 0, nil, fmt.Errorf("missing <%s> root element", elemLayout)
	}

	var kind layout.Kind
	switch root.SelectAttrValue("kind", "") {
	case layout.KindTimeGrid.String():
		kind = layout.KindTimeGrid
	case layout.KindDayBuckets.String():
		kind = layout.KindDayBuckets
	default:
		return 0, nil, fmt.Errorf("unknown layout kind %q", root.SelectAttrValue("kind", ""))
	}

	var records []Record
	if kind == layout.KindTimeGrid {
		for _, elem := range root.SelectElements(elemItem) {
			r, err := parseItem(elem, -1)
			if err != nil {
				return kind, nil, err
			}
			records = append(records, r)
		}
		return kind, records, nil
	}

	for i, be := range root.SelectElements(elemBucket) {
		for _, elem := range be.SelectElements(elemItem) {
			r, err := parseItem(elem, i)
			if err != nil {
				return kind, nil, err
			}
			records = append(records, r)
		}
	}
	return kind, records, nil
}

func parseItem(elem *etree.Element, bucket int) (Record, error) {
	r := Record{
		UID:    elem.SelectAttrValue("uid", ""),
		Title:  elem.SelectAttrValue("title", ""),
		Color:  elem.SelectAttrValue("color", ""),
		Bucket: bucket,
	}

	var err error
	parseTime := func(name string) time.Time {
		if err != nil {
			return time.Time{}
		}
		var t time.Time
		t, err = time.Parse(time.RFC3339, elem.SelectAttrValue(name, ""))
		if err != nil {
			err = fmt.Errorf("item %q: attribute %s: %w", r.UID, name, err)
		}
		return t
	}
	parseFloat := func(name string) float64 {
		if err != nil {
			return 0
		}
		var f float64
		f, err = strconv.ParseFloat(elem.SelectAttrValue(name, "0"), 64)
		if err != nil {
			err = fmt.Errorf("item %q: attribute %s: %w", r.UID, name, err)
		}
		return f
	}

	r.Start = parseTime("start")
	r.End = parseTime("end")
	r.StartOffset = parseFloat("offset")
	r.Duration = parseFloat("duration")
	r.WidthShare = parseFloat("width")
	r.XOffset = parseFloat("x")
	r.MaxConcurrency = int(parseFloat("concurrency"))
	r.AllDay = elem.SelectAttrValue("all-day", "false") == "true"
	return r, err
}
