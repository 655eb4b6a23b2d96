package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/Tinnci/merkuro-github-fork/export"
	"github.com/Tinnci/merkuro-github-fork/layout"
	"github.com/Tinnci/merkuro-github-fork/model"
	"github.com/Tinnci/merkuro-github-fork/source"
	"github.com/Tinnci/merkuro-github-fork/source/memory"
	"github.com/Tinnci/merkuro-github-fork/view"
	"github.com/Tinnci/merkuro-github-fork/window"
)

const (
	// Server configuration
	serverAddr    = ":8080"
	defaultPeriod = window.DefaultPeriodMinutes
	collectionID  = "personal"
)

type server struct {
	store  *memory.Store
	model  *view.Model
	logger *slog.Logger
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// Initialize memory store with sample data
	store := setupStore(logger)

	m := view.New(store, view.Config{Logger: logger})
	defer m.Close()
	m.OnRecompute(func(generation uint64) {
		logger.Info("layouts invalidated", "generation", generation)
	})

	s := &server{store: store, model: m, logger: logger}
	http.HandleFunc("/layout/grid", s.handleTimeGrid)
	http.HandleFunc("/layout/day", s.handleDayBuckets)
	http.HandleFunc("/window", s.handleWindow)
	http.HandleFunc("/events.ics", s.handleEvents)
	http.HandleFunc("/", handleRoot)

	logger.Info("starting layout server", "addr", serverAddr)
	if err := http.ListenAndServe(serverAddr, nil); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}

// handleRoot provides a basic landing page with instructions
func handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	html := `<!DOCTYPE html>
<html>
<head>
    <title>Occurrence Engine Example</title>
    <style>
        body { font-family: Arial, sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; }
        code { background: #f4f4f4; padding: 2px 4px; border-radius: 4px; }
    </style>
</head>
<body>
    <h1>Occurrence Engine Example</h1>
    <ul>
        <li><code>GET /layout/grid?date=2026-01-05&amp;days=7&amp;period=%d</code> time grid XML</li>
        <li><code>GET /layout/day?date=2026-01-05&amp;period=7</code> day buckets XML</li>
        <li><code>GET /window?scale=month&amp;rows=3</code> rows of a scrolling view</li>
        <li><code>GET /events.ics</code> all events, <code>PUT /events.ics</code> replaces them</li>
    </ul>
</body>
</html>
`
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, html, defaultPeriod)
}

func dateParam(r *http.Request) (model.Date, error) {
	v := r.URL.Query().Get("date")
	if v == "" {
		return model.DateOf(time.Now()), nil
	}
	return model.ParseDate(v)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %w", name, err)
	}
	return n, nil
}

func (s *server) writeXML(w http.ResponseWriter, body string, err error) {
	if err != nil {
		s.logger.Error("failed to write layout", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	fmt.Fprint(w, body)
}

func (s *server) handleTimeGrid(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	days, err := intParam(r, "days", 1)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	period, err := intParam(r, "period", defaultPeriod)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := layout.GridOptions{Start: date, Days: days, PeriodLength: period, Location: time.Local}
	body, err := export.WriteString(export.XML(s.model.TimeGrid(opts), opts))
	s.writeXML(w, body, err)
}

func (s *server) handleDayBuckets(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	period, err := intParam(r, "period", 7)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	body, err := export.WriteString(export.BucketsXML(date, s.model.DayBuckets(date, period)))
	s.writeXML(w, body, err)
}

func parseScale(v string) (window.Scale, error) {
	switch v {
	case "", "week":
		return window.Week, nil
	case "month":
		return window.Month, nil
	case "year":
		return window.Year, nil
	case "decade":
		return window.Decade, nil
	}
	return 0, fmt.Errorf("unknown scale %q", v)
}

func (s *server) handleWindow(w http.ResponseWriter, r *http.Request) {
	scale, err := parseScale(r.URL.Query().Get("scale"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rows, err := intParam(r, "rows", window.DefaultDatesToAdd)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	win := window.New(model.DateOf(time.Now()), scale, rows, time.Monday)
	win.Location = time.Local
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for i := 0; i < win.Len(); i++ {
		req, _ := win.Request(i)
		items, days := s.model.Row(req)
		count := len(items)
		for _, d := range days {
			for _, b := range d.Buckets {
				count += len(b.Items)
			}
		}
		fmt.Fprintf(w, "%s %s..%s %d items\n", req.Kind, req.Start, req.End(), count)
	}
}

func (s *server) handleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		if err := source.EncodeEvents(w, s.store.Events()); err != nil {
			s.logger.Error("failed to export events", "err", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	case http.MethodPut:
		s.store.DeleteCollection(r.Context(), collectionID)
		n, err := s.store.Import(r.Context(), r.Body, collectionID, time.Local)
		if err != nil {
			status := http.StatusInternalServerError
			var serr *source.Error
			if errors.As(err, &serr) && serr.Type == source.ErrInvalidInput {
				status = http.StatusBadRequest
			}
			http.Error(w, err.Error(), status)
			return
		}
		fmt.Fprintf(w, "imported %d events\n", n)
	default:
		w.Header().Set("Allow", "GET, PUT")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
