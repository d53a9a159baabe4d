package server

import (
	"bytes"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/KaramelBytes/churnlens-cli/internal/analysis"
	"github.com/KaramelBytes/churnlens-cli/internal/dataset"
	"github.com/KaramelBytes/churnlens-cli/internal/exporter"
	"github.com/KaramelBytes/churnlens-cli/internal/paging"
	"github.com/KaramelBytes/churnlens-cli/internal/parser"
	"github.com/KaramelBytes/churnlens-cli/internal/report"
	"github.com/KaramelBytes/churnlens-cli/internal/session"
)

const xlsxMediaType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// uploadNames maps request media types to a loader file name.
var uploadNames = map[string]string{
	"application/json":          "upload.json",
	"text/csv":                  "upload.csv",
	"text/tab-separated-values": "upload.tsv",
	xlsxMediaType:               "upload.xlsx",
}

// Status describes the loaded snapshot.
type Status struct {
	Loaded   bool      `json:"loaded"`
	ID       string    `json:"id,omitempty"`
	Source   string    `json:"source,omitempty"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
	Rows     int       `json:"rows"`
	Columns  int       `json:"columns"`
	Warnings []string  `json:"warnings,omitempty"`
}

func statusOf(snap *session.Snapshot) Status {
	if snap == nil {
		return Status{}
	}
	return Status{
		Loaded:   true,
		ID:       snap.ID,
		Source:   snap.Source,
		LoadedAt: snap.LoadedAt,
		Rows:     snap.Dataset.Len(),
		Columns:  len(snap.Dataset.Columns),
		Warnings: snap.Warnings,
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ok(w, r, map[string]string{"status": "up"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	ok(w, r, statusOf(s.current.Load()))
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/json"
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		fail(w, r, http.StatusUnsupportedMediaType, fmt.Errorf("content type: %w", err))
		return
	}
	name, known := uploadNames[mediaType]
	if !known {
		fail(w, r, http.StatusUnsupportedMediaType, fmt.Errorf("%w: %s", parser.ErrUnsupported, mediaType))
		return
	}

	var body bytes.Buffer
	if _, err := body.ReadFrom(http.MaxBytesReader(w, r.Body, maxUploadBytes)); err != nil {
		fail(w, r, http.StatusRequestEntityTooLarge, fmt.Errorf("read upload: %w", err))
		return
	}
	res, err := parser.Load(name, &body, parser.Options{Sheet: r.URL.Query().Get("sheet")})
	if err != nil {
		fail(w, r, http.StatusBadRequest, err)
		return
	}

	source := r.URL.Query().Get("source")
	if source == "" {
		source = name
	}
	snap := session.NewSnapshot(source, res.Dataset, res.Warnings)
	if s.opts.Store != nil {
		if err := s.opts.Store.Save(snap); err != nil {
			fail(w, r, http.StatusInternalServerError, err)
			return
		}
	}
	s.Replace(snap)
	s.log.Info("dataset replaced",
		slog.String("id", snap.ID),
		slog.String("source", source),
		slog.Int("rows", snap.Dataset.Len()),
		slog.Int("warnings", len(snap.Warnings)))
	ok(w, r, statusOf(snap))
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store != nil {
		if err := s.opts.Store.Reset(); err != nil {
			fail(w, r, http.StatusInternalServerError, err)
			return
		}
	}
	s.Replace(nil)
	s.log.Info("dataset cleared")
	ok(w, r, statusOf(nil))
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	ds, _ := s.dataset()
	if ds == nil {
		ok(w, r, dataset.Summary{})
		return
	}
	ok(w, r, ds.Summary)
}

func (s *Server) columns(w http.ResponseWriter, r *http.Request) {
	ds, id := s.dataset()
	ok(w, r, s.cache.get(id+"|columns", func() any { return analysis.DescribeColumns(ds) }))
}

// view memoizes fn under the current snapshot and writes the result.
func (s *Server) view(w http.ResponseWriter, r *http.Request, key string, fn func(ds *dataset.Dataset) any) {
	ds, id := s.dataset()
	ok(w, r, s.cache.get(id+"|"+key, func() any { return fn(ds) }))
}

func (s *Server) riskView(w http.ResponseWriter, r *http.Request) {
	s.view(w, r, "risk", func(ds *dataset.Dataset) any { return analysis.ChurnRiskDistribution(ds) })
}

func (s *Server) pyramidView(w http.ResponseWriter, r *http.Request) {
	s.view(w, r, "pyramid", func(ds *dataset.Dataset) any { return analysis.ChurnProbabilityPyramid(ds) })
}

func (s *Server) ageGroupsView(w http.ResponseWriter, r *http.Request) {
	s.view(w, r, "age-groups", func(ds *dataset.Dataset) any { return analysis.ChurnByAgeGroup(ds) })
}

func (s *Server) dashboardView(w http.ResponseWriter, r *http.Request) {
	s.view(w, r, "dashboard", func(ds *dataset.Dataset) any { return analysis.Dashboard(ds, s.opts.Views) })
}

func (s *Server) histogramView(w http.ResponseWriter, r *http.Request) {
	bins, err := intParam(r, "bins", s.opts.Views.HistogramBins, analysis.MaxBins)
	if err != nil {
		fail(w, r, http.StatusBadRequest, err)
		return
	}
	col := chi.URLParam(r, "column")
	s.view(w, r, fmt.Sprintf("histogram|%s|%d", col, bins), func(ds *dataset.Dataset) any {
		return analysis.Histogram(ds, col, bins)
	})
}

func (s *Server) categoriesView(w http.ResponseWriter, r *http.Request) {
	top, err := intParam(r, "top", s.opts.Views.TopK, analysis.MaxTopK)
	if err != nil {
		fail(w, r, http.StatusBadRequest, err)
		return
	}
	col := chi.URLParam(r, "column")
	s.view(w, r, fmt.Sprintf("categories|%s|%d", col, top), func(ds *dataset.Dataset) any {
		return analysis.CategoryFrequency(ds, col, top)
	})
}

func (s *Server) churnByCategoryView(w http.ResponseWriter, r *http.Request) {
	top, err := intParam(r, "top", s.opts.Views.CrossTabTopK, analysis.MaxTopK)
	if err != nil {
		fail(w, r, http.StatusBadRequest, err)
		return
	}
	col := chi.URLParam(r, "column")
	s.view(w, r, fmt.Sprintf("churn-by-category|%s|%d", col, top), func(ds *dataset.Dataset) any {
		return analysis.ChurnByCategory(ds, col, top)
	})
}

func (s *Server) avgChurnView(w http.ResponseWriter, r *http.Request) {
	bins, err := intParam(r, "bins", s.opts.Views.RangeBins, analysis.MaxBins)
	if err != nil {
		fail(w, r, http.StatusBadRequest, err)
		return
	}
	col := chi.URLParam(r, "column")
	s.view(w, r, fmt.Sprintf("avg-churn|%s|%d", col, bins), func(ds *dataset.Dataset) any {
		return analysis.AverageChurnByRange(ds, col, bins)
	})
}

func (s *Server) scatterView(w http.ResponseWriter, r *http.Request) {
	x, y := r.URL.Query().Get("x"), r.URL.Query().Get("y")
	s.view(w, r, "scatter|"+x+"|"+y, func(ds *dataset.Dataset) any {
		return analysis.Scatter(ds, x, y)
	})
}

// customers serves one page of rows. A request whose size differs from
// prev_size starts over at page 1.
func (s *Server) customers(w http.ResponseWriter, r *http.Request) {
	size, err := intParam(r, "size", s.opts.PageSize, 0)
	if err != nil {
		fail(w, r, http.StatusBadRequest, err)
		return
	}
	p, err := paging.New(size)
	if err != nil {
		fail(w, r, http.StatusBadRequest, err)
		return
	}
	number, err := intParam(r, "page", 1, 0)
	if err != nil {
		fail(w, r, http.StatusBadRequest, err)
		return
	}
	if prev := r.URL.Query().Get("prev_size"); prev != "" && prev != strconv.Itoa(size) {
		number = 1
	}
	ds, _ := s.dataset()
	ok(w, r, report.NewCustomerTable(ds, p, number))
}

func (s *Server) customer(w http.ResponseWriter, r *http.Request) {
	ds, id := s.dataset()
	if ds == nil {
		fail(w, r, http.StatusConflict, session.ErrNoSession)
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, fmt.Errorf("index: %w", err))
		return
	}
	v := s.cache.get(fmt.Sprintf("%s|customer|%d", id, index), func() any {
		cv, found := analysis.CustomerProfile(ds, index)
		if !found {
			return nil
		}
		return cv
	})
	if v == nil {
		fail(w, r, http.StatusNotFound, fmt.Errorf("customer %d out of range [0,%d)", index, ds.Len()))
		return
	}
	ok(w, r, v)
}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	ds, _ := s.dataset()
	if ds == nil {
		fail(w, r, http.StatusConflict, session.ErrNoSession)
		return
	}
	var buf bytes.Buffer
	if err := exporter.WriteCSV(&buf, ds); err != nil {
		fail(w, r, http.StatusInternalServerError, err)
		return
	}
	attach(w, "text/csv; charset=utf-8", exporter.DefaultFileName)
	_, _ = buf.WriteTo(w)
}

func (s *Server) exportXLSX(w http.ResponseWriter, r *http.Request) {
	ds, _ := s.dataset()
	if ds == nil {
		fail(w, r, http.StatusConflict, session.ErrNoSession)
		return
	}
	var buf bytes.Buffer
	if err := exporter.WriteXLSX(&buf, ds, exporter.DefaultSheet); err != nil {
		fail(w, r, http.StatusInternalServerError, err)
		return
	}
	name := strings.TrimSuffix(exporter.DefaultFileName, ".csv") + ".xlsx"
	attach(w, xlsxMediaType, name)
	_, _ = buf.WriteTo(w)
}

func attach(w http.ResponseWriter, contentType, name string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
}

// intParam reads a positive integer query parameter, falling back to def.
// limit > 0 rejects larger values.
func intParam(r *http.Request, name string, def, limit int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	if limit > 0 && n > limit {
		return 0, fmt.Errorf("%s must be at most %d, got %d", name, limit, n)
	}
	return n, nil
}
