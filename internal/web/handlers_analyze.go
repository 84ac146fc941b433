package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/surveyviz/internal/identity"
	"github.com/JonMunkholm/surveyviz/internal/logging"
	"github.com/JonMunkholm/surveyviz/internal/render"
	"github.com/JonMunkholm/surveyviz/internal/survey"
	"github.com/JonMunkholm/surveyviz/internal/web/templates"
)

// multipartOverhead is allowed on top of the file limit for form framing.
const multipartOverhead = 64 << 10

var errNoFile = errors.New("no file provided")

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	user, _ := identity.FromContext(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.UploadPage(user, s.pipeline.Columns, s.cfg.Upload.MaxFileSize).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render upload page", "error", err)
	}
}

// handleAnalyzePage renders the results page with the three charts inlined.
func (s *Server) handleAnalyzePage(w http.ResponseWriter, r *http.Request) {
	sink := render.NewPNGSink(s.cfg.Chart.Width, s.cfg.Chart.Height)

	res, err := s.analyze(w, r, sink)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	images := make(map[survey.ChartKind][]byte, 3)
	for _, c := range res.Charts() {
		if b, ok := sink.Image(c.Kind()); ok {
			images[c.Kind()] = b
		}
	}

	user, _ := identity.FromContext(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	view := templates.ResultsView{Result: res, Images: images}
	if err := templates.ResultsPage(user, view).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render results page", "error", err)
	}
}

// analysisResponse is the JSON form of an analysis.
type analysisResponse struct {
	ID         string               `json:"id"`
	Rows       int                  `json:"rows"`
	Skipped    []skippedRow         `json:"skipped"`
	Columns    columnsResponse      `json:"columns"`
	Frequency  []float64            `json:"frequency"`
	Importance []float64            `json:"importance"`
	Numeric    []float64            `json:"numeric"`
	Matrix     [][]string           `json:"matrix"`
	Tally      survey.CategoryTally `json:"tally"`
	Charts     chartsResponse       `json:"charts"`
}

type skippedRow struct {
	Line   int `json:"line"`
	Fields int `json:"fields"`
	Want   int `json:"want"`
}

type columnsResponse struct {
	Label      string `json:"label"`
	Frequency  string `json:"frequency"`
	Importance string `json:"importance"`
	Numeric    string `json:"numeric"`
	Category   string `json:"category"`
}

type chartsResponse struct {
	Scatter survey.Chart `json:"scatter"`
	Heatmap survey.Chart `json:"heatmap"`
	Bar     survey.Chart `json:"bar"`
}

// handleAnalyzeAPI returns the chart descriptions as JSON.
func (s *Server) handleAnalyzeAPI(w http.ResponseWriter, r *http.Request) {
	collected := &survey.Collector{}

	res, err := s.analyze(w, r, collected)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	resp := analysisResponse{
		ID:         res.ID,
		Rows:       len(res.Table.Rows),
		Skipped:    make([]skippedRow, len(res.Table.Skipped)),
		Columns:    columnsResponse(res.Columns),
		Frequency:  res.Frequency,
		Importance: res.Importance,
		Numeric:    res.Numeric,
		Matrix:     res.Matrix.Formatted(),
		Tally:      res.Tally,
	}
	for i, sk := range res.Table.Skipped {
		resp.Skipped[i] = skippedRow(sk)
	}
	resp.Charts.Scatter, _ = collected.ByKind(survey.ChartScatter)
	resp.Charts.Heatmap, _ = collected.ByKind(survey.ChartHeatmap)
	resp.Charts.Bar, _ = collected.ByKind(survey.ChartBar)

	writeJSON(w, resp)
}

// handleChart returns a single chart as a PNG image.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	kind, ok := survey.ParseChartKind(chi.URLParam(r, "kind"))
	if !ok {
		respondError(w, r, fmt.Errorf("%w: %q", survey.ErrUnknownChart, chi.URLParam(r, "kind")), 0)
		return
	}

	var img bytes.Buffer
	sink := survey.SinkFunc(func(_ context.Context, c survey.Chart) error {
		if c.Kind() != kind {
			return nil
		}
		return render.Encode(&img, c, s.cfg.Chart.Width, s.cfg.Chart.Height)
	})

	res, err := s.analyze(w, r, sink)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(img.Len()))
	w.Header().Set("X-Analysis-ID", res.ID)
	_, _ = w.Write(img.Bytes())
}

// analyze reads the upload and runs the pipeline under the analysis limiter
// and the upload timeout.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request, sink survey.Sink) (*survey.Result, error) {
	raw, name, err := s.readUpload(w, r)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
	defer cancel()

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	p := *s.pipeline
	p.Columns = p.Columns.Override(columnsFromForm(r))
	p.Logger = logging.WithFields(ctx, "file", name, "bytes", len(raw))

	res, err := p.Run(ctx, raw, sink)
	if err != nil {
		return nil, err
	}

	p.Logger.Info("analysis complete",
		"analysis_id", res.ID,
		"rows", len(res.Table.Rows),
		"skipped", len(res.Table.Skipped),
	)
	return res, nil
}

// readUpload returns the decoded CSV text. Browsers send a multipart form
// with a "file" field; API clients may post the CSV as the request body with
// a text/csv content type.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, string, error) {
	limit := s.cfg.Upload.MaxFileSize

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "text/csv" || mediaType == "text/plain" {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		text, err := survey.ReadText(r.Body, limit)
		if err != nil {
			return "", "", uploadError(err)
		}
		return text, "body", nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(limit); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return "", "", errNoFile
		}
		return "", "", uploadError(err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", "", errNoFile
		}
		return "", "", fmt.Errorf("invalid csv upload: %w", err)
	}
	defer file.Close()

	text, err := survey.ReadText(file, limit)
	if err != nil {
		return "", "", uploadError(err)
	}
	return text, header.Filename, nil
}

func uploadError(err error) error {
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig):
		return fmt.Errorf("%w: request exceeds %d bytes", survey.ErrFileTooLarge, tooBig.Limit)
	case errors.Is(err, survey.ErrFileTooLarge):
		return err
	default:
		return fmt.Errorf("invalid csv upload: %w", err)
	}
}

// columnsFromForm reads per-request column selectors, e.g. col_frequency.
func columnsFromForm(r *http.Request) survey.Columns {
	q := r.URL.Query()
	get := func(key string) string {
		if v := q.Get(key); v != "" {
			return v
		}
		if r.MultipartForm != nil {
			if vs := r.MultipartForm.Value[key]; len(vs) > 0 {
				return vs[0]
			}
		}
		return ""
	}
	return survey.Columns{
		Label:      get("col_label"),
		Frequency:  get("col_frequency"),
		Importance: get("col_importance"),
		Numeric:    get("col_numeric"),
		Category:   get("col_category"),
	}
}
