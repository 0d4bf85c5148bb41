package web

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"pingboard/internal/config"
	"pingboard/internal/graph"
	"pingboard/internal/models"
	"pingboard/internal/widget"
)

// maxGraphDimension caps requested render sizes
const maxGraphDimension = 4096

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// intParam parses an integer query parameter, falling back to def when the
// parameter is absent or malformed
func intParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func requiredFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%s parameter required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}

func graphSize(r *http.Request, defWidth, defHeight int) (int, int, error) {
	width := intParam(r, "width", defWidth)
	height := intParam(r, "height", defHeight)
	if width <= 0 || height <= 0 || width > maxGraphDimension || height > maxGraphDimension {
		return 0, 0, fmt.Errorf("graph size %dx%d out of range", width, height)
	}
	return width, height, nil
}

// widgetTarget resolves a widget and checks target membership
func (s *Server) widgetTarget(widgetID, target string) (*config.Widget, bool) {
	w := s.cfg.WidgetByID(widgetID)
	if w == nil {
		return nil, false
	}
	for _, t := range w.Targets {
		if t.Address == target {
			return w, true
		}
	}
	return w, false
}

func (s *Server) thresholdsFor(w *config.Widget) models.Thresholds {
	if w != nil && w.Thresholds != nil {
		return *w.Thresholds
	}
	return s.cfg.Defaults
}

// handleWidgets handles /api/widgets requests
func (s *Server) handleWidgets(w http.ResponseWriter, r *http.Request) {
	type widgetInfo struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	infos := make([]widgetInfo, 0, len(s.cfg.Widgets))
	for _, wd := range s.cfg.Widgets {
		infos = append(infos, widgetInfo{ID: wd.ID, Name: wd.Name})
	}
	writeJSON(w, http.StatusOK, infos)
}

// handleWidgetData handles /api/widget-data requests
func (s *Server) handleWidgetData(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("widget")
	if id == "" {
		writeError(w, http.StatusBadRequest, "widget parameter required")
		return
	}
	c := s.manager.Controller(id)
	if c == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown widget %q", id))
		return
	}

	_, payload, lastErr := c.Snapshot()
	if payload == nil {
		if lastErr != nil {
			writeJSON(w, http.StatusBadGateway, models.WidgetPayload{Error: lastErr.Error()})
			return
		}
		// First poll still in flight.
		writeJSON(w, http.StatusOK, models.WidgetPayload{Targets: []models.Target{}, FetchedAt: time.Now()})
		return
	}

	// Stale data plus an error note beats a blank widget.
	resp := *payload
	if lastErr != nil {
		resp.Error = lastErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHistory handles /api/history requests
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target")
	if target == "" {
		writeError(w, http.StatusBadRequest, "target parameter required")
		return
	}
	hours := intParam(r, "hours", graph.DefaultDetailPeriodHours)
	if hours <= 0 {
		writeError(w, http.StatusBadRequest, "hours must be positive")
		return
	}

	series, err := s.source.History(r.Context(), target, hours)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if series == nil {
		series = models.Series{}
	}
	writeJSON(w, http.StatusOK, series)
}

// handleStatistics handles /api/statistics requests
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target")
	if target == "" {
		writeError(w, http.StatusBadRequest, "target parameter required")
		return
	}
	hours := intParam(r, "hours", graph.DefaultDetailPeriodHours)
	if hours <= 0 {
		writeError(w, http.StatusBadRequest, "hours must be positive")
		return
	}

	stats, err := s.source.Statistics(r.Context(), target, hours)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if stats == nil {
		stats = &models.Statistics{}
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleCompactGraph handles /api/graph/compact requests. It renders from
// the controller's last good snapshot, so a still-loading widget gets the
// no-data placeholder.
func (s *Server) handleCompactGraph(w http.ResponseWriter, r *http.Request) {
	widgetID := r.URL.Query().Get("widget")
	target := r.URL.Query().Get("target")
	wd, ok := s.widgetTarget(widgetID, target)
	if wd == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown widget %q", widgetID))
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("target %q not in widget %q", target, widgetID))
		return
	}

	thresholds := s.thresholdsFor(wd)
	width, height, err := graphSize(r, 300, thresholds.GraphHeightPx)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var series models.Series
	if c := s.manager.Controller(widgetID); c != nil {
		if _, payload, _ := c.Snapshot(); payload != nil {
			for _, t := range payload.Targets {
				if t.Address == target {
					series = t.History
					break
				}
			}
		}
	}

	s.servePNG(w, width, height, func(cr chart.Renderer) {
		graph.RenderCompact(cr, width, height, series, thresholds)
	})
}

// handleDetailedGraph handles /api/graph/detailed requests, a stateless
// render for clients that do not hold a detail session
func (s *Server) handleDetailedGraph(w http.ResponseWriter, r *http.Request) {
	widgetID := r.URL.Query().Get("widget")
	target := r.URL.Query().Get("target")
	wd, ok := s.widgetTarget(widgetID, target)
	if wd == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown widget %q", widgetID))
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("target %q not in widget %q", target, widgetID))
		return
	}

	hours := intParam(r, "hours", graph.DefaultDetailPeriodHours)
	if !graph.ValidPeriod(hours) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported period %d hours", hours))
		return
	}
	width, height, err := graphSize(r, 800, 300)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	series, err := s.source.History(r.Context(), target, hours)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	win := graph.ResolveWindow(series, hours)
	opts := graph.DetailedOptions{PeriodHours: hours, Thresholds: s.thresholdsFor(wd)}
	s.servePNG(w, width, height, func(cr chart.Renderer) {
		graph.RenderDetailed(cr, width, height, series, win, opts)
	})
}

type tooltipResponse struct {
	Hit     bool           `json:"hit"`
	Tooltip *graph.Tooltip `json:"tooltip,omitempty"`
}

// handleGraphTooltip handles /api/graph/tooltip requests
func (s *Server) handleGraphTooltip(w http.ResponseWriter, r *http.Request) {
	widgetID := r.URL.Query().Get("widget")
	target := r.URL.Query().Get("target")
	if _, ok := s.widgetTarget(widgetID, target); !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("target %q not in widget %q", target, widgetID))
		return
	}

	hours := intParam(r, "hours", graph.DefaultDetailPeriodHours)
	if hours <= 0 {
		writeError(w, http.StatusBadRequest, "hours must be positive")
		return
	}
	x, err := requiredFloat(r, "x")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	width := intParam(r, "width", 800)

	series, err := s.source.History(r.Context(), target, hours)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	win := graph.ResolveWindow(series, hours)
	s.writeTooltip(w, x, width, series, win)
}

func (s *Server) writeTooltip(w http.ResponseWriter, x float64, width int, series models.Series, win graph.Window) {
	graphWidth := float64(width - graph.MarginLeft - graph.MarginRight)
	if graphWidth <= 0 {
		writeError(w, http.StatusBadRequest, "width too small for hit testing")
		return
	}

	sample := graph.NearestSample(x, series, win, graphWidth, float64(graph.MarginLeft))
	if sample == nil {
		writeJSON(w, http.StatusOK, tooltipResponse{Hit: false})
		return
	}
	tip := graph.TooltipFor(*sample)
	writeJSON(w, http.StatusOK, tooltipResponse{Hit: true, Tooltip: &tip})
}

type detailResponse struct {
	Session     string              `json:"session"`
	Widget      string              `json:"widget"`
	Target      string              `json:"target"`
	PeriodHours int                 `json:"period_hours"`
	WindowStart time.Time           `json:"window_start"`
	WindowEnd   time.Time           `json:"window_end"`
	Series      models.Series       `json:"series"`
	Statistics  *models.Statistics  `json:"statistics,omitempty"`
	Legend      []graph.LegendEntry `json:"legend"`
	Error       string              `json:"error,omitempty"`
}

func (s *Server) detailPayload(sess *widget.DetailSession) detailResponse {
	series, stats, period, lastErr := sess.Snapshot()
	win := graph.ResolveWindow(series, period)
	if series == nil {
		series = models.Series{}
	}

	resp := detailResponse{
		Session:     sess.ID,
		Widget:      sess.WidgetID,
		Target:      sess.Target,
		PeriodHours: period,
		WindowStart: win.Start,
		WindowEnd:   win.End(),
		Series:      series,
		Statistics:  stats,
		Legend:      graph.Legend(s.thresholdsFor(s.cfg.WidgetByID(sess.WidgetID))),
	}
	if lastErr != nil {
		resp.Error = lastErr.Error()
	}
	return resp
}

// detailSession resolves the session query parameter, writing the error
// response itself when the session is missing
func (s *Server) detailSession(w http.ResponseWriter, r *http.Request) *widget.DetailSession {
	id := r.URL.Query().Get("session")
	if id == "" {
		writeError(w, http.StatusBadRequest, "session parameter required")
		return nil
	}
	sess := s.sessions.Get(id)
	if sess == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown session %q", id))
		return nil
	}
	return sess
}

// handleDetailOpen handles POST /api/detail/open requests
func (s *Server) handleDetailOpen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	widgetID := r.URL.Query().Get("widget")
	target := r.URL.Query().Get("target")
	if _, ok := s.widgetTarget(widgetID, target); !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("target %q not in widget %q", target, widgetID))
		return
	}

	sess, err := s.sessions.Open(s.source, widgetID, target)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.detailPayload(sess))
}

// handleDetailData handles /api/detail/data requests
func (s *Server) handleDetailData(w http.ResponseWriter, r *http.Request) {
	sess := s.detailSession(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, s.detailPayload(sess))
}

// handleDetailPeriod handles POST /api/detail/period requests
func (s *Server) handleDetailPeriod(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	sess := s.detailSession(w, r)
	if sess == nil {
		return
	}

	hours := intParam(r, "hours", 0)
	if !graph.ValidPeriod(hours) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported period %d hours", hours))
		return
	}
	if err := sess.SetPeriod(hours); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.detailPayload(sess))
}

// handleDetailGraph handles /api/detail/graph requests
func (s *Server) handleDetailGraph(w http.ResponseWriter, r *http.Request) {
	sess := s.detailSession(w, r)
	if sess == nil {
		return
	}

	width, height, err := graphSize(r, 800, 300)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	series, _, period, _ := sess.Snapshot()
	win := graph.ResolveWindow(series, period)
	opts := graph.DetailedOptions{
		PeriodHours: period,
		Thresholds:  s.thresholdsFor(s.cfg.WidgetByID(sess.WidgetID)),
	}
	s.servePNG(w, width, height, func(cr chart.Renderer) {
		graph.RenderDetailed(cr, width, height, series, win, opts)
	})
}

// handleDetailTooltip handles /api/detail/tooltip requests
func (s *Server) handleDetailTooltip(w http.ResponseWriter, r *http.Request) {
	sess := s.detailSession(w, r)
	if sess == nil {
		return
	}

	x, err := requiredFloat(r, "x")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	width := intParam(r, "width", 800)

	series, _, period, _ := sess.Snapshot()
	win := graph.ResolveWindow(series, period)
	s.writeTooltip(w, x, width, series, win)
}

// handleDetailClose handles POST /api/detail/close requests
func (s *Server) handleDetailClose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	id := r.URL.Query().Get("session")
	if id == "" {
		writeError(w, http.StatusBadRequest, "session parameter required")
		return
	}
	s.sessions.Close(id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

// handleHealth handles /health requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) servePNG(w http.ResponseWriter, width, height int, draw func(chart.Renderer)) {
	img, err := chart.PNG(width, height)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	draw(img)

	w.Header().Set("Content-Type", "image/png")
	if err := img.Save(w); err != nil {
		log.Printf("Failed to write PNG response: %v", err)
	}
}
