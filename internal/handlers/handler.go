package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/csg33k/workreports/internal/domain"
	"github.com/csg33k/workreports/internal/ports"
	"github.com/csg33k/workreports/internal/session"
	"github.com/csg33k/workreports/internal/templates"
)

type Handler struct {
	sessions *session.Store
	exporter ports.SnapshotExporter
	now      func() time.Time
}

func New(sessions *session.Store, exporter ports.SnapshotExporter) *Handler {
	return &Handler{sessions: sessions, exporter: exporter, now: time.Now}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.index)
	mux.HandleFunc("GET /reports", h.viewReports)
	mux.HandleFunc("POST /reports", h.createReports)
	mux.HandleFunc("GET /reports/pdf", h.exportPDF)
	mux.HandleFunc("GET /healthz", h.healthz)
	return mux
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	f := h.sessions.Peek(r)
	v, err := f.View(r.Context())
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	render(w, r, templates.Page(v))
}

// viewReports re-renders the cards, reading every field again. Sessions are
// only allocated by createReports.
func (h *Handler) viewReports(w http.ResponseWriter, r *http.Request) {
	f := h.sessions.Peek(r)
	v, err := f.View(r.Context())
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	render(w, r, templates.Cards(v))
}

// createReports is the Create button. The submitted text goes to the
// reports collaborator untouched.
func (h *Handler) createReports(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	in := domain.Inputs{
		EmployeeAddress: r.FormValue("employee_address"),
		WorkingTime:     r.FormValue("working_time"),
	}
	f := h.sessions.Get(w, r)
	if err := f.Create(r.Context(), in); err != nil {
		slog.Error("create reports failed", "employee", in.EmployeeAddress, "working_time", in.WorkingTime, "err", err)
		http.Error(w, err.Error(), 500)
		return
	}
	slog.Info("report created", "employee", in.EmployeeAddress, "working_time", in.WorkingTime)

	v, err := f.View(r.Context())
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	// Plain form posts (no htmx) get the whole page back.
	if r.Header.Get("HX-Request") == "" {
		render(w, r, templates.Page(v))
		return
	}
	render(w, r, templates.Cards(v))
}

func (h *Handler) exportPDF(w http.ResponseWriter, r *http.Request) {
	f, ok := h.sessions.Lookup(r)
	if !ok || !f.HasReports() {
		http.Error(w, "no reports created", 400)
		return
	}
	v, err := f.View(r.Context())
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	now := h.now()
	var buf bytes.Buffer
	if err := h.exporter.Generate(&domain.Snapshot{View: v, GeneratedAt: now}, &buf); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	filename := fmt.Sprintf("reports_%s.pdf", now.Format("20060102"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Write(buf.Bytes())
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// render writes a templ component to the response.
func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		slog.Error("render failed", "path", r.URL.Path, "err", err)
		http.Error(w, err.Error(), 500)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
