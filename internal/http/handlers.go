package http

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mensalidades/internal/core"
	"mensalidades/internal/report"
	"mensalidades/internal/services"
)

// writeJSON serializes v with the proper content type.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encoding failed", "error", err)
	}
}

// writeError maps service errors to HTTP status codes. Validation failures
// come back as 422 with the field detail, everything else is a 500.
func writeError(w http.ResponseWriter, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": verr.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	w.WriteHeader(http.StatusMethodNotAllowed)
}

// statusFilterFromQuery builds a filter from the month/child/school query
// parameters. Missing parameters fall back to the catch-all sentinels.
func statusFilterFromQuery(r *http.Request) services.StatusFilter {
	q := r.URL.Query()
	return services.StatusFilter{
		Month:  strings.TrimSpace(q.Get("month")),
		Child:  strings.TrimSpace(q.Get("child")),
		School: strings.TrimSpace(q.Get("school")),
	}
}

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	months := services.UniqueMonths(s.payments.Ledger().Snapshot())
	writeJSON(w, http.StatusOK, months)
}

func (s *Server) handleChildren(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		children := services.UniqueChildren(s.payments.Ledger().Snapshot())
		writeJSON(w, http.StatusOK, children)
	case http.MethodDelete:
		name := strings.TrimSpace(r.URL.Query().Get("name"))
		if name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing name parameter"})
			return
		}
		n, err := s.payments.RemoveChild(r.Context(), name)
		if err != nil {
			writeError(w, err)
			return
		}
		if n == 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("no records for %q", name)})
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"removed": n})
	default:
		methodNotAllowed(w, "GET, DELETE")
	}
}

func (s *Server) handleSchools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	writeJSON(w, http.StatusOK, core.SchoolCatalog())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	result := s.engine.Evaluate(s.payments.Ledger().Snapshot(), statusFilterFromQuery(r), time.Now())
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStatusCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	result := s.engine.Evaluate(s.payments.Ledger().Snapshot(), statusFilterFromQuery(r), time.Now())

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="status.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Nome", "Escola", "Mês", "Data", "Status", "Valor"})
	for _, row := range result.Rows {
		_ = cw.Write([]string{
			row.Child,
			row.School,
			row.Month,
			row.PaymentDate,
			string(row.Status),
			row.Amount.BRL(),
		})
	}
	if result.TotalLabel != "" {
		_ = cw.Write([]string{result.TotalLabel, "", "", "", "", result.Total.BRL()})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.ErrorContext(r.Context(), "CSV export failed", "error", err)
	}
}

func (s *Server) handlePayments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req struct {
		Name   string `json:"nome"`
		Month  string `json:"mes"`
		School string `json:"escola"`
		Date   string `json:"data"`
		Amount string `json:"valor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	form := services.PaymentForm{
		Name:   req.Name,
		Month:  req.Month,
		School: req.School,
		Date:   req.Date,
		Amount: req.Amount,
	}
	p, err := s.payments.AddPayment(r.Context(), form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleEditSchool(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		methodNotAllowed(w, "PATCH")
		return
	}

	var req struct {
		Name          string `json:"nome"`
		Month         string `json:"mes"`
		CurrentSchool string `json:"escola_atual"`
		NewSchool     string `json:"escola_nova"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	changed, err := s.payments.EditSchool(r.Context(), req.Name, core.Month(req.Month), req.CurrentSchool, req.NewSchool)
	if err != nil {
		writeError(w, err)
		return
	}
	if !changed {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no matching payment record"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

func (s *Server) handleRenameChild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req struct {
		CurrentName string `json:"nome_atual"`
		NewName     string `json:"nome_novo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	n, err := s.payments.RenameChild(r.Context(), req.CurrentName, req.NewName)
	if err != nil {
		writeError(w, err)
		return
	}
	if n == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("no records for %q", req.CurrentName)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"renamed": n})
}

func (s *Server) handleMonthlyGrid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, "PUT")
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing name parameter"})
		return
	}

	var req []struct {
		Month  string `json:"mes"`
		Paid   bool   `json:"pago"`
		Date   string `json:"data"`
		School string `json:"escola"`
		Amount string `json:"valor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	entries := make([]services.GridEntry, 0, len(req))
	for _, e := range req {
		entries = append(entries, services.GridEntry{
			Month:  core.Month(e.Month),
			Paid:   e.Paid,
			Date:   e.Date,
			School: e.School,
			Amount: e.Amount,
		})
	}

	if err := s.payments.SaveMonthlyGrid(r.Context(), name, entries); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"saved": true})
}

func (s *Server) handleDelinquents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	rows := s.engine.Delinquents(s.payments.Ledger().Snapshot(), time.Now())
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	now := time.Now()
	rows := s.engine.Delinquents(s.payments.Ledger().Snapshot(), now)
	if len(rows) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no delinquent payments"})
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="atrasados-%s.pdf"`, now.Format("20060102")))
	if err := report.WriteDelinquents(w, rows, now); err != nil {
		slog.ErrorContext(r.Context(), "PDF generation failed", "error", err)
	}
}

func (s *Server) handleOverdueDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	entries := s.engine.OverdueDashboard(s.payments.Ledger().Snapshot(), time.Now())
	writeJSON(w, http.StatusOK, entries)
}
