package reportshandler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"workforce/internal/auth"
	"workforce/internal/domain/reports"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
)

type Handler struct {
	Service *reports.Service
}

func NewHandler(service *reports.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireRole(auth.RoleAdmin))
		r.Get("/attendance/{employeeID}", h.handleMonthly)
		r.Get("/attendance/{employeeID}/excel", h.handleExcel)
		r.Get("/attendance/{employeeID}/pdf", h.handlePDF)
	})
}

func (h *Handler) period(r *http.Request) (int, time.Month, error) {
	now := time.Now().UTC()
	year, month := now.Year(), now.Month()
	q := r.URL.Query()
	if raw := q.Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 2000 || y > 2100 {
			return 0, 0, errors.New("year must be a four digit year")
		}
		year = y
	}
	if raw := q.Get("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, errors.New("month must be between 1 and 12")
		}
		month = time.Month(m)
	}
	return year, month, nil
}

func (h *Handler) handleMonthly(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	year, month, err := h.period(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), requestID)
		return
	}

	report, err := h.Service.Monthly(r.Context(), chi.URLParam(r, "employeeID"), year, month)
	if err != nil {
		failReport(w, err, requestID)
		return
	}
	api.Success(w, report, requestID)
}

func (h *Handler) handleExcel(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	year, month, err := h.period(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), requestID)
		return
	}

	data, err := h.Service.ExportExcel(r.Context(), chi.URLParam(r, "employeeID"), year, month)
	if err != nil {
		failReport(w, err, requestID)
		return
	}

	filename := fmt.Sprintf("attendance-%d-%02d.xlsx", year, month)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(data)
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	year, month, err := h.period(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), requestID)
		return
	}

	data, err := h.Service.ExportPDF(r.Context(), chi.URLParam(r, "employeeID"), year, month)
	if err != nil {
		failReport(w, err, requestID)
		return
	}

	filename := fmt.Sprintf("attendance-%d-%02d.pdf", year, month)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(data)
}

func failReport(w http.ResponseWriter, err error, requestID string) {
	if errors.Is(err, reports.ErrEmployeeNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
		return
	}
	api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build report", requestID)
}
