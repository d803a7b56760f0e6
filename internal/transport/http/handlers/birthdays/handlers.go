package birthdayshandler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/employee"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
)

type Handler struct {
	Service *employee.Service
}

func NewHandler(service *employee.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/birthdays", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleAll)
		r.Get("/upcoming", h.handleUpcoming)
		r.Get("/today", h.handleToday)
		r.Get("/month/{month}", h.handleMonth)
	})
}

func (h *Handler) handleAll(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	entries, err := h.Service.Birthdays(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "birthdays_failed", "failed to list birthdays", requestID)
		return
	}
	api.Success(w, entries, requestID)
}

func (h *Handler) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	entries, err := h.Service.UpcomingBirthdays(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "birthdays_failed", "failed to list upcoming birthdays", requestID)
		return
	}
	api.Success(w, entries, requestID)
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	entries, err := h.Service.TodayBirthdays(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "birthdays_failed", "failed to list today's birthdays", requestID)
		return
	}
	api.Success(w, entries, requestID)
}

func (h *Handler) handleMonth(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		api.Fail(w, http.StatusBadRequest, "invalid_month", "month must be between 1 and 12", requestID)
		return
	}

	entries, err := h.Service.MonthBirthdays(r.Context(), time.Month(month))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "birthdays_failed", "failed to list month birthdays", requestID)
		return
	}
	api.Success(w, entries, requestID)
}
