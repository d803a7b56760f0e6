package attendancehandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"workforce/internal/auth"
	"workforce/internal/domain/attendance"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Handler struct {
	Service *attendance.Service
}

func NewHandler(service *attendance.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/clock-in", h.handleClockIn)
		r.Post("/clock-out", h.handleClockOut)
		r.Post("/breaks/start", h.handleStartBreak)
		r.Post("/breaks/{breakID}/end", h.handleEndBreak)
		r.Get("/breaks", h.handleListBreaks)
		r.Get("/today/{employeeID}", h.handleToday)
		r.Get("/", h.handleList)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin))
			r.Post("/mark", h.handleMark)
			r.Post("/mark/bulk", h.handleBulkMark)
			r.Delete("/{recordID}", h.handleDelete)
		})
	})
}

type clockPayload struct {
	EmployeeID string `json:"employeeId"`
	At         string `json:"at"`
	Location   string `json:"location"`
	Notes      string `json:"notes"`
}

func (h *Handler) handleClockIn(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload clockPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee is required")
	at := v.Instant("at", payload.At)
	if v.Reject(w, requestID) {
		return
	}

	record, err := h.Service.ClockIn(r.Context(), payload.EmployeeID, at, payload.Location, payload.Notes)
	if err != nil {
		failAttendance(w, err, requestID)
		return
	}
	api.Created(w, record, requestID)
}

func (h *Handler) handleClockOut(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload clockPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee is required")
	at := v.Instant("at", payload.At)
	if v.Reject(w, requestID) {
		return
	}

	record, err := h.Service.ClockOut(r.Context(), payload.EmployeeID, at, payload.Location, payload.Notes)
	if err != nil {
		failAttendance(w, err, requestID)
		return
	}
	api.Success(w, record, requestID)
}

type breakPayload struct {
	EmployeeID string `json:"employeeId"`
	At         string `json:"at"`
	Reason     string `json:"reason"`
}

func (h *Handler) handleStartBreak(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload breakPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee is required")
	at := v.Instant("at", payload.At)
	if v.Reject(w, requestID) {
		return
	}

	br, err := h.Service.StartBreak(r.Context(), payload.EmployeeID, at, payload.Reason)
	if err != nil {
		failAttendance(w, err, requestID)
		return
	}
	api.Created(w, br, requestID)
}

func (h *Handler) handleEndBreak(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload breakPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee is required")
	at := v.Instant("at", payload.At)
	if v.Reject(w, requestID) {
		return
	}

	br, err := h.Service.EndBreak(r.Context(), payload.EmployeeID, chi.URLParam(r, "breakID"), at)
	if err != nil {
		failAttendance(w, err, requestID)
		return
	}
	api.Success(w, br, requestID)
}

func (h *Handler) handleListBreaks(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()

	v := shared.NewValidator()
	v.Required("employeeId", q.Get("employeeId"), "employee is required")
	day := time.Now().UTC()
	if raw := q.Get("day"); raw != "" {
		day, _ = v.Date("day", raw)
	}
	if v.Reject(w, requestID) {
		return
	}

	breaks, err := h.Service.ListBreaks(r.Context(), q.Get("employeeId"), day)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "breaks_list_failed", "failed to list breaks", requestID)
		return
	}
	api.Success(w, breaks, requestID)
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	snapshot, err := h.Service.Today(r.Context(), chi.URLParam(r, "employeeID"), time.Time{})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_today_failed", "failed to load today's attendance", requestID)
		return
	}
	api.Success(w, snapshot, requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()

	v := shared.NewValidator()
	filter := attendance.RecordFilter{
		EmployeeID: q.Get("employeeId"),
		Status:     q.Get("status"),
	}
	if raw := q.Get("from"); raw != "" {
		filter.From, _ = v.Date("from", raw)
	}
	if raw := q.Get("to"); raw != "" {
		filter.To, _ = v.Date("to", raw)
	}
	if v.Reject(w, requestID) {
		return
	}

	records, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_list_failed", "failed to list attendance", requestID)
		return
	}
	api.Success(w, records, requestID)
}

type markPayload struct {
	EmployeeID string `json:"employeeId"`
	Day        string `json:"day"`
	Status     string `json:"status"`
	Notes      string `json:"notes"`
}

func (h *Handler) handleMark(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload markPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee is required")
	v.Required("day", payload.Day, "day is required")
	v.Enum("status", payload.Status, attendance.Statuses, "unknown attendance status")
	var day time.Time
	if payload.Day != "" {
		day, _ = v.Date("day", payload.Day)
	}
	if v.Reject(w, requestID) {
		return
	}

	record, err := h.Service.Mark(r.Context(), payload.EmployeeID, day, payload.Status, payload.Notes)
	if err != nil {
		failAttendance(w, err, requestID)
		return
	}
	api.Success(w, record, requestID)
}

func (h *Handler) handleBulkMark(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload []markPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	marks := make([]attendance.MarkInput, 0, len(payload))
	for _, m := range payload {
		v.Required("employeeId", m.EmployeeID, "employee is required")
		v.Required("day", m.Day, "day is required")
		v.Enum("status", m.Status, attendance.Statuses, "unknown attendance status")
		var day time.Time
		if m.Day != "" {
			day, _ = v.Date("day", m.Day)
		}
		marks = append(marks, attendance.MarkInput{
			EmployeeID: m.EmployeeID,
			Day:        day,
			Status:     m.Status,
			Notes:      m.Notes,
		})
	}
	if v.Reject(w, requestID) {
		return
	}

	records, err := h.Service.BulkMark(r.Context(), marks)
	if err != nil {
		failAttendance(w, err, requestID)
		return
	}
	api.Success(w, records, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "recordID")); err != nil {
		failAttendance(w, err, requestID)
		return
	}
	api.Success(w, map[string]bool{"deleted": true}, requestID)
}

func failAttendance(w http.ResponseWriter, err error, requestID string) {
	var vErr *attendance.ValidationError
	switch {
	case errors.As(err, &vErr):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: vErr.Field, Reason: vErr.Reason}})
	case errors.Is(err, attendance.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "attendance_not_found", "attendance record not found", requestID)
	case errors.Is(err, attendance.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
	case errors.Is(err, attendance.ErrAlreadyClockedIn):
		api.Fail(w, http.StatusConflict, "already_clocked_in", "already clocked in today", requestID)
	case errors.Is(err, attendance.ErrAlreadyOut):
		api.Fail(w, http.StatusConflict, "already_clocked_out", "already clocked out today", requestID)
	case errors.Is(err, attendance.ErrNoActiveClockIn):
		api.Fail(w, http.StatusConflict, "no_active_clock_in", "no active clock-in for today", requestID)
	case errors.Is(err, attendance.ErrBreakActive):
		api.Fail(w, http.StatusConflict, "break_active", "a break is already active", requestID)
	case errors.Is(err, attendance.ErrNoActiveBreak):
		api.Fail(w, http.StatusConflict, "no_active_break", "no active break to end", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "attendance_failed", "attendance operation failed", requestID)
	}
}
