package leavehandler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"workforce/internal/auth"
	"workforce/internal/domain/leave"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
}

func NewHandler(service *leave.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/types", h.handleListTypes)
		r.Get("/requests", h.handleListRequests)
		r.Post("/requests", h.handleCreateRequest)
		r.Get("/requests/{requestID}", h.handleGetRequest)
		r.Get("/statistics", h.handleStatistics)
		r.Get("/balance/{employeeID}", h.handleBalance)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin))
			r.Post("/requests/{requestID}/approve", h.handleApprove)
			r.Post("/requests/{requestID}/reject", h.handleReject)
			r.Delete("/requests/{requestID}", h.handleDelete)
		})
	})
}

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	api.Success(w, leave.Types, middleware.GetRequestID(r.Context()))
}

type createRequestPayload struct {
	EmployeeID         string `json:"employeeId"`
	Type               string `json:"type"`
	From               string `json:"from"`
	To                 string `json:"to"`
	IsHalfDay          bool   `json:"isHalfDay"`
	Reason             string `json:"reason"`
	ContactDuringLeave string `json:"contactDuringLeave"`
	AddressDuringLeave string `json:"addressDuringLeave"`
}

func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload createRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee is required")
	v.Required("type", payload.Type, "leave type is required")
	v.Required("from", payload.From, "start date is required")
	v.Required("reason", payload.Reason, "reason is required")
	var from, to time.Time
	if payload.From != "" {
		from, _ = v.Date("from", payload.From)
	}
	if payload.To != "" {
		to, _ = v.Date("to", payload.To)
	}
	v.DateOrder("from", from, "to", to)
	if v.Reject(w, requestID) {
		return
	}

	created, err := h.Service.Create(r.Context(), leave.CreateInput{
		EmployeeID:         payload.EmployeeID,
		Type:               payload.Type,
		From:               from,
		To:                 to,
		IsHalfDay:          payload.IsHalfDay,
		Reason:             payload.Reason,
		ContactDuringLeave: payload.ContactDuringLeave,
		AddressDuringLeave: payload.AddressDuringLeave,
	})
	if err != nil {
		failLeave(w, err, requestID)
		return
	}
	api.Created(w, created, requestID)
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()

	v := shared.NewValidator()
	filter := leave.RequestFilter{
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

	requests, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_list_failed", "failed to list leave requests", requestID)
		return
	}
	api.Success(w, requests, requestID)
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	req, err := h.Service.Get(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		failLeave(w, err, requestID)
		return
	}
	api.Success(w, req, requestID)
}

type decisionPayload struct {
	RejectionReason string `json:"rejectionReason"`
	ManagerNotes    string `json:"managerNotes"`
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.StatusApproved)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.StatusRejected)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, status string) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	// Decision payload is optional, an empty body means no notes.
	var payload decisionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	if status == leave.StatusRejected && payload.RejectionReason == "" {
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "rejectionReason", Reason: "required when rejecting"}})
		return
	}

	updated, err := h.Service.SetStatus(r.Context(), chi.URLParam(r, "requestID"), status, user.Email, payload.RejectionReason, payload.ManagerNotes)
	if err != nil {
		failLeave(w, err, requestID)
		return
	}
	api.Success(w, updated, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "requestID")); err != nil {
		failLeave(w, err, requestID)
		return
	}
	api.Success(w, map[string]bool{"deleted": true}, requestID)
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	stats, err := h.Service.Statistics(r.Context(), r.URL.Query().Get("employeeId"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_stats_failed", "failed to compute statistics", requestID)
		return
	}
	api.Success(w, stats, requestID)
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	buckets, err := h.Service.BucketBalances(r.Context(), employeeID)
	if err != nil {
		failLeave(w, err, requestID)
		return
	}
	pool, err := h.Service.PoolBalance(r.Context(), employeeID)
	if err != nil {
		failLeave(w, err, requestID)
		return
	}
	api.Success(w, map[string]any{
		"buckets":   buckets,
		"paidLeave": pool,
	}, requestID)
}

// failLeave maps domain errors onto HTTP status codes and envelope codes.
func failLeave(w http.ResponseWriter, err error, requestID string) {
	var vErr *leave.ValidationError
	var balErr *leave.InsufficientBalanceError
	switch {
	case errors.As(err, &vErr):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: vErr.Field, Reason: vErr.Reason}})
	case errors.As(err, &balErr):
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "insufficient_balance",
			err.Error(), map[string]any{
				"bucket":    balErr.Bucket,
				"available": balErr.Available,
				"requested": balErr.Requested,
			}, requestID)
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "leave_not_found", "leave request not found", requestID)
	case errors.Is(err, leave.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
	case errors.Is(err, leave.ErrOverlap):
		api.Fail(w, http.StatusConflict, "leave_overlap", "an overlapping leave request already exists", requestID)
	case errors.Is(err, leave.ErrInvalidTransition):
		api.Fail(w, http.StatusConflict, "invalid_transition", "status change not allowed from current state", requestID)
	case errors.Is(err, leave.ErrConcurrency):
		api.Fail(w, http.StatusServiceUnavailable, "conflict_retry", "operation conflicted with a concurrent change, retry", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "leave_failed", "leave operation failed", requestID)
	}
}
