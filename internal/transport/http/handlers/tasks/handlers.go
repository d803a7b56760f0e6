package taskshandler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"workforce/internal/auth"
	"workforce/internal/domain/tasks"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Handler struct {
	Service *tasks.Service
}

func NewHandler(service *tasks.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Get("/{taskID}", h.handleGet)
		r.Get("/{taskID}/submissions", h.handleSubmissions)
		r.Get("/{taskID}/analytics", h.handleAnalytics)
		r.Post("/{taskID}/submit", h.handleSubmit)
		r.Get("/employee/{employeeID}", h.handleListByEmployee)
		r.Get("/employee/{employeeID}/stats", h.handleEmployeeStats)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin))
			r.Post("/", h.handleCreate)
			r.Put("/{taskID}", h.handleUpdate)
			r.Delete("/{taskID}", h.handleDelete)
			r.Post("/submissions/{submissionID}/verify", h.handleVerify)
			r.Delete("/submissions/{submissionID}", h.handleDeleteSubmission)
		})
	})
}

type taskPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Target      int    `json:"target"`
	Unit        string `json:"unit"`
	Deadline    string `json:"deadline"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	AssignedTo  string `json:"assignedTo"`
	AssignedBy  string `json:"assignedBy"`
	Notes       string `json:"notes"`
	Recurring   bool   `json:"recurring"`
	Recurrence  string `json:"recurrence"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload taskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("title", payload.Title, "title is required")
	v.Required("type", payload.Type, "task type is required")
	v.Required("category", payload.Category, "category is required")
	v.Required("unit", payload.Unit, "unit is required")
	v.Required("deadline", payload.Deadline, "deadline is required")
	v.Required("assignedTo", payload.AssignedTo, "assignee is required")
	v.Required("assignedBy", payload.AssignedBy, "assigner is required")
	var deadline time.Time
	if payload.Deadline != "" {
		deadline, _ = v.Date("deadline", payload.Deadline)
	}
	if v.Reject(w, requestID) {
		return
	}

	created, err := h.Service.Create(r.Context(), tasks.CreateInput{
		Title:       payload.Title,
		Description: payload.Description,
		Type:        payload.Type,
		Category:    payload.Category,
		Target:      payload.Target,
		Unit:        payload.Unit,
		Deadline:    deadline,
		Priority:    payload.Priority,
		AssignedTo:  payload.AssignedTo,
		AssignedBy:  payload.AssignedBy,
		Notes:       payload.Notes,
		Recurring:   payload.Recurring,
		Recurrence:  payload.Recurrence,
	})
	if err != nil {
		failTasks(w, err, requestID)
		return
	}
	api.Created(w, created, requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()

	list, err := h.Service.List(r.Context(), tasks.Filter{
		Type:       q.Get("type"),
		Status:     q.Get("status"),
		Category:   q.Get("category"),
		AssignedTo: q.Get("assignedTo"),
		AssignedBy: q.Get("assignedBy"),
		Search:     q.Get("search"),
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "tasks_list_failed", "failed to list tasks", requestID)
		return
	}
	api.Success(w, list, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	task, err := h.Service.Get(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		failTasks(w, err, requestID)
		return
	}
	api.Success(w, task, requestID)
}

func (h *Handler) handleListByEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()

	list, err := h.Service.List(r.Context(), tasks.Filter{
		AssignedTo: chi.URLParam(r, "employeeID"),
		Type:       q.Get("type"),
		Status:     q.Get("status"),
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "tasks_list_failed", "failed to list tasks", requestID)
		return
	}
	api.Success(w, list, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload taskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	var deadline time.Time
	if payload.Deadline != "" {
		deadline, _ = v.Date("deadline", payload.Deadline)
	}
	if v.Reject(w, requestID) {
		return
	}

	updated, err := h.Service.Update(r.Context(), chi.URLParam(r, "taskID"), tasks.UpdateInput{
		Title:       payload.Title,
		Description: payload.Description,
		Type:        payload.Type,
		Category:    payload.Category,
		Target:      payload.Target,
		Unit:        payload.Unit,
		Deadline:    deadline,
		Priority:    payload.Priority,
		Status:      payload.Status,
		AssignedTo:  payload.AssignedTo,
		Notes:       payload.Notes,
	})
	if err != nil {
		failTasks(w, err, requestID)
		return
	}
	api.Success(w, updated, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "taskID")); err != nil {
		failTasks(w, err, requestID)
		return
	}
	api.Success(w, map[string]bool{"deleted": true}, requestID)
}

type submitPayload struct {
	EmployeeID string `json:"employeeId"`
	Count      int    `json:"count"`
	Notes      string `json:"notes"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee is required")
	if payload.Count <= 0 {
		v.Add("count", "must be positive")
	}
	if v.Reject(w, requestID) {
		return
	}

	sub, task, err := h.Service.Submit(r.Context(), chi.URLParam(r, "taskID"), payload.EmployeeID, payload.Count, payload.Notes)
	if err != nil {
		failTasks(w, err, requestID)
		return
	}
	api.Created(w, map[string]any{
		"submission": sub,
		"task":       task,
	}, requestID)
}

func (h *Handler) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	filter := tasks.SubmissionFilter{TaskID: chi.URLParam(r, "taskID")}
	if raw := r.URL.Query().Get("verified"); raw != "" {
		verified := raw == "true"
		filter.Verified = &verified
	}

	subs, err := h.Service.Submissions(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "submissions_failed", "failed to list submissions", requestID)
		return
	}
	api.Success(w, subs, requestID)
}

func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()

	v := shared.NewValidator()
	var from, to time.Time
	if raw := q.Get("from"); raw != "" {
		from, _ = v.Date("from", raw)
	}
	if raw := q.Get("to"); raw != "" {
		to, _ = v.Date("to", raw)
	}
	if v.Reject(w, requestID) {
		return
	}

	analytics, err := h.Service.Analytics(r.Context(), chi.URLParam(r, "taskID"), from, to)
	if err != nil {
		failTasks(w, err, requestID)
		return
	}
	api.Success(w, analytics, requestID)
}

type verifyPayload struct {
	VerifiedBy string `json:"verifiedBy"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	// Body is optional, the authenticated admin is the default verifier.
	var payload verifyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	verifiedBy := payload.VerifiedBy
	if verifiedBy == "" {
		verifiedBy = user.Email
	}

	sub, err := h.Service.Verify(r.Context(), chi.URLParam(r, "submissionID"), verifiedBy)
	if err != nil {
		failTasks(w, err, requestID)
		return
	}
	api.Success(w, sub, requestID)
}

func (h *Handler) handleDeleteSubmission(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if err := h.Service.DeleteSubmission(r.Context(), chi.URLParam(r, "submissionID")); err != nil {
		failTasks(w, err, requestID)
		return
	}
	api.Success(w, map[string]bool{"deleted": true}, requestID)
}

func (h *Handler) handleEmployeeStats(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	stats, err := h.Service.StatsFor(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "task_stats_failed", "failed to compute task statistics", requestID)
		return
	}
	api.Success(w, stats, requestID)
}

// failTasks maps domain errors onto HTTP status codes and envelope codes.
func failTasks(w http.ResponseWriter, err error, requestID string) {
	var vErr *tasks.ValidationError
	switch {
	case errors.As(err, &vErr):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: vErr.Field, Reason: vErr.Reason}})
	case errors.Is(err, tasks.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "task_not_found", "task not found", requestID)
	case errors.Is(err, tasks.ErrSubmissionNotFound):
		api.Fail(w, http.StatusNotFound, "submission_not_found", "task submission not found", requestID)
	case errors.Is(err, tasks.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
	case errors.Is(err, tasks.ErrNotAssignee):
		api.Fail(w, http.StatusForbidden, "not_assignee", "employee is not assigned to this task", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "tasks_failed", "task operation failed", requestID)
	}
}
