package employeehandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"workforce/internal/auth"
	"workforce/internal/domain/employee"
	"workforce/internal/domain/leave"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Handler struct {
	Service *employee.Service
	Leave   *leave.Service
}

func NewHandler(service *employee.Service, leaveSvc *leave.Service) *Handler {
	return &Handler{Service: service, Leave: leaveSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Get("/{employeeID}", h.handleGet)
		r.Get("/{employeeID}/balances", h.handleGetBalances)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin))
			r.Post("/", h.handleCreate)
			r.Put("/{employeeID}", h.handleUpdate)
			r.Delete("/{employeeID}", h.handleDelete)
			r.Put("/{employeeID}/balances", h.handleSetBalances)
		})
	})
}

type employeePayload struct {
	Code       string `json:"code"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Birthday   string `json:"birthday"`
	JoinDate   string `json:"joinDate"`
	LeaveDate  string `json:"leaveDate"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	filter := employee.Filter{
		Department: r.URL.Query().Get("department"),
		Search:     r.URL.Query().Get("search"),
		Active:     r.URL.Query().Get("active") == "true",
	}

	employees, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employees_list_failed", "failed to list employees", requestID)
		return
	}
	api.Success(w, employees, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	e, err := h.Service.Resolve(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_get_failed", "failed to load employee", requestID)
		return
	}
	api.Success(w, e, requestID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "first name is required")
	v.Required("lastName", payload.LastName, "last name is required")
	v.Required("email", payload.Email, "email is required")
	v.Required("joinDate", payload.JoinDate, "join date is required")
	var joinDate, birthday time.Time
	if payload.JoinDate != "" {
		joinDate, _ = v.Date("joinDate", payload.JoinDate)
	}
	if payload.Birthday != "" {
		birthday, _ = v.Date("birthday", payload.Birthday)
	}
	if v.Reject(w, requestID) {
		return
	}

	in := employee.CreateInput{
		Code:       payload.Code,
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
		Email:      payload.Email,
		Phone:      payload.Phone,
		Department: payload.Department,
		Position:   payload.Position,
		JoinDate:   joinDate,
	}
	if !birthday.IsZero() {
		in.Birthday = &birthday
	}

	created, err := h.Service.Create(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, employee.ErrDuplicateCode):
			api.Fail(w, http.StatusConflict, "duplicate_code", "employee code already in use", requestID)
		case errors.Is(err, employee.ErrDuplicateMail):
			api.Fail(w, http.StatusConflict, "duplicate_email", "employee email already in use", requestID)
		default:
			var vErr *employee.ValidationError
			if errors.As(err, &vErr) {
				shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: vErr.Field, Reason: vErr.Reason}})
				return
			}
			api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", requestID)
		}
		return
	}
	api.Created(w, created, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	var joinDate, leaveDate, birthday time.Time
	if payload.JoinDate != "" {
		joinDate, _ = v.Date("joinDate", payload.JoinDate)
	}
	if payload.LeaveDate != "" {
		leaveDate, _ = v.Date("leaveDate", payload.LeaveDate)
	}
	if payload.Birthday != "" {
		birthday, _ = v.Date("birthday", payload.Birthday)
	}
	if v.Reject(w, requestID) {
		return
	}

	in := employee.UpdateInput{
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
		Email:      payload.Email,
		Phone:      payload.Phone,
		Department: payload.Department,
		Position:   payload.Position,
		JoinDate:   joinDate,
	}
	if !birthday.IsZero() {
		in.Birthday = &birthday
	}
	if !leaveDate.IsZero() {
		in.LeaveDate = &leaveDate
	}

	updated, err := h.Service.Update(r.Context(), chi.URLParam(r, "employeeID"), in)
	if err != nil {
		switch {
		case errors.Is(err, employee.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
		case errors.Is(err, employee.ErrDuplicateMail):
			api.Fail(w, http.StatusConflict, "duplicate_email", "employee email already in use", requestID)
		default:
			api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update employee", requestID)
		}
		return
	}
	api.Success(w, updated, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "employeeID")); err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_delete_failed", "failed to delete employee", requestID)
		return
	}
	api.Success(w, map[string]bool{"deleted": true}, requestID)
}

func (h *Handler) handleGetBalances(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	e, err := h.Service.Resolve(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "balances_failed", "failed to load balances", requestID)
		return
	}

	buckets, err := h.Leave.BucketBalances(r.Context(), e.ID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "balances_failed", "failed to load balances", requestID)
		return
	}
	pool, err := h.Leave.PoolBalance(r.Context(), e.ID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "balances_failed", "failed to load balances", requestID)
		return
	}
	api.Success(w, map[string]any{
		"buckets":   buckets,
		"paidLeave": pool,
	}, requestID)
}

type balancesPayload struct {
	Casual      decimal.Decimal `json:"casual"`
	Sick        decimal.Decimal `json:"sick"`
	Earned      decimal.Decimal `json:"earned"`
	Maternity   decimal.Decimal `json:"maternity"`
	Paternity   decimal.Decimal `json:"paternity"`
	Bereavement decimal.Decimal `json:"bereavement"`
}

func (h *Handler) handleSetBalances(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	e, err := h.Service.Resolve(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "balances_failed", "failed to load employee", requestID)
		return
	}

	var payload balancesPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	updated, err := h.Leave.SetBucketBalances(r.Context(), leave.BucketBalances{
		EmployeeID:  e.ID,
		Casual:      payload.Casual,
		Sick:        payload.Sick,
		Earned:      payload.Earned,
		Maternity:   payload.Maternity,
		Paternity:   payload.Paternity,
		Bereavement: payload.Bereavement,
	})
	if err != nil {
		var vErr *leave.ValidationError
		if errors.As(err, &vErr) {
			shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: vErr.Field, Reason: vErr.Reason}})
			return
		}
		if errors.Is(err, leave.ErrEmployeeNotFound) {
			api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "balances_update_failed", "failed to update balances", requestID)
		return
	}
	api.Success(w, updated, requestID)
}
