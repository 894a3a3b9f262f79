package corehandler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"smarthr/internal/app/session"
	"smarthr/internal/domain/audit"
	"smarthr/internal/domain/auth"
	"smarthr/internal/domain/core"
	"smarthr/internal/transport/http/api"
	"smarthr/internal/transport/http/middleware"
	"smarthr/internal/transport/http/shared"
)

type Handler struct {
	Session *session.Session
}

func NewHandler(sess *session.Session) *Handler {
	return &Handler{Session: sess}
}

// employeePayload carries optional fields so a PUT only changes what it
// names and a POST falls back to the employee defaults.
type employeePayload struct {
	Name                       *string  `json:"name"`
	Position                   *string  `json:"position"`
	Department                 *string  `json:"department"`
	Salary                     *float64 `json:"salary"`
	LeaveBalance               *int     `json:"leaveBalance"`
	ExpectedMonthlyWorkingDays *int     `json:"expectedMonthlyWorkingDays"`
	InsuranceRate              *float64 `json:"insuranceRate"`
	TaxRate                    *float64 `json:"taxRate"`
	HasHealthInsurance         *bool    `json:"hasHealthInsurance"`
	HasDentalInsurance         *bool    `json:"hasDentalInsurance"`
	HasVisionInsurance         *bool    `json:"hasVisionInsurance"`
	HasSuperannuation          *bool    `json:"hasSuperannuation"`
}

func (p employeePayload) apply(emp core.Employee) core.Employee {
	if p.Name != nil {
		emp.Name = strings.TrimSpace(*p.Name)
	}
	if p.Position != nil {
		emp.Position = strings.TrimSpace(*p.Position)
	}
	if p.Department != nil {
		emp.Department = strings.TrimSpace(*p.Department)
	}
	if p.Salary != nil {
		emp.Salary = *p.Salary
	}
	if p.LeaveBalance != nil {
		emp.LeaveBalance = *p.LeaveBalance
	}
	if p.ExpectedMonthlyWorkingDays != nil {
		emp.ExpectedMonthlyWorkingDays = *p.ExpectedMonthlyWorkingDays
	}
	if p.InsuranceRate != nil {
		emp.InsuranceRate = *p.InsuranceRate
	}
	if p.TaxRate != nil {
		emp.TaxRate = *p.TaxRate
	}
	if p.HasHealthInsurance != nil {
		emp.HasHealthInsurance = *p.HasHealthInsurance
	}
	if p.HasDentalInsurance != nil {
		emp.HasDentalInsurance = *p.HasDentalInsurance
	}
	if p.HasVisionInsurance != nil {
		emp.HasVisionInsurance = *p.HasVisionInsurance
	}
	if p.HasSuperannuation != nil {
		emp.HasSuperannuation = *p.HasSuperannuation
	}
	return emp
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead)).Get("/", h.handleListEmployees)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Post("/", h.handleCreateEmployee)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead)).Get("/{employeeID}", h.handleGetEmployee)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Put("/{employeeID}", h.handleUpdateEmployee)
		r.With(middleware.RequirePermission(auth.PermEmployeesDelete)).Delete("/{employeeID}", h.handleDeleteEmployee)
		r.Get("/{employeeID}/history", h.handleHistory)
	})
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	if err := h.Session.EmployeesReady(); err != nil {
		shared.FailError(w, r, err)
		return
	}
	employees := h.Session.Employees()
	if dept := strings.TrimSpace(r.URL.Query().Get("department")); dept != "" {
		filtered := employees[:0]
		for _, emp := range employees {
			if strings.EqualFold(emp.Department, dept) {
				filtered = append(filtered, emp)
			}
		}
		employees = filtered
	}
	page := shared.ParsePagination(r, 100, 500)
	api.Success(w, shared.Paginate(w, page, employees), shared.RequestID(r))
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var payload employeePayload
	if !shared.Decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	if payload.Name == nil {
		v.Add("name", "is required")
	}
	if payload.Salary == nil {
		v.Add("salary", "is required")
	}
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	draft := payload.apply(core.NewEmployee(0, "", "", "", 0))
	emp, err := h.Session.AddEmployee(r.Context(), draft)
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	api.Created(w, emp, shared.RequestID(r))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeIDParam(w, r)
	if !ok {
		return
	}
	emp, err := h.Session.Employee(id)
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	api.Success(w, emp, shared.RequestID(r))
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeIDParam(w, r)
	if !ok {
		return
	}
	var payload employeePayload
	if !shared.Decode(w, r, &payload) {
		return
	}
	current, err := h.Session.Employee(id)
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	updated, err := h.Session.EditEmployee(r.Context(), payload.apply(current))
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	api.Success(w, updated, shared.RequestID(r))
}

func (h *Handler) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeIDParam(w, r)
	if !ok {
		return
	}
	confirm, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	removal, err := h.Session.RemoveEmployee(r.Context(), id, confirm)
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	slog.Info("employee removed", "employee_id", id, "actor", shared.Actor(r))
	api.Success(w, removal, shared.RequestID(r))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeIDParam(w, r)
	if !ok {
		return
	}
	id, ok = shared.ScopeEmployee(w, r, auth.PermHistoryRead, id)
	if !ok {
		return
	}

	filter := audit.Filter{Action: strings.TrimSpace(r.URL.Query().Get("action"))}
	v := shared.NewValidator()
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			v.Add("from", "must be a date in YYYY-MM-DD format")
		}
		filter.From = from
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			v.Add("to", "must be a date in YYYY-MM-DD format")
		}
		filter.To = to.Add(24*time.Hour - time.Nanosecond)
	}
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	entries, err := h.Session.History(id, filter)
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	page := shared.ParsePagination(r, 100, 500)
	api.Success(w, shared.Paginate(w, page, entries), shared.RequestID(r))
}

func employeeIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "employeeID"))
	if err != nil || id < 0 {
		shared.FailValidation(w, shared.RequestID(r), []shared.ValidationIssue{{Field: "employeeID", Reason: "must be a non-negative integer"}})
		return 0, false
	}
	return id, true
}
