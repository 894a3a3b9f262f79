package payrollhandler

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"smarthr/internal/app/session"
	"smarthr/internal/domain/auth"
	"smarthr/internal/domain/core"
	"smarthr/internal/domain/payroll"
	"smarthr/internal/transport/http/api"
	"smarthr/internal/transport/http/middleware"
	"smarthr/internal/transport/http/shared"
)

const (
	onExistingView       = "view"
	onExistingRegenerate = "regenerate"
	onExistingCancel     = "cancel"
)

type Handler struct {
	Session *session.Session
}

func NewHandler(sess *session.Session) *Handler {
	return &Handler{Session: sess}
}

type computeRequest struct {
	EmployeeID int     `json:"employeeId"`
	Month      string  `json:"month"`
	DaysWorked int     `json:"daysWorked"`
	Bonus      float64 `json:"bonus"`
	OnExisting string  `json:"onExisting"`
}

type computeResponse struct {
	Record  payroll.Record `json:"record"`
	Outcome string         `json:"outcome"`
	Payslip string         `json:"payslip"`
}

type generateRequest struct {
	Month   string `json:"month"`
	Confirm bool   `json:"confirm"`
}

type archiveRequest struct {
	Month string `json:"month"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPayrollRun)).Post("/compute", h.handleCompute)
		r.With(middleware.RequirePermission(auth.PermPayrollRun)).Post("/generate", h.handleGenerate)
		r.With(middleware.RequirePermission(auth.PermPayrollRun)).Post("/archive", h.handleArchive)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, auth.PermPayrollSelf)).Get("/records", h.handleListRecords)
		r.With(middleware.RequirePermission(auth.PermPayrollRead)).Get("/summary", h.handleSummary)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, auth.PermPayrollSelf)).Get("/payslips/{employeeID}/{month}", h.handlePayslip)
	})
}

func (h *Handler) handleCompute(w http.ResponseWriter, r *http.Request) {
	var payload computeRequest
	if !shared.Decode(w, r, &payload) {
		return
	}
	payload.OnExisting = strings.ToLower(strings.TrimSpace(payload.OnExisting))
	v := shared.NewValidator()
	v.Month("month", payload.Month, true)
	if payload.DaysWorked < 0 {
		v.Add("daysWorked", "must not be negative")
	}
	v.NonNegative("bonus", payload.Bonus)
	v.Enum("onExisting", payload.OnExisting, []string{onExistingView, onExistingRegenerate, onExistingCancel}, "must be view, regenerate or cancel")
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	var resolve payroll.Resolver
	if payload.OnExisting != "" {
		resolve = func(payroll.Record) payroll.Resolution {
			switch payload.OnExisting {
			case onExistingView:
				return payroll.ResolutionView
			case onExistingRegenerate:
				return payroll.ResolutionRegenerate
			}
			return payroll.ResolutionCancel
		}
	}

	rec, outcome, err := h.Session.ComputePayroll(r.Context(), payload.EmployeeID, payload.Month, payload.DaysWorked, payload.Bonus, resolve)
	if errors.Is(err, payroll.ErrRecordExists) {
		api.FailWithDetails(w, http.StatusConflict, "payroll_record_exists",
			"a record already exists; retry with onExisting=view, regenerate or cancel",
			map[string]any{"existing": rec}, shared.RequestID(r))
		return
	}
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	body := computeResponse{Record: rec, Outcome: string(outcome), Payslip: payroll.Format(rec)}
	if outcome == payroll.OutcomeViewed {
		api.Success(w, body, shared.RequestID(r))
		return
	}
	api.Created(w, body, shared.RequestID(r))
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var payload generateRequest
	if !shared.Decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Month("month", payload.Month, true)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	existing := 0
	result, err := h.Session.GenerateMonthlyPayroll(r.Context(), payload.Month, func(_ string, n int) bool {
		existing = n
		return payload.Confirm
	})
	if errors.Is(err, payroll.ErrCancelled) {
		api.FailWithDetails(w, http.StatusConflict, "confirmation_required",
			fmt.Sprintf("payroll for %s already exists; retry with confirm=true to regenerate", payload.Month),
			map[string]any{"existing": existing}, shared.RequestID(r))
		return
	}
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	slog.Info("payroll generation requested", "month", result.Month, "generated", result.Generated, "failed", result.Failed(), "actor", shared.Actor(r))
	api.Success(w, result, shared.RequestID(r))
}

func (h *Handler) handleArchive(w http.ResponseWriter, r *http.Request) {
	var payload archiveRequest
	if !shared.Decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Month("month", payload.Month, true)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	n, err := h.Session.ArchiveMonth(r.Context(), payload.Month)
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	api.Success(w, map[string]any{"month": payload.Month, "archived": n}, shared.RequestID(r))
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v := shared.NewValidator()
	requested := v.QueryInt(r, "employeeId", core.NoEmployeeID)
	v.Month("month", q.Get("month"), false)
	v.Month("from", q.Get("from"), false)
	v.Month("to", q.Get("to"), false)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	employeeID, ok := shared.ScopeEmployee(w, r, auth.PermPayrollRead, requested)
	if !ok {
		return
	}

	records, err := h.Session.PayrollRecords(session.PayrollQuery{
		EmployeeID: employeeID,
		Month:      q.Get("month"),
		From:       q.Get("from"),
		To:         q.Get("to"),
	})
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	page := shared.ParsePagination(r, 100, 500)
	api.Success(w, shared.Paginate(w, page, records), shared.RequestID(r))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	v := shared.NewValidator()
	v.Month("month", month, true)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	summary, err := h.Session.MonthSummary(month)
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	api.Success(w, summary, shared.RequestID(r))
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	requested, err := strconv.Atoi(chi.URLParam(r, "employeeID"))
	if err != nil {
		shared.FailValidation(w, shared.RequestID(r), []shared.ValidationIssue{{Field: "employeeID", Reason: "must be an integer"}})
		return
	}
	month := chi.URLParam(r, "month")
	v := shared.NewValidator()
	v.Month("month", month, true)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	employeeID, ok := shared.ScopeEmployee(w, r, auth.PermPayrollRead, requested)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.Session.RenderPayslip(&buf, employeeID, month); err != nil {
		shared.FailError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payslip-%04d-%s.pdf", employeeID, month))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
