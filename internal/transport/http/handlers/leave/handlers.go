package leavehandler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"smarthr/internal/app/session"
	"smarthr/internal/domain/auth"
	"smarthr/internal/domain/core"
	"smarthr/internal/domain/leave"
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

type leaveRequestPayload struct {
	DaysRequested int    `json:"daysRequested"`
	Reason        string `json:"reason"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.Get("/requests", h.handleListRequests)
		r.With(middleware.RequirePermission(auth.PermLeaveRequest)).Post("/requests", h.handleCreateRequest)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove)).Post("/requests/{requestID}/approve", h.handleApproveRequest)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove)).Post("/requests/{requestID}/reject", h.handleRejectRequest)
	})
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	requested := v.QueryInt(r, "employeeId", core.NoEmployeeID)
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	v.Enum("status", status, []string{leave.StatusPending, leave.StatusApproved, leave.StatusRejected}, "must be Pending, Approved or Rejected")
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	status = canonicalStatus(status)
	employeeID, ok := shared.ScopeEmployee(w, r, auth.PermLeaveRead, requested)
	if !ok {
		return
	}
	requests, err := h.Session.Leaves(employeeID, status)
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	page := shared.ParsePagination(r, 100, 500)
	api.Success(w, shared.Paginate(w, page, []leave.Request(requests)), shared.RequestID(r))
}

func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	if user.EmployeeID == core.NoEmployeeID {
		api.Fail(w, http.StatusForbidden, "forbidden", "user is not linked to an employee", shared.RequestID(r))
		return
	}
	var payload leaveRequestPayload
	if !shared.Decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	if payload.DaysRequested <= 0 {
		v.Add("daysRequested", "must be positive")
	}
	v.Required("reason", payload.Reason, "is required")
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	req, err := h.Session.RequestLeave(r.Context(), user.EmployeeID, payload.DaysRequested, payload.Reason)
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	api.Created(w, req, shared.RequestID(r))
}

func (h *Handler) handleApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

func (h *Handler) handleRejectRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, approve bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "requestID"))
	if err != nil {
		shared.FailValidation(w, shared.RequestID(r), []shared.ValidationIssue{{Field: "requestID", Reason: "must be an integer"}})
		return
	}
	req, err := h.Session.DecideLeave(r.Context(), id, approve)
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	slog.Info("leave request decided", "leave_id", req.ID, "status", req.Status, "actor", shared.Actor(r))
	api.Success(w, req, shared.RequestID(r))
}

func canonicalStatus(status string) string {
	for _, s := range []string{leave.StatusPending, leave.StatusApproved, leave.StatusRejected} {
		if strings.EqualFold(s, status) {
			return s
		}
	}
	return status
}
