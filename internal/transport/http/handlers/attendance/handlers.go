package attendancehandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"smarthr/internal/app/session"
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

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAttendanceWrite)).Post("/check-in", h.handleCheckIn)
		r.Get("/", h.handleList)
	})
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	if user.EmployeeID == core.NoEmployeeID {
		api.Fail(w, http.StatusForbidden, "forbidden", "user is not linked to an employee", shared.RequestID(r))
		return
	}
	rec, err := h.Session.CheckIn(r.Context(), user.EmployeeID)
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	api.Created(w, rec, shared.RequestID(r))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	requested := v.QueryInt(r, "employeeId", core.NoEmployeeID)
	month := r.URL.Query().Get("month")
	v.Month("month", month, false)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	employeeID, ok := shared.ScopeEmployee(w, r, auth.PermAttendanceRead, requested)
	if !ok {
		return
	}
	if employeeID == core.NoEmployeeID {
		shared.FailValidation(w, shared.RequestID(r), []shared.ValidationIssue{{Field: "employeeId", Reason: "is required"}})
		return
	}
	records, err := h.Session.Attendance(employeeID, month)
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	page := shared.ParsePagination(r, 100, 500)
	api.Success(w, shared.Paginate(w, page, records), shared.RequestID(r))
}
