package shared

import (
	"errors"
	"net/http"

	"smarthr/internal/app/session"
	"smarthr/internal/domain/attendance"
	"smarthr/internal/domain/auth"
	"smarthr/internal/domain/core"
	"smarthr/internal/domain/leave"
	"smarthr/internal/domain/payroll"
	"smarthr/internal/platform/logger"
	"smarthr/internal/transport/http/api"
)

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{core.ErrEmployeeNotFound, http.StatusNotFound, "employee_not_found"},
	{leave.ErrRequestNotFound, http.StatusNotFound, "leave_request_not_found"},
	{payroll.ErrRecordNotFound, http.StatusNotFound, "payroll_record_not_found"},
	{auth.ErrDuplicateUsername, http.StatusConflict, "duplicate_username"},
	{auth.ErrEmployeeHasAccount, http.StatusConflict, "employee_has_account"},
	{attendance.ErrAlreadyCheckedIn, http.StatusConflict, "already_checked_in"},
	{leave.ErrInvalidState, http.StatusConflict, "leave_already_decided"},
	{leave.ErrInsufficientBalance, http.StatusConflict, "insufficient_balance"},
	{payroll.ErrRecordExists, http.StatusConflict, "payroll_record_exists"},
	{payroll.ErrCancelled, http.StatusConflict, "payroll_cancelled"},
	{session.ErrConfirmationRequired, http.StatusConflict, "confirmation_required"},
	{session.ErrEmployeesUnavailable, http.StatusServiceUnavailable, "employees_unavailable"},
	{session.ErrArchiveDisabled, http.StatusServiceUnavailable, "archive_disabled"},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{core.ErrInvalidEmployee, http.StatusBadRequest, "invalid_employee"},
	{auth.ErrInvalidRole, http.StatusBadRequest, "invalid_role"},
	{auth.ErrInvalidUser, http.StatusBadRequest, "invalid_user"},
	{leave.ErrInvalidDays, http.StatusBadRequest, "invalid_days"},
	{leave.ErrReasonRequired, http.StatusBadRequest, "reason_required"},
	{payroll.ErrInvalidMonth, http.StatusBadRequest, "invalid_month"},
	{payroll.ErrInvalidWorkingDays, http.StatusBadRequest, "invalid_working_days"},
	{payroll.ErrNegativeDays, http.StatusBadRequest, "negative_days"},
	{payroll.ErrNegativeBonus, http.StatusBadRequest, "negative_bonus"},
}

// FailError writes the envelope matching a domain error. Unknown errors are
// logged and reported as 500 without their message.
func FailError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := RequestID(r)
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			api.Fail(w, m.status, m.code, err.Error(), requestID)
			return
		}
	}
	logger.From(r.Context()).Error("request failed", "err", err, "actor", Actor(r))
	api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
}
