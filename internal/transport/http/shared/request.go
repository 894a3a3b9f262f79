package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	"smarthr/internal/domain/auth"
	"smarthr/internal/domain/core"
	"smarthr/internal/requestctx"
	"smarthr/internal/transport/http/api"
	"smarthr/internal/transport/http/middleware"
)

func RequestID(r *http.Request) string {
	return middleware.GetRequestID(r.Context())
}

// Actor names the authenticated user for log lines, or "anonymous".
func Actor(r *http.Request) string {
	if actor, ok := requestctx.GetActor(r.Context()); ok {
		return actor.Username
	}
	return "anonymous"
}

// Decode reads a JSON body into dst and writes a 400 on failure.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", RequestID(r))
			return false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", RequestID(r))
		return false
	}
	return true
}

// ScopeEmployee resolves which employee a read may target. Users holding
// the broad permission may read any employee (requested, or NoEmployeeID
// for all); everyone else is pinned to their own employee ID.
func ScopeEmployee(w http.ResponseWriter, r *http.Request, broadPerm string, requested int) (int, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", RequestID(r))
		return 0, false
	}
	if auth.HasPermission(user.Role, broadPerm) {
		return requested, true
	}
	if user.EmployeeID == core.NoEmployeeID {
		api.Fail(w, http.StatusForbidden, "forbidden", "user is not linked to an employee", RequestID(r))
		return 0, false
	}
	if requested != core.NoEmployeeID && requested != user.EmployeeID {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", RequestID(r))
		return 0, false
	}
	return user.EmployeeID, true
}
