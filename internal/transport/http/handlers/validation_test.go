package handlers_test

import (
	"net/http"
	"testing"
)

func TestEndpointsReturnValidationErrors(t *testing.T) {
	ts, _ := startServer(t)
	client := ts.Client()
	base := ts.URL + "/api/v1"
	admin := login(t, client, ts.URL, "admin", "admin")

	doJSON(t, client, http.MethodPost, base+"/users", admin, map[string]any{
		"username": "hr", "password": "pw", "role": "HR",
	}, http.StatusCreated)
	hr := login(t, client, ts.URL, "hr", "pw")

	resp := doJSON(t, client, http.MethodPost, base+"/employees", admin, map[string]any{"position": "Clerk"}, http.StatusBadRequest)
	assertValidationErrorField(t, resp, "name")
	assertValidationErrorField(t, resp, "salary")

	resp = doJSON(t, client, http.MethodPost, base+"/employees", admin, map[string]any{"name": "Neg", "salary": -1}, http.StatusBadRequest)
	assertErrorCode(t, resp, "invalid_employee")

	resp = doJSON(t, client, http.MethodPost, base+"/users", admin, map[string]any{
		"username": "x", "password": "y", "role": "Manager",
	}, http.StatusBadRequest)
	assertValidationErrorField(t, resp, "role")

	resp = doJSON(t, client, http.MethodPost, base+"/payroll/compute", hr, map[string]any{
		"employeeId": 1, "month": "2024-3", "daysWorked": -1, "bonus": -5, "onExisting": "overwrite",
	}, http.StatusBadRequest)
	assertValidationErrorField(t, resp, "month")
	assertValidationErrorField(t, resp, "daysWorked")
	assertValidationErrorField(t, resp, "bonus")
	assertValidationErrorField(t, resp, "onExisting")

	resp = doJSON(t, client, http.MethodPost, base+"/payroll/compute", hr, map[string]any{
		"employeeId": 42, "month": "2024-03", "daysWorked": 20,
	}, http.StatusNotFound)
	assertErrorCode(t, resp, "employee_not_found")

	resp = doJSON(t, client, http.MethodGet, base+"/payroll/records?from=2024-13", hr, nil, http.StatusBadRequest)
	assertValidationErrorField(t, resp, "from")

	resp = doJSON(t, client, http.MethodGet, base+"/payroll/summary", hr, nil, http.StatusBadRequest)
	assertValidationErrorField(t, resp, "month")

	resp = doJSON(t, client, http.MethodGet, base+"/leave/requests?status=Cancelled", hr, nil, http.StatusBadRequest)
	assertValidationErrorField(t, resp, "status")

	resp = doJSON(t, client, http.MethodPost, base+"/leave/requests/77/approve", hr, nil, http.StatusNotFound)
	assertErrorCode(t, resp, "leave_request_not_found")

	resp = doJSON(t, client, http.MethodPost, base+"/payroll/archive", hr, map[string]any{"month": "2024-03"}, http.StatusServiceUnavailable)
	assertErrorCode(t, resp, "archive_disabled")
}
