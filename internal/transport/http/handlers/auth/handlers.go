package authhandler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"smarthr/internal/app/session"
	"smarthr/internal/domain/auth"
	"smarthr/internal/domain/core"
	"smarthr/internal/transport/http/api"
	"smarthr/internal/transport/http/middleware"
	"smarthr/internal/transport/http/shared"
)

type Handler struct {
	Session  *session.Session
	Secret   string
	TokenTTL time.Duration
}

func NewHandler(sess *session.Session, secret string, ttl time.Duration) *Handler {
	return &Handler{Session: sess, Secret: secret, TokenTTL: ttl}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	Username   string `json:"username"`
	Role       string `json:"role"`
	EmployeeID int    `json:"employeeId"`
}

type createUserRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	EmployeeID *int   `json:"employeeId"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.Get("/auth/me", h.handleMe)
	r.With(middleware.RequirePermission(auth.PermUsersWrite)).Get("/users", h.handleListUsers)
	r.With(middleware.RequirePermission(auth.PermUsersWrite)).Post("/users", h.handleCreateUser)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if !shared.Decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("username", payload.Username, "is required")
	v.Required("password", payload.Password, "is required")
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	user, err := h.Session.Login(payload.Username, payload.Password)
	if err != nil {
		slog.Warn("login failed", "username", payload.Username, "request_id", shared.RequestID(r))
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", shared.RequestID(r))
		return
	}

	token, err := auth.GenerateToken(h.Secret, user, h.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", shared.RequestID(r))
		return
	}
	api.Success(w, map[string]any{
		"token":     token,
		"expiresAt": time.Now().Add(h.TokenTTL).UTC(),
		"user":      toUserResponse(user),
	}, shared.RequestID(r))
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", shared.RequestID(r))
		return
	}
	api.Success(w, userResponse{Username: user.Username, Role: user.Role, EmployeeID: user.EmployeeID}, shared.RequestID(r))
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.Session.Users()
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	page := shared.ParsePagination(r, 100, 500)
	api.Success(w, shared.Paginate(w, page, out), shared.RequestID(r))
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload createUserRequest
	if !shared.Decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("username", payload.Username, "is required")
	v.Required("password", payload.Password, "is required")
	v.Enum("role", payload.Role, []string{auth.RoleAdmin, auth.RoleHR, auth.RoleEmployee}, "must be Admin, HR or Employee")
	v.Required("role", payload.Role, "is required")
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	employeeID := core.NoEmployeeID
	if payload.EmployeeID != nil {
		employeeID = *payload.EmployeeID
	}
	user, err := h.Session.AddUser(r.Context(), auth.User{
		Username:   payload.Username,
		Password:   payload.Password,
		Role:       payload.Role,
		EmployeeID: employeeID,
	})
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	api.Created(w, toUserResponse(user), shared.RequestID(r))
}

func toUserResponse(u auth.User) userResponse {
	return userResponse{Username: u.Username, Role: u.Role, EmployeeID: u.EmployeeID}
}
