package user

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"linkup-api/internal/contextx"
	"linkup-api/internal/modules/category"
)

// Handler holds the dependencies for the user module's HTTP handlers.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// NewHandler creates a new handler for the user module.
func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routing for the user module. Protected routes
// carry the session guard; auth routes are public.
func (h *Handler) RegisterRoutes(api huma.API, guard func(huma.Context, func(huma.Context))) {
	// --- Authentication Routes (public) ---
	huma.Register(api, huma.Operation{
		Method:  http.MethodPost,
		Path:    "/auth/register",
		Summary: "Register a new user",
	}, h.RegisterHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodPost,
		Path:    "/auth/login",
		Summary: "Log in a user",
	}, h.LoginHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodPost,
		Path:    "/auth/verify-otp",
		Summary: "Verify a one-time passcode",
	}, h.VerifyOTPHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodPost,
		Path:    "/auth/reset-otp",
		Summary: "Resend a one-time passcode",
	}, h.ResetOTPHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodPost,
		Path:    "/auth/refresh-token",
		Summary: "Exchange a refresh token for a new access token",
	}, h.RefreshTokenHandler)

	// --- OAuth Routes (public) ---
	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/auth/oauth/google",
		Summary: "Initiate Google login",
	}, h.GoogleLoginHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/auth/oauth/google/callback",
		Summary: "Handle the Google OAuth callback",
	}, h.GoogleCallbackHandler)

	// --- Profile Routes (protected) ---
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/me",
		Summary:     "Get the current user's profile",
		Middlewares: huma.Middlewares{guard},
	}, h.GetProfileHandler)

	huma.Register(api, huma.Operation{
		Method:      http.MethodPut,
		Path:        "/profile",
		Summary:     "Update the current user's profile",
		Middlewares: huma.Middlewares{guard},
	}, h.UpdateProfileHandler)

	// --- User Lookup Routes (protected) ---
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/users",
		Summary:     "List all users",
		Middlewares: huma.Middlewares{guard},
	}, h.ListUsersHandler)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/users/{id}",
		Summary:     "Get a user by ID",
		Middlewares: huma.Middlewares{guard},
	}, h.GetUserHandler)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/search/users",
		Summary:     "Search users by name or email",
		Middlewares: huma.Middlewares{guard},
	}, h.SearchUsersHandler)
}

// CurrentUser extracts the authenticated account placed in the context by the
// session guard.
func CurrentUser(ctx context.Context) (*User, bool) {
	account, ok := ctx.Value(contextx.UserKey).(*User)
	return account, ok
}

// --- Shared DTOs ---

// UserPayload is the public representation of an account. Password hashes,
// passcodes, and stored tokens never leave the service boundary.
type UserPayload struct {
	ID           int64     `json:"id"`
	UID          *string   `json:"uid,omitempty"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Mobile       string    `json:"mobile"`
	RegisterType string    `json:"registerType"`
	Bio          *string   `json:"bio,omitempty"`
	ProfileImage *string   `json:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ProfilePayload is a user plus their language and interest associations.
type ProfilePayload struct {
	UserPayload
	Languages []Language          `json:"languages"`
	Interests []category.Category `json:"interests"`
}

// ToPayload converts a User to its public payload form. Exported for modules
// that embed user results in their own responses.
func ToPayload(u *User) UserPayload {
	return toUserPayload(u)
}

func toUserPayload(u *User) UserPayload {
	return UserPayload{
		ID:           u.ID,
		UID:          u.UID,
		Name:         u.Name,
		Email:        u.Email,
		Mobile:       u.Mobile,
		RegisterType: string(u.RegisterType),
		Bio:          u.Bio,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
	}
}

func toProfilePayload(p *Profile) ProfilePayload {
	return ProfilePayload{
		UserPayload: toUserPayload(&p.User),
		Languages:   p.Languages,
		Interests:   p.Interests,
	}
}
