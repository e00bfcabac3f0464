// Package search exposes the combined lookup across users and categories.
package search

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"linkup-api/internal/httpx"
	"linkup-api/internal/modules/category"
	"linkup-api/internal/modules/user"
)

// Handler fans one query out to the user and category services.
type Handler struct {
	users      user.Service
	categories category.Service
	logger     *slog.Logger
}

// NewHandler creates a new handler for the combined search endpoint.
func NewHandler(users user.Service, categories category.Service, logger *slog.Logger) *Handler {
	return &Handler{
		users:      users,
		categories: categories,
		logger:     logger,
	}
}

// RegisterRoutes sets up the combined search route behind the session guard.
func (h *Handler) RegisterRoutes(api huma.API, guard func(huma.Context, func(huma.Context))) {
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/search/all",
		Summary:     "Search users and categories together",
		Middlewares: huma.Middlewares{guard},
	}, h.SearchAllHandler)
}

// SearchAllRequest carries the substring matched against user names, user
// emails, and category names.
type SearchAllRequest struct {
	Query string `query:"q" required:"true" minLength:"1"`
}

// SearchAllResponse groups the matches per domain.
type SearchAllResponse struct {
	Body struct {
		Users      []user.UserPayload  `json:"users"`
		Categories []category.Category `json:"categories"`
	}
}

// SearchAllHandler runs both searches for one query. A miss in one domain is
// not an error; both result lists may be empty.
func (h *Handler) SearchAllHandler(ctx context.Context, input *SearchAllRequest) (*SearchAllResponse, error) {
	users, err := h.users.SearchUsers(ctx, input.Query)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	cats, err := h.categories.Search(ctx, input.Query)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &SearchAllResponse{}
	resp.Body.Users = make([]user.UserPayload, 0, len(users))
	for i := range users {
		resp.Body.Users = append(resp.Body.Users, user.ToPayload(&users[i]))
	}
	resp.Body.Categories = cats
	return resp, nil
}
