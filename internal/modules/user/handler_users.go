package user

import (
	"context"

	"linkup-api/internal/httpx"
)

// --- DTOs ---

// ListUsersResponse is the full user listing.
type ListUsersResponse struct {
	Body struct {
		Users []UserPayload `json:"users"`
	}
}

// GetUserRequest addresses a single user by numeric ID.
type GetUserRequest struct {
	ID int64 `path:"id"`
}

// GetUserResponse carries one user.
type GetUserResponse struct {
	Body struct {
		User UserPayload `json:"user"`
	}
}

// SearchUsersRequest carries the substring to match against name and email.
type SearchUsersRequest struct {
	Query string `query:"q" required:"true" minLength:"1"`
}

// --- Handlers ---

// ListUsersHandler returns all users.
func (h *Handler) ListUsersHandler(ctx context.Context, _ *struct{}) (*ListUsersResponse, error) {
	users, err := h.service.ListUsers(ctx)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &ListUsersResponse{}
	resp.Body.Users = toUserPayloads(users)
	return resp, nil
}

// GetUserHandler returns one user by ID.
func (h *Handler) GetUserHandler(ctx context.Context, input *GetUserRequest) (*GetUserResponse, error) {
	account, err := h.service.GetUser(ctx, input.ID)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &GetUserResponse{}
	resp.Body.User = toUserPayload(account)
	return resp, nil
}

// SearchUsersHandler finds users whose name or email contains the query.
func (h *Handler) SearchUsersHandler(ctx context.Context, input *SearchUsersRequest) (*ListUsersResponse, error) {
	users, err := h.service.SearchUsers(ctx, input.Query)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &ListUsersResponse{}
	resp.Body.Users = toUserPayloads(users)
	return resp, nil
}

func toUserPayloads(users []User) []UserPayload {
	payloads := make([]UserPayload, 0, len(users))
	for i := range users {
		payloads = append(payloads, toUserPayload(&users[i]))
	}
	return payloads
}
