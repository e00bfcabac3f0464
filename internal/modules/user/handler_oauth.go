package user

import (
	"context"

	"linkup-api/internal/httpx"
)

// --- DTOs ---

// GoogleLoginResponse carries the provider URL the client should redirect to.
type GoogleLoginResponse struct {
	Body struct {
		RedirectURL string `json:"redirectUrl"`
	}
}

// GoogleCallbackRequest carries the state and code Google appends to the
// callback redirect.
type GoogleCallbackRequest struct {
	State string `query:"state" required:"true"`
	Code  string `query:"code" required:"true"`
}

// GoogleCallbackResponse carries the issued token pair for the social account.
type GoogleCallbackResponse struct {
	Body struct {
		AccessToken  string      `json:"accessToken"`
		RefreshToken string      `json:"refreshToken"`
		User         UserPayload `json:"user"`
	}
}

// --- Handlers ---

// GoogleLoginHandler starts the Google authorization code flow.
func (h *Handler) GoogleLoginHandler(ctx context.Context, _ *struct{}) (*GoogleLoginResponse, error) {
	url, err := h.service.InitiateGoogleLogin(ctx)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &GoogleLoginResponse{}
	resp.Body.RedirectURL = url
	return resp, nil
}

// GoogleCallbackHandler completes the flow and logs the social account in.
func (h *Handler) GoogleCallbackHandler(ctx context.Context, input *GoogleCallbackRequest) (*GoogleCallbackResponse, error) {
	result, err := h.service.CompleteGoogleLogin(ctx, input.State, input.Code)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &GoogleCallbackResponse{}
	resp.Body.AccessToken = result.AccessToken
	resp.Body.RefreshToken = result.RefreshToken
	resp.Body.User = toUserPayload(result.User)
	return resp, nil
}
