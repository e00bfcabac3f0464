package user

import (
	"context"

	"linkup-api/internal/httpx"
	"linkup-api/internal/validation"
)

// --- DTOs ---

// ProfileResponse is the authenticated user's full profile.
type ProfileResponse struct {
	Body struct {
		Profile ProfilePayload `json:"profile"`
	}
}

// UpdateProfileRequest defines the updatable profile fields. Absent fields
// are left unchanged; language and interest lists replace wholesale when
// present.
type UpdateProfileRequest struct {
	Body struct {
		Name           *string  `json:"name,omitempty" validate:"omitempty,min=2"`
		Bio            *string  `json:"bio,omitempty" validate:"omitempty,max=500"`
		Image          []byte   `json:"image,omitempty"`
		ImageExtension string   `json:"imageExtension,omitempty" validate:"omitempty,oneof=jpg jpeg png webp"`
		LanguageIDs    *[]int64 `json:"languageIds,omitempty"`
		InterestIDs    *[]int64 `json:"interestIds,omitempty"`
	}
}

// --- Handlers ---

// GetProfileHandler returns the profile of the authenticated user.
func (h *Handler) GetProfileHandler(ctx context.Context, _ *struct{}) (*ProfileResponse, error) {
	account, ok := CurrentUser(ctx)
	if !ok {
		// The guard always precedes this handler; a missing account means a
		// broken middleware chain.
		h.logger.Error("authenticated user missing from context")
		return nil, httpx.Unauthorized(ctx, "invalid authentication context")
	}

	profile, err := h.service.GetProfile(ctx, account.ID)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &ProfileResponse{}
	resp.Body.Profile = toProfilePayload(profile)
	return resp, nil
}

// UpdateProfileHandler updates the authenticated user's profile.
func (h *Handler) UpdateProfileHandler(ctx context.Context, input *UpdateProfileRequest) (*ProfileResponse, error) {
	account, ok := CurrentUser(ctx)
	if !ok {
		h.logger.Error("authenticated user missing from context")
		return nil, httpx.Unauthorized(ctx, "invalid authentication context")
	}

	if verr := validation.ValidateStruct(&input.Body); verr != nil {
		return nil, httpx.ToProblem(ctx, verr)
	}

	profile, err := h.service.UpdateProfile(ctx, account.ID, UpdateProfileInput{
		Name:        input.Body.Name,
		Bio:         input.Body.Bio,
		Image:       input.Body.Image,
		ImageExt:    input.Body.ImageExtension,
		LanguageIDs: input.Body.LanguageIDs,
		InterestIDs: input.Body.InterestIDs,
	})
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &ProfileResponse{}
	resp.Body.Profile = toProfilePayload(profile)
	return resp, nil
}
