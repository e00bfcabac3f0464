package user

import (
	"context"

	"linkup-api/internal/httpx"
	"linkup-api/internal/validation"
)

// --- DTOs ---

// RegisterRequest defines the registration request body. The image, when
// present, is base64 in transit and stored as a file reference.
type RegisterRequest struct {
	Body struct {
		Name           string  `json:"name" validate:"required,min=2"`
		Email          string  `json:"email" validate:"required,email"`
		Mobile         string  `json:"mobile" validate:"required,min=7,max=20"`
		Password       string  `json:"password,omitempty" validate:"omitempty,min=8"`
		RegisterType   string  `json:"registerType" validate:"required,oneof=manual_login social_login"`
		UID            *string `json:"uid,omitempty"`
		Image          []byte  `json:"image,omitempty"`
		ImageExtension string  `json:"imageExtension,omitempty" validate:"omitempty,oneof=jpg jpeg png webp"`
	}
}

// RegisterResponse carries the created account. Manual accounts must still
// verify the emailed passcode before logging in.
type RegisterResponse struct {
	Status int
	Body   struct {
		User UserPayload `json:"user"`
	}
}

// LoginRequest defines the login request body.
type LoginRequest struct {
	Body struct {
		Email        string  `json:"email" validate:"required,email"`
		Password     string  `json:"password,omitempty"`
		RegisterType string  `json:"registerType" validate:"required,oneof=manual_login social_login"`
		UID          *string `json:"uid,omitempty"`
	}
}

// LoginResponse is either an OTP challenge (manual) or a token pair (social).
type LoginResponse struct {
	Body struct {
		OTPRequired  bool         `json:"otpRequired"`
		AccessToken  string       `json:"accessToken,omitempty"`
		RefreshToken string       `json:"refreshToken,omitempty"`
		User         *UserPayload `json:"user,omitempty"`
	}
}

// VerifyOTPRequest confirms the 4-digit passcode for an account.
type VerifyOTPRequest struct {
	Body struct {
		Email string `json:"email" validate:"required,email"`
		Code  string `json:"code" validate:"required,len=4,numeric"`
	}
}

// VerifyOTPResponse carries the issued token pair.
type VerifyOTPResponse struct {
	Body struct {
		AccessToken  string      `json:"accessToken"`
		RefreshToken string      `json:"refreshToken"`
		User         UserPayload `json:"user"`
	}
}

// ResetOTPRequest asks for a fresh passcode to be emailed.
type ResetOTPRequest struct {
	Body struct {
		Email string `json:"email" validate:"required,email"`
	}
}

type ResetOTPResponse struct{}

// RefreshTokenRequest exchanges a refresh token for a new access token.
type RefreshTokenRequest struct {
	Body struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}
}

type RefreshTokenResponse struct {
	Body struct {
		AccessToken string `json:"accessToken"`
	}
}

// --- Handlers ---

// RegisterHandler handles the user registration endpoint.
func (h *Handler) RegisterHandler(ctx context.Context, input *RegisterRequest) (*RegisterResponse, error) {
	if verr := validation.ValidateStruct(&input.Body); verr != nil {
		return nil, httpx.ToProblem(ctx, verr)
	}

	h.logger.Info("handling registration request", "email", input.Body.Email, "register_type", input.Body.RegisterType)

	account, err := h.service.Register(ctx, RegisterInput{
		Name:         input.Body.Name,
		Email:        input.Body.Email,
		Mobile:       input.Body.Mobile,
		Password:     input.Body.Password,
		RegisterType: RegisterType(input.Body.RegisterType),
		UID:          input.Body.UID,
		Image:        input.Body.Image,
		ImageExt:     input.Body.ImageExtension,
	})
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &RegisterResponse{Status: 201}
	resp.Body.User = toUserPayload(account)
	return resp, nil
}

// LoginHandler handles the user login endpoint.
func (h *Handler) LoginHandler(ctx context.Context, input *LoginRequest) (*LoginResponse, error) {
	if verr := validation.ValidateStruct(&input.Body); verr != nil {
		return nil, httpx.ToProblem(ctx, verr)
	}

	h.logger.Info("handling login request", "email", input.Body.Email, "register_type", input.Body.RegisterType)

	result, err := h.service.Login(ctx, LoginInput{
		Email:        input.Body.Email,
		Password:     input.Body.Password,
		RegisterType: RegisterType(input.Body.RegisterType),
		UID:          input.Body.UID,
	})
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &LoginResponse{}
	resp.Body.OTPRequired = result.OTPRequired
	resp.Body.AccessToken = result.AccessToken
	resp.Body.RefreshToken = result.RefreshToken
	if result.User != nil {
		payload := toUserPayload(result.User)
		resp.Body.User = &payload
	}
	return resp, nil
}

// VerifyOTPHandler completes the passcode challenge and issues tokens.
func (h *Handler) VerifyOTPHandler(ctx context.Context, input *VerifyOTPRequest) (*VerifyOTPResponse, error) {
	if verr := validation.ValidateStruct(&input.Body); verr != nil {
		return nil, httpx.ToProblem(ctx, verr)
	}

	result, err := h.service.VerifyOTP(ctx, input.Body.Email, input.Body.Code)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &VerifyOTPResponse{}
	resp.Body.AccessToken = result.AccessToken
	resp.Body.RefreshToken = result.RefreshToken
	resp.Body.User = toUserPayload(result.User)
	return resp, nil
}

// ResetOTPHandler regenerates and resends the passcode.
func (h *Handler) ResetOTPHandler(ctx context.Context, input *ResetOTPRequest) (*ResetOTPResponse, error) {
	if verr := validation.ValidateStruct(&input.Body); verr != nil {
		return nil, httpx.ToProblem(ctx, verr)
	}

	if err := h.service.ResetOTP(ctx, input.Body.Email); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return &ResetOTPResponse{}, nil
}

// RefreshTokenHandler issues a new access token from a valid refresh token.
func (h *Handler) RefreshTokenHandler(ctx context.Context, input *RefreshTokenRequest) (*RefreshTokenResponse, error) {
	if verr := validation.ValidateStruct(&input.Body); verr != nil {
		return nil, httpx.ToProblem(ctx, verr)
	}

	accessToken, err := h.service.RefreshToken(ctx, input.Body.RefreshToken)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &RefreshTokenResponse{}
	resp.Body.AccessToken = accessToken
	return resp, nil
}
