package user

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"
)

// Register handles both registration modes.
//
// Manual accounts start unverified with a pending OTP dispatched by email;
// social accounts are verified at creation (the external identity provider
// already proved contact ownership) and never carry a password hash.
func (s *service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	if input.RegisterType != RegisterTypeManual && input.RegisterType != RegisterTypeSocial {
		return nil, ErrInvalidRegisterType
	}
	if input.RegisterType == RegisterTypeManual && input.Password == "" {
		return nil, ErrPasswordRequired
	}

	newUser := &User{
		UID:          input.UID,
		Name:         input.Name,
		Email:        normalizeEmail(input.Email),
		Mobile:       input.Mobile,
		RegisterType: input.RegisterType,
	}

	if len(input.Image) > 0 {
		ref, err := s.blobs.Store(ctx, input.Image, input.ImageExt)
		if err != nil {
			s.logger.Error("failed to store profile image", "error", err)
			return nil, ErrInternal.WithCause(err)
		}
		newUser.ProfileImage = &ref
	}

	var otpCode string
	switch input.RegisterType {
	case RegisterTypeManual:
		hash, err := hashPassword(input.Password)
		if err != nil {
			s.logger.Error("failed to hash password", "error", err)
			return nil, ErrInternal.WithCause(err)
		}
		newUser.PasswordHash = &hash

		code, expiry, err := s.newOTP()
		if err != nil {
			s.logger.Error("failed to generate otp", "error", err)
			return nil, ErrInternal.WithCause(err)
		}
		otpCode = code
		newUser.OTPCode = &code
		newUser.OTPExpiry = &expiry
	case RegisterTypeSocial:
		newUser.OTPVerified = true
	}

	// The users_email_key constraint settles duplicate emails, including
	// concurrent registrations; there is no check-then-insert race to lose.
	if err := s.repo.Create(ctx, newUser); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		s.logger.Error("failed to create user", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	s.logger.Info("user registered", "user_id", newUser.ID, "register_type", newUser.RegisterType)

	if input.RegisterType == RegisterTypeManual {
		s.dispatchOTP(ctx, newUser, otpCode)
	}
	return newUser, nil
}

// Login authenticates an account.
//
// Manual mode is two-phase: on a correct password a fresh OTP round is armed
// and dispatched, and no tokens are issued until VerifyOTP completes. Social
// mode is single-phase and issues tokens immediately. Absent account, absent
// hash, and wrong password all surface as ErrInvalidCredentials so the
// endpoint does not leak account existence.
func (s *service) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if input.RegisterType != RegisterTypeManual && input.RegisterType != RegisterTypeSocial {
		return nil, ErrInvalidRegisterType
	}

	account, err := s.repo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("login: failed to find user", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	// The stored mode decides which flow is legal. A password account cannot
	// take the social path to skip the passcode round, and the mismatch
	// reports as bad credentials so the endpoint does not reveal how an
	// email registered.
	if account.RegisterType != input.RegisterType {
		return nil, ErrInvalidCredentials
	}

	switch account.RegisterType {
	case RegisterTypeManual:
		if input.Password == "" {
			return nil, ErrPasswordRequired
		}
		if account.PasswordHash == nil || !checkPasswordHash(input.Password, *account.PasswordHash) {
			return nil, ErrInvalidCredentials
		}

		code, expiry, err := s.newOTP()
		if err != nil {
			s.logger.Error("login: failed to generate otp", "error", err)
			return nil, ErrInternal.WithCause(err)
		}
		// Every password login re-arms the challenge; verification is per
		// round, not a one-time account property.
		if err := s.repo.ArmOTP(ctx, account.ID, code, expiry); err != nil {
			s.logger.Error("login: failed to arm otp", "error", err)
			return nil, ErrInternal.WithCause(err)
		}
		account.OTPCode = &code
		account.OTPExpiry = &expiry
		account.OTPVerified = false

		s.logger.Info("otp armed for login", "user_id", account.ID)
		s.dispatchOTP(ctx, account, code)
		return &AuthResult{OTPRequired: true}, nil

	case RegisterTypeSocial:
		if input.UID != nil {
			account.UID = input.UID
			if err := s.repo.Update(ctx, account); err != nil {
				s.logger.Error("login: failed to update uid", "error", err)
				return nil, ErrInternal.WithCause(err)
			}
		}
		return s.issueTokens(ctx, account)

	default:
		// The register_type CHECK constraint makes this unreachable.
		s.logger.Error("login: account has malformed register type", "user_id", account.ID)
		return nil, ErrInternal
	}
}

// VerifyOTP completes phase two of a manual login (or of registration before
// first use). On success both OTP fields clear together, the account becomes
// verified, and a fresh token pair is issued and recorded.
func (s *service) VerifyOTP(ctx context.Context, email, code string) (*AuthResult, error) {
	account, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("verify otp: failed to find user", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	if !account.HasPendingOTP() {
		return nil, ErrNoPendingOTP
	}
	// Expired codes stay pending; a reset-otp issues a replacement.
	if time.Now().After(*account.OTPExpiry) {
		return nil, ErrOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(*account.OTPCode)) != 1 {
		return nil, ErrOTPMismatch
	}

	accessToken, err := s.tokens.IssueAccess(account.Email)
	if err != nil {
		s.logger.Error("verify otp: failed to issue access token", "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	refreshToken, err := s.tokens.IssueRefresh(account.Email)
	if err != nil {
		s.logger.Error("verify otp: failed to issue refresh token", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	if err := s.repo.CompleteOTP(ctx, account.ID, accessToken, refreshToken); err != nil {
		s.logger.Error("verify otp: failed to complete otp round", "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	account.OTPCode = nil
	account.OTPExpiry = nil
	account.OTPVerified = true
	account.AccessToken = &accessToken
	account.RefreshToken = &refreshToken

	s.logger.Info("otp verified", "user_id", account.ID)
	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         account,
	}, nil
}

// ResetOTP regenerates and redispatches the passcode for a manual account.
func (s *service) ResetOTP(ctx context.Context, email string) error {
	account, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		s.logger.Error("reset otp: failed to find user", "error", err)
		return ErrInternal.WithCause(err)
	}
	if account.RegisterType != RegisterTypeManual {
		return ErrOTPNotApplicable
	}

	code, expiry, err := s.newOTP()
	if err != nil {
		s.logger.Error("reset otp: failed to generate otp", "error", err)
		return ErrInternal.WithCause(err)
	}
	if err := s.repo.ArmOTP(ctx, account.ID, code, expiry); err != nil {
		s.logger.Error("reset otp: failed to arm otp", "error", err)
		return ErrInternal.WithCause(err)
	}

	s.logger.Info("otp reset", "user_id", account.ID)
	s.dispatchOTP(ctx, account, code)
	return nil
}

// RefreshToken mints a new access token from a valid refresh token. The
// refresh token itself is not rotated.
func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	subject, err := s.tokens.Decode(refreshToken)
	if err != nil {
		return "", ErrInvalidToken.WithCause(err)
	}
	accessToken, err := s.tokens.IssueAccess(subject)
	if err != nil {
		s.logger.Error("refresh: failed to issue access token", "error", err)
		return "", ErrInternal.WithCause(err)
	}
	return accessToken, nil
}

// ResolveByEmail binds a token subject to an account record for the session guard.
func (s *service) ResolveByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.FindByEmail(ctx, normalizeEmail(email))
}

func (s *service) newOTP() (string, time.Time, error) {
	return generateOTP(time.Duration(s.config.OTP.TTLMinutes) * time.Minute)
}

// issueTokens creates and records a token pair for an account.
func (s *service) issueTokens(ctx context.Context, account *User) (*AuthResult, error) {
	accessToken, err := s.tokens.IssueAccess(account.Email)
	if err != nil {
		s.logger.Error("failed to issue access token", "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	refreshToken, err := s.tokens.IssueRefresh(account.Email)
	if err != nil {
		s.logger.Error("failed to issue refresh token", "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	if err := s.repo.UpdateTokens(ctx, account.ID, accessToken, refreshToken); err != nil {
		s.logger.Error("failed to record tokens", "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	account.AccessToken = &accessToken
	account.RefreshToken = &refreshToken
	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         account,
	}, nil
}

// dispatchOTP delivers the passcode email. Delivery failure never fails the
// surrounding operation: the code stays armed and the user can request a
// fresh one. The SMTP sender carries its own connect/send timeouts.
func (s *service) dispatchOTP(ctx context.Context, account *User, code string) {
	if err := s.notifier.SendOTPCode(ctx, account.Email, account.Name, code); err != nil {
		s.logger.Error("failed to dispatch otp email", "error", err, "user_id", account.ID)
	}
}
