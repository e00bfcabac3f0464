package user

import (
	"time"
)

// RegisterType states how an account authenticates. It decides which fields
// are required and which login flow is legal for the account.
type RegisterType string

const (
	// RegisterTypeManual is a password-based account. It must complete OTP
	// verification after registration and after every password login.
	RegisterTypeManual RegisterType = "manual_login"

	// RegisterTypeSocial is an account delegated to an external identity
	// provider. It is verified at creation and never carries a password hash.
	RegisterTypeSocial RegisterType = "social_login"
)

// User represents one registered identity.
//
// OTPCode and OTPExpiry are conjoint: both set while a passcode is pending,
// both nil otherwise (never one without the other). AccessToken and
// RefreshToken hold the last-issued tokens for reference only; token
// validation is stateless and never consults them.
type User struct {
	ID           int64        `db:"id"`
	UID          *string      `db:"uid"`
	Name         string       `db:"name"`
	Email        string       `db:"email"`
	Mobile       string       `db:"mobile"`
	PasswordHash *string      `db:"password_hash"`
	RegisterType RegisterType `db:"register_type"`
	Bio          *string      `db:"bio"`
	ProfileImage *string      `db:"profile_image"`
	OTPCode      *string      `db:"otp_code"`
	OTPExpiry    *time.Time   `db:"otp_expiry"`
	OTPVerified  bool         `db:"otp_verified"`
	AccessToken  *string      `db:"access_token"`
	RefreshToken *string      `db:"refresh_token"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
}

// HasPendingOTP reports whether a passcode challenge is currently armed.
func (u *User) HasPendingOTP() bool {
	return u.OTPCode != nil && u.OTPExpiry != nil
}

// Verified reports whether the account may access protected resources.
// Social accounts are always verified; manual accounts only after completing
// their current OTP round.
func (u *User) Verified() bool {
	if u.RegisterType == RegisterTypeSocial {
		return true
	}
	return u.OTPVerified
}

// Language is a spoken-language tag that can be attached to a profile.
type Language struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
