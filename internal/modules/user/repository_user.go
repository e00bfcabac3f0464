package user

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = "id, uid, name, email, mobile, password_hash, register_type, bio, " +
	"profile_image, otp_code, otp_expiry, otp_verified, access_token, refresh_token, " +
	"created_at, updated_at"

// uniqueViolation is the Postgres error code raised by the users_email_key
// constraint. Concurrent registrations for the same email are settled here,
// not by an application-level pre-check.
const uniqueViolation = "23505"

// Create inserts a new user record and assigns its id.
// It returns ErrEmailExists when the email is already taken.
func (r *repository) Create(ctx context.Context, user *User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	query, args, err := r.psql.Insert("users").
		Columns("uid", "name", "email", "mobile", "password_hash", "register_type",
			"bio", "profile_image", "otp_code", "otp_expiry", "otp_verified", "created_at", "updated_at").
		Values(user.UID, user.Name, user.Email, user.Mobile, user.PasswordHash, string(user.RegisterType),
			user.Bio, user.ProfileImage, user.OTPCode, user.OTPExpiry, user.OTPVerified, user.CreatedAt, user.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&user.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailExists.WithCause(err)
		}
		return err
	}
	return nil
}

// FindByEmail retrieves a user by their email address.
// It returns ErrNotFound if no user is found.
func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, squirrel.Eq{"email": email})
}

// FindByID retrieves a user by their unique ID.
// It returns ErrNotFound if no user is found.
func (r *repository) FindByID(ctx context.Context, id int64) (*User, error) {
	return r.findOne(ctx, squirrel.Eq{"id": id})
}

func (r *repository) findOne(ctx context.Context, condition squirrel.Sqlizer) (*User, error) {
	query, args, err := r.psql.Select(userColumns).
		From("users").
		Where(condition).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var user User
	if err := pgxscan.Get(ctx, r.db, &user, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}
	return &user, nil
}

// Update modifies a user's mutable identity and profile fields.
func (r *repository) Update(ctx context.Context, user *User) error {
	user.UpdatedAt = time.Now()

	query, args, err := r.psql.Update("users").
		Set("uid", user.UID).
		Set("name", user.Name).
		Set("mobile", user.Mobile).
		Set("bio", user.Bio).
		Set("profile_image", user.ProfileImage).
		Set("updated_at", user.UpdatedAt).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return err
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ArmOTP stores a fresh passcode challenge: code and expiry are written
// together and the verified flag drops until the round completes.
func (r *repository) ArmOTP(ctx context.Context, userID int64, code string, expiry time.Time) error {
	query, args, err := r.psql.Update("users").
		Set("otp_code", code).
		Set("otp_expiry", expiry).
		Set("otp_verified", false).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CompleteOTP finishes a passcode round: both OTP fields are cleared
// together, the account is marked verified, and the freshly issued tokens
// are recorded.
func (r *repository) CompleteOTP(ctx context.Context, userID int64, accessToken, refreshToken string) error {
	query, args, err := r.psql.Update("users").
		Set("otp_code", nil).
		Set("otp_expiry", nil).
		Set("otp_verified", true).
		Set("access_token", accessToken).
		Set("refresh_token", refreshToken).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateTokens records the last-issued token pair for reference.
func (r *repository) UpdateTokens(ctx context.Context, userID int64, accessToken, refreshToken string) error {
	query, args, err := r.psql.Update("users").
		Set("access_token", accessToken).
		Set("refresh_token", refreshToken).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all users ordered by id.
func (r *repository) List(ctx context.Context) ([]User, error) {
	query, args, err := r.psql.Select(userColumns).From("users").OrderBy("id").ToSql()
	if err != nil {
		return nil, err
	}
	var users []User
	if err := pgxscan.Select(ctx, r.db, &users, query, args...); err != nil {
		return nil, err
	}
	return users, nil
}

// Search matches users by case-insensitive substring on name or email.
func (r *repository) Search(ctx context.Context, q string) ([]User, error) {
	pattern := "%" + q + "%"
	query, args, err := r.psql.Select(userColumns).From("users").
		Where(squirrel.Or{
			squirrel.Expr("name ILIKE ?", pattern),
			squirrel.Expr("email ILIKE ?", pattern),
		}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}
	var users []User
	if err := pgxscan.Select(ctx, r.db, &users, query, args...); err != nil {
		return nil, err
	}
	return users, nil
}
