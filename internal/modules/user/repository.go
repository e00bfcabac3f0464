package user

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"

	"linkup-api/internal/database"
	"linkup-api/internal/modules/category"
)

// Repository defines the interface for database operations for the user
// module. This abstraction allows the service layer to be independent of the
// database implementation.
//
// Each mutation touches a single account row; OTP fields are always written
// together so the conjoint code/expiry invariant cannot be violated by a
// partial update.
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	Update(ctx context.Context, user *User) error

	// OTP & token state
	ArmOTP(ctx context.Context, userID int64, code string, expiry time.Time) error
	CompleteOTP(ctx context.Context, userID int64, accessToken, refreshToken string) error
	UpdateTokens(ctx context.Context, userID int64, accessToken, refreshToken string) error

	// Listing & search
	List(ctx context.Context) ([]User, error)
	Search(ctx context.Context, q string) ([]User, error)

	// Profile associations
	LanguagesForUser(ctx context.Context, userID int64) ([]Language, error)
	InterestsForUser(ctx context.Context, userID int64) ([]category.Category, error)
	ReplaceLanguages(ctx context.Context, userID int64, languageIDs []int64) error
	ReplaceInterests(ctx context.Context, userID int64, categoryIDs []int64) error
}

// repository implements the Repository interface using pgx and squirrel.
type repository struct {
	db   database.DBTX
	psql squirrel.StatementBuilderType
}

// NewRepository creates a new user repository with the given database connection.
func NewRepository(db database.DBTX) Repository {
	return &repository{
		db:   db,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}
