package user

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"linkup-api/internal/config"
	"linkup-api/internal/modules/category"
	"linkup-api/internal/notification"
	"linkup-api/internal/storage"
	"linkup-api/internal/token"
)

// RegisterInput carries a registration request into the service.
type RegisterInput struct {
	Name         string
	Email        string
	Mobile       string
	Password     string
	RegisterType RegisterType
	UID          *string
	Image        []byte
	ImageExt     string
}

// LoginInput carries a login request into the service.
type LoginInput struct {
	Email        string
	Password     string
	RegisterType RegisterType
	UID          *string
}

// AuthResult is the outcome of a login or verification step.
// For manual accounts login is two-phase: the first phase sets OTPRequired
// and issues no tokens; VerifyOTP completes the round.
type AuthResult struct {
	OTPRequired  bool
	AccessToken  string
	RefreshToken string
	User         *User
}

// Profile is a user together with their language and interest associations.
type Profile struct {
	User
	Languages []Language          `json:"languages"`
	Interests []category.Category `json:"interests"`
}

// UpdateProfileInput defines the updatable profile fields. Pointers
// distinguish "not provided" from "set to zero value".
type UpdateProfileInput struct {
	Name        *string
	Bio         *string
	Image       []byte
	ImageExt    string
	LanguageIDs *[]int64
	InterestIDs *[]int64
}

// Service defines the interface for the user module's business logic:
// the auth state machine plus profile and user lookups.
type Service interface {
	// Auth state machine
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	VerifyOTP(ctx context.Context, email, code string) (*AuthResult, error)
	ResetOTP(ctx context.Context, email string) error
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken string, err error)

	// Social login via the Google OAuth code flow
	InitiateGoogleLogin(ctx context.Context) (redirectURL string, err error)
	CompleteGoogleLogin(ctx context.Context, state, code string) (*AuthResult, error)

	// Profile
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*Profile, error)

	// Lookups consumed by protected collaborator endpoints
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	SearchUsers(ctx context.Context, q string) ([]User, error)

	// ResolveByEmail is used by the session guard to bind a token subject to
	// an account record.
	ResolveByEmail(ctx context.Context, email string) (*User, error)
}

// service implements the Service interface.
type service struct {
	repo     Repository
	logger   *slog.Logger
	config   *config.Config
	tokens   *token.Manager
	notifier notification.Service
	blobs    storage.Store
	redis    *redis.Client

	// googleAuth defaults to the real provider; tests point it elsewhere.
	googleAuth googleProvider
}

// Config holds the dependencies for the user service.
type Config struct {
	Repo     Repository
	Logger   *slog.Logger
	Config   *config.Config
	Tokens   *token.Manager
	Notifier notification.Service
	Blobs    storage.Store
	Redis    *redis.Client
}

// NewService creates a new user service with the given dependencies.
func NewService(cfg *Config) Service {
	return &service{
		repo:       cfg.Repo,
		logger:     cfg.Logger,
		config:     cfg.Config,
		tokens:     cfg.Tokens,
		notifier:   cfg.Notifier,
		blobs:      cfg.Blobs,
		redis:      cfg.Redis,
		googleAuth: defaultGoogleProvider(),
	}
}
