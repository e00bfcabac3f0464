package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"linkup-api/internal/config"
	"linkup-api/internal/modules/category"
	"linkup-api/internal/token"
)

// fakeRepository is an in-memory Repository for service tests.
type fakeRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*User

	languages map[int64][]Language
	interests map[int64][]category.Category

	createErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:     make(map[int64]*User),
		languages: make(map[int64][]Language),
		interests: make(map[int64][]category.Category),
	}
}

func (f *fakeRepository) Create(ctx context.Context, u *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return ErrEmailExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now().UTC()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepository) Update(ctx context.Context, u *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	stored.UID = u.UID
	stored.Name = u.Name
	stored.Mobile = u.Mobile
	stored.Bio = u.Bio
	stored.ProfileImage = u.ProfileImage
	return nil
}

func (f *fakeRepository) ArmOTP(ctx context.Context, userID int64, code string, expiry time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.OTPCode = &code
	u.OTPExpiry = &expiry
	u.OTPVerified = false
	return nil
}

func (f *fakeRepository) CompleteOTP(ctx context.Context, userID int64, accessToken, refreshToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.OTPCode = nil
	u.OTPExpiry = nil
	u.OTPVerified = true
	u.AccessToken = &accessToken
	u.RefreshToken = &refreshToken
	return nil
}

func (f *fakeRepository) UpdateTokens(ctx context.Context, userID int64, accessToken, refreshToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.AccessToken = &accessToken
	u.RefreshToken = &refreshToken
	return nil
}

func (f *fakeRepository) List(ctx context.Context) ([]User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeRepository) Search(ctx context.Context, q string) ([]User, error) {
	return f.List(ctx)
}

func (f *fakeRepository) LanguagesForUser(ctx context.Context, userID int64) ([]Language, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.languages[userID], nil
}

func (f *fakeRepository) InterestsForUser(ctx context.Context, userID int64) ([]category.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.interests[userID], nil
}

func (f *fakeRepository) ReplaceLanguages(ctx context.Context, userID int64, languageIDs []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	langs := make([]Language, 0, len(languageIDs))
	for _, id := range languageIDs {
		langs = append(langs, Language{ID: id})
	}
	f.languages[userID] = langs
	return nil
}

func (f *fakeRepository) ReplaceInterests(ctx context.Context, userID int64, categoryIDs []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cats := make([]category.Category, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		cats = append(cats, category.Category{ID: id})
	}
	f.interests[userID] = cats
	return nil
}

// mustGet fetches a stored user directly, bypassing the copy-on-read the
// interface methods do.
func (f *fakeRepository) mustGet(id int64) *User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id]
}

// fakeNotifier records every dispatched passcode.
type fakeNotifier struct {
	mu    sync.Mutex
	sent  []sentOTP
	fail  bool
	calls int
}

type sentOTP struct {
	to   string
	name string
	code string
}

func (f *fakeNotifier) SendOTPCode(ctx context.Context, to, name, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return errors.New("smtp unreachable")
	}
	f.sent = append(f.sent, sentOTP{to: to, name: name, code: code})
	return nil
}

func (f *fakeNotifier) last() (sentOTP, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentOTP{}, false
	}
	return f.sent[len(f.sent)-1], true
}

// fakeBlobStore returns a deterministic reference without touching disk.
type fakeBlobStore struct {
	stored int
}

func (f *fakeBlobStore) Store(ctx context.Context, data []byte, ext string) (string, error) {
	f.stored++
	return "static/profile_images/test." + ext, nil
}

// newTestService wires a service with in-memory collaborators.
func newTestService(repo *fakeRepository, notifier *fakeNotifier) (Service, *token.Manager) {
	tokens := token.NewManager("test-secret", 15*time.Minute, 7*24*time.Hour)
	cfg := &config.Config{}
	cfg.OTP.TTLMinutes = 2

	svc := NewService(&Config{
		Repo:     repo,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:   cfg,
		Tokens:   tokens,
		Notifier: notifier,
		Blobs:    &fakeBlobStore{},
	})
	return svc, tokens
}
