package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	oauthStatePrefix = "oauth:state:"
	oauthStateTTL    = 5 * time.Minute

	googleUserinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

// googleProvider carries the provider's endpoints so the code flow can be
// exercised against a local server in tests.
type googleProvider struct {
	endpoint    oauth2.Endpoint
	userinfoURL string
}

func defaultGoogleProvider() googleProvider {
	return googleProvider{
		endpoint:    google.Endpoint,
		userinfoURL: googleUserinfoURL,
	}
}

// googleUserinfo is the subset of the Google OpenID userinfo payload we use.
type googleUserinfo struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

func (s *service) googleConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.config.Google.ClientID,
		ClientSecret: s.config.Google.ClientSecret,
		RedirectURL:  s.config.Google.RedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     s.googleAuth.endpoint,
	}
}

// InitiateGoogleLogin starts the Google authorization code flow with PKCE.
// The state token and its code verifier live in redis for one flow attempt.
func (s *service) InitiateGoogleLogin(ctx context.Context) (string, error) {
	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	if err := s.redis.Set(ctx, oauthStatePrefix+state, verifier, oauthStateTTL).Err(); err != nil {
		s.logger.Error("failed to store oauth state", "error", err)
		return "", ErrInternal.WithCause(err)
	}

	url := s.googleConfig().AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)
	return url, nil
}

// CompleteGoogleLogin finishes the code flow: it validates the state,
// exchanges the code, reads the Google identity, finds or creates the
// matching social account, and issues tokens.
func (s *service) CompleteGoogleLogin(ctx context.Context, state, code string) (*AuthResult, error) {
	// GetDel makes the state single-use; a replayed callback fails here.
	verifier, err := s.redis.GetDel(ctx, oauthStatePrefix+state).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrOAuthStateInvalid
		}
		s.logger.Error("failed to load oauth state", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	oauthCfg := s.googleConfig()
	oauthToken, err := oauthCfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		s.logger.Warn("google code exchange failed", "error", err)
		return nil, ErrOAuthExchangeFailed.WithCause(err)
	}

	info, err := s.fetchGoogleUserinfo(ctx, oauthCfg, oauthToken)
	if err != nil {
		return nil, err
	}
	if info.Email == "" {
		return nil, ErrOAuthEmailMissing
	}

	account, err := s.repo.FindByEmail(ctx, normalizeEmail(info.Email))
	switch {
	case err == nil:
		if account.UID == nil && info.Sub != "" {
			account.UID = &info.Sub
			if err := s.repo.Update(ctx, account); err != nil {
				s.logger.Error("failed to update uid", "error", err, "user_id", account.ID)
				return nil, ErrInternal.WithCause(err)
			}
		}
	case errors.Is(err, ErrNotFound):
		account = &User{
			Name:         info.Name,
			Email:        normalizeEmail(info.Email),
			RegisterType: RegisterTypeSocial,
			OTPVerified:  true,
		}
		if info.Sub != "" {
			account.UID = &info.Sub
		}
		if info.Picture != "" {
			account.ProfileImage = &info.Picture
		}
		if err := s.repo.Create(ctx, account); err != nil {
			s.logger.Error("failed to create social user", "error", err)
			return nil, ErrInternal.WithCause(err)
		}
		s.logger.Info("social user created", "user_id", account.ID)
	default:
		s.logger.Error("failed to find user", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	return s.issueTokens(ctx, account)
}

func (s *service) fetchGoogleUserinfo(ctx context.Context, cfg *oauth2.Config, t *oauth2.Token) (*googleUserinfo, error) {
	resp, err := cfg.Client(ctx, t).Get(s.googleAuth.userinfoURL)
	if err != nil {
		s.logger.Error("failed to fetch google userinfo", "error", err)
		return nil, ErrOAuthExchangeFailed.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.logger.Error("google userinfo returned non-200", "status", resp.StatusCode, "body", string(body))
		return nil, ErrOAuthExchangeFailed.WithCause(fmt.Errorf("userinfo status %d", resp.StatusCode))
	}

	var info googleUserinfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		s.logger.Error("failed to decode google userinfo", "error", err)
		return nil, ErrOAuthExchangeFailed.WithCause(err)
	}
	return &info, nil
}
