// Package middleware holds the session guard applied to every protected
// operation. The guard is composed once at server construction and reused;
// individual handlers never re-check verification status themselves.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"

	"linkup-api/internal/contextx"
	"linkup-api/internal/httpx"
	"linkup-api/internal/modules/user"
	"linkup-api/internal/token"
)

// AccountResolver resolves a token subject to an account record.
type AccountResolver interface {
	ResolveByEmail(ctx context.Context, email string) (*user.User, error)
}

// Guard validates bearer tokens and gates access on verification status.
type Guard struct {
	tokens   *token.Manager
	resolver AccountResolver
	logger   *slog.Logger
}

// NewGuard creates a session guard.
func NewGuard(tokens *token.Manager, resolver AccountResolver, logger *slog.Logger) *Guard {
	return &Guard{
		tokens:   tokens,
		resolver: resolver,
		logger:   logger,
	}
}

// Authenticate validates an Authorization header value and resolves it to an
// account. A structurally valid access token is not enough: a manual-login
// account that has not completed its current OTP round is rejected with
// ErrOTPNotVerified. The check runs per request, not just at login.
func (g *Guard) Authenticate(ctx context.Context, authHeader string) (*user.User, error) {
	if authHeader == "" {
		return nil, user.ErrUnauthorized.WithDetail("missing authorization header")
	}
	tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found {
		return nil, user.ErrUnauthorized.WithDetail("invalid authorization header format")
	}

	subject, err := g.tokens.Decode(tokenString)
	if err != nil {
		return nil, user.ErrInvalidToken.WithCause(err)
	}

	account, err := g.resolver.ResolveByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrUnauthorized.WithDetail("unknown token subject")
		}
		g.logger.Error("guard: account resolution failed", "error", err)
		return nil, user.ErrInternal.WithCause(err)
	}

	if !account.Verified() {
		return nil, user.ErrOTPNotVerified
	}
	return account, nil
}

// Require returns a Huma operation middleware that authenticates the request
// and stores the resolved account under contextx.UserKey for downstream
// handlers. On failure it writes an RFC 7807 problem+json response.
func (g *Guard) Require() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		account, err := g.Authenticate(ctx.Context(), ctx.Header("Authorization"))
		if err != nil {
			g.writeProblem(ctx, err)
			return
		}
		next(huma.WithValue(ctx, contextx.UserKey, account))
	}
}

func (g *Guard) writeProblem(ctx huma.Context, err error) {
	r, w := humachi.Unwrap(ctx)
	p, ok := httpx.ToProblem(r.Context(), err).(*httpx.Problem)
	if !ok {
		p = httpx.InternalProblem(r.Context(), "")
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.GetStatus())
	_ = json.NewEncoder(w).Encode(p)
}
