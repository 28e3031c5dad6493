package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/itchan-dev/feedback/shared/domain"
	jwt_internal "github.com/itchan-dev/feedback/shared/jwt"
	"github.com/itchan-dev/feedback/shared/logger"
)

// Key to store the caller in the request context
type key int

const UserClaimsKey key = 0

// AccessTokenCookie carries the token for browser clients.
const AccessTokenCookie = "accessToken"

// Auth resolves the caller identity from a token issued by the identity provider.
type Auth struct {
	jwtService jwt_internal.JwtService
}

func NewAuth(jwtService jwt_internal.JwtService) *Auth {
	return &Auth{jwtService: jwtService}
}

// NeedAuth rejects requests without a valid token.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.extractUser(r)
			if err != nil {
				if err == errNoToken {
					http.Error(w, "Please sign-in", http.StatusUnauthorized)
					return
				}
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// OptionalAuth populates the caller if the token is valid, but doesn't require it
func (a *Auth) OptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, _ := a.extractUser(r); user != nil {
				r = r.WithContext(WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *Auth) extractUser(r *http.Request) (*domain.User, error) {
	// cookie for browser clients, Authorization header for API clients
	var tokenString string
	if accessCookie, err := r.Cookie(AccessTokenCookie); err == nil {
		tokenString = accessCookie.Value
	} else if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = token
	}
	if tokenString == "" {
		return nil, errNoToken
	}

	token, err := a.jwtService.DecodeToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := jwt_internal.UserFromClaims(token)
	if err != nil {
		logger.Log.Error("invalid jwt claims", "error", err)
		return nil, err
	}
	return user, nil
}

var errNoToken = errorString("no token")

type errorString string

func (e errorString) Error() string { return string(e) }

func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, UserClaimsKey, user)
}

func UserFromContext(ctx context.Context) *domain.User {
	user, ok := ctx.Value(UserClaimsKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(r *http.Request) *domain.User {
	return UserFromContext(r.Context())
}

// ContextCaller resolves the current caller from the request context.
type ContextCaller struct{}

func (ContextCaller) Caller(ctx context.Context) *domain.User {
	return UserFromContext(ctx)
}
