package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/golang-jwt/jwt/v5"
)

// HeaderDiscordID carries the requester in header mode.
const HeaderDiscordID = "X-Discord-ID"

var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrAuthNotConfigured  = errors.New("authentication is not configured")
)

type contextKey string

const requesterKey contextKey = "requester"

// Authenticator resolves the requesting Discord user. With a secret it
// verifies an HS256 bearer token and reads the subject. Without one it
// trusts the X-Discord-ID header only when header mode was enabled, and
// rejects every request otherwise.
type Authenticator struct {
	secret      []byte
	allowHeader bool
}

// NewAuthenticator creates an Authenticator. allowHeader only matters when
// secret is empty.
func NewAuthenticator(secret string, allowHeader bool) *Authenticator {
	a := &Authenticator{allowHeader: allowHeader}
	if secret != "" {
		a.secret = []byte(secret)
	}
	return a
}

// HeaderMode reports whether requesters are taken from X-Discord-ID.
func (a *Authenticator) HeaderMode() bool {
	return a.secret == nil && a.allowHeader
}

// Requester returns the requester for r.
func (a *Authenticator) Requester(r *http.Request) (sharedtypes.DiscordID, error) {
	if a.secret == nil {
		if !a.allowHeader {
			return "", ErrAuthNotConfigured
		}
		id := strings.TrimSpace(r.Header.Get(HeaderDiscordID))
		if id == "" {
			return "", ErrMissingCredentials
		}
		return sharedtypes.DiscordID(id), nil
	}

	header := r.Header.Get("Authorization")
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenString == "" {
		return "", ErrMissingCredentials
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return sharedtypes.DiscordID(claims.Subject), nil
}

// Middleware rejects requests without a valid requester and stores it in the
// request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := a.Requester(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requesterKey, id)))
	})
}

// RequesterFromContext returns the requester stored by Middleware.
func RequesterFromContext(ctx context.Context) (sharedtypes.DiscordID, bool) {
	id, ok := ctx.Value(requesterKey).(sharedtypes.DiscordID)
	return id, ok && id != ""
}
