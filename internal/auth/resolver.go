package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"live-service/internal/models"
	"live-service/internal/repositories"
)

// ErrInvalidToken is returned when a token is present but cannot be
// verified or does not resolve to a known account.
var ErrInvalidToken = errors.New("invalid token")

// Caller is an authenticated user as seen by the real-time layer.
type Caller struct {
	ID       string
	Name     string
	Username string
	Avatar   string
	Email    string
	Banned   bool
}

// Resolver turns request headers into a Caller. A request without
// credentials resolves to (nil, nil); a bad token is an error.
type Resolver struct {
	secret []byte
	users  repositories.UserRepository
}

func NewResolver(secret string, users repositories.UserRepository) *Resolver {
	return &Resolver{secret: []byte(secret), users: users}
}

// ResolveCaller validates the bearer token and loads the account row.
// Websocket clients cannot set headers, so a `token` query parameter is
// accepted as a fallback.
func (r *Resolver) ResolveCaller(ctx context.Context, req *http.Request) (*Caller, error) {
	token := bearerToken(req)
	if token == "" {
		return nil, nil
	}

	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return r.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	account, err := r.users.FindAccount(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrInvalidToken
	}
	return callerFromAccount(account), nil
}

func callerFromAccount(account *models.Account) *Caller {
	return &Caller{
		ID:       account.ID,
		Name:     account.Name,
		Username: account.Username,
		Avatar:   account.Avatar,
		Email:    account.Email,
		Banned:   account.Banned,
	}
}

func bearerToken(req *http.Request) string {
	header := req.Header.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	return req.URL.Query().Get("token")
}
