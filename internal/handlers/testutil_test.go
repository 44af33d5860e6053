package handlers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"live-service/internal/models"
)

const testSigningSecret = "test-secret"

// anyCtx matches any context in mock expectations.
var anyCtx = mock.Anything

func signedToken(t *testing.T, subject string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSigningSecret))
	require.NoError(t, err)
	return token
}

func accountFixture(id string) *models.Account {
	return &models.Account{
		Identity: models.Identity{ID: id, Name: "Alice", Username: "alice92"},
		Email:    "alice@example.com",
	}
}
