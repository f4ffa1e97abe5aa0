package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"canedu/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	tokens map[string]*models.UserFromAuth
}

func (v fakeVerifier) Validate(token string) (*models.UserFromAuth, error) {
	user, ok := v.tokens[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return user, nil
}

func runAuthn(t *testing.T, header string) (*httptest.ResponseRecorder, *models.UserFromAuth, bool) {
	t.Helper()

	verifier := fakeVerifier{tokens: map[string]*models.UserFromAuth{
		"good": {ID: "6f1c2a8e-52f1-4c3e-9a55-0d6a8c1f2b7d", Email: "kid@example.com"},
	}}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var (
		seen   *models.UserFromAuth
		called bool
	)
	next := func(c echo.Context) error {
		called = true
		seen, _ = AuthUser(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	}

	require.NoError(t, Authn(verifier)(next)(c))
	if !called {
		return rec, nil, false
	}
	return rec, seen, true
}

func TestAuthn(t *testing.T) {
	t.Run("no header passes through anonymously", func(t *testing.T) {
		rec, user, called := runAuthn(t, "")
		assert.True(t, called)
		assert.Nil(t, user)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("non bearer scheme is ignored", func(t *testing.T) {
		_, user, called := runAuthn(t, "Basic abc")
		assert.True(t, called)
		assert.Nil(t, user)
	})

	t.Run("valid token sets the user", func(t *testing.T) {
		_, user, called := runAuthn(t, "Bearer good")
		require.True(t, called)
		require.NotNil(t, user)
		assert.Equal(t, "kid@example.com", user.Email)
	})

	t.Run("scheme is case insensitive", func(t *testing.T) {
		_, user, called := runAuthn(t, "bearer good")
		require.True(t, called)
		assert.NotNil(t, user)
	})

	t.Run("bad token is rejected", func(t *testing.T) {
		rec, _, called := runAuthn(t, "Bearer nope")
		assert.False(t, called)
		assert.GreaterOrEqual(t, rec.Code, http.StatusBadRequest)
	})
}

func TestResolveValidUserWithoutSession(t *testing.T) {
	_, err := ResolveValidUser(context.Background(), do.New())
	assert.Error(t, err)
}

func TestHello(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1", nil), rec)

	require.NoError(t, Hello(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hello world")
}
