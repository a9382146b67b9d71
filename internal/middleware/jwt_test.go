package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gowes/bike-rental-api/internal/utils"
)

func runProtected(t *testing.T, secret, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured echo.Context
	h := JWTAuth(secret)(func(c echo.Context) error {
		captured = c
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, captured
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	const secret = "s3cret"
	at, err := utils.NewAccessToken(secret, "5025201000", "user", 15)
	require.NoError(t, err)

	rec, c := runProtected(t, secret, "Bearer "+at.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, c)
	assert.Equal(t, "5025201000", c.Get("user_nrp"))
	assert.Equal(t, "user", c.Get("role"))
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	rec, c := runProtected(t, "s3cret", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, c)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("other-secret", "123", "user", 15)
	require.NoError(t, err)

	rec, c := runProtected(t, "s3cret", "Bearer "+at.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, c)
}

func TestJWTAuthRejectsGarbage(t *testing.T) {
	rec, c := runProtected(t, "s3cret", "Bearer not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, c)
}
