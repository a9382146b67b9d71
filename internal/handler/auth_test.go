package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gowes/bike-rental-api/internal/config"
	"github.com/gowes/bike-rental-api/internal/repository"
)

func newAuthHandlerMock(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	h := NewAuthHandler(config.Config{}, repository.NewUserRepo(db), repository.NewTokenRepo(db))
	return h, mock
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	h, mock := newAuthHandlerMock(t)
	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at=NOW\(\) WHERE user_nrp=\? AND revoked_at IS NULL`).
		WithArgs("5025201000").
		WillReturnResult(sqlmock.NewResult(0, 2))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout-all", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_nrp", "5025201000")

	require.NoError(t, h.LogoutAll(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogoutAllWithoutIdentity(t *testing.T) {
	h, _ := newAuthHandlerMock(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout-all", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.LogoutAll(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
