package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserRepoMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepo(db), mock
}

func TestGetByNRPMissingUser(t *testing.T) {
	repo, mock := newUserRepoMock(t)
	mock.ExpectQuery(`SELECT nrp,nama,email,password_hash,no_hp,role,created_at FROM user WHERE nrp=\?`).
		WithArgs("9999999999").
		WillReturnRows(sqlmock.NewRows([]string{"nrp", "nama", "email", "password_hash", "no_hp", "role", "created_at"}))

	_, err := repo.GetByNRP(context.Background(), "9999999999")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmailMissingUser(t *testing.T) {
	repo, mock := newUserRepoMock(t)
	mock.ExpectQuery(`SELECT nrp,nama,email,password_hash,no_hp,role,created_at FROM user WHERE email=\?`).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"nrp", "nama", "email", "password_hash", "no_hp", "role", "created_at"}))

	_, err := repo.GetByEmail(context.Background(), "Nobody@Example.com ")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
