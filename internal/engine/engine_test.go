package engine

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gowes/bike-rental-api/internal/model"
	"github.com/gowes/bike-rental-api/internal/repository"
)

func newTestEngine(t *testing.T) (*Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	e := New(db,
		repository.NewVehicleRepo(db),
		repository.NewStationRepo(db),
		repository.NewServiceRepo(db),
		repository.NewRentalRepo(db),
		Pricing{RatePerHour: 5000, MinimumFee: 5000},
	)
	return e, mock
}

var rentalColumns = []string{
	"transaksi_id", "user_nrp", "kendaraan_id", "stasiun_ambil_id", "stasiun_kembali_id",
	"waktu_mulai", "waktu_selesai", "waktu_pembayaran", "status_transaksi", "payment_gateway_ref",
	"total_biaya", "deposit_dipegang",
}

// The active-rental check must lock the user row before counting, so two
// simultaneous starts by the same rider serialize instead of both seeing
// a zero count.
func TestStartRentalLocksUserRowBeforeActiveCheck(t *testing.T) {
	e, mock := newTestEngine(t)
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	e.WithClock(func() time.Time { return start })

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT nrp FROM user WHERE nrp = \? FOR UPDATE`).
		WithArgs("5025201000").
		WillReturnRows(sqlmock.NewRows([]string{"nrp"}).AddRow("5025201000"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM transaksi`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(`SELECT status FROM stasiun`).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("ACTIVE"))
	mock.ExpectExec(`UPDATE kendaraan SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO transaksi`).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(`SELECT transaksi_id, user_nrp`).
		WillReturnRows(sqlmock.NewRows(rentalColumns).
			AddRow(7, "5025201000", 3, 2, nil, start, nil, nil, "ONGOING", "AB12CD34", 0, 25000))
	mock.ExpectCommit()

	got, err := e.StartRental(context.Background(), "5025201000", 3, 2, 25000)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), got.ID)
	assert.Equal(t, model.TxOngoing, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartRentalRejectsSecondActiveRental(t *testing.T) {
	e, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT nrp FROM user WHERE nrp = \? FOR UPDATE`).
		WithArgs("5025201000").
		WillReturnRows(sqlmock.NewRows([]string{"nrp"}).AddRow("5025201000"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM transaksi`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectRollback()

	_, err := e.StartRental(context.Background(), "5025201000", 3, 2, 25000)
	assert.ErrorIs(t, err, ErrActiveRental)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartRentalUnknownUser(t *testing.T) {
	e, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT nrp FROM user WHERE nrp = \? FOR UPDATE`).
		WithArgs("9999999999").
		WillReturnRows(sqlmock.NewRows([]string{"nrp"}))
	mock.ExpectRollback()

	_, err := e.StartRental(context.Background(), "9999999999", 3, 2, 25000)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
