package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gowes/bike-rental-api/internal/model"
)

// StationRepo provides access to the `stasiun` table.
type StationRepo struct {
	db *sql.DB
}

func NewStationRepo(db *sql.DB) *StationRepo { return &StationRepo{db: db} }

const stationCols = "stasiun_id, nama_stasiun, alamat, status, latitude, longitude"

func scanStation(row interface{ Scan(...interface{}) error }) (model.Station, error) {
	var (
		s        model.Station
		lat, lng sql.NullFloat64
	)
	err := row.Scan(&s.ID, &s.Nama, &s.Alamat, &s.Status, &lat, &lng)
	if err != nil {
		return s, err
	}
	if lat.Valid {
		v := lat.Float64
		s.Latitude = &v
	}
	if lng.Valid {
		v := lng.Float64
		s.Longitude = &v
	}
	return s, nil
}

// GetByID fetches one station; ErrStationNotFound when absent.
func (r *StationRepo) GetByID(ctx context.Context, id uint64) (model.Station, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+stationCols+" FROM stasiun WHERE stasiun_id = ?", id)
	s, err := scanStation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrStationNotFound
	}
	return s, err
}

// ExistsTx reports whether a station exists, inside a transaction. The
// engine uses it to validate return stations without leaving the
// transaction scope.
func (r *StationRepo) ExistsTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, string, error) {
	var status string
	err := tx.QueryRowContext(ctx,
		"SELECT status FROM stasiun WHERE stasiun_id = ?", id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}
	return true, status, nil
}

// List returns a page of stations and the total count, optionally
// filtered by status.
func (r *StationRepo) List(ctx context.Context, status string, page, perPage int) ([]model.Station, int, error) {
	cond := "1=1"
	args := []interface{}{}
	if status != "" {
		cond = "UPPER(status) = UPPER(?)"
		args = append(args, status)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM stasiun WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, perPage, (page-1)*perPage)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+stationCols+" FROM stasiun WHERE "+cond+" ORDER BY stasiun_id LIMIT ? OFFSET ?",
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Station, 0)
	for rows.Next() {
		s, err := scanStation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Create inserts a station and populates the generated ID.
func (r *StationRepo) Create(ctx context.Context, s *model.Station) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO stasiun (nama_stasiun, alamat, status, latitude, longitude) VALUES (?,?,?,?,?)",
		s.Nama, s.Alamat, s.Status, s.Latitude, s.Longitude)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// Update overwrites mutable station fields.
func (r *StationRepo) Update(ctx context.Context, s *model.Station) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE stasiun SET nama_stasiun=?, alamat=?, status=?, latitude=?, longitude=? WHERE stasiun_id=?",
		s.Nama, s.Alamat, s.Status, s.Latitude, s.Longitude, s.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, s.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a station unless vehicles still reference it; the
// guard and the delete run in one transaction so a vehicle cannot slip
// in between check and delete.
func (r *StationRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var bikes int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM kendaraan WHERE stasiun_id = ?", id).Scan(&bikes); err != nil {
		return err
	}
	if bikes > 0 {
		return ErrConflict
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM stasiun WHERE stasiun_id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStationNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// StationSummary aggregates per-station bike counts for the admin
// dashboard endpoint.
type StationSummary struct {
	Station        model.Station
	AvailableBikes int
	TotalBikes     int
}

// Summary returns counts for every active station in one query.
func (r *StationRepo) Summary(ctx context.Context) ([]StationSummary, error) {
	const q = `SELECT s.stasiun_id, s.nama_stasiun, s.alamat, s.status, s.latitude, s.longitude,
	                  COALESCE(SUM(CASE WHEN UPPER(k.status) = 'AVAILABLE' THEN 1 ELSE 0 END), 0),
	                  COUNT(k.kendaraan_id)
	           FROM stasiun s
	           LEFT JOIN kendaraan k ON k.stasiun_id = s.stasiun_id
	           WHERE UPPER(s.status) = 'ACTIVE'
	           GROUP BY s.stasiun_id
	           ORDER BY s.stasiun_id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]StationSummary, 0)
	for rows.Next() {
		var (
			sum      StationSummary
			lat, lng sql.NullFloat64
		)
		if err := rows.Scan(&sum.Station.ID, &sum.Station.Nama, &sum.Station.Alamat, &sum.Station.Status,
			&lat, &lng, &sum.AvailableBikes, &sum.TotalBikes); err != nil {
			return nil, err
		}
		if lat.Valid {
			v := lat.Float64
			sum.Station.Latitude = &v
		}
		if lng.Valid {
			v := lng.Float64
			sum.Station.Longitude = &v
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
