package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/gowes/bike-rental-api/internal/model"
)

// VehicleRepo provides access to the `kendaraan` table. The two *Tx
// methods implement the conditional status updates the rental engine
// relies on: a claim or a return only succeeds when the row is still in
// the expected pre-state, so two concurrent rentals of the same bike
// can never both pass.
type VehicleRepo struct {
	db *sql.DB
}

func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions
// spanning several repositories.
func (r *VehicleRepo) DB() *sql.DB { return r.db }

const vehicleCols = "kendaraan_id, merk, tipe, status, stasiun_id, created_at"

func scanVehicle(row interface{ Scan(...interface{}) error }) (model.Vehicle, error) {
	var (
		v         model.Vehicle
		stationID sql.NullInt64
	)
	err := row.Scan(&v.ID, &v.Merk, &v.Tipe, &v.Status, &stationID, &v.CreatedAt)
	if err != nil {
		return v, err
	}
	if stationID.Valid {
		id := uint64(stationID.Int64)
		v.StationID = &id
	}
	return v, nil
}

// GetByID fetches one vehicle; ErrVehicleNotFound when absent.
func (r *VehicleRepo) GetByID(ctx context.Context, id uint64) (model.Vehicle, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+vehicleCols+" FROM kendaraan WHERE kendaraan_id = ?", id)
	v, err := scanVehicle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return v, ErrVehicleNotFound
	}
	return v, err
}

// GetByIDTx is GetByID inside an existing transaction.
func (r *VehicleRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Vehicle, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+vehicleCols+" FROM kendaraan WHERE kendaraan_id = ?", id)
	v, err := scanVehicle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return v, ErrVehicleNotFound
	}
	return v, err
}

// VehicleListItem is a vehicle row joined with the name of the station
// holding it, for listing endpoints.
type VehicleListItem struct {
	model.Vehicle
	StationName *string
}

// VehicleFilter narrows List results. Zero values mean no filter.
type VehicleFilter struct {
	Status    string
	StationID uint64
}

// List returns a page of vehicles with their station names plus the
// total row count for the filter. Page is 1-based.
func (r *VehicleRepo) List(ctx context.Context, f VehicleFilter, page, perPage int) ([]VehicleListItem, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if f.Status != "" {
		where = append(where, "UPPER(k.status) = UPPER(?)")
		args = append(args, f.Status)
	}
	if f.StationID != 0 {
		where = append(where, "k.stasiun_id = ?")
		args = append(args, f.StationID)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM kendaraan k WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT k.kendaraan_id, k.merk, k.tipe, k.status, k.stasiun_id, k.created_at, s.nama_stasiun
	      FROM kendaraan k
	      LEFT JOIN stasiun s ON s.stasiun_id = k.stasiun_id
	      WHERE ` + cond + `
	      ORDER BY k.kendaraan_id
	      LIMIT ? OFFSET ?`
	args = append(args, perPage, (page-1)*perPage)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]VehicleListItem, 0)
	for rows.Next() {
		var (
			it          VehicleListItem
			stationID   sql.NullInt64
			stationName sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.Merk, &it.Tipe, &it.Status, &stationID, &it.CreatedAt, &stationName); err != nil {
			return nil, 0, err
		}
		if stationID.Valid {
			id := uint64(stationID.Int64)
			it.StationID = &id
		}
		if stationName.Valid {
			n := stationName.String
			it.StationName = &n
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Create inserts a vehicle and reads the row back to populate defaults.
func (r *VehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO kendaraan (merk, tipe, status, stasiun_id) VALUES (?,?,?,?)",
		v.Merk, v.Tipe, v.Status, v.StationID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	row := r.db.QueryRowContext(ctx,
		"SELECT "+vehicleCols+" FROM kendaraan WHERE kendaraan_id = ?", v.ID)
	got, err := scanVehicle(row)
	if err != nil {
		return err
	}
	*v = got
	return nil
}

// Update overwrites mutable fields; sql rows affected 0 with a prior
// existence check is fine because the update is idempotent.
func (r *VehicleRepo) Update(ctx context.Context, v *model.Vehicle) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE kendaraan SET merk=?, tipe=?, status=?, stasiun_id=? WHERE kendaraan_id=?",
		v.Merk, v.Tipe, v.Status, v.StationID, v.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish missing row from a no-op write.
		if _, err := r.GetByID(ctx, v.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a vehicle. Vehicles with rental history cannot be
// deleted (the ledger is permanent); that surfaces as ErrConflict.
func (r *VehicleRepo) Delete(ctx context.Context, id uint64) error {
	var refs int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transaksi WHERE kendaraan_id = ?", id).Scan(&refs); err != nil {
		return err
	}
	if refs > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM kendaraan WHERE kendaraan_id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVehicleNotFound
	}
	return nil
}

// ClaimForRentalTx atomically moves an AVAILABLE vehicle parked at the
// given station into RENTED with no station. The WHERE clause carries
// both preconditions, so of two concurrent claims exactly one sees a
// row affected; the loser gets false back and must translate that into
// the precise conflict reason itself.
func (r *VehicleRepo) ClaimForRentalTx(ctx context.Context, tx *sql.Tx, vehicleID, stationID uint64) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE kendaraan SET status = ?, stasiun_id = NULL
		 WHERE kendaraan_id = ? AND UPPER(status) = ? AND stasiun_id = ?`,
		model.VehicleRented, vehicleID, model.VehicleAvailable, stationID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ReturnToStationTx moves a RENTED vehicle back to AVAILABLE at the
// return station, conditionally on it still being RENTED.
func (r *VehicleRepo) ReturnToStationTx(ctx context.Context, tx *sql.Tx, vehicleID, stationID uint64) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE kendaraan SET status = ?, stasiun_id = ?
		 WHERE kendaraan_id = ? AND UPPER(status) = ?`,
		model.VehicleAvailable, stationID, vehicleID, model.VehicleRented)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// CountByStation returns how many vehicles reference a station,
// optionally restricted to one status.
func (r *VehicleRepo) CountByStation(ctx context.Context, stationID uint64, status string) (int, error) {
	q := "SELECT COUNT(*) FROM kendaraan WHERE stasiun_id = ?"
	args := []interface{}{stationID}
	if status != "" {
		q += " AND UPPER(status) = UPPER(?)"
		args = append(args, status)
	}
	var n int
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

// SetMaintenance flips a vehicle into or out of MAINTENANCE. Bikes
// currently rented cannot be flagged; that is a conflict.
func (r *VehicleRepo) SetMaintenance(ctx context.Context, id uint64, under bool) error {
	target := model.VehicleMaintenance
	cond := model.VehicleAvailable
	if !under {
		target = model.VehicleAvailable
		cond = model.VehicleMaintenance
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE kendaraan SET status = ? WHERE kendaraan_id = ? AND UPPER(status) = ?",
		target, id, cond)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}
