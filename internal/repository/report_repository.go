package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/gowes/bike-rental-api/internal/model"
)

// ReportRepo provides access to the `log_laporan` table: damage and
// condition reports filed against vehicles.
type ReportRepo struct {
	db *sql.DB
}

func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

const reportCols = "log_laporan_id, kendaraan_id, nrp, laporan, status, tanggal_laporan, tanggal_pemeliharaan"

func scanReport(row interface{ Scan(...interface{}) error }) (model.VehicleReport, error) {
	var (
		rep   model.VehicleReport
		maint sql.NullTime
	)
	err := row.Scan(&rep.ID, &rep.VehicleID, &rep.UserNRP, &rep.Laporan, &rep.Status, &rep.ReportedAt, &maint)
	if err != nil {
		return rep, err
	}
	if maint.Valid {
		v := maint.Time
		rep.MaintenanceDate = &v
	}
	return rep, nil
}

// GetByID fetches one report; ErrReportNotFound when absent.
func (r *ReportRepo) GetByID(ctx context.Context, id uint64) (model.VehicleReport, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+reportCols+" FROM log_laporan WHERE log_laporan_id = ?", id)
	rep, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return rep, ErrReportNotFound
	}
	return rep, err
}

// Create files a new report and reads the row back for timestamps.
func (r *ReportRepo) Create(ctx context.Context, rep *model.VehicleReport) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO log_laporan (kendaraan_id, nrp, laporan, status) VALUES (?,?,?,?)",
		rep.VehicleID, rep.UserNRP, rep.Laporan, rep.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rep.ID = uint64(id)
	row := r.db.QueryRowContext(ctx,
		"SELECT "+reportCols+" FROM log_laporan WHERE log_laporan_id = ?", rep.ID)
	got, err := scanReport(row)
	if err != nil {
		return err
	}
	*rep = got
	return nil
}

// Update overwrites the mutable report fields.
func (r *ReportRepo) Update(ctx context.Context, rep *model.VehicleReport) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE log_laporan SET laporan=?, status=?, tanggal_pemeliharaan=? WHERE log_laporan_id=?",
		rep.Laporan, rep.Status, rep.MaintenanceDate, rep.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, rep.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a report row.
func (r *ReportRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM log_laporan WHERE log_laporan_id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReportNotFound
	}
	return nil
}

// ReportFilter narrows List results. Zero values mean no filter.
type ReportFilter struct {
	VehicleID uint64
	Status    string
}

// List returns a page of reports newest first plus the total count.
func (r *ReportRepo) List(ctx context.Context, f ReportFilter, page, perPage int) ([]model.VehicleReport, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if f.VehicleID != 0 {
		where = append(where, "kendaraan_id = ?")
		args = append(args, f.VehicleID)
	}
	if f.Status != "" {
		where = append(where, "UPPER(status) = UPPER(?)")
		args = append(args, f.Status)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM log_laporan WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, perPage, (page-1)*perPage)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+reportCols+" FROM log_laporan WHERE "+cond+" ORDER BY tanggal_laporan DESC, log_laporan_id DESC LIMIT ? OFFSET ?",
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.VehicleReport, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
