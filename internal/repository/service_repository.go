package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gowes/bike-rental-api/internal/model"
)

// ServiceRepo provides access to the `layanan` catalog table.
type ServiceRepo struct {
	db *sql.DB
}

func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{db: db} }

const serviceCols = "layanan_id, nama_layanan, deskripsi, biaya_dasar, is_active"

// GetByID fetches one catalog entry; ErrServiceNotFound when absent.
func (r *ServiceRepo) GetByID(ctx context.Context, id uint64) (model.Service, error) {
	var s model.Service
	err := r.db.QueryRowContext(ctx,
		"SELECT "+serviceCols+" FROM layanan WHERE layanan_id = ?", id).
		Scan(&s.ID, &s.Nama, &s.Deskripsi, &s.BiayaDasar, &s.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrServiceNotFound
	}
	return s, err
}

// GetByIDTx is GetByID inside an existing transaction.
func (r *ServiceRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Service, error) {
	var s model.Service
	err := tx.QueryRowContext(ctx,
		"SELECT "+serviceCols+" FROM layanan WHERE layanan_id = ?", id).
		Scan(&s.ID, &s.Nama, &s.Deskripsi, &s.BiayaDasar, &s.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrServiceNotFound
	}
	return s, err
}

// ListActive returns every active catalog entry. The catalog is small;
// no pagination.
func (r *ServiceRepo) ListActive(ctx context.Context) ([]model.Service, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+serviceCols+" FROM layanan WHERE is_active = 1 ORDER BY layanan_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Service, 0)
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.Nama, &s.Deskripsi, &s.BiayaDasar, &s.IsActive); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a catalog entry and populates the generated ID.
func (r *ServiceRepo) Create(ctx context.Context, s *model.Service) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO layanan (nama_layanan, deskripsi, biaya_dasar, is_active) VALUES (?,?,?,?)",
		s.Nama, s.Deskripsi, s.BiayaDasar, s.IsActive)
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

// Update overwrites mutable catalog fields.
func (r *ServiceRepo) Update(ctx context.Context, s *model.Service) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE layanan SET nama_layanan=?, deskripsi=?, biaya_dasar=?, is_active=? WHERE layanan_id=?",
		s.Nama, s.Deskripsi, s.BiayaDasar, s.IsActive, s.ID)
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

// Delete removes a catalog entry unless PENDING attachments still
// reference it. Guard and delete share one transaction.
func (r *ServiceRepo) Delete(ctx context.Context, id uint64) error {
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

	var pending int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transaksi_layanan WHERE layanan_id = ? AND status = ?",
		id, model.TxServicePending).Scan(&pending); err != nil {
		return err
	}
	if pending > 0 {
		return ErrConflict
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM layanan WHERE layanan_id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrServiceNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
