package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/gowes/bike-rental-api/internal/model"
)

// RentalRepo is the rental ledger: it persists transactions and their
// attached services. Rows are financial records and are never deleted.
// Mutating methods that take part in the rental state machine come in
// *Tx form and are conditional on the expected pre-state, so the engine
// can compose them into all-or-nothing steps.
type RentalRepo struct {
	db *sql.DB
}

func NewRentalRepo(db *sql.DB) *RentalRepo { return &RentalRepo{db: db} }

// DB exposes the underlying handle for transaction scoping.
func (r *RentalRepo) DB() *sql.DB { return r.db }

const rentalCols = `transaksi_id, user_nrp, kendaraan_id, stasiun_ambil_id, stasiun_kembali_id,
	waktu_mulai, waktu_selesai, waktu_pembayaran, status_transaksi, payment_gateway_ref,
	total_biaya, deposit_dipegang`

func scanRental(row interface{ Scan(...interface{}) error }) (model.Transaction, error) {
	var (
		t             model.Transaction
		returnStation sql.NullInt64
		endTime       sql.NullTime
		paymentTime   sql.NullTime
		paymentRef    sql.NullString
	)
	err := row.Scan(&t.ID, &t.UserNRP, &t.VehicleID, &t.PickupStationID, &returnStation,
		&t.StartTime, &endTime, &paymentTime, &t.Status, &paymentRef,
		&t.TotalBiaya, &t.DepositDipegang)
	if err != nil {
		return t, err
	}
	if returnStation.Valid {
		id := uint64(returnStation.Int64)
		t.ReturnStationID = &id
	}
	if endTime.Valid {
		v := endTime.Time
		t.EndTime = &v
	}
	if paymentTime.Valid {
		v := paymentTime.Time
		t.PaymentTime = &v
	}
	if paymentRef.Valid {
		t.PaymentRef = paymentRef.String
	}
	return t, nil
}

// CreateTx inserts a new ONGOING transaction within the given SQL
// transaction and reads the row back to populate defaults. The caller
// commits or rolls back.
func (r *RentalRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Transaction) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO transaksi (user_nrp, kendaraan_id, stasiun_ambil_id, waktu_mulai,
		 status_transaksi, payment_gateway_ref, total_biaya, deposit_dipegang)
		 VALUES (?,?,?,?,?,?,?,?)`,
		t.UserNRP, t.VehicleID, t.PickupStationID, t.StartTime,
		t.Status, t.PaymentRef, t.TotalBiaya, t.DepositDipegang)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	row := tx.QueryRowContext(ctx,
		"SELECT "+rentalCols+" FROM transaksi WHERE transaksi_id = ?", t.ID)
	got, err := scanRental(row)
	if err != nil {
		return err
	}
	*t = got
	return nil
}

// GetByID fetches one transaction; ErrRentalNotFound when absent.
func (r *RentalRepo) GetByID(ctx context.Context, id uint64) (model.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+rentalCols+" FROM transaksi WHERE transaksi_id = ?", id)
	t, err := scanRental(row)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrRentalNotFound
	}
	return t, err
}

// GetByIDTx locks and returns a transaction row inside a SQL
// transaction. FOR UPDATE serializes concurrent attach/return calls on
// the same rental.
func (r *RentalRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Transaction, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+rentalCols+" FROM transaksi WHERE transaksi_id = ? FOR UPDATE", id)
	t, err := scanRental(row)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrRentalNotFound
	}
	return t, err
}

// ActiveByUser returns the caller's ONGOING transaction, or
// ErrRentalNotFound when there is none.
func (r *RentalRepo) ActiveByUser(ctx context.Context, nrp string) (model.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+rentalCols+" FROM transaksi WHERE user_nrp = ? AND status_transaksi = ? LIMIT 1",
		nrp, model.TxOngoing)
	t, err := scanRental(row)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrRentalNotFound
	}
	return t, err
}

// HasActiveByUserTx reports whether the user already has an ONGOING
// transaction, inside a SQL transaction. The user row is locked first:
// the count alone is a non-locking snapshot read, so two concurrent
// starts by the same user could both see zero. With the row lock the
// second starter waits on the first and then observes its insert.
func (r *RentalRepo) HasActiveByUserTx(ctx context.Context, tx *sql.Tx, nrp string) (bool, error) {
	var locked string
	err := tx.QueryRowContext(ctx,
		"SELECT nrp FROM user WHERE nrp = ? FOR UPDATE", nrp).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrUserNotFound
	}
	if err != nil {
		return false, err
	}
	var n int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transaksi WHERE user_nrp = ? AND status_transaksi = ?",
		nrp, model.TxOngoing).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AttachServiceTx inserts a transaksi_layanan row and bumps the parent
// transaction's accrued total in one conditional step: the UPDATE only
// lands while the transaction is still ONGOING, so an attach racing a
// return cannot charge a closed rental. Returns false when the parent
// was no longer ONGOING.
func (r *RentalRepo) AttachServiceTx(ctx context.Context, tx *sql.Tx, rec *model.TransactionService) (bool, error) {
	res, err := tx.ExecContext(ctx,
		"UPDATE transaksi SET total_biaya = total_biaya + ? WHERE transaksi_id = ? AND status_transaksi = ?",
		rec.BiayaAktual, rec.TransactionID, model.TxOngoing)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}
	ins, err := tx.ExecContext(ctx,
		"INSERT INTO transaksi_layanan (transaksi_id, layanan_id, biaya_aktual, status) VALUES (?,?,?,?)",
		rec.TransactionID, rec.ServiceID, rec.BiayaAktual, rec.Status)
	if err != nil {
		return false, err
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return false, err
	}
	rec.ID = uint64(id)
	return true, nil
}

// SumServiceCostTx totals the non-cancelled attachments of a
// transaction inside a SQL transaction.
func (r *RentalRepo) SumServiceCostTx(ctx context.Context, tx *sql.Tx, transactionID uint64) (int64, error) {
	var sum int64
	err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(biaya_aktual), 0) FROM transaksi_layanan WHERE transaksi_id = ? AND status <> ?",
		transactionID, model.TxServiceCancelled).Scan(&sum)
	return sum, err
}

// CompleteTx closes an ONGOING transaction: return station, end time,
// final total, COMPLETED status. Conditional on the row still being
// ONGOING; false means another call got there first.
func (r *RentalRepo) CompleteTx(ctx context.Context, tx *sql.Tx, id, returnStationID uint64, endTime time.Time, total int64) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE transaksi SET stasiun_kembali_id = ?, waktu_selesai = ?, total_biaya = ?, status_transaksi = ?
		 WHERE transaksi_id = ? AND status_transaksi = ?`,
		returnStationID, endTime, total, model.TxCompleted, id, model.TxOngoing)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// CancelTx moves an ONGOING transaction to CANCELLED.
func (r *RentalRepo) CancelTx(ctx context.Context, tx *sql.Tx, id uint64, endTime time.Time) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE transaksi SET waktu_selesai = ?, status_transaksi = ?
		 WHERE transaksi_id = ? AND status_transaksi = ?`,
		endTime, model.TxCancelled, id, model.TxOngoing)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SetServicesStatusTx moves every PENDING attachment of a transaction
// to the given terminal status (COMPLETED on return, CANCELLED on
// cancel).
func (r *RentalRepo) SetServicesStatusTx(ctx context.Context, tx *sql.Tx, transactionID uint64, status string) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE transaksi_layanan SET status = ? WHERE transaksi_id = ? AND status = ?",
		status, transactionID, model.TxServicePending)
	return err
}

// MarkPaid stamps the payment time once the gateway confirms.
func (r *RentalRepo) MarkPaid(ctx context.Context, id uint64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE transaksi SET waktu_pembayaran = ? WHERE transaksi_id = ? AND waktu_pembayaran IS NULL",
		at, id)
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

// AttachedService is a transaksi_layanan row joined with its catalog
// name, for rental detail responses.
type AttachedService struct {
	ID          uint64 `json:"transaksi_layanan_id"`
	ServiceID   uint64 `json:"layanan_id"`
	ServiceName string `json:"nama_layanan"`
	BiayaAktual int64  `json:"biaya_aktual"`
	Status      string `json:"status"`
}

// RentalDetail is a ledger row joined with vehicle and station names
// plus its attached services, as returned by listing endpoints.
type RentalDetail struct {
	ID                uint64            `json:"transaksi_id"`
	UserNRP           string            `json:"user_nrp"`
	VehicleID         uint64            `json:"kendaraan_id"`
	VehicleMerk       string            `json:"merk"`
	VehicleTipe       string            `json:"tipe"`
	PickupStationID   uint64            `json:"stasiun_ambil_id"`
	PickupStationName string            `json:"stasiun_ambil_nama"`
	ReturnStationID   *uint64           `json:"stasiun_kembali_id,omitempty"`
	ReturnStationName *string           `json:"stasiun_kembali_nama,omitempty"`
	StartTime         string            `json:"waktu_mulai"`
	EndTime           *string           `json:"waktu_selesai,omitempty"`
	Status            string            `json:"status_transaksi"`
	PaymentRef        string            `json:"payment_gateway_ref"`
	TotalBiaya        int64             `json:"total_biaya"`
	DepositDipegang   int64             `json:"deposit_dipegang"`
	Services          []AttachedService `json:"layanan"`
}

// RentalFilter narrows admin listings. Zero values mean no filter.
type RentalFilter struct {
	Status  string
	UserNRP string
}

const rentalDetailQuery = `SELECT t.transaksi_id, t.user_nrp, t.kendaraan_id, k.merk, k.tipe,
	       t.stasiun_ambil_id, sa.nama_stasiun, t.stasiun_kembali_id, sk.nama_stasiun,
	       t.waktu_mulai, t.waktu_selesai, t.status_transaksi, t.payment_gateway_ref,
	       t.total_biaya, t.deposit_dipegang
	FROM transaksi t
	JOIN kendaraan k ON k.kendaraan_id = t.kendaraan_id
	JOIN stasiun sa ON sa.stasiun_id = t.stasiun_ambil_id
	LEFT JOIN stasiun sk ON sk.stasiun_id = t.stasiun_kembali_id`

func scanRentalDetail(rows *sql.Rows) (RentalDetail, error) {
	var (
		d          RentalDetail
		returnID   sql.NullInt64
		returnName sql.NullString
		start      time.Time
		end        sql.NullTime
		payRef     sql.NullString
	)
	if err := rows.Scan(&d.ID, &d.UserNRP, &d.VehicleID, &d.VehicleMerk, &d.VehicleTipe,
		&d.PickupStationID, &d.PickupStationName, &returnID, &returnName,
		&start, &end, &d.Status, &payRef, &d.TotalBiaya, &d.DepositDipegang); err != nil {
		return d, err
	}
	if returnID.Valid {
		id := uint64(returnID.Int64)
		d.ReturnStationID = &id
	}
	if returnName.Valid {
		n := returnName.String
		d.ReturnStationName = &n
	}
	d.StartTime = start.UTC().Format(time.RFC3339)
	if end.Valid {
		iso := end.Time.UTC().Format(time.RFC3339)
		d.EndTime = &iso
	}
	if payRef.Valid {
		d.PaymentRef = payRef.String
	}
	d.Services = []AttachedService{}
	return d, nil
}

// List returns a page of rental details plus the total row count for
// the filter, newest first. Attached services for the whole page are
// loaded in a single IN-clause query.
func (r *RentalRepo) List(ctx context.Context, f RentalFilter, page, perPage int) ([]RentalDetail, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if f.Status != "" {
		where = append(where, "t.status_transaksi = UPPER(?)")
		args = append(args, f.Status)
	}
	if f.UserNRP != "" {
		where = append(where, "t.user_nrp = ?")
		args = append(args, f.UserNRP)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transaksi t WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := rentalDetailQuery + " WHERE " + cond + " ORDER BY t.waktu_mulai DESC, t.transaksi_id DESC LIMIT ? OFFSET ?"
	args = append(args, perPage, (page-1)*perPage)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	details := make([]RentalDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		d, err := scanRentalDetail(rows)
		if err != nil {
			return nil, 0, err
		}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(details) == 0 {
		return details, total, nil
	}

	// Batch-load services for the page
	ids := make([]interface{}, 0, len(details))
	placeholders := make([]string, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
		placeholders = append(placeholders, "?")
	}
	svcQ := `SELECT tl.transaksi_id, tl.transaksi_layanan_id, tl.layanan_id, l.nama_layanan, tl.biaya_aktual, tl.status
	         FROM transaksi_layanan tl
	         JOIN layanan l ON l.layanan_id = tl.layanan_id
	         WHERE tl.transaksi_id IN (` + strings.Join(placeholders, ",") + `)
	         ORDER BY tl.transaksi_id, tl.transaksi_layanan_id`
	srows, err := r.db.QueryContext(ctx, svcQ, ids...)
	if err != nil {
		return nil, 0, err
	}
	defer srows.Close()
	for srows.Next() {
		var (
			txID uint64
			svc  AttachedService
		)
		if err := srows.Scan(&txID, &svc.ID, &svc.ServiceID, &svc.ServiceName, &svc.BiayaAktual, &svc.Status); err != nil {
			return nil, 0, err
		}
		idx, ok := index[txID]
		if !ok {
			continue
		}
		details[idx].Services = append(details[idx].Services, svc)
	}
	if err := srows.Err(); err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// GetDetail loads a single rental with its joined names and services.
// ErrRentalNotFound when the id does not exist.
func (r *RentalRepo) GetDetail(ctx context.Context, id uint64) (*RentalDetail, error) {
	rows, err := r.db.QueryContext(ctx, rentalDetailQuery+" WHERE t.transaksi_id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrRentalNotFound
	}
	d, err := scanRentalDetail(rows)
	if err != nil {
		return nil, err
	}

	srows, err := r.db.QueryContext(ctx,
		`SELECT tl.transaksi_layanan_id, tl.layanan_id, l.nama_layanan, tl.biaya_aktual, tl.status
		 FROM transaksi_layanan tl
		 JOIN layanan l ON l.layanan_id = tl.layanan_id
		 WHERE tl.transaksi_id = ?
		 ORDER BY tl.transaksi_layanan_id`, id)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var svc AttachedService
		if err := srows.Scan(&svc.ID, &svc.ServiceID, &svc.ServiceName, &svc.BiayaAktual, &svc.Status); err != nil {
			return nil, err
		}
		d.Services = append(d.Services, svc)
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}
	return &d, nil
}
