package model

import "time"

// Transaction statuses. ONGOING is the only non-terminal state.
const (
	TxOngoing   = "ONGOING"
	TxCompleted = "COMPLETED"
	TxCancelled = "CANCELLED"
)

// TransactionService statuses.
const (
	TxServicePending   = "PENDING"
	TxServiceCompleted = "COMPLETED"
	TxServiceCancelled = "CANCELLED"
)

// Transaction records one rental lifecycle in the `transaksi` table,
// from pickup to return. Rows are financial records and are never
// physically deleted. TotalBiaya accrues while the rental is ongoing
// (attached services) and is finalized with the time-based fee when
// the rental ends.
//
// Fields:
//  ID               – primary key (transaksi_id).
//  UserNRP          – renter.
//  VehicleID        – rented vehicle.
//  PickupStationID  – station where the rental started.
//  ReturnStationID  – station where the bike came back (null until closed).
//  StartTime        – rental start (waktu_mulai).
//  EndTime          – rental end (waktu_selesai, null until closed).
//  PaymentTime      – when payment settled (waktu_pembayaran, nullable).
//  Status           – ONGOING, COMPLETED or CANCELLED.
//  PaymentRef       – external payment gateway reference.
//  TotalBiaya       – accrued/final cost in whole rupiah.
//  DepositDipegang  – deposit held for the rental.
type Transaction struct {
	ID              uint64     // transaksi.transaksi_id
	UserNRP         string     // transaksi.user_nrp
	VehicleID       uint64     // transaksi.kendaraan_id
	PickupStationID uint64     // transaksi.stasiun_ambil_id
	ReturnStationID *uint64    // transaksi.stasiun_kembali_id (nullable)
	StartTime       time.Time  // transaksi.waktu_mulai
	EndTime         *time.Time // transaksi.waktu_selesai (nullable)
	PaymentTime     *time.Time // transaksi.waktu_pembayaran (nullable)
	Status          string     // transaksi.status_transaksi
	PaymentRef      string     // transaksi.payment_gateway_ref
	TotalBiaya      int64      // transaksi.total_biaya
	DepositDipegang int64      // transaksi.deposit_dipegang
}

// TransactionService links an ongoing transaction to a catalog service
// in the `transaksi_layanan` table. BiayaAktual is the price actually
// charged, which may differ from the service's base price. Rows cascade
// on transaction deletion, though deletion is not a lifecycle event.
type TransactionService struct {
	ID            uint64    // transaksi_layanan.transaksi_layanan_id
	TransactionID uint64    // transaksi_layanan.transaksi_id
	ServiceID     uint64    // transaksi_layanan.layanan_id
	BiayaAktual   int64     // transaksi_layanan.biaya_aktual
	Status        string    // transaksi_layanan.status
	CreatedAt     time.Time // transaksi_layanan.created_at
}
