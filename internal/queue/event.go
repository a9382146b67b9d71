// Package queue defines message payloads exchanged over the message broker.
package queue

// RentalCompletedEvent is published when a rental is closed and priced.
// It carries enough for downstream consumers (receipts, analytics) to
// work without querying the primary database.
type RentalCompletedEvent struct {
	TransactionID   uint64 `json:"transaksi_id"`
	UserNRP         string `json:"user_nrp"`
	VehicleID       uint64 `json:"kendaraan_id"`
	PickupStationID uint64 `json:"stasiun_ambil_id"`
	ReturnStationID uint64 `json:"stasiun_kembali_id"`
	StartedAt       string `json:"waktu_mulai"`
	EndedAt         string `json:"waktu_selesai"`
	TotalBiaya      int64  `json:"total_biaya"`
	PaymentRef      string `json:"payment_gateway_ref"`
}
