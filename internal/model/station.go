package model

// Station statuses.
const (
	StationActive   = "ACTIVE"
	StationInactive = "INACTIVE"
)

// Station represents a physical pickup/return point as stored in the
// `stasiun` table. A station owns vehicles by reference only; a vehicle
// moves between stations as it is rented and returned. A station cannot
// be deleted while any vehicle still references it.
type Station struct {
	ID        uint64   // stasiun.stasiun_id
	Nama      string   // stasiun.nama_stasiun
	Alamat    string   // stasiun.alamat
	Status    string   // stasiun.status
	Latitude  *float64 // stasiun.latitude (nullable)
	Longitude *float64 // stasiun.longitude (nullable)
}
