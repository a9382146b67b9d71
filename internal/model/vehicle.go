package model

import "time"

// Vehicle statuses. Stored uppercase; comparisons against legacy rows
// ('Tersedia', 'available') are done case-insensitively in the repository.
const (
	VehicleAvailable   = "AVAILABLE"
	VehicleRented      = "RENTED"
	VehicleMaintenance = "MAINTENANCE"
)

// Vehicle represents a rentable bike as stored in the `kendaraan` table.
// StationID is set while the bike is parked at a station and NULL while
// it is rented out; the rental engine is the only component that flips
// this pairing.
//
// Fields:
//  ID        – primary key (kendaraan_id).
//  Merk      – make/brand descriptor.
//  Tipe      – model/type descriptor.
//  Status    – AVAILABLE, RENTED or MAINTENANCE.
//  StationID – station currently holding the bike (nullable).
//  CreatedAt – timestamp of creation.
type Vehicle struct {
	ID        uint64    // kendaraan.kendaraan_id
	Merk      string    // kendaraan.merk
	Tipe      string    // kendaraan.tipe
	Status    string    // kendaraan.status
	StationID *uint64   // kendaraan.stasiun_id (nullable)
	CreatedAt time.Time // kendaraan.created_at
}

// VehicleReport mirrors the `log_laporan` table: a damage or condition
// report filed by a user against a vehicle, optionally resolved by staff
// with a maintenance date.
//
// Fields:
//  ID              – primary key (log_laporan_id).
//  VehicleID       – reported vehicle.
//  UserNRP         – reporter.
//  Laporan         – free-text report body.
//  Status          – REPORTED, IN_MAINTENANCE or RESOLVED.
//  ReportedAt      – when the report was filed.
//  MaintenanceDate – scheduled/performed maintenance (nullable).
type VehicleReport struct {
	ID              uint64     // log_laporan.log_laporan_id
	VehicleID       uint64     // log_laporan.kendaraan_id
	UserNRP         string     // log_laporan.nrp
	Laporan         string     // log_laporan.laporan
	Status          string     // log_laporan.status
	ReportedAt      time.Time  // log_laporan.tanggal_laporan
	MaintenanceDate *time.Time // log_laporan.tanggal_pemeliharaan (nullable)
}

// Vehicle report statuses.
const (
	ReportFiled         = "REPORTED"
	ReportInMaintenance = "IN_MAINTENANCE"
	ReportResolved      = "RESOLVED"
)
