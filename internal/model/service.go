package model

// Service is a catalog entry in the `layanan` table: an optional paid
// add-on (helmet, child seat, insurance, ...) that can be attached to
// an ongoing rental. The catalog is administered by staff and has a
// lifecycle independent of any rental.
//
// Fields:
//  ID        – primary key (layanan_id).
//  Nama      – service name.
//  Deskripsi – description text.
//  BiayaDasar – base price in whole rupiah.
//  IsActive  – inactive services cannot be attached to new rentals.
type Service struct {
	ID         uint64 // layanan.layanan_id
	Nama       string // layanan.nama_layanan
	Deskripsi  string // layanan.deskripsi
	BiayaDasar int64  // layanan.biaya_dasar
	IsActive   bool   // layanan.is_active
}
