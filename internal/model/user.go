package model

import "time"

// User represents an application user record as stored in the
// `user` table. The primary key is the registration number (NRP),
// a string assigned by the organization, not an auto-increment id.
// The json tags are omitted because these structs are used by the
// repository layer; handlers define their own response types.
//
// Fields:
//  NRP          – registration number, primary key.
//  Nama         – full name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  NoHP         – phone number (optional).
//  Role         – role name ("user" or "admin").
//  CreatedAt    – timestamp of creation.
type User struct {
	NRP          string    // user.nrp
	Nama         string    // user.nama
	Email        string    // user.email
	PasswordHash string    // user.password_hash
	NoHP         string    // user.no_hp
	Role         string    // user.role
	CreatedAt    time.Time // user.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and carries expiry and revocation
// metadata.  The plain token is never stored; only its SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserNRP   – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserNRP   string     // refresh_tokens.user_nrp
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
