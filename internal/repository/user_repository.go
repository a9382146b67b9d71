package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/gowes/bike-rental-api/internal/model"
	"github.com/gowes/bike-rental-api/internal/utils"
)

// UserRepo provides access to the `user` table. Users are keyed by
// their registration number (NRP) rather than an auto-increment id.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var (
	ErrNRPExists   = errors.New("nrp already exists")
	ErrEmailExists = errors.New("email already exists")
)

// Create inserts a user. The password is hashed with bcrypt before
// storage. Duplicate NRP or email map to their sentinel errors by
// checking which unique key the MySQL 1062 message names.
func (r *UserRepo) Create(ctx context.Context, nrp, nama, email, password, noHP, role string, cost int) error {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO user (nrp, nama, email, password_hash, no_hp, role) VALUES (?,?,?,?,?,?)",
		nrp, nama, email, hash, noHP, role)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "1062") {
			if strings.Contains(msg, "email") {
				return ErrEmailExists
			}
			return ErrNRPExists
		}
		return err
	}
	return nil
}

// GetByNRP fetches a user by registration number; ErrUserNotFound when
// absent.
func (r *UserRepo) GetByNRP(ctx context.Context, nrp string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT nrp,nama,email,password_hash,no_hp,role,created_at FROM user WHERE nrp=? LIMIT 1",
		nrp).Scan(&u.NRP, &u.Nama, &u.Email, &u.PasswordHash, &u.NoHP, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// GetByEmail fetches a user by normalized email; ErrUserNotFound when
// absent.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT nrp,nama,email,password_hash,no_hp,role,created_at FROM user WHERE email=? LIMIT 1",
		email).Scan(&u.NRP, &u.Nama, &u.Email, &u.PasswordHash, &u.NoHP, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}
