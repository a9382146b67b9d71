// Package repository defines error types shared across repositories.
// These sentinel values let handlers and the rental engine distinguish
// failure scenarios without string matching. ErrForbidden signals an
// ownership mismatch, while ErrConflict signals that an operation cannot
// proceed because of dependent or conflicting state (e.g. deleting a
// station that still holds vehicles).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource owned by somebody else. Handlers translate this into 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a mutation cannot be performed because
// of conflicting state, such as deleting a station that still owns
// vehicles or a service referenced by pending rental attachments.
// Handlers translate this into 409.
var ErrConflict = errors.New("conflict")

// Entity not-found sentinels. Each repository returns its own so the
// handlers can name the missing resource in the response.
var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrStationNotFound = errors.New("station not found")
	ErrServiceNotFound = errors.New("service not found")
	ErrRentalNotFound  = errors.New("rental not found")
	ErrReportNotFound  = errors.New("report not found")
	ErrUserNotFound    = errors.New("user not found")
)
