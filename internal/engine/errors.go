package engine

import "errors"

// Business-rule errors surfaced by the engine. Handlers translate them
// into HTTP statuses: conflicts map to 409, ownership to 403, missing
// references to 404 via the repository sentinels.
var (
	// ErrVehicleNotAvailable: the bike is not in AVAILABLE state. The
	// engine wraps it with the current status so the response can name
	// the actual state.
	ErrVehicleNotAvailable = errors.New("vehicle not available")

	// ErrVehicleNotAtStation: the bike is available but parked at a
	// different station than the requested pickup point.
	ErrVehicleNotAtStation = errors.New("vehicle is not at the specified station")

	// ErrActiveRental: the caller already has an ONGOING rental.
	ErrActiveRental = errors.New("user already has an active rental")

	// ErrRentalNotOngoing: the transaction exists but is no longer in
	// the ONGOING state (already returned or cancelled).
	ErrRentalNotOngoing = errors.New("rental is not ongoing")

	// ErrServiceInactive: the catalog entry exists but is disabled and
	// cannot be attached to new rentals.
	ErrServiceInactive = errors.New("service is not active")

	// ErrStationInactive: the station exists but is INACTIVE and cannot
	// serve pickups or returns.
	ErrStationInactive = errors.New("station is not active")
)
