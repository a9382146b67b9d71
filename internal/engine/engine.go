// Package engine implements the rental state machine: starting a
// rental, attaching paid services, ending a rental, and the
// administrative cancel path. Every mutating operation runs inside one
// SQL transaction whose vehicle writes are conditional on the expected
// pre-state, so the vehicle/station/transaction triple can never come
// apart under concurrent requests: of two simultaneous rentals of the
// same bike exactly one commits, and a crash mid-operation rolls the
// whole step back.
package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gowes/bike-rental-api/internal/model"
	"github.com/gowes/bike-rental-api/internal/repository"
)

// Engine coordinates the directory stores and the rental ledger. The
// now field is the clock; tests inject a fixed one.
type Engine struct {
	db       *sql.DB
	vehicles *repository.VehicleRepo
	stations *repository.StationRepo
	services *repository.ServiceRepo
	rentals  *repository.RentalRepo
	pricing  Pricing
	now      func() time.Time
}

// New constructs an Engine. All repositories must be non-nil.
func New(db *sql.DB, vehicles *repository.VehicleRepo, stations *repository.StationRepo,
	services *repository.ServiceRepo, rentals *repository.RentalRepo, pricing Pricing) *Engine {
	if db == nil || vehicles == nil || stations == nil || services == nil || rentals == nil {
		panic("nil dependency passed to engine.New")
	}
	return &Engine{
		db:       db,
		vehicles: vehicles,
		stations: stations,
		services: services,
		rentals:  rentals,
		pricing:  pricing,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the engine clock. Used by tests to simulate
// elapsed rental time.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// newPaymentRef builds the external payment gateway reference for a new
// transaction: the first 8 hex chars of a UUID, uppercased.
func newPaymentRef() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// StartRental opens a rental: one ONGOING transaction per user, vehicle
// claimed from AVAILABLE at the pickup station, all in a single SQL
// transaction. Returns the created ledger row.
func (e *Engine) StartRental(ctx context.Context, nrp string, vehicleID, pickupStationID uint64, deposit int64) (model.Transaction, error) {
	var out model.Transaction

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return out, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	active, err := e.rentals.HasActiveByUserTx(ctx, tx, nrp)
	if err != nil {
		return out, err
	}
	if active {
		return out, ErrActiveRental
	}

	exists, status, err := e.stations.ExistsTx(ctx, tx, pickupStationID)
	if err != nil {
		return out, err
	}
	if !exists {
		return out, repository.ErrStationNotFound
	}
	if !strings.EqualFold(status, model.StationActive) {
		return out, ErrStationInactive
	}

	claimed, err := e.vehicles.ClaimForRentalTx(ctx, tx, vehicleID, pickupStationID)
	if err != nil {
		return out, err
	}
	if !claimed {
		// Zero rows affected: find out which precondition failed so the
		// caller gets the precise reason, still inside the transaction.
		v, err := e.vehicles.GetByIDTx(ctx, tx, vehicleID)
		if err != nil {
			return out, err
		}
		if !strings.EqualFold(v.Status, model.VehicleAvailable) {
			return out, fmt.Errorf("%w: current status %s", ErrVehicleNotAvailable, v.Status)
		}
		return out, ErrVehicleNotAtStation
	}

	out = model.Transaction{
		UserNRP:         nrp,
		VehicleID:       vehicleID,
		PickupStationID: pickupStationID,
		StartTime:       e.now(),
		Status:          model.TxOngoing,
		PaymentRef:      newPaymentRef(),
		TotalBiaya:      0,
		DepositDipegang: deposit,
	}
	if err := e.rentals.CreateTx(ctx, tx, &out); err != nil {
		return model.Transaction{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Transaction{}, err
	}
	committed = true
	return out, nil
}

// AttachService attaches a catalog service to an ONGOING rental owned
// by the caller (admins may attach to any rental). actualCost overrides
// the catalog base price when non-nil. Returns the created attachment
// and the rental's new accrued total.
func (e *Engine) AttachService(ctx context.Context, nrp string, isAdmin bool, transactionID, serviceID uint64, actualCost *int64) (model.TransactionService, int64, error) {
	var rec model.TransactionService

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return rec, 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	t, err := e.rentals.GetByIDTx(ctx, tx, transactionID)
	if err != nil {
		return rec, 0, err
	}
	if t.UserNRP != nrp && !isAdmin {
		return rec, 0, repository.ErrForbidden
	}
	if t.Status != model.TxOngoing {
		return rec, 0, ErrRentalNotOngoing
	}

	svc, err := e.services.GetByIDTx(ctx, tx, serviceID)
	if err != nil {
		return rec, 0, err
	}
	if !svc.IsActive {
		return rec, 0, ErrServiceInactive
	}

	cost := svc.BiayaDasar
	if actualCost != nil {
		cost = *actualCost
	}
	rec = model.TransactionService{
		TransactionID: transactionID,
		ServiceID:     serviceID,
		BiayaAktual:   cost,
		Status:        model.TxServicePending,
	}
	ok, err := e.rentals.AttachServiceTx(ctx, tx, &rec)
	if err != nil {
		return model.TransactionService{}, 0, err
	}
	if !ok {
		// The row flipped out of ONGOING between the locked read and the
		// conditional update; should not happen under FOR UPDATE, but the
		// guard costs nothing.
		return model.TransactionService{}, 0, ErrRentalNotOngoing
	}

	if err := tx.Commit(); err != nil {
		return model.TransactionService{}, 0, err
	}
	committed = true
	return rec, t.TotalBiaya + cost, nil
}

// EndRental closes an ONGOING rental owned by the caller: the final
// cost is the time-based fee plus accrued service charges, the vehicle
// goes back to AVAILABLE at the return station, pending services are
// marked COMPLETED. All writes commit together or not at all.
func (e *Engine) EndRental(ctx context.Context, nrp string, transactionID, returnStationID uint64) (model.Transaction, error) {
	var out model.Transaction

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return out, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	t, err := e.rentals.GetByIDTx(ctx, tx, transactionID)
	if err != nil {
		return out, err
	}
	if t.UserNRP != nrp {
		return out, repository.ErrForbidden
	}
	if !CanTransition(t.Status, model.TxCompleted) || t.Status != model.TxOngoing {
		return out, ErrRentalNotOngoing
	}

	exists, status, err := e.stations.ExistsTx(ctx, tx, returnStationID)
	if err != nil {
		return out, err
	}
	if !exists {
		return out, repository.ErrStationNotFound
	}
	if !strings.EqualFold(status, model.StationActive) {
		return out, ErrStationInactive
	}

	endTime := e.now()
	serviceCost, err := e.rentals.SumServiceCostTx(ctx, tx, transactionID)
	if err != nil {
		return out, err
	}
	total := e.pricing.Total(endTime.Sub(t.StartTime), serviceCost)

	ok, err := e.rentals.CompleteTx(ctx, tx, transactionID, returnStationID, endTime, total)
	if err != nil {
		return out, err
	}
	if !ok {
		return out, ErrRentalNotOngoing
	}
	if err := e.rentals.SetServicesStatusTx(ctx, tx, transactionID, model.TxServiceCompleted); err != nil {
		return out, err
	}
	returned, err := e.vehicles.ReturnToStationTx(ctx, tx, t.VehicleID, returnStationID)
	if err != nil {
		return out, err
	}
	if !returned {
		// An ONGOING ledger row always pairs with a RENTED vehicle; if the
		// conditional return finds anything else the store is inconsistent
		// and the whole operation must roll back.
		return out, fmt.Errorf("vehicle %d not in RENTED state for ongoing rental %d", t.VehicleID, transactionID)
	}

	if err := tx.Commit(); err != nil {
		return out, err
	}
	committed = true

	out = t
	out.ReturnStationID = &returnStationID
	out.EndTime = &endTime
	out.Status = model.TxCompleted
	out.TotalBiaya = total
	return out, nil
}

// CancelRental is the administrative escape hatch: an ONGOING rental is
// voided, its pending services are cancelled, and the vehicle returns
// to its pickup station. No fee is charged.
func (e *Engine) CancelRental(ctx context.Context, transactionID uint64) (model.Transaction, error) {
	var out model.Transaction

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return out, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	t, err := e.rentals.GetByIDTx(ctx, tx, transactionID)
	if err != nil {
		return out, err
	}
	if !CanTransition(t.Status, model.TxCancelled) || t.Status != model.TxOngoing {
		return out, ErrRentalNotOngoing
	}

	endTime := e.now()
	ok, err := e.rentals.CancelTx(ctx, tx, transactionID, endTime)
	if err != nil {
		return out, err
	}
	if !ok {
		return out, ErrRentalNotOngoing
	}
	if err := e.rentals.SetServicesStatusTx(ctx, tx, transactionID, model.TxServiceCancelled); err != nil {
		return out, err
	}
	returned, err := e.vehicles.ReturnToStationTx(ctx, tx, t.VehicleID, t.PickupStationID)
	if err != nil {
		return out, err
	}
	if !returned {
		return out, fmt.Errorf("vehicle %d not in RENTED state for ongoing rental %d", t.VehicleID, transactionID)
	}

	if err := tx.Commit(); err != nil {
		return out, err
	}
	committed = true

	out = t
	out.EndTime = &endTime
	out.Status = model.TxCancelled
	return out, nil
}

// ActiveRental returns the caller's ONGOING rental, or ok=false when
// there is none.
func (e *Engine) ActiveRental(ctx context.Context, nrp string) (model.Transaction, bool, error) {
	t, err := e.rentals.ActiveByUser(ctx, nrp)
	if errors.Is(err, repository.ErrRentalNotFound) {
		return model.Transaction{}, false, nil
	}
	if err != nil {
		return model.Transaction{}, false, err
	}
	return t, true, nil
}
