package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gowes/bike-rental-api/internal/engine"
	"github.com/gowes/bike-rental-api/internal/model"
	"github.com/gowes/bike-rental-api/internal/queue"
	"github.com/gowes/bike-rental-api/internal/repository"
	queuepublisher "github.com/gowes/bike-rental-api/internal/service"
)

// RentalHandler serves the rental lifecycle endpoints. All state
// changes go through the engine; the handler only translates HTTP to
// engine calls and engine errors back to statuses.
type RentalHandler struct {
	Engine  *engine.Engine
	Rentals *repository.RentalRepo
}

func NewRentalHandler(e *engine.Engine, r *repository.RentalRepo) *RentalHandler {
	if e == nil || r == nil {
		panic("nil dependency passed to NewRentalHandler")
	}
	return &RentalHandler{Engine: e, Rentals: r}
}

type txResp struct {
	ID              uint64  `json:"transaksi_id"`
	UserNRP         string  `json:"user_nrp"`
	VehicleID       uint64  `json:"kendaraan_id"`
	PickupStationID uint64  `json:"stasiun_ambil_id"`
	ReturnStationID *uint64 `json:"stasiun_kembali_id,omitempty"`
	StartTime       string  `json:"waktu_mulai"`
	EndTime         *string `json:"waktu_selesai,omitempty"`
	Status          string  `json:"status_transaksi"`
	PaymentRef      string  `json:"payment_gateway_ref"`
	TotalBiaya      int64   `json:"total_biaya"`
	DepositDipegang int64   `json:"deposit_dipegang"`
}

func toTxResp(t model.Transaction) txResp {
	out := txResp{
		ID:              t.ID,
		UserNRP:         t.UserNRP,
		VehicleID:       t.VehicleID,
		PickupStationID: t.PickupStationID,
		ReturnStationID: t.ReturnStationID,
		StartTime:       t.StartTime.UTC().Format(time.RFC3339),
		Status:          t.Status,
		PaymentRef:      t.PaymentRef,
		TotalBiaya:      t.TotalBiaya,
		DepositDipegang: t.DepositDipegang,
	}
	if t.EndTime != nil {
		iso := t.EndTime.UTC().Format(time.RFC3339)
		out.EndTime = &iso
	}
	return out
}

// rentalError maps engine and repository errors to HTTP responses.
func rentalError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrRentalNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "rental not found"})
	case errors.Is(err, repository.ErrVehicleNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
	case errors.Is(err, repository.ErrStationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "station not found"})
	case errors.Is(err, repository.ErrServiceNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
	case errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, engine.ErrActiveRental):
		return c.JSON(http.StatusConflict, echo.Map{"error": "user already has an ongoing rental"})
	case errors.Is(err, engine.ErrVehicleNotAvailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "vehicle is not available"})
	case errors.Is(err, engine.ErrVehicleNotAtStation):
		return c.JSON(http.StatusConflict, echo.Map{"error": "vehicle is not at the pickup station"})
	case errors.Is(err, engine.ErrStationInactive):
		return c.JSON(http.StatusConflict, echo.Map{"error": "station is inactive"})
	case errors.Is(err, engine.ErrRentalNotOngoing):
		return c.JSON(http.StatusConflict, echo.Map{"error": "rental is not ongoing"})
	case errors.Is(err, engine.ErrServiceInactive):
		return c.JSON(http.StatusConflict, echo.Map{"error": "service is inactive"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	}
	log.Printf("rental: internal error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

type rentReq struct {
	VehicleID       uint64 `json:"kendaraan_id"`
	PickupStationID uint64 `json:"stasiun_ambil_id"`
	Deposit         int64  `json:"deposit"`
}

// Rent handles POST /api/transaksi/sewa: start a rental for the caller.
func (h *RentalHandler) Rent(c echo.Context) error {
	nrp, err := getUserNRP(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req rentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.VehicleID == 0 || req.PickupStationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "kendaraan_id and stasiun_ambil_id are required"})
	}
	if req.Deposit < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "deposit must not be negative"})
	}

	t, err := h.Engine.StartRental(c.Request().Context(), nrp, req.VehicleID, req.PickupStationID, req.Deposit)
	if err != nil {
		return rentalError(c, err)
	}
	return c.JSON(http.StatusCreated, toTxResp(t))
}

type returnReq struct {
	ReturnStationID uint64 `json:"stasiun_kembali_id"`
}

// Return handles POST /api/transaksi/:id/kembali: close the caller's
// rental, price it, and emit the completion event.
func (h *RentalHandler) Return(c echo.Context) error {
	nrp, err := getUserNRP(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req returnReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ReturnStationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "stasiun_kembali_id is required"})
	}

	t, err := h.Engine.EndRental(c.Request().Context(), nrp, id, req.ReturnStationID)
	if err != nil {
		return rentalError(c, err)
	}

	// The rental is committed; publishing is fire-and-forget.
	go func(t model.Transaction) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		ev := queue.RentalCompletedEvent{
			TransactionID:   t.ID,
			UserNRP:         t.UserNRP,
			VehicleID:       t.VehicleID,
			PickupStationID: t.PickupStationID,
			StartedAt:       t.StartTime.UTC().Format(time.RFC3339),
			TotalBiaya:      t.TotalBiaya,
			PaymentRef:      t.PaymentRef,
		}
		if t.ReturnStationID != nil {
			ev.ReturnStationID = *t.ReturnStationID
		}
		if t.EndTime != nil {
			ev.EndedAt = t.EndTime.UTC().Format(time.RFC3339)
		}
		_ = queuepublisher.PublishRentalCompleted(ctx, ev)
	}(t)

	return c.JSON(http.StatusOK, toTxResp(t))
}

type attachReq struct {
	ServiceID   uint64 `json:"layanan_id"`
	BiayaAktual *int64 `json:"biaya_aktual"`
}

// AttachService handles POST /api/transaksi/:id/layanan: attach a
// catalog service to an ongoing rental. Only admins may override the
// catalog price.
func (h *RentalHandler) AttachService(c echo.Context) error {
	nrp, err := getUserNRP(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req attachReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ServiceID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "layanan_id is required"})
	}
	admin := isAdmin(c)
	override := req.BiayaAktual
	if override != nil && !admin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only admins may override the price"})
	}
	if override != nil && *override < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "biaya_aktual must not be negative"})
	}

	rec, newTotal, err := h.Engine.AttachService(c.Request().Context(), nrp, admin, id, req.ServiceID, override)
	if err != nil {
		return rentalError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"transaksi_layanan_id": rec.ID,
		"transaksi_id":         rec.TransactionID,
		"layanan_id":           rec.ServiceID,
		"biaya_aktual":         rec.BiayaAktual,
		"status":               rec.Status,
		"total_biaya":          newTotal,
	})
}

// Active handles GET /api/transaksi/aktif: the caller's ongoing rental,
// 404 when there is none.
func (h *RentalHandler) Active(c echo.Context) error {
	nrp, err := getUserNRP(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	t, ok, err := h.Engine.ActiveRental(c.Request().Context(), nrp)
	if err != nil {
		return rentalError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no ongoing rental"})
	}
	return c.JSON(http.StatusOK, toTxResp(t))
}

// ListMine handles GET /api/transaksi: the caller's rental history,
// newest first.
func (h *RentalHandler) ListMine(c echo.Context) error {
	nrp, err := getUserNRP(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page, perPage := pageParams(c)
	f := repository.RentalFilter{UserNRP: nrp, Status: c.QueryParam("status")}
	items, total, err := h.Rentals.List(c.Request().Context(), f, page, perPage)
	if err != nil {
		return rentalError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": pageMeta{Page: page, PerPage: perPage, Total: total},
	})
}

// ListAll handles GET /api/transaksi/semua (admin): every rental, with
// optional ?status= and ?user_nrp= filters.
func (h *RentalHandler) ListAll(c echo.Context) error {
	page, perPage := pageParams(c)
	f := repository.RentalFilter{
		Status:  c.QueryParam("status"),
		UserNRP: c.QueryParam("user_nrp"),
	}
	items, total, err := h.Rentals.List(c.Request().Context(), f, page, perPage)
	if err != nil {
		return rentalError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": pageMeta{Page: page, PerPage: perPage, Total: total},
	})
}

// Get handles GET /api/transaksi/:id: full rental detail with joined
// names and attached services. Owner or admin only.
func (h *RentalHandler) Get(c echo.Context) error {
	nrp, err := getUserNRP(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	d, err := h.Rentals.GetDetail(c.Request().Context(), id)
	if err != nil {
		return rentalError(c, err)
	}
	if d.UserNRP != nrp && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, d)
}

// Cancel handles POST /api/transaksi/:id/batal (admin): void an ongoing
// rental and put the bike back at its pickup station.
func (h *RentalHandler) Cancel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	t, err := h.Engine.CancelRental(c.Request().Context(), id)
	if err != nil {
		return rentalError(c, err)
	}
	return c.JSON(http.StatusOK, toTxResp(t))
}

// MarkPaid handles POST /api/transaksi/:id/bayar (admin): stamp the
// payment time after the gateway settles. Idempotence violations are
// conflicts.
func (h *RentalHandler) MarkPaid(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Rentals.MarkPaid(c.Request().Context(), id, time.Now().UTC()); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already paid"})
		}
		return rentalError(c, err)
	}
	t, err := h.Rentals.GetByID(c.Request().Context(), id)
	if err != nil {
		return rentalError(c, err)
	}
	return c.JSON(http.StatusOK, toTxResp(t))
}
