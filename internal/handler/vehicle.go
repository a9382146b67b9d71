package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gowes/bike-rental-api/internal/model"
	"github.com/gowes/bike-rental-api/internal/repository"
)

// VehicleHandler serves the bike inventory endpoints.
type VehicleHandler struct {
	Vehicles *repository.VehicleRepo
}

func NewVehicleHandler(v *repository.VehicleRepo) *VehicleHandler {
	if v == nil {
		panic("nil repository passed to NewVehicleHandler")
	}
	return &VehicleHandler{Vehicles: v}
}

type vehicleResp struct {
	ID          uint64  `json:"kendaraan_id"`
	Merk        string  `json:"merk"`
	Tipe        string  `json:"tipe"`
	Status      string  `json:"status"`
	StationID   *uint64 `json:"stasiun_id,omitempty"`
	StationName *string `json:"nama_stasiun,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

func toVehicleResp(v model.Vehicle, stationName *string) vehicleResp {
	return vehicleResp{
		ID:          v.ID,
		Merk:        v.Merk,
		Tipe:        v.Tipe,
		Status:      strings.ToUpper(v.Status),
		StationID:   v.StationID,
		StationName: stationName,
		CreatedAt:   v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// List handles GET /api/kendaraan with optional ?status= and
// ?stasiun_id= filters.
func (h *VehicleHandler) List(c echo.Context) error {
	page, perPage := pageParams(c)
	f := repository.VehicleFilter{Status: c.QueryParam("status")}
	if s := c.QueryParam("stasiun_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid stasiun_id"})
		}
		f.StationID = id
	}

	items, total, err := h.Vehicles.List(c.Request().Context(), f, page, perPage)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]vehicleResp, 0, len(items))
	for _, it := range items {
		out = append(out, toVehicleResp(it.Vehicle, it.StationName))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": out,
		"meta": pageMeta{Page: page, PerPage: perPage, Total: total},
	})
}

// Get handles GET /api/kendaraan/:id.
func (h *VehicleHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	v, err := h.Vehicles.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toVehicleResp(v, nil))
}

type vehicleReq struct {
	Merk      string  `json:"merk"`
	Tipe      string  `json:"tipe"`
	Status    string  `json:"status"`
	StationID *uint64 `json:"stasiun_id"`
}

func validVehicleStatus(s string) bool {
	switch strings.ToUpper(s) {
	case model.VehicleAvailable, model.VehicleRented, model.VehicleMaintenance:
		return true
	}
	return false
}

// Create handles POST /api/kendaraan (admin).
func (h *VehicleHandler) Create(c echo.Context) error {
	var req vehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Merk = strings.TrimSpace(req.Merk)
	req.Tipe = strings.TrimSpace(req.Tipe)
	if req.Merk == "" || req.Tipe == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "merk and tipe are required"})
	}
	if req.Status == "" {
		req.Status = model.VehicleAvailable
	}
	if !validVehicleStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	v := model.Vehicle{
		Merk:      req.Merk,
		Tipe:      req.Tipe,
		Status:    strings.ToUpper(req.Status),
		StationID: req.StationID,
	}
	if err := h.Vehicles.Create(c.Request().Context(), &v); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, toVehicleResp(v, nil))
}

// Update handles PUT /api/kendaraan/:id (admin). Absent fields keep
// their current values.
func (h *VehicleHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	cur, err := h.Vehicles.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	var req vehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if s := strings.TrimSpace(req.Merk); s != "" {
		cur.Merk = s
	}
	if s := strings.TrimSpace(req.Tipe); s != "" {
		cur.Tipe = s
	}
	if req.Status != "" {
		if !validVehicleStatus(req.Status) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		cur.Status = strings.ToUpper(req.Status)
	}
	if req.StationID != nil {
		cur.StationID = req.StationID
	}

	if err := h.Vehicles.Update(c.Request().Context(), &cur); err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toVehicleResp(cur, nil))
}

// Delete handles DELETE /api/kendaraan/:id (admin). Vehicles with
// rental history cannot be removed.
func (h *VehicleHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Vehicles.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrVehicleNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "vehicle has rental history"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "vehicle deleted"})
}

type maintenanceReq struct {
	Under bool `json:"under_maintenance"`
}

// SetMaintenance handles PATCH /api/kendaraan/:id/maintenance (admin):
// flips an AVAILABLE bike into MAINTENANCE or back.
func (h *VehicleHandler) SetMaintenance(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req maintenanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Vehicles.SetMaintenance(c.Request().Context(), id, req.Under); err != nil {
		switch {
		case errors.Is(err, repository.ErrVehicleNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "vehicle is not in a switchable state"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	v, err := h.Vehicles.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toVehicleResp(v, nil))
}
