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

// ReportHandler serves the vehicle damage report endpoints. Riders file
// reports; staff move them through maintenance and resolution.
type ReportHandler struct {
	Reports  *repository.ReportRepo
	Vehicles *repository.VehicleRepo
}

func NewReportHandler(r *repository.ReportRepo, v *repository.VehicleRepo) *ReportHandler {
	if r == nil || v == nil {
		panic("nil repository passed to NewReportHandler")
	}
	return &ReportHandler{Reports: r, Vehicles: v}
}

type reportResp struct {
	ID              uint64  `json:"log_laporan_id"`
	VehicleID       uint64  `json:"kendaraan_id"`
	UserNRP         string  `json:"nrp"`
	Laporan         string  `json:"laporan"`
	Status          string  `json:"status"`
	ReportedAt      string  `json:"tanggal_laporan"`
	MaintenanceDate *string `json:"tanggal_pemeliharaan,omitempty"`
}

func toReportResp(r model.VehicleReport) reportResp {
	out := reportResp{
		ID:         r.ID,
		VehicleID:  r.VehicleID,
		UserNRP:    r.UserNRP,
		Laporan:    r.Laporan,
		Status:     r.Status,
		ReportedAt: r.ReportedAt.UTC().Format(time.RFC3339),
	}
	if r.MaintenanceDate != nil {
		iso := r.MaintenanceDate.UTC().Format(time.RFC3339)
		out.MaintenanceDate = &iso
	}
	return out
}

func validReportStatus(s string) bool {
	switch strings.ToUpper(s) {
	case model.ReportFiled, model.ReportInMaintenance, model.ReportResolved:
		return true
	}
	return false
}

// List handles GET /api/laporan (admin) with optional ?kendaraan_id=
// and ?status= filters.
func (h *ReportHandler) List(c echo.Context) error {
	page, perPage := pageParams(c)
	f := repository.ReportFilter{Status: c.QueryParam("status")}
	if s := c.QueryParam("kendaraan_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid kendaraan_id"})
		}
		f.VehicleID = id
	}
	items, total, err := h.Reports.List(c.Request().Context(), f, page, perPage)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]reportResp, 0, len(items))
	for _, r := range items {
		out = append(out, toReportResp(r))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": out,
		"meta": pageMeta{Page: page, PerPage: perPage, Total: total},
	})
}

// Get handles GET /api/laporan/:id. Reporters see their own reports;
// admins see all.
func (h *ReportHandler) Get(c echo.Context) error {
	nrp, err := getUserNRP(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	r, err := h.Reports.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if r.UserNRP != nrp && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, toReportResp(r))
}

type reportCreateReq struct {
	VehicleID uint64 `json:"kendaraan_id"`
	Laporan   string `json:"laporan"`
}

// Create handles POST /api/laporan: any authenticated user may file a
// damage report against an existing vehicle.
func (h *ReportHandler) Create(c echo.Context) error {
	nrp, err := getUserNRP(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req reportCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Laporan = strings.TrimSpace(req.Laporan)
	if req.VehicleID == 0 || req.Laporan == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "kendaraan_id and laporan are required"})
	}

	ctx := c.Request().Context()
	if _, err := h.Vehicles.GetByID(ctx, req.VehicleID); err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	rep := model.VehicleReport{
		VehicleID: req.VehicleID,
		UserNRP:   nrp,
		Laporan:   req.Laporan,
		Status:    model.ReportFiled,
	}
	if err := h.Reports.Create(ctx, &rep); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, toReportResp(rep))
}

type reportUpdateReq struct {
	Laporan         string  `json:"laporan"`
	Status          string  `json:"status"`
	MaintenanceDate *string `json:"tanggal_pemeliharaan"`
}

// Update handles PUT /api/laporan/:id (admin): move a report through
// the maintenance workflow and set the maintenance date.
func (h *ReportHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	cur, err := h.Reports.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	var req reportUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if s := strings.TrimSpace(req.Laporan); s != "" {
		cur.Laporan = s
	}
	if req.Status != "" {
		if !validReportStatus(req.Status) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		cur.Status = strings.ToUpper(req.Status)
	}
	if req.MaintenanceDate != nil {
		t, err := time.Parse(time.RFC3339, *req.MaintenanceDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tanggal_pemeliharaan"})
		}
		cur.MaintenanceDate = &t
	}

	if err := h.Reports.Update(c.Request().Context(), &cur); err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toReportResp(cur))
}

// Delete handles DELETE /api/laporan/:id (admin).
func (h *ReportHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Reports.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "report deleted"})
}
