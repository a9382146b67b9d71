package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gowes/bike-rental-api/internal/model"
	"github.com/gowes/bike-rental-api/internal/repository"
)

// ServiceHandler serves the add-on service catalog endpoints.
type ServiceHandler struct {
	Services *repository.ServiceRepo
}

func NewServiceHandler(s *repository.ServiceRepo) *ServiceHandler {
	if s == nil {
		panic("nil repository passed to NewServiceHandler")
	}
	return &ServiceHandler{Services: s}
}

type serviceResp struct {
	ID         uint64 `json:"layanan_id"`
	Nama       string `json:"nama_layanan"`
	Deskripsi  string `json:"deskripsi"`
	BiayaDasar int64  `json:"biaya_dasar"`
	IsActive   bool   `json:"is_active"`
}

func toServiceResp(s model.Service) serviceResp {
	return serviceResp{ID: s.ID, Nama: s.Nama, Deskripsi: s.Deskripsi, BiayaDasar: s.BiayaDasar, IsActive: s.IsActive}
}

// List handles GET /api/layanan: the active catalog, unpaginated.
func (h *ServiceHandler) List(c echo.Context) error {
	items, err := h.Services.ListActive(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]serviceResp, 0, len(items))
	for _, s := range items {
		out = append(out, toServiceResp(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// Get handles GET /api/layanan/:id.
func (h *ServiceHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	s, err := h.Services.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toServiceResp(s))
}

type serviceReq struct {
	Nama       string `json:"nama_layanan"`
	Deskripsi  string `json:"deskripsi"`
	BiayaDasar *int64 `json:"biaya_dasar"`
	IsActive   *bool  `json:"is_active"`
}

// Create handles POST /api/layanan (admin).
func (h *ServiceHandler) Create(c echo.Context) error {
	var req serviceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Nama = strings.TrimSpace(req.Nama)
	if req.Nama == "" || req.BiayaDasar == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nama_layanan and biaya_dasar are required"})
	}
	if *req.BiayaDasar < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "biaya_dasar must not be negative"})
	}

	s := model.Service{
		Nama:       req.Nama,
		Deskripsi:  strings.TrimSpace(req.Deskripsi),
		BiayaDasar: *req.BiayaDasar,
		IsActive:   true,
	}
	if req.IsActive != nil {
		s.IsActive = *req.IsActive
	}
	if err := h.Services.Create(c.Request().Context(), &s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, toServiceResp(s))
}

// Update handles PUT /api/layanan/:id (admin). Absent fields keep their
// current values; is_active false deactivates without deleting.
func (h *ServiceHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	cur, err := h.Services.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	var req serviceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if s := strings.TrimSpace(req.Nama); s != "" {
		cur.Nama = s
	}
	if s := strings.TrimSpace(req.Deskripsi); s != "" {
		cur.Deskripsi = s
	}
	if req.BiayaDasar != nil {
		if *req.BiayaDasar < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "biaya_dasar must not be negative"})
		}
		cur.BiayaDasar = *req.BiayaDasar
	}
	if req.IsActive != nil {
		cur.IsActive = *req.IsActive
	}

	if err := h.Services.Update(c.Request().Context(), &cur); err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toServiceResp(cur))
}

// Delete handles DELETE /api/layanan/:id (admin). Services still
// attached to ongoing rentals cannot be removed.
func (h *ServiceHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Services.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrServiceNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "service has pending attachments"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "service deleted"})
}
