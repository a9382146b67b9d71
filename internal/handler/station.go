package handler

import (
	"errors"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gowes/bike-rental-api/internal/model"
	"github.com/gowes/bike-rental-api/internal/repository"
)

// StationHandler serves the station directory endpoints.
type StationHandler struct {
	Stations    *repository.StationRepo
	VehicleRepo *repository.VehicleRepo
}

func NewStationHandler(s *repository.StationRepo, v *repository.VehicleRepo) *StationHandler {
	if s == nil || v == nil {
		panic("nil repository passed to NewStationHandler")
	}
	return &StationHandler{Stations: s, VehicleRepo: v}
}

type stationResp struct {
	ID        uint64   `json:"stasiun_id"`
	Nama      string   `json:"nama_stasiun"`
	Alamat    string   `json:"alamat"`
	Status    string   `json:"status"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func toStationResp(s model.Station) stationResp {
	return stationResp{
		ID:        s.ID,
		Nama:      s.Nama,
		Alamat:    s.Alamat,
		Status:    strings.ToUpper(s.Status),
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
	}
}

// List handles GET /api/stasiun with an optional ?status= filter.
func (h *StationHandler) List(c echo.Context) error {
	page, perPage := pageParams(c)
	items, total, err := h.Stations.List(c.Request().Context(), c.QueryParam("status"), page, perPage)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]stationResp, 0, len(items))
	for _, s := range items {
		out = append(out, toStationResp(s))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": out,
		"meta": pageMeta{Page: page, PerPage: perPage, Total: total},
	})
}

// Get handles GET /api/stasiun/:id and includes the count of bikes
// currently available there.
func (h *StationHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	s, err := h.Stations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrStationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "station not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	available, err := h.VehicleRepo.CountByStation(ctx, id, model.VehicleAvailable)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	resp := toStationResp(s)
	return c.JSON(http.StatusOK, echo.Map{
		"stasiun":         resp,
		"available_bikes": available,
	})
}

type stationReq struct {
	Nama      string   `json:"nama_stasiun"`
	Alamat    string   `json:"alamat"`
	Status    string   `json:"status"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func validStationStatus(s string) bool {
	switch strings.ToUpper(s) {
	case model.StationActive, model.StationInactive:
		return true
	}
	return false
}

// Create handles POST /api/stasiun (admin).
func (h *StationHandler) Create(c echo.Context) error {
	var req stationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Nama = strings.TrimSpace(req.Nama)
	req.Alamat = strings.TrimSpace(req.Alamat)
	if req.Nama == "" || req.Alamat == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nama_stasiun and alamat are required"})
	}
	if req.Status == "" {
		req.Status = model.StationActive
	}
	if !validStationStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	s := model.Station{
		Nama:      req.Nama,
		Alamat:    req.Alamat,
		Status:    strings.ToUpper(req.Status),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := h.Stations.Create(c.Request().Context(), &s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, toStationResp(s))
}

// Update handles PUT /api/stasiun/:id (admin). Absent fields keep their
// current values.
func (h *StationHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	cur, err := h.Stations.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrStationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "station not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	var req stationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if s := strings.TrimSpace(req.Nama); s != "" {
		cur.Nama = s
	}
	if s := strings.TrimSpace(req.Alamat); s != "" {
		cur.Alamat = s
	}
	if req.Status != "" {
		if !validStationStatus(req.Status) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		cur.Status = strings.ToUpper(req.Status)
	}
	if req.Latitude != nil {
		cur.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		cur.Longitude = req.Longitude
	}

	if err := h.Stations.Update(c.Request().Context(), &cur); err != nil {
		if errors.Is(err, repository.ErrStationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "station not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toStationResp(cur))
}

// Delete handles DELETE /api/stasiun/:id (admin). Stations still
// holding vehicles cannot be removed.
func (h *StationHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Stations.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrStationNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "station not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "station still holds vehicles"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "station deleted"})
}

// Vehicles handles GET /api/stasiun/:id/kendaraan: the bikes currently
// parked at a station.
func (h *StationHandler) Vehicles(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Stations.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrStationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "station not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	page, perPage := pageParams(c)
	items, total, err := h.VehicleRepo.List(ctx, repository.VehicleFilter{StationID: id, Status: c.QueryParam("status")}, page, perPage)
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

type nearbyStation struct {
	stationResp
	AvailableBikes int     `json:"available_bikes"`
	TotalBikes     int     `json:"total_bikes"`
	DistanceKM     float64 `json:"distance_km"`
}

// haversineKm returns the great-circle distance in kilometres between
// two lat/lng points.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// nearbyFrom filters station summaries to those with coordinates within
// radiusKm of the given point, nearest first. Stations without
// coordinates are skipped.
func nearbyFrom(sums []repository.StationSummary, lat, lng, radiusKm float64) []nearbyStation {
	out := make([]nearbyStation, 0)
	for _, s := range sums {
		if s.Station.Latitude == nil || s.Station.Longitude == nil {
			continue
		}
		d := haversineKm(lat, lng, *s.Station.Latitude, *s.Station.Longitude)
		if d > radiusKm {
			continue
		}
		out = append(out, nearbyStation{
			stationResp:    toStationResp(s.Station),
			AvailableBikes: s.AvailableBikes,
			TotalBikes:     s.TotalBikes,
			DistanceKM:     math.Round(d*100) / 100,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceKM < out[j].DistanceKM })
	return out
}

// Nearby handles GET /api/stasiun/nearby?latitude=&longitude=&radius=:
// active stations within the radius (km, default 5) with their bike
// counts, nearest first.
func (h *StationHandler) Nearby(c echo.Context) error {
	lat, errLat := strconv.ParseFloat(c.QueryParam("latitude"), 64)
	lng, errLng := strconv.ParseFloat(c.QueryParam("longitude"), 64)
	if errLat != nil || errLng != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "latitude and longitude are required"})
	}
	radius := 5.0
	if s := c.QueryParam("radius"); s != "" {
		r, err := strconv.ParseFloat(s, 64)
		if err != nil || r <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid radius"})
		}
		radius = r
	}
	sums, err := h.Stations.Summary(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"nearby_stations": nearbyFrom(sums, lat, lng, radius),
		"search_params": echo.Map{
			"latitude":  lat,
			"longitude": lng,
			"radius_km": radius,
		},
	})
}

// Summary handles GET /api/stasiun/summary (admin dashboard): per-station
// bike availability in one shot.
func (h *StationHandler) Summary(c echo.Context) error {
	sums, err := h.Stations.Summary(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	type row struct {
		stationResp
		AvailableBikes int `json:"available_bikes"`
		TotalBikes     int `json:"total_bikes"`
	}
	out := make([]row, 0, len(sums))
	for _, s := range sums {
		out = append(out, row{stationResp: toStationResp(s.Station), AvailableBikes: s.AvailableBikes, TotalBikes: s.TotalBikes})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}
