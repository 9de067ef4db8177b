package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/krishi-ai/krishi-go/internal/db"
	"github.com/krishi-ai/krishi-go/internal/notify"
)

type farmerCreateRequest struct {
	Name     string `json:"name"`
	MobileNo string `json:"mobile_no"`
	Language string `json:"language"`
}

func (s *Server) handleFarmerCreate(c echo.Context) error {
	var req farmerCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.MobileNo == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and mobile_no are required")
	}

	farmer, err := s.farms.CreateFarmer(c.Request().Context(), req.Name, req.MobileNo, req.Language)
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusCreated, farmer)
}

type farmerUpdateRequest struct {
	FarmerID string  `json:"farmer_id"`
	Name     *string `json:"name"`
	MobileNo *string `json:"mobile_no"`
	Language *string `json:"language"`
	State    *string `json:"state"`
	District *string `json:"district"`
}

func (s *Server) handleFarmerUpdate(c echo.Context) error {
	var req farmerUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.FarmerID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "farmer_id is required")
	}

	farmer, err := s.farms.UpdateFarmer(c.Request().Context(), req.FarmerID, db.FarmerUpdate{
		Name:     req.Name,
		MobileNo: req.MobileNo,
		Language: req.Language,
		State:    req.State,
		District: req.District,
	})
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, farmer)
}

func (s *Server) handleFarmerGet(c echo.Context) error {
	farmer, err := s.farms.GetFarmer(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, farmer)
}

type cropCreateRequest struct {
	FarmerID          string  `json:"farmer_id"`
	FarmName          string  `json:"farm_name"`
	Size              float64 `json:"size"`
	District          string  `json:"district"`
	State             string  `json:"state"`
	CropName          string  `json:"crop_name"`
	CropVariety       string  `json:"crop_variety"`
	Description       string  `json:"description"`
	PlantedAt         string  `json:"planted_at"`
	PreviousCrop      string  `json:"previous_crop"`
	PreviousCropYield string  `json:"previous_crop_yield"`
	FCMToken          string  `json:"fcm_token"`
}

// handleCropCreate registers a crop. The farm record is created alongside
// the crop, the farm's district is registered as an alert location, and
// the farmer's device is subscribed to that district's topic when a token
// is supplied.
func (s *Server) handleCropCreate(c echo.Context) error {
	var req cropCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.FarmerID == "" || req.FarmName == "" || req.CropName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "farmer_id, farm_name and crop_name are required")
	}

	plantedAt, err := parseDate(req.PlantedAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "planted_at must be YYYY-MM-DD or RFC 3339")
	}

	ctx := c.Request().Context()

	farm, err := s.farms.CreateFarm(ctx, req.FarmerID, req.FarmName, req.Size, req.District, req.State)
	if err != nil {
		return s.httpError(c, err)
	}

	crop, err := s.farms.CreateCrop(ctx, farm.FarmID, req.CropName, req.CropVariety,
		req.Description, plantedAt, req.PreviousCrop, req.PreviousCropYield)
	if err != nil {
		return s.httpError(c, err)
	}

	topic := s.ensureLocation(c, req.District, req.State)
	if topic != "" && req.FCMToken != "" && s.subscriber != nil {
		if err := s.subscriber.Subscribe(ctx, req.FCMToken, topic); err != nil {
			// The crop is already saved; a failed subscription only costs
			// alert delivery.
			s.logger.Warn("topic subscription failed", "topic", topic, "error", err)
		}
	}

	return c.JSON(http.StatusCreated, map[string]any{"farm": farm, "crop": crop})
}

// ensureLocation registers the district for the daily alert sweep and
// returns its topic. Failures are logged, not surfaced: location tracking
// must not block crop registration.
func (s *Server) ensureLocation(c echo.Context, district, state string) string {
	if district == "" || state == "" {
		return ""
	}
	ctx := c.Request().Context()

	loc, err := s.farms.GetLocation(ctx, district, state)
	if err == nil {
		return loc.FirebaseTopic
	}
	if !errors.Is(err, db.ErrNotFound) {
		s.logger.Warn("location lookup failed", "district", district, "error", err)
		return ""
	}

	topic := notify.TopicForDistrict(district, state)
	if _, err := s.farms.CreateLocation(ctx, district, state, topic); err != nil {
		s.logger.Warn("location registration failed", "district", district, "error", err)
		return ""
	}
	return topic
}

func (s *Server) handleCropsGet(c echo.Context) error {
	crops, err := s.farms.GetCropsByFarmer(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, crops)
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
