package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/krishi-ai/krishi-go/internal/models"
)

func (s *Server) handleMarket(c echo.Context) error {
	query := models.MarketQuery{
		State:     c.QueryParam("state"),
		District:  c.QueryParam("district"),
		Market:    c.QueryParam("market"),
		Commodity: c.QueryParam("commodity"),
		Variety:   c.QueryParam("variety"),
		Grade:     c.QueryParam("grade"),
		Language:  c.QueryParam("language"),
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		query.Limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil {
		query.Offset = v
	}

	records, err := s.market.Prices(c.Request().Context(), query)
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, records)
}

func (s *Server) handleWeather(c echo.Context) error {
	farmerID := c.QueryParam("farmer_id")
	if farmerID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "farmer_id is required")
	}

	ctx := c.Request().Context()
	farmer, err := s.farms.GetFarmer(ctx, farmerID)
	if err != nil {
		return s.httpError(c, err)
	}
	farms, err := s.farms.GetFarms(ctx, farmerID)
	if err != nil {
		return s.httpError(c, err)
	}
	if len(farms) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "no farms registered for farmer")
	}

	reports := make(map[string]models.FarmWeather, len(farms))
	for _, farm := range farms {
		report, err := s.weather.FarmForecast(ctx, farm.District, farm.State, farmer.Language)
		if err != nil {
			return s.httpError(c, err)
		}
		reports[farm.FarmName] = report
	}
	return c.JSON(http.StatusOK, reports)
}
