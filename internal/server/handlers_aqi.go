package server

import (
	"net/http"
	"strconv"
	"time"

	"aircast/internal/aqi"
	"aircast/internal/cities"
	"aircast/internal/models"
	"aircast/internal/sentry"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleCurrentAQI(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		failValidation(c, "lat and lon query parameters are required")
		return
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		failValidation(c, "lat/lon out of range")
		return
	}

	sample, err := s.aqi.Fetch(c.Request.Context(), lat, lon)
	if err != nil {
		sentry.CaptureErrorWithContext(c, err, "aqi: current fetch failed")
		fail(c, err, "")
		return
	}
	ok(c, http.StatusOK, gin.H{"data": sample})
}

func (s *Server) handleBatchAQI(c *gin.Context) {
	var req struct {
		Coords []aqi.Coord `json:"coords"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid JSON body")
		return
	}
	if len(req.Coords) == 0 {
		failValidation(c, "coords cannot be empty")
		return
	}
	if len(req.Coords) > 50 {
		failValidation(c, "at most 50 coordinates per batch")
		return
	}

	items := s.aqi.FetchBatch(c.Request.Context(), req.Coords)
	ok(c, http.StatusOK, gin.H{"results": items})
}

func (s *Server) handleListHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	recs, err := s.store.ListHistory(limit)
	if err != nil {
		fail(c, err, "")
		return
	}
	ok(c, http.StatusOK, gin.H{"records": recs})
}

func (s *Server) handleHistoryByCity(c *gin.Context) {
	city := c.Query("city")
	if city == "" {
		failValidation(c, "city query parameter is required")
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	recs, err := s.store.HistoryByLocation(city, limit)
	if err != nil {
		fail(c, err, "")
		return
	}
	ok(c, http.StatusOK, gin.H{"records": recs})
}

func (s *Server) handleInsertHistory(c *gin.Context) {
	var req struct {
		LocationName string   `json:"location_name"`
		Lat          float64  `json:"lat"`
		Lon          float64  `json:"lon"`
		AQI          int      `json:"aqi"`
		CO           float64  `json:"co"`
		NO           float64  `json:"no"`
		NO2          float64  `json:"no2"`
		O3           float64  `json:"o3"`
		SO2          float64  `json:"so2"`
		PM25         float64  `json:"pm2_5"`
		PM10         float64  `json:"pm10"`
		NH3          float64  `json:"nh3"`
		Timestamp    *string  `json:"timestamp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid JSON body")
		return
	}
	if req.LocationName == "" {
		failValidation(c, "location_name is required")
		return
	}
	if req.AQI < 1 || req.AQI > 5 {
		failValidation(c, "aqi must be between 1 and 5")
		return
	}

	ts := time.Now()
	if req.Timestamp != nil {
		parsed, err := time.Parse(time.RFC3339, *req.Timestamp)
		if err != nil {
			failValidation(c, "timestamp must be RFC3339")
			return
		}
		ts = parsed
	}

	rec := &models.AQIRecord{
		LocationName: req.LocationName,
		Lat:          req.Lat,
		Lon:          req.Lon,
		AQI:          req.AQI,
		CO:           req.CO,
		NO:           req.NO,
		NO2:          req.NO2,
		O3:           req.O3,
		SO2:          req.SO2,
		PM25:         req.PM25,
		PM10:         req.PM10,
		NH3:          req.NH3,
		Timestamp:    ts,
	}
	if err := s.store.InsertAQIRecord(rec); err != nil {
		fail(c, err, "")
		return
	}
	ok(c, http.StatusCreated, gin.H{"record": rec})
}

func (s *Server) handleCities(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{"cities": cities.All()})
}
