package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"go.ngs.io/xch4-api/internal/domain"
	"go.ngs.io/xch4-api/internal/usecase"
)

// Handler handles HTTP requests for XCH4 grids.
type Handler struct {
	gridUC *usecase.GridUseCase
}

// NewHandler creates a new HTTP handler.
func NewHandler(gridUC *usecase.GridUseCase) *Handler {
	return &Handler{
		gridUC: gridUC,
	}
}

// GetGrid handles GET /v1/grid.
func (h *Handler) GetGrid(c *gin.Context) {
	req, err := parseGridRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.gridUC.Grid(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetTimeSeries handles GET /v1/timeseries.
func (h *Handler) GetTimeSeries(c *gin.Context) {
	req, err := parseGridRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.gridUC.Series(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetPoint handles GET /v1/point.
func (h *Handler) GetPoint(c *gin.Context) {
	req := usecase.PointRequest{Product: c.Query("product")}

	dateStr := c.Query("date")
	if dateStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date parameter is required"})
		return
	}
	date, err := domain.ParseDate(dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Date = date

	if req.Lat, err = requiredFloat(c, "lat"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Lon, err = requiredFloat(c, "lon"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.gridUC.Point(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetProducts handles GET /v1/products.
func (h *Handler) GetProducts(c *gin.Context) {
	products, err := h.gridUC.ListProducts()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func parseGridRequest(c *gin.Context) (usecase.GridRequest, error) {
	req := usecase.GridRequest{Product: c.Query("product")}

	startStr := c.Query("start")
	endStr := c.Query("end")
	if startStr == "" {
		return req, fmt.Errorf("start parameter is required")
	}
	if endStr == "" {
		return req, fmt.Errorf("end parameter is required")
	}

	var err error
	if req.Start, err = domain.ParseDate(startStr); err != nil {
		return req, fmt.Errorf("invalid start: %w", err)
	}
	if req.End, err = domain.ParseDate(endStr); err != nil {
		return req, fmt.Errorf("invalid end: %w", err)
	}

	names := []string{"lat_min", "lat_max", "lon_min", "lon_max"}
	present := 0
	for _, name := range names {
		if c.Query(name) != "" {
			present++
		}
	}
	switch present {
	case 0:
		return req, nil
	case len(names):
	default:
		return req, fmt.Errorf("lat_min, lat_max, lon_min and lon_max must be given together")
	}

	var b domain.SpatialBounds
	for i, dst := range []*float64{&b.LatMin, &b.LatMax, &b.LonMin, &b.LonMax} {
		if *dst, err = requiredFloat(c, names[i]); err != nil {
			return req, err
		}
	}
	req.Bounds = &b
	return req, nil
}

func requiredFloat(c *gin.Context, name string) (float64, error) {
	s := c.Query(name)
	if s == "" {
		return 0, fmt.Errorf("%s parameter is required", name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	return v, nil
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrRead), errors.Is(err, usecase.ErrNoData):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrMetadata), errors.Is(err, domain.ErrShapeMismatch):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "request_id", c.GetString(requestIDKey), "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
