package handlers

import (
	"errors"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/plannink/forecast-api/internal/domain"
	"github.com/plannink/forecast-api/internal/ingest"
	"github.com/plannink/forecast-api/internal/repository"
	"github.com/plannink/forecast-api/internal/service"
)

type ForecastHandler struct {
	service *service.ForecastService
	ingest  *ingest.Service
}

func NewForecastHandler(svc *service.ForecastService, ingestSvc *ingest.Service) *ForecastHandler {
	return &ForecastHandler{service: svc, ingest: ingestSvc}
}

// respondError maps domain errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, repository.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "details": err.Error()})
	}
}

func (h *ForecastHandler) parseFilter(c *gin.Context) domain.ProductFilter {
	filter := domain.ProductFilter{
		Page:     1,
		PageSize: 50,
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		filter.Page = page
	}

	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "50")); err == nil && size > 0 {
		filter.PageSize = size
	}

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		filter.Status = strings.ToLower(status)
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.Search = search
	}

	if codes := strings.TrimSpace(c.Query("codes")); codes != "" {
		for _, code := range strings.Split(codes, ",") {
			code = strings.TrimSpace(code)
			if code != "" {
				filter.Codes = append(filter.Codes, code)
			}
		}
	}

	return filter
}

func (h *ForecastHandler) ListProducts(c *gin.Context) {
	filter := h.parseFilter(c)
	products, total, err := h.service.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": products,
		"total": total,
	})
}

func (h *ForecastHandler) GetProduct(c *gin.Context) {
	code := c.Param("code")
	product, err := h.service.GetProduct(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *ForecastHandler) GetProjections(c *gin.Context) {
	code := c.Param("code")
	projections, err := h.service.GetProjections(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proyecciones": projections})
}

func (h *ForecastHandler) GetWeeklyProjections(c *gin.Context) {
	code := c.Param("code")
	points, err := h.service.GetWeeklyProjections(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"semanas": points})
}

func (h *ForecastHandler) GetStockoutRisk(c *gin.Context) {
	code := c.Param("code")
	risk, variability, err := h.service.StockoutRisk(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"riesgo_quiebre": risk,
		"variabilidad":   variability,
	})
}

func (h *ForecastHandler) GetStatusSummary(c *gin.Context) {
	summary, err := h.service.GetStatusSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (h *ForecastHandler) Recalculate(c *gin.Context) {
	count, err := h.service.Recalculate(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recalculated": count})
}

type transitUnitsRequest struct {
	Units float64 `json:"unidades" binding:"required"`
}

func (h *ForecastHandler) ApplyTransitUnits(c *gin.Context) {
	var req transitUnitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unidades is required", "details": err.Error()})
		return
	}

	// Fractional units are malformed input, not something to round.
	if req.Units != math.Trunc(req.Units) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unidades must be an integer"})
		return
	}

	product, err := h.service.ApplyTransitUnits(c.Request.Context(), c.Param("code"), int(req.Units))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

type transitDaysRequest struct {
	Days            float64  `json:"dias" binding:"required"`
	ProjectionIndex *float64 `json:"indice_proyeccion"`
}

func (h *ForecastHandler) ApplyTransitDays(c *gin.Context) {
	var req transitDaysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dias is required", "details": err.Error()})
		return
	}

	if req.Days != math.Trunc(req.Days) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dias must be an integer"})
		return
	}

	var index *int
	if req.ProjectionIndex != nil {
		if *req.ProjectionIndex != math.Trunc(*req.ProjectionIndex) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "indice_proyeccion must be an integer"})
			return
		}
		i := int(*req.ProjectionIndex)
		index = &i
	}

	product, err := h.service.ApplyTransitDays(c.Request.Context(), c.Param("code"), int(req.Days), index)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *ForecastHandler) Upload(c *gin.Context) {
	if h.ingest == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ingestion is not configured"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required", "details": err.Error()})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".xlsx" && ext != ".csv" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only .xlsx and .csv files are supported"})
		return
	}

	tmpDir, err := os.MkdirTemp("", "upload")
	if err != nil {
		respondError(c, err)
		return
	}
	defer os.RemoveAll(tmpDir)

	dst := filepath.Join(tmpDir, filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, dst); err != nil {
		respondError(c, err)
		return
	}

	result, err := h.ingest.IngestFile(c.Request.Context(), dst)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ForecastHandler) ListUploads(c *gin.Context) {
	if h.ingest == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ingestion is not configured"})
		return
	}

	objects, err := h.ingest.ListArchived(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"archivos": objects})
}
