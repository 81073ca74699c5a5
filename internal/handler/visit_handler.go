package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/SergeiKhy/visit-tracker/internal/models"
	"github.com/SergeiKhy/visit-tracker/internal/repository"
	"github.com/SergeiKhy/visit-tracker/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type VisitHandler struct {
	service service.VisitService
	logger  *zap.Logger
}

func NewVisitHandler(service service.VisitService, logger *zap.Logger) *VisitHandler {
	return &VisitHandler{
		service: service,
		logger:  logger,
	}
}

type CreateVisitRequest struct {
	URL             string            `json:"url" binding:"required,url"`
	DatetimeVisited *models.VisitTime `json:"datetime_visited"`
	LinkCount       *int              `json:"link_count" binding:"required,gte=0"`
	WordCount       *int              `json:"word_count" binding:"required,gte=0"`
	ImageCount      *int              `json:"image_count" binding:"required,gte=0"`
}

// CreateVisit godoc
// @Summary Record a page visit
// @Description Create a new page visit record with its metrics
// @Tags visits
// @Accept json
// @Produce json
// @Param request body CreateVisitRequest true "Visit data"
// @Success 201 {object} Response
// @Failure 422 {object} Response
// @Failure 500 {object} Response
// @Router /api/visits [post]
func (h *VisitHandler) CreateVisit(c *gin.Context) {
	var req CreateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid visit payload", zap.Error(err))
		respondError(c, http.StatusUnprocessableEntity, "Validation failed", validationMessages(err), nil)
		return
	}

	input := &models.CreateVisitInput{
		URL:        req.URL,
		LinkCount:  *req.LinkCount,
		WordCount:  *req.WordCount,
		ImageCount: *req.ImageCount,
	}
	if req.DatetimeVisited != nil {
		input.DatetimeVisited = &req.DatetimeVisited.Time
	}

	visit, err := h.service.CreateVisit(c.Request.Context(), input)
	if err != nil {
		h.logger.Error("Failed to create visit", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to create visit", nil, nil)
		return
	}

	respondSuccess(c, http.StatusCreated, "Visit created successfully", visit)
}

// GetVisitsByURL godoc
// @Summary List visits for a URL
// @Description Get paginated visit history for one URL, most recent first
// @Tags visits
// @Produce json
// @Param url path string true "Percent-encoded page URL"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Results to skip" default(0)
// @Success 200 {object} Response
// @Failure 422 {object} Response
// @Failure 500 {object} Response
// @Router /api/visits/url/{url} [get]
func (h *VisitHandler) GetVisitsByURL(c *gin.Context) {
	pageURL, err := decodeURLParam(c)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "Validation failed", []string{"url must be percent-encoded"}, nil)
		return
	}

	limit, offset, errs := parsePagination(c, 50, 100)
	if len(errs) > 0 {
		respondError(c, http.StatusUnprocessableEntity, "Validation failed", errs, nil)
		return
	}

	list, err := h.service.GetVisitsByURL(c.Request.Context(), pageURL, limit, offset)
	if err != nil {
		h.logger.Error("Failed to fetch visits", zap.String("url", pageURL), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to fetch visits", nil, nil)
		return
	}

	respondSuccess(c, http.StatusOK, "Success", list)
}

// GetLatestVisit godoc
// @Summary Get the latest visit for a URL
// @Description Get the most recent visit record for one URL
// @Tags visits
// @Produce json
// @Param url path string true "Percent-encoded page URL"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Failure 500 {object} Response
// @Router /api/visits/url/{url}/latest [get]
func (h *VisitHandler) GetLatestVisit(c *gin.Context) {
	pageURL, err := decodeURLParam(c)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "Validation failed", []string{"url must be percent-encoded"}, nil)
		return
	}

	visit, err := h.service.GetLatestVisit(c.Request.Context(), pageURL)
	if err != nil {
		if errors.Is(err, repository.ErrVisitNotFound) {
			respondError(c, http.StatusNotFound, fmt.Sprintf("No visits found for URL: %s", pageURL), nil, nil)
			return
		}
		h.logger.Error("Failed to fetch latest visit", zap.String("url", pageURL), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to fetch visit", nil, nil)
		return
	}

	respondSuccess(c, http.StatusOK, "Success", visit)
}

// GetAllVisits godoc
// @Summary List all visits
// @Description Get paginated visit history across every URL, most recent first
// @Tags visits
// @Produce json
// @Param limit query int false "Page size" default(100)
// @Param offset query int false "Results to skip" default(0)
// @Success 200 {object} Response
// @Failure 422 {object} Response
// @Failure 500 {object} Response
// @Router /api/visits [get]
func (h *VisitHandler) GetAllVisits(c *gin.Context) {
	limit, offset, errs := parsePagination(c, 100, 500)
	if len(errs) > 0 {
		respondError(c, http.StatusUnprocessableEntity, "Validation failed", errs, nil)
		return
	}

	list, err := h.service.GetAllVisits(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to fetch visits", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to fetch visits", nil, nil)
		return
	}

	respondSuccess(c, http.StatusOK, "Success", list)
}

// decodeURLParam достаёт path-параметр :url и раскодирует percent-encoding.
// Роутер работает в raw-path режиме, поэтому параметр приходит закодированным.
func decodeURLParam(c *gin.Context) (string, error) {
	return url.PathUnescape(c.Param("url"))
}

// parsePagination читает limit/offset из query string и проверяет диапазоны
func parsePagination(c *gin.Context, defaultLimit, maxLimit int) (int, int, []string) {
	var errs []string

	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxLimit {
			errs = append(errs, fmt.Sprintf("limit must be an integer between 1 and %d", maxLimit))
		} else {
			limit = parsed
		}
	}

	offset := 0
	if raw := c.Query("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			errs = append(errs, "offset must be a non-negative integer")
		} else {
			offset = parsed
		}
	}

	return limit, offset, errs
}

// Имена полей запроса для сообщений об ошибках валидации
var requestFieldNames = map[string]string{
	"URL":             "url",
	"DatetimeVisited": "datetime_visited",
	"LinkCount":       "link_count",
	"WordCount":       "word_count",
	"ImageCount":      "image_count",
}

// validationMessages превращает ошибки биндинга в список сообщений по полям
func validationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"request body is malformed"}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if name, ok := requestFieldNames[field]; ok {
			field = name
		}

		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid URL", field))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}

	return msgs
}
