package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tva-service/internal/domain/violation"
	"tva-service/internal/service"
)

type Handler struct {
	pipeline   *service.Pipeline
	registry   *service.VehicleRegistry
	violations *service.ViolationService
	log        zerolog.Logger
}

func NewHandler(
	pipeline *service.Pipeline,
	registry *service.VehicleRegistry,
	violations *service.ViolationService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		pipeline:   pipeline,
		registry:   registry,
		violations: violations,
		log:        log,
	}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/", h.root)
	r.GET("/health", h.health)

	r.POST("/analyze_url", h.analyzeURL)
	r.POST("/analyze", h.analyzeUpload)
	r.POST("/register_user", h.registerUser)
	r.GET("/violations", h.listViolations)
	r.PATCH("/violations/:id", h.reviewViolation)
}

func (h *Handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "tva-backend-ok"})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"health": "alive"})
}

type analyzeURLRequest struct {
	URL string `json:"url"`
}

func (h *Handler) analyzeURL(c *gin.Context) {
	var req analyzeURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		c.JSON(http.StatusBadRequest, errorResponse("Missing field: url"))
		return
	}

	imageBytes, contentType, err := h.pipeline.FetchImage(c.Request.Context(), req.URL)
	if err != nil {
		h.handleError(c, err)
		return
	}

	result, err := h.pipeline.ProcessImage(c.Request.Context(), req.URL, imageBytes, contentType)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) analyzeUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Missing field: file"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("failed to open uploaded file"))
		return
	}
	defer file.Close()

	imageBytes, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("failed to read uploaded file"))
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	result, err := h.pipeline.ProcessImage(c.Request.Context(), fileHeader.Filename, imageBytes, contentType)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type registerUserRequest struct {
	Name  string `json:"name"`
	Plate string `json:"plate"`
	Email string `json:"email"`
}

func (h *Handler) registerUser(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	for _, field := range []struct {
		name  string
		value string
	}{
		{"name", req.Name},
		{"plate", req.Plate},
		{"email", req.Email},
	} {
		if strings.TrimSpace(field.value) == "" {
			c.JSON(http.StatusBadRequest, errorResponse("Missing field: "+field.name))
			return
		}
	}

	if err := h.registry.Register(c.Request.Context(), req.Name, req.Plate, req.Email); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) listViolations(c *gin.Context) {
	limit := 0
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}
	offset := 0
	if o := c.Query("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil {
			offset = parsed
		}
	}

	records, err := h.violations.List(c.Request.Context(), c.Query("plate"), limit, offset)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"violations": records})
}

type reviewRequest struct {
	Status string `json:"status"`
}

func (h *Handler) reviewViolation(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		c.JSON(http.StatusBadRequest, errorResponse("Missing field: status"))
		return
	}

	err := h.violations.Review(c.Request.Context(), c.Param("id"), violation.Status(req.Status))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrImageFetch):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInference):
		c.JSON(http.StatusBadGateway, errorResponse(err.Error()))
	case errors.Is(err, service.ErrConfiguration):
		c.JSON(http.StatusInternalServerError, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func errorResponse(message string) gin.H {
	return gin.H{"error": message}
}
