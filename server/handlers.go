package server

import (
	"context"
	"errors"
	"net/http"

	"bookscraper/extractor"
	"bookscraper/inference"
	"bookscraper/logger"
	"bookscraper/models"
	"bookscraper/scraper"

	"github.com/gin-gonic/gin"
)

// AttributeExtractor predicts product attributes for submitted HTML
type AttributeExtractor interface {
	Extract(ctx context.Context, html string) (models.Extraction, error)
}

// Handler serves the catalog and extraction endpoints
type Handler struct {
	scraper   scraper.Scraper
	extractor AttributeExtractor
	log       logger.Logger
}

// NewHandler creates a new Handler
func NewHandler(s scraper.Scraper, e AttributeExtractor, log logger.Logger) *Handler {
	return &Handler{
		scraper:   s,
		extractor: e,
		log:       log,
	}
}

// statusClientClosedRequest is reported when the client went away before the
// response was ready (nginx convention)
const statusClientClosedRequest = 499

type errorResponse struct {
	Detail string `json:"detail"`
}

// ExtractRequest is the body of POST /extract_attributes
type ExtractRequest struct {
	HTML *string `json:"html" binding:"required"`
}

// ScrapeBooks handles GET /
func (h *Handler) ScrapeBooks(c *gin.Context) {
	books, err := h.scraper.Scrape(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(statusForError(err), errorResponse{Detail: err.Error()})
		return
	}
	if books == nil {
		books = []models.Book{}
	}

	c.JSON(http.StatusOK, books)
}

// ExtractAttributes handles POST /extract_attributes
func (h *Handler) ExtractAttributes(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: "request body must be a JSON object with an \"html\" string"})
		return
	}

	result, err := h.extractor.Extract(c.Request.Context(), *req.HTML)
	if err != nil {
		_ = c.Error(err)
		c.JSON(statusForError(err), errorResponse{Detail: err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// statusForError maps handler errors to response codes. Context errors are
// checked first: a model call that hit the deadline is also ErrModelUnavailable.
func statusForError(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	case errors.Is(err, extractor.ErrInsufficientTokens):
		return http.StatusUnprocessableEntity
	case errors.Is(err, inference.ErrModelUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
