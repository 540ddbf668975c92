package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/listmatch/backend/internal/domain"
	"github.com/listmatch/backend/internal/infrastructure/jsonl"
)

// maxListingBytes bounds a single listing request body
const maxListingBytes = 1 << 20

// ListingRouter is the usecase surface the handlers depend on
type ListingRouter interface {
	ProcessListing(ctx context.Context, listing *domain.Listing) (*domain.MatchResult, error)
	ScoreListing(ctx context.Context, request *domain.ScoreRequest) ([]domain.CandidateScore, error)
	Products(manufacturer string) []domain.ProductSummary
	Results() []domain.ProductResult
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	router ListingRouter
	logger *slog.Logger
}

// NewHandler creates a new HTTP handler. router may be nil, in which case
// listing endpoints answer 503.
func NewHandler(router ListingRouter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		router: router,
		logger: logger.With("component", "http"),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "listmatch",
		"version": "1.0.0",
	})
}

// MatchListing routes one listing to its best product and records the match.
// The request body is the listing object itself; unknown fields are kept.
func (h *Handler) MatchListing(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxListingBytes)
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read request body"})
		return
	}

	listing, err := domain.ParseListing(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.router.ProcessListing(c.Request.Context(), listing)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ScoreListing returns ranked candidate scores without recording anything
func (h *Handler) ScoreListing(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req domain.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and manufacturer are required"})
		return
	}

	scores, err := h.router.ScoreListing(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if scores == nil {
		scores = []domain.CandidateScore{}
	}

	c.JSON(http.StatusOK, gin.H{
		"title":        req.Title,
		"manufacturer": req.Manufacturer,
		"candidates":   scores,
	})
}

// ListProducts lists catalog products with their listing counts
func (h *Handler) ListProducts(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	products := h.router.Products(c.Query("manufacturer"))
	if products == nil {
		products = []domain.ProductSummary{}
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// Results streams the current results in the same line format as the
// results file.
func (h *Handler) Results(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	c.Status(http.StatusOK)
	if err := jsonl.WriteResults(c.Writer, h.router.Results()); err != nil {
		h.logger.Error("write results failed", "error", err)
	}
}

func (h *Handler) ready(c *gin.Context) bool {
	if h.router == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "listing router not configured"})
		return false
	}
	return true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled"})
	default:
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
