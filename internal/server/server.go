// Package server exposes analyses over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alexshd/synergy"
	"github.com/alexshd/synergy/internal/dataset"
	"github.com/alexshd/synergy/internal/store"
)

// Options configures the HTTP handler.
type Options struct {
	Logger          *slog.Logger
	Store           store.Store
	VerifyTolerance float64
}

// Handler serves the analysis API.
type Handler struct {
	logger   *slog.Logger
	store    store.Store
	analyzer *synergy.Analyzer
	verify   synergy.VerifyConfig
}

// NewHandler builds a handler. A nil store keeps runs in memory.
func NewHandler(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	st := opts.Store
	if st == nil {
		st = store.NewMemoryStore()
	}
	verify := synergy.DefaultVerifyConfig()
	if opts.VerifyTolerance > 0 {
		verify.Tolerance = opts.VerifyTolerance
	}

	return &Handler{
		logger:   logger,
		store:    st,
		analyzer: synergy.NewAnalyzer(logger),
		verify:   verify,
	}
}

// Router wires the routes onto a fresh gin engine.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())

	api := r.Group("/api/v1")
	{
		api.GET("/health", h.handleHealth)
		api.GET("/reference", h.handleReference)
		api.POST("/analyses", h.handleCreateAnalysis)
		api.GET("/analyses", h.handleListAnalyses)
		api.GET("/analyses/:id", h.handleGetAnalysis)
	}

	return r
}

// requestLogger logs one line per request through slog.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		} else if c.Writer.Status() >= http.StatusBadRequest {
			level = slog.LevelWarn
		}
		h.logger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start))
	}
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) handleReference(c *gin.Context) {
	h.analyze(c, dataset.Reference(), false)
}

func (h *Handler) handleCreateAnalysis(c *gin.Context) {
	var d dataset.Dataset
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": synergy.CodeInvalidInput})
		return
	}
	h.analyze(c, d, true)
}

// analyze runs d, verifies when asked, and optionally stores the run.
func (h *Handler) analyze(c *gin.Context, d dataset.Dataset, persist bool) {
	u, counts, err := d.Resolve()
	if err != nil {
		h.writeAnalysisError(c, err)
		return
	}

	res, err := h.analyzer.Run(c.Request.Context(), u, counts)
	if err != nil {
		h.writeAnalysisError(c, err)
		return
	}

	if verify, _ := strconv.ParseBool(c.Query("verify")); verify {
		if err := synergy.Verify(res, h.verify); err != nil {
			h.logger.Error("analysis failed verification", "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "code": synergy.CodeOf(err)})
			return
		}
	}

	run := store.NewRun(d, res)
	if !persist {
		c.JSON(http.StatusOK, run)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), store.CallTimeout)
	defer cancel()
	if err := h.store.Save(ctx, run); err != nil {
		h.logger.Error("failed to save run", "id", run.ID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save analysis"})
		return
	}

	c.Header("Location", "/api/v1/analyses/"+run.ID.String())
	c.JSON(http.StatusCreated, run)
}

func (h *Handler) handleGetAnalysis(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid analysis id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), store.CallTimeout)
	defer cancel()
	run, err := h.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to load run", "id", id, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analysis"})
		return
	}

	c.JSON(http.StatusOK, run)
}

func (h *Handler) handleListAnalyses(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), store.CallTimeout)
	defer cancel()
	runs, err := h.store.List(ctx, limit)
	if err != nil {
		h.logger.Error("failed to list runs", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list analyses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"analyses": runs})
}

// writeAnalysisError maps core error kinds onto HTTP statuses.
func (h *Handler) writeAnalysisError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, synergy.ErrInvalidInput), errors.Is(err, synergy.ErrDivision):
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": synergy.CodeOf(err)})
}
