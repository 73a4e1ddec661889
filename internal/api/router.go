package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roach88/happyplaces/internal/analysis"
	"github.com/roach88/happyplaces/internal/export"
	"github.com/roach88/happyplaces/internal/model"
	"github.com/roach88/happyplaces/internal/projection"
)

// Handler serves the read-only routes.
type Handler struct {
	projection *projection.Engine
	analyzer   *analysis.Analyzer
	exporter   *export.Exporter
}

// NewHandler creates a Handler.
func NewHandler(p *projection.Engine, a *analysis.Analyzer, e *export.Exporter) *Handler {
	return &Handler{projection: p, analyzer: a, exporter: e}
}

// NewRouter builds the gin engine with recovery, request logging and every
// route registered.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/items", h.listItems)
	r.GET("/items/:id", h.itemStatus)
	r.GET("/items/:id/history", h.placementHistory)
	r.GET("/items/:id/neighbors", h.recentNeighbors)
	r.GET("/items/:id/sightings", h.sightings)
	r.GET("/zones", h.listZones)
	r.GET("/zones/:zone/items", h.itemsInZone)
	r.GET("/patterns", h.distributionPatterns)
	r.GET("/routines", h.routineInsights)
	r.GET("/attention", h.attention)
	r.GET("/export", h.export)
	r.GET("/health", h.health)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, Response{
			Status: "error",
			Error:  &ErrorBody{Code: string(model.ErrCodeNotFound), Message: "no route for " + c.Request.URL.Path},
		})
	})
	return r
}

// requestLogger logs each request at info once it completes.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// limitParam parses the optional ?limit= query. An absent limit yields
// def; negatives and non-integers are rejected.
func limitParam(c *gin.Context, def int) (int, error) {
	raw, ok := c.GetQuery("limit")
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, model.NewValidationError("limit", "limit must be a non-negative integer")
	}
	return n, nil
}

func (h *Handler) listItems(c *gin.Context) {
	items, err := h.projection.AllItems(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, items)
}

func (h *Handler) itemStatus(c *gin.Context) {
	status, err := h.projection.ItemStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, status)
}

func (h *Handler) placementHistory(c *gin.Context) {
	limit, err := limitParam(c, projection.DefaultHistoryLimit)
	if err != nil {
		fail(c, err)
		return
	}
	history, err := h.projection.CollectHistory(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, history)
}

func (h *Handler) recentNeighbors(c *gin.Context) {
	limit, err := limitParam(c, projection.DefaultNeighborLimit)
	if err != nil {
		fail(c, err)
		return
	}
	neighbors, err := h.projection.RecentNeighbors(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, neighbors)
}

func (h *Handler) listZones(c *gin.Context) {
	zones, err := h.projection.ListZones(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, zones)
}

func (h *Handler) itemsInZone(c *gin.Context) {
	occupants, err := h.projection.ItemsInZone(c.Request.Context(), c.Param("zone"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, occupants)
}

func (h *Handler) distributionPatterns(c *gin.Context) {
	patterns, err := h.analyzer.DistributionPatterns(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, patterns)
}

func (h *Handler) routineInsights(c *gin.Context) {
	insights, err := h.analyzer.RoutineInsights(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, insights)
}

func (h *Handler) attention(c *gin.Context) {
	at, err := h.analyzer.ItemsNeedingAttention(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, at)
}

func (h *Handler) export(c *gin.Context) {
	doc, err := h.exporter.Build(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, doc)
}

func (h *Handler) sightings(c *gin.Context) {
	edges, err := h.projection.Sightings(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, edges)
}

func (h *Handler) health(c *gin.Context) {
	health, err := h.projection.Health(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, health)
}
