// Package server provides the PackStencil HTTP API.
package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xob0t/PackStencil/pkg/fonts"
	"github.com/xob0t/PackStencil/pkg/generator"
	"github.com/xob0t/PackStencil/pkg/label"
	"github.com/xob0t/PackStencil/pkg/layout"
)

const requestIDHeader = "X-Request-Id"

// Engines are the two renderers the API serves: print documents and previews.
type Engines struct {
	Render  *label.Engine
	Preview *label.Engine
}

// Server holds the HTTP handlers.
type Server struct {
	engines Engines
	node    *snowflake.Node
	log     *zap.Logger
}

// NewServer creates the API handlers.
func NewServer(engines Engines, node *snowflake.Node, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{engines: engines, node: node, log: log}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(s.requestID(), s.accessLog(), gin.Recovery())

	api := r.Group("/api")
	api.POST("/labels/render", s.handleRender)
	api.POST("/labels/preview", s.handlePreview)
	api.GET("/buyers", s.handleBuyers)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// ── Middleware ──

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" && s.node != nil {
			id = s.node.Generate().String()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// ── Render ──

type renderResponse struct {
	RequestID string         `json:"requestId"`
	Warnings  []string       `json:"warnings,omitempty"`
	Documents []label.Result `json:"documents"`
}

func (s *Server) handleRender(c *gin.Context)  { s.render(c, s.engines.Render) }
func (s *Server) handlePreview(c *gin.Context) { s.render(c, s.engines.Preview) }

func (s *Server) render(c *gin.Context, e *label.Engine) {
	var req label.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	results, err := e.Render(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, layout.ErrUnknownBuyer):
			abortWithError(c, http.StatusUnprocessableEntity, err)
		case errors.Is(err, fonts.ErrNoFont):
			s.log.Error("render failed", zap.String("request_id", c.GetString("request_id")), zap.Error(err))
			abortWithError(c, http.StatusInternalServerError, err)
		case c.Request.Context().Err() != nil:
			abortWithError(c, http.StatusServiceUnavailable, err)
		default:
			s.log.Error("render failed", zap.String("request_id", c.GetString("request_id")), zap.Error(err))
			abortWithError(c, http.StatusInternalServerError, err)
		}
		return
	}

	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.JSON(http.StatusOK, renderResponse{
			RequestID: c.GetString("request_id"),
			Warnings:  label.Validate(req, e.Catalog()),
			Documents: results,
		})
		return
	}

	if len(results) == 1 {
		r := results[0]
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, r.FileName))
		c.Data(http.StatusOK, r.MimeType, r.Bytes)
		return
	}

	var buf bytes.Buffer
	if err := generator.GenerateToWriter(&buf, ".zip", results); err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	name := strings.TrimSuffix(results[0].FileName, e.Backend().Extension()) + ".zip"
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}

// ── Catalog ──

func (s *Server) handleBuyers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.engines.Render.Catalog().Describe()})
}

// ── Helpers ──

func abortWithError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":     err.Error(),
		"requestId": c.GetString("request_id"),
	})
}
