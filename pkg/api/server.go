// Package api provides the REST API server for traktor2rekordbox
package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/james-see/traktor2rekordbox/pkg/analysis"
	"github.com/james-see/traktor2rekordbox/pkg/converter"
	"github.com/james-see/traktor2rekordbox/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Traktor2Rekordbox API
// @version 1.0
// @description API for converting DJ libraries between Traktor NML and Rekordbox XML
// @host localhost:8080
// @BasePath /api/v1

// Server serves conversions over HTTP
type Server struct {
	opts   converter.Options
	logger *slog.Logger
	router *gin.Engine
}

// NewServer builds the router; every request converts with its own
// converter.Converter built from opts.
func NewServer(opts converter.Options) *Server {
	opts = converter.New(opts).Options()
	s := &Server{
		opts:   opts,
		logger: opts.Logger,
		router: gin.New(),
	}
	s.setupRoutes()
	return s
}

// StartServer starts the API server on the specified port
func StartServer(port int, opts converter.Options) error {
	return NewServer(opts).Start(port)
}

// Start listens on the specified port
func (s *Server) Start(port int) error {
	return s.router.Run(fmt.Sprintf(":%d", port))
}

// Router exposes the handler, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/convert/nml2xml", s.handleNMLToRekordbox)
		v1.POST("/convert/xml2nml", s.handleRekordboxToNML)
		v1.POST("/analyze", s.handleAnalyze)
		v1.GET("/formats", listFormats)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestLogger logs each request and records the HTTP metrics
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(elapsed.Seconds())
		s.logger.Debug("request", "method", c.Request.Method, "path", path, "status", status, "duration", elapsed)
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "traktor2rekordbox",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns the supported library formats and conversions
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":     []string{string(converter.FormatNML), string(converter.FormatRekordbox)},
		"conversions": converter.GetSupportedConversions(),
	})
}

// handleNMLToRekordbox godoc
// @Summary Convert Traktor NML to Rekordbox XML
// @Description Upload a Traktor collection and receive a Rekordbox library
// @Tags convert
// @Accept multipart/form-data
// @Produce application/xml
// @Param file formData file true "NML file to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/convert/nml2xml [post]
func (s *Server) handleNMLToRekordbox(c *gin.Context) {
	s.handleConversion(c, converter.NMLToRekordbox)
}

// handleRekordboxToNML godoc
// @Summary Convert Rekordbox XML to Traktor NML
// @Description Upload a Rekordbox library and receive a Traktor collection
// @Tags convert
// @Accept multipart/form-data
// @Produce application/xml
// @Param file formData file true "Rekordbox XML file to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/convert/xml2nml [post]
func (s *Server) handleRekordboxToNML(c *gin.Context) {
	s.handleConversion(c, converter.RekordboxToNML)
}

// handleAnalyze godoc
// @Summary Analyze a library
// @Description Upload an NML or Rekordbox file and receive a per-track cue summary
// @Tags analyze
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "NML or Rekordbox XML file"
// @Success 200 {object} analysis.Report
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/analyze [post]
func (s *Server) handleAnalyze(c *gin.Context) {
	data, _, ok := readUpload(c)
	if !ok {
		return
	}

	report, err := analysis.Analyze(data)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleConversion(c *gin.Context, d converter.Direction) {
	data, filename, ok := readUpload(c)
	if !ok {
		return
	}

	start := time.Now()
	result, err := converter.New(s.opts).Run(data, d)
	tracks := 0
	if result != nil {
		tracks = result.Tracks
	}
	metrics.ObserveConversion(d.String(), tracks, time.Since(start), err)

	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, converter.ErrMalformedDocument) {
			status = http.StatusUnprocessableEntity
		}
		s.logger.Warn("conversion failed", "direction", d.String(), "file", filename, "error", err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": outputName(filename, d.Target)}))
	c.Data(http.StatusOK, "application/xml", result.Output)
}

func readUpload(c *gin.Context) ([]byte, string, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return nil, "", false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return nil, "", false
	}
	return data, header.Filename, true
}

func outputName(filename string, target converter.Format) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if base == "" || base == "." {
		base = "converted"
	}
	return base + target.Extension()
}
