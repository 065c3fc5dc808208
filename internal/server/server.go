package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"secureentity/extractor/extractor"
)

// Server exposes the extraction pipeline over HTTP: raw predictions for
// remote clients and the aggregated report for dashboard consumers.
type Server struct {
	router *gin.Engine
	svc    *extractor.Service
	log    *zap.Logger
}

type analyzeRequest struct {
	Text  string `json:"text"`
	Query string `json:"query,omitempty"`
}

// NewServer wires the routes around an extraction service.
func NewServer(svc *extractor.Service, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	router := gin.Default()
	s := &Server{
		router: router,
		svc:    svc,
		log:    log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	s.router.POST("/extract", s.handleExtract)
	s.router.POST("/report", s.handleReport)
}

// handleExtract returns the raw span predictions for the posted text. The
// text is chunked server-side when it exceeds the model budget; offsets stay
// relative to each submitted chunk.
func (s *Server) handleExtract(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entities := s.svc.Extract(c.Request.Context(), req.Text, nil)
	if entities == nil {
		entities = []extractor.RawPrediction{}
	}
	c.JSON(http.StatusOK, gin.H{"entities": entities})
}

// handleReport runs the full pipeline and returns the aggregated entity
// table with its summary counters, optionally filtered by a search query.
func (s *Server) handleReport(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report := s.svc.Analyze(c.Request.Context(), req.Text, nil).Filter(req.Query)
	c.JSON(http.StatusOK, gin.H{
		"records": report.Records,
		"stats":   report.Stats(),
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run blocks serving HTTP on addr.
func (s *Server) Run(addr string) error {
	s.log.Info("server starting", zap.String("addr", addr))
	return s.router.Run(addr)
}
