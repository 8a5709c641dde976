// Package server exposes the analysis pipeline over HTTP: a single upload
// route that answers with a live, append-only stream of newline-delimited
// status records.
package server

import (
	"log/slog"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/kamatgc/AI-startup-analyst/internal/config"
	"github.com/kamatgc/AI-startup-analyst/internal/pipeline"
)

// Server ties the gin router to the pipeline orchestrator.
type Server struct {
	cfg          *config.Config
	orchestrator *pipeline.Orchestrator
	router       *gin.Engine
}

// New builds the router. The static UI is served as-is; everything dynamic
// goes through /analyze.
func New(cfg *config.Config, orchestrator *pipeline.Orchestrator) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		cfg:          cfg,
		orchestrator: orchestrator,
		router:       router,
	}

	router.POST("/analyze", s.handleAnalyze)
	router.Static("/static", cfg.StaticDir)
	router.GET("/", func(c *gin.Context) {
		c.File(filepath.Join(cfg.StaticDir, "index.html"))
	})
	return s
}

// Router exposes the underlying handler, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run blocks serving HTTP on the configured address.
func (s *Server) Run() error {
	slog.Info("Listening.", "addr", s.cfg.ListenAddr)
	return s.router.Run(s.cfg.ListenAddr)
}
