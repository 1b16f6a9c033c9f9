// Package http exposes the engine's three entry points as a JSON API:
// cash-flow projection, metrics computation, and sensitivity analysis.
// All payloads are plain serializable records; no engine-internal types
// leak across this boundary
package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"github.com/Greggwolin/landscape-sub000/internal/domain"
	"github.com/Greggwolin/landscape-sub000/internal/usecase/cashflow"
	"github.com/Greggwolin/landscape-sub000/internal/usecase/metrics"
	"github.com/Greggwolin/landscape-sub000/internal/usecase/sensitivity"
)

// Server is the engine API server
type Server struct {
	Projector     *cashflow.ProjectionService
	Metrics       *metrics.Service
	Sensitivity   *sensitivity.Service
	Runs          domain.AnalysisRunRepository // nil disables persistence
	Thresholds    sensitivity.Thresholds
	AnnualizeDSCR bool

	router *gin.Engine
}

// NewServer creates a new API server and registers its routes
func NewServer(
	projector *cashflow.ProjectionService,
	metricsService *metrics.Service,
	sensitivityService *sensitivity.Service,
	runs domain.AnalysisRunRepository,
	thresholds sensitivity.Thresholds,
	apiToken string,
) *Server {
	router := gin.Default()

	s := &Server{
		Projector:   projector,
		Metrics:     metricsService,
		Sensitivity: sensitivityService,
		Runs:        runs,
		Thresholds:  thresholds,
		router:      router,
	}

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/v1", TokenAuth(apiToken))
	{
		api.POST("/projections", s.handleProjection)
		api.POST("/metrics", s.handleMetrics)
		api.POST("/analyses", s.handleAnalysis)
		api.GET("/analyses", s.handleListAnalyses)
		api.GET("/analyses/:id", s.handleGetAnalysis)
	}

	return s
}

// Run starts the API server
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router for embedding in an http.Server and for tests
func (s *Server) Handler() nethttp.Handler {
	return s.router
}
