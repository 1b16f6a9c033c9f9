package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Greggwolin/landscape-sub000/internal/domain"
	"github.com/Greggwolin/landscape-sub000/internal/usecase/sensitivity"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleProjection runs the cash flow engine on one assumption set
func (s *Server) handleProjection(c *gin.Context) {
	var dto AssumptionSetDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	set, err := dto.toDomain()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	projection, err := s.Projector.Project(set)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, projectionToDTO(projection))
}

// handleMetrics computes return metrics from a supplied cash-flow sequence
func (s *Server) handleMetrics(c *gin.Context) {
	var req MetricsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	periods := make([]domain.CashFlowPeriod, 0, len(req.Periods))
	for _, dto := range req.Periods {
		cf, err := dto.toDomain()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		periods = append(periods, cf)
	}

	params, err := req.Parameters.toDomain()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	params.AnnualizeDSCR = s.AnnualizeDSCR

	m, err := s.Metrics.Compute(periods, params)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, metricsToDTO(m))
}

// handleAnalysis runs a full sensitivity analysis and classification,
// persisting the run when a repository is configured
func (s *Server) handleAnalysis(c *gin.Context) {
	var req AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	baseline, err := req.Baseline.toDomain()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	catalogue := make([]domain.VariablePath, 0, len(req.Catalogue))
	for _, path := range req.Catalogue {
		catalogue = append(catalogue, domain.VariablePath(path))
	}

	results, baselineIRR, err := s.Sensitivity.Analyze(baseline, catalogue)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	classification := sensitivity.Classify(results, s.Thresholds)

	resp := AnalysisResponse{
		BaselineName:   baseline.Name,
		BaselineIRR:    &baselineIRR,
		Results:        resultsToDTO(results),
		Classification: classificationToDTO(classification),
	}

	if s.Runs != nil {
		run := &domain.AnalysisRun{
			ID:             uuid.New(),
			CreatedAt:      time.Now().UTC(),
			BaselineName:   baseline.Name,
			BaselineIRR:    &baselineIRR,
			Results:        results,
			Classification: classification,
		}
		if err := s.Runs.Create(c.Request.Context(), run); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store analysis run: " + err.Error()})
			return
		}
		resp.ID = run.ID.String()
		resp.CreatedAt = &run.CreatedAt
	}

	c.JSON(http.StatusOK, resp)
}

// handleGetAnalysis returns one stored analysis run
func (s *Server) handleGetAnalysis(c *gin.Context) {
	if s.Runs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis persistence is not configured"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid analysis id format"})
		return
	}

	run, err := s.Runs.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, runToDTO(run))
}

// handleListAnalyses returns stored analysis runs, newest first
func (s *Server) handleListAnalyses(c *gin.Context) {
	if s.Runs == nil {
		c.JSON(http.StatusOK, gin.H{"runs": []AnalysisResponse{}})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
		return
	}

	runs, err := s.Runs.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	out := make([]AnalysisResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, runToDTO(run))
	}
	c.JSON(http.StatusOK, gin.H{"runs": out})
}

func runToDTO(run *domain.AnalysisRun) AnalysisResponse {
	createdAt := run.CreatedAt
	return AnalysisResponse{
		ID:             run.ID.String(),
		CreatedAt:      &createdAt,
		BaselineName:   run.BaselineName,
		BaselineIRR:    run.BaselineIRR,
		Results:        resultsToDTO(run.Results),
		Classification: classificationToDTO(run.Classification),
	}
}

// statusFor maps engine errors to HTTP status codes: validation failures are
// the caller's fault, missing runs are 404, everything else is internal
func statusFor(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return http.StatusNotFound
	case strings.Contains(msg, "invalid") ||
		strings.Contains(msg, "must") ||
		strings.Contains(msg, "cannot"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
