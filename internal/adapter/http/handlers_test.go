package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Greggwolin/landscape-sub000/internal/domain"
	"github.com/Greggwolin/landscape-sub000/internal/usecase/cashflow"
	"github.com/Greggwolin/landscape-sub000/internal/usecase/metrics"
	"github.com/Greggwolin/landscape-sub000/internal/usecase/sensitivity"
)

const testToken = "test-token"

// mockRunRepo lets each test stub exactly the repository calls it expects
type mockRunRepo struct {
	CreateFunc  func(ctx context.Context, run *domain.AnalysisRun) error
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.AnalysisRun, error)
	ListFunc    func(ctx context.Context, limit, offset int) ([]*domain.AnalysisRun, error)
}

func (m *mockRunRepo) Create(ctx context.Context, run *domain.AnalysisRun) error {
	return m.CreateFunc(ctx, run)
}

func (m *mockRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AnalysisRun, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockRunRepo) List(ctx context.Context, limit, offset int) ([]*domain.AnalysisRun, error) {
	return m.ListFunc(ctx, limit, offset)
}

func newTestServer(runs domain.AnalysisRunRepository) *Server {
	gin.SetMode(gin.TestMode)
	projector := cashflow.NewProjectionService()
	metricsService := metrics.NewService()
	return NewServer(
		projector,
		metricsService,
		sensitivity.NewService(projector, metricsService, 2),
		runs,
		sensitivity.DefaultThresholds(),
		testToken,
	)
}

func doRequest(t *testing.T, s *Server, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func flatDealDTO() AssumptionSetDTO {
	return AssumptionSetDTO{
		Name:             "Flat Deal",
		AcquisitionPrice: "10000000",
		HoldPeriods:      5,
		PeriodType:       "ANNUAL",
		DiscountRate:     "0.07",
		ExitCapRate:      "0.07",
		RevenueLines: []RevenueLineDTO{{
			Name:       "Rent",
			Kind:       "BASE_RENT",
			BaseAmount: "700000",
			Escalation: EscalationRuleDTO{Kind: "NONE"},
		}},
	}
}

func TestHealthEndpointNeedsNoAuth(t *testing.T) {
	s := newTestServer(nil)
	w := doRequest(t, s, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIRejectsMissingOrWrongToken(t *testing.T) {
	s := newTestServer(nil)

	w := doRequest(t, s, http.MethodPost, "/v1/projections", flatDealDTO(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, s, http.MethodPost, "/v1/projections", flatDealDTO(), "wrong-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProjectionEndpoint(t *testing.T) {
	s := newTestServer(nil)

	w := doRequest(t, s, http.MethodPost, "/v1/projections", flatDealDTO(), testToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ProjectionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Periods, 6)
	assert.Equal(t, "0.00", resp.Periods[0].NOI)
	assert.Equal(t, "700000.00", resp.Periods[1].NOI)
	assert.Equal(t, "700000.00", resp.Periods[5].NetCashFlow)
	assert.Empty(t, resp.DebtSchedule)
}

func TestProjectionEndpointRejectsBadDecimal(t *testing.T) {
	s := newTestServer(nil)
	dto := flatDealDTO()
	dto.AcquisitionPrice = "ten million"

	w := doRequest(t, s, http.MethodPost, "/v1/projections", dto, testToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid acquisition_price format")
}

func TestProjectionEndpointRejectsInvalidAssumptions(t *testing.T) {
	s := newTestServer(nil)
	dto := flatDealDTO()
	dto.HoldPeriods = 0

	w := doRequest(t, s, http.MethodPost, "/v1/projections", dto, testToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "hold period must be positive")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(nil)

	periods := []CashFlowPeriodDTO{{Period: 0}}
	for p := 1; p <= 5; p++ {
		periods = append(periods, CashFlowPeriodDTO{
			Period:             p,
			NOI:                "700000",
			CashFlowBeforeDebt: "700000",
			NetCashFlow:        "700000",
		})
	}
	req := MetricsRequest{
		Periods: periods,
		Parameters: DealParametersDTO{
			AcquisitionPrice: "10000000",
			DiscountRate:     "0.07",
			ExitCapRate:      "0.07",
			PeriodsPerYear:   1,
		},
	}

	w := doRequest(t, s, http.MethodPost, "/v1/metrics", req, testToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp MetricsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "10000000.00", resp.ExitValue)
	require.NotNil(t, resp.UnleveredIRR)
	assert.InDelta(t, 0.07, *resp.UnleveredIRR, 1e-6)
	assert.Equal(t, "1.3500", resp.EquityMultiple)
}

func TestMetricsEndpointRejectsBadParameters(t *testing.T) {
	s := newTestServer(nil)
	req := MetricsRequest{
		Periods: []CashFlowPeriodDTO{{Period: 0}, {Period: 1, NetCashFlow: "1"}},
		Parameters: DealParametersDTO{
			AcquisitionPrice: "10000000",
			DiscountRate:     "0.07",
			ExitCapRate:      "0",
			PeriodsPerYear:   1,
		},
	}

	w := doRequest(t, s, http.MethodPost, "/v1/metrics", req, testToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "exit cap rate must be positive")
}

func TestAnalysisEndpointWithoutPersistence(t *testing.T) {
	s := newTestServer(nil)
	req := AnalysisRequest{Baseline: flatDealDTO(), Catalogue: []string{"revenue[0].base", "exit_cap_rate"}}

	w := doRequest(t, s, http.MethodPost, "/v1/analyses", req, testToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp AnalysisResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.ID, "no repository, no stored run")
	assert.Equal(t, "Flat Deal", resp.BaselineName)
	require.NotNil(t, resp.BaselineIRR)
	assert.InDelta(t, 0.07, *resp.BaselineIRR, 1e-6)
	require.Len(t, resp.Results, 2)
	require.Len(t, resp.Classification.Milestones, 4)
	for _, r := range resp.Results {
		assert.Equal(t, 4, r.DefinedPoints)
	}
}

func TestAnalysisEndpointPersistsRun(t *testing.T) {
	var stored *domain.AnalysisRun
	repo := &mockRunRepo{
		CreateFunc: func(_ context.Context, run *domain.AnalysisRun) error {
			stored = run
			return nil
		},
	}
	s := newTestServer(repo)
	req := AnalysisRequest{Baseline: flatDealDTO()}

	w := doRequest(t, s, http.MethodPost, "/v1/analyses", req, testToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NotNil(t, stored)
	assert.Equal(t, "Flat Deal", stored.BaselineName)
	assert.NotEmpty(t, stored.Results)
	require.NotNil(t, stored.BaselineIRR)

	var resp AnalysisResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, stored.ID.String(), resp.ID)
	require.NotNil(t, resp.CreatedAt)
}

func TestAnalysisEndpointSurfacesStoreFailure(t *testing.T) {
	repo := &mockRunRepo{
		CreateFunc: func(context.Context, *domain.AnalysisRun) error {
			return errors.New("connection refused")
		},
	}
	s := newTestServer(repo)

	w := doRequest(t, s, http.MethodPost, "/v1/analyses", AnalysisRequest{Baseline: flatDealDTO()}, testToken)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "failed to store analysis run")
}

func TestGetAnalysisEndpoint(t *testing.T) {
	id := uuid.New()
	repo := &mockRunRepo{
		GetByIDFunc: func(_ context.Context, got uuid.UUID) (*domain.AnalysisRun, error) {
			require.Equal(t, id, got)
			return &domain.AnalysisRun{ID: id, BaselineName: "Stored Deal"}, nil
		},
	}
	s := newTestServer(repo)

	w := doRequest(t, s, http.MethodGet, "/v1/analyses/"+id.String(), nil, testToken)
	require.Equal(t, http.StatusOK, w.Code)

	var resp AnalysisResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, id.String(), resp.ID)
	assert.Equal(t, "Stored Deal", resp.BaselineName)
}

func TestGetAnalysisEndpointStatuses(t *testing.T) {
	id := uuid.New()
	repo := &mockRunRepo{
		GetByIDFunc: func(_ context.Context, got uuid.UUID) (*domain.AnalysisRun, error) {
			return nil, fmt.Errorf("analysis run %s not found", got)
		},
	}
	s := newTestServer(repo)

	w := doRequest(t, s, http.MethodGet, "/v1/analyses/"+id.String(), nil, testToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, s, http.MethodGet, "/v1/analyses/not-a-uuid", nil, testToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// No repository configured
	s = newTestServer(nil)
	w = doRequest(t, s, http.MethodGet, "/v1/analyses/"+id.String(), nil, testToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAnalysesEndpoint(t *testing.T) {
	repo := &mockRunRepo{
		ListFunc: func(_ context.Context, limit, offset int) ([]*domain.AnalysisRun, error) {
			assert.Equal(t, 20, limit)
			assert.Equal(t, 0, offset)
			return []*domain.AnalysisRun{
				{ID: uuid.New(), BaselineName: "Deal A"},
				{ID: uuid.New(), BaselineName: "Deal B"},
			}, nil
		},
	}
	s := newTestServer(repo)

	w := doRequest(t, s, http.MethodGet, "/v1/analyses", nil, testToken)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Runs []AnalysisResponse `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Runs, 2)
}

func TestListAnalysesEndpointValidatesPagination(t *testing.T) {
	s := newTestServer(&mockRunRepo{})

	w := doRequest(t, s, http.MethodGet, "/v1/analyses?limit=0", nil, testToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, s, http.MethodGet, "/v1/analyses?offset=-1", nil, testToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, s, http.MethodGet, "/v1/analyses?limit=abc", nil, testToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
