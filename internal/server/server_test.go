package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/ratecard/internal/config"
	"github.com/smallbiznis/ratecard/internal/observability"
	profiledomain "github.com/smallbiznis/ratecard/internal/profile/domain"
	ratingdomain "github.com/smallbiznis/ratecard/internal/rating/domain"
	"github.com/smallbiznis/ratecard/pkg/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRatingService struct {
	err error

	teamID     snowflake.ID
	rateType   ratingdomain.RateType
	adjustment ratingdomain.AdjustmentType
	quote      ratingdomain.QuoteRequest
	adjust     ratingdomain.AdjustRequest
}

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func (f *fakeRatingService) CalculateRates(_ context.Context, teamID snowflake.ID, rateType ratingdomain.RateType) (ratingdomain.Rates, error) {
	f.teamID, f.rateType = teamID, rateType
	if f.err != nil {
		return ratingdomain.Rates{}, f.err
	}
	return ratingdomain.Rates{Raw: d("76.11"), Markup: d("91.33"), GrossMargin: d("152.22")}, nil
}

func (f *fakeRatingService) UtilizedHourlyRate(context.Context, snowflake.ID) (decimal.Decimal, error) {
	return d("76.11"), f.err
}

func (f *fakeRatingService) UtilizedDayRate(context.Context, snowflake.ID) (decimal.Decimal, error) {
	return d("590.825"), f.err
}

func (f *fakeRatingService) UtilizedAnnualCost(context.Context, snowflake.ID) (decimal.Decimal, error) {
	return d("137000"), f.err
}

func (f *fakeRatingService) CalculateRate(_ context.Context, teamID snowflake.ID, rateType ratingdomain.RateType, adjustment ratingdomain.AdjustmentType) (decimal.Decimal, error) {
	f.teamID, f.rateType, f.adjustment = teamID, rateType, adjustment
	if f.err != nil {
		return decimal.Zero, f.err
	}
	return d("134.66"), nil
}

func (f *fakeRatingService) CalculateMetrics(_ context.Context, teamID snowflake.ID) (ratingdomain.TeamMetrics, error) {
	f.teamID = teamID
	if f.err != nil {
		return ratingdomain.TeamMetrics{}, f.err
	}
	return ratingdomain.TeamMetrics{
		TeamID:     teamID,
		HourlyRate: d("76.11"),
		DayRate:    d("590.825"),
		AnnualCost: d("137000"),
		TotalHours: d("2700"),
	}, nil
}

func (f *fakeRatingService) CalculateMetricsForProfiles(_ context.Context, teamID snowflake.ID, _ []profiledomain.Profile) (ratingdomain.TeamMetrics, error) {
	return ratingdomain.TeamMetrics{TeamID: teamID}, f.err
}

func (f *fakeRatingService) ProfileRates(_ context.Context, profileID snowflake.ID) (ratingdomain.ProfileRates, error) {
	if f.err != nil {
		return ratingdomain.ProfileRates{}, f.err
	}
	return ratingdomain.ProfileRates{
		ProfileID: profileID,
		Teams: []ratingdomain.TeamBreakdown{
			{TeamID: 100, TeamName: "delivery", HourlyRate: d("36.11")},
		},
		TotalHourlyRate: d("36.11"),
	}, nil
}

func (f *fakeRatingService) ProfileHistoryRates(_ context.Context, profileID snowflake.ID) ([]ratingdomain.HistoryRates, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []ratingdomain.HistoryRates{
		{ProfileID: profileID, HourlyRate: d("72.22")},
		{ProfileID: profileID, HourlyRate: d("58.33")},
	}, nil
}

func (f *fakeRatingService) Quote(_ context.Context, req ratingdomain.QuoteRequest) (ratingdomain.QuoteResponse, error) {
	f.quote = req
	if f.err != nil {
		return ratingdomain.QuoteResponse{}, f.err
	}
	return ratingdomain.QuoteResponse{AnnualCost: d("130000"), HourlyRate: d("72.22"), DayRate: d("541.65")}, nil
}

func (f *fakeRatingService) Adjust(_ context.Context, req ratingdomain.AdjustRequest) (ratingdomain.Rates, error) {
	f.adjust = req
	if f.err != nil {
		return ratingdomain.Rates{}, f.err
	}
	return ratingdomain.Rates{Raw: req.Rate, Markup: d("120.00"), GrossMargin: d("200.00")}, nil
}

func newTestServer(t *testing.T, svc ratingdomain.Service) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := NewEngine(observability.Config{LogLevel: "info"}, telemetry.NewMetrics(prometheus.NewRegistry()))
	return NewServer(ServerParams{
		Gin:       engine,
		Cfg:       config.Config{HTTPAddr: ":0"},
		Log:       zap.NewNop(),
		RatingSvc: svc,
	})
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *errorPayload   `json:"error"`
}

func do(t *testing.T, s *Server, method, path string, body []byte) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func TestGetTeamRates(t *testing.T) {
	svc := &fakeRatingService{}
	s := newTestServer(t, svc)

	w, env := do(t, s, http.MethodGet, "/api/teams/100/rates?rate_type=day", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, snowflake.ID(100), svc.teamID)
	assert.Equal(t, ratingdomain.RateTypeDay, svc.rateType)

	var resp teamRatesResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, ratingdomain.RateTypeDay, resp.RateType)
	assert.Equal(t, "152.22", resp.Rates.GrossMargin.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestGetTeamRatesDefaultsToHourly(t *testing.T) {
	svc := &fakeRatingService{}
	s := newTestServer(t, svc)

	w, _ := do(t, s, http.MethodGet, "/api/teams/100/rates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ratingdomain.RateTypeHourly, svc.rateType)
}

func TestGetTeamRate(t *testing.T) {
	svc := &fakeRatingService{}
	s := newTestServer(t, svc)

	w, env := do(t, s, http.MethodGet, "/api/teams/100/rate?rate_type=HOURLY&adjustment=markup", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, ratingdomain.AdjustmentMarkup, svc.adjustment)

	var resp teamRateResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "134.66", resp.Rate.String())
	assert.Equal(t, ratingdomain.AdjustmentMarkup, resp.Adjustment)
}

func TestGetTeamMetrics(t *testing.T) {
	s := newTestServer(t, &fakeRatingService{})

	w, env := do(t, s, http.MethodGet, "/api/teams/100/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var metrics ratingdomain.TeamMetrics
	require.NoError(t, json.Unmarshal(env.Data, &metrics))
	assert.Equal(t, "2700", metrics.TotalHours.String())
}

func TestProfileEndpoints(t *testing.T) {
	s := newTestServer(t, &fakeRatingService{})

	w, env := do(t, s, http.MethodGet, "/api/profiles/7/rates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rates ratingdomain.ProfileRates
	require.NoError(t, json.Unmarshal(env.Data, &rates))
	require.Len(t, rates.Teams, 1)
	assert.Equal(t, "delivery", rates.Teams[0].TeamName)

	w, env = do(t, s, http.MethodGet, "/api/profiles/7/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []ratingdomain.HistoryRates
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history, 2)
	assert.Equal(t, "72.22", history[0].HourlyRate.String())
}

func TestQuoteProfile(t *testing.T) {
	svc := &fakeRatingService{}
	s := newTestServer(t, svc)

	body := []byte(`{"annual_salary":"100000","fixed_annual_amount":5000,"overhead_multiplier":"1.25","effective_work_hours":1800,"hours_per_day":"7.5","utilization":null}`)
	w, env := do(t, s, http.MethodPost, "/api/quotes/profile", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.True(t, svc.quote.OverheadMultiplier.Valid)
	assert.Equal(t, "1.25", svc.quote.OverheadMultiplier.Decimal.String())
	assert.False(t, svc.quote.Utilization.Valid)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "72.22", resp["hourly_rate"])
	assert.NotContains(t, resp, "utilized_hourly_rate")
}

func TestQuoteAdjustment(t *testing.T) {
	svc := &fakeRatingService{}
	s := newTestServer(t, svc)

	w, env := do(t, s, http.MethodPost, "/api/quotes/adjust", []byte(`{"rate":"100.00","markup":20,"gross_margin":40}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "20", svc.adjust.Markup.String())

	var rates ratingdomain.Rates
	require.NoError(t, json.Unmarshal(env.Data, &rates))
	assert.Equal(t, "200", rates.GrossMargin.String())
}

func TestQuoteRejectsMalformedBody(t *testing.T) {
	s := newTestServer(t, &fakeRatingService{})

	w, env := do(t, s, http.MethodPost, "/api/quotes/profile", []byte(`{"annual_salary":`))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation_error", env.Error.Type)
	assert.Equal(t, "invalid_request", env.Error.Errors[0].Code)
}

func TestRequestErrors(t *testing.T) {
	cases := []struct {
		name     string
		path     string
		svcErr   error
		status   int
		errType  string
		errCode  string
		errField string
	}{
		{"bad id", "/api/teams/abc/rates", nil, http.StatusBadRequest, "validation_error", "invalid_id", "id"},
		{"zero id", "/api/profiles/0/rates", nil, http.StatusBadRequest, "validation_error", "invalid_id", "id"},
		{"bad rate type", "/api/teams/1/rates?rate_type=weekly", nil, http.StatusBadRequest, "validation_error", "invalid_rate_type", "rate_type"},
		{"bad adjustment", "/api/teams/1/rate?adjustment=discount", nil, http.StatusBadRequest, "validation_error", "invalid_adjustment", "adjustment"},
		{"missing team", "/api/teams/1/metrics", ratingdomain.ErrMissingTeam, http.StatusNotFound, "not_found", "", ""},
		{"missing profile", "/api/profiles/1/history", ratingdomain.ErrProfileNotFound, http.StatusNotFound, "not_found", "", ""},
		{"missing utilization", "/api/teams/1/rates", fmt.Errorf("utilization for profile 3: %w", ratingdomain.ErrMissingUtilization), http.StatusBadRequest, "validation_error", "invalid_utilization", "utilization"},
		{"collaborator failure", "/api/teams/1/rates", errors.New("connection refused"), http.StatusInternalServerError, "internal_error", "", ""},
		{"unknown route", "/api/nope", nil, http.StatusNotFound, "not_found", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t, &fakeRatingService{err: tc.svcErr})
			w, env := do(t, s, http.MethodGet, tc.path, nil)
			require.Equal(t, tc.status, w.Code, w.Body.String())
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.errType, env.Error.Type)
			if tc.errCode != "" {
				require.Len(t, env.Error.Errors, 1)
				assert.Equal(t, tc.errCode, env.Error.Errors[0].Code)
				assert.Equal(t, tc.errField, env.Error.Errors[0].Field)
			}
		})
	}
}

func TestValidationMessageStripsWrapping(t *testing.T) {
	_, payload := mapError(fmt.Errorf("utilization for profile 3: %w", ratingdomain.ErrMissingUtilization))
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "missing utilization percentage", payload.Errors[0].Message)
}

func TestClassifyErrorForLog(t *testing.T) {
	typ, code := classifyErrorForLog(ratingdomain.ErrInvalidRateType)
	assert.Equal(t, "validation_error", typ)
	assert.Equal(t, "invalid_rate_type", code)

	typ, code = classifyErrorForLog(ratingdomain.ErrMissingTeam)
	assert.Equal(t, "not_found", typ)
	assert.Equal(t, "team_not_found", code)

	typ, code = classifyErrorForLog(errors.New("boom"))
	assert.Equal(t, "internal_error", typ)
	assert.Equal(t, "internal_error", code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &fakeRatingService{})

	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
