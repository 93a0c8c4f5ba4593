package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/ratecard/internal/config"
	obsmetrics "github.com/smallbiznis/ratecard/internal/observability/metrics"
	"github.com/smallbiznis/ratecard/internal/observability/tracing"
	profiledomain "github.com/smallbiznis/ratecard/internal/profile/domain"
	"github.com/smallbiznis/ratecard/internal/rating/calc"
	ratingdomain "github.com/smallbiznis/ratecard/internal/rating/domain"
	teamdomain "github.com/smallbiznis/ratecard/internal/team/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	log    *zap.Logger
	tracer trace.Tracer

	profiles    ratingdomain.ProfileDirectory
	utilization ratingdomain.UtilizationDirectory
	policy      *config.RatingPolicyHolder

	metrics       *obsmetrics.Metrics
	ratingMetrics *obsmetrics.RatingMetrics
}

type ServiceParam struct {
	fx.In

	Log         *zap.Logger
	Profiles    ratingdomain.ProfileDirectory
	Utilization ratingdomain.UtilizationDirectory

	Policy        *config.RatingPolicyHolder `optional:"true"`
	Metrics       *obsmetrics.Metrics        `optional:"true"`
	RatingMetrics *obsmetrics.RatingMetrics  `optional:"true"`
}

func NewService(p ServiceParam) (ratingdomain.Service, error) {
	if p.Profiles == nil || p.Utilization == nil {
		return nil, ratingdomain.ErrMissingCollaborator
	}
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		log:    log.Named("rating.service"),
		tracer: otel.Tracer("ratecard/rating"),

		profiles:    p.Profiles,
		utilization: p.Utilization,
		policy:      p.Policy,

		metrics:       p.Metrics,
		ratingMetrics: p.RatingMetrics,
	}, nil
}

// utilizedFn is one of the calc.Utilized* functions.
type utilizedFn func(*profiledomain.Profile, decimal.NullDecimal) (decimal.Decimal, error)

// baseFn is one of the unweighted calc functions.
type baseFn func(*profiledomain.Profile) (decimal.Decimal, error)

func utilizedFor(rateType ratingdomain.RateType) (utilizedFn, error) {
	switch rateType {
	case ratingdomain.RateTypeHourly:
		return calc.UtilizedHourlyRate, nil
	case ratingdomain.RateTypeDay:
		return calc.UtilizedDayRate, nil
	case ratingdomain.RateTypeAnnual:
		return calc.UtilizedAnnualCost, nil
	default:
		return nil, ratingdomain.ErrInvalidRateType
	}
}

func baseFor(rateType ratingdomain.RateType) (baseFn, error) {
	switch rateType {
	case ratingdomain.RateTypeHourly:
		return calc.HourlyRate, nil
	case ratingdomain.RateTypeDay:
		return calc.DayRate, nil
	case ratingdomain.RateTypeAnnual:
		return calc.AnnualCost, nil
	default:
		return nil, ratingdomain.ErrInvalidRateType
	}
}

func (s *Service) CalculateRates(ctx context.Context, teamID snowflake.ID, rateType ratingdomain.RateType) (rates ratingdomain.Rates, err error) {
	ctx, done := s.begin(ctx, "calculate_rates", teamID, string(rateType))
	defer func() { done(err) }()

	fn, err := utilizedFor(rateType)
	if err != nil {
		return ratingdomain.Rates{}, err
	}
	team, err := s.team(ctx, teamID)
	if err != nil {
		return ratingdomain.Rates{}, err
	}

	raw, count, err := s.sumUtilized(ctx, team.ID, fn)
	if err != nil {
		return ratingdomain.Rates{}, err
	}

	markup := ApplyMarkup(raw, team.Markup)
	rates = ratingdomain.Rates{
		Raw:         raw,
		Markup:      markup,
		GrossMargin: s.applyGrossMargin(ctx, markup, team.GrossMargin, team.ID),
	}
	s.metrics.RecordCalculation(ctx, "calculate_rates", string(rateType), count)
	return rates, nil
}

func (s *Service) UtilizedHourlyRate(ctx context.Context, teamID snowflake.ID) (decimal.Decimal, error) {
	return s.utilizedTotal(ctx, "utilized_hourly_rate", teamID, ratingdomain.RateTypeHourly)
}

func (s *Service) UtilizedDayRate(ctx context.Context, teamID snowflake.ID) (decimal.Decimal, error) {
	return s.utilizedTotal(ctx, "utilized_day_rate", teamID, ratingdomain.RateTypeDay)
}

func (s *Service) UtilizedAnnualCost(ctx context.Context, teamID snowflake.ID) (decimal.Decimal, error) {
	return s.utilizedTotal(ctx, "utilized_annual_cost", teamID, ratingdomain.RateTypeAnnual)
}

func (s *Service) utilizedTotal(ctx context.Context, operation string, teamID snowflake.ID, rateType ratingdomain.RateType) (total decimal.Decimal, err error) {
	ctx, done := s.begin(ctx, operation, teamID, string(rateType))
	defer func() { done(err) }()

	fn, err := utilizedFor(rateType)
	if err != nil {
		return decimal.Zero, err
	}
	team, err := s.team(ctx, teamID)
	if err != nil {
		return decimal.Zero, err
	}
	total, count, err := s.sumUtilized(ctx, team.ID, fn)
	if err != nil {
		return decimal.Zero, err
	}
	s.metrics.RecordCalculation(ctx, operation, string(rateType), count)
	return total, nil
}

func (s *Service) CalculateRate(ctx context.Context, teamID snowflake.ID, rateType ratingdomain.RateType, adjustment ratingdomain.AdjustmentType) (rate decimal.Decimal, err error) {
	ctx, done := s.begin(ctx, "calculate_rate", teamID, string(rateType))
	defer func() { done(err) }()

	fn, err := baseFor(rateType)
	if err != nil {
		return decimal.Zero, err
	}
	switch adjustment {
	case ratingdomain.AdjustmentRaw, ratingdomain.AdjustmentMarkup, ratingdomain.AdjustmentGrossMargin:
	default:
		return decimal.Zero, ratingdomain.ErrInvalidAdjustmentType
	}

	team, err := s.team(ctx, teamID)
	if err != nil {
		return decimal.Zero, err
	}
	profiles, err := s.profiles.ProfilesByTeam(ctx, team.ID)
	if err != nil {
		return decimal.Zero, err
	}
	s.ratingMetrics.AddLookups(obsmetrics.DirectoryProfile, 1)

	sum := decimal.Zero
	for i := range profiles {
		v, err := fn(&profiles[i])
		if err != nil {
			return decimal.Zero, err
		}
		sum = sum.Add(v)
	}

	switch adjustment {
	case ratingdomain.AdjustmentMarkup:
		rate = ApplyMarkup(sum, team.Markup)
	case ratingdomain.AdjustmentGrossMargin:
		rate = s.applyGrossMargin(ctx, ApplyMarkup(sum, team.Markup), team.GrossMargin, team.ID)
	default:
		rate = sum
	}
	s.metrics.RecordCalculation(ctx, "calculate_rate", string(rateType), len(profiles))
	return rate, nil
}

func (s *Service) CalculateMetrics(ctx context.Context, teamID snowflake.ID) (metrics ratingdomain.TeamMetrics, err error) {
	ctx, done := s.begin(ctx, "calculate_metrics", teamID, "")
	defer func() { done(err) }()

	team, err := s.team(ctx, teamID)
	if err != nil {
		return ratingdomain.TeamMetrics{}, err
	}
	profiles, err := s.profiles.TeamProfiles(ctx, team.ID)
	if err != nil {
		return ratingdomain.TeamMetrics{}, err
	}
	s.ratingMetrics.AddLookups(obsmetrics.DirectoryProfile, 1)

	metrics, err = s.metricsFor(ctx, team.ID, profiles)
	if err != nil {
		return ratingdomain.TeamMetrics{}, err
	}
	s.metrics.RecordCalculation(ctx, "calculate_metrics", "", len(profiles))
	return metrics, nil
}

func (s *Service) CalculateMetricsForProfiles(ctx context.Context, teamID snowflake.ID, profiles []profiledomain.Profile) (metrics ratingdomain.TeamMetrics, err error) {
	ctx, done := s.begin(ctx, "calculate_metrics_for_profiles", teamID, "")
	defer func() { done(err) }()

	metrics, err = s.metricsFor(ctx, teamID, profiles)
	if err != nil {
		return ratingdomain.TeamMetrics{}, err
	}
	s.metrics.RecordCalculation(ctx, "calculate_metrics_for_profiles", "", len(profiles))
	return metrics, nil
}

type metricsTerm struct {
	hourly, day, annual, hours decimal.Decimal
}

func (s *Service) metricsFor(ctx context.Context, teamID snowflake.ID, profiles []profiledomain.Profile) (ratingdomain.TeamMetrics, error) {
	terms, err := collect(ctx, len(profiles), s.parallelism(), func(ctx context.Context, i int) (metricsTerm, error) {
		profile := &profiles[i]
		rateUtil, hourUtil, err := s.utilizationOf(ctx, profile.ID, teamID)
		if err != nil {
			return metricsTerm{}, err
		}

		var t metricsTerm
		if t.hourly, err = calc.UtilizedHourlyRate(profile, rateUtil); err != nil {
			return metricsTerm{}, err
		}
		if t.day, err = calc.UtilizedDayRate(profile, rateUtil); err != nil {
			return metricsTerm{}, err
		}
		if t.annual, err = calc.UtilizedAnnualCost(profile, rateUtil); err != nil {
			return metricsTerm{}, err
		}
		if t.hours, err = calc.UtilizedHours(profile, hourUtil); err != nil {
			return metricsTerm{}, err
		}
		return t, nil
	})
	if err != nil {
		return ratingdomain.TeamMetrics{}, err
	}
	s.ratingMetrics.AddLookups(obsmetrics.DirectoryUtilization, 2*len(profiles))

	out := ratingdomain.TeamMetrics{
		TeamID:     teamID,
		HourlyRate: decimal.Zero,
		DayRate:    decimal.Zero,
		AnnualCost: decimal.Zero,
		TotalHours: decimal.Zero,
	}
	for _, t := range terms {
		out.HourlyRate = out.HourlyRate.Add(t.hourly)
		out.DayRate = out.DayRate.Add(t.day)
		out.AnnualCost = out.AnnualCost.Add(t.annual)
		out.TotalHours = out.TotalHours.Add(t.hours)
	}
	return out, nil
}

func (s *Service) ProfileRates(ctx context.Context, profileID snowflake.ID) (rates ratingdomain.ProfileRates, err error) {
	ctx, done := s.begin(ctx, "profile_rates", profileID, "")
	defer func() { done(err) }()

	profile, err := s.profile(ctx, profileID)
	if err != nil {
		return ratingdomain.ProfileRates{}, err
	}
	teams, err := s.profiles.ProfileTeams(ctx, profile.ID)
	if err != nil {
		return ratingdomain.ProfileRates{}, err
	}
	s.ratingMetrics.AddLookups(obsmetrics.DirectoryProfile, 2)

	active := make([]teamdomain.Team, 0, len(teams))
	for _, team := range teams {
		if !team.Archived {
			active = append(active, team)
		}
	}

	breakdowns, err := collect(ctx, len(active), s.parallelism(), func(ctx context.Context, i int) (ratingdomain.TeamBreakdown, error) {
		return s.breakdown(ctx, profile, &active[i])
	})
	if err != nil {
		return ratingdomain.ProfileRates{}, err
	}
	s.ratingMetrics.AddLookups(obsmetrics.DirectoryUtilization, 2*len(active))

	rates = ratingdomain.ProfileRates{
		ProfileID:        profile.ID,
		Teams:            breakdowns,
		TotalHourlyRate:  decimal.Zero,
		TotalDayRate:     decimal.Zero,
		TotalAnnualCost:  decimal.Zero,
		ContributedHours: decimal.Zero,
	}
	for _, b := range breakdowns {
		rates.TotalHourlyRate = rates.TotalHourlyRate.Add(b.HourlyRate)
		rates.TotalDayRate = rates.TotalDayRate.Add(b.DayRate)
		rates.TotalAnnualCost = rates.TotalAnnualCost.Add(b.AnnualCost)
		rates.ContributedHours = rates.ContributedHours.Add(b.UtilizedHours)
	}
	s.metrics.RecordCalculation(ctx, "profile_rates", "", 1)
	return rates, nil
}

func (s *Service) breakdown(ctx context.Context, profile *profiledomain.Profile, team *teamdomain.Team) (ratingdomain.TeamBreakdown, error) {
	rateUtil, hourUtil, err := s.utilizationOf(ctx, profile.ID, team.ID)
	if err != nil {
		return ratingdomain.TeamBreakdown{}, err
	}

	b := ratingdomain.TeamBreakdown{
		TeamID:           team.ID,
		TeamName:         team.Name,
		UtilizationRate:  rateUtil.Decimal,
		UtilizationHours: hourUtil.Decimal,
	}
	if b.HourlyRate, err = calc.UtilizedHourlyRate(profile, rateUtil); err != nil {
		return ratingdomain.TeamBreakdown{}, err
	}
	if b.DayRate, err = calc.UtilizedDayRate(profile, rateUtil); err != nil {
		return ratingdomain.TeamBreakdown{}, err
	}
	if b.AnnualCost, err = calc.UtilizedAnnualCost(profile, rateUtil); err != nil {
		return ratingdomain.TeamBreakdown{}, err
	}
	if b.UtilizedHours, err = calc.UtilizedHours(profile, hourUtil); err != nil {
		return ratingdomain.TeamBreakdown{}, err
	}
	return b, nil
}

func (s *Service) ProfileHistoryRates(ctx context.Context, profileID snowflake.ID) (history []ratingdomain.HistoryRates, err error) {
	ctx, done := s.begin(ctx, "profile_history_rates", profileID, "")
	defer func() { done(err) }()

	profile, err := s.profile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	snapshots, err := s.profiles.ProfileHistory(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	s.ratingMetrics.AddLookups(obsmetrics.DirectoryProfile, 2)

	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].UpdatedAt.After(snapshots[j].UpdatedAt)
	})

	history = make([]ratingdomain.HistoryRates, 0, len(snapshots))
	for _, snapshot := range snapshots {
		p := snapshot.AsProfile()
		entry := ratingdomain.HistoryRates{
			ProfileID: profile.ID,
			UpdatedAt: snapshot.UpdatedAt,
		}
		if entry.HourlyRate, err = calc.HourlyRate(&p); err != nil {
			return nil, err
		}
		if entry.DayRate, err = calc.DayRate(&p); err != nil {
			return nil, err
		}
		if entry.AnnualCost, err = calc.AnnualCost(&p); err != nil {
			return nil, err
		}
		history = append(history, entry)
	}
	s.metrics.RecordCalculation(ctx, "profile_history_rates", "", len(snapshots))
	return history, nil
}

func (s *Service) Quote(ctx context.Context, req ratingdomain.QuoteRequest) (resp ratingdomain.QuoteResponse, err error) {
	ctx, done := s.begin(ctx, "quote", 0, "")
	defer func() { done(err) }()

	multiplier := decimal.NewFromInt(1)
	if req.OverheadMultiplier.Valid {
		multiplier = req.OverheadMultiplier.Decimal
	}
	profile := &profiledomain.Profile{
		AnnualSalary:       req.AnnualSalary,
		FixedAnnualAmount:  req.FixedAnnualAmount,
		OverheadMultiplier: multiplier,
		EffectiveWorkHours: req.EffectiveWorkHours,
		HoursPerDay:        req.HoursPerDay,
	}

	if resp.AnnualCost, err = calc.AnnualCost(profile); err != nil {
		return ratingdomain.QuoteResponse{}, err
	}
	if resp.HourlyRate, err = calc.HourlyRate(profile); err != nil {
		return ratingdomain.QuoteResponse{}, err
	}
	if resp.DayRate, err = calc.DayRate(profile); err != nil {
		return ratingdomain.QuoteResponse{}, err
	}

	if req.Utilization.Valid {
		fns := []struct {
			fn  utilizedFn
			dst **decimal.Decimal
		}{
			{calc.UtilizedAnnualCost, &resp.UtilizedAnnualCost},
			{calc.UtilizedHourlyRate, &resp.UtilizedHourlyRate},
			{calc.UtilizedDayRate, &resp.UtilizedDayRate},
			{calc.UtilizedHours, &resp.UtilizedHours},
			{calc.UtilizedHoursPerDay, &resp.UtilizedHoursPerDay},
		}
		for _, f := range fns {
			v, err := f.fn(profile, req.Utilization)
			if err != nil {
				return ratingdomain.QuoteResponse{}, err
			}
			*f.dst = &v
		}
	}
	s.metrics.RecordCalculation(ctx, "quote", "", 1)
	return resp, nil
}

func (s *Service) Adjust(ctx context.Context, req ratingdomain.AdjustRequest) (rates ratingdomain.Rates, err error) {
	ctx, done := s.begin(ctx, "adjust", 0, "")
	defer func() { done(err) }()

	markup := ApplyMarkup(req.Rate, req.Markup)
	rates = ratingdomain.Rates{
		Raw:         req.Rate,
		Markup:      markup,
		GrossMargin: s.applyGrossMargin(ctx, markup, req.GrossMargin, 0),
	}
	s.metrics.RecordCalculation(ctx, "adjust", "", 0)
	return rates, nil
}

func (s *Service) applyGrossMargin(ctx context.Context, rate, grossMargin decimal.Decimal, teamID snowflake.ID) decimal.Decimal {
	if IsFullGrossMargin(grossMargin) {
		s.metrics.RecordGrossMarginFallback(ctx)
		if s.policy.Get().WarnOnFullGrossMargin {
			s.log.Warn("gross margin of 100% doubles the rate",
				zap.String("team_id", teamID.String()),
				zap.String("gross_margin", grossMargin.String()),
			)
		}
	}
	return ApplyGrossMargin(rate, grossMargin)
}

// sumUtilized folds fn over the team's current members in listing order.
func (s *Service) sumUtilized(ctx context.Context, teamID snowflake.ID, fn utilizedFn) (decimal.Decimal, int, error) {
	profiles, err := s.profiles.TeamProfiles(ctx, teamID)
	if err != nil {
		return decimal.Zero, 0, err
	}
	s.ratingMetrics.AddLookups(obsmetrics.DirectoryProfile, 1)

	terms, err := collect(ctx, len(profiles), s.parallelism(), func(ctx context.Context, i int) (decimal.Decimal, error) {
		profile := &profiles[i]
		utilization, err := s.utilization.RateUtilization(ctx, profile.ID, teamID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("utilization for profile %s: %w", profile.ID, err)
		}
		return fn(profile, utilization)
	})
	if err != nil {
		return decimal.Zero, 0, err
	}
	s.ratingMetrics.AddLookups(obsmetrics.DirectoryUtilization, len(profiles))

	sum := decimal.Zero
	for _, term := range terms {
		sum = sum.Add(term)
	}
	return sum, len(profiles), nil
}

func (s *Service) utilizationOf(ctx context.Context, profileID, teamID snowflake.ID) (rate, hours decimal.NullDecimal, err error) {
	if rate, err = s.utilization.RateUtilization(ctx, profileID, teamID); err != nil {
		return rate, hours, fmt.Errorf("utilization for profile %s: %w", profileID, err)
	}
	if hours, err = s.utilization.HourUtilization(ctx, profileID, teamID); err != nil {
		return rate, hours, fmt.Errorf("hour utilization for profile %s: %w", profileID, err)
	}
	return rate, hours, nil
}

func (s *Service) team(ctx context.Context, teamID snowflake.ID) (*teamdomain.Team, error) {
	team, err := s.profiles.Team(ctx, teamID)
	if err != nil {
		return nil, err
	}
	s.ratingMetrics.AddLookups(obsmetrics.DirectoryProfile, 1)
	if team == nil {
		return nil, ratingdomain.ErrMissingTeam
	}
	return team, nil
}

func (s *Service) profile(ctx context.Context, profileID snowflake.ID) (*profiledomain.Profile, error) {
	profile, err := s.profiles.Profile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	s.ratingMetrics.AddLookups(obsmetrics.DirectoryProfile, 1)
	if profile == nil {
		return nil, ratingdomain.ErrProfileNotFound
	}
	return profile, nil
}

func (s *Service) parallelism() int {
	return s.policy.Get().LookupParallelism
}

// begin opens a span and a duration timer for operation; the returned func closes both.
func (s *Service) begin(ctx context.Context, operation string, subjectID snowflake.ID, rateType string) (context.Context, func(error)) {
	attrs := []attribute.KeyValue{attribute.String("rating.operation", operation)}
	if subjectID != 0 {
		attrs = append(attrs, attribute.String("rating.subject_id", subjectID.String()))
	}
	if rateType != "" {
		attrs = append(attrs, attribute.String("rating.rate_type", rateType))
	}
	ctx, span := s.tracer.Start(ctx, "rating."+operation, trace.WithAttributes(tracing.SafeAttributes(attrs...)...))
	stop := s.ratingMetrics.Start(operation)

	return ctx, func(err error) {
		stop(err)
		if err != nil {
			s.metrics.RecordCalculationFailure(ctx, operation, obsmetrics.ClassifyRatingReason(err))
			span.RecordError(tracing.SafeError(err))
			span.SetStatus(codes.Error, "rating failed")
		}
		span.End()
	}
}
