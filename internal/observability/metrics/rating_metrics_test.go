package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	ratingdomain "github.com/smallbiznis/ratecard/internal/rating/domain"
	teamdomain "github.com/smallbiznis/ratecard/internal/team/domain"
	"gorm.io/gorm"
)

func TestClassifyRatingReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: RatingReasonDeadlineExceeded},
		{name: "canceled", err: fmt.Errorf("lookup: %w", context.Canceled), want: RatingReasonDeadlineExceeded},
		{name: "invalid_argument", err: ratingdomain.ErrMissingUtilization, want: RatingReasonInvalidArgument},
		{name: "team_not_found", err: ratingdomain.ErrMissingTeam, want: RatingReasonNotFound},
		{name: "membership_not_found", err: fmt.Errorf("utilization: %w", teamdomain.ErrMembershipNotFound), want: RatingReasonNotFound},
		{name: "db_lock_timeout", err: &pgconn.PgError{Code: "55P03"}, want: RatingReasonDBLockTimeout},
		{name: "db", err: &pgconn.PgError{Code: "08006"}, want: RatingReasonDB},
		{name: "gorm", err: gorm.ErrInvalidDB, want: RatingReasonDB},
		{name: "unknown", err: errors.New("boom"), want: RatingReasonUnknown},
		{name: "nil", err: nil, want: RatingReasonUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyRatingReason(tc.err); got != tc.want {
				t.Fatalf("expected reason %q, got %q", tc.want, got)
			}
		})
	}
}

func TestRatingMetricsStart(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewRatingMetrics(registry, Config{ServiceName: "ratecard", Environment: "test"})

	done := m.Start("calculate_rates")
	if got := testutil.ToFloat64(m.inflight); got != 1 {
		t.Fatalf("expected 1 inflight, got %v", got)
	}
	done(ratingdomain.ErrMissingTeam)

	if got := testutil.ToFloat64(m.inflight); got != 0 {
		t.Fatalf("expected 0 inflight, got %v", got)
	}
	if got := testutil.ToFloat64(m.aggregationErrors.WithLabelValues("calculate_rates", RatingReasonNotFound)); got != 1 {
		t.Fatalf("expected 1 error, got %v", got)
	}
}

func TestRatingMetricsAddLookups(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewRatingMetrics(registry, Config{})

	m.AddLookups(DirectoryUtilization, 3)
	m.AddLookups(DirectoryUtilization, 0)

	if got := testutil.ToFloat64(m.lookups.WithLabelValues(DirectoryUtilization)); got != 3 {
		t.Fatalf("expected 3 lookups, got %v", got)
	}

	var nilMetrics *RatingMetrics
	nilMetrics.AddLookups(DirectoryProfile, 1)
	nilMetrics.Start("noop")(nil)
}
