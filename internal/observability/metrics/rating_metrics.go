package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	profiledomain "github.com/smallbiznis/ratecard/internal/profile/domain"
	ratingdomain "github.com/smallbiznis/ratecard/internal/rating/domain"
	teamdomain "github.com/smallbiznis/ratecard/internal/team/domain"
	"gorm.io/gorm"
)

const (
	RatingReasonDeadlineExceeded = "deadline_exceeded"
	RatingReasonInvalidArgument  = "invalid_argument"
	RatingReasonNotFound         = "not_found"
	RatingReasonDBLockTimeout    = "db_lock_timeout"
	RatingReasonDB               = "db"
	RatingReasonUnknown          = "unknown"
)

const (
	DirectoryProfile     = "profile"
	DirectoryUtilization = "utilization"
)

// RatingMetrics exposes aggregation health on the Prometheus registry.
type RatingMetrics struct {
	aggregationDuration *prometheus.HistogramVec
	aggregationErrors   *prometheus.CounterVec
	lookups             *prometheus.CounterVec
	inflight            prometheus.Gauge
}

var (
	ratingMetricsOnce sync.Once
	ratingMetrics     *RatingMetrics
)

// Rating returns the process-wide rating metrics registered on the default registerer.
func Rating(cfg Config) *RatingMetrics {
	ratingMetricsOnce.Do(func() {
		ratingMetrics = NewRatingMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return ratingMetrics
}

// NewRatingMetrics registers the rating collectors on registerer.
func NewRatingMetrics(registerer prometheus.Registerer, cfg Config) *RatingMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "ratecard"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	aggregationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "ratecard_rating_aggregation_duration_seconds",
		Help:        "Time spent folding a team or profile into rates, lookups included.",
		Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		ConstLabels: constLabels,
	}, []string{"operation"})
	aggregationErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "ratecard_rating_aggregation_errors_total",
		Help:        "Failed aggregations by low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"operation", "reason"})
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "ratecard_rating_lookups_total",
		Help:        "Directory lookups issued by the aggregation service.",
		ConstLabels: constLabels,
	}, []string{"directory"})
	inflight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "ratecard_rating_inflight",
		Help:        "Aggregations currently running.",
		ConstLabels: constLabels,
	})

	registerer.MustRegister(aggregationDuration, aggregationErrors, lookups, inflight)

	return &RatingMetrics{
		aggregationDuration: aggregationDuration,
		aggregationErrors:   aggregationErrors,
		lookups:             lookups,
		inflight:            inflight,
	}
}

// Start marks an aggregation as running. The returned func records its outcome.
func (m *RatingMetrics) Start(operation string) func(err error) {
	if m == nil {
		return func(error) {}
	}
	start := time.Now()
	m.inflight.Inc()
	return func(err error) {
		m.inflight.Dec()
		m.aggregationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		if err != nil {
			m.aggregationErrors.WithLabelValues(operation, ClassifyRatingReason(err)).Inc()
		}
	}
}

// AddLookups counts directory calls.
func (m *RatingMetrics) AddLookups(directory string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.lookups.WithLabelValues(directory).Add(float64(count))
}

// ClassifyRatingReason maps aggregation errors to low-cardinality reasons.
func ClassifyRatingReason(err error) string {
	if err == nil {
		return RatingReasonUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return RatingReasonDeadlineExceeded
	}
	if errors.Is(err, ratingdomain.ErrInvalidArgument) {
		return RatingReasonInvalidArgument
	}
	if isNotFound(err) {
		return RatingReasonNotFound
	}
	if hasPGCode(err, "55P03") {
		return RatingReasonDBLockTimeout
	}
	if isDBError(err) {
		return RatingReasonDB
	}
	return RatingReasonUnknown
}

func isNotFound(err error) bool {
	return errors.Is(err, ratingdomain.ErrMissingTeam) ||
		errors.Is(err, ratingdomain.ErrProfileNotFound) ||
		errors.Is(err, profiledomain.ErrNotFound) ||
		errors.Is(err, teamdomain.ErrNotFound) ||
		errors.Is(err, teamdomain.ErrMembershipNotFound) ||
		errors.Is(err, gorm.ErrRecordNotFound)
}

func hasPGCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

func isDBError(err error) bool {
	if errors.Is(err, gorm.ErrInvalidDB) ||
		errors.Is(err, gorm.ErrInvalidTransaction) ||
		errors.Is(err, gorm.ErrInvalidField) ||
		errors.Is(err, gorm.ErrInvalidData) ||
		errors.Is(err, gorm.ErrUnsupportedDriver) ||
		errors.Is(err, gorm.ErrInvalidValue) ||
		errors.Is(err, gorm.ErrNotImplemented) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr)
}
