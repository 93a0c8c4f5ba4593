package cache

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	ratingdomain "github.com/smallbiznis/ratecard/internal/rating/domain"
)

type utilizationDirectory struct {
	next  ratingdomain.UtilizationDirectory
	store UtilizationStore
}

// NewUtilizationDirectory serves lookups from store before asking next.
// Errors from next are returned as-is and never cached.
func NewUtilizationDirectory(next ratingdomain.UtilizationDirectory, store UtilizationStore) ratingdomain.UtilizationDirectory {
	if store == nil {
		return next
	}
	return &utilizationDirectory{next: next, store: store}
}

func (d *utilizationDirectory) RateUtilization(ctx context.Context, profileID, teamID snowflake.ID) (decimal.NullDecimal, error) {
	return d.lookup(ctx, cacheKey(keyPrefix, "util", "rate", profileID.String(), teamID.String()), func() (decimal.NullDecimal, error) {
		return d.next.RateUtilization(ctx, profileID, teamID)
	})
}

func (d *utilizationDirectory) HourUtilization(ctx context.Context, profileID, teamID snowflake.ID) (decimal.NullDecimal, error) {
	return d.lookup(ctx, cacheKey(keyPrefix, "util", "hours", profileID.String(), teamID.String()), func() (decimal.NullDecimal, error) {
		return d.next.HourUtilization(ctx, profileID, teamID)
	})
}

func (d *utilizationDirectory) lookup(ctx context.Context, key string, load func() (decimal.NullDecimal, error)) (decimal.NullDecimal, error) {
	if value, ok := d.store.Get(ctx, key); ok {
		return value, nil
	}
	value, err := load()
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	d.store.Set(ctx, key, value)
	return value, nil
}
