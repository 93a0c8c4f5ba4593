package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// RatingPolicy tunes how the aggregation service runs. It never changes numeric results.
type RatingPolicy struct {
	// LookupParallelism bounds concurrent per-profile lookups. 1 means sequential.
	LookupParallelism int `mapstructure:"lookup_parallelism"`
	// WarnOnFullGrossMargin logs when a 100% gross margin triggers the doubling fallback.
	WarnOnFullGrossMargin bool `mapstructure:"warn_on_full_gross_margin"`
}

func DefaultRatingPolicy() RatingPolicy {
	return RatingPolicy{
		LookupParallelism:     1,
		WarnOnFullGrossMargin: true,
	}
}

type RatingPolicyHolder struct {
	current atomic.Value // holds RatingPolicy
}

// NewRatingPolicyHolder loads rating.yml, falling back to cfg when the file is absent,
// and keeps the policy current as the file changes.
func NewRatingPolicyHolder(cfg Config) (*RatingPolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("rating")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/ratecard")
	v.AddConfigPath(".")

	v.SetEnvPrefix("RATECARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultRatingPolicy()
	if cfg.RatingLookupParallelism > 0 {
		defaults.LookupParallelism = cfg.RatingLookupParallelism
	}
	v.SetDefault("rating.lookup_parallelism", defaults.LookupParallelism)
	v.SetDefault("rating.warn_on_full_gross_margin", defaults.WarnOnFullGrossMargin)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	var policy RatingPolicy
	if err := v.UnmarshalKey("rating", &policy); err != nil {
		return nil, err
	}
	if err := validateRatingPolicy(policy); err != nil {
		return nil, err
	}

	holder := NewStaticRatingPolicyHolder(policy)
	if !fileFound {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated RatingPolicy
		if err := v.UnmarshalKey("rating", &updated); err != nil {
			log.Printf("[rating-policy] reload failed: %v", err)
			return
		}
		if err := validateRatingPolicy(updated); err != nil {
			log.Printf("[rating-policy] invalid policy ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[rating-policy] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticRatingPolicyHolder returns a holder that never reloads.
func NewStaticRatingPolicyHolder(policy RatingPolicy) *RatingPolicyHolder {
	holder := &RatingPolicyHolder{}
	holder.current.Store(policy)
	return holder
}

// Get returns the current policy. A nil holder yields the defaults.
func (h *RatingPolicyHolder) Get() RatingPolicy {
	if h == nil {
		return DefaultRatingPolicy()
	}
	return h.current.Load().(RatingPolicy)
}

func validateRatingPolicy(policy RatingPolicy) error {
	if policy.LookupParallelism < 1 {
		return errors.New("rating.lookup_parallelism must be at least 1")
	}
	return nil
}
