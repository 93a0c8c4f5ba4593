package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	ratingdomain "github.com/smallbiznis/ratecard/internal/rating/domain"
)

func parseSnowflakeID(value string) (snowflake.ID, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, false
	}
	parsed, err := snowflake.ParseString(trimmed)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}

func pathID(c *gin.Context) (snowflake.ID, error) {
	id, ok := parseSnowflakeID(c.Param("id"))
	if !ok {
		return 0, newValidationError("id", "invalid_id", "invalid id")
	}
	return id, nil
}

// rateTypeQuery reads ?rate_type=, defaulting to HOURLY, and tags the request for logs and spans.
func rateTypeQuery(c *gin.Context) (ratingdomain.RateType, error) {
	raw := c.DefaultQuery("rate_type", string(ratingdomain.RateTypeHourly))
	rateType, err := ratingdomain.ParseRateType(raw)
	if err != nil {
		return "", err
	}
	c.Set("rate_type", string(rateType))
	return rateType, nil
}

func adjustmentQuery(c *gin.Context) (ratingdomain.AdjustmentType, error) {
	return ratingdomain.ParseAdjustmentType(c.DefaultQuery("adjustment", string(ratingdomain.AdjustmentRaw)))
}
