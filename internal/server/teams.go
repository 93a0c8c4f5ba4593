package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	ratingdomain "github.com/smallbiznis/ratecard/internal/rating/domain"
)

type teamRatesResponse struct {
	TeamID   snowflake.ID          `json:"team_id"`
	RateType ratingdomain.RateType `json:"rate_type"`
	Rates    ratingdomain.Rates    `json:"rates"`
}

type teamRateResponse struct {
	TeamID     snowflake.ID                `json:"team_id"`
	RateType   ratingdomain.RateType       `json:"rate_type"`
	Adjustment ratingdomain.AdjustmentType `json:"adjustment"`
	Rate       decimal.Decimal             `json:"rate"`
}

// GetTeamRates returns the utilization-weighted rate of the team's current members
// with markup and gross margin applied.
func (s *Server) GetTeamRates(c *gin.Context) {
	teamID, err := pathID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	rateType, err := rateTypeQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rates, err := s.ratingSvc.CalculateRates(c.Request.Context(), teamID, rateType)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": teamRatesResponse{
		TeamID:   teamID,
		RateType: rateType,
		Rates:    rates,
	}})
}

// GetTeamRate returns the unweighted sum over every profile linked to the team.
func (s *Server) GetTeamRate(c *gin.Context) {
	teamID, err := pathID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	rateType, err := rateTypeQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	adjustment, err := adjustmentQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rate, err := s.ratingSvc.CalculateRate(c.Request.Context(), teamID, rateType, adjustment)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": teamRateResponse{
		TeamID:     teamID,
		RateType:   rateType,
		Adjustment: adjustment,
		Rate:       rate,
	}})
}

func (s *Server) GetTeamMetrics(c *gin.Context) {
	teamID, err := pathID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	metrics, err := s.ratingSvc.CalculateMetrics(c.Request.Context(), teamID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": metrics})
}
