package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ratingdomain "github.com/smallbiznis/ratecard/internal/rating/domain"
)

// QuoteProfile rates an unsaved cost structure.
func (s *Server) QuoteProfile(c *gin.Context) {
	var req ratingdomain.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ratingSvc.Quote(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// QuoteAdjustment carries an inline rate through markup and gross margin.
func (s *Server) QuoteAdjustment(c *gin.Context) {
	var req ratingdomain.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rates, err := s.ratingSvc.Adjust(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rates})
}
