package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetProfileRates(c *gin.Context) {
	profileID, err := pathID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rates, err := s.ratingSvc.ProfileRates(c.Request.Context(), profileID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rates})
}

func (s *Server) GetProfileHistory(c *gin.Context) {
	profileID, err := pathID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	history, err := s.ratingSvc.ProfileHistoryRates(c.Request.Context(), profileID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": history})
}
