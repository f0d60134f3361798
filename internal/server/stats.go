package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) APIBanner(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": s.cfg.AppName,
		"version": s.cfg.AppVersion,
	})
}

func (s *Server) GetStats(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	stats, err := s.dashboardSvc.Stats(c.Request.Context(), uid)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (s *Server) GetPredictions(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	predictions, err := s.insightsSvc.Predictions(c.Request.Context(), uid)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, predictions)
}
