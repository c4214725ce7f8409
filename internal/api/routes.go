package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.POST("/estimate", handler.Estimate)
		api.POST("/comparables", handler.MatchComparables)
		api.GET("/areas/:geo_id/summary", handler.GetAreaSummary)
		api.POST("/rollup/run", handler.RunRollup)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
