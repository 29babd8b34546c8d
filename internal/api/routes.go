package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RouterOptions configures the middleware stack of NewRouter.
type RouterOptions struct {
	CORSOrigins  []string
	MaxBodyBytes int64
}

// NewRouter builds the gin engine with logging, CORS and body limits applied.
func NewRouter(handler *Handler, logger *logrus.Logger, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(logger))
	router.Use(cors.New(corsConfig(opts.CORSOrigins)))
	router.Use(BodyLimit(opts.MaxBodyBytes))

	SetupRoutes(router, handler)
	return router
}

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.POST("/imoti/analyze", handler.AnalyzeListing)
		api.GET("/analytics/properties", handler.GetPropertyAnalytics)

		api.GET("/properties", handler.GetAllProperties)
		api.GET("/properties/:id", handler.GetProperty)
		api.POST("/properties", handler.CreateProperty)
		api.PATCH("/properties/:id", handler.UpdateProperty)
		api.DELETE("/properties/:id", handler.DeleteProperty)
	}

	router.NoRoute(handler.NotFound)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", requestIDHeader)
	cfg.ExposeHeaders = []string{requestIDHeader}

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
