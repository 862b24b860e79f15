package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/jengzang/ecogo-motion/internal/config"
	"github.com/jengzang/ecogo-motion/internal/handler"
	"github.com/jengzang/ecogo-motion/internal/middleware"
	"github.com/jengzang/ecogo-motion/internal/service"
)

// Services groups what the handlers are built on
type Services struct {
	Detection  *service.DetectionService
	Navigation *service.NavigationService
	Routes     *service.RouteService
	History    *service.HistoryService
	Limiter    *middleware.RateLimiter
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, svc Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger("/health"))

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "Content-Encoding", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithDecompressFn(gzip.DefaultDecompressHandle)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"message":     "Motion API is running",
			"detections":  svc.Detection.Count(),
			"navigations": svc.Navigation.Count(),
		})
	})

	auth := middleware.NewAuthenticator(cfg.Server.JWTSecret, cfg.Server.JWTIssuer)

	api := r.Group("/api/v1")
	api.Use(middleware.Auth(auth, cfg.Server.AuthRequired))
	if svc.Limiter != nil {
		api.Use(middleware.RateLimit(svc.Limiter))
	}

	detectionHandler := handler.NewDetectionHandler(svc.Detection)
	navigationHandler := handler.NewNavigationHandler(svc.Navigation)
	routeHandler := handler.NewRouteHandler(svc.Routes)

	// 交通方式识别
	detections := api.Group("/detections")
	{
		detections.POST("", detectionHandler.CreateSession)
		detections.DELETE("/:id", detectionHandler.StopSession)
		detections.POST("/:id/readings", detectionHandler.PushReadings)
		detections.POST("/:id/fixes", detectionHandler.PushFix)
		detections.GET("/:id/prediction", detectionHandler.GetPrediction)
	}

	// 路线导航
	navigations := api.Group("/navigations")
	{
		navigations.POST("", navigationHandler.CreateSession)
		navigations.PUT("/:id/route", navigationHandler.SetRoute)
		navigations.POST("/:id/start", navigationHandler.Start)
		navigations.POST("/:id/location", navigationHandler.UpdateLocation)
		navigations.POST("/:id/stop", navigationHandler.Stop)
		navigations.DELETE("/:id", navigationHandler.Delete)
		navigations.GET("/:id/progress", navigationHandler.GetProgress)
		navigations.GET("/:id/geojson", navigationHandler.GetGeoJSON)
	}

	routes := api.Group("/routes")
	{
		routes.POST("/simplify", routeHandler.Simplify)
		routes.POST("/stats", routeHandler.Stats)
	}

	api.POST("/features/classify", detectionHandler.Classify)

	// 历史记录
	if svc.History != nil {
		historyHandler := handler.NewHistoryHandler(svc.History)
		detections.GET("/:id/history", historyHandler.GetDetectionHistory)
		navigations.GET("/:id/history", historyHandler.GetNavigationHistory)
		navigations.DELETE("/:id/history", historyHandler.DeleteNavigationHistory)
	}

	return r
}
