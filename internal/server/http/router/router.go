package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/marketclient/internal/config"
	"github.com/polkiloo/marketclient/internal/domain/model"
	"github.com/polkiloo/marketclient/internal/server/http/handlers"
	"github.com/polkiloo/marketclient/internal/server/http/middleware"
)

const navigationEventsPath = "/api/navigation/events"

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.ClientFacade, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{navigationEventsPath})))

	sessionHandler := handlers.NewSessionHandler(facade)
	cartHandler := handlers.NewCartHandler(facade)
	locationHandler := handlers.NewLocationHandler(facade)
	navigationHandler := handlers.NewNavigationHandler(facade)

	api := engine.Group("/api")
	api.Use(middleware.BridgeAuth(cfg.BridgeToken))

	session := api.Group("/session")
	session.GET("", sessionHandler.Get)
	session.POST("/sign-in", sessionHandler.SignIn)
	session.POST("/sign-up", sessionHandler.SignUp)
	session.POST("/sign-out", sessionHandler.SignOut)
	session.POST("/profile", sessionHandler.CompleteProfile)

	nav := api.Group("/navigation")
	nav.GET("", navigationHandler.Current)
	nav.GET("/events", navigationHandler.Events)
	nav.GET("/guard/:role", navigationHandler.Guard)

	cart := api.Group("/cart")
	cart.Use(middleware.RoleGuard(facade, model.RoleUser))
	cart.GET("", cartHandler.Get)
	cart.DELETE("", cartHandler.Clear)
	cart.POST("/items", cartHandler.Add)
	cart.PUT("/items/:productID", cartHandler.Update)
	cart.DELETE("/items/:productID", cartHandler.Remove)
	cart.POST("/checkout-complete", cartHandler.CheckoutCompleted)

	location := api.Group("/location")
	location.GET("", locationHandler.Get)
	location.POST("/resolve", locationHandler.Resolve)
	location.PUT("/city", locationHandler.SelectCity)
	location.DELETE("/city", locationHandler.ClearCity)

	return engine
}
