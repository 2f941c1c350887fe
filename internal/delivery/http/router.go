package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inazuma-gg/ladder-backend/internal/delivery/http/handler"
	"github.com/inazuma-gg/ladder-backend/internal/delivery/http/middleware"
)

// NewRouter builds the gin engine with all routes wired.
func NewRouter(
	jwtSecret string,
	queueHandler *handler.QueueHandler,
	matchHandler *handler.MatchHandler,
	ladderHandler *handler.LadderHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(jwtSecret))
	{
		queueGroup := api.Group("/queue")
		{
			queueGroup.POST("", queueHandler.Join)
			queueGroup.DELETE("", queueHandler.Leave)
			queueGroup.GET("/status", queueHandler.Status)
			queueGroup.PUT("/heartbeat", queueHandler.Heartbeat)
		}

		matches := api.Group("/matches")
		{
			matches.GET("", matchHandler.List)
			matches.GET("/:id", matchHandler.Get)
			matches.GET("/:id/preview", matchHandler.Preview)
			matches.POST("/:id/result", matchHandler.SubmitResult)
			matches.POST("/:id/dispute", matchHandler.FileDispute)
		}

		api.GET("/ladder", ladderHandler.Top)

		profiles := api.Group("/profiles")
		{
			profiles.GET("/me", ladderHandler.Me)
			profiles.GET("/:id", ladderHandler.Get)
		}
	}

	return router
}
