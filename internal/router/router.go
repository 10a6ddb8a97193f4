package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pomodoro/pomod/internal/handler"
	"pomodoro/pomod/internal/middleware"
	"pomodoro/pomod/internal/service"
)

func New(
	authService *service.AuthService,
	pomodoroHandler *handler.PomodoroHandler,
	corsOrigins []string,
) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	pomodoro := api.Group("/session")
	pomodoro.Use(middleware.Auth(authService))
	pomodoro.GET("/state", pomodoroHandler.GetState)
	pomodoro.POST("/start", pomodoroHandler.Start)
	pomodoro.POST("/stop", pomodoroHandler.Stop)
	pomodoro.GET("/events", pomodoroHandler.Events)

	return engine
}
