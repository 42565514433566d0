package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Intake *IntakeHandler
	Embed  *EmbedHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/intake", deps.Intake.Submit)
	api.GET("/intake", deps.Intake.List)
	api.GET("/intake/:id", deps.Intake.Get)

	api.POST("/embed", deps.Embed.Embed)
	api.GET("/agent/status", deps.Embed.Status)

	api.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
