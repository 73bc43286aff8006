package router

import "github.com/gin-gonic/gin"

func (r *Router) notificationRoutes(version *gin.RouterGroup) {
	// The mail provider posts delivery events here, unauthenticated.
	version.POST("/webhooks/email-delivery", r.notificationHandler.DeliveryWebhook)

	email := version.Group("/email")
	{
		email.Use(r.jwtMw.RequireAuth())
		email.GET("/history", r.notificationHandler.EmailHistory)
	}
}
