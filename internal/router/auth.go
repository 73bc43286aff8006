package router

import "github.com/gin-gonic/gin"

func (r *Router) authRoutes(version *gin.RouterGroup) {
	auth := version.Group("/auth")
	{
		// Public routes (no authentication required)
		auth.POST("/register", r.authHandler.Register)
		auth.POST("/login", r.authHandler.Login)
		auth.POST("/refresh", r.authHandler.RefreshToken)
		auth.GET("/verify-account/:verification_code", r.accountHandler.VerifyAccount)
		auth.POST("/resend-verification", r.accountHandler.ResendVerification)
		auth.POST("/password-reset", r.passwordHandler.RequestReset)
		auth.POST("/password-reset/confirm", r.passwordHandler.ConfirmReset)
		auth.POST("/set-password", r.passwordHandler.Set)
		auth.POST("/send-delete-request-email", r.accountHandler.SendDeleteEmail)

		// Deletion confirmation arrives from the mailed link
		auth.DELETE("/delete-account-request", r.accountHandler.ConfirmDeletion)

		// Protected routes (JWT authentication required)
		protected := auth.Group("")
		protected.Use(r.jwtMw.RequireAuth())
		{
			protected.POST("/logout", r.authHandler.Logout)
			protected.PUT("/password", r.passwordHandler.Change)
			protected.POST("/email-change", r.emailChangeHandler.Request)
			protected.GET("/email-change/confirm", r.emailChangeHandler.Confirm)
			protected.DELETE("/delete-account", r.accountHandler.RequestDeletion)
		}
	}
}
