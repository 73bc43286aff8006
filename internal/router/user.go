package router

import "github.com/gin-gonic/gin"

func (r *Router) userRoutes(version *gin.RouterGroup) {
	users := version.Group("/users")
	{
		// All user routes require JWT authentication
		users.Use(r.jwtMw.RequireAuth())
		{
			// Get all users with pagination and search
			users.GET("", r.userHandler.GetAll)

			// Authenticated user's own profile
			users.GET("/me", r.userHandler.Me)
			users.PUT("/me", r.userHandler.Update)

			// Lookup by email, optionally scoped to a role
			users.GET("/by-email", r.userHandler.GetByEmail)

			// Login sessions of the authenticated user
			users.GET("/sessions", r.sessionHandler.List)

			// Get user by ID
			users.GET("/:id", r.userHandler.GetByID)
		}
	}
}
