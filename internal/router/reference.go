package router

import "github.com/gin-gonic/gin"

// referenceRoutes exposes the location and catalog read endpoints.
func (r *Router) referenceRoutes(version *gin.RouterGroup) {
	locations := version.Group("/locations")
	{
		locations.GET("/countries", r.locationHandler.Countries)
		locations.GET("/countries/:country_id/states", r.locationHandler.States)
		locations.GET("/states/:state_id/cities", r.locationHandler.Cities)
	}

	catalog := version.Group("/catalog")
	{
		catalog.GET("/categories", r.catalogHandler.Categories)
		catalog.GET("/manufacturers", r.catalogHandler.Manufacturers)
		catalog.GET("/products", r.catalogHandler.Products)
		catalog.GET("/products/:slug", r.catalogHandler.ProductBySlug)
	}
}
