package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"leadcrm/internal/handlers"
	"leadcrm/internal/middleware"
)

type Handlers struct {
	Root  *handlers.RootHandler
	Auth  *handlers.AuthHandler
	Leads *handlers.LeadHandler
}

// SetupRoutes mounts the API on r. Swagger UI is served only when swagger
// is true.
func SetupRoutes(r *gin.Engine, h Handlers, tokens middleware.TokenVerifier, swagger bool) *gin.Engine {
	// ---- public
	r.GET("/", h.Root.Welcome)
	r.GET("/healthz", h.Root.Health)
	if swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	auth := r.Group("/auth")
	{
		auth.POST("/signup", h.Auth.Signup)
		auth.POST("/login", h.Auth.Login)
		auth.GET("/me", middleware.AuthMiddleware(tokens), h.Auth.Me)
	}

	// ---- protected
	leads := r.Group("/leads")
	leads.Use(middleware.AuthMiddleware(tokens))
	leads.Use(middleware.ReadOnlyGuard())
	{
		leads.GET("", h.Leads.List)
		leads.GET("/export", h.Leads.Export)
		leads.GET("/:id", h.Leads.Get)
		leads.POST("", h.Leads.Create)
		leads.PUT("/:id", h.Leads.Update)
		leads.DELETE("/:id", h.Leads.Delete)
	}

	return r
}
