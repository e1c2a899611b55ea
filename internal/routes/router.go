package routes

import (
	"github.com/gin-gonic/gin"
	"legal-roundtable/internal/config"
	"legal-roundtable/internal/middlewares"
)

func InitRouter(engine *gin.Engine, controllerRegistry map[int]any) {
	InitMiddleware(engine)

	RegisterProtectedRoutes(engine, controllerRegistry)
	RegisterPublicRoutes(engine, controllerRegistry)
	RegisterUtilityRoutes(engine)
}

func InitMiddleware(engine *gin.Engine) {
	engine.Use(middlewares.CORSMiddleware(config.Config().Site.AllowedOrigins))
}
