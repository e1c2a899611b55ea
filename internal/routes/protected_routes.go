package routes

import (
	"github.com/gin-gonic/gin"
	"legal-roundtable/internal/article"
	"legal-roundtable/internal/author"
	"legal-roundtable/internal/config"
	"legal-roundtable/internal/constants"
	"legal-roundtable/internal/middlewares"
)

func RegisterProtectedRoutes(r *gin.Engine, controllerRegistry map[int]any) {

	adminGroup := r.Group("")

	adminGroup.Use(middlewares.AuthHandler(), middlewares.AdminOnly(config.AdminEmails))
	{
		// articles
		articleApi := controllerRegistry[constants.Article].(article.Api)
		adminGroup.POST("/admin/articles", articleApi.SubmitArticle)
		adminGroup.PATCH("/admin/articles/:id", articleApi.EditArticle)
		adminGroup.DELETE("/admin/articles/:id", articleApi.RemoveArticle)
		adminGroup.POST("/admin/markdown/preview", articleApi.PreviewMarkdown)
		adminGroup.POST("/api/articles/:id/views", articleApi.RecountViews)

		// authors
		authorApi := controllerRegistry[constants.Author].(author.Api)
		adminGroup.PUT("/admin/profile", authorApi.SaveProfile)
	}
}
