package routes

import (
	"github.com/gin-gonic/gin"
	"legal-roundtable/internal/article"
	"legal-roundtable/internal/auth"
	"legal-roundtable/internal/author"
	"legal-roundtable/internal/constants"
	"legal-roundtable/internal/sitemap"
	"legal-roundtable/internal/viewtracker"
)

func RegisterPublicRoutes(r *gin.Engine, controllerRegistry map[int]any) {
	// articles
	articleApi := controllerRegistry[constants.Article].(article.Api)
	r.GET("/articles", articleApi.ListArticles)
	r.GET("/articles/featured", articleApi.ListFeaturedArticles)
	r.GET("/articles/category/:category", articleApi.ListArticlesByCategory)
	r.GET("/articles/:id", articleApi.GetArticlePage)
	r.POST("/articles/active-heading", articleApi.ActiveHeading)

	// authors
	authorApi := controllerRegistry[constants.Author].(author.Api)
	r.GET("/authors", authorApi.ListAuthors)
	r.GET("/authors/:id", authorApi.GetAuthorPage)

	// auth
	authApi := controllerRegistry[constants.Auth].(auth.Api)
	r.POST("/auth/login", authApi.Login)
	r.POST("/auth/refresh", authApi.RefreshToken)
	r.POST("/api/check-admin", authApi.CheckAdmin)

	// view counting
	viewTrackerApi := controllerRegistry[constants.ViewTracker].(viewtracker.Api)
	r.POST("/api/articles/increment-view", viewTrackerApi.IncrementView)
	r.POST("/api/articles/:id/view-session", viewTrackerApi.MountSession)
	r.POST("/api/articles/:id/view-session/visibility", viewTrackerApi.ChangeVisibility)
	r.POST("/api/articles/:id/view-session/unload", viewTrackerApi.UnloadSession)
	r.DELETE("/api/articles/:id/view-session", viewTrackerApi.UnmountSession)

	// sitemap
	sitemapApi := controllerRegistry[constants.Sitemap].(sitemap.Api)
	r.GET("/api/sitemap", sitemapApi.GetSitemap)
	r.POST("/api/sitemap", sitemapApi.PostSitemap)
	r.GET("/sitemap.xml", sitemapApi.ServeSitemapFile)
	r.GET("/robots.txt", sitemapApi.GetRobots)
}
