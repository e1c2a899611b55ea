package sitemap

import (
	"fmt"
	"github.com/gin-gonic/gin"
	"legal-roundtable/internal/api"
	"legal-roundtable/internal/environment"
	"net/http"
	"os"
)

// Api defines the endpoints serving and regenerating the sitemap.
type Api interface {
	// GetSitemap regenerates the sitemap and returns it.
	GetSitemap(c *gin.Context)

	// PostSitemap regenerates the sitemap.
	PostSitemap(c *gin.Context)

	// ServeSitemapFile returns the last generated sitemap file.
	ServeSitemapFile(c *gin.Context)

	GetRobots(c *gin.Context)
}

type Controller struct {
	*environment.Env
	Generator *Generator
}

// ensure Controller implements Api
var _ Api = &Controller{}

// GetSitemap
//
// @ID getSitemap
// @Summary Generate and return the sitemap
// @Tags sitemap
// @Router /api/sitemap [get]
// @Produce xml
// @Success 200
// @Failure 500
func (sc *Controller) GetSitemap(c *gin.Context) {
	out, err := sc.Generator.Generate(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.ScriptErrorResponse{Error: "Failed to generate sitemap"})
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "application/xml", out)
}

// PostSitemap
//
// @ID postSitemap
// @Summary Generate the sitemap
// @Tags sitemap
// @Router /api/sitemap [post]
// @Success 200
// @Failure 500
func (sc *Controller) PostSitemap(c *gin.Context) {
	if _, err := sc.Generator.Generate(c.Request.Context()); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.ScriptErrorResponse{Error: "Failed to generate sitemap"})
		return
	}

	c.JSON(http.StatusOK, api.ScriptResponse{Success: true, Message: "Sitemap generated successfully"})
}

// ServeSitemapFile generates the file first if it does not exist yet.
func (sc *Controller) ServeSitemapFile(c *gin.Context) {
	if _, err := os.Stat(sc.Generator.Path()); err != nil {
		sc.GetSitemap(c)
		return
	}

	c.Header("Content-Type", "application/xml")
	c.File(sc.Generator.Path())
}

func (sc *Controller) GetRobots(c *gin.Context) {
	robots := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /admin/\n\nSitemap: %s/sitemap.xml\n", sc.Generator.BaseUrl)
	c.String(http.StatusOK, robots)
}
