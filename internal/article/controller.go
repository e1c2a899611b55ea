package article

import (
	"errors"
	"github.com/gin-gonic/gin"
	"github.com/go-ozzo/ozzo-validation/v4"
	"io"
	"legal-roundtable/internal/api"
	"legal-roundtable/internal/environment"
	"legal-roundtable/internal/logging"
	"legal-roundtable/internal/markdown"
	"legal-roundtable/internal/middlewares"
	"legal-roundtable/internal/models"
	"net/http"
	"strconv"
)

// Api defines the HTTP endpoints for reading and editing articles.
type Api interface {
	ListArticles(c *gin.Context)
	ListFeaturedArticles(c *gin.Context)
	ListArticlesByCategory(c *gin.Context)

	// GetArticlePage returns everything an article page shows.
	GetArticlePage(c *gin.Context)

	SubmitArticle(c *gin.Context)
	EditArticle(c *gin.Context)
	RemoveArticle(c *gin.Context)

	// PreviewMarkdown renders an unsaved body for the editor.
	PreviewMarkdown(c *gin.Context)
	ActiveHeading(c *gin.Context)

	// RecountViews increments the view counter of the article in the path without any session check.
	RecountViews(c *gin.Context)
}

type Controller struct {
	*environment.Env
	*Service
	Renderer *markdown.Renderer
	Site     Site
}

// ensure Controller implements Api
var _ Api = &Controller{}

// ArticlePage is the payload of an article page.
type ArticlePage struct {
	Article        ArticleWithAuthor   `json:"article"`
	Category       models.CategoryInfo `json:"category"`
	Headline       string              `json:"headline"`
	HTML           string              `json:"html"`
	Toc            []markdown.TocItem  `json:"toc"`
	Related        []ArticleWithAuthor `json:"related"`
	StructuredData map[string]any      `json:"structuredData"`
}

// CategoryPage lists the latest articles of one category.
type CategoryPage struct {
	Category models.CategoryInfo  `json:"category"`
	Articles []ArticleWithAuthor `json:"articles"`
}

// PreviewRequest is the data of a Markdown preview.
type PreviewRequest struct {
	Content string `json:"content"`
}

// ActiveHeadingRequest carries the measured heading offsets of a page and its scroll position.
type ActiveHeadingRequest struct {
	Headings []markdown.HeadingOffset `json:"headings"`
	ScrollY  float64                  `json:"scrollY"`
	Offset   *float64                 `json:"offset"`
}

// ListArticles returns the latest articles with their authors.
//
// @ID listArticles
// @Summary List the latest articles
// @Tags articles
// @Router /articles [get]
// @Param limit query int false "Maximum number of articles (1-100, default 20)"
// @Success 200 {object} api.RestJsonResponse{data=[]article.ArticleWithAuthor}
// @Failure 500 {object} api.RestJsonErrorResponse
func (ac *Controller) ListArticles(c *gin.Context) {
	ctx := c.Request.Context()

	articles, err := ac.ListLatest(ctx, queryLimit(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	ac.respondWithAuthors(c, articles)
}

// ListFeaturedArticles returns the latest featured articles with their authors.
//
// @ID listFeaturedArticles
// @Summary List featured articles
// @Tags articles
// @Router /articles/featured [get]
// @Param limit query int false "Maximum number of articles (1-100, default 5)"
// @Success 200 {object} api.RestJsonResponse{data=[]article.ArticleWithAuthor}
// @Failure 500 {object} api.RestJsonErrorResponse
func (ac *Controller) ListFeaturedArticles(c *gin.Context) {
	ctx := c.Request.Context()

	articles, err := ac.ListFeatured(ctx, queryLimit(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	ac.respondWithAuthors(c, articles)
}

// ListArticlesByCategory returns the category texts and its latest articles.
//
// @ID listArticlesByCategory
// @Summary List the articles of a category
// @Tags articles
// @Router /articles/category/{category} [get]
// @Param category path string true "Category slug"
// @Success 200 {object} api.RestJsonResponse{data=article.CategoryPage}
// @Failure 404 {object} api.RestJsonErrorResponse
// @Failure 500 {object} api.RestJsonErrorResponse
func (ac *Controller) ListArticlesByCategory(c *gin.Context) {
	ctx := c.Request.Context()

	category := models.Category(c.Param("category"))
	info, ok := category.Info()
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, api.NewErrorResponsef("unknown category '%s'", category))
		return
	}

	articles, err := ac.ListByCategory(ctx, category, queryLimit(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	withAuthors, err := ac.AttachAuthors(ctx, articles)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", CategoryPage{
		Category: info,
		Articles: withAuthors,
	}))
}

// GetArticlePage returns the article, its author, the rendered body, the table of contents,
// related articles and the structured data of the page.
//
// @ID getArticlePage
// @Summary Get an article page
// @Tags articles
// @Router /articles/{id} [get]
// @Param id path string true "Article ID"
// @Success 200 {object} api.RestJsonResponse{data=article.ArticlePage}
// @Failure 404 {object} api.RestJsonErrorResponse
// @Failure 500 {object} api.RestJsonErrorResponse
func (ac *Controller) GetArticlePage(c *gin.Context) {
	ctx := c.Request.Context()

	id := c.Param("id")
	article, found, err := ac.GetArticleWithAuthor(ctx, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, api.NewErrorResponse(ErrNotFound.Error()))
		return
	}

	page, err := ac.Renderer.PreparePage(article.Content, article.Excerpt, article.Title)
	if err != nil {
		ac.LogError(logging.GetLogTypeArticle(id), err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("failed to render article"))
		return
	}

	related, err := ac.RelatedArticles(ctx, article.Article, RelatedCount)
	if err != nil {
		ac.LogWarnf(logging.GetLogTypeArticle(id), "related articles left out: %v", err)
		related = []ArticleWithAuthor{}
	}

	info, _ := article.Category.Info()
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", ArticlePage{
		Article:        article,
		Category:       info,
		Headline:       page.Headline,
		HTML:           page.HTML,
		Toc:            page.Toc,
		Related:        related,
		StructuredData: StructuredData(ac.Site, article, page.Headline),
	}))
}

// SubmitArticle creates an article owned by the signed-in author.
//
// @ID submitArticle
// @Summary Create an article
// @Tags admin
// @Router /admin/articles [post]
// @Param data body api.RestJsonRequest{data=article.ArticleForm} true "The article"
// @Success 201 {object} api.RestJsonResponse{data=models.Article}
// @Failure 401 {object} api.RestJsonErrorResponse
// @Failure 422 {object} api.RestJsonErrorResponse
// @Failure 500 {object} api.RestJsonErrorResponse
func (ac *Controller) SubmitArticle(c *gin.Context) {
	ctx := c.Request.Context()

	claims, ok := middlewares.ClaimsFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, api.NewErrorResponse("not signed in"))
		return
	}

	var form ArticleForm
	if !ac.decodeData(c, &form) {
		return
	}

	article, err := ac.Create(ctx, claims.UserId, form)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.NewGenericResponse(api.Success, "article created", article))
}

// EditArticle applies a partial update to an article of the signed-in author.
//
// @ID editArticle
// @Summary Update an article
// @Tags admin
// @Router /admin/articles/{id} [patch]
// @Param id path string true "Article ID"
// @Param data body api.RestJsonRequest{data=article.ArticlePatch} true "The changed fields"
// @Success 200 {object} api.RestJsonResponse{data=models.Article}
// @Failure 403 {object} api.RestJsonErrorResponse
// @Failure 404 {object} api.RestJsonErrorResponse
// @Failure 422 {object} api.RestJsonErrorResponse
// @Failure 500 {object} api.RestJsonErrorResponse
func (ac *Controller) EditArticle(c *gin.Context) {
	ctx := c.Request.Context()

	claims, ok := middlewares.ClaimsFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, api.NewErrorResponse("not signed in"))
		return
	}

	var patch ArticlePatch
	if !ac.decodeData(c, &patch) {
		return
	}

	article, err := ac.Update(ctx, claims.UserId, c.Param("id"), patch)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "article updated", article))
}

// RemoveArticle deletes an article of the signed-in author.
//
// @ID removeArticle
// @Summary Delete an article
// @Tags admin
// @Router /admin/articles/{id} [delete]
// @Param id path string true "Article ID"
// @Success 204
// @Failure 403 {object} api.RestJsonErrorResponse
// @Failure 404 {object} api.RestJsonErrorResponse
// @Failure 500 {object} api.RestJsonErrorResponse
func (ac *Controller) RemoveArticle(c *gin.Context) {
	ctx := c.Request.Context()

	claims, ok := middlewares.ClaimsFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, api.NewErrorResponse("not signed in"))
		return
	}

	if err := ac.Delete(ctx, claims.UserId, c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PreviewMarkdown renders a body the way an article page would.
//
// @ID previewMarkdown
// @Summary Render Markdown
// @Tags admin
// @Router /admin/markdown/preview [post]
// @Param data body api.RestJsonRequest{data=article.PreviewRequest} true "The Markdown content"
// @Success 200 {object} api.RestJsonResponse{data=markdown.Page}
// @Failure 422 {object} api.RestJsonErrorResponse
func (ac *Controller) PreviewMarkdown(c *gin.Context) {
	var request PreviewRequest
	if !ac.decodeData(c, &request) {
		return
	}

	page, err := ac.Renderer.PreparePage(request.Content, "", "")
	if err != nil {
		ac.LogError(logging.GetLogType(logging.TypeArticle), err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponsef("error rendering markdown: %v", err))
		return
	}
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", page))
}

// ActiveHeading resolves the table of contents entry to highlight for a scroll position.
//
// @ID activeHeading
// @Summary Pick the active heading
// @Tags articles
// @Router /articles/active-heading [post]
// @Param data body api.RestJsonRequest{data=article.ActiveHeadingRequest} true "The heading offsets and scroll position"
// @Success 200 {object} api.RestJsonResponse{data=string}
// @Failure 422 {object} api.RestJsonErrorResponse
func (ac *Controller) ActiveHeading(c *gin.Context) {
	var request ActiveHeadingRequest
	if !ac.decodeData(c, &request) {
		return
	}

	offset := float64(markdown.DefaultScrollOffset)
	if request.Offset != nil {
		offset = *request.Offset
	}

	id, _ := markdown.ActiveHeading(request.Headings, request.ScrollY, offset)
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", gin.H{"id": id}))
}

// RecountViews keeps the response shape of the page scripts: {"success": true} or {"error": "..."}.
//
// @ID recountViews
// @Summary Increment the view counter
// @Tags admin
// @Router /api/articles/{id}/views [post]
// @Param id path string true "Article ID"
// @Success 200
// @Failure 400
// @Failure 404
// @Failure 500
func (ac *Controller) RecountViews(c *gin.Context) {
	ctx := c.Request.Context()

	id := c.Param("id")
	if len(id) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.ScriptErrorResponse{Error: "Article ID is required"})
		return
	}

	err := ac.IncrementViews(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, api.ScriptErrorResponse{Error: "Article not found"})
	case err != nil:
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.ScriptErrorResponse{Error: "Failed to increment views"})
	default:
		c.JSON(http.StatusOK, api.ScriptResponse{Success: true})
	}
}

func (ac *Controller) respondWithAuthors(c *gin.Context, articles []models.Article) {
	withAuthors, err := ac.AttachAuthors(c.Request.Context(), articles)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", withAuthors))
}

// decodeData reads a {"data": {...}} body into output; it answers the request itself on failure.
func (ac *Controller) decodeData(c *gin.Context, output any) bool {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		ac.LogErrorf(logging.GetLogType(logging.TypeArticle), "error reading request body: %v", err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponse("error reading request body"))
		return false
	}

	request := api.GenericRequest{}
	if err = request.Load(body); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponsef("error loading request data: %v", err))
		return false
	}

	if err = request.DecodeDataTo(output); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponsef("error decoding request data: %v", err))
		return false
	}
	return true
}

// abortWithError maps service errors to status codes.
func abortWithError(c *gin.Context, err error) {
	var validationErrors validation.Errors
	var operationErr *OperationError

	switch {
	case errors.As(err, &validationErrors):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewValidationErrorResponse("validation failed", validationErrors))
	case errors.Is(err, ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, api.NewErrorResponse(err.Error()))
	case errors.Is(err, ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, api.NewErrorResponse(err.Error()))
	case errors.As(err, &operationErr):
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponsef("%s, please try again later", operationErr))
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("unexpected error, please try again later"))
	}
}

// queryLimit reads the limit query parameter; a missing or malformed value yields 0, the service default.
func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return limit
}
