package author

import (
	"errors"
	"github.com/gin-gonic/gin"
	"github.com/go-ozzo/ozzo-validation/v4"
	"io"
	"legal-roundtable/internal/api"
	"legal-roundtable/internal/article"
	"legal-roundtable/internal/environment"
	"legal-roundtable/internal/logging"
	"legal-roundtable/internal/middlewares"
	"legal-roundtable/internal/models"
	"net/http"
)

// Api defines the HTTP endpoints for author profiles.
type Api interface {
	ListAuthors(c *gin.Context)
	GetAuthorPage(c *gin.Context)

	// SaveProfile creates or updates the profile of the signed-in author.
	SaveProfile(c *gin.Context)
}

type Controller struct {
	*environment.Env
	Service *Service
}

// ensure Controller implements Api
var _ Api = &Controller{}

// AuthorPage is an author profile with the author's latest articles.
type AuthorPage struct {
	Author   models.Author    `json:"author"`
	Articles []models.Article `json:"articles"`
}

// ListAuthors returns all authors ordered by name.
//
// @ID listAuthors
// @Summary List authors
// @Tags authors
// @Router /authors [get]
// @Success 200 {object} api.RestJsonResponse{data=[]models.Author}
// @Failure 500 {object} api.RestJsonErrorResponse
func (ac *Controller) ListAuthors(c *gin.Context) {
	authors, err := ac.Service.ListAuthors(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponsef("%v, please try again later", err))
		return
	}
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", authors))
}

// GetAuthorPage returns the profile and the latest articles of an author.
//
// @ID getAuthorPage
// @Summary Get an author page
// @Tags authors
// @Router /authors/{id} [get]
// @Param id path string true "Author ID"
// @Success 200 {object} api.RestJsonResponse{data=author.AuthorPage}
// @Failure 404 {object} api.RestJsonErrorResponse
// @Failure 500 {object} api.RestJsonErrorResponse
func (ac *Controller) GetAuthorPage(c *gin.Context) {
	ctx := c.Request.Context()

	id := c.Param("id")
	author, found, err := ac.Service.GetAuthor(ctx, id)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponsef("%v, please try again later", err))
		return
	}
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, api.NewErrorResponse(ErrNotFound.Error()))
		return
	}

	articles, err := ac.Service.ArticlesOf(ctx, id, DefaultArticles)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponsef("%v, please try again later", err))
		return
	}

	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", AuthorPage{
		Author:   author,
		Articles: articles,
	}))
}

// SaveProfile stores the profile of the signed-in author under the author's user id.
//
// @ID saveProfile
// @Summary Save the own author profile
// @Tags admin
// @Router /admin/profile [put]
// @Param data body api.RestJsonRequest{data=author.ProfileForm} true "The profile"
// @Success 200 {object} api.RestJsonResponse{data=models.Author}
// @Failure 401 {object} api.RestJsonErrorResponse
// @Failure 422 {object} api.RestJsonErrorResponse
// @Failure 500 {object} api.RestJsonErrorResponse
func (ac *Controller) SaveProfile(c *gin.Context) {
	claims, ok := middlewares.ClaimsFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, api.NewErrorResponse("not signed in"))
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		ac.LogErrorf(logging.GetLogType(logging.TypeAuthor, claims.UserId), "error reading profile: %v", err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponse("error reading profile"))
		return
	}

	request := api.GenericRequest{}
	if err = request.Load(body); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponsef("error loading request data: %v", err))
		return
	}

	var form ProfileForm
	if err = request.DecodeDataTo(&form); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponsef("error decoding profile: %v", err))
		return
	}

	author, err := ac.Service.SaveProfile(c.Request.Context(), claims.UserId, form)

	var validationErrors validation.Errors
	var operationErr *article.OperationError
	switch {
	case errors.As(err, &validationErrors):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewValidationErrorResponse("validation failed", validationErrors))
	case errors.As(err, &operationErr):
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponsef("%v, please try again later", operationErr))
	case err != nil:
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("unexpected error, please try again later"))
	default:
		c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "profile saved", author))
	}
}
