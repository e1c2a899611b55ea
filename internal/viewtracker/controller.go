package viewtracker

import (
	"encoding/json"
	"errors"
	"github.com/gin-gonic/gin"
	"github.com/samborkent/uuidv7"
	"io"
	"legal-roundtable/internal/api"
	"legal-roundtable/internal/article"
	"legal-roundtable/internal/environment"
	"legal-roundtable/internal/logging"
	"net/http"
)

// Api defines the endpoints an article page calls while it is open.
type Api interface {
	MountSession(c *gin.Context)
	ChangeVisibility(c *gin.Context)
	UnloadSession(c *gin.Context)
	UnmountSession(c *gin.Context)

	// IncrementView counts a view of the article in the body once per session.
	IncrementView(c *gin.Context)
}

type Controller struct {
	*environment.Env
	Service *Service

	// the cookie carries no Max-Age, so the view session ends with the browser session
	CookieName   string
	SecureCookie bool
}

// ensure Controller implements Api
var _ Api = &Controller{}

type visibilityRequest struct {
	Hidden bool `json:"hidden"`
}

type incrementViewRequest struct {
	ArticleId any `json:"articleId"`
}

// MountSession starts the dwell timer of an article page.
//
// @ID mountViewSession
// @Summary Start tracking an article page
// @Tags views
// @Router /api/articles/{id}/view-session [post]
// @Param id path string true "Article ID"
// @Success 200 {object} api.RestJsonResponse{data=string}
func (vc *Controller) MountSession(c *gin.Context) {
	sessionId := vc.session(c)
	state := vc.Service.Mount(sessionId, c.Param("id"))
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", state.String()))
}

// ChangeVisibility forwards a visibility change of the page; the body is {"hidden": bool}.
//
// @ID changeViewSessionVisibility
// @Summary Report a visibility change
// @Tags views
// @Router /api/articles/{id}/view-session/visibility [post]
// @Param id path string true "Article ID"
// @Success 204
// @Failure 400 {object} api.RestJsonErrorResponse
// @Failure 404 {object} api.RestJsonErrorResponse
func (vc *Controller) ChangeVisibility(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponse("error reading request body"))
		return
	}

	var request visibilityRequest
	if err = json.Unmarshal(body, &request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponsef("error unmarshaling request body: %v", err))
		return
	}

	if !vc.Service.Visibility(vc.session(c), c.Param("id"), request.Hidden) {
		c.AbortWithStatusJSON(http.StatusNotFound, api.NewErrorResponse("article page is not tracked"))
		return
	}
	c.Status(http.StatusNoContent)
}

// UnloadSession is called through a beacon when the page is left.
//
// @ID unloadViewSession
// @Summary Report that the page is left
// @Tags views
// @Router /api/articles/{id}/view-session/unload [post]
// @Param id path string true "Article ID"
// @Success 204
// @Failure 404 {object} api.RestJsonErrorResponse
func (vc *Controller) UnloadSession(c *gin.Context) {
	if !vc.Service.Unload(vc.session(c), c.Param("id")) {
		c.AbortWithStatusJSON(http.StatusNotFound, api.NewErrorResponse("article page is not tracked"))
		return
	}
	c.Status(http.StatusNoContent)
}

// UnmountSession stops tracking an article page.
//
// @ID unmountViewSession
// @Summary Stop tracking an article page
// @Tags views
// @Router /api/articles/{id}/view-session [delete]
// @Param id path string true "Article ID"
// @Success 204
func (vc *Controller) UnmountSession(c *gin.Context) {
	vc.Service.Unmount(vc.session(c), c.Param("id"))
	c.Status(http.StatusNoContent)
}

// IncrementView answers {"success": true}, {"error": "Invalid article ID"} or {"error": "Failed to increment view"}.
//
// @ID incrementView
// @Summary Count a view once per session
// @Tags views
// @Router /api/articles/increment-view [post]
// @Success 200
// @Failure 400
// @Failure 500
func (vc *Controller) IncrementView(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.ScriptErrorResponse{Error: "Invalid article ID"})
		return
	}

	var request incrementViewRequest
	if err = json.Unmarshal(body, &request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.ScriptErrorResponse{Error: "Invalid article ID"})
		return
	}

	articleId, ok := request.ArticleId.(string)
	if !ok || len(articleId) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.ScriptErrorResponse{Error: "Invalid article ID"})
		return
	}

	counted, err := vc.Service.CountOnce(c.Request.Context(), vc.session(c), articleId)
	if err != nil && !errors.Is(err, article.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.ScriptErrorResponse{Error: "Failed to increment view"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, api.ScriptErrorResponse{Error: "Article not found"})
		return
	}

	vc.LogDebugf(logging.GetLogType(logging.TypeViewTracking, articleId), "increment-view counted=%t", counted)
	c.JSON(http.StatusOK, api.ScriptResponse{Success: true})
}

// session returns the view session id of the request, issuing a new cookie when there is none.
func (vc *Controller) session(c *gin.Context) string {
	if id, err := c.Cookie(vc.CookieName); err == nil && len(id) > 0 {
		return id
	}

	id := uuidv7.New().String()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(vc.CookieName, id, 0, "/", "", vc.SecureCookie, true)
	return id
}
