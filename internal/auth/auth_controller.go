package auth

import (
	"encoding/json"
	"errors"
	"github.com/gin-gonic/gin"
	"io"
	"legal-roundtable/internal/api"
	"legal-roundtable/internal/environment"
	"legal-roundtable/internal/logging"
	"legal-roundtable/internal/middlewares"
	"legal-roundtable/internal/models"
	"net/http"
	"time"
)

// Api defines the set of authentication-related endpoints exposed by the system.
//
// @Summary Authentication API
type Api interface {

	// Login issues a token for an author's email and password
	Login(c *gin.Context)

	// RefreshToken creates a new access token after validating the old one
	RefreshToken(c *gin.Context)

	// CheckAdmin tells whether an email is on the admin allow-list
	CheckAdmin(c *gin.Context)
}

// Controller wires environment dependencies with authentication service methods.
// It fulfills the Api interface and delegates business logic to AuthService.
type Controller struct {
	*environment.Env
	*AuthService
	TokenLifetime func() time.Duration
	AdminEmails   func() []string
}

// ensure Controller implements Api
var _ Api = &Controller{}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type checkAdminRequest struct {
	Email string `json:"email"`
}

// Login validates the credentials and issues a token.
//
// @ID login
// @Summary Sign in
// @Tags auth
// @Router /auth/login [post]
// @Param data body api.RestJsonRequest{data=api.LoginRequest} true "The credentials"
// @Success 200 {object} api.RestJsonResponse{data=auth.TokenResponse}
// @Failure 401 {object} api.RestJsonErrorResponse
// @Failure 422 {object} api.RestJsonErrorResponse
func (ac *Controller) Login(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		ac.LogErrorf(logging.GetLogType(logging.TypeAuth), "Error reading login info: %v", err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponse("Error reading login info"))
		return
	}

	request := api.GenericRequest{}
	err = request.Load(body)
	if err != nil {
		ac.LogErrorf(logging.GetLogType(logging.TypeAuth), "Error loading request data: %v", err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponse("Error reading login info"))
		return
	}

	login := api.LoginRequest{}
	err = request.DecodeDataTo(&login)
	if err != nil {
		ac.LogErrorf(logging.GetLogType(logging.TypeAuth), "Error loading user data: %v", err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponse("Error reading user info"))
		return
	}

	user := models.User{Email: login.Email, Password: login.Password}
	user.Prepare()
	err = user.Validate()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponsef("Error validating User: %v", err))
		return
	}

	err = ac.DoLogin(ctx, &user)
	if errors.Is(err, ErrInvalidCredentials) {
		ac.LogWarnf(logging.GetLogType(logging.TypeAuth), "login failed for %s", user.Email)
		c.AbortWithStatusJSON(http.StatusUnauthorized, api.NewErrorResponse("Login not successful"))
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("Login failed, please try again later"))
		return
	}

	ac.issueToken(c, user.ID, user.Email)
}

// RefreshToken validates the current token and issues a new one for the same user.
//
// @ID refreshToken
// @Summary Refresh a token
// @Tags auth
// @Router /auth/refresh [post]
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} api.RestJsonResponse{data=auth.TokenResponse}
// @Failure 401 {object} api.RestJsonErrorResponse
func (ac *Controller) RefreshToken(c *gin.Context) {
	tokenString, ok := middlewares.BearerToken(c.Request.Header.Get("Authorization"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, api.NewErrorResponse("An authorization token was not supplied"))
		return
	}

	token, err := middlewares.ValidateToken(tokenString, middlewares.SigningKey)
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, api.NewErrorResponse("Invalid authorization token"))
		return
	}

	claims := token.Claims.(*middlewares.Claims)
	ac.issueToken(c, claims.UserId, claims.Email)
}

// CheckAdmin answers {"isAdmin": bool, "adminEmails": [...]}; the list is empty unless the email is an admin.
//
// @ID checkAdmin
// @Summary Check an email against the admin allow-list
// @Tags auth
// @Router /api/check-admin [post]
// @Success 200
// @Failure 400
func (ac *Controller) CheckAdmin(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.ScriptErrorResponse{Error: "Invalid request"})
		return
	}

	var request checkAdminRequest
	if err = json.Unmarshal(body, &request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.ScriptErrorResponse{Error: "Invalid request"})
		return
	}

	isAdmin, adminEmails := CheckAdmin(request.Email, ac.AdminEmails())
	c.JSON(http.StatusOK, gin.H{
		"isAdmin":     isAdmin,
		"adminEmails": adminEmails,
	})
}

func (ac *Controller) issueToken(c *gin.Context, userId, email string) {
	token, expiresAt, err := middlewares.GenerateToken(c.Request.Context(), []byte(middlewares.SigningKey), userId, email, ac.TokenLifetime())
	if err != nil {
		ac.LogErrorf(logging.GetLogType(logging.TypeAuth), "Error creating JWT: %v", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, api.NewErrorResponse("Error creating JWT"))
		return
	}
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", TokenResponse{Token: token, ExpiresAt: expiresAt}))
}
