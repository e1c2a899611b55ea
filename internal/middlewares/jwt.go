package middlewares

import (
	"context"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"legal-roundtable/internal/api"
	"legal-roundtable/internal/constants"
	"net/http"
	"strings"
	"time"
)

const issuer = "legal-roundtable"

// SigningKey signs and validates author tokens; set from the configuration on start-up.
var SigningKey = ""

// AuthHandler rejects requests without a valid bearer token and stores the token claims in the context.
func AuthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := BearerToken(c.Request.Header.Get("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.NewErrorResponse("Your request is not authorized. Are you missing the prefix 'Bearer'?"))
			return
		}

		token, err := ValidateToken(tokenString, SigningKey)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.NewErrorResponse("Invalid authorization token"))
			return
		}

		c.Set(constants.ClaimsContextKey, token.Claims.(*Claims))
		c.Next()
	}
}

// AdminOnly lets a request pass only if the e-mail of its token is on the admin allow-list.
// It has to run after AuthHandler.
func AdminOnly(adminEmails func() []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok || !IsAdminEmail(claims.Email, adminEmails()) {
			c.AbortWithStatusJSON(http.StatusForbidden, api.NewErrorResponse("administrator privileges required"))
			return
		}
		c.Next()
	}
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, len(token) > 0
}

func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	value, ok := c.Get(constants.ClaimsContextKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*Claims)
	return claims, ok
}

// IsAdminEmail reports whether email is on the allow-list, ignoring case and surrounding blanks.
func IsAdminEmail(email string, adminEmails []string) bool {
	email = strings.TrimSpace(email)
	if len(email) == 0 {
		return false
	}
	for _, e := range adminEmails {
		if strings.EqualFold(email, strings.TrimSpace(e)) {
			return true
		}
	}
	return false
}

type Claims struct {
	UserId string `json:"user_id"`
	Email  string `json:"email"`
	jwt.StandardClaims
}

func GenerateToken(ctx context.Context, key []byte, userId string, email string, lifetime time.Duration) (string, time.Time, error) {

	now := time.Now()
	expiresAt := now.Add(lifetime)
	claims := Claims{
		userId,
		email,
		jwt.StandardClaims{
			ExpiresAt: expiresAt.Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    issuer,
			Subject:   userId,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(key)
	return tokenString, expiresAt, err
}

func ValidateToken(tokenString string, key string) (*jwt.Token, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(key), nil
	})

	return token, err
}
