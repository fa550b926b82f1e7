package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/course-reg-api/internal/models"
	appErrors "github.com/campuskit/course-reg-api/pkg/errors"
	"github.com/campuskit/course-reg-api/pkg/response"
)

// AdminGate restricts the admin panel to ADMIN accounts. Non-admins are
// redirected to the entry page instead of receiving an error, matching the
// panel's historical behavior.
func AdminGate(auth tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := claimsFromHeader(c, auth)
		if err != nil || claims.UserType != models.TypeAdmin {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// RequireTypes allows only the listed account types on a route. JWT must run
// first.
func RequireTypes(types ...models.UserType) gin.HandlerFunc {
	allowed := make(map[models.UserType]struct{}, len(types))
	for _, t := range types {
		allowed[t] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := CurrentUser(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.UserType]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
