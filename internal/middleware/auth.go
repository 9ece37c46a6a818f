package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/realtruedate/backend/internal/app"
	"github.com/realtruedate/backend/internal/db"
	"github.com/realtruedate/backend/internal/response"
)

const currentUserKey = "current_user"

// Authenticate resolves the bearer token, loads the account and stores it on
// the request context. Requests without a token pass through anonymously;
// the gate decides whether that is acceptable for the route.
func Authenticate(appCtx *app.AppContext) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Error(c, "Invalid authorization header", nil, http.StatusUnauthorized)
			c.Abort()
			return
		}

		claims, err := appCtx.Tokens.Parse(parts[1])
		if err != nil {
			response.Error(c, "Invalid token", nil, http.StatusUnauthorized)
			c.Abort()
			return
		}

		var user db.User
		if err := appCtx.DB.WithContext(c.Request.Context()).
			First(&user, claims.UserID).Error; err != nil {
			response.Error(c, "Account not found", nil, http.StatusUnauthorized)
			c.Abort()
			return
		}
		if user.Status == db.AccountDeleted {
			response.Error(c, "Account is deleted", nil, http.StatusUnauthorized)
			c.Abort()
			return
		}

		c.Set(currentUserKey, &user)
		c.Next()
	}
}

// CurrentUser returns the authenticated account for this request, if any.
func CurrentUser(c *gin.Context) (*db.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*db.User)
	return u, ok
}
