package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/realtruedate/backend/internal/db"
	"github.com/realtruedate/backend/internal/response"
)

// CapabilityTable maps route path → HTTP verb → allowed roles. An empty role
// list means the route is public. Routes register their capabilities at
// startup; the gate is the single place role checks happen.
type CapabilityTable map[string]map[string][]db.Role

func NewCapabilityTable() CapabilityTable {
	return make(CapabilityTable)
}

func (t CapabilityTable) Add(method, path string, roles []db.Role) {
	if t[path] == nil {
		t[path] = make(map[string][]db.Role)
	}
	t[path][method] = roles
}

// Allowed reports whether the given role may call method+path. Unknown
// routes are closed by default.
func (t CapabilityTable) Allowed(method, path string, role db.Role, authenticated bool) bool {
	verbs, ok := t[path]
	if !ok {
		return false
	}
	roles, ok := verbs[method]
	if !ok {
		return false
	}
	if len(roles) == 0 {
		return true // public route
	}
	if !authenticated {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// Gate enforces the capability table before handler dispatch.
func Gate(table CapabilityTable) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			// No matched route; let gin render its 404.
			c.Next()
			return
		}

		user, authed := CurrentUser(c)
		var role db.Role
		if authed {
			role = user.Role
		}

		if !table.Allowed(c.Request.Method, path, role, authed) {
			if !authed {
				response.Error(c, "Authentication required", nil, http.StatusUnauthorized)
			} else {
				response.Error(c, "You do not have permission to perform this action", nil, http.StatusForbidden)
			}
			c.Abort()
			return
		}
		c.Next()
	}
}
