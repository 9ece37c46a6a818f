package server

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/realtruedate/backend/internal/app"
	"github.com/realtruedate/backend/internal/db"
	"github.com/realtruedate/backend/internal/middleware"
	"github.com/realtruedate/backend/internal/response"
)

// Route couples a handler with its capability declaration. Services expose
// their routes and the server wires every declaration into one table checked
// by the gate middleware, so no handler carries its own role logic.
type Route struct {
	Method  string
	Path    string
	Roles   []db.Role // empty → public
	Handler gin.HandlerFunc
}

// Registrar is implemented by each service package.
type Registrar interface {
	Routes() []Route
}

// NewEngine assembles the gin engine with auth, gate and all routes.
func NewEngine(appCtx *app.AppContext, registrars ...Registrar) *gin.Engine {
	if appCtx.Cfg.App.ENV != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	// a handler panic still renders the JSON error envelope
	engine.Use(gin.CustomRecovery(func(c *gin.Context, _ any) {
		response.Error(c, "An error occurred", nil, http.StatusInternalServerError)
		c.Abort()
	}))
	engine.Use(cors.Default())
	engine.Use(middleware.Authenticate(appCtx))

	table := middleware.NewCapabilityTable()
	engine.Use(middleware.Gate(table))

	for _, r := range registrars {
		for _, route := range r.Routes() {
			table.Add(route.Method, route.Path, route.Roles)
			engine.Handle(route.Method, route.Path, route.Handler)
		}
	}

	return engine
}

// StartHTTPServer boots the API server and blocks until it exits.
func StartHTTPServer(appCtx *app.AppContext, registrars ...Registrar) error {
	engine := NewEngine(appCtx, registrars...)
	addr := fmt.Sprintf("%s:%s", appCtx.Cfg.HTTP.Host, appCtx.Cfg.HTTP.Port)
	return engine.Run(addr)
}
