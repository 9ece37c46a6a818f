package middleware_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/realtruedate/backend/internal/db"
	"github.com/realtruedate/backend/internal/middleware"
)

func TestCapabilityTable(t *testing.T) {
	table := middleware.NewCapabilityTable()
	table.Add(http.MethodGet, "/api/faqs", nil)
	table.Add(http.MethodGet, "/api/matches", []db.Role{db.RoleUser})
	table.Add(http.MethodPost, "/api/admin/faqs", []db.Role{db.RoleAdmin})
	table.Add(http.MethodDelete, "/api/subscriptions/:id", []db.Role{db.RoleUser, db.RoleAdmin})

	// public route admits anyone, authenticated or not
	assert.True(t, table.Allowed(http.MethodGet, "/api/faqs", "", false))
	assert.True(t, table.Allowed(http.MethodGet, "/api/faqs", db.RoleAdmin, true))

	// role-gated route
	assert.True(t, table.Allowed(http.MethodGet, "/api/matches", db.RoleUser, true))
	assert.False(t, table.Allowed(http.MethodGet, "/api/matches", db.RoleAdmin, true))
	assert.False(t, table.Allowed(http.MethodGet, "/api/matches", "", false))

	// admin-only route
	assert.True(t, table.Allowed(http.MethodPost, "/api/admin/faqs", db.RoleAdmin, true))
	assert.False(t, table.Allowed(http.MethodPost, "/api/admin/faqs", db.RoleUser, true))

	// multi-role route
	assert.True(t, table.Allowed(http.MethodDelete, "/api/subscriptions/:id", db.RoleUser, true))
	assert.True(t, table.Allowed(http.MethodDelete, "/api/subscriptions/:id", db.RoleAdmin, true))

	// unknown verb on a known path is closed
	assert.False(t, table.Allowed(http.MethodDelete, "/api/faqs", db.RoleAdmin, true))
	// unknown path is closed
	assert.False(t, table.Allowed(http.MethodGet, "/api/unknown", db.RoleAdmin, true))
}
