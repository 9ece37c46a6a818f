package admin_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	appdb "github.com/realtruedate/backend/internal/db"
	"github.com/realtruedate/backend/internal/repository"
	"github.com/realtruedate/backend/internal/service/admin"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.AutoMigrate(appdb.Models()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func seedUser(t *testing.T, database *gorm.DB, email, name string, createdAt time.Time) *appdb.User {
	t.Helper()
	user := appdb.User{Email: email, PasswordHash: "x", Role: appdb.RoleUser,
		Verified: true, Status: appdb.AccountActive}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	database.Model(&user).Update("created_at", createdAt)
	profile := appdb.Profile{UserID: user.ID, Name: name, Gender: "female",
		InterestedIn: "male", Dob: time.Date(1995, 3, 1, 0, 0, 0, 0, time.UTC),
		AgeMin: 20, AgeMax: 40, Active: true}
	if err := database.Create(&profile).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return &user
}

func TestBuildDashboard(t *testing.T) {
	database := setupTestDB(t)
	svc := admin.NewService(repository.NewAdminRepository(database))
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	seedUser(t, database, "a@example.com", "Ann", now.AddDate(0, 0, -1))
	seedUser(t, database, "b@example.com", "Bea", now.AddDate(0, 0, -1))
	seedUser(t, database, "c@example.com", "Cam", now.AddDate(0, 0, -40))

	dash, err := svc.BuildDashboard(context.Background(), 7, now)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), dash.Totals.Users)
	assert.Equal(t, 7, dash.PeriodDays)
	assert.Len(t, dash.Registrations, 7)

	// the day before `now` has two signups, every other bucket is explicit zero
	var nonZero int
	for _, day := range dash.Registrations {
		if day.Count > 0 {
			nonZero++
			assert.Equal(t, now.AddDate(0, 0, -1).Format("2006-01-02"), day.Day)
			assert.Equal(t, int64(2), day.Count)
		}
	}
	assert.Equal(t, 1, nonZero)
}

func TestBuildDashboardRevenue(t *testing.T) {
	database := setupTestDB(t)
	svc := admin.NewService(repository.NewAdminRepository(database))
	now := time.Now().UTC()

	user := seedUser(t, database, "a@example.com", "Ann", now)
	plan := appdb.SubscriptionPlan{Name: "gold", Price: 9.99, Currency: "usd",
		Interval: "month", Active: true}
	assert.NoError(t, database.Create(&plan).Error)
	sub := appdb.Subscription{UserID: user.ID, PlanID: plan.ID,
		Status:   appdb.SubscriptionActive,
		StartsAt: now.AddDate(0, 0, -5), EndsAt: now.AddDate(0, 0, 25)}
	assert.NoError(t, database.Create(&sub).Error)

	// expired subscriptions do not count
	stale := appdb.Subscription{UserID: user.ID, PlanID: plan.ID,
		Status:   appdb.SubscriptionActive,
		StartsAt: now.AddDate(0, -2, 0), EndsAt: now.AddDate(0, -1, 0)}
	assert.NoError(t, database.Create(&stale).Error)

	dash, err := svc.BuildDashboard(context.Background(), 0, now)
	assert.NoError(t, err)
	assert.Equal(t, 30, dash.PeriodDays)
	assert.Equal(t, int64(1), dash.Totals.ActiveSubscriptions)
	assert.InDelta(t, 9.99, dash.Totals.Revenue, 0.001)
}

func TestReviewProfiles(t *testing.T) {
	database := setupTestDB(t)
	svc := admin.NewService(repository.NewAdminRepository(database))
	now := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	seedUser(t, database, "ann@example.com", "Ann", now)
	seedUser(t, database, "bea@example.com", "Bea", now)

	entries, total, err := svc.ReviewProfiles(context.Background(), "ann", 0, 10, now)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "Ann", entries[0].Name)
		assert.Equal(t, "ann@example.com", entries[0].Email)
		assert.Equal(t, 31, entries[0].Age)
		assert.True(t, entries[0].Verified)
	}

	entries, total, err = svc.ReviewProfiles(context.Background(), "", 0, 1, now)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, entries, 1)
}
