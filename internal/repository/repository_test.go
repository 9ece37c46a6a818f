package repository_test

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	appdb "github.com/realtruedate/backend/internal/db"
)

// setup in-memory DB
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

// seedUser creates a verified, active user with a profile and returns the
// user id.
func seedUser(t *testing.T, database *gorm.DB, email, gender, interestedIn string, ageMin, ageMax int, lat, lng float64) uint64 {
	t.Helper()
	user := appdb.User{
		Email:        email,
		PasswordHash: "x",
		Role:         appdb.RoleUser,
		Verified:     true,
		Status:       appdb.AccountActive,
	}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	profile := appdb.Profile{
		UserID:       user.ID,
		Name:         email,
		Dob:          time.Date(1995, 6, 15, 0, 0, 0, 0, time.UTC),
		Gender:       gender,
		InterestedIn: interestedIn,
		AgeMin:       ageMin,
		AgeMax:       ageMax,
		Lat:          lat,
		Lng:          lng,
		HasLocation:  true,
		Active:       true,
		FreeSwipes:   5,
	}
	if err := database.Create(&profile).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return user.ID
}
