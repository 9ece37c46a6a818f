package profile_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/realtruedate/backend/internal/config"
	appdb "github.com/realtruedate/backend/internal/db"
	apperr "github.com/realtruedate/backend/internal/errors"
	"github.com/realtruedate/backend/internal/repository"
	"github.com/realtruedate/backend/internal/service/profile"
)

type stubStorage struct{}

func (stubStorage) Upload(context.Context, string, io.Reader, string) error { return nil }
func (stubStorage) Download(context.Context, string, io.Writer) error       { return nil }
func (stubStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://example.com/" + key, nil
}

type fixture struct {
	db  *gorm.DB
	svc *profile.Service
}

func setup(t *testing.T) *fixture {
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

	cfg := &config.Config{}
	cfg.S3.PresignExpirySeconds = 300

	svc := profile.NewService(cfg,
		repository.NewUserRepository(database),
		repository.NewBlockRepository(database),
		stubStorage{}, slog.Default())
	return &fixture{db: database, svc: svc}
}

func (f *fixture) seedUser(t *testing.T, email string) uint64 {
	t.Helper()
	user := appdb.User{Email: email, PasswordHash: "x", Role: appdb.RoleUser,
		Verified: true, Status: appdb.AccountActive}
	if err := f.db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	p := appdb.Profile{UserID: user.ID, Name: email,
		Dob: time.Now().UTC().AddDate(-28, 0, -30), Gender: "female",
		InterestedIn: "male", AgeMin: 18, AgeMax: 35, Active: true, FreeSwipes: 5}
	if err := f.db.Create(&p).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return user.ID
}

func TestOwnProfile(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	userID := f.seedUser(t, "a@example.com")

	view, err := f.svc.Own(ctx, userID)
	assert.NoError(t, err)
	assert.Equal(t, "a@example.com", view.Name)
	assert.Equal(t, 28, view.Age)
	assert.NotEmpty(t, view.Dob)

	_, err = f.svc.Own(ctx, 999)
	var e *apperr.Error
	if assert.ErrorAs(t, err, &e) {
		assert.Equal(t, 404, e.Status)
	}
}

func TestUpdateProfile(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	userID := f.seedUser(t, "a@example.com")

	name := "Renamed"
	lat, lng := 40.5, -73.5
	view, err := f.svc.Update(ctx, userID, profile.UpdateInput{
		Name: &name, Lat: &lat, Lng: &lng,
	})
	assert.NoError(t, err)
	assert.Equal(t, "Renamed", view.Name)

	var p appdb.Profile
	assert.NoError(t, f.db.Where("user_id = ?", userID).First(&p).Error)
	assert.True(t, p.HasLocation)
	assert.Equal(t, 40.5, p.Lat)

	// interval sanity
	lo, hi := 40, 20
	_, err = f.svc.Update(ctx, userID, profile.UpdateInput{AgeMin: &lo, AgeMax: &hi})
	assert.Error(t, err)
}

func TestSoftDeleteHidesProfile(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	userID := f.seedUser(t, "a@example.com")
	viewerID := f.seedUser(t, "b@example.com")

	assert.NoError(t, f.svc.Deactivate(ctx, userID))

	// own read, peer read and a second delete all see it as gone
	_, err := f.svc.Own(ctx, userID)
	assert.Error(t, err)
	_, err = f.svc.ByID(ctx, viewerID, userID)
	assert.Error(t, err)
	assert.Error(t, f.svc.Deactivate(ctx, userID))
}

func TestByIDCarriesBlockedFlag(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	viewerID := f.seedUser(t, "a@example.com")
	targetID := f.seedUser(t, "b@example.com")

	view, err := f.svc.ByID(ctx, viewerID, targetID)
	assert.NoError(t, err)
	if assert.NotNil(t, view.BlockedByMe) {
		assert.False(t, *view.BlockedByMe)
	}
	// peers never see contact details
	assert.Empty(t, view.Phone)
	assert.Empty(t, view.InterestedIn)

	assert.NoError(t, f.svc.Block(ctx, viewerID, targetID, "spam"))
	view, err = f.svc.ByID(ctx, viewerID, targetID)
	assert.NoError(t, err)
	assert.True(t, *view.BlockedByMe)
}

func TestBlockUnblock(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	blockerID := f.seedUser(t, "a@example.com")
	blockedID := f.seedUser(t, "b@example.com")

	assert.Error(t, f.svc.Block(ctx, blockerID, blockerID, ""))
	assert.Error(t, f.svc.Block(ctx, blockerID, 999, ""))

	assert.NoError(t, f.svc.Block(ctx, blockerID, blockedID, "spam"))

	list, err := f.svc.ListBlocked(ctx, blockerID)
	assert.NoError(t, err)
	if assert.Len(t, list, 1) {
		assert.Equal(t, blockedID, list[0].UserID)
		assert.Equal(t, "spam", list[0].Reason)
		assert.Equal(t, "b@example.com", list[0].Name)
	}

	assert.NoError(t, f.svc.Unblock(ctx, blockerID, blockedID))

	// unblocking again is a 400
	err = f.svc.Unblock(ctx, blockerID, blockedID)
	var e *apperr.Error
	if assert.ErrorAs(t, err, &e) {
		assert.Equal(t, 400, e.Status)
	}
}

func TestCreateProfile(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	user := appdb.User{Email: "new@example.com", PasswordHash: "x", Role: appdb.RoleUser,
		Verified: true, Status: appdb.AccountActive}
	assert.NoError(t, f.db.Create(&user).Error)

	lat, lng := 51.5, -0.12
	view, err := f.svc.Create(ctx, user.ID, profile.CreateInput{
		Name:         "Newcomer",
		Dob:          "1995-06-15",
		Gender:       "male",
		InterestedIn: "female",
		Lat:          &lat,
		Lng:          &lng,
	})
	assert.NoError(t, err)
	assert.Equal(t, "Newcomer", view.Name)
	assert.Equal(t, 18, view.AgeMin)
	assert.Equal(t, 35, view.AgeMax)

	stored, err := repository.NewUserRepository(f.db).GetProfileByUserID(ctx, user.ID)
	assert.NoError(t, err)
	assert.True(t, stored.HasLocation)

	// creating twice is a conflict
	_, err = f.svc.Create(ctx, user.ID, profile.CreateInput{
		Name: "Again", Dob: "1995-06-15", Gender: "male", InterestedIn: "female",
	})
	var e *apperr.Error
	if assert.ErrorAs(t, err, &e) {
		assert.Equal(t, 400, e.Status)
	}

	// malformed date
	_, err = f.svc.Create(ctx, 999, profile.CreateInput{
		Name: "Bad", Dob: "15/06/1995", Gender: "male", InterestedIn: "female",
	})
	assert.Error(t, err)
}
