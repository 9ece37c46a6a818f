package auth_test

import (
	"context"
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
	"github.com/realtruedate/backend/internal/service/auth"
	"github.com/realtruedate/backend/internal/token"
)

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	sent []sentMail
}

func (f *fakeMailer) Send(to, subject, body string) error {
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type fixture struct {
	db     *gorm.DB
	users  *repository.UserRepository
	mailer *fakeMailer
	svc    *auth.Service
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
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTTLMinutes = 15
	cfg.JWT.RefreshTTLHours = 24

	users := repository.NewUserRepository(database)
	mail := &fakeMailer{}
	svc := auth.NewService(cfg, users, token.NewIssuer(cfg), mail, slog.Default())
	return &fixture{db: database, users: users, mailer: mail, svc: svc}
}

func registerInput(email string) auth.RegisterInput {
	return auth.RegisterInput{
		Email:        email,
		Password:     "hunter2hunter2",
		Name:         "Test User",
		Dob:          time.Date(1994, 5, 10, 0, 0, 0, 0, time.UTC),
		Gender:       "female",
		InterestedIn: "male",
	}
}

// otpFor digs the live code out of the DB, standing in for the email.
func (f *fixture) otpFor(t *testing.T, userID uint64) string {
	t.Helper()
	var code appdb.VerificationCode
	if err := f.db.Where("user_id = ?", userID).Order("id DESC").First(&code).Error; err != nil {
		t.Fatalf("no verification code: %v", err)
	}
	return code.Code
}

func TestRegisterCreatesInactiveAccount(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, registerInput("a@example.com"))
	assert.NoError(t, err)
	assert.False(t, user.Verified)
	assert.Equal(t, appdb.AccountInactive, user.Status)
	assert.Equal(t, appdb.RoleUser, user.Role)

	profile, err := f.users.GetProfileByUserID(ctx, user.ID)
	assert.NoError(t, err)
	assert.Equal(t, 18, profile.AgeMin)
	assert.Equal(t, 35, profile.AgeMax)
	assert.Equal(t, 5, profile.FreeSwipes)

	// OTP mailed
	if assert.Len(t, f.mailer.sent, 1) {
		assert.Equal(t, "a@example.com", f.mailer.sent[0].to)
		assert.Contains(t, f.mailer.sent[0].body, f.otpFor(t, user.ID))
	}

	// duplicate email
	_, err = f.svc.Register(ctx, registerInput("a@example.com"))
	var e *apperr.Error
	if assert.ErrorAs(t, err, &e) {
		assert.Equal(t, 400, e.Status)
	}
}

func TestVerifyOTPActivates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	user, _ := f.svc.Register(ctx, registerInput("a@example.com"))

	// wrong code first
	err := f.svc.VerifyOTP(ctx, "a@example.com", "000000")
	assert.Error(t, err)

	err = f.svc.VerifyOTP(ctx, "a@example.com", f.otpFor(t, user.ID))
	assert.NoError(t, err)

	got, _ := f.users.GetUserByID(ctx, user.ID)
	assert.True(t, got.Verified)
	assert.Equal(t, appdb.AccountActive, got.Status)
}

func TestLoginLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	user, _ := f.svc.Register(ctx, registerInput("a@example.com"))

	// unverified accounts cannot log in
	_, _, err := f.svc.Login(ctx, "a@example.com", "hunter2hunter2", "dev1", appdb.RoleUser)
	var e *apperr.Error
	if assert.ErrorAs(t, err, &e) {
		assert.Equal(t, 403, e.Status)
	}

	assert.NoError(t, f.svc.VerifyOTP(ctx, "a@example.com", f.otpFor(t, user.ID)))

	// wrong password
	_, _, err = f.svc.Login(ctx, "a@example.com", "wrong", "dev1", appdb.RoleUser)
	if assert.ErrorAs(t, err, &e) {
		assert.Equal(t, 401, e.Status)
	}

	pair, logged, err := f.svc.Login(ctx, "a@example.com", "hunter2hunter2", "dev1", appdb.RoleUser)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	// the role gate on login: a user cannot use the admin surface
	_, _, err = f.svc.Login(ctx, "a@example.com", "hunter2hunter2", "dev1", appdb.RoleAdmin)
	assert.Error(t, err)

	// refresh issues a fresh access token
	refreshed, err := f.svc.Refresh(ctx, pair.RefreshToken)
	assert.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = f.svc.Refresh(ctx, "not-a-token")
	assert.Error(t, err)
}

func TestRegisterAdminIsAutoVerified(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	admin, err := f.svc.RegisterAdmin(ctx, "admin@example.com", "hunter2hunter2", "Admin")
	assert.NoError(t, err)
	assert.True(t, admin.Verified)
	assert.Equal(t, appdb.AccountActive, admin.Status)
	assert.Equal(t, appdb.RoleAdmin, admin.Role)

	// admins log in without any OTP round trip
	_, logged, err := f.svc.Login(ctx, "admin@example.com", "hunter2hunter2", "dev1", appdb.RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, admin.ID, logged.ID)
}

func TestChangePassword(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	user, _ := f.svc.Register(ctx, registerInput("a@example.com"))
	assert.NoError(t, f.svc.VerifyOTP(ctx, "a@example.com", f.otpFor(t, user.ID)))
	_, logged, err := f.svc.Login(ctx, "a@example.com", "hunter2hunter2", "dev1", appdb.RoleUser)
	assert.NoError(t, err)

	err = f.svc.ChangePassword(ctx, logged, "wrong", "newpassword123")
	assert.Error(t, err)

	assert.NoError(t, f.svc.ChangePassword(ctx, logged, "hunter2hunter2", "newpassword123"))

	_, _, err = f.svc.Login(ctx, "a@example.com", "newpassword123", "dev1", appdb.RoleUser)
	assert.NoError(t, err)
}

func TestPasswordResetFlow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	user, _ := f.svc.Register(ctx, registerInput("a@example.com"))
	assert.NoError(t, f.svc.VerifyOTP(ctx, "a@example.com", f.otpFor(t, user.ID)))

	// unknown emails do not leak existence
	assert.NoError(t, f.svc.RequestPasswordReset(ctx, "ghost@example.com"))

	assert.NoError(t, f.svc.RequestPasswordReset(ctx, "a@example.com"))
	code := f.otpFor(t, user.ID)

	err := f.svc.ResetPassword(ctx, "a@example.com", "000000", "resetpassword1")
	assert.Error(t, err)

	assert.NoError(t, f.svc.ResetPassword(ctx, "a@example.com", code, "resetpassword1"))
	_, _, err = f.svc.Login(ctx, "a@example.com", "resetpassword1", "dev1", appdb.RoleUser)
	assert.NoError(t, err)
}
