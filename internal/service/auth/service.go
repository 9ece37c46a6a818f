package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/realtruedate/backend/internal/config"
	"github.com/realtruedate/backend/internal/db"
	apperr "github.com/realtruedate/backend/internal/errors"
	"github.com/realtruedate/backend/internal/mailer"
	"github.com/realtruedate/backend/internal/repository"
	"github.com/realtruedate/backend/internal/token"
)

const (
	otpLength = 6
	otpTTL    = 10 * time.Minute
)

// Service implements registration, verification and the token lifecycle.
type Service struct {
	cfg    *config.Config
	users  *repository.UserRepository
	tokens *token.Issuer
	mail   mailer.Mailer
	logger *slog.Logger
}

func NewService(
	cfg *config.Config,
	users *repository.UserRepository,
	tokens *token.Issuer,
	mail mailer.Mailer,
	logger *slog.Logger,
) *Service {
	return &Service{cfg: cfg, users: users, tokens: tokens, mail: mail, logger: logger}
}

// RegisterInput carries everything a new account needs; the profile is
// created in the same transaction as the user, no implicit hooks involved.
type RegisterInput struct {
	Email        string
	Password     string
	Name         string
	Phone        string
	Dob          time.Time
	Gender       string
	InterestedIn string
	ZipCode      string
	TimeZone     string
}

// Register creates an inactive, unverified account with its profile and
// mails an OTP to activate it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*db.User, error) {
	taken, err := s.users.EmailTaken(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Duplicate("An account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := db.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         db.RoleUser,
		Verified:     false,
		Status:       db.AccountInactive,
		TimeZone:     in.TimeZone,
	}
	profile := db.Profile{
		Name:         in.Name,
		Phone:        in.Phone,
		Dob:          in.Dob,
		Gender:       in.Gender,
		InterestedIn: in.InterestedIn,
		ZipCode:      in.ZipCode,
		AgeMin:       18,
		AgeMax:       35,
		Active:       true,
		FreeSwipes:   5,
	}
	if err := s.users.CreateUserWithProfile(ctx, &user, &profile); err != nil {
		return nil, err
	}

	if err := s.issueOTP(ctx, &user); err != nil {
		// account exists; the user can re-request a code
		s.logger.Warn("failed to send verification code",
			slog.Uint64("user_id", user.ID), slog.Any("error", err))
	}
	return &user, nil
}

// RegisterAdmin creates a verified, active admin account. The verification
// shortcut is explicit here rather than hidden in a persistence hook.
func (s *Service) RegisterAdmin(ctx context.Context, email, password, name string) (*db.User, error) {
	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Duplicate("An account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := db.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         db.RoleAdmin,
		Verified:     true,
		Status:       db.AccountActive,
	}
	profile := db.Profile{
		Name:   name,
		Dob:    time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Active: false,
	}
	if err := s.users.CreateUserWithProfile(ctx, &user, &profile); err != nil {
		return nil, err
	}
	return &user, nil
}

// VerifyOTP activates the account when the code is live and correct.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return apperr.NotFound("Account not found")
	}

	vc, err := s.users.GetLiveVerificationCode(ctx, user.ID, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Invalid("Invalid or expired verification code")
		}
		return err
	}

	user.Verified = true
	user.Status = db.AccountActive
	if err := s.users.SaveUser(ctx, user); err != nil {
		return err
	}
	return s.users.DeleteVerificationCode(ctx, vc.ID)
}

// ResendOTP issues a fresh code, replacing any live one.
func (s *Service) ResendOTP(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return apperr.NotFound("Account not found")
	}
	if user.Verified {
		return apperr.Invalid("Account is already verified")
	}
	return s.issueOTP(ctx, user)
}

// TokenPair is the login/refresh response body.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Login authenticates a verified user account and opens a device session.
func (s *Service) Login(ctx context.Context, email, password, deviceID string, role db.Role) (*TokenPair, *db.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, nil, apperr.Unauthorized("Invalid email or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, apperr.Unauthorized("Invalid email or password")
	}
	if user.Role != role {
		return nil, nil, apperr.Unauthorized("Invalid email or password")
	}
	if !user.Verified || user.Status != db.AccountActive {
		return nil, nil, apperr.Forbidden("Account is not verified")
	}

	access, err := s.tokens.Access(user)
	if err != nil {
		return nil, nil, err
	}
	refresh, err := s.tokens.Refresh(user)
	if err != nil {
		return nil, nil, err
	}

	session := db.DeviceSession{
		UserID:       user.ID,
		DeviceID:     deviceID,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(s.tokens.RefreshTTL()),
	}
	if err := s.users.CreateDeviceSession(ctx, &session); err != nil {
		return nil, nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, user, nil
}

// Refresh exchanges a live refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	session, err := s.users.GetDeviceSession(ctx, refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, apperr.Unauthorized("Refresh token has expired")
	}
	if _, err := s.tokens.Parse(refreshToken); err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	user, err := s.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("Account not found")
	}
	access, err := s.tokens.Access(user)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access}, nil
}

// ChangePassword verifies the current password before replacing it and
// closes every open device session.
func (s *Service) ChangePassword(ctx context.Context, user *db.User, current, next string) error {
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return apperr.Invalid("Current password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	if err := s.users.SaveUser(ctx, user); err != nil {
		return err
	}
	return s.users.DeleteDeviceSessions(ctx, user.ID)
}

// RequestPasswordReset mails an OTP the reset endpoint will accept.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		// do not reveal whether the address exists
		s.logger.Info("password reset requested for unknown email")
		return nil
	}
	return s.issueOTP(ctx, user)
}

// ResetPassword sets a new password given a live OTP.
func (s *Service) ResetPassword(ctx context.Context, email, code, next string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return apperr.NotFound("Account not found")
	}
	vc, err := s.users.GetLiveVerificationCode(ctx, user.ID, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Invalid("Invalid or expired verification code")
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	if err := s.users.SaveUser(ctx, user); err != nil {
		return err
	}
	if err := s.users.DeleteVerificationCode(ctx, vc.ID); err != nil {
		return err
	}
	return s.users.DeleteDeviceSessions(ctx, user.ID)
}

func (s *Service) issueOTP(ctx context.Context, user *db.User) error {
	code, err := generateOTP()
	if err != nil {
		return err
	}
	vc := db.VerificationCode{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: time.Now().Add(otpTTL),
	}
	if err := s.users.CreateVerificationCode(ctx, &vc); err != nil {
		return err
	}
	if s.cfg.App.ENV == "development" {
		s.logger.Debug("issued verification code",
			slog.Uint64("user_id", user.ID), slog.String("code", code))
	}
	return s.mail.Send(user.Email, "Your verification code", mailer.OTPBody(code))
}

func generateOTP() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpLength, n.Int64()), nil
}
