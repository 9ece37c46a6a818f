package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/realtruedate/backend/internal/db"
)

// UserRepository provides data access for accounts, profiles, verification
// codes and device sessions.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// CreateUserWithProfile inserts the account and its profile in one
// transaction so a failed profile insert never leaves a bare user behind.
func (r *UserRepository) CreateUserWithProfile(ctx context.Context, user *db.User, profile *db.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		return tx.Create(profile).Error
	})
}

func (r *UserRepository) GetUserByID(ctx context.Context, id uint64) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) SaveUser(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *UserRepository) GetProfileByUserID(ctx context.Context, userID uint64) (*db.Profile, error) {
	var profile db.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *UserRepository) SaveProfile(ctx context.Context, profile *db.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// UpdateProfileFields applies a partial update to the given profile row.
func (r *UserRepository) UpdateProfileFields(ctx context.Context, profileID uint64, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("id = ?", profileID).
		Updates(fields).Error
}

// CreateVerificationCode replaces any live code for the user: issuing a new
// OTP invalidates the previous one.
func (r *UserRepository) CreateVerificationCode(ctx context.Context, code *db.VerificationCode) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND expires_at > ?", code.UserID, time.Now()).
			Delete(&db.VerificationCode{}).Error; err != nil {
			return err
		}
		return tx.Create(code).Error
	})
}

// GetLiveVerificationCode returns the unexpired code for a user and value.
func (r *UserRepository) GetLiveVerificationCode(ctx context.Context, userID uint64, value string) (*db.VerificationCode, error) {
	var code db.VerificationCode
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND code = ? AND expires_at > ?", userID, value, time.Now()).
		First(&code).Error
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *UserRepository) DeleteVerificationCode(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&db.VerificationCode{}, id).Error
}

func (r *UserRepository) CreateDeviceSession(ctx context.Context, session *db.DeviceSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *UserRepository) GetDeviceSession(ctx context.Context, refreshToken string) (*db.DeviceSession, error) {
	var session db.DeviceSession
	err := r.db.WithContext(ctx).
		Where("refresh_token = ?", refreshToken).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *UserRepository) DeleteDeviceSessions(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&db.DeviceSession{}).Error
}
