package profile

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/realtruedate/backend/internal/config"
	"github.com/realtruedate/backend/internal/db"
	apperr "github.com/realtruedate/backend/internal/errors"
	"github.com/realtruedate/backend/internal/repository"
	"github.com/realtruedate/backend/internal/storage"
	"github.com/realtruedate/backend/internal/utils/age"
)

// Service implements profile CRUD and the block registry.
type Service struct {
	cfg     *config.Config
	users   *repository.UserRepository
	blocks  *repository.BlockRepository
	storage storage.ObjectStorage
	logger  *slog.Logger
}

func NewService(
	cfg *config.Config,
	users *repository.UserRepository,
	blocks *repository.BlockRepository,
	store storage.ObjectStorage,
	logger *slog.Logger,
) *Service {
	return &Service{cfg: cfg, users: users, blocks: blocks, storage: store, logger: logger}
}

// View is the profile as the API renders it.
type View struct {
	UserID         uint64   `json:"user_id"`
	Name           string   `json:"name"`
	Phone          string   `json:"phone,omitempty"`
	Dob            string   `json:"dob,omitempty"`
	Age            int      `json:"age"`
	Gender         string   `json:"gender"`
	InterestedIn   string   `json:"interested_in,omitempty"`
	AgeMin         int      `json:"age_min"`
	AgeMax         int      `json:"age_max"`
	ZipCode        string   `json:"zip_code,omitempty"`
	WillingToDrive float64  `json:"willing_to_drive"`
	Images         []string `json:"images"`
	Videos         []string `json:"videos"`
	BlockedByMe    *bool    `json:"blocked_by_me,omitempty"`
}

// Own returns the caller's profile; a soft-deleted profile reads as absent.
func (s *Service) Own(ctx context.Context, userID uint64) (*View, error) {
	profile, err := s.users.GetProfileByUserID(ctx, userID)
	if err != nil || !profile.Active {
		return nil, apperr.NotFound("Profile not found")
	}
	view := s.render(ctx, profile, true)
	return view, nil
}

// CreateInput is the explicit profile-creation payload, used by accounts
// registered before profiles became part of registration.
type CreateInput struct {
	Name           string   `json:"name" binding:"required"`
	Phone          string   `json:"phone"`
	Dob            string   `json:"dob" binding:"required"`
	Gender         string   `json:"gender" binding:"required,oneof=male female"`
	InterestedIn   string   `json:"interested_in" binding:"required,oneof=male female"`
	AgeMin         int      `json:"age_min"`
	AgeMax         int      `json:"age_max"`
	ZipCode        string   `json:"zip_code"`
	Lat            *float64 `json:"lat"`
	Lng            *float64 `json:"lng"`
	WillingToDrive float64  `json:"willing_to_drive"`
}

// Create makes the caller's profile; an existing profile, active or not, is a
// conflict.
func (s *Service) Create(ctx context.Context, userID uint64, in CreateInput) (*View, error) {
	if _, err := s.users.GetProfileByUserID(ctx, userID); err == nil {
		return nil, apperr.Duplicate("Profile already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	dob, err := time.Parse("2006-01-02", in.Dob)
	if err != nil {
		return nil, apperr.Invalid("dob must be YYYY-MM-DD")
	}
	if in.AgeMin == 0 {
		in.AgeMin = 18
	}
	if in.AgeMax == 0 {
		in.AgeMax = 35
	}
	if in.AgeMin > in.AgeMax {
		return nil, apperr.Invalid("age_min cannot exceed age_max")
	}

	profile := db.Profile{
		UserID:         userID,
		Name:           in.Name,
		Phone:          in.Phone,
		Dob:            dob,
		Gender:         in.Gender,
		InterestedIn:   in.InterestedIn,
		AgeMin:         in.AgeMin,
		AgeMax:         in.AgeMax,
		ZipCode:        in.ZipCode,
		WillingToDrive: in.WillingToDrive,
		Active:         true,
		FreeSwipes:     5,
	}
	if in.Lat != nil && in.Lng != nil {
		profile.Lat = *in.Lat
		profile.Lng = *in.Lng
		profile.HasLocation = true
	}
	if err := s.users.SaveProfile(ctx, &profile); err != nil {
		return nil, err
	}
	return s.render(ctx, &profile, true), nil
}

// UpdateInput is the partial-update payload; nil fields stay untouched.
type UpdateInput struct {
	Name           *string  `json:"name"`
	Phone          *string  `json:"phone"`
	Gender         *string  `json:"gender"`
	InterestedIn   *string  `json:"interested_in"`
	AgeMin         *int     `json:"age_min"`
	AgeMax         *int     `json:"age_max"`
	ZipCode        *string  `json:"zip_code"`
	Lat            *float64 `json:"lat"`
	Lng            *float64 `json:"lng"`
	WillingToDrive *float64 `json:"willing_to_drive"`
}

// Update applies a partial update to the caller's profile. Setting both
// coordinates marks the location as known.
func (s *Service) Update(ctx context.Context, userID uint64, in UpdateInput) (*View, error) {
	profile, err := s.users.GetProfileByUserID(ctx, userID)
	if err != nil || !profile.Active {
		return nil, apperr.NotFound("Profile not found")
	}

	if in.AgeMin != nil && in.AgeMax != nil && *in.AgeMin > *in.AgeMax {
		return nil, apperr.Invalid("age_min cannot exceed age_max")
	}

	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Phone != nil {
		fields["phone"] = *in.Phone
	}
	if in.Gender != nil {
		fields["gender"] = *in.Gender
	}
	if in.InterestedIn != nil {
		fields["interested_in"] = *in.InterestedIn
	}
	if in.AgeMin != nil {
		fields["age_min"] = *in.AgeMin
	}
	if in.AgeMax != nil {
		fields["age_max"] = *in.AgeMax
	}
	if in.ZipCode != nil {
		fields["zip_code"] = *in.ZipCode
	}
	if in.WillingToDrive != nil {
		fields["willing_to_drive"] = *in.WillingToDrive
	}
	if in.Lat != nil && in.Lng != nil {
		fields["lat"] = *in.Lat
		fields["lng"] = *in.Lng
		fields["has_location"] = true
	}

	if len(fields) > 0 {
		if err := s.users.UpdateProfileFields(ctx, profile.ID, fields); err != nil {
			return nil, err
		}
	}

	profile, err = s.users.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, profile, true), nil
}

// Deactivate soft-deletes the caller's profile; reads filter it out from
// then on.
func (s *Service) Deactivate(ctx context.Context, userID uint64) error {
	profile, err := s.users.GetProfileByUserID(ctx, userID)
	if err != nil || !profile.Active {
		return apperr.NotFound("Profile not found")
	}
	return s.users.UpdateProfileFields(ctx, profile.ID, map[string]any{"active": false})
}

// ByID returns another user's profile with a live blocked_by_me flag.
func (s *Service) ByID(ctx context.Context, viewerID, userID uint64) (*View, error) {
	profile, err := s.users.GetProfileByUserID(ctx, userID)
	if err != nil || !profile.Active {
		return nil, apperr.NotFound("Profile not found")
	}

	view := s.render(ctx, profile, false)
	blocked, err := s.blocks.Exists(ctx, viewerID, userID)
	if err != nil {
		return nil, err
	}
	view.BlockedByMe = &blocked
	return view, nil
}

// Block records a block on the target; blocking twice just updates the
// reason.
func (s *Service) Block(ctx context.Context, blockerID, blockedID uint64, reason string) error {
	if blockerID == blockedID {
		return apperr.Invalid("You cannot block yourself")
	}
	if _, err := s.users.GetUserByID(ctx, blockedID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("User not found")
		}
		return err
	}
	_, err := s.blocks.Upsert(ctx, blockerID, blockedID, reason)
	return err
}

// Unblock removes a block; unblocking a never-blocked user is a 400.
func (s *Service) Unblock(ctx context.Context, blockerID, blockedID uint64) error {
	err := s.blocks.Delete(ctx, blockerID, blockedID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Invalid("User is not blocked")
	}
	return err
}

// BlockedUser is one entry of the caller's block list.
type BlockedUser struct {
	UserID    uint64    `json:"user_id"`
	Name      string    `json:"name"`
	Reason    string    `json:"reason,omitempty"`
	BlockedAt time.Time `json:"blocked_at"`
}

func (s *Service) ListBlocked(ctx context.Context, blockerID uint64) ([]BlockedUser, error) {
	blocks, err := s.blocks.ListByBlocker(ctx, blockerID)
	if err != nil {
		return nil, err
	}
	out := make([]BlockedUser, 0, len(blocks))
	for _, b := range blocks {
		entry := BlockedUser{UserID: b.BlockedID, Reason: b.Reason, BlockedAt: b.CreatedAt}
		if p, err := s.users.GetProfileByUserID(ctx, b.BlockedID); err == nil {
			entry.Name = p.Name
		}
		out = append(out, entry)
	}
	return out, nil
}

// render builds a View; own includes contact fields others never see.
func (s *Service) render(ctx context.Context, profile *db.Profile, own bool) *View {
	view := &View{
		UserID:         profile.UserID,
		Name:           profile.Name,
		Age:            age.Of(profile.Dob),
		Gender:         profile.Gender,
		AgeMin:         profile.AgeMin,
		AgeMax:         profile.AgeMax,
		WillingToDrive: profile.WillingToDrive,
		Images:         s.presignAll(ctx, profile.Images),
		Videos:         s.presignAll(ctx, profile.Videos),
	}
	if own {
		view.Phone = profile.Phone
		view.Dob = profile.Dob.Format("2006-01-02")
		view.InterestedIn = profile.InterestedIn
		view.ZipCode = profile.ZipCode
	}
	return view
}

func (s *Service) presignAll(ctx context.Context, keys []string) []string {
	urls := make([]string, 0, len(keys))
	expiry := time.Duration(s.cfg.S3.PresignExpirySeconds) * time.Second
	for _, key := range keys {
		url, err := s.storage.PresignGet(ctx, key, expiry)
		if err != nil {
			s.logger.Warn("presign failed", slog.String("key", key), slog.Any("error", err))
			continue
		}
		urls = append(urls, url)
	}
	return urls
}
