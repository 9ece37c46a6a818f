package match

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/realtruedate/backend/internal/config"
	"github.com/realtruedate/backend/internal/db"
	apperr "github.com/realtruedate/backend/internal/errors"
	"github.com/realtruedate/backend/internal/geo"
	"github.com/realtruedate/backend/internal/repository"
	"github.com/realtruedate/backend/internal/service/quota"
	"github.com/realtruedate/backend/internal/storage"
	"github.com/realtruedate/backend/internal/utils/age"
)

// Service runs match discovery and the swipe recorder.
type Service struct {
	cfg     *config.Config
	users   *repository.UserRepository
	matches *repository.MatchRepository
	swipes  *repository.SwipeRepository
	blocks  *repository.BlockRepository
	quota   *quota.Service
	storage storage.ObjectStorage
	logger  *slog.Logger
}

func NewService(
	cfg *config.Config,
	users *repository.UserRepository,
	matches *repository.MatchRepository,
	swipes *repository.SwipeRepository,
	blocks *repository.BlockRepository,
	quotaSvc *quota.Service,
	store storage.ObjectStorage,
	logger *slog.Logger,
) *Service {
	return &Service{
		cfg:     cfg,
		users:   users,
		matches: matches,
		swipes:  swipes,
		blocks:  blocks,
		quota:   quotaSvc,
		storage: store,
		logger:  logger,
	}
}

// Result is one entry of the match list, distance-ordered.
type Result struct {
	UserID     uint64   `json:"user_id"`
	Name       string   `json:"name"`
	Age        int      `json:"age"`
	Gender     string   `json:"gender"`
	DistanceKm float64  `json:"distance_km"`
	Images     []string `json:"images"`
}

// Discover returns every candidate matching the requester's preferences,
// annotated with distance and sorted nearest first.
func (s *Service) Discover(ctx context.Context, user *db.User, now time.Time) ([]Result, error) {
	if !user.Verified || user.Status != db.AccountActive {
		return nil, apperr.Precondition("Account must be verified and active")
	}
	profile, err := s.users.GetProfileByUserID(ctx, user.ID)
	if err != nil {
		return nil, apperr.Precondition("Profile not found")
	}
	if !profile.Active {
		return nil, apperr.Precondition("Profile is deactivated")
	}
	if !profile.HasLocation {
		return nil, apperr.Precondition("Set your location before requesting matches")
	}

	filter := repository.CandidateFilter{
		RequesterID: user.ID,
		AgeMin:      profile.AgeMin,
		AgeMax:      profile.AgeMax,
		Gender:      profile.InterestedIn,
	}
	if s.cfg.Match.ExcludeBlocked {
		ids, err := s.blocks.InvolvedIDs(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		filter.ExcludeIDs = ids
	}

	candidates, err := s.matches.ListCandidates(ctx, filter)
	if err != nil {
		return nil, err
	}

	origin := geo.Point{Lat: profile.Lat, Lng: profile.Lng}
	results := make([]Result, 0, len(candidates))
	for _, cand := range candidates {
		results = append(results, Result{
			UserID:     cand.UserID,
			Name:       cand.Name,
			Age:        age.At(cand.Dob, now),
			Gender:     cand.Gender,
			DistanceKm: geo.DistanceKm(origin, geo.Point{Lat: cand.Lat, Lng: cand.Lng}),
			Images:     s.presignAll(ctx, cand.Images),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})
	return results, nil
}

// SwipeOutcome is the response body of a recorded swipe.
type SwipeOutcome struct {
	TargetID  uint64            `json:"target_id"`
	Direction db.SwipeDirection `json:"direction"`
	Blocked   bool              `json:"blocked"`
	CreatedAt time.Time         `json:"created_at"`
}

// RecordSwipe validates the target and appends the ledger row. The allowance
// is reporting-only and never gates the write; it is just invalidated so the
// next read reflects this swipe.
func (s *Service) RecordSwipe(ctx context.Context, user *db.User, targetID uint64, direction db.SwipeDirection, now time.Time) (*SwipeOutcome, error) {
	if direction != db.SwipeLeft && direction != db.SwipeRight {
		return nil, apperr.Invalid("Direction must be left or right")
	}
	if targetID == user.ID {
		return nil, apperr.Invalid("You cannot swipe on yourself")
	}

	target, err := s.users.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, apperr.NotFound("Target user not found")
	}
	if target.Role != db.RoleUser || target.Status != db.AccountActive {
		return nil, apperr.Invalid("Target user is not available")
	}

	swipe, err := s.swipes.Create(ctx, user.ID, targetID, direction)
	if err != nil {
		if err == repository.ErrDuplicateSwipe {
			return nil, apperr.Duplicate("You have already swiped on this user")
		}
		return nil, err
	}
	s.quota.Invalidate(ctx, user.ID)

	blocked, err := s.blocks.Exists(ctx, user.ID, targetID)
	if err != nil {
		// the swipe is recorded; a failed flag lookup is not fatal
		s.logger.Warn("block lookup failed after swipe", slog.Any("error", err))
	}
	return &SwipeOutcome{
		TargetID:  swipe.TargetID,
		Direction: swipe.Direction,
		Blocked:   blocked,
		CreatedAt: swipe.CreatedAt,
	}, nil
}

// RightSwipe is one entry of the caller's right-swipe history.
type RightSwipe struct {
	TargetID  uint64    `json:"target_id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"created_at"`
}

// ListRightSwipes returns the caller's right swipes, newest first. An empty
// history is a 404, matching the read surface of the rest of the API.
func (s *Service) ListRightSwipes(ctx context.Context, userID uint64, now time.Time) ([]RightSwipe, error) {
	swipes, err := s.swipes.ListRight(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(swipes) == 0 {
		return nil, apperr.NotFound("No swipes found")
	}

	out := make([]RightSwipe, 0, len(swipes))
	for _, sw := range swipes {
		entry := RightSwipe{TargetID: sw.TargetID, CreatedAt: sw.CreatedAt}
		if profile, err := s.users.GetProfileByUserID(ctx, sw.TargetID); err == nil {
			entry.Name = profile.Name
			entry.Age = age.At(profile.Dob, now)
		}
		out = append(out, entry)
	}
	return out, nil
}

// Allowance reports the caller's remaining swipes.
func (s *Service) Allowance(ctx context.Context, userID uint64, now time.Time) quota.Allowance {
	return s.quota.Remaining(ctx, userID, now)
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
