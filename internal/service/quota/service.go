package quota

import (
	"context"
	"log/slog"
	"time"

	"github.com/realtruedate/backend/internal/cache"
	"github.com/realtruedate/backend/internal/repository"
)

// Allowance is what the accountant reports for one user. Remaining is
// meaningless when Unlimited is set.
type Allowance struct {
	Remaining int64 `json:"remaining"`
	Unlimited bool  `json:"unlimited"`
}

// Service computes the remaining swipe allowance: the free monthly pool
// first, then whatever an active subscription grants.
type Service struct {
	users  *repository.UserRepository
	swipes *repository.SwipeRepository
	subs   *repository.SubscriptionRepository
	cache  *cache.RedisCache
	logger *slog.Logger
}

func NewService(
	users *repository.UserRepository,
	swipes *repository.SwipeRepository,
	subs *repository.SubscriptionRepository,
	redisCache *cache.RedisCache,
	logger *slog.Logger,
) *Service {
	return &Service{users: users, swipes: swipes, subs: subs, cache: redisCache, logger: logger}
}

// Remaining reports the user's allowance at now. Cache-first with a short
// TTL; a swipe invalidates the entry. Any lookup failure is reported as an
// exhausted allowance rather than letting a swipe through unaccounted, and
// logged so operators can see quota checks degrading.
func (s *Service) Remaining(ctx context.Context, userID uint64, now time.Time) Allowance {
	if s.cache != nil {
		if remaining, unlimited, hit := s.cache.GetAllowance(ctx, userID); hit {
			return Allowance{Remaining: remaining, Unlimited: unlimited}
		}
	}

	allowance, err := s.compute(ctx, userID, now)
	if err != nil {
		s.logger.Warn("allowance lookup failed, treating as exhausted",
			slog.Uint64("user_id", userID), slog.Any("error", err))
		return Allowance{}
	}

	if s.cache != nil {
		if err := s.cache.SetAllowance(ctx, userID, allowance.Remaining, allowance.Unlimited); err != nil {
			s.logger.Warn("allowance cache write failed", slog.Any("error", err))
		}
	}
	return allowance
}

// Invalidate drops the cached allowance, called after every recorded swipe.
func (s *Service) Invalidate(ctx context.Context, userID uint64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAllowance(ctx, userID); err != nil {
		s.logger.Warn("allowance cache invalidation failed", slog.Any("error", err))
	}
}

func (s *Service) compute(ctx context.Context, userID uint64, now time.Time) (Allowance, error) {
	profile, err := s.users.GetProfileByUserID(ctx, userID)
	if err != nil {
		return Allowance{}, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthCount, err := s.swipes.CountInWindow(ctx, userID, monthStart, now)
	if err != nil {
		return Allowance{}, err
	}

	free := int64(profile.FreeSwipes) - monthCount
	if free > 0 {
		return Allowance{Remaining: free}, nil
	}

	// Free pool exhausted; subscription takes over from the moment of the
	// last free swipe, so already-counted swipes are not billed twice.
	exhaustedAt, err := s.swipes.LastInWindow(ctx, userID, monthStart, now)
	if err != nil {
		return Allowance{}, err
	}

	sub, err := s.subs.ActiveForUser(ctx, userID, now)
	if err != nil {
		return Allowance{}, err
	}
	if sub == nil {
		return Allowance{}, nil
	}
	if sub.Plan.UnlimitedSwipes {
		return Allowance{Unlimited: true}, nil
	}

	countFrom := sub.StartsAt
	if exhaustedAt != nil && exhaustedAt.After(countFrom) {
		countFrom = *exhaustedAt
	}
	used, err := s.swipes.CountInWindow(ctx, userID, countFrom, sub.EndsAt)
	if err != nil {
		return Allowance{}, err
	}

	remaining := int64(sub.Plan.SwipeLimit) - used
	if remaining < 0 {
		remaining = 0
	}
	return Allowance{Remaining: remaining}, nil
}
