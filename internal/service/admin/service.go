package admin

import (
	"context"
	"time"

	"github.com/realtruedate/backend/internal/repository"
	"github.com/realtruedate/backend/internal/utils/age"
)

// Service computes the dashboard view and the profile-review listing.
type Service struct {
	admin *repository.AdminRepository
}

func NewService(adminRepo *repository.AdminRepository) *Service {
	return &Service{admin: adminRepo}
}

// Dashboard is the admin landing payload: headline totals plus a per-day
// registration series over the requested period.
type Dashboard struct {
	Totals        *repository.DashboardTotals `json:"totals"`
	Registrations []repository.DayCount       `json:"registrations"`
	PeriodDays    int                         `json:"period_days"`
}

// BuildDashboard assembles the dashboard for the trailing periodDays. Days
// with no registrations appear as explicit zero buckets.
func (s *Service) BuildDashboard(ctx context.Context, periodDays int, now time.Time) (*Dashboard, error) {
	if periodDays <= 0 {
		periodDays = 30
	}

	totals, err := s.admin.Totals(ctx, now)
	if err != nil {
		return nil, err
	}

	from := now.AddDate(0, 0, -(periodDays - 1))
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, now.Location())
	rows, err := s.admin.RegistrationsPerDay(ctx, from, now)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]int64, len(rows))
	for _, r := range rows {
		byDay[r.Day] = r.Count
	}
	series := make([]repository.DayCount, 0, periodDays)
	for d := 0; d < periodDays; d++ {
		day := from.AddDate(0, 0, d).Format("2006-01-02")
		series = append(series, repository.DayCount{Day: day, Count: byDay[day]})
	}

	return &Dashboard{Totals: totals, Registrations: series, PeriodDays: periodDays}, nil
}

// ReviewEntry is one row of the profile-review listing.
type ReviewEntry struct {
	UserID    uint64    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Gender    string    `json:"gender"`
	Active    bool      `json:"active"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewProfiles returns a page of user profiles matching the search term.
func (s *Service) ReviewProfiles(ctx context.Context, search string, offset, limit int, now time.Time) ([]ReviewEntry, int64, error) {
	profiles, total, err := s.admin.SearchProfiles(ctx, search, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	entries := make([]ReviewEntry, 0, len(profiles))
	for _, p := range profiles {
		entries = append(entries, ReviewEntry{
			UserID:    p.UserID,
			Email:     p.User.Email,
			Name:      p.Name,
			Age:       age.At(p.Dob, now),
			Gender:    p.Gender,
			Active:    p.Active,
			Verified:  p.User.Verified,
			CreatedAt: p.CreatedAt,
		})
	}
	return entries, total, nil
}
