package subscription

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/realtruedate/backend/internal/billing"
	"github.com/realtruedate/backend/internal/db"
	apperr "github.com/realtruedate/backend/internal/errors"
	"github.com/realtruedate/backend/internal/repository"
)

// Service implements plan management and the subscribe/cancel lifecycle
// against the payment processor.
type Service struct {
	subs    *repository.SubscriptionRepository
	users   *repository.UserRepository
	billing billing.Billing
	logger  *slog.Logger
}

func NewService(
	subs *repository.SubscriptionRepository,
	users *repository.UserRepository,
	bill billing.Billing,
	logger *slog.Logger,
) *Service {
	return &Service{subs: subs, users: users, billing: bill, logger: logger}
}

// PlanInput is the admin plan-creation payload.
type PlanInput struct {
	Name            string   `json:"name" binding:"required"`
	Description     string   `json:"description"`
	Price           float64  `json:"price" binding:"required,gt=0"`
	Currency        string   `json:"currency"`
	Interval        string   `json:"interval" binding:"required,oneof=day week month year"`
	TrialPeriodDays int      `json:"trial_period_days"`
	Features        []string `json:"features"`
	UnlimitedSwipes bool     `json:"unlimited_swipes"`
	SwipeLimit      int      `json:"swipe_limit"`
}

// CreatePlan registers the plan with the processor first, then persists the
// row carrying the processor ids.
func (s *Service) CreatePlan(ctx context.Context, adminID uint64, in PlanInput) (*db.SubscriptionPlan, error) {
	taken, err := s.subs.PlanNameTaken(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Duplicate("A plan with this name already exists")
	}
	if in.Currency == "" {
		in.Currency = "usd"
	}

	ids, err := s.billing.CreatePlan(in.Name, in.Description, in.Currency, in.Interval, in.Price)
	if err != nil {
		return nil, apperr.Upstream(err)
	}

	plan := db.SubscriptionPlan{
		CreatedByID:     &adminID,
		Name:            in.Name,
		Description:     in.Description,
		Price:           in.Price,
		Currency:        in.Currency,
		Interval:        in.Interval,
		TrialPeriodDays: in.TrialPeriodDays,
		Features:        in.Features,
		UnlimitedSwipes: in.UnlimitedSwipes,
		SwipeLimit:      in.SwipeLimit,
		Active:          true,
		StripeProductID: ids.ProductID,
		StripePriceID:   ids.PriceID,
	}
	if err := s.subs.CreatePlan(ctx, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListPlans shows all plans to admins, only active ones to everyone else.
func (s *Service) ListPlans(ctx context.Context, isAdmin bool) ([]db.SubscriptionPlan, error) {
	return s.subs.ListPlans(ctx, !isAdmin)
}

func (s *Service) GetPlan(ctx context.Context, id uint64) (*db.SubscriptionPlan, error) {
	plan, err := s.subs.GetPlan(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Plan not found")
		}
		return nil, err
	}
	return plan, nil
}

// TogglePlan flips a plan's active flag. Inactive plans stay attached to
// existing subscriptions but cannot be subscribed to.
func (s *Service) TogglePlan(ctx context.Context, id uint64) (*db.SubscriptionPlan, error) {
	plan, err := s.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	plan.Active = !plan.Active
	if err := s.subs.SavePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Subscribe runs the multi-step processor flow: customer, payment method,
// processor subscription, then the local row from the processor's period.
// The steps are deliberately not transactional; a partial failure leaves the
// processor state for the next attempt to pick up.
func (s *Service) Subscribe(ctx context.Context, user *db.User, planID uint64, paymentMethodID string) (*db.Subscription, error) {
	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, apperr.Invalid("Plan is not available")
	}

	live, err := s.subs.HasLiveSubscription(ctx, user.ID, planID)
	if err != nil {
		return nil, err
	}
	if live {
		return nil, apperr.Duplicate("You already have an active subscription to this plan")
	}

	name := ""
	if profile, err := s.users.GetProfileByUserID(ctx, user.ID); err == nil {
		name = profile.Name
	}

	customerID, err := s.billing.GetOrCreateCustomer(user.Email, name)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	if err := s.billing.AttachPaymentMethod(customerID, paymentMethodID); err != nil {
		return nil, apperr.Upstream(err)
	}
	info, err := s.billing.CreateSubscription(customerID, plan.StripePriceID, plan.TrialPeriodDays)
	if err != nil {
		return nil, apperr.Upstream(err)
	}

	sub := db.Subscription{
		UserID:               user.ID,
		PlanID:               plan.ID,
		Status:               mapStatus(info.Status),
		StartsAt:             time.Unix(info.CurrentPeriodStart, 0).UTC(),
		EndsAt:               time.Unix(info.CurrentPeriodEnd, 0).UTC(),
		StripeSubscriptionID: info.ID,
	}
	if err := s.subs.CreateSubscription(ctx, &sub); err != nil {
		return nil, err
	}
	sub.Plan = *plan
	return &sub, nil
}

// Cancel cancels at the processor, then marks the row. Only the owner (or an
// admin) may cancel.
func (s *Service) Cancel(ctx context.Context, user *db.User, subID uint64) error {
	sub, err := s.subs.GetSubscription(ctx, subID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Subscription not found")
		}
		return err
	}
	if sub.UserID != user.ID && user.Role != db.RoleAdmin {
		return apperr.Forbidden("You cannot cancel this subscription")
	}
	if sub.Status == db.SubscriptionCanceled {
		return apperr.Invalid("Subscription is already canceled")
	}

	if err := s.billing.CancelSubscription(sub.StripeSubscriptionID); err != nil {
		return apperr.Upstream(err)
	}
	sub.Status = db.SubscriptionCanceled
	return s.subs.SaveSubscription(ctx, sub)
}

func (s *Service) ListOwn(ctx context.Context, userID uint64) ([]db.Subscription, error) {
	return s.subs.ListForUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context, offset, limit int) ([]db.Subscription, int64, error) {
	return s.subs.ListAll(ctx, offset, limit)
}

func (s *Service) Get(ctx context.Context, id uint64) (*db.Subscription, error) {
	sub, err := s.subs.GetSubscription(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Subscription not found")
		}
		return nil, err
	}
	return sub, nil
}

func (s *Service) PaymentMethods(ctx context.Context, user *db.User) ([]billing.PaymentMethod, error) {
	methods, err := s.billing.ListPaymentMethods(user.Email)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return methods, nil
}

// mapStatus narrows processor statuses to the local enum; anything live at
// the processor but unknown here reads as active.
func mapStatus(status string) db.SubscriptionStatus {
	switch status {
	case "trialing":
		return db.SubscriptionTrialing
	case "canceled":
		return db.SubscriptionCanceled
	default:
		return db.SubscriptionActive
	}
}
