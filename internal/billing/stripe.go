package billing

import (
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/customer"
	"github.com/stripe/stripe-go/v81/paymentmethod"
	"github.com/stripe/stripe-go/v81/price"
	"github.com/stripe/stripe-go/v81/product"
	"github.com/stripe/stripe-go/v81/subscription"

	"github.com/realtruedate/backend/internal/config"
)

// PlanIDs are the processor-side ids created for a subscription plan.
type PlanIDs struct {
	ProductID string
	PriceID   string
}

// SubscriptionInfo is the slice of a processor subscription the store needs.
type SubscriptionInfo struct {
	ID                 string
	Status             string
	CurrentPeriodStart int64
	CurrentPeriodEnd   int64
}

// PaymentMethod is a card summary surfaced to the client.
type PaymentMethod struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int64  `json:"exp_month"`
	ExpYear  int64  `json:"exp_year"`
}

// Billing is the payment-processor collaborator. The Stripe client
// implements it; tests use fakes.
type Billing interface {
	CreatePlan(name, description, currency, interval string, priceAmount float64) (*PlanIDs, error)
	GetOrCreateCustomer(email, name string) (string, error)
	AttachPaymentMethod(customerID, paymentMethodID string) error
	CreateSubscription(customerID, priceID string, trialDays int) (*SubscriptionInfo, error)
	CancelSubscription(subscriptionID string) error
	ListPaymentMethods(email string) ([]PaymentMethod, error)
}

type StripeBilling struct{}

func NewStripe(cfg *config.Config) *StripeBilling {
	stripe.Key = cfg.Stripe.SecretKey
	return &StripeBilling{}
}

// CreatePlan creates a product and a recurring price. Stripe wants the
// amount in the smallest currency unit.
func (s *StripeBilling) CreatePlan(name, description, currency, interval string, priceAmount float64) (*PlanIDs, error) {
	cents := int64(priceAmount * 100)
	if cents <= 0 {
		return nil, fmt.Errorf("price must be a positive number")
	}
	if cents > 1_000_000_000 {
		return nil, fmt.Errorf("price exceeds the maximum allowed amount")
	}

	prod, err := product.New(&stripe.ProductParams{
		Name:        stripe.String(name),
		Description: stripe.String(description),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating stripe product: %w", err)
	}

	pr, err := price.New(&stripe.PriceParams{
		UnitAmount: stripe.Int64(cents),
		Currency:   stripe.String(currency),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String(interval),
		},
		Product: stripe.String(prod.ID),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating stripe price: %w", err)
	}

	return &PlanIDs{ProductID: prod.ID, PriceID: pr.ID}, nil
}

func (s *StripeBilling) GetOrCreateCustomer(email, name string) (string, error) {
	iter := customer.List(&stripe.CustomerListParams{
		Email: stripe.String(email),
	})
	for iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("stripe customer lookup failed: %w", err)
	}

	cust, err := customer.New(&stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("stripe customer creation failed: %w", err)
	}
	return cust.ID, nil
}

// AttachPaymentMethod attaches the method and makes it the default for
// future invoices.
func (s *StripeBilling) AttachPaymentMethod(customerID, paymentMethodID string) error {
	if _, err := paymentmethod.Attach(paymentMethodID, &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customerID),
	}); err != nil {
		return fmt.Errorf("error attaching payment method: %w", err)
	}
	if _, err := customer.Update(customerID, &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	}); err != nil {
		return fmt.Errorf("error setting default payment method: %w", err)
	}
	return nil
}

func (s *StripeBilling) CreateSubscription(customerID, priceID string, trialDays int) (*SubscriptionInfo, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
	}
	if trialDays > 0 {
		params.TrialPeriodDays = stripe.Int64(int64(trialDays))
	}
	sub, err := subscription.New(params)
	if err != nil {
		return nil, fmt.Errorf("error creating stripe subscription: %w", err)
	}
	return &SubscriptionInfo{
		ID:                 sub.ID,
		Status:             string(sub.Status),
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
	}, nil
}

func (s *StripeBilling) CancelSubscription(subscriptionID string) error {
	if _, err := subscription.Cancel(subscriptionID, nil); err != nil {
		return fmt.Errorf("error cancelling stripe subscription: %w", err)
	}
	return nil
}

func (s *StripeBilling) ListPaymentMethods(email string) ([]PaymentMethod, error) {
	customerID, err := s.GetOrCreateCustomer(email, "")
	if err != nil {
		return nil, err
	}
	iter := paymentmethod.List(&stripe.PaymentMethodListParams{
		Customer: stripe.String(customerID),
		Type:     stripe.String("card"),
	})
	var methods []PaymentMethod
	for iter.Next() {
		pm := iter.PaymentMethod()
		m := PaymentMethod{ID: pm.ID}
		if pm.Card != nil {
			m.Brand = string(pm.Card.Brand)
			m.Last4 = pm.Card.Last4
			m.ExpMonth = pm.Card.ExpMonth
			m.ExpYear = pm.Card.ExpYear
		}
		methods = append(methods, m)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("error retrieving payment methods: %w", err)
	}
	return methods, nil
}
