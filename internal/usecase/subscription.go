package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/homesteadmarket/homestead/internal/domain"
)

// ErrPaymentDeclined is a charge the processor refused, as opposed to a
// processor that could not be reached.
var ErrPaymentDeclined = errors.New("payment declined")

type SubscriptionUsecase struct {
	subscriptions SubscriptionRepository
	payments      PaymentProcessor
	now           func() time.Time
}

func NewSubscriptionUsecase(subscriptions SubscriptionRepository, payments PaymentProcessor) *SubscriptionUsecase {
	return &SubscriptionUsecase{
		subscriptions: subscriptions,
		payments:      payments,
		now:           time.Now,
	}
}

// Request records a plan intake awaiting payment confirmation. Only common
// investors subscribe; institutional access is blanket by business rule.
func (uc *SubscriptionUsecase) Request(ctx context.Context, investor domain.Principal, planID, message string) (domain.SubscriptionRequest, error) {
	if _, ok := investor.(domain.CommonInvestor); !ok {
		return domain.SubscriptionRequest{}, domain.ForbiddenError{Reason: "only individual investors subscribe"}
	}

	if _, err := uc.subscriptions.GetPlan(ctx, planID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.SubscriptionRequest{}, domain.ValidationError{Field: "planId", Reason: "unknown plan"}
		}
		return domain.SubscriptionRequest{}, err
	}

	req := domain.SubscriptionRequest{
		ID:         uuid.New(),
		InvestorID: investor.PrincipalID(),
		PlanID:     planID,
		Message:    message,
		Status:     domain.SubscriptionRequestPending,
		CreatedAt:  uc.now(),
	}

	if err := uc.subscriptions.CreateRequest(ctx, req); err != nil {
		return domain.SubscriptionRequest{}, errors.Wrap(err, "storing subscription request failed")
	}

	return req, nil
}

// Checkout charges the plan and, on success, activates the subscription for
// one plan period. The payment call happens strictly outside any database
// transaction; entity writes only start once the charge has settled.
func (uc *SubscriptionUsecase) Checkout(ctx context.Context, investor domain.Principal, planID, paymentMethod string) (domain.Subscription, error) {
	if _, ok := investor.(domain.CommonInvestor); !ok {
		return domain.Subscription{}, domain.ForbiddenError{Reason: "only individual investors subscribe"}
	}

	plan, err := uc.subscriptions.GetPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Subscription{}, domain.ValidationError{Field: "planId", Reason: "unknown plan"}
		}
		return domain.Subscription{}, err
	}

	ok, err := uc.payments.Charge(ctx, plan.ID, paymentMethod)
	if err != nil {
		return domain.Subscription{}, domain.DependencyFailureError{Op: "payment", Cause: err}
	}
	if !ok {
		return domain.Subscription{}, ErrPaymentDeclined
	}

	periodEnd := uc.now().AddDate(0, 0, plan.PeriodDays)
	state, err := uc.Activate(ctx, investor.PrincipalID(), plan.ID, periodEnd)
	if err != nil {
		return domain.Subscription{}, err
	}

	// Pending intakes for this plan are satisfied by the payment.
	if err := uc.subscriptions.ConfirmRequests(ctx, investor.PrincipalID(), plan.ID); err != nil {
		return state, errors.Wrap(err, "confirming subscription requests failed")
	}

	return state, nil
}

// Activate sets the subscription live until periodEnd. Re-activation simply
// overwrites the expiry; there is no renewal bookkeeping beyond it.
func (uc *SubscriptionUsecase) Activate(ctx context.Context, investorID uuid.UUID, planID string, periodEnd time.Time) (domain.Subscription, error) {
	state := domain.Subscription{
		Active:    true,
		PlanID:    planID,
		ExpiresAt: &periodEnd,
	}
	if err := uc.subscriptions.SetState(ctx, investorID, state); err != nil {
		return domain.Subscription{}, errors.Wrap(err, "activating subscription failed")
	}
	return state, nil
}

// Cancel stops renewal without revoking access: the flag stays set and the
// stored expiry keeps gating until it lapses. A subscription with no expiry
// has no stored period to honor, so cancel bounds it at now.
func (uc *SubscriptionUsecase) Cancel(ctx context.Context, investorID uuid.UUID) (domain.Subscription, error) {
	state, err := uc.subscriptions.GetState(ctx, investorID)
	if err != nil {
		return domain.Subscription{}, err
	}

	if state.ExpiresAt == nil {
		now := uc.now()
		state.ExpiresAt = &now
		if err := uc.subscriptions.SetState(ctx, investorID, state); err != nil {
			return domain.Subscription{}, errors.Wrap(err, "cancelling subscription failed")
		}
	}

	return state, nil
}

// State reads the current stored subscription for display.
func (uc *SubscriptionUsecase) State(ctx context.Context, investorID uuid.UUID) (domain.Subscription, error) {
	return uc.subscriptions.GetState(ctx, investorID)
}

// Plans lists the purchasable tiers.
func (uc *SubscriptionUsecase) Plans(ctx context.Context) ([]domain.Plan, error) {
	return uc.subscriptions.ListPlans(ctx)
}
