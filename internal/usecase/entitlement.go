package usecase

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/homesteadmarket/homestead/internal/domain"
)

// EntitlementGate decides who may read foreclosure data and place bids on
// it. Institutional investors have blanket access; common investors need a
// live subscription; admins bypass every gate; partners have no foreclosure
// capability at all.
type EntitlementGate struct {
	subscriptions SubscriptionRepository
	now           func() time.Time
}

func NewEntitlementGate(subscriptions SubscriptionRepository) *EntitlementGate {
	return &EntitlementGate{
		subscriptions: subscriptions,
		now:           time.Now,
	}
}

// CanAccessForeclosures returns nil when the principal is entitled. A
// common investor without a live subscription gets
// domain.ErrSubscriptionRequired, never a generic forbidden, so the surface
// can upsell.
func (g *EntitlementGate) CanAccessForeclosures(ctx context.Context, p domain.Principal) error {
	switch p.(type) {
	case domain.InstitutionalInvestor:
		return nil
	case domain.Admin:
		return nil
	case domain.Partner:
		return domain.ForbiddenError{Reason: "partners have no foreclosure access"}
	case domain.CommonInvestor:
		// Always re-read the stored state: the principal attached at auth
		// time may carry a stale snapshot.
		state, err := g.subscriptions.GetState(ctx, p.PrincipalID())
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrSubscriptionRequired
			}
			return err
		}
		if !state.Entitled(g.now()) {
			return domain.ErrSubscriptionRequired
		}
		return nil
	}
	return domain.ForbiddenError{Reason: "unknown principal kind"}
}
