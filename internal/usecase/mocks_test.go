package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/homesteadmarket/homestead/internal/domain"
)

// In-memory fakes honoring the repository contracts, shared by the usecase
// tests in this package.

type principalKey struct {
	role domain.Role
	name string
}

type memPrincipalRepo struct {
	byID       map[uuid.UUID]domain.Principal
	byUsername map[principalKey]domain.Principal
	emails     map[principalKey]struct{}
}

func newMemPrincipalRepo() *memPrincipalRepo {
	return &memPrincipalRepo{
		byID:       map[uuid.UUID]domain.Principal{},
		byUsername: map[principalKey]domain.Principal{},
		emails:     map[principalKey]struct{}{},
	}
}

func principalEmail(p domain.Principal) string {
	switch v := p.(type) {
	case domain.CommonInvestor:
		return v.Email
	case domain.InstitutionalInvestor:
		return v.Email
	case domain.Partner:
		return v.Email
	case domain.Admin:
		return v.Email
	}
	return ""
}

func principalUsername(p domain.Principal) string {
	switch v := p.(type) {
	case domain.CommonInvestor:
		return v.Username
	case domain.InstitutionalInvestor:
		return v.Username
	case domain.Partner:
		return v.Username
	case domain.Admin:
		return v.Username
	}
	return ""
}

func (m *memPrincipalRepo) Create(ctx context.Context, p domain.Principal) error {
	userKey := principalKey{p.Role(), principalUsername(p)}
	emailKey := principalKey{p.Role(), principalEmail(p)}
	if _, ok := m.byUsername[userKey]; ok {
		return domain.DuplicateError{Field: "username"}
	}
	if _, ok := m.emails[emailKey]; ok {
		return domain.DuplicateError{Field: "email"}
	}
	m.byUsername[userKey] = p
	m.emails[emailKey] = struct{}{}
	m.byID[p.PrincipalID()] = p
	return nil
}

func (m *memPrincipalRepo) GetByID(ctx context.Context, role domain.Role, id uuid.UUID) (domain.Principal, error) {
	p, ok := m.byID[id]
	if !ok || p.Role() != role {
		return nil, domain.NotFoundError{Resource: "principal"}
	}
	return p, nil
}

func (m *memPrincipalRepo) GetByUsername(ctx context.Context, role domain.Role, username string) (domain.Principal, error) {
	p, ok := m.byUsername[principalKey{role, username}]
	if !ok {
		return nil, domain.NotFoundError{Resource: "principal"}
	}
	return p, nil
}

type memPropertyRepo struct {
	properties map[uuid.UUID]domain.Property
}

func newMemPropertyRepo() *memPropertyRepo {
	return &memPropertyRepo{properties: map[uuid.UUID]domain.Property{}}
}

func (m *memPropertyRepo) Create(ctx context.Context, p domain.Property) error {
	m.properties[p.ID] = p
	return nil
}

func (m *memPropertyRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Property, error) {
	p, ok := m.properties[id]
	if !ok {
		return domain.Property{}, domain.NotFoundError{Resource: "property"}
	}
	return p, nil
}

func (m *memPropertyRepo) List(ctx context.Context, filter domain.PropertyFilter) ([]domain.Property, error) {
	var out []domain.Property
	for _, p := range m.properties {
		if !p.Active {
			continue
		}
		if filter.City != "" && p.City != filter.City {
			continue
		}
		if filter.MaxPrice != nil && p.Price.Cmp(*filter.MaxPrice) > 0 {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memPropertyRepo) ListByPartner(ctx context.Context, partnerID uuid.UUID) ([]domain.Property, error) {
	var out []domain.Property
	for _, p := range m.properties {
		if p.PartnerID == partnerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPropertyRepo) ListAll(ctx context.Context) ([]domain.Property, error) {
	var out []domain.Property
	for _, p := range m.properties {
		out = append(out, p)
	}
	return out, nil
}

func (m *memPropertyRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.PropertyStatus, active bool) error {
	p, ok := m.properties[id]
	if !ok {
		return domain.NotFoundError{Resource: "property"}
	}
	p.Status = status
	p.Active = active
	m.properties[id] = p
	return nil
}

type memForeclosureRepo struct {
	listings map[uuid.UUID]domain.ForeclosureListing
}

func newMemForeclosureRepo() *memForeclosureRepo {
	return &memForeclosureRepo{listings: map[uuid.UUID]domain.ForeclosureListing{}}
}

func (m *memForeclosureRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.ForeclosureListing, error) {
	l, ok := m.listings[id]
	if !ok {
		return domain.ForeclosureListing{}, domain.NotFoundError{Resource: "foreclosure listing"}
	}
	return l, nil
}

func (m *memForeclosureRepo) List(ctx context.Context) ([]domain.ForeclosureListing, error) {
	var out []domain.ForeclosureListing
	for _, l := range m.listings {
		if l.Active {
			out = append(out, l)
		}
	}
	return out, nil
}

// memOfferRepo mirrors the real repository's transactional contract: the
// transition edge and the property's offerable state are re-checked at
// write time.
type memOfferRepo struct {
	offers     map[uuid.UUID]domain.Offer
	properties *memPropertyRepo
}

func newMemOfferRepo(properties *memPropertyRepo) *memOfferRepo {
	return &memOfferRepo{offers: map[uuid.UUID]domain.Offer{}, properties: properties}
}

func (m *memOfferRepo) Create(ctx context.Context, o domain.Offer) error {
	m.offers[o.ID] = o
	return nil
}

func (m *memOfferRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Offer, error) {
	o, ok := m.offers[id]
	if !ok {
		return domain.Offer{}, domain.NotFoundError{Resource: "offer"}
	}
	return o, nil
}

func (m *memOfferRepo) ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]domain.Offer, error) {
	var out []domain.Offer
	for _, o := range m.offers {
		if o.InvestorID == investorID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOfferRepo) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.Offer, error) {
	var out []domain.Offer
	for _, o := range m.offers {
		if o.PropertyID == propertyID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOfferRepo) ListByPartner(ctx context.Context, partnerID uuid.UUID) ([]domain.Offer, error) {
	var out []domain.Offer
	for _, o := range m.offers {
		if p, err := m.properties.GetByID(ctx, o.PropertyID); err == nil && p.PartnerID == partnerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOfferRepo) ListAll(ctx context.Context) ([]domain.Offer, error) {
	var out []domain.Offer
	for _, o := range m.offers {
		out = append(out, o)
	}
	return out, nil
}

func (m *memOfferRepo) Transition(ctx context.Context, id uuid.UUID, to domain.OfferStatus, counter *domain.Offer) (domain.Offer, error) {
	o, ok := m.offers[id]
	if !ok {
		return domain.Offer{}, domain.NotFoundError{Resource: "offer"}
	}
	if !o.Status.CanTransition(to) {
		return domain.Offer{}, domain.IllegalTransitionError{From: string(o.Status), To: string(to)}
	}
	if to == domain.OfferAccepted {
		p, err := m.properties.GetByID(ctx, o.PropertyID)
		if err != nil {
			return domain.Offer{}, err
		}
		if !p.Offerable() {
			return domain.Offer{}, domain.IllegalTransitionError{From: string(o.Status), To: string(to)}
		}
		if err := m.properties.SetStatus(ctx, p.ID, domain.PropertyUnderContract, p.Active); err != nil {
			return domain.Offer{}, err
		}
	}
	o.Status = to
	o.UpdatedAt = time.Now()
	m.offers[id] = o
	if counter != nil {
		m.offers[counter.ID] = *counter
	}
	return o, nil
}

type memBidRepo struct {
	bids map[uuid.UUID]domain.ForeclosureBid
}

func newMemBidRepo() *memBidRepo {
	return &memBidRepo{bids: map[uuid.UUID]domain.ForeclosureBid{}}
}

func (m *memBidRepo) Create(ctx context.Context, b domain.ForeclosureBid) error {
	m.bids[b.ID] = b
	return nil
}

func (m *memBidRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.ForeclosureBid, error) {
	b, ok := m.bids[id]
	if !ok {
		return domain.ForeclosureBid{}, domain.NotFoundError{Resource: "bid"}
	}
	return b, nil
}

func (m *memBidRepo) ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]domain.ForeclosureBid, error) {
	var out []domain.ForeclosureBid
	for _, b := range m.bids {
		if b.InvestorID == investorID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBidRepo) ListAll(ctx context.Context) ([]domain.ForeclosureBid, error) {
	var out []domain.ForeclosureBid
	for _, b := range m.bids {
		out = append(out, b)
	}
	return out, nil
}

func (m *memBidRepo) Transition(ctx context.Context, id uuid.UUID, to domain.BidStatus) (domain.ForeclosureBid, error) {
	b, ok := m.bids[id]
	if !ok {
		return domain.ForeclosureBid{}, domain.NotFoundError{Resource: "bid"}
	}
	if !b.Status.CanTransition(to) {
		return domain.ForeclosureBid{}, domain.IllegalTransitionError{From: string(b.Status), To: string(to)}
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	m.bids[id] = b
	return b, nil
}

type memSubscriptionRepo struct {
	states   map[uuid.UUID]domain.Subscription
	requests map[uuid.UUID]domain.SubscriptionRequest
	plans    map[string]domain.Plan
}

func newMemSubscriptionRepo() *memSubscriptionRepo {
	return &memSubscriptionRepo{
		states:   map[uuid.UUID]domain.Subscription{},
		requests: map[uuid.UUID]domain.SubscriptionRequest{},
		plans:    map[string]domain.Plan{},
	}
}

func (m *memSubscriptionRepo) GetState(ctx context.Context, investorID uuid.UUID) (domain.Subscription, error) {
	s, ok := m.states[investorID]
	if !ok {
		return domain.Subscription{}, domain.NotFoundError{Resource: "subscription"}
	}
	return s, nil
}

func (m *memSubscriptionRepo) SetState(ctx context.Context, investorID uuid.UUID, s domain.Subscription) error {
	m.states[investorID] = s
	return nil
}

func (m *memSubscriptionRepo) CreateRequest(ctx context.Context, r domain.SubscriptionRequest) error {
	m.requests[r.ID] = r
	return nil
}

func (m *memSubscriptionRepo) ConfirmRequests(ctx context.Context, investorID uuid.UUID, planID string) error {
	for id, r := range m.requests {
		if r.InvestorID == investorID && r.PlanID == planID {
			r.Status = domain.SubscriptionRequestConfirmed
			m.requests[id] = r
		}
	}
	return nil
}

func (m *memSubscriptionRepo) GetPlan(ctx context.Context, planID string) (domain.Plan, error) {
	p, ok := m.plans[planID]
	if !ok {
		return domain.Plan{}, domain.NotFoundError{Resource: "plan"}
	}
	return p, nil
}

func (m *memSubscriptionRepo) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	var out []domain.Plan
	for _, p := range m.plans {
		out = append(out, p)
	}
	return out, nil
}

type recordingNotifier struct {
	listed       []domain.Property
	updated      []domain.Property
	foreclosures []domain.ForeclosureBid
}

func (n *recordingNotifier) PropertyListed(ctx context.Context, p domain.Property) {
	n.listed = append(n.listed, p)
}

func (n *recordingNotifier) PropertyUpdate(ctx context.Context, p domain.Property) {
	n.updated = append(n.updated, p)
}

func (n *recordingNotifier) ForeclosureUpdate(ctx context.Context, b domain.ForeclosureBid) {
	n.foreclosures = append(n.foreclosures, b)
}

type stubPayments struct {
	approve bool
	err     error
	charged []string
}

func (s *stubPayments) Charge(ctx context.Context, planID string, paymentMethod string) (bool, error) {
	s.charged = append(s.charged, planID)
	return s.approve, s.err
}

// fakeCreds implements the CredentialStore port without bcrypt cost.
type fakeCreds struct {
	sessions map[string]fakeSession
}

type fakeSession struct {
	ns  domain.Role
	id  uuid.UUID
	exp time.Time
}

func newFakeCreds() *fakeCreds {
	return &fakeCreds{sessions: map[string]fakeSession{}}
}

func (f *fakeCreds) HashPassword(password string) (string, error) { return "hash:" + password, nil }

func (f *fakeCreds) VerifyPassword(password, hash string) bool { return hash == "hash:"+password }

func (f *fakeCreds) IssueSession(ctx context.Context, principalID uuid.UUID, ns domain.Role) (string, time.Time, error) {
	token := uuid.NewString()
	exp := time.Now().Add(time.Hour)
	f.sessions[string(ns)+"/"+token] = fakeSession{ns: ns, id: principalID, exp: exp}
	return token, exp, nil
}

func (f *fakeCreds) ResolveSession(ctx context.Context, token string, ns domain.Role) (uuid.UUID, error) {
	s, ok := f.sessions[string(ns)+"/"+token]
	if !ok || !time.Now().Before(s.exp) {
		return uuid.Nil, domain.NotFoundError{Resource: "session"}
	}
	return s.id, nil
}

func (f *fakeCreds) RevokeSession(ctx context.Context, token string, ns domain.Role) error {
	delete(f.sessions, string(ns)+"/"+token)
	return nil
}

type noThrottle struct{}

func (noThrottle) Allow(role domain.Role, username string) bool { return true }
func (noThrottle) Fail(role domain.Role, username string)       {}
func (noThrottle) Reset(role domain.Role, username string)      {}
