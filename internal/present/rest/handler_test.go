package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/homesteadmarket/homestead/internal/domain"
	"github.com/homesteadmarket/homestead/internal/service"
	"github.com/homesteadmarket/homestead/internal/usecase"
)

// ---- in-memory fakes ----

type memSessions struct {
	mu   sync.Mutex
	rows map[string]domain.Session
}

func newMemSessions() *memSessions {
	return &memSessions{rows: map[string]domain.Session{}}
}

func sessionKey(ns domain.Role, token string) string {
	return string(ns) + "/" + token
}

func (m *memSessions) Put(_ context.Context, s domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[sessionKey(s.Namespace, s.Token)] = s
	return nil
}

func (m *memSessions) Get(_ context.Context, ns domain.Role, token string) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[sessionKey(ns, token)]
	if !ok {
		return domain.Session{}, domain.NotFoundError{Resource: "session"}
	}
	return s, nil
}

func (m *memSessions) Delete(_ context.Context, ns domain.Role, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, sessionKey(ns, token))
	return nil
}

type memPrincipals struct {
	mu   sync.Mutex
	rows map[string]domain.Principal // role/username
}

func newMemPrincipals() *memPrincipals {
	return &memPrincipals{rows: map[string]domain.Principal{}}
}

func principalKey(role domain.Role, username string) string {
	return string(role) + "/" + username
}

func (m *memPrincipals) Create(_ context.Context, p domain.Principal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := principalKey(p.Role(), usernameOf(p))
	if _, ok := m.rows[key]; ok {
		return domain.DuplicateError{Field: "username"}
	}
	m.rows[key] = p
	return nil
}

func (m *memPrincipals) GetByID(_ context.Context, role domain.Role, id uuid.UUID) (domain.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if p.Role() == role && p.PrincipalID() == id {
			return p, nil
		}
	}
	return nil, domain.NotFoundError{Resource: "principal"}
}

func (m *memPrincipals) GetByUsername(_ context.Context, role domain.Role, username string) (domain.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[principalKey(role, username)]
	if !ok {
		return nil, domain.NotFoundError{Resource: "principal"}
	}
	return p, nil
}

func (m *memPrincipals) deactivate(role domain.Role, username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := principalKey(role, username)
	switch v := m.rows[key].(type) {
	case domain.CommonInvestor:
		v.Active = false
		m.rows[key] = v
	case domain.InstitutionalInvestor:
		v.Active = false
		m.rows[key] = v
	case domain.Partner:
		v.Active = false
		m.rows[key] = v
	case domain.Admin:
		v.Active = false
		m.rows[key] = v
	}
}

func usernameOf(p domain.Principal) string {
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

type memProperties struct {
	mu   sync.Mutex
	rows map[uuid.UUID]domain.Property
}

func newMemProperties() *memProperties {
	return &memProperties{rows: map[uuid.UUID]domain.Property{}}
}

func (m *memProperties) Create(_ context.Context, p domain.Property) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[p.ID] = p
	return nil
}

func (m *memProperties) GetByID(_ context.Context, id uuid.UUID) (domain.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return domain.Property{}, domain.NotFoundError{Resource: "property"}
	}
	return p, nil
}

func (m *memProperties) List(_ context.Context, filter domain.PropertyFilter) ([]domain.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Property
	for _, p := range m.rows {
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

func (m *memProperties) ListByPartner(_ context.Context, partnerID uuid.UUID) ([]domain.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Property
	for _, p := range m.rows {
		if p.PartnerID == partnerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProperties) ListAll(_ context.Context) ([]domain.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Property
	for _, p := range m.rows {
		out = append(out, p)
	}
	return out, nil
}

func (m *memProperties) SetStatus(_ context.Context, id uuid.UUID, status domain.PropertyStatus, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return domain.NotFoundError{Resource: "property"}
	}
	p.Status = status
	p.Active = active
	m.rows[id] = p
	return nil
}

type memForeclosures struct {
	rows map[uuid.UUID]domain.ForeclosureListing
}

func (m *memForeclosures) GetByID(_ context.Context, id uuid.UUID) (domain.ForeclosureListing, error) {
	l, ok := m.rows[id]
	if !ok {
		return domain.ForeclosureListing{}, domain.NotFoundError{Resource: "foreclosure listing"}
	}
	return l, nil
}

func (m *memForeclosures) List(_ context.Context) ([]domain.ForeclosureListing, error) {
	var out []domain.ForeclosureListing
	for _, l := range m.rows {
		if l.Active {
			out = append(out, l)
		}
	}
	return out, nil
}

type memOffers struct {
	mu         sync.Mutex
	rows       map[uuid.UUID]domain.Offer
	properties *memProperties
}

func (m *memOffers) Create(_ context.Context, o domain.Offer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[o.ID] = o
	return nil
}

func (m *memOffers) GetByID(_ context.Context, id uuid.UUID) (domain.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.rows[id]
	if !ok {
		return domain.Offer{}, domain.NotFoundError{Resource: "offer"}
	}
	return o, nil
}

// Transition mirrors the storage contract: edge and property state are
// re-checked before anything is written.
func (m *memOffers) Transition(ctx context.Context, id uuid.UUID, to domain.OfferStatus, counter *domain.Offer) (domain.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.rows[id]
	if !ok {
		return domain.Offer{}, domain.NotFoundError{Resource: "offer"}
	}
	if !o.Status.CanTransition(to) {
		return domain.Offer{}, domain.IllegalTransitionError{From: string(o.Status), To: string(to)}
	}
	if to == domain.OfferAccepted {
		property, err := m.properties.GetByID(ctx, o.PropertyID)
		if err != nil {
			return domain.Offer{}, err
		}
		if !property.Offerable() {
			return domain.Offer{}, domain.IllegalTransitionError{From: string(o.Status), To: string(to)}
		}
		if err := m.properties.SetStatus(ctx, property.ID, domain.PropertyUnderContract, property.Active); err != nil {
			return domain.Offer{}, err
		}
	}
	o.Status = to
	m.rows[id] = o
	if counter != nil {
		m.rows[counter.ID] = *counter
	}
	return o, nil
}

func (m *memOffers) ListByInvestor(_ context.Context, investorID uuid.UUID) ([]domain.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Offer
	for _, o := range m.rows {
		if o.InvestorID == investorID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOffers) ListByProperty(_ context.Context, propertyID uuid.UUID) ([]domain.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Offer
	for _, o := range m.rows {
		if o.PropertyID == propertyID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOffers) ListByPartner(ctx context.Context, partnerID uuid.UUID) ([]domain.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Offer
	for _, o := range m.rows {
		property, err := m.properties.GetByID(ctx, o.PropertyID)
		if err == nil && property.PartnerID == partnerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOffers) ListAll(_ context.Context) ([]domain.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Offer
	for _, o := range m.rows {
		out = append(out, o)
	}
	return out, nil
}

type memBids struct {
	mu   sync.Mutex
	rows map[uuid.UUID]domain.ForeclosureBid
}

func (m *memBids) Create(_ context.Context, b domain.ForeclosureBid) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[b.ID] = b
	return nil
}

func (m *memBids) GetByID(_ context.Context, id uuid.UUID) (domain.ForeclosureBid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return domain.ForeclosureBid{}, domain.NotFoundError{Resource: "bid"}
	}
	return b, nil
}

func (m *memBids) ListByInvestor(_ context.Context, investorID uuid.UUID) ([]domain.ForeclosureBid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ForeclosureBid
	for _, b := range m.rows {
		if b.InvestorID == investorID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBids) ListAll(_ context.Context) ([]domain.ForeclosureBid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ForeclosureBid
	for _, b := range m.rows {
		out = append(out, b)
	}
	return out, nil
}

func (m *memBids) Transition(_ context.Context, id uuid.UUID, to domain.BidStatus) (domain.ForeclosureBid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return domain.ForeclosureBid{}, domain.NotFoundError{Resource: "bid"}
	}
	if !b.Status.CanTransition(to) {
		return domain.ForeclosureBid{}, domain.IllegalTransitionError{From: string(b.Status), To: string(to)}
	}
	b.Status = to
	m.rows[id] = b
	return b, nil
}

type memSubscriptions struct {
	mu       sync.Mutex
	states   map[uuid.UUID]domain.Subscription
	requests []domain.SubscriptionRequest
	plans    map[string]domain.Plan
}

func (m *memSubscriptions) GetState(_ context.Context, investorID uuid.UUID) (domain.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[investorID], nil
}

func (m *memSubscriptions) SetState(_ context.Context, investorID uuid.UUID, s domain.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[investorID] = s
	return nil
}

func (m *memSubscriptions) CreateRequest(_ context.Context, r domain.SubscriptionRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, r)
	return nil
}

func (m *memSubscriptions) ConfirmRequests(_ context.Context, investorID uuid.UUID, planID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.requests {
		if r.InvestorID == investorID && r.PlanID == planID && r.Status == domain.SubscriptionRequestPending {
			m.requests[i].Status = domain.SubscriptionRequestConfirmed
		}
	}
	return nil
}

func (m *memSubscriptions) GetPlan(_ context.Context, planID string) (domain.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[planID]
	if !ok {
		return domain.Plan{}, domain.NotFoundError{Resource: "plan"}
	}
	return p, nil
}

func (m *memSubscriptions) ListPlans(_ context.Context) ([]domain.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Plan
	for _, p := range m.plans {
		out = append(out, p)
	}
	return out, nil
}

type silentNotifier struct{}

func (silentNotifier) PropertyListed(context.Context, domain.Property)          {}
func (silentNotifier) PropertyUpdate(context.Context, domain.Property)          {}
func (silentNotifier) ForeclosureUpdate(context.Context, domain.ForeclosureBid) {}

type stubPayments struct{}

func (stubPayments) Charge(_ context.Context, _ string, method string) (bool, error) {
	if strings.Contains(method, "unavailable") {
		return false, fmt.Errorf("provider down")
	}
	if strings.Contains(method, "decline") {
		return false, nil
	}
	return true, nil
}

type openThrottle struct{}

func (openThrottle) Allow(domain.Role, string) bool { return true }
func (openThrottle) Fail(domain.Role, string)       {}
func (openThrottle) Reset(domain.Role, string)      {}

// ---- harness ----

type testServer struct {
	e            *echo.Echo
	principals   *memPrincipals
	properties   *memProperties
	foreclosures *memForeclosures
	sessions     *memSessions
	creds        *service.CredentialStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	principals := newMemPrincipals()
	properties := newMemProperties()
	sessions := newMemSessions()
	offers := &memOffers{rows: map[uuid.UUID]domain.Offer{}, properties: properties}
	bids := &memBids{rows: map[uuid.UUID]domain.ForeclosureBid{}}
	subscriptions := &memSubscriptions{
		states: map[uuid.UUID]domain.Subscription{},
		plans: map[string]domain.Plan{
			"pro": {ID: "pro", Name: "Pro", Price: decimal.NewFromInt(49), PeriodDays: 30},
		},
	}
	foreclosures := &memForeclosures{rows: map[uuid.UUID]domain.ForeclosureListing{}}

	creds := service.NewCredentialStore(sessions, time.Hour)
	auth := usecase.NewAuthUsecase(principals, creds, openThrottle{})
	gate := usecase.NewEntitlementGate(subscriptions)
	listings := usecase.NewListingUsecase(properties, foreclosures, gate, nil, silentNotifier{})
	offerUC := usecase.NewOfferUsecase(offers, properties, silentNotifier{})
	bidUC := usecase.NewBidUsecase(bids, foreclosures, gate, silentNotifier{})
	subUC := usecase.NewSubscriptionUsecase(subscriptions, stubPayments{})

	e := echo.New()
	SetupRoutes(e, NewHandler(auth, listings, offerUC, bidUC, subUC))

	return &testServer{
		e:            e,
		principals:   principals,
		properties:   properties,
		foreclosures: foreclosures,
		sessions:     sessions,
		creds:        creds,
	}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)

	var decoded map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	return rec, decoded
}

func (ts *testServer) register(t *testing.T, role, username string, extra map[string]any) {
	t.Helper()
	body := map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "longenough",
		"fullName": "Test " + username,
	}
	for k, v := range extra {
		body[k] = v
	}
	rec, _ := ts.do(t, http.MethodPost, "/api/v1/"+role+"/register", "", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s/%s: status %d body %s", role, username, rec.Code, rec.Body.String())
	}
}

func (ts *testServer) login(t *testing.T, role, username string) string {
	t.Helper()
	rec, body := ts.do(t, http.MethodPost, "/api/v1/"+role+"/login", "", map[string]any{
		"username": username,
		"password": "longenough",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s/%s: status %d body %s", role, username, rec.Code, rec.Body.String())
	}
	content := body["content"].(map[string]any)
	return content["token"].(string)
}

// seedAdmin provisions an admin out of band, the way operations would.
func (ts *testServer) seedAdmin(t *testing.T) string {
	t.Helper()
	hash, err := ts.creds.HashPassword("longenough")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	admin := domain.Admin{
		ID:           uuid.New(),
		Username:     "ops",
		Email:        "ops@example.com",
		PasswordHash: hash,
		FullName:     "Operations",
		Active:       true,
	}
	if err := ts.principals.Create(context.Background(), admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return ts.login(t, "admin", "ops")
}

// ---- scenarios ----

func TestRegisterDuplicateAndCrossNamespace(t *testing.T) {
	ts := newTestServer(t)

	ts.register(t, "investor", "alice", nil)

	rec, body := ts.do(t, http.MethodPost, "/api/v1/investor/register", "", map[string]any{
		"username": "alice",
		"email":    "other@example.com",
		"password": "longenough",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: status %d", rec.Code)
	}
	if body["code"] != "validation" {
		t.Fatalf("duplicate register: code %v", body["code"])
	}

	// Same username in a different role namespace is fine.
	ts.register(t, "partner", "alice", map[string]any{"company": "Alice Homes"})
}

func TestAdminCannotSelfRegister(t *testing.T) {
	ts := newTestServer(t)

	rec, body := ts.do(t, http.MethodPost, "/api/v1/admin/register", "", map[string]any{
		"username": "mallory",
		"email":    "m@example.com",
		"password": "longenough",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("admin register: status %d", rec.Code)
	}
	if body["code"] != "forbidden" {
		t.Fatalf("admin register: code %v", body["code"])
	}
}

func TestLoginFailures(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "investor", "alice", nil)

	rec, _ := ts.do(t, http.MethodPost, "/api/v1/investor/login", "", map[string]any{
		"username": "alice",
		"password": "wrongpassword",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status %d", rec.Code)
	}

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/investor/login", "", map[string]any{
		"username": "nobody",
		"password": "longenough",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: status %d", rec.Code)
	}
}

func TestForeclosureGateAndCheckout(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "investor", "alice", nil)
	token := ts.login(t, "investor", "alice")

	rec, body := ts.do(t, http.MethodGet, "/api/v1/foreclosures", token, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("ungated access: status %d", rec.Code)
	}
	if body["code"] != "subscription_required" {
		t.Fatalf("ungated access: code %v", body["code"])
	}

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/subscription/checkout", token, map[string]any{
		"planId":        "pro",
		"paymentMethod": "tok_visa",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("checkout: status %d body %s", rec.Code, rec.Body.String())
	}

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/foreclosures", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("entitled access: status %d", rec.Code)
	}
}

func TestCheckoutPaymentOutcomes(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "investor", "alice", nil)
	token := ts.login(t, "investor", "alice")

	rec, body := ts.do(t, http.MethodPost, "/api/v1/subscription/checkout", token, map[string]any{
		"planId":        "pro",
		"paymentMethod": "tok_decline",
	})
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("declined: status %d", rec.Code)
	}
	if body["code"] != "payment_declined" {
		t.Fatalf("declined: code %v", body["code"])
	}

	rec, body = ts.do(t, http.MethodPost, "/api/v1/subscription/checkout", token, map[string]any{
		"planId":        "pro",
		"paymentMethod": "tok_unavailable",
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unavailable: status %d", rec.Code)
	}
	if body["code"] != "dependency_failure" {
		t.Fatalf("unavailable: code %v", body["code"])
	}

	// Neither failure granted access.
	rec, _ = ts.do(t, http.MethodGet, "/api/v1/foreclosures", token, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("after failed checkouts: status %d", rec.Code)
	}
}

func TestInstitutionalBlanketAccess(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "institutional", "fund", map[string]any{"institution": "Granite Fund"})
	token := ts.login(t, "institutional", "fund")

	rec, _ := ts.do(t, http.MethodGet, "/api/v1/foreclosures", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("institutional access: status %d", rec.Code)
	}
}

func TestInactiveAccountForbiddenOverBearer(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "investor", "alice", nil)
	token := ts.login(t, "investor", "alice")

	// The session outlives the account: deactivation must surface as
	// forbidden, not as an unknown token.
	ts.principals.deactivate(domain.RoleInvestor, "alice")

	rec, body := ts.do(t, http.MethodGet, "/api/v1/offers", token, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("inactive account: status %d, want %d", rec.Code, http.StatusForbidden)
	}
	if body["code"] != "forbidden" {
		t.Fatalf("inactive account: code %v", body["code"])
	}
}

func TestCrossNamespaceTokenRejected(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "partner", "bob", map[string]any{"company": "Bob Realty"})
	partnerToken := ts.login(t, "partner", "bob")

	// An investor-only route must not honor a partner session.
	rec, _ := ts.do(t, http.MethodGet, "/api/v1/offers", partnerToken, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("cross-namespace token: status %d", rec.Code)
	}
}

func TestOfferAcceptFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "partner", "bob", map[string]any{"company": "Bob Realty"})
	ts.register(t, "investor", "alice", nil)
	ts.register(t, "investor", "carol", nil)
	partnerToken := ts.login(t, "partner", "bob")
	aliceToken := ts.login(t, "investor", "alice")
	carolToken := ts.login(t, "investor", "carol")

	rec, body := ts.do(t, http.MethodPost, "/api/v1/partner/properties", partnerToken, map[string]any{
		"title":   "3BR Ranch",
		"address": "12 Oak St",
		"city":    "Austin",
		"state":   "TX",
		"price":   "350000",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create property: status %d body %s", rec.Code, rec.Body.String())
	}
	propertyID := body["content"].(map[string]any)["id"].(string)

	closing := time.Now().AddDate(0, 2, 0).Format("2006-01-02")
	makeOffer := func(token string) string {
		rec, body := ts.do(t, http.MethodPost, "/api/v1/offers", token, map[string]any{
			"propertyId":    propertyID,
			"amount":        "340000",
			"earnestMoney":  "5000",
			"closingDate":   closing,
			"financingType": "conventional",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create offer: status %d body %s", rec.Code, rec.Body.String())
		}
		return body["content"].(map[string]any)["id"].(string)
	}
	aliceOffer := makeOffer(aliceToken)
	carolOffer := makeOffer(carolToken)

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/offers/"+aliceOffer+"/transition", partnerToken, map[string]any{
		"status": "accepted",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("accept: status %d body %s", rec.Code, rec.Body.String())
	}

	property, err := ts.properties.GetByID(context.Background(), uuid.MustParse(propertyID))
	if err != nil {
		t.Fatalf("load property: %v", err)
	}
	if property.Status != domain.PropertyUnderContract {
		t.Fatalf("property status = %s, want under_contract", property.Status)
	}

	// The property is spoken for; the second accept must conflict.
	rec, body = ts.do(t, http.MethodPost, "/api/v1/offers/"+carolOffer+"/transition", partnerToken, map[string]any{
		"status": "accepted",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("second accept: status %d", rec.Code)
	}
	if body["code"] != "illegal_transition" {
		t.Fatalf("second accept: code %v", body["code"])
	}
}

func TestOfferTransitionOwnership(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "partner", "bob", map[string]any{"company": "Bob Realty"})
	ts.register(t, "partner", "eve", map[string]any{"company": "Eve Estates"})
	ts.register(t, "investor", "alice", nil)
	bobToken := ts.login(t, "partner", "bob")
	eveToken := ts.login(t, "partner", "eve")
	aliceToken := ts.login(t, "investor", "alice")

	rec, body := ts.do(t, http.MethodPost, "/api/v1/partner/properties", bobToken, map[string]any{
		"title":   "Duplex",
		"address": "9 Elm St",
		"city":    "Dallas",
		"state":   "TX",
		"price":   "500000",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create property: status %d", rec.Code)
	}
	propertyID := body["content"].(map[string]any)["id"].(string)

	closing := time.Now().AddDate(0, 1, 0).Format("2006-01-02")
	rec, body = ts.do(t, http.MethodPost, "/api/v1/offers", aliceToken, map[string]any{
		"propertyId":    propertyID,
		"amount":        "490000",
		"earnestMoney":  "10000",
		"closingDate":   closing,
		"financingType": "cash",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create offer: status %d", rec.Code)
	}
	offerID := body["content"].(map[string]any)["id"].(string)

	rec, body = ts.do(t, http.MethodPost, "/api/v1/offers/"+offerID+"/transition", eveToken, map[string]any{
		"status": "rejected",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign partner: status %d", rec.Code)
	}
	if body["code"] != "forbidden" {
		t.Fatalf("foreign partner: code %v", body["code"])
	}
}

func TestBidLifecycle(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "institutional", "fund", map[string]any{"institution": "Granite Fund"})
	fundToken := ts.login(t, "institutional", "fund")
	adminToken := ts.seedAdmin(t)

	listingID := uuid.New()
	ts.foreclosures.rows = map[uuid.UUID]domain.ForeclosureListing{
		listingID: {
			ID:          listingID,
			Title:       "Bank-owned bungalow",
			StartingBid: decimal.NewFromInt(90000),
			AuctionDate: time.Now().AddDate(0, 1, 0),
			Active:      true,
		},
	}

	// Boundary equality on the starting bid is valid.
	rec, body := ts.do(t, http.MethodPost, "/api/v1/foreclosure-bids", fundToken, map[string]any{
		"listingId":     listingID.String(),
		"bidAmount":     "90000",
		"maxBidAmount":  "90000",
		"contactMethod": "email",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create bid: status %d body %s", rec.Code, rec.Body.String())
	}
	bidID := body["content"].(map[string]any)["id"].(string)

	// Institutional investors cannot move bids.
	rec, _ = ts.do(t, http.MethodPost, "/api/v1/foreclosure-bids/"+bidID+"/transition", fundToken, map[string]any{
		"status": "reviewed",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("non-admin transition: status %d", rec.Code)
	}

	// Admins may, but only one step at a time.
	rec, _ = ts.do(t, http.MethodPost, "/api/v1/foreclosure-bids/"+bidID+"/transition", adminToken, map[string]any{
		"status": "won",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("skipped step: status %d", rec.Code)
	}

	for _, step := range []string{"reviewed", "contacted", "won"} {
		rec, _ = ts.do(t, http.MethodPost, "/api/v1/foreclosure-bids/"+bidID+"/transition", adminToken, map[string]any{
			"status": step,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("step %s: status %d body %s", step, rec.Code, rec.Body.String())
		}
	}

	// Terminal.
	rec, _ = ts.do(t, http.MethodPost, "/api/v1/foreclosure-bids/"+bidID+"/transition", adminToken, map[string]any{
		"status": "lost",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("terminal transition: status %d", rec.Code)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "investor", "alice", nil)
	token := ts.login(t, "investor", "alice")

	rec, _ := ts.do(t, http.MethodGet, "/api/v1/subscription", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("before logout: status %d", rec.Code)
	}

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/investor/logout", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: status %d", rec.Code)
	}

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/subscription", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("after logout: status %d", rec.Code)
	}
}

func TestWithdrawUnderContractConflicts(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "partner", "bob", map[string]any{"company": "Bob Realty"})
	partnerToken := ts.login(t, "partner", "bob")

	rec, body := ts.do(t, http.MethodPost, "/api/v1/partner/properties", partnerToken, map[string]any{
		"title":   "Cottage",
		"address": "4 Pine Rd",
		"city":    "Waco",
		"state":   "TX",
		"price":   "200000",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create property: status %d", rec.Code)
	}
	propertyID := uuid.MustParse(body["content"].(map[string]any)["id"].(string))

	if err := ts.properties.SetStatus(context.Background(), propertyID, domain.PropertyUnderContract, true); err != nil {
		t.Fatalf("set status: %v", err)
	}

	rec, respBody := ts.do(t, http.MethodPost, "/api/v1/partner/properties/"+propertyID.String()+"/withdraw", partnerToken, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("withdraw under contract: status %d", rec.Code)
	}
	if respBody["code"] != "illegal_transition" {
		t.Fatalf("withdraw under contract: code %v", respBody["code"])
	}
}
