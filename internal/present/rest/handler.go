package rest

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"

	"github.com/homesteadmarket/homestead/internal/domain"
	"github.com/homesteadmarket/homestead/internal/present/rest/middleware"
	"github.com/homesteadmarket/homestead/internal/present/rest/presenter"
	"github.com/homesteadmarket/homestead/internal/usecase"
)

var tracer = otel.Tracer("rest")

type Handler struct {
	auth          *usecase.AuthUsecase
	listings      *usecase.ListingUsecase
	offers        *usecase.OfferUsecase
	bids          *usecase.BidUsecase
	subscriptions *usecase.SubscriptionUsecase
}

func NewHandler(
	auth *usecase.AuthUsecase,
	listings *usecase.ListingUsecase,
	offers *usecase.OfferUsecase,
	bids *usecase.BidUsecase,
	subscriptions *usecase.SubscriptionUsecase,
) *Handler {
	return &Handler{
		auth:          auth,
		listings:      listings,
		offers:        offers,
		bids:          bids,
		subscriptions: subscriptions,
	}
}

// SetupRoutes registers the full /api/v1 surface.
func SetupRoutes(e *echo.Echo, h *Handler) {
	api := e.Group("/api/v1")

	api.POST("/:role/register", h.Register)
	api.POST("/:role/login", h.Login)
	api.POST("/:role/logout", h.Logout)

	api.GET("/plans", h.Plans)
	api.GET("/properties", h.BrowseProperties)
	api.GET("/properties/:id", h.GetProperty)

	partner := middleware.RequireRoles(h.auth, domain.RolePartner)
	admin := middleware.RequireRoles(h.auth, domain.RoleAdmin)
	investors := middleware.RequireRoles(h.auth, domain.RoleInvestor, domain.RoleInstitutional)
	common := middleware.RequireRoles(h.auth, domain.RoleInvestor)
	deciders := middleware.RequireRoles(h.auth, domain.RolePartner, domain.RoleAdmin)
	anyInvestorOrAdmin := middleware.RequireRoles(h.auth, domain.RoleInvestor, domain.RoleInstitutional, domain.RoleAdmin)

	api.POST("/partner/properties", h.CreateProperty, partner)
	api.POST("/partner/properties/:id/withdraw", h.WithdrawProperty, deciders)
	api.GET("/partner/offers", h.PartnerOffers, partner)

	api.GET("/foreclosures", h.BrowseForeclosures, anyInvestorOrAdmin)
	api.GET("/foreclosures/:id", h.GetForeclosure, anyInvestorOrAdmin)

	api.POST("/offers", h.CreateOffer, investors)
	api.GET("/offers", h.MyOffers, investors)
	api.POST("/offers/:id/transition", h.TransitionOffer, deciders)

	api.POST("/foreclosure-bids", h.CreateBid, investors)
	api.GET("/foreclosure-bids", h.MyBids, investors)
	api.POST("/foreclosure-bids/:id/transition", h.TransitionBid, admin)

	api.POST("/subscription/request", h.RequestSubscription, common)
	api.POST("/subscription/checkout", h.CheckoutSubscription, common)
	api.POST("/subscription/cancel", h.CancelSubscription, common)
	api.GET("/subscription", h.SubscriptionState, common)

	api.GET("/admin/offers", h.AdminOffers, admin)
	api.GET("/admin/foreclosure-bids", h.AdminBids, admin)
	api.GET("/admin/properties", h.AdminProperties, admin)
}

type registerRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"fullName"`
	Phone       string `json:"phone"`
	Institution string `json:"institution"`
	JobTitle    string `json:"jobTitle"`
	Company     string `json:"company"`
}

func (h *Handler) Register(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.Register")
	defer span.End()

	role, ok := domain.ParseRole(c.Param("role"))
	if !ok {
		return presenter.Error(c, domain.ValidationError{Field: "role", Reason: "unknown"})
	}

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return presenter.Error(c, domain.ValidationError{Reason: "malformed body"})
	}

	principal, err := h.auth.Register(ctx, usecase.RegisterInput{
		Role:        role,
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		Phone:       req.Phone,
		Institution: req.Institution,
		JobTitle:    req.JobTitle,
		Company:     req.Company,
	})
	if err != nil {
		span.RecordError(err)
		return presenter.Error(c, err)
	}

	return presenter.Created(c, echo.Map{"id": principal.PrincipalID()})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.Login")
	defer span.End()

	role, ok := domain.ParseRole(c.Param("role"))
	if !ok {
		return presenter.Error(c, domain.ValidationError{Field: "role", Reason: "unknown"})
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return presenter.Error(c, domain.ValidationError{Reason: "malformed body"})
	}

	result, err := h.auth.Login(ctx, role, req.Username, req.Password)
	if err != nil {
		span.RecordError(err)
		return presenter.Error(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     domain.SessionCookieName(role),
		Value:    result.Token,
		Expires:  result.ExpiresAt,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return presenter.OK(c, echo.Map{
		"token":     result.Token,
		"expiresAt": result.ExpiresAt,
		"principal": result.Principal,
	})
}

func (h *Handler) Logout(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.Logout")
	defer span.End()

	role, ok := domain.ParseRole(c.Param("role"))
	if !ok {
		return presenter.Error(c, domain.ValidationError{Field: "role", Reason: "unknown"})
	}

	token := ""
	if cookie, err := c.Cookie(domain.SessionCookieName(role)); err == nil {
		token = cookie.Value
	}
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" && token == "" {
		if len(header) > 7 {
			token = header[7:]
		}
	}

	if token != "" {
		h.auth.Logout(ctx, role, token)
	}

	c.SetCookie(&http.Cookie{
		Name:    domain.SessionCookieName(role),
		Value:   "",
		Expires: time.Unix(0, 0),
		Path:    "/",
	})

	return presenter.OK(c, nil)
}

func (h *Handler) Plans(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.Plans")
	defer span.End()

	plans, err := h.subscriptions.Plans(ctx)
	if err != nil {
		span.RecordError(err)
		return presenter.Error(c, err)
	}
	return presenter.OK(c, plans)
}

func (h *Handler) BrowseProperties(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.BrowseProperties")
	defer span.End()

	filter := domain.PropertyFilter{City: c.QueryParam("city")}
	if raw := c.QueryParam("maxPrice"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return presenter.Error(c, domain.ValidationError{Field: "maxPrice", Reason: "not a number"})
		}
		filter.MaxPrice = &price
	}

	listings, err := h.listings.BrowseProperties(ctx, filter)
	if err != nil {
		span.RecordError(err)
		return presenter.Error(c, err)
	}
	return presenter.OK(c, listings)
}

func (h *Handler) GetProperty(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.GetProperty")
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return presenter.Error(c, domain.ValidationError{Field: "id", Reason: "not a uuid"})
	}

	property, err := h.listings.GetProperty(ctx, id)
	if err != nil {
		span.RecordError(err)
		return presenter.Error(c, err)
	}
	return presenter.OK(c, property)
}

type createPropertyRequest struct {
	Title     string          `json:"title"`
	Address   string          `json:"address"`
	City      string          `json:"city"`
	State     string          `json:"state"`
	Price     decimal.Decimal `json:"price"`
	Bedrooms  int             `json:"bedrooms"`
	Bathrooms int             `json:"bathrooms"`
	AreaSqFt  float64         `json:"areaSqFt"`
}

func (h *Handler) CreateProperty(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.CreateProperty")
	defer span.End()

	principal, _ := middleware.PrincipalFrom(c)

	var req createPropertyRequest
	if err := c.Bind(&req); err != nil {
		return presenter.Error(c, domain.ValidationError{Reason: "malformed body"})
	}

	property, err := h.listings.CreateProperty(ctx, principal, usecase.CreatePropertyInput{
		Title:     req.Title,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		Price:     req.Price,
		Bedrooms:  req.Bedrooms,
		Bathrooms: req.Bathrooms,
		AreaSqFt:  req.AreaSqFt,
	})
	if err != nil {
		span.RecordError(err)
		return presenter.Error(c, err)
	}

	return presenter.Created(c, property)
}

func (h *Handler) WithdrawProperty(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.WithdrawProperty")
	defer span.End()

	principal, _ := middleware.PrincipalFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return presenter.Error(c, domain.ValidationError{Field: "id", Reason: "not a uuid"})
	}

	property, err := h.listings.WithdrawProperty(ctx, principal, id)
	if err != nil {
		span.RecordError(err)
		return presenter.Error(c, err)
	}
	return presenter.OK(c, property)
}

func (h *Handler) BrowseForeclosures(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.BrowseForeclosures")
	defer span.End()

	principal, _ := middleware.PrincipalFrom(c)

	listings, err := h.listings.BrowseForeclosures(ctx, principal)
	if err != nil {
		span.RecordError(err)
		return presenter.Error(c, err)
	}
	return presenter.OK(c, listings)
}

func (h *Handler) GetForeclosure(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.GetForeclosure")
	defer span.End()

	principal, _ := middleware.PrincipalFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return presenter.Error(c, domain.ValidationError{Field: "id", Reason: "not a uuid"})
	}

	listing, err := h.listings.GetForeclosure(ctx, principal, id)
	if err != nil {
		span.RecordError(err)
		return presenter.Error(c, err)
	}
	return presenter.OK(c, listing)
}

type createOfferRequest struct {
	PropertyID    uuid.UUID       `json:"propertyId"`
	Amount        decimal.Decimal `json:"amount"`
	EarnestMoney  decimal.Decimal `json:"earnestMoney"`
	ClosingDate   string          `json:"closingDate"`
	FinancingType string          `json:"financingType"`
	Contingencies []string        `json:"contingencies"`
	Message       string          `json:"message"`
}

func (h *Handler) CreateOffer(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.CreateOffer")
	defer span.End()

	principal, _ := middleware.PrincipalFrom(c)

	var req createOfferRequest
	if err := c.Bind(&req); err != nil {
		return presenter.Error(c, domain.ValidationError{Reason: "malformed body"})
	}

	offer, err := h.offers.Create(ctx, principal, usecase.CreateOfferInput{
		PropertyID:    req.PropertyID,
		Amount:        req.Amount,
		EarnestMoney:  req.EarnestMoney,
		ClosingDate:   req.ClosingDate,
		FinancingType: domain.FinancingType(req.FinancingType),
		Contingencies: req.Contingencies,
		Message:       req.Message,
	})
	if err != nil {
		span.RecordError(err)
		return presenter.Error(c, err)
	}

	return presenter.Created(c, offer)
}

func (h *Handler) MyOffers(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.MyOffers")
	defer span.End()

	principal, _ := middleware.PrincipalFrom(c)

	offers, err := h.offers.ListByInvestor(ctx, principal.PrincipalID())
	if err != nil {
		span.RecordError(err)
		return presenter.Error(c, err)
	}
	return presenter.OK(c, offers)
}

func (h *Handler) PartnerOffers(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.PartnerOffers")
	defer span.End()

	principal, _ := middleware.PrincipalFrom(c)

	offers, err := h.offers.ListForPartner(ctx, principal.PrincipalID())
	if err != nil {
		span.RecordError(err)
		return presenter.Error(c, err)
	}
	return presenter.OK(c, offers)
}

type counterRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	ClosingDate string          `json:"closingDate"`
	Message     string          `json:"message"`
}

type transitionOfferRequest struct {
	Status  string          `json:"status"`
	Counter *counterRequest `json:"counter"`
}

func (h *Handler) TransitionOffer(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.TransitionOffer")
	defer span.End()

	principal, _ := middleware.PrincipalFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return presenter.Error(c, domain.ValidationError{Field: "id", Reason: "not a uuid"})
	}

	var req transitionOfferRequest
	if err := c.Bind(&req); err != nil {
		return presenter.Error(c, domain.ValidationError{Reason: "malformed body"})
	}

	var counter *domain.CounterTerms
	if req.Counter != nil {
		counter = &domain.CounterTerms{
			Amount:  req.Counter.Amount,
			Message: req.Counter.Message,
		}
		if req.Counter.ClosingDate != "" {
			closing, err := time.Parse("2006-01-02", req.Counter.ClosingDate)
			if err != nil {
				return presenter.Error(c, domain.ValidationError{Field: "counter.closingDate", Reason: "must be YYYY-MM-DD"})
			}
			counter.ClosingDate = closing
		}
	}

	offer, err := h.offers.Transition(ctx, principal, id, domain.OfferStatus(req.Status), counter)
	if err != nil {
		span.RecordError(err)
		return presenter.Error(c, err)
	}
	return presenter.OK(c, offer)
}

type createBidRequest struct {
	ListingID     uuid.UUID       `json:"listingId"`
	BidAmount     decimal.Decimal `json:"bidAmount"`
	MaxBidAmount  decimal.Decimal `json:"maxBidAmount"`
	Experience    string          `json:"experience"`
	ContactMethod string          `json:"contactMethod"`
	Timeframe     string          `json:"timeframe"`
	Notes         string          `json:"notes"`
}

func (h *Handler) CreateBid(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.CreateBid")
	defer span.End()

	principal, _ := middleware.PrincipalFrom(c)

	var req createBidRequest
	if err := c.Bind(&req); err != nil {
		return presenter.Error(c, domain.ValidationError{Reason: "malformed body"})
	}

	bid, err := h.bids.Create(ctx, principal, usecase.CreateBidInput{
		ListingID:     req.ListingID,
		BidAmount:     req.BidAmount,
		MaxBidAmount:  req.MaxBidAmount,
		Experience:    req.Experience,
		ContactMethod: domain.ContactMethod(req.ContactMethod),
		Timeframe:     req.Timeframe,
		Notes:         req.Notes,
	})
	if err != nil {
		span.RecordError(err)
		return presenter.Error(c, err)
	}

	return presenter.Created(c, bid)
}

func (h *Handler) MyBids(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.MyBids")
	defer span.End()

	principal, _ := middleware.PrincipalFrom(c)

	bids, err := h.bids.ListByInvestor(ctx, principal.PrincipalID())
	if err != nil {
		span.RecordError(err)
		return presenter.Error(c, err)
	}
	return presenter.OK(c, bids)
}

type transitionBidRequest struct {
	Status string `json:"status"`
}

func (h *Handler) TransitionBid(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.TransitionBid")
	defer span.End()

	principal, _ := middleware.PrincipalFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return presenter.Error(c, domain.ValidationError{Field: "id", Reason: "not a uuid"})
	}

	var req transitionBidRequest
	if err := c.Bind(&req); err != nil {
		return presenter.Error(c, domain.ValidationError{Reason: "malformed body"})
	}

	bid, err := h.bids.Transition(ctx, principal, id, domain.BidStatus(req.Status))
	if err != nil {
		span.RecordError(err)
		return presenter.Error(c, err)
	}
	return presenter.OK(c, bid)
}

type subscriptionRequestBody struct {
	PlanID  string `json:"planId"`
	Message string `json:"message"`
}

func (h *Handler) RequestSubscription(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.RequestSubscription")
	defer span.End()

	principal, _ := middleware.PrincipalFrom(c)

	var req subscriptionRequestBody
	if err := c.Bind(&req); err != nil {
		return presenter.Error(c, domain.ValidationError{Reason: "malformed body"})
	}

	request, err := h.subscriptions.Request(ctx, principal, req.PlanID, req.Message)
	if err != nil {
		span.RecordError(err)
		return presenter.Error(c, err)
	}
	return presenter.Created(c, request)
}

type checkoutRequest struct {
	PlanID        string `json:"planId"`
	PaymentMethod string `json:"paymentMethod"`
}

func (h *Handler) CheckoutSubscription(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.CheckoutSubscription")
	defer span.End()

	principal, _ := middleware.PrincipalFrom(c)

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return presenter.Error(c, domain.ValidationError{Reason: "malformed body"})
	}

	state, err := h.subscriptions.Checkout(ctx, principal, req.PlanID, req.PaymentMethod)
	if err != nil {
		span.RecordError(err)
		return presenter.Error(c, err)
	}
	return presenter.OK(c, state)
}

func (h *Handler) CancelSubscription(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.CancelSubscription")
	defer span.End()

	principal, _ := middleware.PrincipalFrom(c)

	state, err := h.subscriptions.Cancel(ctx, principal.PrincipalID())
	if err != nil {
		span.RecordError(err)
		return presenter.Error(c, err)
	}
	return presenter.OK(c, state)
}

func (h *Handler) SubscriptionState(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.SubscriptionState")
	defer span.End()

	principal, _ := middleware.PrincipalFrom(c)

	state, err := h.subscriptions.State(ctx, principal.PrincipalID())
	if err != nil {
		span.RecordError(err)
		return presenter.Error(c, err)
	}
	return presenter.OK(c, state)
}

func (h *Handler) AdminOffers(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.AdminOffers")
	defer span.End()

	offers, err := h.offers.ListAll(ctx)
	if err != nil {
		span.RecordError(err)
		return presenter.Error(c, err)
	}
	return presenter.OK(c, offers)
}

func (h *Handler) AdminBids(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.AdminBids")
	defer span.End()

	bids, err := h.bids.ListAll(ctx)
	if err != nil {
		span.RecordError(err)
		return presenter.Error(c, err)
	}
	return presenter.OK(c, bids)
}

func (h *Handler) AdminProperties(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Handler.AdminProperties")
	defer span.End()

	properties, err := h.listings.AllProperties(ctx)
	if err != nil {
		span.RecordError(err)
		return presenter.Error(c, err)
	}
	return presenter.OK(c, properties)
}
