package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/homesteadmarket/homestead/internal/config"
	"github.com/homesteadmarket/homestead/internal/domain"
	"github.com/homesteadmarket/homestead/internal/infra/cache"
	"github.com/homesteadmarket/homestead/internal/infra/database"
	"github.com/homesteadmarket/homestead/internal/infra/gateway"
	"github.com/homesteadmarket/homestead/internal/infra/repository"
	"github.com/homesteadmarket/homestead/internal/present/rest"
	"github.com/homesteadmarket/homestead/internal/service"
	"github.com/homesteadmarket/homestead/internal/telemetry"
	"github.com/homesteadmarket/homestead/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Missing .env is fine; it only exists in local setups.
	_ = godotenv.Load()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	if conf.Server.EnableTrace {
		shutdown, err := telemetry.Setup(ctx, "homestead", conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("trace setup failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		slog.Error("connecting to postgres failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := database.MigratePostgres(db); err != nil {
		slog.Error("migrating postgres failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var listingCache *cache.ListingCache
	if conf.Server.RedisAddr != "" {
		rdb := database.NewRedis(conf.Server.RedisAddr, "", conf.Server.RedisDB)
		listingCache = cache.NewListingCache(rdb, time.Duration(conf.Server.CacheTTLSec)*time.Second)
	}

	principalRepo := repository.NewPrincipalRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	foreclosureRepo := repository.NewForeclosureRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	bidRepo := repository.NewBidRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	if err := subscriptionRepo.SeedPlans(ctx, defaultPlans()); err != nil {
		slog.Error("seeding plans failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	creds := service.NewCredentialStore(sessionRepo, time.Duration(conf.Auth.SessionTTLHours)*time.Hour)
	throttle := service.NewLoginThrottle(conf.Auth.LoginAttempts, time.Duration(conf.Auth.ThrottleMinutes)*time.Minute)
	notifier := gateway.NewLogNotifier()
	payments := gateway.NewPaymentGateway()

	authUC := usecase.NewAuthUsecase(principalRepo, creds, throttle)
	gate := usecase.NewEntitlementGate(subscriptionRepo)
	listingUC := usecase.NewListingUsecase(propertyRepo, foreclosureRepo, gate, listingCache, notifier)
	offerUC := usecase.NewOfferUsecase(offerRepo, propertyRepo, notifier)
	bidUC := usecase.NewBidUsecase(bidRepo, foreclosureRepo, gate, notifier)
	subscriptionUC := usecase.NewSubscriptionUsecase(subscriptionRepo, payments)

	e := echo.New()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("homestead"))
	}

	handler := rest.NewHandler(authUC, listingUC, offerUC, bidUC, subscriptionUC)
	rest.SetupRoutes(e, handler)

	e.Logger.Fatal(e.Start(conf.Server.Addr))
}

func defaultPlans() []domain.Plan {
	return []domain.Plan{
		{ID: "monthly", Name: "Foreclosure Access Monthly", Price: decimal.NewFromInt(49), PeriodDays: 30},
		{ID: "annual", Name: "Foreclosure Access Annual", Price: decimal.NewFromInt(490), PeriodDays: 365},
	}
}
