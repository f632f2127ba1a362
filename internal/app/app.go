package app

import (
	"errors"

	"household-backend/internal/config"
	"household-backend/internal/database"
	"household-backend/internal/health"
	"household-backend/internal/households"
	"household-backend/internal/invitations"
	"household-backend/internal/middleware"
	"household-backend/internal/tokenexchange"
	"household-backend/internal/userinfo"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route
// registration. The returned DB and Redis client are handed back so main can
// ping them before listening.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{AllowedSuffix: cfg.FrontendURLEndsWith}))
	app.Use(middleware.RequestLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opt)
	}

	// --- Routes (no auth) ---
	healthHandlers := &health.Handlers{DB: db, Rdb: rdb}
	app.Get("/health/json", healthHandlers.JSON)

	tokenService := &tokenexchange.Service{
		PrivateKeyPEM: cfg.InternalJWTPrivateKey,
		PublicKeyPEM:  cfg.InternalJWTPublicKey,
	}
	tokenHandlers := &tokenexchange.Handlers{Service: tokenService}
	app.Get("/api/v1/token/public-key", tokenHandlers.PublicKey)

	// --- Protected routes (bearer auth required) ---
	if cfg.AuthJWTPublicKey == "" {
		if cfg.Env == "production" {
			return nil, nil, nil, errors.New("AUTH_JWT_PUBLIC_KEY is required in production")
		}
		// No verification key outside production: only the public surface is
		// served (tests, partial deployments).
		return app, db, rdb, nil
	}
	bearerAuth, err := middleware.BearerAuth(middleware.AuthConfig{
		PublicKeyPEM: cfg.AuthJWTPublicKey,
		Audience:     cfg.AuthAudience,
		Issuer:       cfg.AuthIssuer,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	userInfoService := &userinfo.Service{
		Client: &userinfo.HTTPClient{
			BaseURL:      "https://" + cfg.Auth0Domain,
			ClientID:     cfg.Auth0ClientID,
			ClientSecret: cfg.Auth0ClientSecret,
		},
		Cache:    rdb,
		CacheTTL: cfg.UserInfoCacheTTL,
	}
	userInfoHandlers := &userinfo.Handlers{Service: userInfoService}
	userInfoGroup := app.Group("/api/v1/user-info", bearerAuth)
	userInfoGroup.Get("/", userInfoHandlers.Get)
	userInfoGroup.Patch("/", userInfoHandlers.Patch)

	if db != nil {
		householdService := &households.Service{DB: db}
		householdHandlers := &households.Handlers{Service: householdService}
		householdGroup := app.Group("/api/v1/households", bearerAuth)
		householdGroup.Get("/", householdHandlers.List)
		householdGroup.Post("/", householdHandlers.Create)
		householdGroup.Get("/:id", householdHandlers.Get)
		householdGroup.Patch("/:id", householdHandlers.Update)
		householdGroup.Delete("/:id", householdHandlers.Delete)
		householdGroup.Post("/:id/invitations", householdHandlers.Invite)
		householdGroup.Delete("/:householdId/members/:memberId", householdHandlers.RemoveMember)

		invitationHandlers := &invitations.Handlers{Service: householdService}
		invitationGroup := app.Group("/api/v1/invitations", bearerAuth)
		invitationGroup.Delete("/:invitationId", invitationHandlers.Delete)
		invitationGroup.Post("/:invitationId/accept", invitationHandlers.Accept)

		tokenService.Households = householdService
		app.Post("/api/v1/token/exchange", bearerAuth, tokenHandlers.Exchange)
	}

	return app, db, rdb, nil
}
