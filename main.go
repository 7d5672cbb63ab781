package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gig-rewards-system/handlers"
	"gig-rewards-system/middleware"
	"gig-rewards-system/models"
	"gig-rewards-system/services"
	"gig-rewards-system/utils"
	"gig-rewards-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New()

	// 🔐 GLOBAL: only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Session-Token, X-Service-Token, X-Device-ID",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.RewardProfile{},
		&models.Mission{},
		&models.UserMissionProgress{},
		&models.Badge{},
		&models.UserBadge{},
		&models.PlatformBenefit{},
		&models.UserBenefit{},
		&models.MarketplaceUser{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// Period rollover is evaluated in one fixed reference time zone.
	loc := time.UTC
	if tz := os.Getenv("REWARDS_TIMEZONE"); tz != "" {
		loaded, err := time.LoadLocation(tz)
		if err != nil {
			log.Fatal("invalid REWARDS_TIMEZONE:", err)
		}
		loc = loaded
	}

	hub := services.NewHub()
	profileService := services.NewProfileService(db)
	missionService := services.NewMissionService(db, profileService, hub, loc)
	badgeService := services.NewBadgeService(db, hub)
	benefitService := services.NewBenefitService(db, profileService)
	streamService := services.NewStreamService(hub)
	rewardEvents := services.NewRewardEvents(db, missionService, badgeService, profileService)

	if err := badgeService.SeedBadges(models.DefaultBadges); err != nil {
		log.Fatal("failed to seed badge catalog:", err)
	}
	if err := missionService.SeedMissions(models.DefaultMissions); err != nil {
		log.Fatal("failed to seed mission catalog:", err)
	}

	authServiceURL := os.Getenv("AUTH_SERVICE_URL")
	if authServiceURL == "" {
		log.Fatal("AUTH_SERVICE_URL environment variable not set")
	}
	rewardServiceToken := os.Getenv("REWARD_SERVICE_TOKEN")
	if rewardServiceToken == "" {
		log.Fatal("REWARD_SERVICE_TOKEN environment variable not set")
	}
	authClient := services.NewAuthServiceClient(authServiceURL, rewardServiceToken)

	syncServiceURL := os.Getenv("SYNC_SERVICE_URL")
	if syncServiceURL == "" {
		log.Fatal("SYNC_SERVICE_URL environment variable not set")
	}
	syncWorker := workers.NewMarketplaceUserSyncWorker(db, syncServiceURL, "/api/v1/public/profiles", rewardServiceToken)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncWorker.Start(ctx)
	missionService.StartActivationScheduler()

	handlers.SetupRewardRoutes(app, profileService, missionService, badgeService, benefitService, streamService, authClient)
	handlers.SetupEventRoutes(app, rewardEvents)
	handlers.SetupAdminRoutes(app, profileService, missionService, badgeService, benefitService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Marketplace User Sync Worker running")
	log.Println("✅ Mission activation scheduler running (every 1m)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("⚠️  Shutdown error: %v", err)
	}
}
