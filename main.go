package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/DeusGroup/SalesLeaderboard/handlers"
	"github.com/DeusGroup/SalesLeaderboard/models"
	"github.com/DeusGroup/SalesLeaderboard/services"
	"github.com/DeusGroup/SalesLeaderboard/store"
	"github.com/DeusGroup/SalesLeaderboard/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // avatars only, 10MB is plenty
	})

	// CORS for the leaderboard frontend.
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}
	origins := strings.Split(allowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Postgres when configured, in-memory otherwise (the original prototype
	// ran purely in memory, and tests still do).
	var db *gorm.DB
	var participantStore store.ParticipantStore
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			log.Fatal("failed to connect to database:", err)
		}
		if err := db.AutoMigrate(
			&models.Participant{},
			&models.Deal{},
			&models.ScoreHistory{},
			&models.Admin{},
			&models.LeaderboardSnapshot{},
		); err != nil {
			log.Fatal("failed to migrate database:", err)
		}
		participantStore = store.NewGormStore(db)
	} else {
		log.Println("DATABASE_URL not set, using in-memory store (data is not persisted)")
		participantStore = store.NewMemStore()
	}

	if ok, err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	} else if !ok {
		log.Println("R2 not configured, avatars will be stored in ./uploads")
	}
	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	sessions := session.New(session.Config{
		Expiration:     24 * time.Hour,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   os.Getenv("COOKIE_SECURE") == "true",
	})

	authService := services.NewAuthService(db)
	adminUsername := os.Getenv("ADMIN_USERNAME")
	if adminUsername == "" {
		adminUsername = "admin"
	}
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin"
		log.Println("ADMIN_PASSWORD not set, using the default — change it in production")
	}
	if err := authService.SeedDefaultAdmin(adminUsername, adminPassword); err != nil {
		log.Fatal("failed to seed admin account:", err)
	}

	participantService := services.NewParticipantService(participantStore)
	scoringService := services.NewScoringService(participantStore)

	snapshotService := services.NewSnapshotService(db, participantStore)
	snapshotService.StartScheduler()

	handlers.SetupAuthRoutes(app, sessions, authService)
	handlers.SetupParticipantRoutes(app, sessions, participantService, scoringService)

	app.Static("/uploads", "./"+utils.UploadDir)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Sales leaderboard running on http://localhost:%s", port)
	log.Printf("CORS configured for origins: %s", strings.Join(origins, ","))

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
