package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aircast/internal/alerts"
	"aircast/internal/aqi"
	"aircast/internal/cache"
	"aircast/internal/chatbot"
	"aircast/internal/config"
	"aircast/internal/mail"
	"aircast/internal/models"
	"aircast/internal/personalize"
	"aircast/internal/server"
	"aircast/internal/storage"

	sentrygo "github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var rootCmd = &cobra.Command{
	Use:   "aircast",
	Short: "Air-quality monitoring backend",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server and alert scheduler",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServe(); err != nil {
			log.Fatalf("serve: %v", err)
		}
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo data for local development",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSeed(); err != nil {
			log.Fatalf("seed: %v", err)
		}
	},
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServe() error {
	cfg := config.Load()

	if cfg.SentryDSN != "" {
		if err := sentrygo.Init(sentrygo.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			log.Printf("Sentry init failed: %v", err)
		} else {
			defer sentrygo.Flush(2 * time.Second)
		}
	}

	store, err := storage.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer store.Close()

	// Process-wide caches, injected into the components that use them.
	cityCache := cache.New(10*time.Minute, 256)
	defer cityCache.Stop()
	aiCache := cache.New(time.Hour, 1024)
	defer aiCache.Stop()
	chatCache := cache.New(30*time.Minute, 512)
	defer chatCache.Stop()

	aqiClient := aqi.NewClient(cfg.OpenWeatherAPIKey, cityCache)
	chain := personalize.NewChain(
		personalize.NewGeminiProvider(cfg.GeminiAPIKey),
		personalize.NewGroqProvider(cfg.GroqAPIKey),
	)
	engine := personalize.NewEngine(chain, aiCache)
	bot := chatbot.NewBot(chain, aqiClient, chatCache)
	mailer := mail.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom, cfg.MockEmail)

	scheduler := alerts.NewScheduler(store, aqiClient, engine, mailer)
	schedCtx, schedCancel := context.WithCancel(context.Background())
	scheduler.Start(schedCtx)

	srv := server.New(store, aqiClient, engine, bot, scheduler)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Router(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	// Wait for interrupt or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-serverErrors:
		log.Printf("Server error: %v, initiating shutdown...", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	schedCancel()
	scheduler.Stop()

	log.Println("Server shutdown complete")
	return nil
}

// runSeed inserts a demo account and poll so the API is explorable
// right after a fresh start.
func runSeed() error {
	cfg := config.Load()
	store, err := storage.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.GetUserByEmail("demo@aircast.local"); err == nil {
		log.Println("Seed data already present")
		return nil
	}

	user := &models.User{
		Email: "demo@aircast.local",
		Name:  "Demo User",
		City:  "Lahore",
		// bcrypt hash of "demo-password"
		PasswordHash: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
		AlertPrefs: models.AlertPrefs{
			OnChange:      true,
			DailyTime:     "08:00",
			InstantButton: true,
		},
		HealthProfile: &models.HealthProfile{
			AgeGroup:      models.Age18To40,
			ActivityLevel: models.ActivityModerate,
			PrimaryCity:   "Lahore",
		},
	}
	if err := store.CreateUser(user); err != nil {
		return err
	}

	poll := &models.Poll{
		Question: "What bothers you most about air quality in your city?",
		Options:  []string{"Traffic fumes", "Crop burning", "Industrial smoke", "Dust"},
	}
	if err := store.CreatePoll(poll); err != nil {
		return err
	}

	log.Printf("Seeded demo user (id=%d) and poll (id=%d)", user.ID, poll.ID)
	return nil
}
