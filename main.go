// api/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"oamour/api/alert"
	"oamour/api/database"
	"oamour/api/handlers"
	"oamour/api/middleware"
	"oamour/api/store"
)

func main() {
	// Load .env file at the very start
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Initialize the analytics event store ---
	eventStore, cleanup, err := newEventStore()
	if err != nil {
		log.Fatalf("Failed to initialize analytics store: %v", err)
	}
	defer cleanup()

	// --- Visitor-load email alerts (best effort) ---
	mailer := alert.NewMailerFromEnv()

	// --- Initialize Handlers ---
	analyticsHandlers := handlers.NewAnalyticsHandlers(eventStore, mailer)
	detailsHandlers := handlers.NewDetailsHandlers(eventStore)
	authHandlers := handlers.NewAuthHandlers()

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")
	{
		// Event ingestion (no authentication; the client beacons here)
		api.POST("/analytics/events", analyticsHandlers.IngestEvents)

		details := api.Group("/details")
		{
			details.POST("/login", authHandlers.Login)
			details.POST("/logout", authHandlers.Logout)

			protected := details.Group("/")
			protected.Use(middleware.DetailsAuthRequired())
			{
				protected.GET("/data", detailsHandlers.GetDetailsData)
			}
		}
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("Analytics API server starting on http://localhost:%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Analytics API server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

// newEventStore selects the analytics backend from ANALYTICS_BACKEND.
// "supabase" (default) speaks REST to the hosted store; "clickhouse" and
// "postgres" connect to self-hosted databases.
func newEventStore() (store.EventStore, func(), error) {
	switch os.Getenv("ANALYTICS_BACKEND") {
	case "clickhouse":
		chClient, err := database.NewClickHouseDB()
		if err != nil {
			return nil, nil, err
		}
		return store.NewClickHouseStore(chClient), chClient.Close, nil
	case "postgres":
		dbClient, err := database.NewPostgresDB()
		if err != nil {
			return nil, nil, err
		}
		return store.NewPostgresStore(dbClient.DB), dbClient.Close, nil
	default:
		client := database.NewSupabaseClient()
		return store.NewSupabaseStore(client), func() {}, nil
	}
}
