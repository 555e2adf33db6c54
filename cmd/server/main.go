package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"leadflow/internal/config"
	"leadflow/internal/database"
	"leadflow/internal/handlers"
	"leadflow/internal/jobs"
	"leadflow/internal/logging"
	"leadflow/internal/services"
	"leadflow/internal/tasks"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting LeadFlow Server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	}

	// Load configuration
	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, Model: %s)", cfg.Port, cfg.DefaultModel)

	if cfg.XAIAPIKey == "" {
		log.Println("⚠️ XAI_API_KEY not set - qualification and drafting calls will fail")
	}

	// Connect to MongoDB
	db, err := database.NewMongoDB(cfg.MongoURI)
	if err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	defer db.Close(context.Background())

	if err := db.Initialize(context.Background()); err != nil {
		log.Fatalf("❌ Failed to initialize MongoDB indexes: %v", err)
	}

	// Initialize Prometheus metrics
	metrics := services.InitMetrics()
	log.Println("✅ Prometheus metrics initialized")

	// Initialize services
	leadService := services.NewLeadService(db)
	activityService := services.NewActivityService(db)
	dashboardService := services.NewDashboardService(leadService, activityService, cfg.DashboardCacheTTL)
	grokService := services.NewGrokService(cfg.XAIBaseURL, cfg.XAIAPIKey, cfg.DefaultModel, cfg.GrokTimeout, metrics)
	evaluationService := services.NewEvaluationService(grokService)

	// Background task runner + workflows
	runner := tasks.NewRunner(metrics)
	workflowService := services.NewWorkflowService(leadService, activityService, grokService, runner, dashboardService)
	log.Println("✅ Background task runner initialized")

	// Interval jobs
	scheduler := jobs.NewScheduler()
	if cfg.RequalifyEnabled {
		scheduler.Register(jobs.NewRequalifyStaleLeadsJob(leadService, workflowService, cfg.RequalifyInterval, cfg.RequalifyMaxAge))
	}
	scheduler.Start()

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	leadHandler := handlers.NewLeadHandler(leadService, activityService, workflowService, dashboardService)
	messageHandler := handlers.NewMessageHandler(leadService, grokService)
	evaluationHandler := handlers.NewEvaluationHandler(evaluationService, cfg)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "LeadFlow API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // evaluation runs can take a while
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
	}))

	// Prometheus HTTP metrics
	prometheus := fiberprometheus.New("leadflow")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Routes
	app.Get("/health", healthHandler.Check)
	app.Get("/dashboard", dashboardHandler.GetMetrics)

	app.Get("/leads", leadHandler.List)
	app.Post("/leads", leadHandler.Create)
	app.Post("/leads/notify", leadHandler.Notify)
	app.Get("/leads/:id", leadHandler.Get)
	app.Patch("/leads/:id", leadHandler.Update)
	app.Delete("/leads/:id", leadHandler.Delete)
	app.Patch("/leads/:id/respond", leadHandler.Respond)
	app.Get("/leads/:id/messages", leadHandler.GetMessages)
	app.Get("/leads/:id/activities", leadHandler.GetActivities)

	app.Post("/messages/generate", messageHandler.Generate)
	app.Post("/evaluate", evaluationHandler.Run)

	// Start server
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()
	log.Printf("✅ LeadFlow API listening on :%s", cfg.Port)

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down...")

	scheduler.Stop()

	// Let in-flight background tasks finish before closing the store
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := runner.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ %v", err)
	}

	if err := app.Shutdown(); err != nil {
		log.Printf("⚠️ Server shutdown error: %v", err)
	}

	log.Println("✅ Server stopped")
}
