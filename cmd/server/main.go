package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"neuroinsights/internal/config"
	"neuroinsights/internal/database"
	"neuroinsights/internal/handlers"
	"neuroinsights/internal/jobs"
	"neuroinsights/internal/logging"
	"neuroinsights/internal/services"
	"neuroinsights/internal/synth"
	"neuroinsights/internal/tools"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting NeuroInsights Server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Load configuration
	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, DB: %s)", cfg.Port, cfg.DatabasePath)

	// Initialize SQLite database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Load scenario library (built-ins, optionally merged with a YAML file)
	scenarios := synth.Scenarios
	if cfg.ScenariosPath != "" {
		scenarios, err = synth.LoadScenarios(cfg.ScenariosPath)
		if err != nil {
			log.Fatalf("❌ Failed to load scenarios from %s: %v", cfg.ScenariosPath, err)
		}
		log.Printf("✅ Loaded %d scenarios (including %s)", len(scenarios), cfg.ScenariosPath)
	}

	// Initialize Prometheus metrics
	metrics := services.InitMetrics()
	log.Println("✅ Prometheus metrics initialized")

	// Initialize services
	genCfg := synth.Config{
		DeviceCeiling:     cfg.DeviceCeiling,
		TransitionSamples: cfg.TransitionSamples(),
		BaselineJitter:    0.1,
	}
	source := services.NewMockSource(scenarios, genCfg, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	if cfg.InjectArtifacts {
		source.SetArtifacts(services.ArtifactRates{
			Spike:    cfg.ArtifactSpikeRate,
			Drop:     cfg.ArtifactDropRate,
			Saturate: cfg.ArtifactSatRate,
		})
		log.Println("⚠️  Artifact injection enabled for synthetic sessions")
	}
	activityService := services.NewActivityService(db, source)
	brainService := services.NewBrainDataService(source, activityService, cfg, metrics)
	baselineService := services.NewBaselineService(db, brainService, cfg, metrics)
	insightService := services.NewInsightService(db, brainService, baselineService, cfg, metrics)
	log.Println("✅ Services initialized")

	// Initialize tool registry
	registry := tools.NewRegistry()
	defaultUser, err := uuid.Parse(cfg.DefaultUserID)
	if err != nil {
		log.Fatalf("❌ Invalid DEFAULT_USER_ID: %v", err)
	}
	if err := tools.RegisterBrainTools(registry, tools.Deps{
		Brain:         brainService,
		Baseline:      baselineService,
		DefaultUserID: defaultUser,
	}); err != nil {
		log.Fatalf("❌ Failed to register tools: %v", err)
	}
	log.Printf("✅ Tool registry initialized (%d tools)", registry.Count())

	// Initialize scheduler with the nightly day-close job
	scheduler, err := jobs.NewScheduler()
	if err != nil {
		log.Fatalf("❌ Failed to create scheduler: %v", err)
	}
	closeJob := jobs.NewBaselineCloseJob(baselineService, insightService, cfg)
	if err := scheduler.Register(closeJob); err != nil {
		log.Fatalf("❌ Failed to register baseline close job: %v", err)
	}
	if err := scheduler.Start(); err != nil {
		log.Fatalf("❌ Failed to start scheduler: %v", err)
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	dataHandler := handlers.NewDataHandler(brainService, cfg, metrics)
	activitiesHandler := handlers.NewActivitiesHandler(brainService, activityService, cfg)
	insightsHandler := handlers.NewInsightsHandler(insightService, cfg)
	toolsHandler := handlers.NewToolsHandler(registry)
	streamHandler := handlers.NewStreamHandler(cfg, scenarios, metrics)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "NeuroInsights v1.0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("neuroinsights")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	// CORS configuration with environment-based origins
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Routes

	// Health check (public)
	app.Get("/health", healthHandler.Handle)

	api := app.Group("/api")
	{
		data := api.Group("/data")
		data.Get("/brain-waves", dataHandler.GetBrainWaves)
		data.Get("/state-distribution", dataHandler.GetStateDistribution)
		data.Get("/cognitive-score", dataHandler.GetCognitiveScore)
		data.Get("/patterns", dataHandler.GetPatterns)
		data.Get("/compare", dataHandler.ComparePeriods)

		api.Get("/activities", activitiesHandler.List)
		api.Post("/activities", activitiesHandler.Create)

		api.Get("/insights", insightsHandler.List)
		api.Post("/insights/generate", insightsHandler.Generate)
		api.Patch("/insights/:id/dismiss", insightsHandler.Dismiss)

		api.Get("/tools", toolsHandler.ListTools)
		api.Post("/tools/execute", toolsHandler.ExecuteTool)
	}

	// WebSocket live stream
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/live", websocket.New(streamHandler.Handle))

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("🛑 Shutting down server...")
		scheduler.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️  Server shutdown error: %v", err)
		}
	}()

	log.Printf("🌐 Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server failed to start: %v", err)
	}

	log.Println("✅ Server stopped")
}
