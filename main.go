package main

import (
	"log"

	api "mailpilot-backend/cmd/api"
	authdomain "mailpilot-backend/internal/auth/domain"
	authRepo "mailpilot-backend/internal/auth/repository"
	eventdomain "mailpilot-backend/internal/event/domain"
	eventRepo "mailpilot-backend/internal/event/repository"
	"mailpilot-backend/internal/event/scheduler"
	"mailpilot-backend/internal/event/usecase"
	"mailpilot-backend/pkg/ai"
	"mailpilot-backend/pkg/calendar"
	"mailpilot-backend/pkg/config"
	"mailpilot-backend/pkg/database"
	"mailpilot-backend/pkg/gmail"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&authdomain.User{}, &eventdomain.ProcessingRecord{}, &eventdomain.CreatedEvent{}, &eventdomain.RunLog{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	recordRepo := eventRepo.NewProcessingRecordRepository(db)
	createdRepo := eventRepo.NewCreatedEventRepository(db)
	runLogRepo := eventRepo.NewRunLogRepository(db)

	// Initialize Google providers
	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret)
	calendarService := calendar.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret)

	// Initialize AI reasoner
	reasoner, err := ai.NewEventReasoner(ai.Config{
		Provider:      ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:  cfg.GeminiApiKey,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
	})
	if err != nil {
		log.Fatal("Failed to initialize AI reasoner:", err)
	}
	log.Printf("AI reasoner initialized with provider: %s", reasoner.Name())

	// Initialize the processing pipeline
	orchestrator := usecase.NewOrchestrator(recordRepo, createdRepo, gmailService, calendarService, reasoner)
	runner := usecase.NewRunner(cfg, userRepo, runLogRepo, orchestrator)

	// Start the background scheduler
	processScheduler := scheduler.NewProcessScheduler(runner, cfg.ProcessInterval)
	processScheduler.Start()
	defer processScheduler.Stop()

	// Initialize HTTP handler
	handler := api.NewHandler(runner, cfg)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
