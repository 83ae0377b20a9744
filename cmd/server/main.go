package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"physioflow/recovery-app/internal/api"
	"physioflow/recovery-app/internal/config"
	"physioflow/recovery-app/internal/generation"
	"physioflow/recovery-app/internal/repository/mongo"
	"physioflow/recovery-app/internal/service"
	"physioflow/recovery-app/internal/storage"
)

// @title Recovery App API
// @version 1.0
// @description API for physical therapy intake, treatment plan generation, examinations, and scheduling.
// @contact.name API Support
// @contact.email support@example.com
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.Println("Starting Recovery App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureArtifactIndexes(ctx, appDB.Collection("artifacts"))
		mongo.EnsureAppointmentIndexes(ctx, appDB.Collection("appointments"))
		mongo.EnsureMediaUploadIndexes(ctx, appDB.Collection("media_uploads"))
		mongo.EnsureExerciseIndexes(ctx, appDB.Collection("exercises"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Generation Pipeline ---
	log.Println("Initializing generation pipeline...")
	generator, err := generation.NewOpenAIGenerator(cfg.OpenAI)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize generation backend: %v", err)
	}
	orchestrator := generation.NewOrchestrator(generator)

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	artifactRepo := mongo.NewMongoArtifactRepository(appDB)
	appointmentRepo := mongo.NewMongoAppointmentRepository(appDB)
	mediaRepo := mongo.NewMongoMediaUploadRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	trainerService := service.NewTrainerService(userRepo)
	artifactService := service.NewArtifactService(artifactRepo, userRepo)
	planService := service.NewPlanService(orchestrator, artifactService, userRepo)
	examinationService := service.NewExaminationService(orchestrator, artifactService, mediaRepo, userRepo, fileStorage)
	appointmentService := service.NewAppointmentService(appointmentRepo, userRepo)
	exerciseService := service.NewExerciseService(exerciseRepo)
	adminService := service.NewAdminService(artifactService, userRepo)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(
		router,
		cfg.JWT.Secret,
		authService,
		trainerService,
		planService,
		examinationService,
		artifactService,
		appointmentService,
		exerciseService,
		adminService,
	)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // Generation calls can take a while
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
