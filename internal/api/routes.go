package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"physioflow/recovery-app/internal/domain"
	"physioflow/recovery-app/internal/service"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	trainerService service.TrainerService,
	planService service.PlanService,
	examinationService service.ExaminationService,
	artifactService service.ArtifactService,
	appointmentService service.AppointmentService,
	exerciseService service.ExerciseService,
	adminService service.AdminService,
) {
	authHandler := NewAuthHandler(authService)
	trainerHandler := NewTrainerHandler(trainerService)
	planHandler := NewPlanHandler(planService, artifactService)
	examinationHandler := NewExaminationHandler(examinationService)
	clientHandler := NewClientHandler(artifactService)
	appointmentHandler := NewAppointmentHandler(appointmentService)
	exerciseHandler := NewExerciseHandler(exerciseService)
	adminHandler := NewAdminHandler(adminService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Shared Artifact Routes ---
		// Role scoping is enforced in the service: clients see their own
		// records, trainers their managed clients', admins everything.
		protected.GET("/artifacts/:artifactId", planHandler.GetArtifactByID)
		protected.GET("/clients/:clientId/artifacts", planHandler.GetClientArtifacts)

		// --- Trainer Routes ---
		trainerApiGroup := protected.Group("/trainer")
		trainerApiGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			// Client roster
			trainerApiGroup.POST("/clients", trainerHandler.AddClientByEmail)
			trainerApiGroup.GET("/clients", trainerHandler.GetManagedClients)

			// Plan generation pipeline
			trainerApiGroup.POST("/clients/:clientId/plans", planHandler.GeneratePlanForClient)

			// Examination media and diagnosis pipeline
			trainerApiGroup.POST("/clients/:clientId/examinations/upload-url", examinationHandler.RequestMediaUploadURL)
			trainerApiGroup.POST("/clients/:clientId/examinations/confirm", examinationHandler.ConfirmMediaUpload)
			trainerApiGroup.GET("/clients/:clientId/examinations/media", examinationHandler.GetClientMedia)
			trainerApiGroup.POST("/clients/:clientId/examinations/analyze", examinationHandler.AnalyzeExamination)

			// Scheduling
			trainerApiGroup.POST("/appointments", appointmentHandler.ScheduleAppointment)
			trainerApiGroup.GET("/appointments", appointmentHandler.GetTrainerAppointments)
			trainerApiGroup.PATCH("/appointments/:appointmentId", appointmentHandler.UpdateAppointmentStatus)

			// Exercise library
			trainerApiGroup.POST("/exercises", exerciseHandler.CreateExercise)
			trainerApiGroup.GET("/exercises", exerciseHandler.GetTrainerExercises)
			trainerApiGroup.PUT("/exercises/:exerciseId", exerciseHandler.UpdateExercise)
			trainerApiGroup.DELETE("/exercises/:exerciseId", exerciseHandler.DeleteExercise)
		}

		// --- Client Routes ---
		clientApiGroup := protected.Group("/client")
		clientApiGroup.Use(RoleMiddleware(domain.RoleClient))
		{
			clientApiGroup.GET("/artifacts", clientHandler.GetMyArtifacts)

			// Self-service examination flow; no clientId in the path, the
			// authenticated client is the target.
			clientApiGroup.POST("/examinations/upload-url", examinationHandler.RequestMediaUploadURL)
			clientApiGroup.POST("/examinations/confirm", examinationHandler.ConfirmMediaUpload)
			clientApiGroup.GET("/examinations/media", examinationHandler.GetClientMedia)
			clientApiGroup.POST("/examinations/analyze", examinationHandler.AnalyzeExamination)

			clientApiGroup.POST("/appointments", appointmentHandler.BookAppointment)
			clientApiGroup.GET("/appointments", appointmentHandler.GetMyAppointments)
		}

		// --- Admin Routes ---
		adminApiGroup := protected.Group("/admin")
		adminApiGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminApiGroup.GET("/artifacts", adminHandler.ListAllArtifacts)
			adminApiGroup.GET("/users", adminHandler.ListUsersByRole)
		}
	}
}
