package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/talentbridge/assessment/config"
	"github.com/talentbridge/assessment/database"
	candidatectrl "github.com/talentbridge/assessment/internal/controller/candidate"
	employerctrl "github.com/talentbridge/assessment/internal/controller/employer"
	"github.com/talentbridge/assessment/internal/logger"
	"github.com/talentbridge/assessment/internal/middleware"
	"github.com/talentbridge/assessment/internal/model"
	"github.com/talentbridge/assessment/internal/repository"
	"github.com/talentbridge/assessment/internal/service"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title TalentBridge Assessment API
// @version 1.0
// @description Timed, proctored assessment attempts for job applications: employer-owned question catalogs, candidate attempts with violation and capture logging, submission-time scoring.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	app := fx.New(
		// Core application components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
		),

		// Repositories layer
		fx.Provide(
			repository.NewAssessmentRepository,
			repository.NewAttemptRepository,
			repository.NewApplicationRepository,
		),

		// Services layer
		fx.Provide(
			service.NewAssessmentService,
			service.NewAttemptService,
			service.NewSubmissionService,
		),

		// API controllers layer
		fx.Provide(
			employerctrl.NewAssessmentController,
			candidatectrl.NewAttemptController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI; spec is generated with `swag init -g cmd/main.go`.
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	employerCtrl *employerctrl.AssessmentController,
	candidateCtrl *candidatectrl.AttemptController,
) {
	api := router.Group("/api/v1")

	employerGroup := api.Group("/employer", middleware.RequireAuth(cfg), middleware.RequireRole(middleware.RoleEmployer))
	{
		assessments := employerGroup.Group("/assessments")
		assessments.POST("", employerCtrl.CreateAssessment)
		assessments.GET("", employerCtrl.GetAssessments)
		assessments.GET("/:id", employerCtrl.GetAssessmentDetails)
		assessments.PUT("/:id", employerCtrl.UpdateAssessment)
		assessments.DELETE("/:id", employerCtrl.DeleteAssessment)
		assessments.GET("/:id/results", employerCtrl.GetAssessmentResults)

		employerGroup.GET("/attempts/:attempt_id", employerCtrl.GetAttemptDetails)
	}

	candidateGroup := api.Group("", middleware.RequireAuth(cfg), middleware.RequireRole(middleware.RoleCandidate))
	{
		candidateGroup.GET("/available-assessments", candidateCtrl.GetAvailableAssessments)
		candidateGroup.GET("/assessments/:id", candidateCtrl.GetAssessment)

		attempts := candidateGroup.Group("/attempts")
		attempts.POST("/start", candidateCtrl.StartAttempt)
		attempts.POST("/answer", candidateCtrl.SubmitAnswer)
		attempts.POST("/file-answer", candidateCtrl.SubmitFileAnswer)
		attempts.POST("/capture", candidateCtrl.SubmitCapture)
		attempts.POST("/violation", candidateCtrl.RecordViolation)
		attempts.POST("/:attempt_id/submit", candidateCtrl.SubmitAttempt)
		attempts.GET("/:attempt_id/result", candidateCtrl.GetResult)

		candidateGroup.GET("/applications/:application_id/result", candidateCtrl.GetResultByApplication)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Assessment API server starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Assessment{},
		&model.Question{},
		&model.Attempt{},
		&model.Answer{},
		&model.Violation{},
		&model.Capture{},
		&model.Application{},
		&model.Job{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
