package main

import (
	"context"
	"log"
	"time"

	"omnimind-backend/config"
	"omnimind-backend/handlers"
	"omnimind-backend/middleware"
	"omnimind-backend/repository"
	"omnimind-backend/service"
	"omnimind-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"
)

func main() {
	// Load .env from the working directory or the project root
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	cfg := config.Load()

	db, err := initPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to initialize Postgres:", err)
	}
	defer db.Close()

	redisClient, err := initRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to initialize Redis:", err)
	}
	defer redisClient.Close()

	objectStorage, err := storage.NewStorageFromEnv()
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Println("Storage initialized")

	geminiClient, err := initGemini(cfg.GeminiAPIKey)
	if err != nil {
		log.Fatal("Failed to initialize Gemini:", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	preferencesRepo := repository.NewPreferencesRepository(db)
	aiJobRepo := repository.NewAIJobRepository(db)

	// Services
	emailService := service.NewEmailService(service.EmailConfig{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUser,
		Password:    cfg.SMTPPassword,
		From:        cfg.SMTPFrom,
		FromName:    cfg.SMTPFromName,
		FrontendURL: cfg.FrontendURL,
	})
	if !emailService.IsConfigured() {
		log.Println("Email not configured, transactional email disabled")
	}

	authService := service.NewAuthService(
		service.AuthWithUserStore(userRepo),
		service.AuthWithMailer(emailService),
		service.AuthWithJWT(cfg.JWTSecret, cfg.JWTExpiry),
		service.AuthWithBcryptCost(cfg.BcryptCost),
	)

	userService := service.NewUserService(userRepo, objectStorage)

	aiService := service.NewAIService(
		service.AIWithJobStore(aiJobRepo),
		service.AIWithTaskStore(taskRepo),
		service.AIWithMeetingStore(meetingRepo),
		service.AIWithCompleter(service.NewGeminiCompleter(geminiClient, cfg.GeminiModel)),
	)

	digestService := service.NewDigestService(
		service.DigestWithUserStore(userRepo),
		service.DigestWithTaskStore(taskRepo),
		service.DigestWithNotificationStore(notificationRepo),
		service.DigestWithMailer(emailService),
	)

	// Background jobs
	scheduler := service.NewSchedulerService(time.UTC)
	if _, err := scheduler.ScheduleDaily(cfg.DailyDigestTime, func() {
		if err := digestService.SendDailyDigests(context.Background()); err != nil {
			log.Printf("Daily digest run failed: %v", err)
		}
	}); err != nil {
		log.Fatal("Failed to schedule daily digest:", err)
	}
	if _, err := scheduler.ScheduleInterval(time.Minute, func() {
		if err := digestService.DispatchScheduled(context.Background()); err != nil {
			log.Printf("Scheduled notification dispatch failed: %v", err)
		}
	}); err != nil {
		log.Fatal("Failed to schedule notification dispatch:", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, userService, objectStorage)
	projectHandler := handlers.NewProjectHandler(projectRepo)
	taskHandler := handlers.NewTaskHandler(taskRepo, projectRepo)
	meetingHandler := handlers.NewMeetingHandler(meetingRepo, aiService)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, preferencesRepo)
	aiHandler := handlers.NewAIHandler(aiService)

	r := gin.Default()
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.RateLimit(redisClient, cfg.RateLimitMax, cfg.RateLimitWindow))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)

			authed := auth.Group("", middleware.Auth(authService))
			{
				authed.GET("/me", authHandler.Me)
				authed.PUT("/profile", authHandler.UpdateProfile)
				authed.POST("/avatar", authHandler.UploadAvatar)
				authed.GET("/avatar", authHandler.DownloadAvatar)
			}
		}

		protected := api.Group("", middleware.Auth(authService))
		{
			projects := protected.Group("/projects")
			{
				projects.GET("", projectHandler.List)
				projects.GET("/stats", projectHandler.Stats)
				projects.GET("/:id", projectHandler.Get)
				projects.POST("", projectHandler.Create)
				projects.PUT("/:id", projectHandler.Update)
				projects.DELETE("/:id", projectHandler.Delete)
			}

			tasks := protected.Group("/tasks")
			{
				tasks.GET("", taskHandler.List)
				tasks.GET("/upcoming", taskHandler.Upcoming)
				tasks.GET("/:id", taskHandler.Get)
				tasks.POST("", taskHandler.Create)
				tasks.PUT("/:id", taskHandler.Update)
				tasks.PATCH("/:id/complete", taskHandler.Complete)
				tasks.DELETE("/:id", taskHandler.Delete)
			}

			meetings := protected.Group("/meetings")
			{
				meetings.GET("", meetingHandler.List)
				meetings.GET("/:id", meetingHandler.Get)
				meetings.POST("", meetingHandler.Create)
				meetings.PUT("/:id", meetingHandler.Update)
				meetings.POST("/:id/summarize", meetingHandler.Summarize)
				meetings.DELETE("/:id", meetingHandler.Delete)
			}

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", notificationHandler.List)
				notifications.POST("", notificationHandler.Create)
				notifications.GET("/preferences", notificationHandler.GetPreferences)
				notifications.PUT("/preferences", notificationHandler.UpdatePreferences)
				notifications.PATCH("/read-all", notificationHandler.MarkAllRead)
				notifications.PATCH("/:id/read", notificationHandler.MarkRead)
				notifications.POST("/test", notificationHandler.SendTest)
				notifications.DELETE("/clear-all", notificationHandler.Clear)
				notifications.DELETE("/:id", notificationHandler.Delete)
			}

			ai := protected.Group("/ai")
			{
				ai.POST("/extract-tasks", aiHandler.ExtractTasks)
				ai.POST("/summarize-meeting", aiHandler.SummarizeMeeting)
				ai.POST("/optimize-schedule", aiHandler.OptimizeSchedule)
				ai.GET("/jobs/:id", aiHandler.GetJob)
				ai.GET("/productivity-insights", aiHandler.ProductivityInsights)
				ai.GET("/detect-conflicts", aiHandler.DetectConflicts)
			}
		}
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func initPostgres(connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, err
	}

	log.Println("Postgres connection established")
	return pool, nil
}

func initRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Println("Redis connection established")
	return client, nil
}

func initGemini(apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	log.Println("Gemini client initialized")
	return client, nil
}
