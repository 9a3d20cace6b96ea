package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/oweru/content-api/configs"
	"github.com/oweru/content-api/internal/api/handlers"
	"github.com/oweru/content-api/internal/api/middleware"
	job "github.com/oweru/content-api/internal/jobs"
	"github.com/oweru/content-api/internal/queue"
	"github.com/oweru/content-api/internal/repository"
	"github.com/oweru/content-api/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	mediaRepo := repository.NewMediaRepository(db)
	contactRepo := repository.NewContactRepository(db)
	aiGenerationRepo := repository.NewAIGenerationRepository(db)
	aiTrainingRepo := repository.NewAITrainingDataRepository(db)

	r2Service := service.NewR2Service(*cfg)
	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo)
	postService := service.NewPostService(db, postRepo, mediaRepo, userRepo, r2Service)
	mediaService := service.NewMediaService(mediaRepo, postRepo, r2Service)
	contactService := service.NewContactService(contactRepo)
	generationLogger := queue.NewGenerationLogger(client)
	aiService := service.NewAIService(cfg.OpenAI, nil, postRepo, postService, generationLogger)
	instagramService := service.NewInstagramService(cfg.Instagram, nil, postRepo, r2Service)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Post("/register", auth.Register)
	app.Post("/login", auth.Login)

	contact := handlers.NewContactHandler(contactService)
	app.Post("/contact", contact.CreateContact)

	post := handlers.NewPostHandler(postService)
	app.Get("/posts/approved", post.ListApproved)
	app.Get("/posts/approved/:id", post.GetApproved)

	instagram := handlers.NewInstagramHandler(instagramService)
	app.Post("/instagram/post", instagram.CreatePost)
	app.Get("/instagram/account", instagram.AccountInfo)
	app.Get("/instagram/status", instagram.Status)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user", user.GetUserInfo)
	api.Post("/logout", auth.Logout)

	api.Post("/posts", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Get("/posts/category/:category", post.ListByCategory)
	api.Get("/posts/:id", post.GetPost)
	api.Put("/posts/:id", post.UpdatePost)
	api.Delete("/posts/:id", post.RemovePost)
	api.Post("/posts/:id/approve", post.ApprovePost)
	api.Post("/posts/:id/reject", post.RejectPost)

	ai := handlers.NewAIHandler(aiService)
	api.Post("/ai/generate", ai.Generate)
	api.Post("/ai/improve", ai.Improve)
	api.Get("/ai/suggestions/:category", ai.Suggestions)

	media := handlers.NewMediaHandler(mediaService)
	api.Post("/media/upload", media.Upload)
	api.Delete("/media/:id", media.Remove)
	api.Get("/media/download", media.Download)

	api.Get("/contacts", contact.ListContacts)
	api.Get("/contacts/:id", contact.GetContact)

	// cron jobs
	trainingDataJob := job.NewTrainingDataJob(postRepo, aiTrainingRepo)

	// queue
	queueW := queue.NewQueue(aiGenerationRepo)

	c := cron.New()
	c.AddFunc("@every 01h00m00s", trainingDataJob.SyncTrainingData)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeGenerationLog, queueW.HandleGenerationLogTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
