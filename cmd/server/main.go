package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/maheshrc27/postsync/configs"
	"github.com/maheshrc27/postsync/internal/api/handlers"
	"github.com/maheshrc27/postsync/internal/api/middleware"
	"github.com/maheshrc27/postsync/internal/ingest"
	job "github.com/maheshrc27/postsync/internal/jobs"
	"github.com/maheshrc27/postsync/internal/queue"
	"github.com/maheshrc27/postsync/internal/repository"
	"github.com/maheshrc27/postsync/internal/service"
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

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	archiver, err := service.NewArchiver(context.Background(), *cfg)
	if err != nil {
		log.Fatalf("Failed to configure diagnostics archive: %v", err)
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Publisher.Timeout + 30*time.Second,
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"success": false, "message": "Request failed"})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	apiKeyRepository := repository.NewApiKeyRepository(db)

	publishQueue := queue.NewClient(client)

	ingestionService := service.NewIngestionService(
		ingest.DefaultChain(),
		service.NewIdentityResolver(postRepo),
		service.NewCommentWriter(commentRepo),
		archiver,
	)
	syncService := service.NewSyncService(postRepo)
	publishService := service.NewPublishService(cfg.Publisher, postRepo, &http.Client{})
	postService := service.NewPostService(postRepo, commentRepo, publishQueue)
	apiKeyService := service.NewApiKeyService(apiKeyRepository)

	authMiddleware := middleware.NewAuthMiddleware(*cfg, apiKeyService)

	app.Get("/health", handlers.Health)

	// endpoints consumed by the automation platform
	webhook := middleware.WebhookSecret(cfg.Webhook)
	ingestHandler := handlers.NewIngestHandler(ingestionService, cfg.Webhook)
	app.Post("/webhooks/comments", webhook, ingestHandler.ReceiveComments)

	syncHandler := handlers.NewSyncHandler(syncService)
	app.Get("/sync/posts", webhook, syncHandler.ListPosts)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	apiKeys := handlers.NewApiKeyHandler(apiKeyService)
	api.Post("/api_key/new", apiKeys.CreateApiKey)
	api.Get("/api_key/list", apiKeys.ListKeys)
	api.Post("/api_key/remove", apiKeys.RemoveAPIKey)

	post := handlers.NewPostHandler(postService, publishService)
	api.Get("/posts", post.ListPosts)
	api.Get("/posts/:id", post.PostInfo)
	api.Get("/posts/:id/comments", post.ListComments)
	api.Post("/posts/:id/publish", post.Publish)
	api.Post("/posts/:id/schedule", post.Schedule)

	// cron jobs
	duePostsJob := job.NewDuePostsJob(postRepo, publishQueue)

	c := cron.New()
	if err := c.AddFunc(cfg.DueSweepSpec, duePostsJob.EnqueueDue); err != nil {
		log.Fatalf("Invalid due sweep schedule %q: %v", cfg.DueSweepSpec, err)
	}
	c.Start()

	// queue
	worker := queue.NewWorker(publishService)
	server := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: 10,
	})

	go func() {
		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, worker.HandlePublishPostTask)

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

	gracefulShutdown(app, c, server, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, c *cron.Cron, server *asynq.Server, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}
	c.Stop()
	server.Shutdown()

	closeDB(db)
	log.Println("Server shutdown complete.")
}
