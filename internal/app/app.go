package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/softgeniusinnovations/code-editor-server/internal/db"
	"github.com/softgeniusinnovations/code-editor-server/internal/handlers"
	"github.com/softgeniusinnovations/code-editor-server/internal/registry"
	"github.com/softgeniusinnovations/code-editor-server/internal/rooms"
	"github.com/softgeniusinnovations/code-editor-server/internal/storage"
	"github.com/softgeniusinnovations/code-editor-server/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func Run() {
	// Load Env
	if err := utils.LoadEnv(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Init DB
	connString := utils.GetEnv("DATABASE_URL", "")
	if connString == "" {
		// Fallback to individual vars
		connString = "postgres://" + utils.GetEnv("POSTGRES_USER", "postgres") + ":" +
			utils.GetEnv("POSTGRES_PASSWORD", "postgres") + "@" +
			utils.GetEnv("POSTGRES_HOST", "localhost") + ":" +
			utils.GetEnv("POSTGRES_PORT", "5432") + "/" +
			utils.GetEnv("POSTGRES_DB", "editordb") + "?sslmode=disable"
	}

	if err := db.InitDB(connString); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.CloseDB()

	if err := db.Migrate(context.Background()); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	// Stores
	roomStore := storage.NewPgRoomStore()
	memberStore := storage.NewPgMemberStore()
	fileStore := storage.NewPgFileStore(utils.GetEnv("STORAGE_DIR", "file_storage"))
	chatStore := storage.NewPgChatStore()

	// Core services. The registry is constructed once here and handed
	// to the event layer, never referenced as a global.
	roomService := rooms.NewService(roomStore, memberStore, fileStore, rooms.NewBcryptHasher())
	admission := rooms.NewAdmission(roomService, roomStore, memberStore)
	sessionRegistry := registry.New()

	handler := handlers.NewHandler(roomService, admission, memberStore, fileStore, chatStore, sessionRegistry)

	// Fiber App
	app := fiber.New()

	// Middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// Ensure upload dir exists and serve uploaded files
	uploadDir := utils.GetEnv("UPLOAD_DIR", "uploads")
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		log.Printf("Warning: failed to create upload dir: %v", err)
	}
	app.Static("/uploads", uploadDir)

	// Routes
	api := app.Group("/api")
	api.Put("/rooms/:room_id/photo", handler.UploadPhotoHandler())

	// Health Check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// WebSocket Route
	app.Use("/ws", handlers.WSUpgradeMiddleware)
	app.Get("/ws", handler.WebSocketHandler())

	// Start Server
	port := utils.GetEnv("PORT", "3001")
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	// Graceful Shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c // Block until signal
	log.Println("Gracefully shutting down...")
	_ = app.Shutdown()
	log.Println("Server shutdown complete")
}
