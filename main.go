package main

import (
	"context"
	"log"
	"os"

	"github.com/example/room-chat/config"
	"github.com/example/room-chat/modules/activity"
	"github.com/example/room-chat/modules/api"
	"github.com/example/room-chat/modules/broadcast"
	"github.com/example/room-chat/modules/chat"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	log.Println("=== Room Chat - Fiber WebSocket + EventBus ===")

	cfg := config.Load()

	logLevel := mono.WithLogLevel(mono.LogLevelInfo)
	if cfg.LogLevel == "error" {
		logLevel = mono.WithLogLevel(mono.LogLevelError)
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		logLevel,
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	logger := app.Logger()

	// Create modules
	chatModule := chat.NewModule(logger)
	broadcastModule := broadcast.NewModule(logger)
	activityModule := activity.NewModule(logger, cfg.ActivityHistory)
	apiModule := api.NewModule(cfg, logger)

	// The hub and the presence service are in-process collaborators rather
	// than ServiceContainer services, so they are injected by hand.
	hub := broadcastModule.Hub()
	hub.OnDrop(activityModule.Metrics().FrameDropped)
	chatModule.SetNotifier(hub)
	apiModule.SetHub(hub)
	apiModule.SetChat(chatModule.Service())
	apiModule.SetMetricsHandler(activityModule.Metrics().Handler())

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	// - chat: presence state machine (ServiceProviderModule + EventEmitterModule)
	// - broadcast: WebSocket hub owning every client's send queue
	// - activity: metrics and activity feed (EventConsumerModule)
	// - api: driving adapter (Fiber HTTP/WebSocket server, depends on chat and activity)
	app.Register(chatModule)
	app.Register(broadcastModule)
	app.Register(activityModule)
	app.Register(apiModule)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg config.Config) {
	port := cfg.Port

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Event-Driven Chat:")
	log.Println("  - chat module publishes RoomCreated, RoomDeleted, UserJoined, UserLeft, MessageSent")
	log.Println("  - activity module consumes them for /metrics and /api/v1/activity")
	log.Println("  - room lists and messages reach clients through the broadcast hub")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", port)
	log.Println("  GET    /health                      - Health check")
	log.Println("  GET    /metrics                     - Prometheus metrics")
	log.Println("  GET    /api/v1/rooms                - List all rooms")
	log.Println("  POST   /api/v1/rooms                - Create a new room")
	log.Println("  GET    /api/v1/rooms/:name/users    - Room occupants")
	log.Println("  GET    /api/v1/activity?limit=N     - Recent room activity")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws):", port)
	log.Println("  Request types: createRoom, joinRoom, leaveRoom, sendMessage, getRoomUsers, listRooms")
	log.Println("  Frame: {\"type\": \"joinRoom\", \"id\": \"1\", \"data\": {\"roomName\": \"general\", \"displayName\": \"alice\"}}")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
