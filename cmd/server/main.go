package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Gopinath21052006/NeuroTrain/internal/analytics"
	"github.com/Gopinath21052006/NeuroTrain/internal/chat"
	"github.com/Gopinath21052006/NeuroTrain/internal/config"
	"github.com/Gopinath21052006/NeuroTrain/internal/dispatcher"
	"github.com/Gopinath21052006/NeuroTrain/internal/handler"
	"github.com/Gopinath21052006/NeuroTrain/internal/parser"
	"github.com/Gopinath21052006/NeuroTrain/internal/scheduler"
	"github.com/Gopinath21052006/NeuroTrain/internal/session"
	"github.com/Gopinath21052006/NeuroTrain/internal/store"
	"github.com/Gopinath21052006/NeuroTrain/internal/sysmon"
	"github.com/Gopinath21052006/NeuroTrain/internal/voice"
	"github.com/Gopinath21052006/NeuroTrain/pkg/types"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Println("Configuration loaded successfully")
	log.Printf("Server will listen on port: %s", cfg.Port)
	log.Printf("Safe mode: %v", cfg.EnableSafeMode)

	// Storage
	tasks, err := store.NewTaskStore(cfg.TasksFile())
	if err != nil {
		log.Fatalf("Failed to open task store: %v", err)
	}
	schedule, err := store.NewScheduleStore(cfg.ScheduleFile())
	if err != nil {
		log.Fatalf("Failed to open schedule store: %v", err)
	}

	// Collaborators
	sessions := session.NewManager(cfg.SessionPath, cfg.SessionMaxHistory,
		time.Duration(cfg.SessionExpiryHours)*time.Hour)
	chatClient := chat.NewClient(cfg.ChatBaseURL, cfg.ChatAPIKey, cfg.ChatModel,
		cfg.ChatMaxTokens, cfg.ChatTemperature, sessions)
	voiceClient := voice.NewClient(cfg.VoiceBaseURL, cfg.VoiceAPIKey,
		cfg.TTSVoiceType, cfg.TTSEncoding, cfg.TTSSpeedRatio, cfg.StaticAudioPath)
	uploader := voice.NewUploaderFromEnv()
	monitor := sysmon.NewMonitor()
	launcher := sysmon.NewLauncher(cfg.EnableSafeMode)
	aggregator := analytics.New(cfg.AnalyticsSampleCap)
	cmdParser := parser.New()

	disp := dispatcher.New(cmdParser, tasks, schedule, monitor, launcher, chatClient,
		aggregator, dispatcher.Timeouts{
			Task:     cfg.TaskTimeout,
			System:   cfg.SystemTimeout,
			Schedule: cfg.ScheduleTimeout,
			Chat:     cfg.ChatTimeout,
		})

	// Reminder runner
	runner := scheduler.NewRunner(schedule, func(reminder types.Reminder) {
		log.Printf("Reminder: %s", reminder.Message)
	})
	if err := runner.Start(); err != nil {
		log.Fatalf("Failed to start reminder runner: %v", err)
	}
	defer runner.Stop()

	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	// Create router
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Handler and routes
	h := handler.NewHandler(handler.Deps{
		Config:     cfg,
		Parser:     cmdParser,
		Dispatcher: disp,
		Analytics:  aggregator,
		Chat:       chatClient,
		Voice:      voiceClient,
		Uploader:   uploader,
		Sessions:   sessions,
		Tasks:      tasks,
		Schedule:   schedule,
		Monitor:    monitor,
		Launcher:   launcher,
	})
	h.Routes(r)

	h.StartSessionCleanup(time.Hour)
	defer h.StopSessionCleanup()

	// Start server
	addr := ":" + cfg.Port
	log.Printf("Starting NeuroTrain server on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
