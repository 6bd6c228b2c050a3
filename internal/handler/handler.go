package handler

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Gopinath21052006/NeuroTrain/internal/analytics"
	"github.com/Gopinath21052006/NeuroTrain/internal/chat"
	"github.com/Gopinath21052006/NeuroTrain/internal/config"
	"github.com/Gopinath21052006/NeuroTrain/internal/dispatcher"
	"github.com/Gopinath21052006/NeuroTrain/internal/parser"
	"github.com/Gopinath21052006/NeuroTrain/internal/session"
	"github.com/Gopinath21052006/NeuroTrain/internal/store"
	"github.com/Gopinath21052006/NeuroTrain/internal/sysmon"
	"github.com/Gopinath21052006/NeuroTrain/internal/voice"
	"github.com/Gopinath21052006/NeuroTrain/pkg/types"
)

// Deps are the collaborators the HTTP layer routes to.
type Deps struct {
	Config     *config.Config
	Parser     *parser.Parser
	Dispatcher *dispatcher.Dispatcher
	Analytics  *analytics.Aggregator
	Chat       *chat.Client
	Voice      *voice.Client
	Uploader   *voice.Uploader
	Sessions   *session.Manager
	Tasks      *store.TaskStore
	Schedule   *store.ScheduleStore
	Monitor    *sysmon.Monitor
	Launcher   *sysmon.Launcher
}

// Handler handles HTTP requests
type Handler struct {
	deps          Deps
	cleanupTicker *time.Ticker
}

// NewHandler creates a new handler
func NewHandler(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// Routes registers all endpoints on the engine.
func (h *Handler) Routes(r *gin.Engine) {
	voiceGroup := r.Group("/api/voice")
	{
		voiceGroup.POST("/parse", h.ParseCommand)
		voiceGroup.POST("/execute", h.ExecuteCommand)
		voiceGroup.POST("/full-process", h.FullProcess)
		voiceGroup.POST("/transcribe", h.Transcribe)
		voiceGroup.POST("/transcribe/stream", h.StreamTranscribe)
		voiceGroup.POST("/upload", h.UploadAudio)
		voiceGroup.POST("/speak", h.Speak)
		voiceGroup.GET("/analytics", h.Analytics)
		voiceGroup.GET("/stats", h.Stats)
		voiceGroup.GET("/stream", h.Stream)
	}

	r.POST("/chat", h.Chat)

	tasks := r.Group("/api/tasks")
	{
		tasks.GET("", h.ListTasks)
		tasks.POST("", h.CreateTask)
		tasks.PUT("/:id", h.UpdateTask)
		tasks.DELETE("/:id", h.DeleteTask)
	}

	schedule := r.Group("/api/schedule")
	{
		schedule.GET("", h.ListReminders)
		schedule.POST("", h.CreateReminder)
		schedule.PUT("/:id", h.UpdateReminder)
		schedule.DELETE("/:id", h.DeleteReminder)
		schedule.DELETE("", h.ClearReminders)
	}

	system := r.Group("/api/system")
	{
		system.GET("/stats", h.SystemStats)
		system.GET("/apps", h.SupportedApps)
		system.POST("/open", h.OpenApp)
	}

	r.GET("/api/health", h.HealthCheck)
	r.GET("/static/audio/:filename", h.ServeAudio)
}

// ParseCommand classifies text without executing it.
func (h *Handler) ParseCommand(c *gin.Context) {
	var req types.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "text is required",
		})
		return
	}

	cmd := h.deps.Parser.Classify(req.Text)
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"parsed_command": cmd,
	})
}

// ExecuteCommand dispatches an already-parsed command.
func (h *Handler) ExecuteCommand(c *gin.Context) {
	var cmd types.ParsedCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "invalid command payload",
		})
		return
	}

	result := h.deps.Dispatcher.Dispatch(c.Request.Context(), cmd)
	c.JSON(http.StatusOK, result)
}

// FullProcess runs the whole pipeline for raw text.
func (h *Handler) FullProcess(c *gin.Context) {
	var req types.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "text is required",
		})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	result := h.deps.Dispatcher.Process(c.Request.Context(), req.Text)
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"original_text":    req.Text,
		"parsed_command":   result.Parsed,
		"execution_result": result.Executed,
		"session_id":       sessionID,
	})
}

// Transcribe accepts an uploaded audio recording, recognizes it and runs the
// recognized text through the pipeline.
func (h *Handler) Transcribe(c *gin.Context) {
	file, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "audio file is required",
		})
		return
	}

	filename := fmt.Sprintf("audio_%d_%s.wav", time.Now().Unix(), uuid.New().String()[:8])
	audioPath := filepath.Join(h.deps.Config.TempAudioPath, filename)
	if err := c.SaveUploadedFile(file, audioPath); err != nil {
		log.Printf("Failed to save audio file: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "failed to save audio file",
		})
		return
	}
	defer func() {
		if err := os.Remove(audioPath); err != nil {
			log.Printf("Failed to remove temp file: %v", err)
		}
	}()

	text, err := h.deps.Voice.ASR(c.Request.Context(), audioPath)
	if err != nil {
		log.Printf("ASR failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   fmt.Sprintf("recognition failed: %v", err),
		})
		return
	}

	result := h.deps.Dispatcher.Process(c.Request.Context(), text)
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"original_text":    text,
		"parsed_command":   result.Parsed,
		"execution_result": result.Executed,
	})
}

// StreamTranscribe recognizes raw PCM audio posted in the request body over
// the streaming recognition channel and runs the text through the pipeline.
func (h *Handler) StreamTranscribe(c *gin.Context) {
	audio, err := io.ReadAll(c.Request.Body)
	if err != nil || len(audio) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "audio data is required",
		})
		return
	}

	text, err := h.deps.Voice.StreamASR(c.Request.Context(), audio)
	if err != nil {
		log.Printf("Streaming ASR failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   fmt.Sprintf("recognition failed: %v", err),
		})
		return
	}

	result := h.deps.Dispatcher.Process(c.Request.Context(), text)
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"original_text":    text,
		"parsed_command":   result.Parsed,
		"execution_result": result.Executed,
	})
}

// UploadAudio stores an uploaded recording in object storage and returns its
// public URL.
func (h *Handler) UploadAudio(c *gin.Context) {
	file, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "audio file is required",
		})
		return
	}

	if !h.deps.Uploader.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "storage credentials not configured",
		})
		return
	}

	filename := fmt.Sprintf("upload_%d_%s", time.Now().Unix(), file.Filename)
	localPath := filepath.Join(h.deps.Config.TempAudioPath, filename)
	if err := c.SaveUploadedFile(file, localPath); err != nil {
		log.Printf("Failed to save uploaded file: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "failed to save audio file",
		})
		return
	}
	defer func() {
		if err := os.Remove(localPath); err != nil {
			log.Printf("Failed to remove temp file: %v", err)
		}
	}()

	publicURL, err := h.deps.Uploader.UploadAudio(c.Request.Context(), localPath)
	if err != nil {
		log.Printf("Upload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "failed to upload audio file",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"url":     publicURL,
		"size":    file.Size,
	})
}

// Speak synthesizes speech for text and returns the audio URL.
func (h *Handler) Speak(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "text is required",
		})
		return
	}

	audioURL, err := h.deps.Voice.TTS(c.Request.Context(), req.Text)
	if err != nil {
		log.Printf("TTS failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   fmt.Sprintf("synthesis failed: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"audio_url": audioURL,
	})
}

// Analytics returns the full usage snapshot.
func (h *Handler) Analytics(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Analytics.Snapshot())
}

// Stats returns the condensed usage summary.
func (h *Handler) Stats(c *gin.Context) {
	snap := h.deps.Analytics.Snapshot()

	mostPopular := ""
	if len(snap.PopularCommands) > 0 {
		mostPopular = snap.PopularCommands[0].Intent
	}

	c.JSON(http.StatusOK, gin.H{
		"total_commands": snap.TotalCommands,
		"success_rate":   fmt.Sprintf("%.1f%%", snap.SuccessRate),
		"most_popular":   mostPopular,
	})
}

// Chat runs a memory-backed conversation turn.
func (h *Handler) Chat(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
		UserID  string `json:"user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "message is required",
		})
		return
	}
	if req.UserID == "" {
		req.UserID = "default"
	}

	reply, err := h.deps.Chat.CompleteWithMemory(c.Request.Context(), req.UserID, req.Message)
	if err != nil {
		log.Printf("Chat failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "chat request failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reply":   reply,
	})
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// ServeAudio serves synthesized audio files
func (h *Handler) ServeAudio(c *gin.Context) {
	filename := c.Param("filename")
	path := filepath.Join(h.deps.Config.StaticAudioPath, filename)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "audio file not found",
		})
		return
	}

	c.File(path)
}

// StartSessionCleanup starts a background task to periodically clean up expired sessions
func (h *Handler) StartSessionCleanup(interval time.Duration) {
	log.Printf("Starting session cleanup task (interval: %v)", interval)

	h.cleanupTicker = time.NewTicker(interval)

	go func() {
		for range h.cleanupTicker.C {
			removed, err := h.deps.Sessions.CleanupExpired()
			if err != nil {
				log.Printf("Session cleanup failed: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("Session cleanup removed %d sessions", removed)
			}
		}
	}()
}

// StopSessionCleanup stops the background cleanup task
func (h *Handler) StopSessionCleanup() {
	if h.cleanupTicker != nil {
		h.cleanupTicker.Stop()
		log.Println("Session cleanup task stopped")
	}
}
