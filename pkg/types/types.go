package types

import "time"

// Intent categories produced by the command parser.
const (
	IntentTask     = "task"
	IntentSystem   = "system"
	IntentSchedule = "schedule"
	IntentChat     = "chat"
	IntentMulti    = "multi"
	IntentUnknown  = "unknown"
)

// Actions within an intent.
const (
	ActionAddTask     = "add_task"
	ActionGetTasks    = "get_tasks"
	ActionDeleteTask  = "delete_task"
	ActionSystemStats = "system_stats"
	ActionOpenApp     = "open_app"
	ActionAddReminder = "add_reminder"
	ActionGetSchedule = "get_schedule"
	ActionProcessChat = "process_chat"
	ActionNone        = "none"
)

// ParsedCommand is the structured interpretation of one user utterance.
// For multi-step commands Intent is "multi" and Steps holds the sub-commands
// in left-to-right textual order.
type ParsedCommand struct {
	Intent       string            `json:"intent"`
	Action       string            `json:"action"`
	Parameters   map[string]string `json:"parameters"`
	OriginalText string            `json:"original_text"`
	Confidence   float64           `json:"confidence"`
	Steps        []ParsedCommand   `json:"steps,omitempty"`
}

// ExecutionResult is the uniform envelope returned for every dispatched
// command. TTSResponse is always populated, including on failure, so a
// voice-driven caller always has something to say.
type ExecutionResult struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message"`
	Data        interface{} `json:"data,omitempty"`
	TTSResponse string      `json:"tts_response"`
}

// Task is a to-do item persisted by the task store.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Reminder is a scheduled reminder persisted by the schedule store.
// Time is the user-supplied time expression; the reminder runner only fires
// entries it can parse.
type Reminder struct {
	ID        string     `json:"id"`
	Time      string     `json:"time"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// SystemStats is a point-in-time snapshot of host resource usage.
type SystemStats struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsed    uint64  `json:"memory_used"`
	MemoryTotal   uint64  `json:"memory_total"`
	DiskPercent   float64 `json:"disk_percent"`
}

// CommandRequest is the body accepted by the voice command endpoints.
type CommandRequest struct {
	Text      string `json:"text" binding:"required"`
	SessionID string `json:"session_id"`
}

// ProcessResult pairs a parsed command with its execution outcome.
type ProcessResult struct {
	Parsed   ParsedCommand   `json:"parsed"`
	Executed ExecutionResult `json:"executed"`
}
