package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Gopinath21052006/NeuroTrain/internal/analytics"
	"github.com/Gopinath21052006/NeuroTrain/internal/parser"
	"github.com/Gopinath21052006/NeuroTrain/pkg/types"
)

// TaskStore is the slice of the task collaborator the dispatcher needs.
type TaskStore interface {
	Create(ctx context.Context, title string) (*types.Task, error)
	List(ctx context.Context) ([]types.Task, error)
	Delete(ctx context.Context, id string) error
}

// ScheduleStore is the slice of the schedule collaborator the dispatcher needs.
type ScheduleStore interface {
	Create(ctx context.Context, at, message string) (*types.Reminder, error)
	List(ctx context.Context) ([]types.Reminder, error)
}

// SystemMonitor reads host resource usage.
type SystemMonitor interface {
	Stats(ctx context.Context) (*types.SystemStats, error)
}

// AppLauncher opens desktop applications.
type AppLauncher interface {
	Open(ctx context.Context, appName string) error
}

// ChatModel produces a conversational reply for free-form text.
type ChatModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Timeouts bounds each collaborator call.
type Timeouts struct {
	Task     time.Duration
	System   time.Duration
	Schedule time.Duration
	Chat     time.Duration
}

// DefaultTimeouts returns the standard per-collaborator deadlines.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Task:     10 * time.Second,
		System:   5 * time.Second,
		Schedule: 5 * time.Second,
		Chat:     15 * time.Second,
	}
}

// Dispatcher routes parsed commands to their collaborators and wraps every
// outcome in a uniform ExecutionResult.
type Dispatcher struct {
	parser    *parser.Parser
	tasks     TaskStore
	schedule  ScheduleStore
	monitor   SystemMonitor
	launcher  AppLauncher
	chat      ChatModel
	analytics *analytics.Aggregator
	timeouts  Timeouts
}

// New creates a dispatcher over the given collaborators. The analytics
// aggregator may be nil, in which case nothing is recorded.
func New(p *parser.Parser, tasks TaskStore, schedule ScheduleStore, monitor SystemMonitor,
	launcher AppLauncher, chat ChatModel, agg *analytics.Aggregator, timeouts Timeouts) *Dispatcher {
	return &Dispatcher{
		parser:    p,
		tasks:     tasks,
		schedule:  schedule,
		monitor:   monitor,
		launcher:  launcher,
		chat:      chat,
		analytics: agg,
		timeouts:  timeouts,
	}
}

// Process runs the full pipeline for raw text: classify, dispatch, return
// both halves.
func (d *Dispatcher) Process(ctx context.Context, text string) types.ProcessResult {
	cmd := d.parser.Classify(text)
	result := d.Dispatch(ctx, cmd)
	return types.ProcessResult{Parsed: cmd, Executed: result}
}

// Dispatch executes one parsed command and records exactly one analytics
// entry for it, multi-step commands included.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd types.ParsedCommand) types.ExecutionResult {
	start := time.Now()
	result := d.execute(ctx, cmd)
	if d.analytics != nil {
		d.analytics.Record(cmd, result, time.Since(start))
	}
	return result
}

func (d *Dispatcher) execute(ctx context.Context, cmd types.ParsedCommand) types.ExecutionResult {
	log.Printf("Executing command: intent=%s action=%s", cmd.Intent, cmd.Action)

	switch cmd.Intent {
	case types.IntentMulti:
		return d.executeMulti(ctx, cmd)
	case types.IntentTask:
		return d.executeTask(ctx, cmd)
	case types.IntentSystem:
		return d.executeSystem(ctx, cmd)
	case types.IntentSchedule:
		return d.executeSchedule(ctx, cmd)
	case types.IntentChat:
		return d.executeChat(ctx, cmd.OriginalText)
	default:
		return types.ExecutionResult{
			Success:     false,
			Message:     fmt.Sprintf("Unknown command intent: %s", cmd.Intent),
			TTSResponse: "Sorry, I didn't understand that command",
		}
	}
}

// executeMulti runs steps sequentially and stops at the first failure.
func (d *Dispatcher) executeMulti(ctx context.Context, cmd types.ParsedCommand) types.ExecutionResult {
	var responses []string
	var results []types.ExecutionResult

	for _, step := range cmd.Steps {
		stepResult := d.execute(ctx, step)
		results = append(results, stepResult)
		if !stepResult.Success {
			return types.ExecutionResult{
				Success:     false,
				Message:     fmt.Sprintf("Step %d failed: %s", len(results), stepResult.Message),
				Data:        results,
				TTSResponse: stepResult.TTSResponse,
			}
		}
		responses = append(responses, stepResult.TTSResponse)
	}

	return types.ExecutionResult{
		Success:     true,
		Message:     fmt.Sprintf("Completed %d steps", len(results)),
		Data:        results,
		TTSResponse: strings.Join(responses, ". "),
	}
}

func (d *Dispatcher) executeTask(ctx context.Context, cmd types.ParsedCommand) types.ExecutionResult {
	ctx, cancel := context.WithTimeout(ctx, d.timeouts.Task)
	defer cancel()

	switch cmd.Action {
	case types.ActionAddTask:
		title := cmd.Parameters["title"]
		if title == "" {
			// No title captured; treat the utterance as conversation.
			return d.executeChat(ctx, cmd.OriginalText)
		}
		task, err := d.tasks.Create(ctx, title)
		if err != nil {
			return failure(err, fmt.Sprintf("Failed to add task: %v", err), "Sorry, I couldn't add the task")
		}
		return types.ExecutionResult{
			Success:     true,
			Message:     "Task added successfully",
			Data:        task,
			TTSResponse: fmt.Sprintf("Task '%s' added successfully", title),
		}

	case types.ActionGetTasks:
		tasks, err := d.tasks.List(ctx)
		if err != nil {
			return failure(err, fmt.Sprintf("Failed to list tasks: %v", err), "Sorry, I couldn't get your tasks")
		}
		return types.ExecutionResult{
			Success:     true,
			Message:     fmt.Sprintf("Found %d tasks", len(tasks)),
			Data:        tasks,
			TTSResponse: fmt.Sprintf("You have %d tasks in your list", len(tasks)),
		}

	case types.ActionDeleteTask:
		tasks, err := d.tasks.List(ctx)
		if err != nil {
			return failure(err, fmt.Sprintf("Failed to list tasks: %v", err), "Sorry, I couldn't get your tasks")
		}
		if len(tasks) == 0 {
			return types.ExecutionResult{
				Success:     false,
				Message:     "No tasks to delete",
				TTSResponse: "You have no tasks to delete",
			}
		}
		last := tasks[len(tasks)-1]
		if err := d.tasks.Delete(ctx, last.ID); err != nil {
			return failure(err, fmt.Sprintf("Failed to delete task: %v", err), "Sorry, I couldn't delete the task")
		}
		return types.ExecutionResult{
			Success:     true,
			Message:     "Task deleted successfully",
			Data:        last,
			TTSResponse: fmt.Sprintf("Deleted task '%s'", last.Title),
		}
	}

	return unknownAction(cmd)
}

func (d *Dispatcher) executeSystem(ctx context.Context, cmd types.ParsedCommand) types.ExecutionResult {
	ctx, cancel := context.WithTimeout(ctx, d.timeouts.System)
	defer cancel()

	switch cmd.Action {
	case types.ActionSystemStats:
		stats, err := d.monitor.Stats(ctx)
		if err != nil {
			return failure(err, fmt.Sprintf("Failed to read system stats: %v", err), "Sorry, I couldn't read the system status")
		}
		return types.ExecutionResult{
			Success:     true,
			Message:     "System stats retrieved",
			Data:        stats,
			TTSResponse: fmt.Sprintf("CPU is at %.0f percent, Memory at %.0f percent", stats.CPUPercent, stats.MemoryPercent),
		}

	case types.ActionOpenApp:
		appName := cmd.Parameters["app_name"]
		if appName == "" {
			return types.ExecutionResult{
				Success:     false,
				Message:     "No application name given",
				TTSResponse: "Which application should I open?",
			}
		}
		if err := d.launcher.Open(ctx, appName); err != nil {
			return failure(err, fmt.Sprintf("Failed to open %s: %v", appName, err), fmt.Sprintf("Sorry, I couldn't open %s", appName))
		}
		return types.ExecutionResult{
			Success:     true,
			Message:     fmt.Sprintf("Opening %s", appName),
			TTSResponse: fmt.Sprintf("Opening %s", appName),
		}
	}

	return unknownAction(cmd)
}

func (d *Dispatcher) executeSchedule(ctx context.Context, cmd types.ParsedCommand) types.ExecutionResult {
	ctx, cancel := context.WithTimeout(ctx, d.timeouts.Schedule)
	defer cancel()

	switch cmd.Action {
	case types.ActionAddReminder:
		message := cmd.Parameters["message"]
		if message == "" {
			message = "Reminder"
		}
		at := cmd.Parameters["time"]
		if at == "" {
			at = time.Now().Add(5 * time.Minute).Format("2006-01-02 15:04")
		}
		reminder, err := d.schedule.Create(ctx, at, message)
		if err != nil {
			return failure(err, fmt.Sprintf("Failed to add reminder: %v", err), "Sorry, I couldn't set the reminder")
		}
		return types.ExecutionResult{
			Success:     true,
			Message:     "Reminder added",
			Data:        reminder,
			TTSResponse: fmt.Sprintf("Reminder set for %s", message),
		}

	case types.ActionGetSchedule:
		reminders, err := d.schedule.List(ctx)
		if err != nil {
			return failure(err, fmt.Sprintf("Failed to list reminders: %v", err), "Sorry, I couldn't get your reminders")
		}
		return types.ExecutionResult{
			Success:     true,
			Message:     fmt.Sprintf("Found %d reminders", len(reminders)),
			Data:        reminders,
			TTSResponse: fmt.Sprintf("You have %d reminders", len(reminders)),
		}
	}

	return unknownAction(cmd)
}

func (d *Dispatcher) executeChat(ctx context.Context, text string) types.ExecutionResult {
	ctx, cancel := context.WithTimeout(ctx, d.timeouts.Chat)
	defer cancel()

	reply, err := d.chat.Complete(ctx, text)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return types.ExecutionResult{
				Success:     false,
				Message:     fmt.Sprintf("Chat request timed out: %v", err),
				TTSResponse: "The AI is thinking... please try again",
			}
		}
		return types.ExecutionResult{
			Success:     false,
			Message:     fmt.Sprintf("Chat request failed: %v", err),
			TTSResponse: "I'm having trouble connecting to the chat service",
		}
	}

	reply = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(reply), "AI:"))
	if reply == "" {
		reply = "I'm here to help!"
	}
	return types.ExecutionResult{
		Success:     true,
		Message:     "Chat response",
		TTSResponse: reply,
	}
}

// failure builds a failed result, substituting the generic slow-service
// response when the collaborator ran out of time.
func failure(err error, message, tts string) types.ExecutionResult {
	if errors.Is(err, context.DeadlineExceeded) {
		tts = "Sorry, the service is taking too long to respond"
	}
	return types.ExecutionResult{
		Success:     false,
		Message:     message,
		TTSResponse: tts,
	}
}

func unknownAction(cmd types.ParsedCommand) types.ExecutionResult {
	return types.ExecutionResult{
		Success:     false,
		Message:     fmt.Sprintf("Action %s is not implemented", cmd.Action),
		TTSResponse: "Sorry, I can't do that yet",
	}
}
