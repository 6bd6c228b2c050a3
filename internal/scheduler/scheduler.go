package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Gopinath21052006/NeuroTrain/pkg/types"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"15:04",
}

// ReminderStore is the slice of the schedule store the runner needs.
type ReminderStore interface {
	List(ctx context.Context) ([]types.Reminder, error)
	Delete(ctx context.Context, id string) error
}

// AnnounceFunc is called with the reminder message when a reminder fires.
type AnnounceFunc func(reminder types.Reminder)

// Runner checks the schedule once a minute and fires due reminders.
type Runner struct {
	cron     *cron.Cron
	store    ReminderStore
	announce AnnounceFunc
}

// NewRunner creates a reminder runner over the given store.
func NewRunner(store ReminderStore, announce AnnounceFunc) *Runner {
	return &Runner{
		cron:     cron.New(),
		store:    store,
		announce: announce,
	}
}

// Start begins the minute tick. It returns an error if the cron spec fails
// to parse, which cannot happen with the fixed spec used here.
func (r *Runner) Start() error {
	if _, err := r.cron.AddFunc("* * * * *", r.tick); err != nil {
		return fmt.Errorf("failed to schedule reminder check: %w", err)
	}
	r.cron.Start()
	log.Println("[scheduler] reminder runner started")
	return nil
}

// Stop halts the tick and waits for a running check to finish.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	log.Println("[scheduler] reminder runner stopped")
}

func (r *Runner) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reminders, err := r.store.List(ctx)
	if err != nil {
		log.Printf("[scheduler] failed to list reminders: %v", err)
		return
	}

	now := time.Now()
	for _, reminder := range reminders {
		due, err := ParseReminderTime(reminder.Time, now)
		if err != nil {
			log.Printf("[scheduler] skipping reminder %s with unparseable time %q: %v", reminder.ID, reminder.Time, err)
			continue
		}
		if due.After(now) {
			continue
		}

		log.Printf("[scheduler] firing reminder %s: %s", reminder.ID, reminder.Message)
		if r.announce != nil {
			r.announce(reminder)
		}
		if err := r.store.Delete(ctx, reminder.ID); err != nil {
			log.Printf("[scheduler] failed to delete fired reminder %s: %v", reminder.ID, err)
		}
	}
}

// ParseReminderTime parses a reminder time string. Bare clock times like
// "15:04" resolve against the reference day.
func ParseReminderTime(value string, reference time.Time) (time.Time, error) {
	for _, layout := range timeLayouts {
		parsed, err := time.ParseInLocation(layout, value, reference.Location())
		if err != nil {
			continue
		}
		if layout == "15:04" {
			return time.Date(reference.Year(), reference.Month(), reference.Day(),
				parsed.Hour(), parsed.Minute(), 0, 0, reference.Location()), nil
		}
		return parsed, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time format: %q", value)
}
