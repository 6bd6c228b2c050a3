package analytics

import (
	"sort"
	"sync"
	"time"

	"github.com/Gopinath21052006/NeuroTrain/pkg/types"
)

// DefaultSampleCap bounds the response-time sample ring when no explicit
// capacity is configured.
const DefaultSampleCap = 1000

// Record is the snapshot of the most recent dispatch.
type Record struct {
	Command      types.ParsedCommand `json:"command"`
	Response     string              `json:"response"`
	Timestamp    time.Time           `json:"timestamp"`
	ResponseTime float64             `json:"response_time"`
}

// IntentCount is one entry of the popularity ranking.
type IntentCount struct {
	Intent string `json:"intent"`
	Count  int64  `json:"count"`
}

// Snapshot is the aggregated view returned to reporting callers.
type Snapshot struct {
	TotalCommands      int64            `json:"total_commands"`
	SuccessfulCommands int64            `json:"successful_commands"`
	FailedCommands     int64            `json:"failed_commands"`
	SuccessRate        float64          `json:"success_rate"`
	CommandTypes       map[string]int64 `json:"command_types"`
	PopularCommands    []IntentCount    `json:"popular_commands"`
	AvgResponseTime    float64          `json:"avg_response_time"`
	LastCommand        *Record          `json:"last_command,omitempty"`
	LastResponseTime   float64          `json:"last_response_time"`
}

// Aggregator collects per-process dispatch counters. All mutation goes
// through one mutex so concurrent dispatches never lose updates. Response
// times are kept in a fixed-size ring; old samples are overwritten once the
// ring is full.
type Aggregator struct {
	mu sync.Mutex

	total      int64
	successful int64
	failed     int64

	commandTypes map[string]int64

	samples   []float64
	sampleCap int
	nextIdx   int

	lastCommand      *Record
	lastResponseTime float64
}

// New creates an aggregator retaining up to sampleCap response-time samples.
func New(sampleCap int) *Aggregator {
	if sampleCap <= 0 {
		sampleCap = DefaultSampleCap
	}
	return &Aggregator{
		commandTypes: make(map[string]int64),
		samples:      make([]float64, 0, sampleCap),
		sampleCap:    sampleCap,
	}
}

// Record registers one completed dispatch: total and per-intent counters,
// success or failure, the response-time sample and the last-command snapshot.
func (a *Aggregator) Record(cmd types.ParsedCommand, result types.ExecutionResult, elapsed time.Duration) {
	seconds := elapsed.Seconds()

	a.mu.Lock()
	defer a.mu.Unlock()

	a.total++
	a.commandTypes[cmd.Intent]++
	if result.Success {
		a.successful++
	} else {
		a.failed++
	}

	if len(a.samples) < a.sampleCap {
		a.samples = append(a.samples, seconds)
	} else {
		a.samples[a.nextIdx] = seconds
		a.nextIdx = (a.nextIdx + 1) % a.sampleCap
	}

	a.lastResponseTime = seconds
	a.lastCommand = &Record{
		Command:      cmd,
		Response:     result.TTSResponse,
		Timestamp:    time.Now(),
		ResponseTime: seconds,
	}
}

// Snapshot returns the current counters along with derived figures: success
// rate in percent, the five most popular intents and the average response
// time over the retained samples.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := Snapshot{
		TotalCommands:      a.total,
		SuccessfulCommands: a.successful,
		FailedCommands:     a.failed,
		CommandTypes:       make(map[string]int64, len(a.commandTypes)),
		LastCommand:        a.lastCommand,
		LastResponseTime:   a.lastResponseTime,
	}

	if a.total > 0 {
		snap.SuccessRate = float64(a.successful) / float64(a.total) * 100
	}

	for intent, count := range a.commandTypes {
		snap.CommandTypes[intent] = count
		snap.PopularCommands = append(snap.PopularCommands, IntentCount{Intent: intent, Count: count})
	}
	sort.Slice(snap.PopularCommands, func(i, j int) bool {
		if snap.PopularCommands[i].Count != snap.PopularCommands[j].Count {
			return snap.PopularCommands[i].Count > snap.PopularCommands[j].Count
		}
		return snap.PopularCommands[i].Intent < snap.PopularCommands[j].Intent
	})
	if len(snap.PopularCommands) > 5 {
		snap.PopularCommands = snap.PopularCommands[:5]
	}

	if len(a.samples) > 0 {
		var sum float64
		for _, s := range a.samples {
			sum += s
		}
		snap.AvgResponseTime = sum / float64(len(a.samples))
	}

	return snap
}
