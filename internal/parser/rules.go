package parser

import (
	"regexp"
	"strings"

	"github.com/Gopinath21052006/NeuroTrain/pkg/types"
)

// Confidence assigned per rule family. These are fixed markers of which
// family matched, not probabilities.
const (
	ConfidenceTask     = 0.9
	ConfidenceSystem   = 0.85
	ConfidenceSchedule = 0.8
	ConfidenceChat     = 0.7
)

// extractFunc pulls parameters out of a regexp match. Returning false vetoes
// the match and the scan continues with the next rule.
type extractFunc func(match []string, params map[string]string) bool

// rule is one entry of the pattern table: a matcher plus its capture policy.
type rule struct {
	re      *regexp.Regexp
	action  string
	extract extractFunc
}

// family is an ordered group of rules sharing an intent and a confidence.
type family struct {
	intent     string
	confidence float64
	rules      []rule
}

func captureAs(key string, group int) extractFunc {
	return func(match []string, params map[string]string) bool {
		params[key] = strings.TrimSpace(match[group])
		return true
	}
}

var taskRules = []rule{
	{re: regexp.MustCompile(`(?:add|create|new)\b.*task.*\bto (.+)$`), action: types.ActionAddTask, extract: captureAs("title", 1)},
	{re: regexp.MustCompile(`(?:add|create|new)\b.*task.*\bcalled (.+)$`), action: types.ActionAddTask, extract: captureAs("title", 1)},
	{re: regexp.MustCompile(`(?:add|create|new)\b.*task.*\bto do (.+)$`), action: types.ActionAddTask, extract: captureAs("title", 1)},
	{re: regexp.MustCompile(`(?:add|create|new)\b.*remind me to (.+)$`), action: types.ActionAddTask, extract: captureAs("title", 1)},
	{re: regexp.MustCompile(`delete.*task`), action: types.ActionDeleteTask},
	{re: regexp.MustCompile(`remove.*task`), action: types.ActionDeleteTask},
	{re: regexp.MustCompile(`clear.*task`), action: types.ActionDeleteTask},
	{re: regexp.MustCompile(`show.*task`), action: types.ActionGetTasks},
	{re: regexp.MustCompile(`list.*task`), action: types.ActionGetTasks},
	{re: regexp.MustCompile(`what.*task`), action: types.ActionGetTasks},
}

var systemRules = []rule{
	{re: regexp.MustCompile(`(?:cpu|processor).*(?:usage|load|percent)`), action: types.ActionSystemStats},
	{re: regexp.MustCompile(`(?:memory|ram).*(?:usage|percent)`), action: types.ActionSystemStats},
	{re: regexp.MustCompile(`(?:disk|storage).*(?:usage|percent)`), action: types.ActionSystemStats},
	{re: regexp.MustCompile(`(?:system|computer).*(?:status|stats)`), action: types.ActionSystemStats},
	{re: regexp.MustCompile(`\b(?:open|launch|start)\b\s+(?:the\s+)?(.+)$`), action: types.ActionOpenApp, extract: extractOpenApp},
}

var scheduleRules = []rule{
	{re: regexp.MustCompile(`(?:set|add|create|schedule)\b.*(?:reminder|alarm)\s+for\s+(.+?)\s+(?:to|about)\s+(.+)$`), action: types.ActionAddReminder, extract: extractTimedReminder},
	{re: regexp.MustCompile(`(?:set|add|create|schedule)\b.*(?:reminder|alarm).*\b(?:to|about)\s+(.+)$`), action: types.ActionAddReminder, extract: captureAs("message", 1)},
	{re: regexp.MustCompile(`(?:set|add|create|schedule)\b.*(?:reminder|alarm)\s+for\s+(.+)$`), action: types.ActionAddReminder, extract: extractTimeOnlyReminder},
	{re: regexp.MustCompile(`remind me to (.+)$`), action: types.ActionAddReminder, extract: captureAs("message", 1)},
	{re: regexp.MustCompile(`show.*(?:reminder|alarm)`), action: types.ActionGetSchedule},
	{re: regexp.MustCompile(`list.*(?:reminder|alarm)`), action: types.ActionGetSchedule},
}

// families in fixed priority order; first matching rule wins.
var families = []family{
	{intent: types.IntentTask, confidence: ConfidenceTask, rules: taskRules},
	{intent: types.IntentSystem, confidence: ConfidenceSystem, rules: systemRules},
	{intent: types.IntentSchedule, confidence: ConfidenceSchedule, rules: scheduleRules},
}

func extractTimedReminder(match []string, params map[string]string) bool {
	params["time"] = strings.TrimSpace(match[1])
	params["message"] = strings.TrimSpace(match[2])
	return true
}

func extractTimeOnlyReminder(match []string, params map[string]string) bool {
	params["time"] = strings.TrimSpace(match[1])
	params["message"] = "Reminder"
	return true
}

// fillerSuffixRe trims trailing filler words off a captured app name, so
// "open chrome please" and "open notepad app now" resolve cleanly.
var fillerSuffixRe = regexp.MustCompile(`\s+(?:please|now|app|application)$`)

// knownApps maps spoken names and aliases to the canonical launcher name.
var knownApps = map[string]string{
	"chrome":             "chrome",
	"google chrome":      "chrome",
	"chrome browser":     "chrome",
	"browser":            "chrome",
	"web browser":        "chrome",
	"firefox":            "firefox",
	"edge":               "edge",
	"microsoft edge":     "edge",
	"safari":             "safari",
	"opera":              "opera",
	"brave":              "brave",
	"notepad":            "notepad",
	"text editor":        "notepad",
	"word":               "word",
	"microsoft word":     "word",
	"excel":              "excel",
	"powerpoint":         "powerpoint",
	"outlook":            "outlook",
	"calendar":           "calendar",
	"vscode":             "vscode",
	"code":               "vscode",
	"visual studio code": "vscode",
	"visual studio":      "vscode",
	"pycharm":            "pycharm",
	"intellij":           "intellij",
	"sublime":            "sublime",
	"sublime text":       "sublime",
	"terminal":           "terminal",
	"command prompt":     "terminal",
	"cmd":                "terminal",
	"powershell":         "powershell",
	"calculator":         "calculator",
	"spotify":            "spotify",
	"vlc":                "vlc",
	"media player":       "vlc",
	"itunes":             "itunes",
	"slack":              "slack",
	"discord":            "discord",
	"teams":              "teams",
	"microsoft teams":    "teams",
	"zoom":               "zoom",
	"skype":              "skype",
	"whatsapp":           "whatsapp",
	"photoshop":          "photoshop",
	"paint":              "paint",
	"gimp":               "gimp",
	"explorer":           "explorer",
	"file explorer":      "explorer",
	"files":              "explorer",
	"finder":             "finder",
	"task manager":       "task manager",
	"control panel":      "control panel",
	"settings":           "settings",
	"steam":              "steam",
	"minecraft":          "minecraft",
}

// extractOpenApp captures the text after the open verb, strips filler words
// and resolves it against the known application table. Unrecognized names
// veto the rule so the text can fall through to later families.
func extractOpenApp(match []string, params map[string]string) bool {
	name := strings.TrimSpace(match[1])
	name = stripFillerWords(name)

	canonical, ok := knownApps[name]
	if !ok {
		return false
	}
	params["app_name"] = canonical
	return true
}

func stripFillerWords(name string) string {
	for {
		trimmed := strings.TrimSpace(fillerSuffixRe.ReplaceAllString(name, ""))
		if trimmed == name {
			return name
		}
		name = trimmed
	}
}
