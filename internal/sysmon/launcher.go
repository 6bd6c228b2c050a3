package sysmon

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"runtime"
	"strings"
)

// appCommands maps a canonical application name to candidate launch commands
// per platform. The first candidate found on PATH wins on linux.
var appCommands = map[string]map[string][]string{
	"chrome": {
		"darwin":  {"Google Chrome"},
		"windows": {"chrome"},
		"linux":   {"google-chrome", "google-chrome-stable", "chromium"},
	},
	"firefox": {
		"darwin":  {"Firefox"},
		"windows": {"firefox"},
		"linux":   {"firefox"},
	},
	"notepad": {
		"darwin":  {"TextEdit"},
		"windows": {"notepad.exe"},
		"linux":   {"gedit", "kate", "mousepad"},
	},
	"calculator": {
		"darwin":  {"Calculator"},
		"windows": {"calc.exe"},
		"linux":   {"gnome-calculator", "kcalc"},
	},
	"vscode": {
		"darwin":  {"Visual Studio Code"},
		"windows": {"code"},
		"linux":   {"code"},
	},
	"terminal": {
		"darwin":  {"Terminal"},
		"windows": {"cmd.exe"},
		"linux":   {"gnome-terminal", "konsole", "xterm"},
	},
	"explorer": {
		"darwin":  {"Finder"},
		"windows": {"explorer.exe"},
		"linux":   {"nautilus", "dolphin", "thunar"},
	},
	"spotify": {
		"darwin":  {"Spotify"},
		"windows": {"spotify"},
		"linux":   {"spotify"},
	},
	"vlc": {
		"darwin":  {"VLC"},
		"windows": {"vlc"},
		"linux":   {"vlc"},
	},
	"slack": {
		"darwin":  {"Slack"},
		"windows": {"slack"},
		"linux":   {"slack"},
	},
	"discord": {
		"darwin":  {"Discord"},
		"windows": {"discord"},
		"linux":   {"discord"},
	},
}

// Launcher opens desktop applications through the operating system. In safe
// mode only allowlisted applications launch; otherwise unrecognized names are
// run as plain commands.
type Launcher struct {
	goos     string
	safeMode bool
}

// NewLauncher creates a launcher for the current platform.
func NewLauncher(safeMode bool) *Launcher {
	return &Launcher{goos: runtime.GOOS, safeMode: safeMode}
}

// SupportedApps returns the canonical names the launcher can open.
func (l *Launcher) SupportedApps() []string {
	apps := make([]string, 0, len(appCommands))
	for name := range appCommands {
		apps = append(apps, name)
	}
	return apps
}

// Open starts the named application. The name must be one of the supported
// canonical names; path characters are rejected outright.
func (l *Launcher) Open(ctx context.Context, appName string) error {
	name := strings.ToLower(strings.TrimSpace(appName))

	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("application name %q contains illegal characters", appName)
	}

	candidates, ok := appCommands[name]
	if !ok {
		if l.safeMode {
			return fmt.Errorf("application %q is not supported", name)
		}
		return l.openRaw(ctx, name)
	}

	platformCmds, ok := candidates[l.goos]
	if !ok {
		return fmt.Errorf("unsupported operating system: %s", l.goos)
	}

	log.Printf("Opening application: %s", name)

	switch l.goos {
	case "darwin":
		cmd := exec.CommandContext(ctx, "open", "-a", platformCmds[0])
		return cmd.Run()
	case "windows":
		cmd := exec.CommandContext(ctx, "cmd", "/C", "start", "", platformCmds[0])
		return cmd.Run()
	case "linux":
		for _, candidate := range platformCmds {
			if _, err := exec.LookPath(candidate); err != nil {
				continue
			}
			cmd := exec.CommandContext(ctx, candidate)
			if err := cmd.Start(); err != nil {
				return fmt.Errorf("failed to start %s: %w", candidate, err)
			}
			// Detach; the launched app outlives the request.
			go func() { _ = cmd.Wait() }()
			return nil
		}
		return fmt.Errorf("no launch command found for %q", name)
	default:
		return fmt.Errorf("unsupported operating system: %s", l.goos)
	}
}

// openRaw launches a command not in the allowlist. Safe mode must be off.
func (l *Launcher) openRaw(ctx context.Context, name string) error {
	switch l.goos {
	case "darwin":
		return exec.CommandContext(ctx, "open", "-a", name).Run()
	case "windows":
		return exec.CommandContext(ctx, "cmd", "/C", "start", "", name).Run()
	case "linux":
		if _, err := exec.LookPath(name); err != nil {
			return fmt.Errorf("command %q not found: %w", name, err)
		}
		cmd := exec.CommandContext(ctx, name)
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		go func() { _ = cmd.Wait() }()
		return nil
	default:
		return fmt.Errorf("unsupported operating system: %s", l.goos)
	}
}
