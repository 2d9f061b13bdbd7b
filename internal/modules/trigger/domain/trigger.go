package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

type Action string

const (
	ActionSwitch Action = "switch"
	ActionStop   Action = "stop"
)

var (
	ErrPluginDisabled   = errors.New("plugin is disabled")
	ErrChecksumMismatch = errors.New("plugin checksum mismatch")
	ErrPluginNotFound   = errors.New("plugin not found")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Manifest describes one shortcut listener binary.
type Manifest struct {
	Name         string
	Version      string
	Binary       string
	SHA256       string
	Enabled      bool
	PollInterval time.Duration
	Settings     map[string]string
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("plugin version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("plugin binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("plugin sha256 must be lowercase 64-char hex")
	}
	if m.PollInterval <= 0 {
		return fmt.Errorf("plugin poll interval must be positive")
	}
	return nil
}

type Metadata struct {
	Name    string
	Version string
}

// Event is one shortcut press reported by a listener. A zero At means the
// tracker clock at dispatch time.
type Event struct {
	Action Action
	Name   string
	At     time.Time
}

func (e Event) Validate() error {
	switch e.Action {
	case ActionStop:
		return nil
	case ActionSwitch:
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("switch event needs an activity name")
		}
		return nil
	default:
		return fmt.Errorf("unknown trigger action: %q", e.Action)
	}
}

// ParseLine maps a line of listener input to an event: "stop" stops the
// tracker, anything else non-blank switches to that activity.
func ParseLine(line string) (Event, bool) {
	name := strings.TrimSpace(line)
	switch {
	case name == "":
		return Event{}, false
	case strings.EqualFold(name, string(ActionStop)):
		return Event{Action: ActionStop}, true
	default:
		return Event{Action: ActionSwitch, Name: name}, true
	}
}
