package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Action is the filing action a Command proposes.
type Action int

const (
	ActionMove Action = iota + 1
	ActionSkip
	ActionIndeterminate
)

func (a Action) String() string {
	switch a {
	case ActionMove:
		return "Move"
	case ActionSkip:
		return "Skip"
	case ActionIndeterminate:
		return "Indeterminate"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// ParseAction parses the wire name of an action.
func ParseAction(value string) (Action, error) {
	switch strings.TrimSpace(value) {
	case "Move":
		return ActionMove, nil
	case "Skip":
		return ActionSkip, nil
	case "Indeterminate":
		return ActionIndeterminate, nil
	default:
		return 0, fmt.Errorf("unknown action %q", value)
	}
}

// Reason records which classifier produced a Move.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonChatCompletion
	ReasonCourseCode
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "None"
	case ReasonChatCompletion:
		return "ChatCompletion"
	case ReasonCourseCode:
		return "CourseCode"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// ParseReason parses the wire name of a reason, accepting the legacy
// "Chatgpt" spelling.
func ParseReason(value string) (Reason, error) {
	switch strings.TrimSpace(value) {
	case "ChatCompletion", "Chatgpt":
		return ReasonChatCompletion, nil
	case "CourseCode":
		return ReasonCourseCode, nil
	default:
		return ReasonNone, fmt.Errorf("unknown reason %q", value)
	}
}

// Command is one proposed filing action. Empty FilePath or Destination means
// the value is absent and is encoded as null.
type Command struct {
	FilePath    string
	Action      Action
	Destination string
	Reason      Reason
}

// Move builds a Move command.
func Move(filePath, destination string, reason Reason) Command {
	return Command{FilePath: filePath, Action: ActionMove, Destination: destination, Reason: reason}
}

// Skip builds a Skip command for a file that needs no action.
func Skip(filePath string, reason Reason) Command {
	return Command{FilePath: filePath, Action: ActionSkip, Reason: reason}
}

// Indeterminate builds a command for a file no classifier could place.
func Indeterminate(filePath string) Command {
	return Command{FilePath: filePath, Action: ActionIndeterminate}
}

// Validate enforces the per-action field requirements.
func (c Command) Validate() error {
	switch c.Action {
	case ActionMove:
		if c.FilePath == "" {
			return errors.New("move command requires file_path")
		}
		if c.Destination == "" {
			return errors.New("move command requires destination")
		}
	case ActionSkip:
		if c.FilePath == "" {
			return errors.New("skip command requires file_path")
		}
	case ActionIndeterminate:
		if c.Destination != "" {
			return errors.New("indeterminate command must not carry a destination")
		}
		if c.Reason != ReasonNone {
			return errors.New("indeterminate command must not carry a reason")
		}
	default:
		return fmt.Errorf("invalid action %d", int(c.Action))
	}
	return nil
}

type wireCommand struct {
	FilePath    *string `json:"file_path"`
	Action      string  `json:"action"`
	Destination *string `json:"destination"`
	Reason      *string `json:"reason"`
}

// legacyCommand matches lines written by earlier releases, which named the
// action field "command".
type legacyCommand struct {
	Command *string `json:"command"`
}

// MarshalJSON encodes the command as a single journal line object.
func (c Command) MarshalJSON() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	wire := wireCommand{Action: c.Action.String()}
	if c.FilePath != "" {
		wire.FilePath = &c.FilePath
	}
	if c.Destination != "" {
		wire.Destination = &c.Destination
	}
	if c.Reason != ReasonNone {
		reason := c.Reason.String()
		wire.Reason = &reason
	}
	return json.Marshal(wire)
}

// UnmarshalJSON decodes a journal line and validates it.
func (c *Command) UnmarshalJSON(data []byte) error {
	var wire wireCommand
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	actionName := wire.Action
	if actionName == "" {
		var legacy legacyCommand
		if err := json.Unmarshal(data, &legacy); err == nil && legacy.Command != nil {
			actionName = *legacy.Command
		}
	}
	action, err := ParseAction(actionName)
	if err != nil {
		return err
	}
	decoded := Command{Action: action}
	if wire.FilePath != nil {
		decoded.FilePath = *wire.FilePath
	}
	if wire.Destination != nil {
		decoded.Destination = *wire.Destination
	}
	if wire.Reason != nil {
		if decoded.Reason, err = ParseReason(*wire.Reason); err != nil {
			return err
		}
	}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*c = decoded
	return nil
}

// Describe renders the command for confirmation prompts and listings.
func (c Command) Describe() string {
	switch c.Action {
	case ActionMove:
		return fmt.Sprintf("Move %s -> %s (%s)", c.FilePath, c.Destination, c.Reason)
	case ActionSkip:
		return fmt.Sprintf("Skip %s (already filed)", c.FilePath)
	case ActionIndeterminate:
		if c.FilePath == "" {
			return "Indeterminate (no file)"
		}
		return fmt.Sprintf("Indeterminate %s (no course matched)", c.FilePath)
	default:
		return c.Action.String()
	}
}
