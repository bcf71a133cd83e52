package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CommandKind identifies an operator command.
type CommandKind string

// The three commands the daemon understands.
const (
	// CommandStart begins (or resumes) crawling under the URL's domain.
	CommandStart CommandKind = "start"

	// CommandStop clears the domain's crawling flag. In-flight work is
	// not cancelled; future dispatch under the domain quiesces.
	CommandStop CommandKind = "stop"

	// CommandList renders the discovered URL tree to the daemon's console.
	CommandList CommandKind = "list"
)

// Command wire decoding errors.
var (
	// ErrUnknownCommand is returned when the kind field is not one of
	// start, stop, or list.
	ErrUnknownCommand = errors.New("unknown command kind")

	// ErrMissingURL is returned when a start or stop command carries no URL.
	ErrMissingURL = errors.New("command requires a url")
)

// Command is the message a client sends to the daemon. One command is
// encoded per TCP connection as a single JSON object; the url field is
// present for start and stop and absent for list.
type Command struct {
	// Kind selects the operation.
	Kind CommandKind `json:"kind"`

	// URL is the raw URL payload for start and stop commands.
	URL string `json:"url,omitempty"`
}

// StartCommand builds a start command for the given URL.
func StartCommand(url string) Command {
	return Command{Kind: CommandStart, URL: url}
}

// StopCommand builds a stop command for the given URL.
func StopCommand(url string) Command {
	return Command{Kind: CommandStop, URL: url}
}

// ListCommand builds a list command.
func ListCommand() Command {
	return Command{Kind: CommandList}
}

// Validate checks that the command is well-formed.
func (c Command) Validate() error {
	switch c.Kind {
	case CommandStart, CommandStop:
		if c.URL == "" {
			return fmt.Errorf("%w: kind %q", ErrMissingURL, c.Kind)
		}
		return nil
	case CommandList:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Kind)
	}
}

// String renders the command for log output.
func (c Command) String() string {
	if c.URL == "" {
		return string(c.Kind)
	}
	return fmt.Sprintf("%s %s", c.Kind, c.URL)
}

// Encode serializes the command for the wire.
func (c Command) Encode() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(c)
}

// DecodeCommand parses and validates a command received from the wire.
// The transport hands over whatever bytes a single read produced, so the
// whole buffer must be exactly one JSON object.
func DecodeCommand(data []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(data, &c); err != nil {
		return Command{}, fmt.Errorf("malformed command: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Command{}, err
	}
	return c, nil
}
