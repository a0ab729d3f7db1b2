package protocol

import (
	"encoding/json"
	"fmt"
)

// Command is the closed set of operations a client can request. Every
// variant maps to exactly one wire encoding, a single-key JSON object
// named after the variant, except Ping which encodes as the bare string
// "Ping".
type Command interface {
	isCommand()
}

type SetCommand struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type GetCommand struct {
	Key string `json:"key"`
}

type DeleteCommand struct {
	Key string `json:"key"`
}

type MergeCommand struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type QGetCommand struct {
	Key   string `json:"key"`
	Query string `json:"query"`
}

type QSetCommand struct {
	Key   string `json:"key"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

type PingCommand struct{}

func (*SetCommand) isCommand()    {}
func (*GetCommand) isCommand()    {}
func (*DeleteCommand) isCommand() {}
func (*MergeCommand) isCommand()  {}
func (*QGetCommand) isCommand()   {}
func (*QSetCommand) isCommand()   {}
func (*PingCommand) isCommand()   {}

// CommandName returns the wire-level variant name, used for logging and
// metric labels.
func CommandName(c Command) string {
	switch c.(type) {
	case *SetCommand:
		return "Set"
	case *GetCommand:
		return "Get"
	case *DeleteCommand:
		return "Delete"
	case *MergeCommand:
		return "Merge"
	case *QGetCommand:
		return "QGet"
	case *QSetCommand:
		return "QSet"
	case *PingCommand:
		return "Ping"
	default:
		return "Unknown"
	}
}

type commandEnvelope struct {
	Set    *SetCommand    `json:"Set,omitempty"`
	Get    *GetCommand    `json:"Get,omitempty"`
	Delete *DeleteCommand `json:"Delete,omitempty"`
	Merge  *MergeCommand  `json:"Merge,omitempty"`
	QGet   *QGetCommand   `json:"QGet,omitempty"`
	QSet   *QSetCommand   `json:"QSet,omitempty"`
}

// EncodeCommand serializes a command to its JSON payload, without the
// frame length prefix.
func EncodeCommand(c Command) ([]byte, error) {
	switch cmd := c.(type) {
	case *SetCommand:
		return json.Marshal(commandEnvelope{Set: cmd})
	case *GetCommand:
		return json.Marshal(commandEnvelope{Get: cmd})
	case *DeleteCommand:
		return json.Marshal(commandEnvelope{Delete: cmd})
	case *MergeCommand:
		return json.Marshal(commandEnvelope{Merge: cmd})
	case *QGetCommand:
		return json.Marshal(commandEnvelope{QGet: cmd})
	case *QSetCommand:
		return json.Marshal(commandEnvelope{QSet: cmd})
	case *PingCommand:
		return json.Marshal("Ping")
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownCommand, c)
	}
}

// DecodeCommand parses a JSON payload into a command. A payload naming
// no known variant, or naming more than one, is rejected.
func DecodeCommand(data []byte) (Command, error) {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		if s != "Ping" {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, s)
		}
		return &PingCommand{}, nil
	}

	var env commandEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	var cmd Command
	count := 0
	if env.Set != nil {
		cmd, count = env.Set, count+1
	}
	if env.Get != nil {
		cmd, count = env.Get, count+1
	}
	if env.Delete != nil {
		cmd, count = env.Delete, count+1
	}
	if env.Merge != nil {
		cmd, count = env.Merge, count+1
	}
	if env.QGet != nil {
		cmd, count = env.QGet, count+1
	}
	if env.QSet != nil {
		cmd, count = env.QSet, count+1
	}

	if count != 1 {
		return nil, fmt.Errorf("%w: payload names %d variants", ErrUnknownCommand, count)
	}
	return cmd, nil
}
