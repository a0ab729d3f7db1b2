package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCommand_wireShapes(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{
			name: "set",
			cmd:  &SetCommand{Key: "k", Value: map[string]any{"a": float64(1)}},
			want: `{"Set":{"key":"k","value":{"a":1}}}`,
		},
		{
			name: "get",
			cmd:  &GetCommand{Key: "k"},
			want: `{"Get":{"key":"k"}}`,
		},
		{
			name: "delete",
			cmd:  &DeleteCommand{Key: "k"},
			want: `{"Delete":{"key":"k"}}`,
		},
		{
			name: "merge",
			cmd:  &MergeCommand{Key: "k", Value: map[string]any{"b": true}},
			want: `{"Merge":{"key":"k","value":{"b":true}}}`,
		},
		{
			name: "qget",
			cmd:  &QGetCommand{Key: "k", Query: "$.users[*].name"},
			want: `{"QGet":{"key":"k","query":"$.users[*].name"}}`,
		},
		{
			name: "qset",
			cmd:  &QSetCommand{Key: "k", Path: "a.b.c", Value: float64(5)},
			want: `{"QSet":{"key":"k","path":"a.b.c","value":5}}`,
		},
		{
			name: "ping",
			cmd:  &PingCommand{},
			want: `"Ping"`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			payload, err := EncodeCommand(tc.cmd)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(payload))
		})
	}
}

func TestCommand_roundTrip(t *testing.T) {
	cmds := []Command{
		&SetCommand{Key: "users", Value: map[string]any{"name": "Alice", "age": float64(30)}},
		&GetCommand{Key: "users"},
		&DeleteCommand{Key: "users"},
		&MergeCommand{Key: "users", Value: map[string]any{"age": float64(31)}},
		&QGetCommand{Key: "users", Query: "$.name"},
		&QSetCommand{Key: "users", Path: "address.city", Value: "Rome"},
		&PingCommand{},
	}

	for _, cmd := range cmds {
		t.Run(CommandName(cmd), func(t *testing.T) {
			payload, err := EncodeCommand(cmd)
			require.NoError(t, err)

			decoded, err := DecodeCommand(payload)
			require.NoError(t, err)
			assert.Equal(t, cmd, decoded)
		})
	}
}

func TestDecodeCommand_rejectsUnknownVariant(t *testing.T) {
	_, err := DecodeCommand([]byte(`{"Upsert":{"key":"k"}}`))
	require.ErrorIs(t, err, ErrUnknownCommand)

	_, err = DecodeCommand([]byte(`"Pong"`))
	require.ErrorIs(t, err, ErrUnknownCommand)
}

func TestDecodeCommand_rejectsAmbiguousPayload(t *testing.T) {
	_, err := DecodeCommand([]byte(`{"Get":{"key":"a"},"Delete":{"key":"b"}}`))
	require.ErrorIs(t, err, ErrUnknownCommand)
}

func TestDecodeCommand_rejectsInvalidJSON(t *testing.T) {
	_, err := DecodeCommand([]byte(`{"Set":`))
	require.ErrorIs(t, err, ErrMalformedPayload)
}

func TestDecodeCommand_valueKindsSurviveDecoding(t *testing.T) {
	payload := []byte(`{"Set":{"key":"k","value":[1,"two",true,null,{"n":3.5}]}}`)

	decoded, err := DecodeCommand(payload)
	require.NoError(t, err)

	set, ok := decoded.(*SetCommand)
	require.True(t, ok)

	var want any
	require.NoError(t, json.Unmarshal([]byte(`[1,"two",true,null,{"n":3.5}]`), &want))
	assert.Equal(t, want, set.Value)
}
