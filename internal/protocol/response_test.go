package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeResponse_wireShapes(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want string
	}{
		{"ok with value", &OkResponse{Value: map[string]any{"a": float64(1)}}, `{"Ok":{"a":1}}`},
		{"ok null", &OkResponse{}, `{"Ok":null}`},
		{"error", &ErrorResponse{Message: "not leader"}, `{"Error":"not leader"}`},
		{"pong", &PongResponse{}, `"Pong"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			payload, err := EncodeResponse(tc.resp)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(payload))
		})
	}
}

func TestResponse_roundTrip(t *testing.T) {
	responses := []Response{
		&OkResponse{Value: []any{"Alice", "Bob"}},
		&OkResponse{Value: nil},
		&ErrorResponse{Message: "invalid path"},
		&PongResponse{},
	}

	for _, resp := range responses {
		payload, err := EncodeResponse(resp)
		require.NoError(t, err)

		decoded, err := DecodeResponse(payload)
		require.NoError(t, err)
		assert.Equal(t, resp, decoded)
	}
}

func TestDecodeResponse_okNullDistinctFromError(t *testing.T) {
	resp, err := DecodeResponse([]byte(`{"Ok":null}`))
	require.NoError(t, err)

	ok, isOk := resp.(*OkResponse)
	require.True(t, isOk)
	assert.Nil(t, ok.Value)
}

func TestDecodeResponse_rejectsUnknownShape(t *testing.T) {
	_, err := DecodeResponse([]byte(`{"Result":1}`))
	require.ErrorIs(t, err, ErrMalformedPayload)

	_, err = DecodeResponse([]byte(`"Ping"`))
	require.ErrorIs(t, err, ErrMalformedPayload)
}
