package protocol

import (
	"encoding/json"
	"fmt"
)

// Response is the closed set of reply shapes: {"Ok": value-or-null},
// {"Error": message}, or the bare string "Pong".
type Response interface {
	isResponse()
}

// OkResponse carries a successful result. A nil Value encodes as
// {"Ok": null}, which is also how key absence is reported.
type OkResponse struct {
	Value any
}

type ErrorResponse struct {
	Message string
}

type PongResponse struct{}

func (*OkResponse) isResponse()    {}
func (*ErrorResponse) isResponse() {}
func (*PongResponse) isResponse()  {}

type okEnvelope struct {
	Ok any `json:"Ok"`
}

type errorEnvelope struct {
	Error string `json:"Error"`
}

func EncodeResponse(r Response) ([]byte, error) {
	switch resp := r.(type) {
	case *OkResponse:
		return json.Marshal(okEnvelope{Ok: resp.Value})
	case *ErrorResponse:
		return json.Marshal(errorEnvelope{Error: resp.Message})
	case *PongResponse:
		return json.Marshal("Pong")
	default:
		return nil, fmt.Errorf("%w: %T", ErrMalformedPayload, r)
	}
}

func DecodeResponse(data []byte) (Response, error) {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		if s != "Pong" {
			return nil, fmt.Errorf("%w: %q", ErrMalformedPayload, s)
		}
		return &PongResponse{}, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if msg, ok := raw["Error"]; ok {
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		return &ErrorResponse{Message: s}, nil
	}

	if val, ok := raw["Ok"]; ok {
		var v any
		if err := json.Unmarshal(val, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		return &OkResponse{Value: v}, nil
	}

	return nil, fmt.Errorf("%w: no known response variant", ErrMalformedPayload)
}
