package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize bounds the memory a single frame may claim. A frame
// advertising more than this is treated as corrupt and the connection
// must be closed.
const MaxFrameSize = 16 << 20

var (
	ErrFrameTooLarge    = errors.New("protocol: frame exceeds maximum size")
	ErrUnknownCommand   = errors.New("protocol: unrecognized command variant")
	ErrMalformedPayload = errors.New("protocol: malformed payload")
)

// ReadFrame reads one length-prefixed frame: a 4-byte big-endian length
// followed by exactly that many payload bytes. Partial TCP reads are
// absorbed by io.ReadFull; the payload is never parsed before it is
// complete.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(header[:])
	if length > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("truncated frame: %w", err)
	}
	return payload, nil
}

// WriteFrame writes one length-prefixed frame.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(payload))
	}

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadCommand reads and decodes one command frame.
func ReadCommand(r io.Reader) (Command, error) {
	payload, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}
	return DecodeCommand(payload)
}

// WriteCommand encodes and writes one command frame.
func WriteCommand(w io.Writer, c Command) error {
	payload, err := EncodeCommand(c)
	if err != nil {
		return err
	}
	return WriteFrame(w, payload)
}

// ReadResponse reads and decodes one response frame.
func ReadResponse(r io.Reader) (Response, error) {
	payload, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}
	return DecodeResponse(payload)
}

// WriteResponse encodes and writes one response frame.
func WriteResponse(w io.Writer, resp Response) error {
	payload, err := EncodeResponse(resp)
	if err != nil {
		return err
	}
	return WriteFrame(w, payload)
}
