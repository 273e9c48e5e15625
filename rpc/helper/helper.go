package helper

import (
	"encoding/binary"
	"fmt"
	"io"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
)

// MaxFrameSize bounds the payload of a single frame.
const MaxFrameSize = 256 << 20

// Send sends a message wrapped in an anypb.Any to w.
// format is:
//
//	| length (8 bytes) | payload (length bytes) |
func Send(w io.Writer, msg *anypb.Any) error {
	bytes, err := proto.Marshal(msg)
	if err != nil {
		return err
	}
	length := uint64(len(bytes))
	if length > MaxFrameSize {
		return fmt.Errorf("frame of %d bytes exceeds limit %d", length, MaxFrameSize)
	}
	if err := binary.Write(w, binary.BigEndian, length); err != nil {
		return err
	}
	if _, err := w.Write(bytes); err != nil {
		return err
	}
	return nil
}

// Receive receives one frame from r.
func Receive(r io.Reader) (*anypb.Any, error) {
	var length uint64
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, err
	}
	if length > MaxFrameSize {
		return nil, fmt.Errorf("frame of %d bytes exceeds limit %d", length, MaxFrameSize)
	}
	bytes := make([]byte, length)
	if _, err := io.ReadFull(r, bytes); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	msg := &anypb.Any{}
	if err := proto.Unmarshal(bytes, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// WrapMessage wraps a proto.Message into an anypb.Any.
func WrapMessage(msg proto.Message) *anypb.Any {
	payload, err := anypb.New(msg)
	if err != nil {
		panic(fmt.Sprint("anypb.New error:", err))
	}
	return payload
}
