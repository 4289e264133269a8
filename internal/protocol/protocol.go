// Package protocol implements the request/response exchange between a
// client and the server: exactly one framed Command sent, exactly one
// framed Response received, over a connection that is then closed. Framing
// reuses internal/framing, the same delimiter-based scheme the storage
// engine uses for its on-disk records.
package protocol

import (
	"bufio"
	"io"

	"github.com/nilotpal-labs/kvs/internal/command"
	"github.com/nilotpal-labs/kvs/internal/framing"
)

// Status reports whether a request succeeded or failed.
type Status string

const (
	StatusOK   Status = "ok"
	StatusFail Status = "fail"
)

// Response is the single reply type for every Command kind. Found
// distinguishes a Get hit from a miss; Value is only meaningful when Found
// is true. Error carries a human-readable message when Status is
// StatusFail.
type Response struct {
	Status Status `json:"status"`
	Value  string `json:"value,omitempty"`
	Found  bool   `json:"found,omitempty"`
	Error  string `json:"error,omitempty"`
}

// SuccessSet builds the reply to a completed Set command.
func SuccessSet() Response {
	return Response{Status: StatusOK}
}

// SuccessGet builds the reply to a completed Get command. found is false
// when the key has no live entry; value is empty in that case.
func SuccessGet(value string, found bool) Response {
	return Response{Status: StatusOK, Value: value, Found: found}
}

// SuccessRm builds the reply to a completed Rm command.
func SuccessRm() Response {
	return Response{Status: StatusOK}
}

// Fail builds a reply reporting that the command could not be completed.
func Fail(msg string) Response {
	return Response{Status: StatusFail, Error: msg}
}

// WriteCommand frames and writes a Command to w.
func WriteCommand(w io.Writer, cmd command.Command) error {
	_, err := framing.Write(w, cmd)
	return err
}

// ReadCommand reads and decodes the next framed Command from r.
func ReadCommand(r *bufio.Reader) (command.Command, error) {
	return framing.Read[command.Command](r)
}

// WriteResponse frames and writes a Response to w.
func WriteResponse(w io.Writer, resp Response) error {
	_, err := framing.Write(w, resp)
	return err
}

// ReadResponse reads and decodes the next framed Response from r.
func ReadResponse(r *bufio.Reader) (Response, error) {
	return framing.Read[Response](r)
}
