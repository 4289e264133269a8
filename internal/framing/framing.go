// Package framing implements the single delimiter-based framing scheme
// shared by every encoded value that crosses a byte stream in this store:
// on-disk records inside a segment file, and requests/responses on the wire.
// A frame is a JSON-encoded value followed by a single delimiter byte.
// json.Marshal's compact output never contains a raw newline: every control
// character inside a JSON string, newline included, is escaped as \n, so a
// newline delimiter can never collide with payload bytes the way a visible
// ASCII character like '#' can (a key or value containing a literal '#'
// would otherwise serialize with that byte unescaped). That makes the
// newline safe to split frames on without a length prefix.
package framing

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/nilotpal-labs/kvs/pkg/errors"
)

// Delimiter terminates every frame written by Write and consumed by Read.
const Delimiter = '\n'

// Write JSON-encodes v and appends the delimiter, returning the total number
// of bytes written. Callers needing the byte offset of a record (the
// storage layer) should capture the writer's position before calling Write.
func Write[T any](w io.Writer, v T) (int, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, errors.NewProtocolError(err, errors.ErrorCodeProtocolMalformed, "failed to encode frame").
			WithDirection("write")
	}

	payload = append(payload, Delimiter)

	n, err := w.Write(payload)
	if err != nil {
		return n, errors.NewProtocolError(err, errors.ErrorCodeIO, "failed to write frame").
			WithDirection("write")
	}

	return n, nil
}

// Read consumes bytes from r up to and including the next delimiter and
// decodes everything before it as a value of type T.
func Read[T any](r *bufio.Reader) (T, error) {
	var zero T

	raw, err := r.ReadBytes(Delimiter)
	if err != nil {
		if err == io.EOF && len(raw) == 0 {
			return zero, io.EOF
		}
		return zero, errors.NewProtocolError(err, errors.ErrorCodeIO, "failed to read frame").
			WithDirection("read")
	}

	payload := raw[:len(raw)-1]

	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return zero, errors.NewProtocolError(err, errors.ErrorCodeProtocolMalformed, "failed to decode frame").
			WithDirection("read").
			WithFrame(string(payload))
	}

	return v, nil
}
