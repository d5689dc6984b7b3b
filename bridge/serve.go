package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spachava753/contactbridge/contacts"
)

// Request is one call in the JSON stream read by Serve.
type Request struct {
	ID     string         `json:"id,omitempty"`
	Method string         `json:"method"`
	Args   map[string]any `json:"args,omitempty"`
}

// Response answers one Request.
type Response struct {
	ID     string     `json:"id,omitempty"`
	Result any        `json:"result,omitempty"`
	Error  *ErrorBody `json:"error,omitempty"`
}

// ErrorBody is the wire form of a failed call.
type ErrorBody struct {
	Code    contacts.ErrorCode `json:"code"`
	Message string             `json:"message"`
}

// Serve reads JSON requests from r and writes one JSON response per request
// to w until r is exhausted or ctx is done. A request that cannot be decoded
// gets an error response and stops the stream.
func (b *Bridge) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	dec := json.NewDecoder(r)
	enc := json.NewEncoder(w)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var req Request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			malformed := &contacts.Error{Code: contacts.ErrorCodeMalformedInput, Message: "decoding request failed", Err: err}
			if encErr := enc.Encode(Response{Error: errorBody(malformed)}); encErr != nil {
				return fmt.Errorf("bridge: writing response failed: %w", encErr)
			}
			return fmt.Errorf("bridge: decoding request failed: %w", err)
		}

		resp := Response{ID: req.ID}
		result, err := b.Handle(ctx, Call{Method: req.Method, Args: req.Args})
		if err != nil {
			resp.Error = errorBody(err)
		} else {
			resp.Result = result
		}
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("bridge: writing response failed: %w", err)
		}
	}
}

func errorBody(err error) *ErrorBody {
	return &ErrorBody{Code: contacts.Code(err), Message: err.Error()}
}
