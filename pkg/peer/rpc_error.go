package peer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

var ErrRPC = errors.New("ipfs rpc")

// RPCError is the JSON body the node responds with when a call fails.
type RPCError struct {
	Message    string `json:"Message"`
	Code       int    `json:"Code"`
	Type       string `json:"Type"`
	StatusCode int    `json:"-"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("%s (HTTP Status: %d): %s", ErrRPC, e.StatusCode, e.Message)
}

// Unwrap classifies the failure so callers can use errors.Is with
// ErrNotFound and ErrExists.
func (e *RPCError) Unwrap() error {
	msg := strings.ToLower(e.Message)
	switch {
	case strings.Contains(msg, "does not exist"), strings.Contains(msg, "not found"):
		return ErrNotFound
	case strings.Contains(msg, "already exists"), strings.Contains(msg, "already has entry"):
		return ErrExists
	default:
		return ErrRPC
	}
}

// toErrorFromResponse builds an error from a failed response. Bodies that aren't
// the node's JSON error shape still produce an error carrying the status code.
func toErrorFromResponse(resp *resty.Response) error {
	rpcErr := &RPCError{StatusCode: resp.StatusCode()}
	if err := json.Unmarshal(resp.Body(), rpcErr); err != nil || rpcErr.Message == "" {
		rpcErr.Message = strings.TrimSpace(string(resp.Body()))
	}

	return rpcErr
}
