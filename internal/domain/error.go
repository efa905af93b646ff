package domain

import (
	"errors"
	"fmt"
)

// Messages returned to the browser verbatim.
const (
	MsgInvalidNumber = "Please enter a valid 10-digit number"
	MsgNoData        = "No data found for this number"
	MsgFetchFailed   = "Failed to retrieve data"
	MsgBusy          = "Relay is busy, please retry"
	MsgRateLimited   = "Too many requests"
)

var (
	ErrInvalidNumber = errors.New(MsgInvalidNumber)
	ErrFetchUpdates  = errors.New(MsgFetchFailed)
	ErrChatBusy      = errors.New("relay is busy, please retry")
	ErrRateLimited   = errors.New("too many requests")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UpstreamSendError carries the payload the bot API returned when the
// command could not be delivered.
type UpstreamSendError struct {
	Payload string
	Err     error
}

func (e *UpstreamSendError) Error() string {
	return fmt.Sprintf("Failed to send request: %s", e.Payload)
}

func (e *UpstreamSendError) Unwrap() error { return e.Err }
