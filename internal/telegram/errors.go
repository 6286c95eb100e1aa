package telegram

import (
	"errors"
	"fmt"

	"github.com/flemzord/tgbridge/pkg/message"
)

// Sentinel errors.
var (
	ErrUnsendableAttachment = errors.New("telegram: unresolved attachment cannot be sent")
	ErrUnsupportedReply     = errors.New("telegram: unsupported reply type")
	ErrMalformedUpdate      = errors.New("telegram: malformed update")
	ErrNotConfigured        = errors.New("telegram: bot token not configured")
)

// AttachmentError reports that a media attachment could not be resolved to
// a download URL.
type AttachmentError struct {
	Kind        message.AttachmentKind
	FileID      string
	Description string
	Err         error
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("telegram: resolve %s attachment %q: %s", e.Kind, e.FileID, e.Description)
}

func (e *AttachmentError) Unwrap() error { return e.Err }

// UserLookupError reports a failed getChatMember call.
type UserLookupError struct {
	ChatID      string
	UserID      string
	Description string
	Err         error
}

func (e *UserLookupError) Error() string {
	return fmt.Sprintf("telegram: look up user %s in chat %s: %s", e.UserID, e.ChatID, e.Description)
}

func (e *UserLookupError) Unwrap() error { return e.Err }

// ConnectionError is returned by the client when a request still fails after
// every allowed retry. Message is the full diagnostic with the bot token
// already scrubbed.
type ConnectionError struct {
	Endpoint    string
	StatusCode  int
	Description string
	ErrorCode   int
	Message     string
	Err         error
}

func (e *ConnectionError) Error() string { return e.Message }

func (e *ConnectionError) Unwrap() error { return e.Err }

// redactedError keeps the cause for errors.Is/As while printing a message
// that no longer carries the token-bearing request URL.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.err }
