package events

import (
	"errors"
	"os"
	"syscall"
)

// ErrorCode represents daemon-related error types.
type ErrorCode int

const (
	ErrSocketNotFound ErrorCode = iota
	ErrSocketPermission
	ErrDaemonNotRunning
	ErrConnectionRefused
)

// ErrNilClient is returned by methods called on a nil *Client
var ErrNilClient = errors.New("event client is nil")

// DaemonError describes why the change-notification daemon is unreachable
type DaemonError struct {
	Code    ErrorCode
	Message string
	Hint    string
	Err     error
}

func (e *DaemonError) Error() string {
	if e.Hint != "" {
		return e.Message + ". " + e.Hint
	}
	return e.Message
}

func (e *DaemonError) Unwrap() error {
	return e.Err
}

// ClassifyDaemonError maps a dial error to a DaemonError with a hint for the
// user. Notifications are optional, so callers usually just log this.
func ClassifyDaemonError(err error) *DaemonError {
	if err == nil {
		return nil
	}

	de := &DaemonError{
		Code:    ErrDaemonNotRunning,
		Message: "Daemon not running",
		Hint:    "Start it with: tasknote daemon",
		Err:     err,
	}

	var errno syscall.Errno
	switch {
	case errors.Is(err, os.ErrNotExist):
		de.Code = ErrSocketNotFound
		de.Message = "Socket file not found"
	case errors.Is(err, os.ErrPermission):
		de.Code = ErrSocketPermission
		de.Message = "Permission denied"
		de.Hint = "Check data directory permissions: chmod 700 ~/.tasknote/"
	case errors.As(err, &errno) && errno == syscall.ECONNREFUSED:
		de.Code = ErrConnectionRefused
		de.Message = "Connection refused"
		de.Hint = "The daemon may have crashed. Restart it with: tasknote daemon"
	}

	return de
}
