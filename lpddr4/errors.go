package lpddr4

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

var (
	// ErrInvalidArgument is returned before any register access when a handle, output or enum
	// argument is unusable.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIO reports a failed hardware transaction.
	ErrIO = errors.New("i/o error")
	// ErrTimeout is an ErrIO raised when a poll exhausts its iteration budget.
	ErrTimeout = errors.WithMessage(ErrIO, "poll timed out")
	// ErrVerify is an ErrIO raised when a written register reads back differently under its
	// read/write mask.
	ErrVerify = errors.WithMessage(ErrIO, "register write verification failed")
	// ErrTraining reports that at least one PHY training stage failed. The details are in the
	// DebugInfo that was filled in.
	ErrTraining = errors.New("training failed")
	// ErrUnsupported is returned for operations the controller variant does not have.
	ErrUnsupported = errors.New("operation not supported")
)

// Errno maps an error returned by this package to its numeric result code. nil maps to 0.
func Errno(err error) unix.Errno {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInvalidArgument):
		return unix.EINVAL
	case errors.Is(err, ErrTraining):
		return unix.EPROTO
	case errors.Is(err, ErrUnsupported):
		return unix.EOPNOTSUPP
	default:
		return unix.EIO
	}
}

func invalidf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}
