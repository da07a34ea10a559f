package artistpath

import (
	"errors"
	"fmt"

	"github.com/malbiruk/artistpath/model"
	"github.com/malbiruk/artistpath/persistence"
)

var (
	// ErrUnknownArtist is returned when an identifier or name has no record.
	// A well-formed negative answer: the request itself was valid.
	ErrUnknownArtist = errors.New("unknown artist")

	// ErrInvalidArgument is returned when parameters are out of range,
	// before any I/O happens.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCorruptStore is returned when a structural violation is detected
	// at read time. Fatal for the request; the engine stays available.
	ErrCorruptStore = errors.New("corrupt store")

	// ErrIO is returned on mapping or read failures from the operating
	// system. Fatal for the request; the engine stays available.
	ErrIO = errors.New("i/o failure")

	// ErrClosed is returned when querying an engine after Close.
	ErrClosed = errors.New("engine is closed")
)

// UnknownArtistError carries which lookup failed.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type UnknownArtistError struct {
	ID    model.ArtistID
	Query string
	cause error
}

func (e *UnknownArtistError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("unknown artist %q", e.Query)
	}
	return fmt.Sprintf("unknown artist %s", e.ID)
}

func (e *UnknownArtistError) Unwrap() error {
	if e.cause != nil {
		return e.cause
	}
	return ErrUnknownArtist
}

// Is lets errors.Is(err, ErrUnknownArtist) succeed regardless of cause.
func (e *UnknownArtistError) Is(target error) bool {
	return target == ErrUnknownArtist
}

// InvalidArgumentError reports which parameter was out of range.
type InvalidArgumentError struct {
	Param  string
	Value  any
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s=%v: %s", e.Param, e.Value, e.Reason)
}

func (e *InvalidArgumentError) Unwrap() error { return ErrInvalidArgument }

// translateError maps internal errors onto the public taxonomy.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Already classified.
	for _, known := range []error{ErrUnknownArtist, ErrInvalidArgument, ErrCorruptStore, ErrIO, ErrClosed} {
		if errors.Is(err, known) {
			return err
		}
	}

	if errors.Is(err, persistence.ErrUnknownArtist) {
		return &UnknownArtistError{cause: fmt.Errorf("%w: %w", ErrUnknownArtist, err)}
	}
	if errors.Is(err, persistence.ErrCorrupt) ||
		errors.Is(err, persistence.ErrInvalidMagic) ||
		errors.Is(err, persistence.ErrInvalidVersion) {
		return fmt.Errorf("%w: %w", ErrCorruptStore, err)
	}

	return fmt.Errorf("%w: %w", ErrIO, err)
}
