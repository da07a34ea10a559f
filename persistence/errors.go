package persistence

import (
	"fmt"

	"github.com/malbiruk/artistpath/model"
)

// CorruptError reports a structural violation detected at read time: a bad
// magic, an offset out of bounds, a count that overflows the file size.
//
// It wraps ErrCorrupt so callers can classify with errors.Is while the fields
// preserve the context needed for logging.
type CorruptError struct {
	File   string
	Offset int64
	Artist model.ArtistID
	Detail string
}

func (e *CorruptError) Error() string {
	if e.Artist.IsZero() {
		return fmt.Sprintf("corrupt store: %s at %s[%d]", e.Detail, e.File, e.Offset)
	}
	return fmt.Sprintf("corrupt store: %s at %s[%d] (artist %s)", e.Detail, e.File, e.Offset, e.Artist)
}

func (e *CorruptError) Unwrap() error { return ErrCorrupt }

func corruptf(file string, offset int64, artist model.ArtistID, format string, args ...any) error {
	return &CorruptError{
		File:   file,
		Offset: offset,
		Artist: artist,
		Detail: fmt.Sprintf(format, args...),
	}
}
