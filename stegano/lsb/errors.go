package lsb
import (
	"errors"
	"fmt"
)

var (
	// embedding
	ErrCapacityExceeded = errors.New("message does not fit into the image")
	ErrImageTooSmall = errors.New("image is too small to hold the header")

	// extraction. every extraction failure wraps ErrNoMessage, callers
	// should treat it as "nothing here" and not as a failure.
	ErrNoMessage = errors.New("no message found")
	ErrInvalidHeader = errors.New("invalid header")
	ErrInvalidStart = errors.New("invalid frame start")
	ErrInvalidLength = errors.New("invalid frame length")
	ErrChecksumMismatch = errors.New("frame checksum mismatch")
	ErrInvalidEnd = errors.New("invalid frame end")

	// programmer errors, raised with panic
	ErrAddressOutOfRange = errors.New("slot address out of range")
	ErrInvalidLayout = errors.New("invalid header layout")
)

// wraps an extraction failure so that both ErrNoMessage and
// the concrete reason match errors.Is.
func notFound( reason error ) error {
	return fmt.Errorf( "%w: %w", ErrNoMessage, reason )
}
