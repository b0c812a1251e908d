package tag

import (
	"context"
	"errors"
)

// Hardware conditions a ReaderWriter reports through sentinel errors.
var (
	// ErrNoTag indicates no tag is in range.
	ErrNoTag = errors.New("no tag in range")

	// ErrMultipleTags indicates more than one tag is in range.
	ErrMultipleTags = errors.New("multiple tags in range")

	// ErrUserCancelled indicates the person dismissed the hardware prompt.
	ErrUserCancelled = errors.New("cancelled by user")
)

// ReaderWriter abstracts the NFC hardware for one proximity ceremony.
// A ReaderWriter is driven by a single Session at a time.
type ReaderWriter interface {
	// Connect brings a tag into a connected state. It blocks until a tag
	// connects, the context ends, or the attempt fails.
	Connect(ctx context.Context) error

	// Capability queries what the connected tag supports.
	Capability(ctx context.Context) (Capability, error)

	// ReadMessage reads the raw NDEF message bytes from the tag.
	ReadMessage(ctx context.Context) ([]byte, error)

	// WriteMessage writes raw NDEF message bytes to the tag.
	WriteMessage(ctx context.Context, data []byte) error

	// Close releases the hardware. It must be safe to call after any
	// failure and more than once.
	Close() error
}
