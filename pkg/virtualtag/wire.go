package virtualtag

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Service identity in mDNS.
const (
	// ServiceType is the mDNS service type virtual tags register under.
	ServiceType = "_tapmeet-tag._tcp"

	// Domain is the mDNS domain.
	Domain = "local."

	// TXTVersionKey carries the payload schema version in TXT records.
	TXTVersionKey = "ver"

	// TXTCapabilityKey carries the numeric capability in TXT records.
	TXTCapabilityKey = "cap"
)

// Tag commands, one byte each at the start of a request frame.
const (
	// CmdCapability asks what the tag supports.
	CmdCapability byte = 0x01

	// CmdRead asks for the tag's NDEF image.
	CmdRead byte = 0x02

	// CmdWrite replaces the tag's NDEF image with the frame remainder.
	CmdWrite byte = 0x03
)

// Reply status, one byte at the start of a response frame.
const (
	// StatusOK precedes the response data.
	StatusOK byte = 0x00

	// StatusDenied rejects the command (read-only tag, no NDEF support,
	// unknown command).
	StatusDenied byte = 0x01

	// StatusEmpty answers a read when the tag holds no data.
	StatusEmpty byte = 0x02
)

// Framing constants.
const (
	// lengthPrefixSize is the size of the frame length prefix in bytes.
	lengthPrefixSize = 4

	// MaxFrameSize caps a frame payload (64 KiB), which comfortably
	// exceeds any real tag's NDEF capacity.
	MaxFrameSize = 65536
)

// Wire errors.
var (
	// ErrFrameTooLarge indicates a frame above MaxFrameSize.
	ErrFrameTooLarge = errors.New("frame too large")

	// ErrFrameEmpty indicates a zero-length frame.
	ErrFrameEmpty = errors.New("frame is empty")

	// ErrFrameTruncated indicates the stream ended mid-frame.
	ErrFrameTruncated = errors.New("frame truncated")

	// ErrDenied indicates the tag refused a command.
	ErrDenied = errors.New("denied by tag")

	// ErrNotConnected indicates a command before Connect.
	ErrNotConnected = errors.New("not connected")

	// ErrBadReply indicates a malformed response frame.
	ErrBadReply = errors.New("malformed tag reply")
)

// writeFrame writes one length-prefixed frame.
func writeFrame(w io.Writer, payload []byte) error {
	if len(payload) == 0 {
		return ErrFrameEmpty
	}
	if len(payload) > MaxFrameSize {
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(payload), MaxFrameSize)
	}

	var prefix [lengthPrefixSize]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(payload)))
	if _, err := w.Write(prefix[:]); err != nil {
		return fmt.Errorf("write length prefix: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return nil
}

// readFrame reads one length-prefixed frame. io.EOF passes through
// untouched so callers can tell a clean close from a broken frame.
func readFrame(r io.Reader) ([]byte, error) {
	var prefix [lengthPrefixSize]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if err == io.EOF {
			return nil, err
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrFrameTruncated
		}
		return nil, fmt.Errorf("read length prefix: %w", err)
	}

	length := binary.BigEndian.Uint32(prefix[:])
	if length == 0 {
		return nil, ErrFrameEmpty
	}
	if length > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, length, MaxFrameSize)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrFrameTruncated
		}
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return payload, nil
}
