package ndef

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Record header flag bits.
const (
	flagMB  = 0x80 // message begin
	flagME  = 0x40 // message end
	flagCF  = 0x20 // chunk flag
	flagSR  = 0x10 // short record
	flagIL  = 0x08 // ID length present
	tnfMask = 0x07
)

// Field size limits from the record layout.
const (
	// MaxTypeLength is the maximum length of a record type name.
	MaxTypeLength = 255

	// MaxIDLength is the maximum length of a record ID.
	MaxIDLength = 255

	// MaxShortPayload is the largest payload encodable in short-record form.
	MaxShortPayload = 255
)

// Well-known record type names.
const (
	// TypeURI is the well-known URI record type.
	TypeURI = "U"

	// TypeText is the well-known Text record type.
	TypeText = "T"
)

// Codec errors.
var (
	// ErrEmptyMessage indicates a message with no records.
	ErrEmptyMessage = errors.New("empty message")

	// ErrTruncated indicates the input ended mid-record.
	ErrTruncated = errors.New("record truncated")

	// ErrChunked indicates a chunked record, which this codec does not support.
	ErrChunked = errors.New("chunked records not supported")

	// ErrFieldTooLong indicates a type, ID, or payload exceeding its length field.
	ErrFieldTooLong = errors.New("field too long")

	// ErrBadPrefix indicates an unknown URI abbreviation code.
	ErrBadPrefix = errors.New("unknown URI prefix code")

	// ErrBadText indicates a malformed text record payload.
	ErrBadText = errors.New("malformed text record")

	// ErrNotURI indicates the record is not a well-known URI record.
	ErrNotURI = errors.New("not a URI record")

	// ErrNotText indicates the record is not a well-known text record.
	ErrNotText = errors.New("not a text record")
)

// TNF is the 3-bit type name format of a record.
type TNF uint8

const (
	// TNFEmpty - record carries no type or payload.
	TNFEmpty TNF = 0x00

	// TNFWellKnown - NFC Forum well-known type (URI, Text).
	TNFWellKnown TNF = 0x01

	// TNFMIME - media type per RFC 2046.
	TNFMIME TNF = 0x02

	// TNFAbsoluteURI - type field holds an absolute URI.
	TNFAbsoluteURI TNF = 0x03

	// TNFExternal - NFC Forum external type (domain-namespaced).
	TNFExternal TNF = 0x04

	// TNFUnknown - payload type is not indicated.
	TNFUnknown TNF = 0x05

	// TNFUnchanged - continuation chunk; rejected by this codec.
	TNFUnchanged TNF = 0x06
)

// String returns the TNF name.
func (t TNF) String() string {
	switch t {
	case TNFEmpty:
		return "EMPTY"
	case TNFWellKnown:
		return "WELL_KNOWN"
	case TNFMIME:
		return "MIME"
	case TNFAbsoluteURI:
		return "ABSOLUTE_URI"
	case TNFExternal:
		return "EXTERNAL"
	case TNFUnknown:
		return "UNKNOWN"
	case TNFUnchanged:
		return "UNCHANGED"
	default:
		return "RESERVED"
	}
}

// Record is a single NDEF record.
type Record struct {
	TNF     TNF
	Type    string
	ID      string
	Payload []byte
}

// encode appends the record in wire form with the given message-begin and
// message-end flags.
func (r Record) encode(dst []byte, mb, me bool) ([]byte, error) {
	if len(r.Type) > MaxTypeLength {
		return nil, fmt.Errorf("%w: type is %d bytes", ErrFieldTooLong, len(r.Type))
	}
	if len(r.ID) > MaxIDLength {
		return nil, fmt.Errorf("%w: id is %d bytes", ErrFieldTooLong, len(r.ID))
	}
	if uint64(len(r.Payload)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: payload is %d bytes", ErrFieldTooLong, len(r.Payload))
	}

	header := byte(r.TNF) & tnfMask
	if mb {
		header |= flagMB
	}
	if me {
		header |= flagME
	}
	short := len(r.Payload) <= MaxShortPayload
	if short {
		header |= flagSR
	}
	if len(r.ID) > 0 {
		header |= flagIL
	}

	dst = append(dst, header, byte(len(r.Type)))
	if short {
		dst = append(dst, byte(len(r.Payload)))
	} else {
		dst = binary.BigEndian.AppendUint32(dst, uint32(len(r.Payload)))
	}
	if len(r.ID) > 0 {
		dst = append(dst, byte(len(r.ID)))
	}
	dst = append(dst, r.Type...)
	dst = append(dst, r.ID...)
	dst = append(dst, r.Payload...)
	return dst, nil
}

// recordFlags carries the framing bits of a decoded record.
type recordFlags struct {
	mb bool
	me bool
}

// decodeRecord parses one record from the front of data and returns it along
// with its framing flags and the number of bytes consumed.
func decodeRecord(data []byte) (Record, recordFlags, int, error) {
	if len(data) < 2 {
		return Record{}, recordFlags{}, 0, ErrTruncated
	}
	header := data[0]
	tnf := TNF(header & tnfMask)
	if header&flagCF != 0 || tnf == TNFUnchanged {
		return Record{}, recordFlags{}, 0, ErrChunked
	}
	flags := recordFlags{mb: header&flagMB != 0, me: header&flagME != 0}
	short := header&flagSR != 0
	hasID := header&flagIL != 0

	off := 1
	typeLen := int(data[off])
	off++

	var payloadLen int
	if short {
		if len(data) < off+1 {
			return Record{}, recordFlags{}, 0, ErrTruncated
		}
		payloadLen = int(data[off])
		off++
	} else {
		if len(data) < off+4 {
			return Record{}, recordFlags{}, 0, ErrTruncated
		}
		payloadLen = int(binary.BigEndian.Uint32(data[off:]))
		off += 4
	}

	idLen := 0
	if hasID {
		if len(data) < off+1 {
			return Record{}, recordFlags{}, 0, ErrTruncated
		}
		idLen = int(data[off])
		off++
	}

	end := off + typeLen + idLen + payloadLen
	if end > len(data) || end < off {
		return Record{}, recordFlags{}, 0, ErrTruncated
	}

	rec := Record{TNF: tnf}
	rec.Type = string(data[off : off+typeLen])
	off += typeLen
	rec.ID = string(data[off : off+idLen])
	off += idLen
	rec.Payload = append([]byte(nil), data[off:off+payloadLen]...)
	return rec, flags, end, nil
}
